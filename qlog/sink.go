// Package qlog implements structured, qlog-inspired event logging for the
// recovery core (spec's ambient logging stack). Event payloads marshal
// through gojay's MarshalerJSONObject interface, the same
// encode-without-reflection approach the teacher pack's qlog package uses
// for its wire-level events.
package qlog

import (
	"time"

	"github.com/francoispqt/gojay"

	"github.com/quicrecovery/quicrecovery/protocol"
)

// EventSink receives structured recovery events. The recovery engine
// calls these at the same points a qlog-capable implementation would
// emit recovery:packet_sent, recovery:packet_lost,
// recovery:metrics_updated and recovery:loss_timer_updated events.
type EventSink interface {
	RecordPacketSent(now time.Time, f PacketSentFields)
	RecordPacketLost(now time.Time, f PacketLostFields)
	RecordMetricsUpdated(now time.Time, f MetricsUpdatedFields)
	RecordLossTimerUpdated(now time.Time, f LossTimerUpdatedFields)
	Close() error
}

// PacketSentFields describes one transmitted packet.
type PacketSentFields struct {
	Level  protocol.EncryptionLevel
	Number protocol.PacketNumber
	Size   protocol.ByteCount
}

func (f PacketSentFields) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("packet_type", f.Level.String())
	enc.Int64Key("packet_number", int64(f.Number))
	enc.Int64Key("size", int64(f.Size))
}
func (f PacketSentFields) IsNil() bool { return false }

// PacketLostFields describes one packet declared lost.
type PacketLostFields struct {
	Level  protocol.EncryptionLevel
	Number protocol.PacketNumber
	Size   protocol.ByteCount
}

func (f PacketLostFields) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("packet_type", f.Level.String())
	enc.Int64Key("packet_number", int64(f.Number))
	enc.Int64Key("size", int64(f.Size))
}
func (f PacketLostFields) IsNil() bool { return false }

// MetricsUpdatedFields reports the congestion/RTT state after processing
// an ACK, the payload behind the window.log and latency.log metric
// streams.
type MetricsUpdatedFields struct {
	MinRTT           time.Duration
	SmoothedRTT      time.Duration
	LatestRTT        time.Duration
	RTTVariance      time.Duration
	CongestionWindow protocol.ByteCount
	BytesInFlight    protocol.ByteCount
	SSThreshold      protocol.ByteCount
	HasSSThreshold   bool
}

func (f MetricsUpdatedFields) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Float64Key("min_rtt_ms", durMillis(f.MinRTT))
	enc.Float64Key("smoothed_rtt_ms", durMillis(f.SmoothedRTT))
	enc.Float64Key("latest_rtt_ms", durMillis(f.LatestRTT))
	enc.Float64Key("rtt_variance_ms", durMillis(f.RTTVariance))
	enc.Int64Key("congestion_window", int64(f.CongestionWindow))
	enc.Int64Key("bytes_in_flight", int64(f.BytesInFlight))
	if f.HasSSThreshold {
		enc.Int64Key("ssthresh", int64(f.SSThreshold))
	}
}
func (f MetricsUpdatedFields) IsNil() bool { return false }

func durMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// LossTimerUpdatedFields records the loss-detection timer's new deadline.
type LossTimerUpdatedFields struct {
	Level     protocol.EncryptionLevel
	TimerType string // "ack" or "pto"
	Deadline  time.Time
}

func (f LossTimerUpdatedFields) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("packet_type", f.Level.String())
	enc.StringKey("timer_type", f.TimerType)
	if !f.Deadline.IsZero() {
		enc.Float64Key("delta_ms", float64(time.Until(f.Deadline))/float64(time.Millisecond))
	}
}
func (f LossTimerUpdatedFields) IsNil() bool { return false }

type nopSink struct{}

// NopSink returns an EventSink that discards every event, the default
// when a recovery engine isn't configured with one.
func NopSink() EventSink { return nopSink{} }

func (nopSink) RecordPacketSent(time.Time, PacketSentFields)             {}
func (nopSink) RecordPacketLost(time.Time, PacketLostFields)             {}
func (nopSink) RecordMetricsUpdated(time.Time, MetricsUpdatedFields)     {}
func (nopSink) RecordLossTimerUpdated(time.Time, LossTimerUpdatedFields) {}
func (nopSink) Close() error                                            { return nil }

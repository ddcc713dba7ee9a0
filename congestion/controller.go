// Package congestion implements the pluggable congestion-control
// algorithms (spec components C4-C6): a HyStart-style RttMonitor, a
// token-bucket Pacer, and three interchangeable Controller implementations
// (New Reno, CUBIC, PCC-Vivace).
package congestion

import (
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
)

// SentPacket is the minimal view of an in-flight packet a Controller needs.
// It intentionally does not depend on package ackhandler's richer
// SentPacket (delivery handlers, ack-eliciting flag, packet space) to avoid
// an import cycle; ackhandler.Recovery adapts its own packet records into
// this shape when calling into a Controller.
type SentPacket struct {
	Number   protocol.PacketNumber
	SentTime time.Time
	Size     protocol.ByteCount
}

// Controller is the capability set every congestion-control algorithm
// implements (the capability-set design described in DESIGN.md).
// OnPacketAcked and OnRTTMeasurement receive both a latest and a smoothed
// RTT and each controller picks which one it consumes. ackhandler.Recovery
// still inspects the concrete type for OnPacketAcked's latestRTT argument:
// it passes the per-packet RTT (now - sent time) there for a
// *VivaceController and the smoothed RTT for every other controller.
type Controller interface {
	OnPacketSent(now time.Time, pkt SentPacket)
	OnPacketAcked(pkt SentPacket, now time.Time, latestRTT, smoothedRTT time.Duration)
	OnPacketsLost(pkts []SentPacket, now time.Time)
	OnPacketsExpired(pkts []SentPacket)
	OnRTTMeasurement(latestRTT, smoothedRTT time.Duration, now time.Time)

	BytesInFlight() protocol.ByteCount
	CongestionWindow() protocol.ByteCount
	// SlowStartThreshold returns the current ssthresh and whether one has
	// been set; an unset ssthresh means the controller is in slow start.
	SlowStartThreshold() (protocol.ByteCount, bool)

	// LossCount and LossBytes are cumulative counters, used for the
	// loss.log metric stream.
	LossCount() uint64
	LossBytes() protocol.ByteCount

	// Label names the controller for metric-log directory layout
	// ("reno", "cubic", or "vivace").
	Label() string
}

// Type selects which Controller implementation to construct. An unknown
// Type silently falls back to Reno per spec §7 ("Unknown
// congestion-controller selector: silently falls back to Reno").
type Type int

const (
	TypeReno Type = iota
	TypeCubic
	TypeVivace
)

// NewController builds a fresh Controller of the requested Type.
func NewController(t Type) Controller {
	switch t {
	case TypeCubic:
		return NewCubicController()
	case TypeVivace:
		return NewVivaceController()
	default:
		return NewRenoController()
	}
}

// Package ackhandler implements the loss-detection and ACK-processing core
// (spec components C2, C3, C7): per-packet-number-space bookkeeping, RTT
// estimation, the packet- and time-threshold loss rules, and the
// probe-timeout (PTO) timer, wired to a pluggable congestion.Controller.
package ackhandler

import (
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
)

// Outcome is what ultimately happened to a sent packet.
type Outcome uint8

const (
	// OutcomeAcked means the packet was acknowledged by the peer.
	OutcomeAcked Outcome = iota
	// OutcomeLost means the packet was declared lost by either the
	// packet- or time-threshold rule.
	OutcomeLost
)

func (o Outcome) String() string {
	if o == OutcomeAcked {
		return "acked"
	}
	return "lost"
}

// DeliveryHandler is invoked at most once per sent packet, with the
// outcome the recovery engine determined for it (acked or lost). It is not
// invoked for packets dropped by Recovery.DiscardSpace. It is the hook streams
// and the connection's retransmission queue use to learn which frames
// need to be resent.
type DeliveryHandler func(outcome Outcome)

// SentPacket is the recovery engine's record of one packet handed to the
// network (spec component C2). InFlight and IsAckEliciting are
// independent flags (spec §3): InFlight gates whether a packet counts
// against bytes_in_flight and is handed to the congestion controller at
// all (a pure ACK packet can be in flight without being ack-eliciting);
// IsAckEliciting gates the ack_eliciting_in_flight counter and the
// loss-detection/PTO timer's arming condition. IsCryptoPacket marks the
// packets a PTO probe is allowed to re-queue as lost (spec §4.6.d);
// non-crypto application data is left outstanding across a probe
// timeout rather than being collapsed into the congestion controller's
// loss path.
type SentPacket struct {
	PacketNumber protocol.PacketNumber
	SentTime     time.Time
	Size         protocol.ByteCount

	InFlight             bool
	IsAckEliciting       bool
	IsCryptoPacket       bool
	IncludesAckImmediate bool // in-flight packet that itself carried an ACK frame

	OnDelivery DeliveryHandler

	declaredLost bool
}

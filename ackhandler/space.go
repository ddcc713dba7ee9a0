package ackhandler

import (
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
	"github.com/quicrecovery/quicrecovery/rangeset"
)

// Space holds the per-packet-number-space state the recovery engine needs
// (spec component C3): the set of packets currently in flight, the ranges
// of packet numbers the peer still needs to be told about, and the
// bookkeeping the packet- and time-threshold loss rules consume. QUIC has
// up to three Spaces alive at once (Initial, Handshake, ApplicationData);
// each is entirely independent.
type Space struct {
	Level protocol.EncryptionLevel

	// sentPackets holds every ack-eliciting (and ack-carrying) packet sent
	// in this space that hasn't yet been acked, declared lost, or expired,
	// keyed by packet number and iterated in ascending order.
	sentPackets    map[protocol.PacketNumber]*SentPacket
	sentPacketNums []protocol.PacketNumber // ascending: packet numbers are assigned in sending order within a space

	largestAckedPacket protocol.PacketNumber
	lossTime           time.Time

	// ackQueue tracks which received packet numbers still need to be
	// acknowledged to the peer.
	ackQueue                rangeset.Set[protocol.PacketNumber]
	ackElicitingInFlightCnt int
	largestReceivedPacket   protocol.PacketNumber
	largestReceivedTime     time.Time
	ackAt                   time.Time
}

// NewSpace returns an empty Space for the given encryption level.
func NewSpace(level protocol.EncryptionLevel) *Space {
	return &Space{
		Level:               level,
		sentPackets:         make(map[protocol.PacketNumber]*SentPacket),
		largestAckedPacket: protocol.InvalidPacketNumber,
		largestReceivedPacket: protocol.InvalidPacketNumber,
	}
}

// Add records a freshly sent packet.
func (s *Space) Add(pkt *SentPacket) {
	s.sentPackets[pkt.PacketNumber] = pkt
	s.sentPacketNums = append(s.sentPacketNums, pkt.PacketNumber)
	if pkt.IsAckEliciting {
		s.ackElicitingInFlightCnt++
	}
}

// remove drops a packet from the in-flight set once it has been acked or
// declared lost. Recovery.DiscardSpace does not call it; it resets the
// whole set instead.
func (s *Space) remove(pn protocol.PacketNumber) {
	pkt, ok := s.sentPackets[pn]
	if !ok {
		return
	}
	delete(s.sentPackets, pn)
	if pkt.IsAckEliciting {
		s.ackElicitingInFlightCnt--
	}
	for i, n := range s.sentPacketNums {
		if n == pn {
			s.sentPacketNums = append(s.sentPacketNums[:i], s.sentPacketNums[i+1:]...)
			break
		}
	}
}

// Ascending returns the in-flight packets of this space in ascending
// packet-number order, the iteration order the loss-detection rules rely
// on (packets below the largest acked that haven't been reordered away
// are the ones the packet-threshold rule inspects first).
func (s *Space) Ascending() []*SentPacket {
	out := make([]*SentPacket, 0, len(s.sentPacketNums))
	for _, n := range s.sentPacketNums {
		out = append(out, s.sentPackets[n])
	}
	return out
}

// Get looks up an in-flight packet by number.
func (s *Space) Get(pn protocol.PacketNumber) (*SentPacket, bool) {
	p, ok := s.sentPackets[pn]
	return p, ok
}

// HasAckElicitingInFlight reports whether this space has at least one
// ack-eliciting packet awaiting acknowledgment. Recovery arms its single
// PTO timer while the total of these counts across all spaces is non-zero
// (or, for a client without 1-RTT keys, regardless of it).
func (s *Space) HasAckElicitingInFlight() bool {
	return s.ackElicitingInFlightCnt > 0
}

// RegisterReceived records an incoming packet for the purposes of
// scheduling an ACK frame to the peer: it adds pn to ackQueue, tracks the
// largest received packet number and its arrival time, and, for an
// ack-eliciting packet when no deadline is pending, sets ackAt to now plus
// MaxAckDelay. It applies no "ack every other packet" rule and does not
// itself decide when an ACK frame is sent; ClearAckQueue resets the queue
// and the deadline once one has been.
func (s *Space) RegisterReceived(pn protocol.PacketNumber, now time.Time, ackEliciting bool) {
	s.ackQueue.Add(pn, pn+1)
	if s.largestReceivedPacket == protocol.InvalidPacketNumber || pn > s.largestReceivedPacket {
		s.largestReceivedPacket = pn
		s.largestReceivedTime = now
	}
	if ackEliciting && s.ackAt.IsZero() {
		s.ackAt = now.Add(time.Duration(protocol.MaxAckDelay))
	}
}

// ClearAckQueue resets the pending-ACK bookkeeping once an ACK frame
// covering ackQueue has actually been sent.
func (s *Space) ClearAckQueue() {
	s.ackQueue = nil
	s.ackAt = time.Time{}
}

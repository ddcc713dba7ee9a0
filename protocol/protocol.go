// Package protocol defines the wire-level types and fixed constants shared
// by the recovery core: packet numbers, byte counts, packet types, and the
// numeric constants from RFC 9002-style loss detection and congestion
// control.
package protocol

import "fmt"

// ByteCount counts bytes, used for congestion windows, datagram sizes and
// byte offsets.
type ByteCount int64

// PacketNumber is a QUIC packet number. Packet numbers are non-negative and
// monotonically increasing within a single PacketNumberSpace.
type PacketNumber int64

// InvalidPacketNumber is used as a sentinel for "no packet number yet".
const InvalidPacketNumber = PacketNumber(-1)

// MaxPacketNumber returns the larger of two packet numbers.
func MaxPacketNumber(a, b PacketNumber) PacketNumber {
	if a > b {
		return a
	}
	return b
}

// MinPacketNumber returns the smaller of two packet numbers.
func MinPacketNumber(a, b PacketNumber) PacketNumber {
	if a < b {
		return a
	}
	return b
}

// EncryptionLevel identifies a QUIC packet-number space indirectly: Initial
// and Handshake packets each get their own space, 0-RTT and 1-RTT packets
// share the application-data space.
type EncryptionLevel uint8

const (
	EncryptionInitial EncryptionLevel = iota
	EncryptionHandshake
	Encryption0RTT
	Encryption1RTT
)

func (e EncryptionLevel) String() string {
	switch e {
	case EncryptionInitial:
		return "Initial"
	case EncryptionHandshake:
		return "Handshake"
	case Encryption0RTT:
		return "0-RTT"
	case Encryption1RTT:
		return "1-RTT"
	default:
		return fmt.Sprintf("EncryptionLevel(%d)", uint8(e))
	}
}

// PacketType is the on-the-wire packet type, used only for diagnostics and
// event logging by the recovery core; parsing/building packets is out of
// scope here.
type PacketType uint8

const (
	PacketTypeInitial PacketType = iota
	PacketTypeHandshake
	PacketType0RTT
	PacketType1RTT
	PacketTypeRetry
	PacketTypeVersionNegotiation
)

func (t PacketType) String() string {
	switch t {
	case PacketTypeInitial:
		return "initial"
	case PacketTypeHandshake:
		return "handshake"
	case PacketType0RTT:
		return "0RTT"
	case PacketType1RTT:
		return "1RTT"
	case PacketTypeRetry:
		return "retry"
	case PacketTypeVersionNegotiation:
		return "version_negotiation"
	default:
		return "unknown"
	}
}

// Fixed constants from the loss-detection and congestion-control spec.
// Names follow the teacher's upper-camel exported-constant convention
// (protocol.DefaultTCPMSS in the teacher's congestion package) rather than
// the K_-prefixed names of the Python original.
const (
	// MaxDatagramSize is the largest UDP payload the sender will produce.
	MaxDatagramSize ByteCount = 1280

	// InitialWindow is the initial congestion window.
	InitialWindow ByteCount = 10 * MaxDatagramSize

	// MinimumWindow is the smallest value the congestion window is ever
	// allowed to shrink to.
	MinimumWindow ByteCount = 2 * MaxDatagramSize

	// PacketThreshold is the reordering threshold, in packets, used by the
	// packet-threshold loss detection rule.
	PacketThreshold PacketNumber = 3

	// TimeThreshold is the reordering threshold, as a multiplier of the
	// larger of latest/smoothed RTT, used by the time-threshold loss
	// detection rule.
	TimeThreshold = 9.0 / 8.0

	// Granularity is the system timer granularity assumed by the PTO
	// computation.
	Granularity = 1_000_000 // nanoseconds (1ms)

	// InitialRTT is the RTT assumed before any RTT sample has been taken.
	InitialRTT = 500_000_000 // nanoseconds (500ms)

	// MaxAckDelay bounds the ACK delay applied when compensating a peer's
	// reported ack_delay.
	MaxAckDelay = 25_000_000 // nanoseconds (25ms)

	// LossReductionFactor is New Reno's multiplicative window reduction on
	// loss.
	LossReductionFactor = 0.5

	// CubicBeta is CUBIC's multiplicative window reduction on loss.
	CubicBeta = 0.7

	// CubicWindowAggressiveness is CUBIC's "C" constant controlling how
	// aggressively the cubic curve regrows the window.
	CubicWindowAggressiveness = 0.4
)

// Vivace (PCC) constants.
const (
	VivaceThroughputCoeff = 0.9
	VivaceLatencyCoeff    = 900.0
	VivaceLossCoeff       = 11.35
	VivaceLatencyFilter   = 0.01
	VivaceEpsilon         = 0.05
	VivaceConversionFactor = 1.0
	VivaceInitialBoundary = 0.05
	VivaceBoundaryInc     = 0.1
)

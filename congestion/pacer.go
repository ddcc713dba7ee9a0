package congestion

import (
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
)

const (
	minPacketTime = time.Microsecond
	maxPacketTime = time.Second
)

// Pacer is a token-bucket egress shaper (spec component C5): it smooths
// sending to congestion_window/srtt while allowing short bursts sized to
// the smaller of a quarter-window or 16 datagrams' worth of time. Grounded
// directly on aioquic's QuicPacketPacer (recovery.py lines 83-126); quic-go
// itself paces via a similar token-bucket inside its congestion package,
// but the teacher pack does not carry that file, so the bucket arithmetic
// here follows the Python original with time.Duration in place of float
// seconds.
type Pacer struct {
	bucketMax      time.Duration
	bucketTime     time.Duration
	evaluationTime time.Time
	packetTime     time.Duration
	hasRate        bool
}

// NewPacer creates a Pacer with no rate set yet; UpdateRate must be called
// before NextSendTime returns a useful value.
func NewPacer(now time.Time) *Pacer {
	return &Pacer{evaluationTime: now}
}

// UpdateRate recomputes the pacing rate from the current congestion window
// and smoothed RTT.
func (p *Pacer) UpdateRate(cwnd protocol.ByteCount, srtt time.Duration) {
	if srtt < time.Microsecond {
		srtt = time.Microsecond
	}
	// pacingRate = cwnd / srtt, expressed as a duration-per-byte so the
	// arithmetic below stays in integer nanoseconds.
	packetTime := time.Duration(int64(srtt) * int64(protocol.MaxDatagramSize) / int64(cwnd))
	if packetTime < minPacketTime {
		packetTime = minPacketTime
	} else if packetTime > maxPacketTime {
		packetTime = maxPacketTime
	}
	p.packetTime = packetTime
	p.hasRate = true

	burstWindow := cwnd / 4
	if burstWindow < 2*protocol.MaxDatagramSize {
		burstWindow = 2 * protocol.MaxDatagramSize
	} else if burstWindow > 16*protocol.MaxDatagramSize {
		burstWindow = 16 * protocol.MaxDatagramSize
	}
	p.bucketMax = time.Duration(int64(srtt) * int64(burstWindow) / int64(cwnd))
	if p.bucketTime > p.bucketMax {
		p.bucketTime = p.bucketMax
	}
}

func (p *Pacer) replenish(now time.Time) {
	if now.After(p.evaluationTime) {
		p.bucketTime += now.Sub(p.evaluationTime)
		if p.bucketTime > p.bucketMax {
			p.bucketTime = p.bucketMax
		}
		p.evaluationTime = now
	}
}

// NextSendTime replenishes the bucket and reports when the next packet may
// be sent. The zero time.Time means "now" (no pacing delay required).
func (p *Pacer) NextSendTime(now time.Time) time.Time {
	if !p.hasRate {
		return time.Time{}
	}
	p.replenish(now)
	if p.bucketTime <= 0 {
		return now.Add(p.packetTime)
	}
	return time.Time{}
}

// UpdateAfterSend debits one packet's worth of pacing budget from the
// bucket.
func (p *Pacer) UpdateAfterSend(now time.Time) {
	if !p.hasRate {
		return
	}
	p.replenish(now)
	if p.bucketTime < p.packetTime {
		p.bucketTime = 0
	} else {
		p.bucketTime -= p.packetTime
	}
}

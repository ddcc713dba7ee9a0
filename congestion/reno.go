package congestion

import (
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
)

// RenoController is the New Reno AIMD controller (spec component C6a),
// grounded on aioquic's RenoCongestionControl: slow start doubles the
// window by the full size of every acknowledged byte, congestion
// avoidance accumulates acked bytes in a stash and grows the window by
// one MaxDatagramSize each time the stash covers a full window, and
// RttMonitor lets slow start exit on a sustained RTT increase (HyStart)
// instead of only on the first loss. It is also the fallback controller
// NewController returns for any unrecognized Type.
type RenoController struct {
	cwnd          protocol.ByteCount
	ssthresh      protocol.ByteCount
	ssthreshSet   bool
	bytesInFlight protocol.ByteCount

	congestionStash protocol.ByteCount

	congestionRecoveryStartTime time.Time
	hasRecoveryStart            bool

	rttMonitor RttMonitor

	lossCount uint64
	lossBytes protocol.ByteCount
}

// NewRenoController returns a RenoController initialized to InitialWindow.
func NewRenoController() *RenoController {
	return &RenoController{cwnd: protocol.InitialWindow}
}

func (c *RenoController) Label() string { return "reno" }

func (c *RenoController) OnPacketSent(now time.Time, pkt SentPacket) {
	c.bytesInFlight += pkt.Size
}

// inSlowStart matches the spec's literal condition: no ssthresh yet, or
// the window has fallen back below ssthresh (e.g. after a reduction).
func (c *RenoController) inSlowStart() bool {
	return !c.ssthreshSet || c.cwnd < c.ssthresh
}

func (c *RenoController) OnPacketAcked(pkt SentPacket, now time.Time, latestRTT, smoothedRTT time.Duration) {
	c.bytesInFlight -= pkt.Size

	if c.hasRecoveryStart && !pkt.SentTime.After(c.congestionRecoveryStartTime) {
		return
	}
	if c.inSlowStart() {
		c.cwnd += pkt.Size
		return
	}
	c.congestionStash += pkt.Size
	for c.congestionStash >= c.cwnd {
		c.congestionStash -= c.cwnd
		c.cwnd += protocol.MaxDatagramSize
	}
}

func (c *RenoController) OnPacketsLost(pkts []SentPacket, now time.Time) {
	if len(pkts) == 0 {
		return
	}
	latest := pkts[0].SentTime
	for _, p := range pkts {
		c.bytesInFlight -= p.Size
		c.lossCount++
		c.lossBytes += p.Size
		if p.SentTime.After(latest) {
			latest = p.SentTime
		}
	}
	if c.hasRecoveryStart && !latest.After(c.congestionRecoveryStartTime) {
		return
	}
	c.hasRecoveryStart = true
	c.congestionRecoveryStartTime = now
	c.cwnd = protocol.ByteCount(float64(c.cwnd) * protocol.LossReductionFactor)
	if c.cwnd < protocol.MinimumWindow {
		c.cwnd = protocol.MinimumWindow
	}
	c.ssthresh = c.cwnd
	c.ssthreshSet = true
	c.collapsePersistentCongestion(pkts)
}

// collapsePersistentCongestion is the named hook for a sustained-loss
// window collapse. TODO: no caller currently classifies a loss run as
// persistent congestion, so this never fires.
func (c *RenoController) collapsePersistentCongestion(pkts []SentPacket) {}

func (c *RenoController) OnPacketsExpired(pkts []SentPacket) {
	for _, p := range pkts {
		c.bytesInFlight -= p.Size
	}
}

// OnRTTMeasurement lets slow start exit on a sustained RTT increase
// (HyStart) rather than waiting for the first loss.
func (c *RenoController) OnRTTMeasurement(latestRTT, smoothedRTT time.Duration, now time.Time) {
	if c.ssthreshSet {
		return
	}
	if c.rttMonitor.IsRTTIncreasing(latestRTT, now) {
		c.ssthresh = c.cwnd
		c.ssthreshSet = true
	}
}

func (c *RenoController) BytesInFlight() protocol.ByteCount   { return c.bytesInFlight }
func (c *RenoController) CongestionWindow() protocol.ByteCount { return c.cwnd }

func (c *RenoController) SlowStartThreshold() (protocol.ByteCount, bool) {
	return c.ssthresh, c.ssthreshSet
}

func (c *RenoController) LossCount() uint64             { return c.lossCount }
func (c *RenoController) LossBytes() protocol.ByteCount { return c.lossBytes }

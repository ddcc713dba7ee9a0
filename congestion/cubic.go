package congestion

import (
	"math"
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
)

// CubicController implements the CUBIC congestion-window growth function
// with an adaptive loss-batch filter (spec component C6b), grounded on
// aioquic's CubicCongestionControl and cross-checked against the teacher
// pack's NithinPJ998-quic-go/congestion/cubic_sender.go for field naming
// (wMax/k/epoch). Growth during congestion avoidance follows
// W_cubic(t) = C*(t-K)^3 + W_max, t measured from the start of the
// current congestion-avoidance epoch; each OnPacketsLost batch is counted
// and only triggers a window reduction once losses exceed an adaptively sized
// threshold, per design note (b): when no ssthresh has been set yet, a
// loss unconditionally decreases the window rather than being filtered.
type CubicController struct {
	cwnd          protocol.ByteCount
	ssthresh      protocol.ByteCount
	ssthreshSet   bool
	bytesInFlight protocol.ByteCount

	wMax     float64
	wLastMax float64
	k        float64

	congestionAvoidanceStart    time.Time
	hasCongestionAvoidanceStart bool

	lossStash int
	lossThresh int

	congestionRecoveryStartTime time.Time
	hasRecoveryStart            bool

	rttMonitor RttMonitor

	lossCount uint64
	lossBytes protocol.ByteCount
}

// NewCubicController returns a CubicController initialized to
// InitialWindow with a loss-batch threshold of 10, matching aioquic's
// CubicCongestionControl defaults.
func NewCubicController() *CubicController {
	return &CubicController{cwnd: protocol.InitialWindow, lossThresh: 10}
}

func (c *CubicController) Label() string { return "cubic" }

func (c *CubicController) OnPacketSent(now time.Time, pkt SentPacket) {
	c.bytesInFlight += pkt.Size
}

func (c *CubicController) inSlowStart() bool { return !c.ssthreshSet }

func (c *CubicController) OnPacketAcked(pkt SentPacket, now time.Time, latestRTT, smoothedRTT time.Duration) {
	c.bytesInFlight -= pkt.Size

	if c.hasRecoveryStart && !pkt.SentTime.After(c.congestionRecoveryStartTime) {
		return
	}
	if c.inSlowStart() {
		c.cwnd += pkt.Size
		return
	}

	if !c.hasCongestionAvoidanceStart {
		c.congestionAvoidanceStart = now
		c.hasCongestionAvoidanceStart = true
	}
	elapsed := now.Sub(c.congestionAvoidanceStart).Seconds()
	wCubicSegments := protocol.CubicWindowAggressiveness*math.Pow(elapsed+smoothedRTT.Seconds()-c.k, 3) + c.wMax
	cwndSegments := float64(c.cwnd) / float64(protocol.MaxDatagramSize)
	delta := ((wCubicSegments - cwndSegments) / cwndSegments) * float64(protocol.MaxDatagramSize)
	c.cwnd += protocol.ByteCount(math.Floor(delta))
}

func (c *CubicController) OnPacketsLost(pkts []SentPacket, now time.Time) {
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

	decrease := c.classifyLossBatch(len(pkts))
	if !decrease {
		return
	}
	if c.hasRecoveryStart && !latest.After(c.congestionRecoveryStartTime) {
		return
	}
	c.onCongestionEvent(now)
	c.collapsePersistentCongestion(pkts)
}

// collapsePersistentCongestion is the named hook for a sustained-loss
// window collapse. TODO: no caller currently classifies a loss run as
// persistent congestion, so this never fires.
func (c *CubicController) collapsePersistentCongestion(pkts []SentPacket) {}

// classifyLossBatch applies CUBIC's adaptive loss-threshold filter: a
// batch larger than the threshold decreases immediately and the threshold
// itself grows by 25% to resist being re-triggered by the same burst. A
// smaller batch is added to a stash; once the stash exceeds 1.5x the
// threshold it decreases and the stash wraps modulo that cap, otherwise
// the batch is tolerated (reordering, not genuine congestion) and the
// threshold shrinks by 25% so the next genuine congestion event is easier
// to recognize. Per
// design note (b), this filter is bypassed entirely (decrease is always
// true) before the first ssthresh has ever been set.
func (c *CubicController) classifyLossBatch(lost int) bool {
	if !c.ssthreshSet {
		return true
	}
	if lost > c.lossThresh {
		c.lossThresh = int(math.Ceil(1.25 * float64(c.lossThresh)))
		return true
	}
	c.lossStash += lost
	stashCap := int(math.Floor(1.5 * float64(c.lossThresh)))
	if c.lossStash > stashCap {
		if stashCap > 0 {
			c.lossStash %= stashCap
		}
		return true
	}
	c.lossThresh = int(math.Ceil(0.75 * float64(c.lossThresh)))
	return false
}

func (c *CubicController) onCongestionEvent(now time.Time) {
	c.hasRecoveryStart = true
	c.congestionRecoveryStartTime = now

	cwndSegments := float64(c.cwnd) / float64(protocol.MaxDatagramSize)
	c.wMax = cwndSegments
	if c.wMax < 0.95*c.wLastMax {
		c.wLastMax = c.wMax
		c.wMax = math.Floor(c.wMax * (1 + protocol.CubicBeta) / 2)
	} else {
		c.wLastMax = c.wMax
	}

	newCwnd := protocol.ByteCount(math.Floor(float64(c.cwnd) * protocol.CubicBeta))
	if newCwnd < protocol.MinimumWindow {
		newCwnd = protocol.MinimumWindow
	}
	c.cwnd = newCwnd
	c.ssthresh = c.cwnd
	c.ssthreshSet = true
	c.hasCongestionAvoidanceStart = false

	c.k = math.Cbrt(c.wMax * (1 - protocol.CubicBeta) / protocol.CubicWindowAggressiveness)
}

func (c *CubicController) OnPacketsExpired(pkts []SentPacket) {
	for _, p := range pkts {
		c.bytesInFlight -= p.Size
	}
}

// OnRTTMeasurement is a no-op for CUBIC: it carries an RttMonitor field
// for structural parity with RenoController (mirroring aioquic's
// CubicCongestionControl, which constructs a QuicRttMonitor it never
// calls into), but CUBIC exits slow start on ssthresh alone, set the
// first time a loss is observed.
func (c *CubicController) OnRTTMeasurement(latestRTT, smoothedRTT time.Duration, now time.Time) {
}

func (c *CubicController) BytesInFlight() protocol.ByteCount   { return c.bytesInFlight }
func (c *CubicController) CongestionWindow() protocol.ByteCount { return c.cwnd }

func (c *CubicController) SlowStartThreshold() (protocol.ByteCount, bool) {
	return c.ssthresh, c.ssthreshSet
}

func (c *CubicController) LossCount() uint64             { return c.lossCount }
func (c *CubicController) LossBytes() protocol.ByteCount { return c.lossBytes }

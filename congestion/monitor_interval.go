package congestion

import (
	"math"
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
)

// monitorIntervalDuration is Vivace's MI length (spec §4.5: "default
// 100 ms").
const monitorIntervalDuration = 100 * time.Millisecond

// rttSample is one (offset, rtt) observation taken during a
// monitorInterval: offset is time since the MI started, rtt is the
// per-packet round-trip time (now - pkt.sent_time), not the smoothed
// RTT - Vivace's utility gradient is measured against its own probing
// clock, not the connection's EWMA estimate.
type rttSample struct {
	offset time.Duration
	rtt    time.Duration
}

// monitorInterval is one PCC-Vivace probing interval (spec component
// C6c): it probes sending at a fixed rate (in MaxDatagramSize units,
// derived from cwnd/MSS at the moment the interval opened) for
// monitorIntervalDuration, and records the per-packet RTT samples and
// loss count observed while it's open so that its utility can be scored
// once it closes.
type monitorInterval struct {
	start, end time.Time
	rate       float64 // probed sending rate, in MaxDatagramSize units
	isPrimary  bool     // r(1+e) probe if true, r(1-e) probe if false

	rttSamples []rttSample
	lossCount  int

	utility    float64
	hasUtility bool
}

func newMonitorInterval(start time.Time, rate float64, isPrimary bool) *monitorInterval {
	return &monitorInterval{start: start, end: start.Add(monitorIntervalDuration), rate: rate, isPrimary: isPrimary}
}

// contains reports whether a packet sent (or acked) at t belongs to this
// interval.
func (mi *monitorInterval) contains(t time.Time) bool {
	return !t.Before(mi.start) && t.Before(mi.end)
}

func (mi *monitorInterval) closed(now time.Time) bool {
	return !now.Before(mi.end)
}

func (mi *monitorInterval) addSample(now time.Time, rtt time.Duration) {
	mi.rttSamples = append(mi.rttSamples, rttSample{offset: now.Sub(mi.start), rtt: rtt})
}

// rttGradient estimates d(RTT)/d(offset) over the interval's samples,
// per spec §4.5's fallback ladder: three or more samples use an
// ordinary least-squares slope; exactly two fall back to the two-point
// slope; fewer than two report zero (no information to regress on).
// This is the original aioquic MonitorInterval.compute_utility's own
// fallback behavior (SPEC_FULL.md supplemented-features note 3), not an
// invention - the spec's prose alone doesn't spell out the n=2/n<=1
// cases numerically.
func (mi *monitorInterval) rttGradient() float64 {
	n := len(mi.rttSamples)
	switch {
	case n >= 3:
		return leastSquaresSlope(mi.rttSamples)
	case n == 2:
		dt := (mi.rttSamples[1].offset - mi.rttSamples[0].offset).Seconds()
		if dt <= 0 {
			return 0
		}
		return (mi.rttSamples[1].rtt.Seconds() - mi.rttSamples[0].rtt.Seconds()) / dt
	default:
		return 0
	}
}

// computeUtility evaluates U = rate^0.9 - 900*rate*drtt - 11.35*rate*losses
// (spec §4.5), applying the latency filter: any gradient below
// VivaceLatencyFilter - including every decreasing-RTT (negative) gradient -
// is treated as exactly zero; the filter is one-sided, not a magnitude test.
func (mi *monitorInterval) computeUtility() float64 {
	drtt := mi.rttGradient()
	if drtt < protocol.VivaceLatencyFilter {
		drtt = 0
	}
	u := math.Pow(mi.rate, protocol.VivaceThroughputCoeff) -
		protocol.VivaceLatencyCoeff*mi.rate*drtt -
		protocol.VivaceLossCoeff*mi.rate*float64(mi.lossCount)
	mi.utility = u
	mi.hasUtility = true
	return u
}

func leastSquaresSlope(samples []rttSample) float64 {
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := s.offset.Seconds()
		y := s.rtt.Seconds()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

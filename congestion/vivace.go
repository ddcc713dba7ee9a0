package congestion

import (
	"math"
	"time"

	"github.com/quicrecovery/quicrecovery/protocol"
)

// VivaceController implements PCC-Vivace (spec component C6c): rather
// than reacting to loss events directly, it runs one monitor interval at
// a time, probing first an exponentially growing rate (slow start), then
// alternating a rate slightly above and slightly below a baseline
// ("primary"/"negative" probes), scoring each with a utility function
// that rewards throughput and penalizes rising latency and loss, and
// moving the baseline by a confidence-weighted gradient step after each
// probe pair. Grounded on aioquic's VivaceCongestionControl; the
// monitor-interval utility math, the confidence amplifier, and the
// dynamic boundary search are carried over from the original exactly,
// per SPEC_FULL.md's supplemented-features notes 3 and 6.
//
// Dispatch on each MI closure follows the original's own branch order
// rather than a named-phase enum: while inSlowStart, the window doubles;
// once ssthresh is unset (either slow start just exited, or a gradient
// update just cleared it), the window rebases to ssthresh*(1+e) and
// probes primary; a closing primary MI probes negative at ssthresh*(1-e);
// a closing negative MI runs the gradient update, which sets a new raw
// window and clears ssthresh again - so the MI immediately following an
// update probes at that raw rate before the next rebase, exactly as
// aioquic's on_packet_acked does (recovery.py:196-243: the "ssthresh is
// None" branch is reached twice per cycle, not once).
type VivaceController struct {
	cwnd        protocol.ByteCount
	ssthresh    protocol.ByteCount
	hasSsthresh bool

	inSlowStart bool

	current *monitorInterval

	prevSlowStartUtility    float64
	hasPrevSlowStartUtility bool

	primaryUtility float64

	positiveDel     bool
	hasPositiveDel  bool
	confidenceCount int
	boundaryCount   int

	// rttMonitor mirrors aioquic's VivaceCongestionControl constructing a
	// QuicRttMonitor it never consults (Vivace derives its own RTT
	// gradient from monitor-interval samples instead); kept only for
	// structural parity with RenoController, see SPEC_FULL.md's
	// supplemented-features note 5.
	rttMonitor RttMonitor

	bytesInFlight protocol.ByteCount

	lossCount uint64
	lossBytes protocol.ByteCount
}

// NewVivaceController returns a VivaceController starting its
// exponential slow start at InitialWindow. boundaryCount starts at -1,
// matching aioquic's VivaceCongestionControl.__init__.
func NewVivaceController() *VivaceController {
	return &VivaceController{cwnd: protocol.InitialWindow, inSlowStart: true, boundaryCount: -1}
}

func (v *VivaceController) Label() string { return "vivace" }

func (v *VivaceController) startMI(now time.Time, isPrimary bool) {
	rate := float64(v.cwnd) / float64(protocol.MaxDatagramSize)
	v.current = newMonitorInterval(now, rate, isPrimary)
}

func (v *VivaceController) OnPacketSent(now time.Time, pkt SentPacket) {
	v.bytesInFlight += pkt.Size
	if v.current == nil {
		v.startMI(now, true)
	}
}

// OnPacketAcked feeds the currently open monitor interval a per-packet
// RTT sample, per spec §4.5: "Acks feed the current MI's RTT samples as
// (now - MI.start_time, now - pkt.sent_time)" - the interval that
// receives the sample is whichever one is open when the ack is
// processed, not necessarily the one the packet was sent during.
func (v *VivaceController) OnPacketAcked(pkt SentPacket, now time.Time, latestRTT, smoothedRTT time.Duration) {
	v.bytesInFlight -= pkt.Size
	if v.current != nil {
		v.current.addSample(now, now.Sub(pkt.SentTime))
	}
}

func (v *VivaceController) OnPacketsLost(pkts []SentPacket, now time.Time) {
	for _, p := range pkts {
		v.bytesInFlight -= p.Size
		v.lossCount++
		v.lossBytes += p.Size
	}
	if v.current != nil {
		v.current.lossCount += len(pkts)
	}
	v.collapsePersistentCongestion(pkts)
}

// collapsePersistentCongestion is the named hook for a sustained-loss
// window collapse. TODO: no caller currently classifies a loss run as
// persistent congestion, so this never fires.
func (v *VivaceController) collapsePersistentCongestion(pkts []SentPacket) {}

func (v *VivaceController) OnPacketsExpired(pkts []SentPacket) {
	for _, p := range pkts {
		v.bytesInFlight -= p.Size
	}
}

// OnRTTMeasurement is where the monitor-interval state machine advances:
// once the currently open interval has run its full duration, it is
// scored and the probing cycle transitions per spec §4.5.
func (v *VivaceController) OnRTTMeasurement(latestRTT, smoothedRTT time.Duration, now time.Time) {
	if v.current == nil || !v.current.closed(now) {
		return
	}
	finished := v.current
	utility := finished.computeUtility()

	if v.inSlowStart {
		if v.hasPrevSlowStartUtility && utility < v.prevSlowStartUtility {
			v.inSlowStart = false
		}
		v.prevSlowStartUtility = utility
		v.hasPrevSlowStartUtility = true
	}

	var nextIsPrimary bool
	switch {
	case v.inSlowStart:
		v.cwnd *= 2
		nextIsPrimary = true
	case !v.hasSsthresh:
		// Slow start just exited, or the previous negative probe's
		// gradient update just cleared ssthresh after opening one MI at
		// the raw updated rate: either way, rebase onto a primary probe.
		v.ssthresh = v.cwnd
		v.hasSsthresh = true
		v.cwnd = scaleWindow(v.ssthresh, 1+protocol.VivaceEpsilon)
		nextIsPrimary = true
	case finished.isPrimary:
		v.primaryUtility = utility
		v.cwnd = scaleWindow(v.ssthresh, 1-protocol.VivaceEpsilon)
		nextIsPrimary = false
	default:
		v.update(utility)
		nextIsPrimary = true
	}

	v.startMI(now, nextIsPrimary)
}

func scaleWindow(base protocol.ByteCount, factor float64) protocol.ByteCount {
	w := protocol.ByteCount(float64(base) * factor)
	if w < protocol.MinimumWindow {
		return protocol.MinimumWindow
	}
	return w
}

// update runs spec §4.5 step 4 once both the primary and negative probes
// of a round have completed: it computes the utility gradient, weights
// it by a confidence amplifier that grows while consecutive rounds agree
// on sign, clamps the resulting step to a dynamically sized boundary, and
// sets the raw (unscaled) window the next MI probes at. ssthresh is
// cleared here, per aioquic recovery.py:241-243: the MI that follows
// runs at this raw rate, and only its own closure re-enters the
// ssthresh-unset rebase branch above.
func (v *VivaceController) update(negativeUtility float64) {
	ssthreshF := float64(v.ssthresh)
	gamma := (v.primaryUtility - negativeUtility) / (2 * ssthreshF * protocol.VivaceEpsilon)

	sign := gamma >= 0
	if v.hasPositiveDel && sign == v.positiveDel {
		v.confidenceCount++
		v.boundaryCount++
	} else {
		v.confidenceCount = 1
		v.boundaryCount = 0
		v.positiveDel = sign
		v.hasPositiveDel = true
	}

	var amplifier float64
	if v.confidenceCount <= 3 {
		amplifier = float64(v.confidenceCount)
	} else {
		amplifier = 2*float64(v.confidenceCount) - 3
	}

	delta := amplifier * protocol.VivaceConversionFactor * gamma * float64(protocol.MaxDatagramSize)

	changeBoundary := protocol.VivaceInitialBoundary + float64(v.boundaryCount)*protocol.VivaceBoundaryInc
	if math.Abs(delta) > changeBoundary*ssthreshF {
		if delta > 0 {
			delta = changeBoundary * ssthreshF
		} else {
			delta = -changeBoundary * ssthreshF
		}
	} else {
		v.dynamicBoundary(delta, ssthreshF)
	}

	newCwnd := protocol.ByteCount(math.Floor(ssthreshF + delta))
	if newCwnd < protocol.MinimumWindow {
		newCwnd = protocol.MinimumWindow
	}

	v.cwnd = newCwnd
	v.hasSsthresh = false
}

// dynamicBoundary shrinks boundaryCount down to the point where the
// observed step no longer fits inside the corresponding band, then
// leaves one unit of headroom - per spec §4.5: "decrements boundary_count
// while |delta| <= (K_INITIAL_BOUNDARY + boundary_count*K_BOUNDARY_INC)*ssthresh,
// then increments once".
func (v *VivaceController) dynamicBoundary(delta, ssthreshF float64) {
	for v.boundaryCount > 0 {
		band := (protocol.VivaceInitialBoundary + float64(v.boundaryCount)*protocol.VivaceBoundaryInc) * ssthreshF
		if math.Abs(delta) > band {
			break
		}
		v.boundaryCount--
	}
	v.boundaryCount++
}

func (v *VivaceController) BytesInFlight() protocol.ByteCount   { return v.bytesInFlight }
func (v *VivaceController) CongestionWindow() protocol.ByteCount { return v.cwnd }

func (v *VivaceController) SlowStartThreshold() (protocol.ByteCount, bool) {
	return v.ssthresh, v.hasSsthresh
}

func (v *VivaceController) LossCount() uint64             { return v.lossCount }
func (v *VivaceController) LossBytes() protocol.ByteCount { return v.lossBytes }

package congestion

import "time"

// sampleWindow is the number of RTT samples the monitor keeps before it can
// start reporting sustained increases (spec component C4).
const sampleWindow = 5

// granularity bounds how often a new sample is admitted; it mirrors the
// system timer granularity used elsewhere in loss detection.
const granularity = time.Millisecond

// RttMonitor is a HyStart-style detector of sustained RTT increase, used by
// congestion controllers to exit slow start before the first loss. It is
// grounded on the teacher pack's two HyStart variants
// (NithinPJ998-quic-go/congestion/cubic_sender.go's hybridSlowStart field,
// and kalelpida-quic-go/internal/congestion/hybrid_slow_start_pp.go's
// round-based sampling), but follows the aioquic original's simpler
// circular-buffer design (QuicRttMonitor) rather than either Go teacher's
// round/ack-train bookkeeping, since that is what the spec's prose
// (§4.2) actually describes.
type RttMonitor struct {
	increases int
	ready     bool

	filteredMin time.Duration
	hasFiltered bool

	sampleIdx  int
	sampleMax  time.Duration
	sampleMin  time.Duration
	sampleTime time.Time
	samples    [sampleWindow]time.Duration
}

func (m *RttMonitor) addRTT(rtt time.Duration) {
	m.samples[m.sampleIdx] = rtt
	m.sampleIdx++
	if m.sampleIdx >= sampleWindow {
		m.sampleIdx = 0
		m.ready = true
	}
	if m.ready {
		m.sampleMax = m.samples[0]
		m.sampleMin = m.samples[0]
		for _, s := range m.samples[1:] {
			if s < m.sampleMin {
				m.sampleMin = s
			} else if s > m.sampleMax {
				m.sampleMax = s
			}
		}
	}
}

// IsRTTIncreasing admits one RTT sample per granularity window and reports
// whether the sustained-increase condition holds for that sample. The
// result is not latched: a later sample that is admitted can reset the
// increase streak and report false again, and a sample arriving within
// the granularity window always reports false. Reno only acts on the
// first true result, since it stops consulting the monitor once ssthresh
// is set.
func (m *RttMonitor) IsRTTIncreasing(rtt time.Duration, now time.Time) bool {
	if !now.After(m.sampleTime.Add(granularity)) {
		return false
	}
	m.addRTT(rtt)
	m.sampleTime = now

	if !m.ready {
		return false
	}

	if !m.hasFiltered || m.filteredMin > m.sampleMax {
		m.filteredMin = m.sampleMax
		m.hasFiltered = true
	}

	delta := m.sampleMin - m.filteredMin
	if delta*4 >= m.filteredMin {
		m.increases++
		if m.increases >= sampleWindow {
			return true
		}
	} else if delta > 0 {
		m.increases = 0
	}
	return false
}

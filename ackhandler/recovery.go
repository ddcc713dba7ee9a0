package ackhandler

import (
	"math"
	"time"

	"github.com/quicrecovery/quicrecovery/congestion"
	"github.com/quicrecovery/quicrecovery/protocol"
	"github.com/quicrecovery/quicrecovery/qlog"
	"github.com/quicrecovery/quicrecovery/rangeset"
	"github.com/quicrecovery/quicrecovery/utils"
)

const minRTT = time.Millisecond

// Recovery is the loss-detection and RTT-estimation engine (spec
// component C7): it owns one Space per packet-number space, a single
// pluggable congestion.Controller and congestion.Pacer shared across all
// of them, and the RTT estimator the controller and PTO timer both read
// from. Grounded on aioquic's QuicConnection recovery logic (the
// NithinPJ998-quic-go teacher pack spreads the same responsibilities
// across sentPacketHandler/receivedPacketHandler, but the spec's
// single-engine shape matches aioquic's QuicPacketRecovery more closely).
type Recovery struct {
	isClientWithout1RTTKeys bool
	sendProbe               SendProbe
	logger                  utils.Logger
	sink                    qlog.EventSink
	maxAckDelay             time.Duration

	controller congestion.Controller
	pacer      *congestion.Pacer

	spaces [4]*Space // indexed by protocol.EncryptionLevel; Encryption0RTT unused

	ptoCount int

	rttInitialized bool
	rttLatest      time.Duration
	rttMin         time.Duration
	rttSmoothed    time.Duration
	rttVariance    time.Duration

	lastAckElicitingSendTime time.Time

	createdAt time.Time
}

// NewRecovery constructs a Recovery engine with Initial, Handshake and
// ApplicationData spaces already open.
func NewRecovery(cfg Config, now time.Time) *Recovery {
	return newRecovery(cfg, now, congestion.NewController(cfg.Controller))
}

// newRecovery builds a Recovery around an already-constructed controller,
// letting tests substitute a mock in place of one of the three built-in
// algorithms to assert the wiring between the two independently of any
// single controller's own growth/loss math.
func newRecovery(cfg Config, now time.Time, controller congestion.Controller) *Recovery {
	r := &Recovery{
		isClientWithout1RTTKeys: cfg.IsClientWithout1RTTKeys,
		sendProbe:               cfg.SendProbe,
		logger:                  cfg.logger(),
		sink:                    cfg.sink(),
		maxAckDelay:             cfg.maxAckDelay(),
		controller:              controller,
		pacer:                   congestion.NewPacer(now),
		rttMin:                  time.Duration(math.MaxInt64),
		createdAt:               now,
	}
	r.spaces[protocol.EncryptionInitial] = NewSpace(protocol.EncryptionInitial)
	r.spaces[protocol.EncryptionHandshake] = NewSpace(protocol.EncryptionHandshake)
	r.spaces[protocol.Encryption1RTT] = NewSpace(protocol.Encryption1RTT)
	return r
}

// NewRecoveryForTesting exposes newRecovery to external test packages that
// need to inject a mock congestion.Controller (internal/mocks/congestion)
// without reaching into ackhandler's internals.
func NewRecoveryForTesting(cfg Config, now time.Time, controller congestion.Controller) *Recovery {
	return newRecovery(cfg, now, controller)
}

// Controller exposes the underlying congestion controller, e.g. so the
// send path can ask CongestionWindow()/BytesInFlight() before deciding
// whether a packet may go out.
func (r *Recovery) Controller() congestion.Controller { return r.controller }

// NextSendTime reports the pacer's next permitted send time for now.
func (r *Recovery) NextSendTime(now time.Time) time.Time {
	return r.pacer.NextSendTime(now)
}

func (r *Recovery) spaceAt(level protocol.EncryptionLevel) *Space {
	return r.spaces[level]
}

// OnPacketSent records a freshly transmitted packet (spec §4.6
// on_packet_sent). Only an in-flight packet is handed to the congestion
// controller and the pacer. Ack-eliciting is a separate flag: the space
// counts every ack-eliciting packet toward the PTO arming condition, and
// an ack-eliciting packet that is also in flight sets the send time the
// PTO deadline is measured from.
func (r *Recovery) OnPacketSent(level protocol.EncryptionLevel, pkt *SentPacket) {
	space := r.spaceAt(level)
	space.Add(pkt)

	if pkt.InFlight {
		if pkt.IsAckEliciting {
			r.lastAckElicitingSendTime = pkt.SentTime
		}
		r.controller.OnPacketSent(pkt.SentTime, congestion.SentPacket{
			Number:   pkt.PacketNumber,
			SentTime: pkt.SentTime,
			Size:     pkt.Size,
		})
		r.pacer.UpdateAfterSend(pkt.SentTime)
	}
	r.sink.RecordPacketSent(pkt.SentTime, qlog.PacketSentFields{Level: level, Number: pkt.PacketNumber, Size: pkt.Size})
}

// OnAckReceived processes one ACK frame against a space (spec §4.6
// on_ack_received, steps 1-6).
func (r *Recovery) OnAckReceived(level protocol.EncryptionLevel, ackRanges rangeset.Set[protocol.PacketNumber], ackDelay time.Duration, now time.Time) {
	space := r.spaceAt(level)
	if len(ackRanges) == 0 {
		return
	}

	// Step 1: largest_acked = ack_ranges.max.
	largestAcked := ackRanges.Max()
	if largestAcked > space.largestAckedPacket {
		space.largestAckedPacket = largestAcked
	}

	// Step 2: ascending sweep, popping everything the ranges cover.
	var (
		anyNewlyAcked    bool
		largestNewlyAcked protocol.PacketNumber
		largestSentTime  time.Time
		anyEliciting     bool
	)
	for _, pn := range append([]protocol.PacketNumber(nil), space.sentPacketNums...) {
		if pn > largestAcked {
			break
		}
		if !ackRanges.Contains(pn) {
			continue
		}
		pkt, ok := space.Get(pn)
		if !ok {
			continue
		}
		space.remove(pn)

		if pkt.InFlight {
			rttArg := r.rttSmoothed
			if _, isVivace := r.controller.(*congestion.VivaceController); isVivace {
				rttArg = now.Sub(pkt.SentTime)
			}
			r.controller.OnPacketAcked(congestion.SentPacket{
				Number:   pkt.PacketNumber,
				SentTime: pkt.SentTime,
				Size:     pkt.Size,
			}, now, rttArg, r.rttSmoothed)
		}

		if pkt.OnDelivery != nil {
			pkt.OnDelivery(OutcomeAcked)
		}

		anyNewlyAcked = true
		if pn >= largestNewlyAcked {
			largestNewlyAcked = pn
			largestSentTime = pkt.SentTime
		}
		if pkt.IsAckEliciting {
			anyEliciting = true
		}
	}

	// Step 3.
	if !anyNewlyAcked {
		return
	}

	// Step 4: RTT sample only taken when the newly-acked set includes the
	// largest acked packet number and at least one eliciting packet.
	if largestAcked == largestNewlyAcked && anyEliciting {
		latestRTT := now.Sub(largestSentTime)
		if ackDelay > r.maxAckDelay {
			ackDelay = r.maxAckDelay
		}

		r.rttLatest = latestRTT
		if r.rttLatest < minRTT {
			r.rttLatest = minRTT
		}
		if r.rttLatest < r.rttMin {
			r.rttMin = r.rttLatest
		}
		adjusted := r.rttLatest
		if adjusted > r.rttMin+ackDelay {
			adjusted -= ackDelay
		}

		if !r.rttInitialized {
			r.rttInitialized = true
			r.rttSmoothed = adjusted
			r.rttVariance = adjusted / 2
		} else {
			diff := r.rttMin - adjusted
			if diff < 0 {
				diff = -diff
			}
			r.rttVariance = time.Duration(0.75*float64(r.rttVariance) + 0.25*float64(diff))
			r.rttSmoothed = time.Duration(0.875*float64(r.rttSmoothed) + 0.125*float64(adjusted))
		}

		r.controller.OnRTTMeasurement(r.rttLatest, r.rttSmoothed, now)
		r.pacer.UpdateRate(r.controller.CongestionWindow(), r.rttSmoothed)

		r.emitMetrics(now)
	}

	// Step 5.
	r.detectLoss(space, now)

	// Step 6.
	r.ptoCount = 0
}

func (r *Recovery) emitMetrics(now time.Time) {
	ssthresh, hasSSThresh := r.controller.SlowStartThreshold()
	r.sink.RecordMetricsUpdated(now, qlog.MetricsUpdatedFields{
		MinRTT:           r.rttMin,
		SmoothedRTT:      r.rttSmoothed,
		LatestRTT:        r.rttLatest,
		RTTVariance:      r.rttVariance,
		CongestionWindow: r.controller.CongestionWindow(),
		BytesInFlight:    r.controller.BytesInFlight(),
		SSThreshold:      ssthresh,
		HasSSThreshold:   hasSSThresh,
	})
}

// detectLoss implements spec §4.6.a: a packet is lost if its number is at
// or below largest_acked-PacketThreshold, or if it was sent long enough
// ago relative to loss_delay. Survivors below the largest acked number
// set the space's candidate loss_time to the earliest point they would
// qualify under the time-threshold rule.
func (r *Recovery) detectLoss(space *Space, now time.Time) {
	baseRTT := int64(protocol.InitialRTT)
	if r.rttInitialized {
		base := r.rttLatest
		if r.rttSmoothed > base {
			base = r.rttSmoothed
		}
		baseRTT = int64(base)
	}
	lossDelay := time.Duration(float64(baseRTT) * protocol.TimeThreshold)

	packetThreshold := space.largestAckedPacket - protocol.PacketThreshold

	var lost []*SentPacket
	space.lossTime = time.Time{}

	for _, pn := range append([]protocol.PacketNumber(nil), space.sentPacketNums...) {
		if pn > space.largestAckedPacket {
			break
		}
		pkt, ok := space.Get(pn)
		if !ok {
			continue
		}
		if pn <= packetThreshold || !pkt.SentTime.After(now.Add(-lossDelay)) {
			lost = append(lost, pkt)
			continue
		}
		candidate := pkt.SentTime.Add(lossDelay)
		if space.lossTime.IsZero() || candidate.Before(space.lossTime) {
			space.lossTime = candidate
		}
	}

	r.onPacketsLost(lost, space, now)
}

// onPacketsLost implements spec §4.6.b. Every packet handed in is
// removed from the space and has its delivery handler fired regardless
// of InFlight, but only in-flight packets are reported to the
// congestion controller - a packet that was never in flight never
// contributed to bytes_in_flight in the first place.
func (r *Recovery) onPacketsLost(pkts []*SentPacket, space *Space, now time.Time) {
	if len(pkts) == 0 {
		return
	}
	var inFlight []congestion.SentPacket
	for _, pkt := range pkts {
		space.remove(pkt.PacketNumber)
		pkt.declaredLost = true
		if pkt.InFlight {
			inFlight = append(inFlight, congestion.SentPacket{
				Number:   pkt.PacketNumber,
				SentTime: pkt.SentTime,
				Size:     pkt.Size,
			})
		}
		if pkt.OnDelivery != nil {
			pkt.OnDelivery(OutcomeLost)
		}
		r.sink.RecordPacketLost(now, qlog.PacketLostFields{Level: space.Level, Number: pkt.PacketNumber, Size: pkt.Size})
	}
	if len(inFlight) > 0 {
		r.controller.OnPacketsLost(inFlight, now)
		r.pacer.UpdateRate(r.controller.CongestionWindow(), r.rttSmoothed)
		r.emitMetrics(now)
	}
}

// GetLossDetectionTime implements spec §4.6.c: the earliest outstanding
// space loss_time if any space has one armed, else the PTO deadline.
func (r *Recovery) GetLossDetectionTime() (time.Time, bool) {
	var earliest time.Time
	for _, space := range r.spaces {
		if space == nil || space.lossTime.IsZero() {
			continue
		}
		if earliest.IsZero() || space.lossTime.Before(earliest) {
			earliest = space.lossTime
		}
	}
	if !earliest.IsZero() {
		r.sink.RecordLossTimerUpdated(earliest, qlog.LossTimerUpdatedFields{TimerType: "ack", Deadline: earliest})
		return earliest, true
	}

	totalEliciting := 0
	for _, space := range r.spaces {
		if space == nil {
			continue
		}
		totalEliciting += space.ackElicitingInFlightCnt
	}
	if !r.isClientWithout1RTTKeys && totalEliciting == 0 {
		return time.Time{}, false
	}

	var base time.Duration
	if !r.rttInitialized {
		base = 2 * time.Duration(protocol.InitialRTT)
	} else {
		variance := 4 * r.rttVariance
		if variance < time.Duration(protocol.Granularity) {
			variance = time.Duration(protocol.Granularity)
		}
		base = r.rttSmoothed + variance + r.maxAckDelay
	}
	timeout := base * time.Duration(1<<uint(r.ptoCount))
	deadline := r.lastAckElicitingSendTime.Add(timeout)
	r.sink.RecordLossTimerUpdated(deadline, qlog.LossTimerUpdatedFields{TimerType: "pto", Deadline: deadline})
	return deadline, true
}

// OnLossDetectionTimeout implements spec §4.6.d.
func (r *Recovery) OnLossDetectionTimeout(now time.Time) {
	ranTimeThreshold := false
	for _, space := range r.spaces {
		if space == nil || space.lossTime.IsZero() {
			continue
		}
		r.detectLoss(space, now)
		ranTimeThreshold = true
	}
	if ranTimeThreshold {
		return
	}

	r.ptoCount++
	for _, space := range r.spaces {
		if space == nil {
			continue
		}
		var crypto []*SentPacket
		for _, pkt := range space.Ascending() {
			if pkt.IsCryptoPacket {
				crypto = append(crypto, pkt)
			}
		}
		r.onPacketsLost(crypto, space, now)
	}
	// A probe timeout only re-queues crypto packets as lost (spec §4.6.d);
	// application-data packets are left outstanding rather than handed to
	// the congestion controller's loss path, so an ordinary PTO on a
	// space with no unacked CRYPTO frames leaves cwnd untouched.
	//
	// send_probe fires once per timeout, not once per space; the probe
	// goes out at the lowest-numbered space still open, matching the
	// handshake's usual Initial-before-Handshake-before-ApplicationData
	// precedence.
	if r.sendProbe != nil {
		for level, space := range r.spaces {
			if space == nil {
				continue
			}
			r.sendProbe(protocol.EncryptionLevel(level))
			break
		}
	}
}

// DiscardSpace implements spec §4.6.e: every in-flight packet of this
// space expires silently (no delivery handler firing) and the space's
// bookkeeping resets.
func (r *Recovery) DiscardSpace(level protocol.EncryptionLevel) {
	space := r.spaceAt(level)
	if space == nil {
		return
	}
	var expired []congestion.SentPacket
	for _, pkt := range space.Ascending() {
		if !pkt.InFlight {
			continue
		}
		expired = append(expired, congestion.SentPacket{
			Number:   pkt.PacketNumber,
			SentTime: pkt.SentTime,
			Size:     pkt.Size,
		})
	}
	if len(expired) > 0 {
		r.controller.OnPacketsExpired(expired)
	}
	space.sentPackets = make(map[protocol.PacketNumber]*SentPacket)
	space.sentPacketNums = nil
	space.ackElicitingInFlightCnt = 0
	space.lossTime = time.Time{}
	space.ackAt = time.Time{}
}

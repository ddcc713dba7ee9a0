package congestion_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quicrecovery/quicrecovery/congestion"
	"github.com/quicrecovery/quicrecovery/protocol"
)

// These tests drive a VivaceController directly with sends, acks, losses
// and RTT measurements, the same calls the recovery engine makes, and
// check its byte accounting and that the window only moves once a monitor
// interval has run its full duration.
var _ = Describe("VivaceController", func() {
	var (
		v   *congestion.VivaceController
		now time.Time
	)

	BeforeEach(func() {
		now = time.Now()
		v = congestion.NewVivaceController()
	})

	It("starts with a positive congestion window derived from the initial rate", func() {
		Expect(v.CongestionWindow()).To(BeNumerically(">", 0))
		_, ok := v.SlowStartThreshold()
		Expect(ok).To(BeFalse())
	})

	It("tracks bytes in flight across send and ack", func() {
		pkt := congestion.SentPacket{SentTime: now, Size: protocol.MaxDatagramSize}
		v.OnPacketSent(now, pkt)
		Expect(v.BytesInFlight()).To(Equal(protocol.MaxDatagramSize))
		v.OnPacketAcked(pkt, now, 10*time.Millisecond, 10*time.Millisecond)
		Expect(v.BytesInFlight()).To(Equal(protocol.ByteCount(0)))
	})

	It("accounts losses into the cumulative loss counters", func() {
		pkt := congestion.SentPacket{SentTime: now, Size: protocol.MaxDatagramSize}
		v.OnPacketSent(now, pkt)
		v.OnPacketsLost([]congestion.SentPacket{pkt}, now.Add(time.Millisecond))
		Expect(v.LossCount()).To(Equal(uint64(1)))
		Expect(v.LossBytes()).To(Equal(protocol.MaxDatagramSize))
	})

	It("moves the congestion window once a monitor interval's full duration elapses", func() {
		before := v.CongestionWindow()
		srtt := 10 * time.Millisecond
		t := now

		for i := 0; i < 5; i++ {
			pkt := congestion.SentPacket{SentTime: t, Size: protocol.MaxDatagramSize}
			v.OnPacketSent(t, pkt)
			v.OnPacketAcked(pkt, t.Add(time.Millisecond), srtt, srtt)
		}
		// The interval only closes once 100ms (monitorIntervalDuration) has
		// passed; measurements taken before that must be no-ops.
		v.OnRTTMeasurement(srtt, srtt, t.Add(10*time.Millisecond))
		Expect(v.CongestionWindow()).To(Equal(before))

		t = t.Add(200 * time.Millisecond)
		v.OnRTTMeasurement(srtt, srtt, t)
		Expect(v.CongestionWindow()).ToNot(Equal(before))
	})
})

package ackhandler_test

import (
	"time"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quicrecovery/quicrecovery/ackhandler"
	mockcongestion "github.com/quicrecovery/quicrecovery/internal/mocks/congestion"
	"github.com/quicrecovery/quicrecovery/protocol"
)

// These tests exercise the contract between Recovery and a
// congestion.Controller directly, independent of any one algorithm's own
// growth/loss math: Recovery must call OnPacketSent at send time,
// OnPacketAcked once per in-flight packet it acks, and OnPacketsLost once
// per batch of in-flight packets it sweeps out of a Space as lost, in the
// order spec §4.6 describes.
var _ = Describe("Recovery/Controller wiring", func() {
	var (
		ctrl    *gomock.Controller
		mockCC  *mockcongestion.MockController
		now     time.Time
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mockCC = mockcongestion.NewMockController(ctrl)
		now = time.Now()
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	It("calls OnPacketSent once per in-flight packet handed to it", func() {
		mockCC.EXPECT().OnPacketSent(now, gomock.Any())
		mockCC.EXPECT().CongestionWindow().Return(protocol.InitialWindow).AnyTimes()
		mockCC.EXPECT().BytesInFlight().Return(protocol.ByteCount(0)).AnyTimes()

		recovery := ackhandler.NewRecoveryForTesting(ackhandler.Config{}, now, mockCC)
		recovery.OnPacketSent(protocol.Encryption1RTT, &ackhandler.SentPacket{
			PacketNumber:   0,
			SentTime:       now,
			Size:           protocol.MaxDatagramSize,
			InFlight:       true,
			IsAckEliciting: true,
		})
	})

	It("feeds the smoothed RTT, not the per-packet RTT, to a non-Vivace controller on ack", func() {
		ackTime := now.Add(10 * time.Millisecond)

		mockCC.EXPECT().OnPacketSent(now, gomock.Any())
		mockCC.EXPECT().OnPacketAcked(gomock.Any(), ackTime, gomock.Any(), gomock.Any()).
			Do(func(_ interface{}, _ time.Time, latestRTT, smoothedRTT time.Duration) {
				Expect(latestRTT).To(Equal(smoothedRTT))
			})
		mockCC.EXPECT().OnRTTMeasurement(gomock.Any(), gomock.Any(), ackTime)
		mockCC.EXPECT().CongestionWindow().Return(protocol.InitialWindow).AnyTimes()
		mockCC.EXPECT().BytesInFlight().Return(protocol.ByteCount(0)).AnyTimes()
		mockCC.EXPECT().SlowStartThreshold().Return(protocol.ByteCount(0), false).AnyTimes()

		recovery := ackhandler.NewRecoveryForTesting(ackhandler.Config{}, now, mockCC)
		pkt := &ackhandler.SentPacket{
			PacketNumber:   0,
			SentTime:       now,
			Size:           protocol.MaxDatagramSize,
			InFlight:       true,
			IsAckEliciting: true,
		}
		recovery.OnPacketSent(protocol.Encryption1RTT, pkt)
		recovery.OnAckReceived(protocol.Encryption1RTT, ackRange(0), 0, ackTime)
	})

	It("calls OnPacketsLost with a swept crypto packet once a PTO timeout fires", func() {
		mockCC.EXPECT().OnPacketSent(now, gomock.Any())
		mockCC.EXPECT().CongestionWindow().Return(protocol.InitialWindow).AnyTimes()
		mockCC.EXPECT().BytesInFlight().Return(protocol.ByteCount(0)).AnyTimes()
		mockCC.EXPECT().SlowStartThreshold().Return(protocol.ByteCount(0), false).AnyTimes()
		mockCC.EXPECT().OnPacketsLost(gomock.Any(), gomock.Any()).
			Do(func(pkts interface{}, _ time.Time) {
				Expect(pkts).To(HaveLen(1))
			})

		recovery := ackhandler.NewRecoveryForTesting(ackhandler.Config{}, now, mockCC)
		recovery.OnPacketSent(protocol.Encryption1RTT, &ackhandler.SentPacket{
			PacketNumber:   0,
			SentTime:       now,
			Size:           protocol.MaxDatagramSize,
			InFlight:       true,
			IsAckEliciting: true,
			IsCryptoPacket: true,
		})
		recovery.OnLossDetectionTimeout(now.Add(time.Second))
	})
})

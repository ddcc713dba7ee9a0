package ackhandler_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quicrecovery/quicrecovery/ackhandler"
	"github.com/quicrecovery/quicrecovery/protocol"
)

var _ = Describe("Space", func() {
	var (
		space *ackhandler.Space
		now   time.Time
	)

	BeforeEach(func() {
		now = time.Now()
		space = ackhandler.NewSpace(protocol.Encryption1RTT)
	})

	It("starts with no in-flight ack-eliciting packets", func() {
		Expect(space.HasAckElicitingInFlight()).To(BeFalse())
	})

	It("tracks ack-eliciting packets added and reports them in ascending order", func() {
		space.Add(&ackhandler.SentPacket{PacketNumber: 1, SentTime: now, Size: 100, IsAckEliciting: true})
		space.Add(&ackhandler.SentPacket{PacketNumber: 2, SentTime: now, Size: 100, IsAckEliciting: true})
		space.Add(&ackhandler.SentPacket{PacketNumber: 3, SentTime: now, Size: 100, IsAckEliciting: true})

		Expect(space.HasAckElicitingInFlight()).To(BeTrue())

		var nums []protocol.PacketNumber
		for _, p := range space.Ascending() {
			nums = append(nums, p.PacketNumber)
		}
		Expect(nums).To(Equal([]protocol.PacketNumber{1, 2, 3}))
	})

	It("does not count non-ack-eliciting packets toward the in-flight counter", func() {
		space.Add(&ackhandler.SentPacket{PacketNumber: 1, SentTime: now, Size: 50, IsAckEliciting: false})
		Expect(space.HasAckElicitingInFlight()).To(BeFalse())
		_, ok := space.Get(1)
		Expect(ok).To(BeTrue())
	})

	It("records the received-packet bookkeeping used to schedule ACK frames", func() {
		space.RegisterReceived(5, now, true)
		space.RegisterReceived(6, now.Add(time.Millisecond), true)
		space.RegisterReceived(4, now.Add(2*time.Millisecond), false)

		space.ClearAckQueue()
	})
})

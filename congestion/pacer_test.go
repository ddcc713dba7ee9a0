package congestion_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quicrecovery/quicrecovery/congestion"
	"github.com/quicrecovery/quicrecovery/protocol"
)

var _ = Describe("Pacer", func() {
	var (
		p   *congestion.Pacer
		now time.Time
	)

	BeforeEach(func() {
		now = time.Now()
		p = congestion.NewPacer(now)
	})

	It("allows sending immediately before any rate is set", func() {
		Expect(p.NextSendTime(now)).To(Equal(time.Time{}))
	})

	It("delays the next send by one packet time right after UpdateRate with an empty bucket", func() {
		// packetTime = srtt * MaxDatagramSize / cwnd = 20ms * 1280 / 12800 = 2ms.
		p.UpdateRate(protocol.InitialWindow, 20*time.Millisecond)
		Expect(p.NextSendTime(now)).To(Equal(now.Add(2 * time.Millisecond)))
	})

	It("delays the next send once the burst budget is spent", func() {
		p.UpdateRate(protocol.MinimumWindow, 20*time.Millisecond)
		for i := 0; i < 100; i++ {
			p.UpdateAfterSend(now)
		}
		next := p.NextSendTime(now)
		Expect(next.IsZero()).To(BeFalse())
		Expect(next.After(now)).To(BeTrue())
	})

	It("replenishes the bucket as time passes", func() {
		p.UpdateRate(protocol.MinimumWindow, 20*time.Millisecond)
		for i := 0; i < 100; i++ {
			p.UpdateAfterSend(now)
		}
		later := now.Add(time.Second)
		Expect(p.NextSendTime(later)).To(Equal(time.Time{}))
	})
})

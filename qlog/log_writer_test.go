package qlog_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quicrecovery/quicrecovery/protocol"
	"github.com/quicrecovery/quicrecovery/qlog"
)

func countLines(path string) int {
	data, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())
	if len(data) == 0 {
		return 0
	}
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

var _ = Describe("FileSink", func() {
	var (
		dir  string
		sink *qlog.FileSink
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "qlog-filesink-")
		Expect(err).NotTo(HaveOccurred())
		sink, err = qlog.NewFileSink(dir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sink.Close()
		os.RemoveAll(dir)
	})

	It("creates all three metric log files", func() {
		for _, name := range []string{"window.log", "latency.log", "loss.log"} {
			_, err := os.Stat(filepath.Join(dir, name))
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("throttles rapid metrics updates to one line per interval", func() {
		now := time.Now()
		for i := 0; i < 5; i++ {
			sink.RecordMetricsUpdated(now.Add(time.Duration(i)*time.Microsecond), qlog.MetricsUpdatedFields{
				CongestionWindow: protocol.InitialWindow,
			})
		}
		Expect(countLines(filepath.Join(dir, "window.log"))).To(Equal(1))
	})

	It("never throttles loss events", func() {
		now := time.Now()
		for i := 0; i < 5; i++ {
			sink.RecordPacketLost(now.Add(time.Duration(i)*time.Microsecond), qlog.PacketLostFields{
				Number: protocol.PacketNumber(i),
				Size:   protocol.MaxDatagramSize,
			})
		}
		Expect(countLines(filepath.Join(dir, "loss.log"))).To(Equal(5))
	})

	It("admits a new metrics line once the throttle interval has passed", func() {
		now := time.Now()
		sink.RecordMetricsUpdated(now, qlog.MetricsUpdatedFields{CongestionWindow: protocol.InitialWindow})
		sink.RecordMetricsUpdated(now.Add(20*time.Millisecond), qlog.MetricsUpdatedFields{CongestionWindow: protocol.InitialWindow})
		Expect(countLines(filepath.Join(dir, "window.log"))).To(Equal(2))
	})
})

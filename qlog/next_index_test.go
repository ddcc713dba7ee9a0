package qlog_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quicrecovery/quicrecovery/qlog"
)

var _ = Describe("ReserveLogDir", func() {
	var root string

	BeforeEach(func() {
		var err error
		root, err = os.MkdirTemp("", "qlog-test-")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(root)
	})

	It("allocates index 1 for the first client directory", func() {
		dir, err := qlog.ReserveLogDir(root, "cubic", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(dir).To(Equal(filepath.Join(root, "cubic", "client", "c1")))
	})

	It("allocates increasing indices as directories are reserved", func() {
		dir1, err := qlog.ReserveLogDir(root, "reno", false)
		Expect(err).NotTo(HaveOccurred())
		dir2, err := qlog.ReserveLogDir(root, "reno", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(dir1).NotTo(Equal(dir2))
		Expect(dir2).To(Equal(filepath.Join(root, "reno", "server", "s2")))
	})

	It("skips over a directory created out of band", func() {
		Expect(os.MkdirAll(filepath.Join(root, "vivace", "client", "c1"), 0o755)).To(Succeed())
		dir, err := qlog.ReserveLogDir(root, "vivace", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(dir).To(Equal(filepath.Join(root, "vivace", "client", "c2")))
	})

	It("separates client and server indices", func() {
		client, err := qlog.ReserveLogDir(root, "cubic", true)
		Expect(err).NotTo(HaveOccurred())
		server, err := qlog.ReserveLogDir(root, "cubic", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(client).To(Equal(filepath.Join(root, "cubic", "client", "c1")))
		Expect(server).To(Equal(filepath.Join(root, "cubic", "server", "s1")))
	})
})

//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/capmon/internal/infra"
	"github.com/eliteGoblin/capmon/internal/queue"
	"github.com/eliteGoblin/capmon/internal/usecase"
	"github.com/eliteGoblin/capmon/test/fixtures"
)

var _ = Describe("Scan Engine", func() {
	var (
		scanDir    string
		triggerDir string
		producer   *fixtures.ProducerDir
		lostQueue  *queue.LostFileQueue
		logger     *zap.Logger
	)

	BeforeEach(func() {
		var err error
		scanDir, err = os.MkdirTemp("", "capmon-scan-*")
		Expect(err).NotTo(HaveOccurred())
		triggerDir, err = os.MkdirTemp("", "capmon-triggers-*")
		Expect(err).NotTo(HaveOccurred())

		producer = fixtures.NewProducerDir(scanDir)
		lostQueue = queue.NewLostFileQueue(16)
		logger = zap.NewNop()
	})

	AfterEach(func() {
		os.RemoveAll(scanDir)
		os.RemoveAll(triggerDir)
	})

	newEngine := func(lostTimeout, stuckTimeout time.Duration) *usecase.EngineImpl {
		return usecase.NewEngine(
			usecase.EngineConfig{LostTimeout: lostTimeout, StuckActiveTimeout: stuckTimeout},
			infra.NewSystemClock(),
			infra.NewDirLister(scanDir, ".pcap", logger),
			infra.NewTriggerWriter(triggerDir),
			lostQueue,
			logger,
		)
	}

	Describe("lost file hand-off", func() {
		It("enqueues a file whose mtime is already stale on the first cycle", func() {
			_, err := producer.WriteFile("APP1-t1.pcap", "capture data")
			Expect(err).NotTo(HaveOccurred())
			Expect(producer.AgeFile("APP1-t1.pcap", time.Hour)).To(Succeed())

			engine := newEngine(time.Second, time.Hour)
			report, err := engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(report.NewlyLostPaths).To(ConsistOf(filepath.Join(scanDir, "APP1-t1.pcap")))
			Expect(lostQueue.Len()).To(Equal(1))
			Expect(<-lostQueue.Items()).To(Equal(filepath.Join(scanDir, "APP1-t1.pcap")))
		})

		It("does not re-enqueue a file that stays lost", func() {
			_, err := producer.WriteFile("APP1-t1.pcap", "capture data")
			Expect(err).NotTo(HaveOccurred())
			Expect(producer.AgeFile("APP1-t1.pcap", time.Hour)).To(Succeed())

			engine := newEngine(time.Second, time.Hour)
			_, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			report, err := engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(report.NewlyLostPaths).To(BeEmpty())
			Expect(lostQueue.Len()).To(Equal(1))
		})
	})

	Describe("stuck app restart protocol", func() {
		It("writes one trigger per stuck episode and re-signals after recovery", func() {
			engine := newEngine(time.Hour, 50*time.Millisecond)
			triggerPath := filepath.Join(triggerDir, "APP1.restart")

			_, err := producer.WriteFile("APP1-t1.pcap", "initial")
			Expect(err).NotTo(HaveOccurred())

			// First cycle discovers the file; never stuck on discovery.
			report, err := engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.StuckActivePaths).To(BeEmpty())

			// Producer keeps appending past the stuck threshold.
			time.Sleep(100 * time.Millisecond)
			Expect(producer.Append("APP1-t1.pcap", "more data")).To(Succeed())

			report, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.SignaledApps).To(ConsistOf("APP1"))
			Expect(triggerPath).To(BeAnExistingFile())

			// Supervisor consumed the trigger.
			Expect(os.Remove(triggerPath)).To(Succeed())

			// Still stuck next cycle: no new trigger appears.
			time.Sleep(20 * time.Millisecond)
			Expect(producer.Append("APP1-t1.pcap", "even more")).To(Succeed())
			report, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.SignaledApps).To(BeEmpty())
			Expect(triggerPath).NotTo(BeAnExistingFile())

			// Producer restarted and went quiet: app leaves the stuck set.
			report, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.StuckActivePaths).To(BeEmpty())

			// Second stuck episode: trigger written again.
			time.Sleep(60 * time.Millisecond)
			Expect(producer.Append("APP1-t1.pcap", "stuck again")).To(Succeed())
			report, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.SignaledApps).To(ConsistOf("APP1"))
			Expect(triggerPath).To(BeAnExistingFile())
		})

		It("signals well-formed apps even when a malformed filename is stuck too", func() {
			engine := newEngine(time.Hour, 50*time.Millisecond)

			_, err := producer.WriteFile("APP1-t1.pcap", "a")
			Expect(err).NotTo(HaveOccurred())
			_, err = producer.WriteFile("nohyphen.pcap", "b")
			Expect(err).NotTo(HaveOccurred())

			_, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			time.Sleep(100 * time.Millisecond)
			Expect(producer.Append("APP1-t1.pcap", "x")).To(Succeed())
			Expect(producer.Append("nohyphen.pcap", "y")).To(Succeed())

			report, err := engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.SignaledApps).To(ConsistOf("APP1"))
			Expect(filepath.Join(triggerDir, "APP1.restart")).To(BeAnExistingFile())
		})

		It("leaves an existing trigger file untouched", func() {
			engine := newEngine(time.Hour, 50*time.Millisecond)
			triggerPath := filepath.Join(triggerDir, "APP1.restart")
			Expect(os.WriteFile(triggerPath, []byte("operator note"), 0644)).To(Succeed())

			_, err := producer.WriteFile("APP1-t1.pcap", "a")
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			time.Sleep(100 * time.Millisecond)
			Expect(producer.Append("APP1-t1.pcap", "x")).To(Succeed())
			report, err := engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.SignaledApps).To(ConsistOf("APP1"))
			Expect(report.FailedTriggerWrites).To(BeZero())

			data, err := os.ReadFile(triggerPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("operator note"))
		})
	})

	Describe("removed files", func() {
		It("reports a consumed file and forgets its history", func() {
			engine := newEngine(time.Hour, time.Hour)

			path, err := producer.WriteFile("APP1-t1.pcap", "data")
			Expect(err).NotTo(HaveOccurred())

			report, err := engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TrackedFiles).To(Equal(1))

			Expect(producer.Remove("APP1-t1.pcap")).To(Succeed())

			report, err = engine.RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.RemovedPaths).To(ConsistOf(path))
			Expect(report.TrackedFiles).To(BeZero())
		})
	})

	Describe("fatal conditions", func() {
		It("aborts the cycle when the scan directory is unreadable", func() {
			engine := newEngine(time.Hour, time.Hour)
			Expect(os.RemoveAll(scanDir)).To(Succeed())

			_, err := engine.RunCycle(context.Background())
			Expect(err).To(HaveOccurred())
		})
	})
})

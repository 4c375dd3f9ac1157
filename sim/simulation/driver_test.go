package simulation

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
)

func loads(addrs ...uint64) []trace.AccessEvent {
	events := make([]trace.AccessEvent, len(addrs))
	for i, addr := range addrs {
		events[i] = trace.LoadAt(addr)
	}

	return events
}

var _ = Describe("Driver", func() {
	var c cache.Cache

	BeforeEach(func() {
		c = cache.MakeBuilder().
			WithPolicy(cache.DirectMapped).
			WithByteSize(16 * cache.KB).
			Build("direct map 16KB")
	})

	It("should replay every access in order", func() {
		events := loads(0x0, 0x20, 0x40, 0x0, 0x20, 0x40)

		result, err := NewDriver(c).Run(context.Background(), events)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Label).To(Equal("direct map 16KB"))
		Expect(result.Stats.Accesses).To(Equal(uint64(6)))
		Expect(result.HasHitRate).To(BeTrue())
		Expect(result.HitRate).To(BeNumerically("~", 50.0, 1e-9))
	})

	It("should report progress in batches", func() {
		var reports []uint64

		_, err := NewDriver(c).
			WithBatchSize(4).
			WithProgress(func(n uint64) { reports = append(reports, n) }).
			Run(context.Background(), loads(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))

		Expect(err).NotTo(HaveOccurred())
		Expect(reports).To(Equal([]uint64{4, 4, 2}))
	})

	It("should publish statistics after every batch", func() {
		var published []cache.Statistics

		result, err := NewDriver(c).
			WithBatchSize(2).
			WithStats(func(s cache.Statistics) {
				published = append(published, s)
			}).
			Run(context.Background(), loads(0x0, 0x0, 0x20, 0x20, 0x40))

		Expect(err).NotTo(HaveOccurred())
		Expect(published).To(HaveLen(3))
		Expect(published[0].Accesses).To(Equal(uint64(2)))
		Expect(published[0].Hits).To(Equal(uint64(1)))
		Expect(published[1].Accesses).To(Equal(uint64(4)))
		Expect(published[2]).To(Equal(result.Stats))
	})

	It("should have no hit rate for an empty trace", func() {
		result, err := NewDriver(c).Run(context.Background(), nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.HasHitRate).To(BeFalse())
	})

	It("should stop when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewDriver(c).Run(ctx, loads(0x0))

		Expect(err).To(MatchError(context.Canceled))
		Expect(c.Stats().Accesses).To(BeZero())
	})
})

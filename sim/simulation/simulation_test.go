package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/cache"
)

var _ = Describe("Simulation", func() {
	var s *Simulation

	BeforeEach(func() {
		s = NewSimulation()
	})

	It("should have a unique ID", func() {
		Expect(s.ID()).NotTo(BeEmpty())
		Expect(NewSimulation().ID()).NotTo(Equal(s.ID()))
	})

	It("should keep caches in registration order", func() {
		a := cache.MakeBuilder().Build("a")
		b := cache.MakeBuilder().Build("b")

		Expect(s.RegisterCache(b)).To(Succeed())
		Expect(s.RegisterCache(a)).To(Succeed())

		Expect(s.Caches()).To(Equal([]cache.Cache{b, a}))
		Expect(s.GetCacheByName("a")).To(BeIdenticalTo(a))
		Expect(s.GetCacheByName("c")).To(BeNil())
	})

	It("should refuse two caches with the same name", func() {
		Expect(s.RegisterCache(cache.MakeBuilder().Build("a"))).To(Succeed())

		err := s.RegisterCache(cache.MakeBuilder().Build("a"))

		Expect(err).To(MatchError(ErrDuplicateCache))
		Expect(s.Caches()).To(HaveLen(1))
	})
})

package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/cache/addressing"
)

var _ = Describe("Config", func() {
	DescribeTable("should derive labels from the record",
		func(c Config, label string) {
			Expect(c.Label()).To(Equal(label))
		},
		Entry(nil, Config{Policy: DirectMapped, ByteSize: 1 * KB}, "direct map  1KB"),
		Entry(nil, Config{Policy: DirectMapped, ByteSize: 16 * KB}, "direct map 16KB"),
		Entry(nil, Config{Policy: DirectMapped, ByteSize: 512}, "direct map 512B"),
		Entry(nil, Config{Policy: FullyAssociativeLRU, ByteSize: 16 * KB}, "fully assoc true-LRU"),
		Entry(nil, Config{Policy: FullyAssociativePLRU, ByteSize: 16 * KB}, "fully assoc pseudo-LRU"),
		Entry(nil, Config{Policy: SetAssociative, ByteSize: 16 * KB, Associativity: 4}, "set assoc 4"),
		Entry(nil, Config{Policy: SetAssociativeSkipWriteMiss, ByteSize: 16 * KB, Associativity: 2},
			"set assoc 2 skip on write miss"),
		Entry(nil, Config{Policy: SetAssociativePrefetch, ByteSize: 16 * KB, Associativity: 16},
			"set assoc 16 prefetch"),
		Entry(nil, Config{Policy: SetAssociativePrefetchOnMiss, ByteSize: 16 * KB, Associativity: 8},
			"set assoc 8 prefetch on miss"),
	)

	It("should list the reference configurations", func() {
		configs := DefaultConfigs()

		Expect(configs).To(HaveLen(22))
		Expect(configs[0].Label()).To(Equal("direct map  1KB"))
		Expect(configs[5].Label()).To(Equal("fully assoc pseudo-LRU"))
		Expect(configs[6].Label()).To(Equal("set assoc 2"))
		Expect(configs[21].Label()).To(Equal("set assoc 16 prefetch on miss"))

		for _, c := range configs {
			Expect(c.Validate()).To(Succeed(), c.Label())
		}
	})

	It("should tell the set-associative policies apart", func() {
		for _, p := range []Policy{SetAssociative, SetAssociativeSkipWriteMiss,
			SetAssociativePrefetch, SetAssociativePrefetchOnMiss} {
			Expect(p.IsSetAssociative()).To(BeTrue(), p.String())
		}

		for _, p := range []Policy{DirectMapped, FullyAssociativeLRU,
			FullyAssociativePLRU, Policy(42)} {
			Expect(p.IsSetAssociative()).To(BeFalse(), p.String())
		}
	})

	It("should use the associativity of set-associative caches", func() {
		g, err := Config{Policy: SetAssociativePrefetch, ByteSize: 16 * KB,
			Associativity: 4}.Geometry()

		Expect(err).NotTo(HaveOccurred())
		Expect(g.Associativity).To(Equal(4))
		Expect(g.NumSets).To(Equal(128))
	})

	It("should ignore associativity for direct-mapped caches", func() {
		g, err := Config{Policy: DirectMapped, ByteSize: 4 * KB,
			Associativity: 8}.Geometry()

		Expect(err).NotTo(HaveOccurred())
		Expect(g.Associativity).To(Equal(1))
		Expect(g.NumSets).To(Equal(128))
	})

	It("should make fully-associative caches a single set", func() {
		g, err := Config{Policy: FullyAssociativePLRU, ByteSize: 16 * KB}.Geometry()

		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumSets).To(Equal(1))
		Expect(g.Associativity).To(Equal(512))
	})

	It("should reject unknown policies", func() {
		err := Config{Policy: Policy(42), ByteSize: 16 * KB}.Validate()
		Expect(err).To(MatchError(ErrUnknownPolicy))
	})

	It("should reject bad geometry", func() {
		err := Config{Policy: SetAssociative, ByteSize: 16 * KB,
			Associativity: 3}.Validate()
		Expect(err).To(MatchError(addressing.ErrBadAssociativity))

		_, err = Config{Policy: DirectMapped, ByteSize: 1000}.Build()
		Expect(err).To(MatchError(addressing.ErrNotPowerOfTwo))
	})
})

var _ = Describe("Builder", func() {
	It("should build with defaults", func() {
		c := MakeBuilder().Build("Cache")

		Expect(c.Name()).To(Equal("Cache"))
		Expect(c.Config()).To(Equal(Config{
			Policy:        SetAssociative,
			ByteSize:      16 * KB,
			Associativity: 4,
		}))
	})

	It("should panic at construction on invalid geometry", func() {
		b := MakeBuilder().WithWayAssociativity(3)

		Expect(func() { b.Build("Cache") }).To(Panic())
	})

	It("should panic on an unknown policy", func() {
		b := MakeBuilder().WithPolicy(Policy(-1))

		Expect(func() { b.Build("Cache") }).To(Panic())
	})

	It("should wrap the strategies", func() {
		skip := MakeBuilder().WithPolicy(SetAssociativeSkipWriteMiss).Build("a")
		prefetch := MakeBuilder().WithPolicy(SetAssociativePrefetch).Build("b")
		onMiss := MakeBuilder().WithPolicy(SetAssociativePrefetchOnMiss).Build("c")

		Expect(skip).To(BeAssignableToTypeOf(&skipWriteMissStrategy{}))
		Expect(prefetch).To(BeAssignableToTypeOf(&prefetchStrategy{}))
		Expect(onMiss.(*prefetchStrategy).onMissOnly).To(BeTrue())
	})
})

package addressing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Geometry", func() {
	It("should derive lines and sets", func() {
		g, err := NewGeometry(16384, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(g.BlockBytes).To(Equal(uint64(32)))
		Expect(g.NumLines).To(Equal(512))
		Expect(g.NumSets).To(Equal(128))
		Expect(g.IndexBits()).To(Equal(7))
	})

	It("should give a direct-mapped 16KB cache 9 index bits", func() {
		g, err := NewGeometry(16384, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(g.NumSets).To(Equal(512))
		Expect(g.IndexBits()).To(Equal(9))
	})

	It("should reject sizes that are not powers of two", func() {
		_, err := NewGeometry(3000, 1)
		Expect(err).To(MatchError(ErrNotPowerOfTwo))
	})

	It("should reject sizes smaller than a block", func() {
		_, err := NewGeometry(16, 1)
		Expect(err).To(MatchError(ErrNotPowerOfTwo))
	})

	It("should reject zero associativity", func() {
		_, err := NewGeometry(1024, 0)
		Expect(err).To(MatchError(ErrBadAssociativity))
	})

	It("should reject associativity that is not a power of two", func() {
		_, err := NewGeometry(1024, 3)
		Expect(err).To(MatchError(ErrBadAssociativity))
	})

	It("should reject associativity larger than the line count", func() {
		_, err := NewGeometry(1024, 64)
		Expect(err).To(MatchError(ErrBadAssociativity))
	})
})

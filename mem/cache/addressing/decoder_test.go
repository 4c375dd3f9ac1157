package addressing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decoder", func() {
	var g Geometry

	BeforeEach(func() {
		var err error
		g, err = NewGeometry(16384, 1)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should split an indexed address", func() {
		d := NewDecoder(g, Indexed)

		offset, index, tag := d.Decode(0x12345)

		Expect(offset).To(Equal(uint64(0x5)))
		Expect(index).To(Equal(int((0x12345 >> 5) & 0x1ff)))
		Expect(tag).To(Equal(uint64(0x12345 >> 14)))
	})

	It("should use the whole block number as the tag when fully associative",
		func() {
			d := NewDecoder(g, FullyAssociative)

			offset, index, tag := d.Decode(0x12345)

			Expect(offset).To(Equal(uint64(0x5)))
			Expect(index).To(Equal(0))
			Expect(tag).To(Equal(uint64(0x12345 >> 5)))
			Expect(d.NumSets()).To(Equal(1))
		})

	It("should place the next block in the next set", func() {
		sa, err := NewGeometry(16384, 4)
		Expect(err).NotTo(HaveOccurred())
		d := NewDecoder(sa, Indexed)

		_, index, tag := d.Decode(0x7fe0)
		_, nextIndex, nextTag := d.Decode(0x7fe0 + BlockBytes)

		Expect(index).To(Equal(127))
		Expect(nextIndex).To(Equal(0))
		Expect(nextTag).To(Equal(tag + 1))
	})

	It("should decode the same address the same way every time", func() {
		d := NewDecoder(g, Indexed)
		addrs := []uint64{0, 0x20, 0x40, 0xdeadbeef, 0xffffffffffffffff}

		for _, addr := range addrs {
			o1, i1, t1 := d.Decode(addr)
			o2, i2, t2 := d.Decode(addr)

			Expect(o2).To(Equal(o1))
			Expect(i2).To(Equal(i1))
			Expect(t2).To(Equal(t1))
		}
	})
})

package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Geometry", func() {
	It("should compute field widths", func() {
		g := Geometry{LineSize: 16, SetCount: 4, Associativity: 2}

		Expect(g.OffsetBits()).To(Equal(4))
		Expect(g.SetBits()).To(Equal(2))
		Expect(g.TagBits()).To(Equal(10))
		Expect(g.ByteSize()).To(Equal(128))
	})

	It("should decompose addresses of a direct mapped cache", func() {
		g := Geometry{LineSize: 16, SetCount: 8, Associativity: 1}

		Expect(g.Decompose(0x0000)).To(Equal(Fields{Offset: 0, SetIndex: 0, Tag: 0}))
		Expect(g.Decompose(0x0010)).To(Equal(Fields{Offset: 0, SetIndex: 1, Tag: 0}))
		Expect(g.Decompose(0x113c)).To(Equal(Fields{Offset: 0xc, SetIndex: 3, Tag: 0x22}))
	})

	It("should use every bit for the tag when there is nothing else", func() {
		g := Geometry{LineSize: 1, SetCount: 1, Associativity: 4}

		Expect(g.TagBits()).To(Equal(16))
		Expect(g.Decompose(0xFFFF)).To(Equal(Fields{Tag: 0xFFFF}))
	})

	It("should leave no tag when offset and set use all bits", func() {
		g := Geometry{LineSize: 256, SetCount: 256, Associativity: 1}

		Expect(g.Validate()).To(Succeed())
		Expect(g.TagBits()).To(Equal(0))
		Expect(g.Decompose(0xABCD)).To(Equal(Fields{Offset: 0xCD, SetIndex: 0xAB, Tag: 0}))
	})

	DescribeTable("should reject invalid geometries",
		func(g Geometry) {
			Expect(g.Validate()).To(MatchError(ErrInvalidGeometry))
		},
		Entry("line size not a power of two", Geometry{LineSize: 12, SetCount: 4, Associativity: 1}),
		Entry("zero line size", Geometry{LineSize: 0, SetCount: 4, Associativity: 1}),
		Entry("set count not a power of two", Geometry{LineSize: 16, SetCount: 3, Associativity: 1}),
		Entry("negative set count", Geometry{LineSize: 16, SetCount: -4, Associativity: 1}),
		Entry("zero associativity", Geometry{LineSize: 16, SetCount: 4, Associativity: 0}),
		Entry("fields wider than the address", Geometry{LineSize: 1024, SetCount: 128, Associativity: 1}),
	)
})

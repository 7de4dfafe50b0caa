package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags", func() {
	var (
		tags TagArray
	)

	BeforeEach(func() {
		tags = NewTagArray(4, 2)
	})

	It("should start with every way empty", func() {
		Expect(tags.NumSets()).To(Equal(4))
		Expect(tags.NumWays()).To(Equal(2))

		for setID := 0; setID < 4; setID++ {
			set := tags.GetSet(setID)
			Expect(set.Blocks).To(HaveLen(2))

			for wayID, block := range set.Blocks {
				Expect(block.IsValid).To(BeFalse())
				Expect(block.SetID).To(Equal(setID))
				Expect(block.WayID).To(Equal(wayID))
			}
		}
	})

	It("should lookup", func() {
		tags.Update(Block{Tag: 0x22, SetID: 1, WayID: 1, IsValid: true})

		block, ok := tags.Lookup(1, 0x22)

		Expect(ok).To(BeTrue())
		Expect(block.WayID).To(Equal(1))
	})

	It("should not find a tag stored in another set", func() {
		tags.Update(Block{Tag: 0x22, SetID: 1, WayID: 1, IsValid: true})

		_, ok := tags.Lookup(2, 0x22)

		Expect(ok).To(BeFalse())
	})

	It("should not match an empty way", func() {
		block, ok := tags.Lookup(0, 0)

		Expect(ok).To(BeFalse())
		Expect(block).To(BeZero())
	})

	It("should match a full 16-bit tag", func() {
		tags.Update(Block{Tag: 0xFFFF, SetID: 3, WayID: 0, IsValid: true})

		block, ok := tags.Lookup(3, 0xFFFF)

		Expect(ok).To(BeTrue())
		Expect(block.WayID).To(Equal(0))
	})

	It("should make the visited block the most recent", func() {
		tags.Visit(Block{SetID: 2, WayID: 1})

		Expect(tags.GetSet(2).Recency.Order()).To(Equal([]int{1, 0}))
	})

	It("should reset", func() {
		tags.Update(Block{Tag: 0x5, SetID: 0, WayID: 0, IsValid: true})
		tags.Visit(Block{SetID: 0, WayID: 0})

		tags.Reset()

		_, ok := tags.Lookup(0, 0x5)
		Expect(ok).To(BeFalse())
		Expect(tags.GetSet(0).Recency.RowIsClear(0)).To(BeTrue())
	})

	It("should reuse the recency matrices on reset", func() {
		recency := tags.GetSet(3).Recency
		tags.Update(Block{Tag: 0x7, SetID: 3, WayID: 1, IsValid: true})
		tags.Visit(Block{SetID: 3, WayID: 1})

		tags.Reset()

		Expect(tags.GetSet(3).Recency).To(BeIdenticalTo(recency))
		Expect(recency.RowIsClear(1)).To(BeTrue())
		Expect(tags.GetSet(3).Blocks[1]).To(Equal(Block{SetID: 3, WayID: 1}))
	})
})

package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/sim/hooking"
)

var _ = Describe("Builder", func() {
	It("should build a 128-byte direct mapped cache by default", func() {
		c, err := MakeBuilder().Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("Cache"))
		Expect(c.Geometry()).To(Equal(Geometry{LineSize: 16, SetCount: 8, Associativity: 1}))
		Expect(c.RecencyPolicy()).To(Equal(TouchOnAccess))
	})

	It("should apply settings", func() {
		c, err := MakeBuilder().
			WithName("L1").
			WithLineSize(32).
			WithNumSets(2).
			WithWayAssociativity(4).
			WithRecencyPolicy(TouchOnHitOnly).
			Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("L1"))
		Expect(c.Geometry()).To(Equal(Geometry{LineSize: 32, SetCount: 2, Associativity: 4}))
		Expect(c.RecencyPolicy()).To(Equal(TouchOnHitOnly))
	})

	It("should register hooks on the cache", func() {
		hook := hooking.HookFunc(func(hooking.HookCtx) {})

		c, err := MakeBuilder().WithHook(hook).Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(c.NumHooks()).To(Equal(1))
	})

	It("should not share hooks between derived builders", func() {
		base := MakeBuilder().WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))
		a := base.WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))
		b := base.WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))

		Expect(a.hooks).To(HaveLen(2))
		Expect(b.hooks).To(HaveLen(2))
		Expect(&a.hooks[1]).NotTo(BeIdenticalTo(&b.hooks[1]))
	})

	It("should fail on invalid geometry", func() {
		c, err := MakeBuilder().WithNumSets(6).Build()

		Expect(err).To(MatchError(ErrInvalidGeometry))
		Expect(c).To(BeNil())
	})

	It("should fail on an unknown recency policy", func() {
		_, err := MakeBuilder().WithRecencyPolicy(RecencyPolicy(7)).Build()

		Expect(err).To(MatchError(ErrUnknownRecencyPolicy))
	})

	It("should parse recency policies", func() {
		p, err := ParseRecencyPolicy("hit-only")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(TouchOnHitOnly))
		Expect(p.String()).To(Equal("hit-only"))

		p, err = ParseRecencyPolicy("access")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(TouchOnAccess))

		_, err = ParseRecencyPolicy("fifo")
		Expect(err).To(MatchError(ErrUnknownRecencyPolicy))
	})
})

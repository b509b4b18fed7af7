package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
)

var _ = Describe("RAT", func() {
	var rat *engine.RAT

	BeforeEach(func() {
		rat = engine.NewRAT()
	})

	It("reports no producer for an untouched register", func() {
		_, ok := rat.Get(insts.General(1))
		Expect(ok).To(BeFalse())
	})

	It("records the producer set by dispatch", func() {
		rat.Set(insts.General(1), 5)
		rob, ok := rat.Get(insts.General(1))
		Expect(ok).To(BeTrue())
		Expect(rob).To(Equal(5))
	})

	It("clears only if the slot is still the current producer", func() {
		rat.Set(insts.General(1), 5)
		rat.Set(insts.General(1), 9) // a later instruction re-renamed r1

		rat.ClearIfStillProducer(insts.General(1), 5)
		rob, ok := rat.Get(insts.General(1))
		Expect(ok).To(BeTrue())
		Expect(rob).To(Equal(9))

		rat.ClearIfStillProducer(insts.General(1), 9)
		_, ok = rat.Get(insts.General(1))
		Expect(ok).To(BeFalse())
	})

	It("empties every mapping on flush", func() {
		rat.Set(insts.General(1), 1)
		rat.Set(insts.General(2), 2)
		rat.Flush()

		_, ok1 := rat.Get(insts.General(1))
		_, ok2 := rat.Get(insts.General(2))
		Expect(ok1).To(BeFalse())
		Expect(ok2).To(BeFalse())
	})
})

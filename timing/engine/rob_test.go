package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
)

var _ = Describe("ROB", func() {
	var rob *engine.ROB

	BeforeEach(func() {
		rob = engine.NewROB(4, 2)
	})

	It("starts empty and not full", func() {
		Expect(rob.IsEmpty()).To(BeTrue())
		Expect(rob.IsFull()).To(BeFalse())
	})

	It("allocates entries at increasing indices until full", func() {
		for i := 0; i < 4; i++ {
			idx := rob.Add(&engine.RobEntry{Op: insts.Add})
			Expect(idx).To(Equal(i))
		}
		Expect(rob.IsFull()).To(BeTrue())
	})

	It("panics when Add is called on a full ROB", func() {
		for i := 0; i < 4; i++ {
			rob.Add(&engine.RobEntry{Op: insts.Add})
		}
		Expect(func() { rob.Add(&engine.RobEntry{Op: insts.Add}) }).To(Panic())
	})

	It("retires only a finished prefix, honoring the max-retire width", func() {
		for i := 0; i < 4; i++ {
			rob.Add(&engine.RobEntry{Op: insts.Add})
		}
		rob.Get(0).State = engine.RobState{Kind: engine.RobFinished}
		rob.Get(1).State = engine.RobState{Kind: engine.RobFinished}
		rob.Get(2).State = engine.RobState{Kind: engine.RobIssued}
		rob.Get(3).State = engine.RobState{Kind: engine.RobFinished}

		retired := rob.Retire()
		Expect(retired).To(HaveLen(2))
		Expect(retired[0].Index).To(Equal(0))
		Expect(retired[1].Index).To(Equal(1))

		// Slot 2 still blocks slot 3 even though it is finished.
		retired = rob.Retire()
		Expect(retired).To(BeEmpty())
	})

	It("reports entries older than i back to tail via OlderThan", func() {
		indices := make([]int, 3)
		for i := 0; i < 3; i++ {
			indices[i] = rob.Add(&engine.RobEntry{Op: insts.Add})
		}
		older := rob.OlderThan(indices[2])
		Expect(older).To(HaveLen(2))
		Expect(older[0].Index).To(Equal(indices[1]))
		Expect(older[1].Index).To(Equal(indices[0]))
	})

	It("empties every slot and resets head/tail on flush", func() {
		rob.Add(&engine.RobEntry{Op: insts.Add})
		rob.Add(&engine.RobEntry{Op: insts.Add})
		rob.Flush()

		Expect(rob.IsEmpty()).To(BeTrue())
		Expect(rob.IsFull()).To(BeFalse())
		idx := rob.Add(&engine.RobEntry{Op: insts.Add})
		Expect(idx).To(Equal(0))
	})
})

package core_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/core"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

func newTestCore(instructions []insts.Word, memory []byte) (*core.Core, *bytes.Buffer) {
	var stdout bytes.Buffer
	c := core.NewCore(engine.DefaultConfiguration(), instructions, memory, latency.NewTable(), &stdout, nil)
	return c, &stdout
}

var _ = Describe("Core", func() {
	It("exposes final register state after Run completes", func() {
		program := []insts.Word{
			insts.I(insts.LoadImmediate, insts.General(1), insts.General(0), 42),
			insts.I(insts.Exit, insts.Register{}, insts.General(1), 0),
		}
		c, _ := newTestCore(program, nil)

		c.Run(10000)

		Expect(c.Done()).To(BeTrue())
		Expect(c.Registers().General[1]).To(Equal(int32(42)))
	})

	It("advances exactly one cycle per Tick", func() {
		program := []insts.Word{
			insts.I(insts.LoadImmediate, insts.General(1), insts.General(0), 1),
			insts.I(insts.Exit, insts.Register{}, insts.General(1), 0),
		}
		c, _ := newTestCore(program, nil)

		c.Tick()
		Expect(c.Stats().Cycles).To(Equal(uint64(1)))
		c.Tick()
		Expect(c.Stats().Cycles).To(Equal(uint64(2)))
	})

	It("is not done before the program terminates", func() {
		program := []insts.Word{
			insts.I(insts.LoadImmediate, insts.General(1), insts.General(0), 1),
			insts.I(insts.Exit, insts.Register{}, insts.General(1), 0),
		}
		c, _ := newTestCore(program, nil)

		Expect(c.Done()).To(BeFalse())
	})

	It("reflects writes to the memory image after Run", func() {
		program := []insts.Word{
			insts.I(insts.LoadImmediate, insts.General(1), insts.General(0), 0x10),
			insts.I(insts.LoadImmediate, insts.General(2), insts.General(0), 7),
			insts.I(insts.StoreMemory, insts.General(2), insts.General(1), 0),
			insts.I(insts.Exit, insts.Register{}, insts.General(2), 0),
		}
		memory := make([]byte, 0x20)
		c, _ := newTestCore(program, memory)

		c.Run(10000)

		Expect(c.Memory().ReadN(0x10, 4)).To(Equal(uint64(7)))
	})

	It("reports run statistics through Stats", func() {
		program := []insts.Word{
			insts.I(insts.LoadImmediate, insts.General(1), insts.General(0), 1),
			insts.I(insts.Exit, insts.Register{}, insts.General(1), 0),
		}
		c, _ := newTestCore(program, nil)

		c.Run(10000)

		Expect(c.Stats().InstructionsCommitted).To(Equal(uint64(2)))
		Expect(c.Stats().Cycles).To(BeNumerically(">", 0))
	})

	It("writes a termination message to stdout on error", func() {
		program := []insts.Word{
			insts.I(insts.LoadImmediate, insts.General(1), insts.General(0), 1),
			insts.I(insts.LoadImmediate, insts.General(2), insts.General(0), 0),
			insts.R(insts.Divide, insts.General(3), insts.General(1), insts.General(2)),
			insts.I(insts.Exit, insts.Register{}, insts.General(3), 0),
		}
		c, stdout := newTestCore(program, nil)

		c.Run(10000)

		Expect(c.Done()).To(BeTrue())
		Expect(stdout.String()).To(ContainSubstring("error"))
	})
})

// Package core provides the cycle-accurate CPU core model. It wraps
// the timing engine to give the CLI a high-level interface.
package core

import (
	"io"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

// Core wraps an engine.CPU: construction from a program image, running
// to completion, and reading back final architectural state and
// statistics.
type Core struct {
	cpu *engine.CPU
}

// NewCore builds a Core over instructions/initialMemory using config
// and table. stdout receives termination messages; saveHook (may be
// nil) backs the Save op.
func NewCore(config *engine.Configuration, instructions []insts.Word, initialMemory []byte, table *latency.Table, stdout io.Writer, saveHook engine.SaveHook) *Core {
	return &Core{cpu: engine.NewCPU(config, instructions, initialMemory, table, stdout, saveHook)}
}

// Run executes cycles until the machine is done, or maxCycles is
// reached (0 means unbounded). It returns the number of cycles run.
func (c *Core) Run(maxCycles uint64) uint64 {
	return c.cpu.Run(maxCycles)
}

// Tick advances exactly one cycle.
func (c *Core) Tick() {
	c.cpu.Cycle()
}

// Done reports whether the machine has nothing left in flight.
func (c *Core) Done() bool {
	return c.cpu.Done()
}

// Registers returns the final architectural register state.
func (c *Core) Registers() *emu.Registers {
	return c.cpu.Registers()
}

// Memory returns the final architectural memory image.
func (c *Core) Memory() *emu.Memory {
	return c.cpu.Memory()
}

// Stats returns the engine's performance counters.
func (c *Core) Stats() *engine.Stats {
	return c.cpu.Stats()
}

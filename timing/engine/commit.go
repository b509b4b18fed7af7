package engine

import (
	"fmt"
	"io"
	"math"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
)

// SaveHook receives the blob a Save op addresses at commit. It is the
// environment's side-effecting handler for persisting an image.
type SaveHook func(blob []byte)

// Commit retires finished ROB entries in program order, writing back
// architectural state and raising flush on misprediction or
// termination.
type Commit struct {
	stdout   io.Writer
	saveHook SaveHook
}

// NewCommit returns a commit stage printing termination messages to
// stdout and invoking saveHook (which may be nil if the program never
// uses Save) for Save ops.
func NewCommit(stdout io.Writer, saveHook SaveHook) *Commit {
	return &Commit{stdout: stdout, saveHook: saveHook}
}

// Cycle retires up to rob's configured batch size of finished entries.
// It returns requestFlush=true the moment a predictable-branch
// misprediction, a JumpRegister, or a terminating entry (Exit/Errored)
// is retired;
// the caller must stop dispatch/issue/execute/fetch for this cycle and
// wipe speculative state before the next one. terminated reports that
// the program itself is done (distinct from a mid-run flush).
func (c *Commit) Cycle(rob *ROB, rat *RAT, registers *emu.Registers, memory *emu.Memory, predictor *BranchPredictor, stations map[insts.EUClass]*ReservationStation, stats *Stats) (requestFlush, terminated bool) {
	retired := rob.Retire()

	for _, e := range retired {
		stats.InstructionsCommitted++

		if e.Op == insts.Exit {
			fmt.Fprintf(c.stdout, "exit: code=%d cycle=%d\n", e.Value.Scalar, stats.Cycles)
			registers.SetPC(math.MaxInt64)
			return true, true
		}

		if e.State.Kind == RobErrored {
			fmt.Fprintf(c.stdout, "error: %s cycle=%d\n", e.State.Message, stats.Cycles)
			registers.SetPC(math.MaxInt64)
			return true, true
		}

		switch e.Destination.Kind {
		case DestMemory:
			c.commitMemory(e, memory)

		case DestReg:
			if flush := c.commitRegister(e, rat, registers, memory, predictor, stations, stats); flush {
				return true, false
			}

		case DestNone:
			// Nothing to write back.
		}
	}

	return false, false
}

func (c *Commit) commitMemory(e *RobEntry, memory *emu.Memory) {
	addr := e.Destination.Addr

	if e.Value.Kind == ValueVector {
		memory.WriteVector(addr, e.Value.Vector)
		return
	}

	if e.Op == insts.Save {
		blob := memory.ReadBlob(addr, int(e.Value.Scalar))
		if c.saveHook != nil {
			c.saveHook(blob)
		}
		return
	}

	memory.WriteN(addr, uint64(uint32(e.Value.Scalar)), e.MemWidth)
}

func (c *Commit) commitRegister(e *RobEntry, rat *RAT, registers *emu.Registers, memory *emu.Memory, predictor *BranchPredictor, stations map[insts.EUClass]*ReservationStation, stats *Stats) (requestFlush bool) {
	reg := e.Destination.Reg

	if reg.IsVector() {
		value := e.Value.Vector
		if e.Category == insts.CategoryMemoryLoad {
			value = memory.ReadVector(e.EffectiveAddr)
		}
		registers.SetVector(reg, value)
		broadcast(stations, e.Index, RobValue{Kind: ValueVector, Vector: value})
		rat.ClearIfStillProducer(reg, e.Index)
		return false
	}

	if e.Value.Kind == ValuePair {
		registers.High = e.Value.High
		registers.Low = e.Value.Low
		broadcast(stations, e.Index, e.Value)
		rat.ClearIfStillProducer(insts.High, e.Index)
		rat.ClearIfStillProducer(insts.Low, e.Index)
		return false
	}

	value := e.Value.Scalar
	if e.Category == insts.CategoryMemoryLoad {
		value = int32(memory.ReadN(e.EffectiveAddr, e.MemWidth))
	}
	if e.Op == insts.ReserveMemory {
		value = int32(memory.Reserve(uint64(value)))
	}

	if e.Op.IsPredictableBranch() {
		predictor.Update(e.PC, e.ResolvedTaken)
		stats.BranchesCommitted++
		if e.Value.Scalar != -1 {
			stats.BranchMispredictions++
		}
	}

	skip := e.Category == insts.CategoryBranch && e.Value.Scalar == -1
	if !skip {
		registers.Set(reg, value)
		broadcast(stations, e.Index, RobValue{Kind: ValueScalar, Scalar: value})
		rat.ClearIfStillProducer(reg, e.Index)
	}

	if e.Op.IsPredictableBranch() && e.Value.Scalar != -1 {
		return true
	}

	// JumpRegister's target is a register value, unknown until it
	// executes; the fetcher never speculates on it and just keeps
	// fetching the fall-through path, so every younger entry already
	// in flight is on the wrong path and must be flushed.
	if e.Op == insts.JumpRegister {
		return true
	}

	return false
}

func broadcast(stations map[insts.EUClass]*ReservationStation, robIndex int, value RobValue) {
	for _, rs := range stations {
		rs.UpdateOperands(robIndex, value)
	}
}

package engine

import (
	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
)

// Dispatcher renames sources via the RAT, allocates a ROB slot and a
// reservation station entry for each fetched word, up to its
// configured width per cycle.
type Dispatcher struct {
	width int
}

// NewDispatcher returns a dispatcher issuing up to width entries per cycle.
func NewDispatcher(width int) *Dispatcher {
	return &Dispatcher{width: width}
}

// Cycle drains up to d.width entries from fetcher into rob/stations,
// stopping as soon as the ROB or the target reservation station has no
// room, or the fetcher runs dry.
func (d *Dispatcher) Cycle(fetcher *Fetcher, rat *RAT, rob *ROB, stations map[insts.EUClass]*ReservationStation, registers *emu.Registers, stats *Stats) {
	for i := 0; i < d.width; i++ {
		entry, ok := fetcher.PeekOldest()
		if !ok {
			return
		}

		class := entry.Word.Op.EUClass()
		rs, ok := stations[class]
		if !ok {
			panic("engine: no reservation station configured for EU class")
		}
		if rs.IsFull() || rob.IsFull() {
			return
		}

		fetcher.PopOldest()

		ret, left, right := operandsFor(entry.Word, entry.PC, rat, registers)

		robEntry := &RobEntry{
			Op:             entry.Word.Op,
			Category:       entry.Word.Op.Category(),
			PC:             entry.PC,
			PredictedTaken: entry.PredictedTaken,
		}

		if entry.Word.Op.RenamesDestination() {
			robEntry.Destination = Destination{Kind: DestReg, Reg: entry.Word.Dst}
		}

		robIndex := rob.Add(robEntry)

		if entry.Word.Op.RenamesDestination() {
			rat.Set(entry.Word.Dst, robIndex)
		}
		if entry.Word.Op.IsHiLoProducer() {
			rat.Set(insts.High, robIndex)
			rat.Set(insts.Low, robIndex)
		}

		rs.Add(&RSEntry{
			Word:           entry.Word,
			PC:             entry.PC,
			RobIndex:       robIndex,
			PredictedTaken: entry.PredictedTaken,
			ReturnOp:       ret,
			LeftOp:         left,
			RightOp:        right,
		})

		stats.InstructionsDispatched++
	}
}

func rename(reg insts.Register, rat *RAT, registers *emu.Registers) ResOperand {
	if rob, ok := rat.Get(reg); ok {
		return RobOperand(rob)
	}
	if reg.IsVector() {
		return VectorOperand(registers.GetVector(reg))
	}
	return ScalarOperand(registers.Get(reg))
}

// operandsFor maps a word's shape and op kind onto its three
// reservation-station operand roles, per the fixed per-op-kind table.
func operandsFor(word insts.Word, pc int64, rat *RAT, registers *emu.Registers) (ret, left, right ResOperand) {
	op := word.Op

	switch {
	case op == insts.Exit:
		return RegOperand(insts.ProgramCounter), rename(word.Src, rat, registers), ScalarOperand(0)

	case op == insts.ReserveMemory:
		return RegOperand(word.Dst), rename(word.Src, rat, registers), ScalarOperand(word.Imm)

	case op == insts.Save:
		return rename(word.Dst, rat, registers), rename(word.Src, rat, registers), ScalarOperand(word.Imm)

	case op.Category() == insts.CategoryMemoryStore:
		return rename(word.Dst, rat, registers), rename(word.Src, rat, registers), ScalarOperand(word.Imm)

	case op.Category() == insts.CategoryMemoryLoad:
		return RegOperand(word.Dst), rename(word.Src, rat, registers), ScalarOperand(word.Imm)

	case op.IsPredictableBranch():
		return rename(word.Dst, rat, registers), rename(word.Src, rat, registers), ScalarOperand(word.Imm)

	case word.Shape == insts.ShapeJI: // unconditional Jump: never dispatched, defined for completeness
		return RegOperand(insts.ProgramCounter), ScalarOperand(word.Imm), ScalarOperand(0)

	case word.Shape == insts.ShapeJR: // JumpRegister
		return RegOperand(insts.ProgramCounter), rename(word.Src, rat, registers), ScalarOperand(0)

	case op == insts.JumpAndLink:
		return RegOperand(word.Dst), ScalarOperand(int32(pc) + 1), ScalarOperand(0)

	case op == insts.MoveFromHigh:
		return RegOperand(word.Dst), rename(insts.High, rat, registers), ScalarOperand(0)

	case op == insts.MoveFromLow:
		return RegOperand(word.Dst), rename(insts.Low, rat, registers), ScalarOperand(0)

	case word.Shape == insts.ShapeR:
		return RegOperand(word.Dst), rename(word.Src, rat, registers), rename(word.SrcR, rat, registers)

	default: // ShapeI: imm-ALU, imm-FP, shifts, neg, load-immediate
		return RegOperand(word.Dst), rename(word.Src, rat, registers), ScalarOperand(word.Imm)
	}
}

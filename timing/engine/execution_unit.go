package engine

import (
	"math"

	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

// ExecutionUnit is a typed functional unit: it holds at most one
// in-flight instruction, counts down its latency, then computes the
// ROB entry's value, destination and terminal state. Loads still defer
// reading memory data to commit; the unit only resolves the effective
// address.
type ExecutionUnit struct {
	class      insts.EUClass
	table      *latency.Table
	cyclesLeft uint64
	current    *RSEntry
}

// NewExecutionUnit returns an idle execution unit of the given class.
func NewExecutionUnit(class insts.EUClass, table *latency.Table) *ExecutionUnit {
	return &ExecutionUnit{class: class, table: table}
}

// Class reports which EU class this unit serves.
func (u *ExecutionUnit) Class() insts.EUClass { return u.class }

// IsBusy reports whether the unit currently holds an instruction.
func (u *ExecutionUnit) IsBusy() bool { return u.cyclesLeft > 0 }

// Start begins executing entry, charging it the op's configured
// latency and marking its ROB slot Executing.
func (u *ExecutionUnit) Start(entry *RSEntry, rob *ROB) {
	u.current = entry
	u.cyclesLeft = u.table.GetLatency(entry.Word.Op)
	if u.cyclesLeft == 0 {
		u.cyclesLeft = 1
	}
	rob.Get(entry.RobIndex).State = RobState{Kind: RobExecuting}
}

// Flush clears any in-flight instruction without completing it.
func (u *ExecutionUnit) Flush() {
	u.current = nil
	u.cyclesLeft = 0
}

// Cycle decrements the remaining latency. When it reaches zero the
// unit computes its result into the ROB entry and returns its index;
// ok is false while still counting down or idle.
func (u *ExecutionUnit) Cycle(rob *ROB) (robIndex int, ok bool) {
	if !u.IsBusy() {
		return 0, false
	}
	u.cyclesLeft--
	if u.cyclesLeft > 0 {
		return 0, false
	}

	entry := u.current
	u.current = nil
	robEntry := rob.Get(entry.RobIndex)
	compute(u.class, entry, robEntry)
	return entry.RobIndex, true
}

func compute(class insts.EUClass, e *RSEntry, robEntry *RobEntry) {
	switch class {
	case insts.EUClassALU:
		computeALU(e, robEntry)
	case insts.EUClassFPU:
		computeFPU(e, robEntry)
	case insts.EUClassVPU:
		computeVPU(e, robEntry)
	case insts.EUClassLSU:
		computeLSU(e, robEntry)
	case insts.EUClassBranch:
		computeBranch(e, robEntry)
	case insts.EUClassSystem:
		computeSystem(e, robEntry)
	default:
		panic("engine: unknown EU class")
	}
}

func finishReg(robEntry *RobEntry, reg insts.Register, value int32) {
	robEntry.Destination = Destination{Kind: DestReg, Reg: reg}
	robEntry.Value = RobValue{Kind: ValueScalar, Scalar: value}
	robEntry.State = RobState{Kind: RobFinished}
}

func errored(robEntry *RobEntry, msg string) {
	robEntry.State = RobState{Kind: RobErrored, Message: msg}
}

func computeALU(e *RSEntry, robEntry *RobEntry) {
	dst := e.ReturnOp.Reg
	left := e.LeftOp.Scalar
	right := e.RightOp.Scalar

	switch e.Word.Op {
	case insts.Add, insts.AddImmediate:
		finishReg(robEntry, dst, left+right)
	case insts.Subtract, insts.SubtractImmediate:
		finishReg(robEntry, dst, left-right)
	case insts.Negate:
		finishReg(robEntry, dst, -left)
	case insts.Compare:
		finishReg(robEntry, dst, int32(signum(int64(left)-int64(right))))
	case insts.BitAnd, insts.BitAndImmediate:
		finishReg(robEntry, dst, left&right)
	case insts.BitOr, insts.BitOrImmediate:
		finishReg(robEntry, dst, left|right)
	case insts.LeftShift:
		finishReg(robEntry, dst, left<<uint32(right))
	case insts.RightShift:
		finishReg(robEntry, dst, left>>uint32(right))
	case insts.Multiply:
		finishReg(robEntry, dst, left*right)
	case insts.MultiplyNoOverflow:
		product := int64(left) * int64(right)
		robEntry.Destination = Destination{Kind: DestReg, Reg: dst}
		robEntry.Value = RobValue{Kind: ValuePair, High: int32(product >> 32), Low: int32(product)}
		robEntry.State = RobState{Kind: RobFinished}
	case insts.Divide:
		if right == 0 {
			errored(robEntry, "divide by zero")
			return
		}
		robEntry.Destination = Destination{Kind: DestReg, Reg: dst}
		robEntry.Value = RobValue{Kind: ValuePair, High: left % right, Low: left / right}
		robEntry.State = RobState{Kind: RobFinished}
	case insts.MoveFromHigh, insts.MoveFromLow:
		finishReg(robEntry, dst, left)
	default:
		panic("engine: unexpected op reached ALU")
	}
}

func signum(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func computeFPU(e *RSEntry, robEntry *RobEntry) {
	dst := e.ReturnOp.Reg
	left := math.Float32frombits(uint32(e.LeftOp.Scalar))
	right := math.Float32frombits(uint32(e.RightOp.Scalar))

	var result float32
	switch e.Word.Op {
	case insts.FAdd, insts.FAddImmediate:
		result = left + right
	case insts.FSubtract, insts.FSubtractImmediate:
		result = left - right
	case insts.FMultiply, insts.FMultiplyImmediate:
		result = left * right
	case insts.FDivide, insts.FDivideImmediate:
		if right == 0 {
			errored(robEntry, "divide by zero")
			return
		}
		result = left / right
	case insts.FCompare:
		finishReg(robEntry, dst, fsignum(left, right))
		return
	default:
		panic("engine: unexpected op reached FPU")
	}
	finishReg(robEntry, dst, int32(math.Float32bits(result)))
}

func fsignum(left, right float32) int32 {
	switch {
	case left < right:
		return -1
	case left > right:
		return 1
	default:
		return 0
	}
}

func computeVPU(e *RSEntry, robEntry *RobEntry) {
	dst := e.ReturnOp.Reg

	if e.Word.Op == insts.VSum {
		left := e.LeftOp.Scalar
		lanes := e.RightOp.Vector
		sum := left
		for _, l := range lanes {
			sum += int32(l)
		}
		finishReg(robEntry, dst, sum)
		return
	}

	leftLanes := e.LeftOp.Vector
	var rightLanes [4]uint32
	var shiftAmount uint32
	isShift := e.Word.Op == insts.VLeftShift || e.Word.Op == insts.VRightShift
	if isShift {
		shiftAmount = uint32(e.RightOp.Scalar)
	} else {
		rightLanes = e.RightOp.Vector
	}

	var out [4]uint32
	for i := 0; i < 4; i++ {
		switch e.Word.Op {
		case insts.VAdd:
			out[i] = uint32(int32(leftLanes[i]) + int32(rightLanes[i]))
		case insts.VSubtract:
			out[i] = uint32(int32(leftLanes[i]) - int32(rightLanes[i]))
		case insts.VMultiply:
			out[i] = uint32(int32(leftLanes[i]) * int32(rightLanes[i]))
		case insts.VDivide:
			if int32(rightLanes[i]) == 0 {
				errored(robEntry, "divide by zero")
				return
			}
			out[i] = uint32(int32(leftLanes[i]) / int32(rightLanes[i]))
		case insts.VLeftShift:
			out[i] = leftLanes[i] << shiftAmount
		case insts.VRightShift:
			out[i] = leftLanes[i] >> shiftAmount
		case insts.VFAdd:
			out[i] = math.Float32bits(math.Float32frombits(leftLanes[i]) + math.Float32frombits(rightLanes[i]))
		case insts.VFSubtract:
			out[i] = math.Float32bits(math.Float32frombits(leftLanes[i]) - math.Float32frombits(rightLanes[i]))
		case insts.VFMultiply:
			out[i] = math.Float32bits(math.Float32frombits(leftLanes[i]) * math.Float32frombits(rightLanes[i]))
		case insts.VFDivide:
			r := math.Float32frombits(rightLanes[i])
			if r == 0 {
				errored(robEntry, "divide by zero")
				return
			}
			out[i] = math.Float32bits(math.Float32frombits(leftLanes[i]) / r)
		default:
			panic("engine: unexpected op reached VPU")
		}
	}

	robEntry.Destination = Destination{Kind: DestReg, Reg: dst}
	robEntry.Value = RobValue{Kind: ValueVector, Vector: out}
	robEntry.State = RobState{Kind: RobFinished}
}

func computeLSU(e *RSEntry, robEntry *RobEntry) {
	switch e.Word.Op {
	case insts.LoadImmediate, insts.FLoadImmediate:
		robEntry.Destination = Destination{Kind: DestReg, Reg: e.ReturnOp.Reg}
		robEntry.Value = RobValue{Kind: ValueScalar, Scalar: e.LeftOp.Scalar + e.RightOp.Scalar}
		robEntry.State = RobState{Kind: RobFinished}
		robEntry.MemWidth = 0
		return
	}

	addr := uint64(int64(e.LeftOp.Scalar) + int64(e.RightOp.Scalar))
	width := e.Word.Op.MemoryWidth()
	robEntry.MemWidth = width

	switch e.Word.Op.Category() {
	case insts.CategoryMemoryLoad:
		// Address is known now; the data itself is read at commit so
		// loads only ever see committed stores ahead of them.
		robEntry.Destination = Destination{Kind: DestReg, Reg: e.ReturnOp.Reg}
		robEntry.EffectiveAddr = addr
		robEntry.Value = RobValue{Kind: ValueScalar}
		robEntry.State = RobState{Kind: RobFinished}
	case insts.CategoryMemoryStore:
		robEntry.Destination = Destination{Kind: DestMemory, Addr: addr}
		if e.Word.Op == insts.StoreVector {
			robEntry.Value = RobValue{Kind: ValueVector, Vector: e.ReturnOp.Vector}
		} else {
			robEntry.Value = RobValue{Kind: ValueScalar, Scalar: e.ReturnOp.Scalar}
		}
		robEntry.State = RobState{Kind: RobFinished}
	default:
		panic("engine: unexpected op reached LSU")
	}
}

func computeBranch(e *RSEntry, robEntry *RobEntry) {
	op := e.Word.Op

	if op == insts.JumpRegister {
		robEntry.Destination = Destination{Kind: DestReg, Reg: insts.ProgramCounter}
		robEntry.Value = RobValue{Kind: ValueScalar, Scalar: e.LeftOp.Scalar}
		robEntry.State = RobState{Kind: RobFinished}
		return
	}

	if op == insts.JumpAndLink {
		robEntry.Destination = Destination{Kind: DestReg, Reg: e.ReturnOp.Reg}
		robEntry.Value = RobValue{Kind: ValueScalar, Scalar: e.LeftOp.Scalar}
		robEntry.State = RobState{Kind: RobFinished}
		return
	}

	left := e.ReturnOp.Scalar
	right := e.LeftOp.Scalar
	offset := e.RightOp.Scalar

	var taken bool
	switch op {
	case insts.BranchEqual:
		taken = left == right
	case insts.BranchNotEqual:
		taken = left != right
	case insts.BranchGreater:
		taken = left > right
	case insts.BranchGreaterEqual:
		taken = left >= right
	case insts.BranchLess:
		taken = left < right
	case insts.BranchLessEqual:
		taken = left <= right
	default:
		panic("engine: unexpected op reached branch unit")
	}

	robEntry.ResolvedTaken = taken
	robEntry.Destination = Destination{Kind: DestReg, Reg: insts.ProgramCounter}

	var value int32
	switch {
	case taken == e.PredictedTaken:
		value = -1
	case taken && !e.PredictedTaken:
		value = int32(e.PC) + offset
	default: // !taken && predicted taken
		value = int32(e.PC) + 1
	}
	robEntry.Value = RobValue{Kind: ValueScalar, Scalar: value}
	robEntry.State = RobState{Kind: RobFinished}
}

func computeSystem(e *RSEntry, robEntry *RobEntry) {
	switch e.Word.Op {
	case insts.Exit:
		robEntry.Destination = Destination{Kind: DestNone}
		robEntry.Value = RobValue{Kind: ValueScalar, Scalar: e.LeftOp.Scalar}
		robEntry.State = RobState{Kind: RobFinished}
	case insts.ReserveMemory:
		robEntry.Destination = Destination{Kind: DestReg, Reg: e.ReturnOp.Reg}
		robEntry.Value = RobValue{Kind: ValueScalar, Scalar: e.LeftOp.Scalar + e.RightOp.Scalar}
		robEntry.State = RobState{Kind: RobFinished}
	case insts.Save:
		robEntry.Destination = Destination{Kind: DestMemory, Addr: uint64(int64(e.LeftOp.Scalar) + int64(e.RightOp.Scalar))}
		robEntry.Value = RobValue{Kind: ValueScalar, Scalar: e.ReturnOp.Scalar}
		robEntry.State = RobState{Kind: RobFinished}
	default:
		panic("engine: unexpected op reached system unit")
	}
}

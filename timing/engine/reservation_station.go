package engine

import "github.com/sarchlab/m2sim-ooo/insts"

// OperandKind distinguishes the four shapes an RS operand slot can hold.
type OperandKind uint8

const (
	// OperandReg holds a bare register name: either destination-register
	// bookkeeping carried through to commit (ALU/FPU/VPU/loads), or the
	// PC target marker used by jumps and Exit. It never blocks issue.
	OperandReg OperandKind = iota
	// OperandRob holds a pending ROB producer; the operand blocks issue
	// until the producing slot forwards a concrete value.
	OperandRob
	// OperandScalar holds a resolved 32-bit scalar.
	OperandScalar
	// OperandVector holds a resolved 128-bit vector.
	OperandVector
)

// ResOperand is one of an RS entry's three operand slots.
type ResOperand struct {
	Kind   OperandKind
	Reg    insts.Register
	Rob    int
	Scalar int32
	Vector [4]uint32
}

// RegOperand builds a bare register-name operand.
func RegOperand(reg insts.Register) ResOperand { return ResOperand{Kind: OperandReg, Reg: reg} }

// RobOperand builds a pending-producer operand.
func RobOperand(rob int) ResOperand { return ResOperand{Kind: OperandRob, Rob: rob} }

// ScalarOperand builds a resolved scalar operand.
func ScalarOperand(v int32) ResOperand { return ResOperand{Kind: OperandScalar, Scalar: v} }

// VectorOperand builds a resolved vector operand.
func VectorOperand(v [4]uint32) ResOperand { return ResOperand{Kind: OperandVector, Vector: v} }

// IsResolved reports whether the operand is concrete (anything but a
// pending ROB producer).
func (o ResOperand) IsResolved() bool { return o.Kind != OperandRob }

// RSEntry is a renamed instruction waiting to issue.
type RSEntry struct {
	Word           insts.Word
	PC             int64
	RobIndex       int
	PredictedTaken bool

	ReturnOp ResOperand
	LeftOp   ResOperand
	RightOp  ResOperand
}

func (e *RSEntry) isResolved() bool {
	return e.ReturnOp.IsResolved() && e.LeftOp.IsResolved() && e.RightOp.IsResolved()
}

// ReservationStation is a bounded, per-EU-class issue queue holding
// renamed instructions with resolved or still-pending operands.
type ReservationStation struct {
	class    insts.EUClass
	capacity int
	entries  []*RSEntry
}

// NewReservationStation returns an empty reservation station for the
// given EU class and capacity.
func NewReservationStation(class insts.EUClass, capacity int) *ReservationStation {
	return &ReservationStation{class: class, capacity: capacity}
}

// Class reports the EU class this station serves.
func (rs *ReservationStation) Class() insts.EUClass { return rs.class }

// IsFull reports whether the station has no free slot.
func (rs *ReservationStation) IsFull() bool { return len(rs.entries) >= rs.capacity }

// IsEmpty reports whether the station holds no entries.
func (rs *ReservationStation) IsEmpty() bool { return len(rs.entries) == 0 }

// Add enqueues entry. It panics if the station is full; the dispatcher
// must check IsFull before choosing a station.
func (rs *ReservationStation) Add(entry *RSEntry) {
	if rs.IsFull() {
		panic("engine: Add called on a full reservation station")
	}
	rs.entries = append(rs.entries, entry)
}

// UpdateOperands rewrites every operand slot across every entry that
// equals Rob(robIndex) to the concrete value just produced, resolving
// the MoveFromHigh/MoveFromLow lane ambiguity from each consumer's own
// op.
func (rs *ReservationStation) UpdateOperands(robIndex int, value RobValue) {
	for _, e := range rs.entries {
		e.ReturnOp = resolveIfMatching(e.ReturnOp, e.Word.Op, robIndex, value)
		e.LeftOp = resolveIfMatching(e.LeftOp, e.Word.Op, robIndex, value)
		e.RightOp = resolveIfMatching(e.RightOp, e.Word.Op, robIndex, value)
	}
}

func resolveIfMatching(op ResOperand, consumer insts.Op, robIndex int, value RobValue) ResOperand {
	if op.Kind != OperandRob || op.Rob != robIndex {
		return op
	}
	switch value.Kind {
	case ValueVector:
		return VectorOperand(value.Vector)
	case ValuePair:
		if consumer == insts.MoveFromHigh {
			return ScalarOperand(value.High)
		}
		return ScalarOperand(value.Low)
	default:
		return ScalarOperand(value.Scalar)
	}
}

// TakeOldestReady scans oldest-first for the first entry whose three
// operands are all concrete and which, for memory ops, passes the
// store-aliasing check against rob. The winning entry is removed from
// the station and returned.
func (rs *ReservationStation) TakeOldestReady(rob *ROB) *RSEntry {
	for i, e := range rs.entries {
		if !e.isResolved() {
			continue
		}
		if !rs.passesMemoryOrdering(e, rob) {
			continue
		}
		rs.entries = append(rs.entries[:i:i], rs.entries[i+1:]...)
		return e
	}
	return nil
}

func (rs *ReservationStation) passesMemoryOrdering(e *RSEntry, rob *ROB) bool {
	category := e.Word.Op.Category()
	if category != insts.CategoryMemoryLoad && category != insts.CategoryMemoryStore {
		return true
	}

	addr := uint64(int64(e.LeftOp.Scalar) + int64(e.RightOp.Scalar))
	width := e.Word.Op.MemoryWidth()

	for _, o := range rob.OlderThan(e.RobIndex) {
		if o.Category != insts.CategoryMemoryStore {
			continue
		}
		if !o.State.IsRetireable() {
			return false
		}
		if o.State.Kind == RobErrored {
			continue
		}
		if rangesOverlap(addr, width, o.Destination.Addr, o.MemWidth) {
			return false
		}
	}
	return true
}

func rangesOverlap(a uint64, aLen int, b uint64, bLen int) bool {
	aEnd := a + uint64(aLen)
	bEnd := b + uint64(bLen)
	return a < bEnd && b < aEnd
}

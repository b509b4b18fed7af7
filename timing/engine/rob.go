package engine

import "github.com/sarchlab/m2sim-ooo/insts"

// RobStateKind is the lifecycle state of a ROB entry.
type RobStateKind uint8

const (
	RobIssued RobStateKind = iota
	RobExecuting
	RobFinished
	RobErrored
)

// RobState is Issued/Executing/Finished, or Errored with a message.
type RobState struct {
	Kind    RobStateKind
	Message string
}

// IsRetireable reports whether a ROB entry in this state may retire.
func (s RobState) IsRetireable() bool {
	return s.Kind == RobFinished || s.Kind == RobErrored
}

// DestKind distinguishes where a committed result goes.
type DestKind uint8

const (
	DestNone DestKind = iota
	DestReg
	DestMemory
)

// Destination is None, a register, or a memory address.
type Destination struct {
	Kind DestKind
	Reg  insts.Register
	Addr uint64
}

// ValueKind distinguishes the three shapes a ROB value can take.
type ValueKind uint8

const (
	ValueScalar ValueKind = iota
	ValueVector
	ValuePair
)

// RobValue is the computed result living in a ROB entry: a scalar, a
// 128-bit vector, or a High/Low pair (MultiplyNoOverflow, Divide).
type RobValue struct {
	Kind   ValueKind
	Scalar int32
	Vector [4]uint32
	High   int32
	Low    int32
}

// RobEntry is one in-flight instruction tracked by the ROB.
type RobEntry struct {
	Index          int
	Op             insts.Op
	Category       insts.RobCategory
	Destination    Destination
	Value          RobValue
	State          RobState
	PC             int64
	PredictedTaken bool
	ResolvedTaken  bool

	// MemWidth is the byte width of a load/store's access, needed both
	// to perform the access at commit and for the reservation
	// stations' aliasing check. Zero for non-memory ops.
	MemWidth int

	// EffectiveAddr is a load's resolved address, computed at execute
	// and consulted at commit, where the data itself is actually read
	// so a load only ever sees committed stores ahead of it.
	EffectiveAddr uint64
}

// ROB is the circular Reorder Buffer: a fixed-capacity ring of entries
// with head (next free slot) and tail (next to retire), preserving
// program order.
type ROB struct {
	slots     []*RobEntry
	maxRetire int
	head      int
	tail      int
}

// NewROB returns an empty ROB with the given slot count and maximum
// entries retired per cycle.
func NewROB(size, maxRetire int) *ROB {
	return &ROB{
		slots:     make([]*RobEntry, size),
		maxRetire: maxRetire,
	}
}

// IsFull reports whether the slot at head is occupied.
func (r *ROB) IsFull() bool {
	return r.slots[r.head] != nil
}

// IsEmpty reports whether every slot is unoccupied.
func (r *ROB) IsEmpty() bool {
	for _, e := range r.slots {
		if e != nil {
			return false
		}
	}
	return true
}

// Add allocates entry at head in the Issued state and returns its
// index. It panics if the ROB is full; dispatch must check IsFull first.
func (r *ROB) Add(entry *RobEntry) int {
	if r.IsFull() {
		panic("engine: Add called on a full ROB")
	}
	idx := r.head
	entry.Index = idx
	entry.State = RobState{Kind: RobIssued}
	r.slots[idx] = entry
	r.head = (r.head + 1) % len(r.slots)
	return idx
}

// Get returns the entry at index i, or nil if the slot is empty.
func (r *ROB) Get(i int) *RobEntry {
	return r.slots[i]
}

// Retire walks forward from tail, collecting up to maxRetire
// consecutive retireable entries in program order, clearing their
// slots and advancing tail. It stops at the first non-retireable or
// empty slot.
func (r *ROB) Retire() []*RobEntry {
	var retired []*RobEntry
	for len(retired) < r.maxRetire {
		e := r.slots[r.tail]
		if e == nil || !e.State.IsRetireable() {
			break
		}
		retired = append(retired, e)
		r.slots[r.tail] = nil
		r.tail = (r.tail + 1) % len(r.slots)
	}
	return retired
}

// OlderThan returns the in-flight entries older than index i, in
// nearest-first order, iterating backward from (i-1) mod N and
// stopping at tail. Used by the reservation stations' memory ordering
// check.
func (r *ROB) OlderThan(i int) []*RobEntry {
	n := len(r.slots)
	stop := (r.tail - 1 + n) % n
	var older []*RobEntry
	for j := (i - 1 + n) % n; j != stop; j = (j - 1 + n) % n {
		e := r.slots[j]
		if e == nil {
			break
		}
		older = append(older, e)
	}
	return older
}

// Flush discards every in-flight entry.
func (r *ROB) Flush() {
	for i := range r.slots {
		r.slots[i] = nil
	}
	r.head = 0
	r.tail = 0
}

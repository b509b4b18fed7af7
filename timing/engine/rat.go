package engine

import "github.com/sarchlab/m2sim-ooo/insts"

// RAT is the Register Alias Table: a mapping from architectural
// register to the ROB slot currently producing its value. A register
// absent from the table has no in-flight producer and should be read
// from the architectural register file.
type RAT struct {
	table map[insts.Register]int
}

// NewRAT returns an empty RAT.
func NewRAT() *RAT {
	return &RAT{table: make(map[insts.Register]int)}
}

// Get reports the ROB slot producing reg's value, if any. ok is false
// when reg has no in-flight producer, i.e. it should be read directly
// from the register file.
func (t *RAT) Get(reg insts.Register) (rob int, ok bool) {
	rob, ok = t.table[reg]
	return rob, ok
}

// Set records that rob is now the in-flight producer of reg, called by
// the dispatcher for each renamed destination.
func (t *RAT) Set(reg insts.Register, rob int) {
	t.table[reg] = rob
}

// ClearIfStillProducer removes reg's mapping only if it still points at
// rob, called at commit so a later renamer of the same register is not
// clobbered by a stale retire.
func (t *RAT) ClearIfStillProducer(reg insts.Register, rob int) {
	if current, ok := t.table[reg]; ok && current == rob {
		delete(t.table, reg)
	}
}

// Flush discards every in-flight mapping.
func (t *RAT) Flush() {
	t.table = make(map[insts.Register]int)
}

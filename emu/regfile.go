// Package emu provides the architectural state the core operates on:
// the register file and the flat byte-addressed memory image.
package emu

import "github.com/sarchlab/m2sim-ooo/insts"

// Registers holds all architectural register state: the 32 general
// scalar registers, the 32 vector registers (four 32-bit lanes each),
// the program counter, and the HI/LO pair written by
// MultiplyNoOverflow and Divide.
//
// General(0) is hardwired to zero: Set silently drops writes to it,
// matching every other register file in this codebase.
type Registers struct {
	General [32]int32
	Vector  [32][4]uint32
	PC      int64
	High    int32
	Low     int32
}

// NewRegisters returns a Registers value with PC at 0 and every
// register zeroed.
func NewRegisters() *Registers {
	return &Registers{}
}

// Get reads the scalar value of a non-vector register.
func (r *Registers) Get(reg insts.Register) int32 {
	switch {
	case reg == insts.ProgramCounter:
		return int32(r.PC)
	case reg == insts.High:
		return r.High
	case reg == insts.Low:
		return r.Low
	case reg.IsGeneral():
		return r.General[reg.Index()]
	default:
		panic("emu: Get called on a vector register")
	}
}

// Set writes the scalar value of a non-vector register. A write to
// General(0) is silently dropped.
func (r *Registers) Set(reg insts.Register, value int32) {
	switch {
	case reg == insts.ProgramCounter:
		r.PC = int64(value)
	case reg == insts.High:
		r.High = value
	case reg == insts.Low:
		r.Low = value
	case reg.IsGeneral():
		if reg.Index() == 0 {
			return
		}
		r.General[reg.Index()] = value
	default:
		panic("emu: Set called on a vector register")
	}
}

// GetVector reads a 128-bit vector register as four 32-bit lanes.
func (r *Registers) GetVector(reg insts.Register) [4]uint32 {
	return r.Vector[reg.Index()]
}

// SetVector writes a 128-bit vector register.
func (r *Registers) SetVector(reg insts.Register, value [4]uint32) {
	r.Vector[reg.Index()] = value
}

// SetPC sets the program counter directly (word index, not a byte address).
func (r *Registers) SetPC(pc int64) { r.PC = pc }

// IncPC advances the program counter by one instruction.
func (r *Registers) IncPC() { r.PC++ }

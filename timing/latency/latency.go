package latency

import (
	"github.com/sarchlab/m2sim-ooo/insts"
)

// Table provides per-op latency lookups, driven by a TimingConfig so a
// config file can retune cycle counts without recompiling.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with default timing values.
func NewTable() *Table {
	return &Table{config: DefaultTimingConfig()}
}

// NewTableWithConfig creates a latency table from a custom configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{config: config}
}

// GetLatency returns the execution latency in cycles for op.
func (t *Table) GetLatency(op insts.Op) uint64 {
	switch op {
	case insts.Multiply, insts.MultiplyNoOverflow:
		return t.config.MultiplyLatency
	case insts.Divide:
		return t.config.DivideLatencyMin
	case insts.FDivide, insts.FDivideImmediate, insts.VDivide, insts.VFDivide:
		return t.config.DivideLatencyMin
	}

	switch op.EUClass() {
	case insts.EUClassALU:
		return t.config.ALULatency
	case insts.EUClassFPU:
		return t.config.FPULatency
	case insts.EUClassVPU:
		return t.config.VPULatency
	case insts.EUClassBranch:
		return t.config.BranchLatency
	case insts.EUClassSystem:
		return t.config.SystemLatency
	case insts.EUClassLSU:
		if op.Category() == insts.CategoryMemoryStore {
			return t.config.StoreLatency
		}
		return t.config.LoadLatency
	default:
		return 1
	}
}

// GetMaxLatency returns the worst-case execution latency for op,
// relevant only to divide, which the config allows to vary between
// DivideLatencyMin and DivideLatencyMax; GetLatency always returns the
// deterministic value actually charged during simulation.
func (t *Table) GetMaxLatency(op insts.Op) uint64 {
	switch op {
	case insts.Divide, insts.FDivide, insts.FDivideImmediate, insts.VDivide, insts.VFDivide:
		return t.config.DivideLatencyMax
	default:
		return t.GetLatency(op)
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

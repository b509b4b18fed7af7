package engine

import "fmt"

// Stats accumulates the performance counters the report prints.
type Stats struct {
	Cycles                 uint64
	InstructionsDispatched uint64
	InstructionsCommitted  uint64
	BranchesPredicted      uint64
	BranchesCommitted      uint64
	BranchMispredictions   uint64
}

// OpsPerCycle is instructions committed divided by elapsed cycles.
func (s *Stats) OpsPerCycle() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.InstructionsCommitted) / float64(s.Cycles)
}

// CommitRate is instructions committed divided by instructions dispatched.
func (s *Stats) CommitRate() float64 {
	if s.InstructionsDispatched == 0 {
		return 0
	}
	return float64(s.InstructionsCommitted) / float64(s.InstructionsDispatched)
}

// MispredictionRate is mispredictions divided by committed predictable branches.
func (s *Stats) MispredictionRate() float64 {
	if s.BranchesCommitted == 0 {
		return 0
	}
	return float64(s.BranchMispredictions) / float64(s.BranchesCommitted)
}

// Report renders the statistics in the fixed, human-readable format the
// CLI prints after a run completes.
func (s *Stats) Report() string {
	return fmt.Sprintf(
		"cycles=%d instructions_dispatched=%d instructions_committed=%d "+
			"ops_per_cycle=%.3f commit_rate=%.3f "+
			"branches_predicted=%d branches_committed=%d mispredictions=%d misprediction_rate=%.3f",
		s.Cycles, s.InstructionsDispatched, s.InstructionsCommitted,
		s.OpsPerCycle(), s.CommitRate(),
		s.BranchesPredicted, s.BranchesCommitted, s.BranchMispredictions, s.MispredictionRate(),
	)
}

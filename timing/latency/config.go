// Package latency holds the per-op cycle-latency table consulted by
// execution units, loaded from an optional JSON configuration file so
// timing can be retuned without recompiling.
package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for each class of operation. Every
// op within a class shares that class's latency, except that multiplies
// use MultiplyLatency and integer, FP and vector divides use
// DivideLatencyMin. BranchMispredictPenalty is not an execute-stage
// latency, and no engine stage reads it: a flush costs no extra cycles.
type TimingConfig struct {
	ALULatency              uint64 `json:"alu_latency"`
	FPULatency              uint64 `json:"fpu_latency"`
	VPULatency              uint64 `json:"vpu_latency"`
	BranchLatency           uint64 `json:"branch_latency"`
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty"`
	LoadLatency             uint64 `json:"load_latency"`
	StoreLatency            uint64 `json:"store_latency"`
	MultiplyLatency         uint64 `json:"multiply_latency"`
	DivideLatencyMin        uint64 `json:"divide_latency_min"`
	DivideLatencyMax        uint64 `json:"divide_latency_max"`
	SystemLatency           uint64 `json:"system_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the baseline latency
// values. These are per-class values and do not reproduce every
// per-op latency in insts' op metadata table (for example FMultiply,
// FDivide and the vector FP ops).
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:              1,
		FPULatency:              2,
		VPULatency:              2,
		BranchLatency:           1,
		BranchMispredictPenalty: 12,
		LoadLatency:             4,
		StoreLatency:            1,
		MultiplyLatency:         3,
		DivideLatencyMin:        10,
		DivideLatencyMax:        15,
		SystemLatency:           1,
	}
}

// LoadConfig loads a TimingConfig from a JSON file, starting from
// defaults so a partial file only overrides the fields it sets.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are usable.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.SystemLatency == 0 {
		return fmt.Errorf("system_latency must be > 0")
	}
	if c.DivideLatencyMin > c.DivideLatencyMax {
		return fmt.Errorf("divide_latency_min must be <= divide_latency_max")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}

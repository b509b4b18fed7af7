package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Configuration is the structural description of a superscalar core:
// buffer sizes, per-class reservation station capacities and unit
// counts, and the branch predictor mode. It is loaded the same way as
// timing/latency.TimingConfig, as a sibling JSON document.
type Configuration struct {
	ROBSize        int `json:"rob_size"`
	MaxRetirePerCycle int `json:"max_retire_per_cycle"`
	FetchWidth     int `json:"fetch_width"`
	FetchBufferSize int `json:"fetch_buffer_size"`
	DispatchWidth  int `json:"dispatch_width"`

	ALUStations    int `json:"alu_stations"`
	FPUStations    int `json:"fpu_stations"`
	VPUStations    int `json:"vpu_stations"`
	LSUStations    int `json:"lsu_stations"`
	BranchStations int `json:"branch_stations"`
	SystemStations int `json:"system_stations"`

	ALUUnits    int `json:"alu_units"`
	FPUUnits    int `json:"fpu_units"`
	VPUUnits    int `json:"vpu_units"`
	LSUUnits    int `json:"lsu_units"`
	BranchUnits int `json:"branch_units"`
	SystemUnits int `json:"system_units"`

	PredictorMode string `json:"predictor_mode"`

	// PrintMemory, when set, dumps the final memory image alongside the
	// statistics report once the program exits or errors.
	PrintMemory bool `json:"print_memory"`
}

// DefaultConfiguration returns a modest dual-issue configuration:
// enough parallelism to exercise renaming and speculation without
// requiring a large fetch buffer.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		ROBSize:           64,
		MaxRetirePerCycle: 4,
		FetchWidth:        2,
		FetchBufferSize:   16,
		DispatchWidth:     4,

		ALUStations:    8,
		FPUStations:    4,
		VPUStations:    4,
		LSUStations:    8,
		BranchStations: 4,
		SystemStations: 2,

		ALUUnits:    2,
		FPUUnits:    1,
		VPUUnits:    1,
		LSUUnits:    2,
		BranchUnits: 1,
		SystemUnits: 1,

		PredictorMode: "2bit",
	}
}

// LoadConfig reads a Configuration from a JSON file, filling any
// missing field from DefaultConfiguration.
func LoadConfig(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: reading config %s: %w", path, err)
	}
	cfg := DefaultConfiguration()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("engine: parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as indented JSON.
func SaveConfig(cfg *Configuration, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("engine: marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("engine: writing config %s: %w", path, err)
	}
	return nil
}

// Validate reports an error for a structurally unusable configuration.
func (c *Configuration) Validate() error {
	if c.ROBSize <= 0 {
		return fmt.Errorf("rob_size must be positive, got %d", c.ROBSize)
	}
	if c.MaxRetirePerCycle <= 0 {
		return fmt.Errorf("max_retire_per_cycle must be positive, got %d", c.MaxRetirePerCycle)
	}
	if c.FetchWidth <= 0 {
		return fmt.Errorf("fetch_width must be positive, got %d", c.FetchWidth)
	}
	if c.DispatchWidth <= 0 {
		return fmt.Errorf("dispatch_width must be positive, got %d", c.DispatchWidth)
	}
	for name, n := range map[string]int{
		"alu_stations": c.ALUStations, "fpu_stations": c.FPUStations,
		"vpu_stations": c.VPUStations, "lsu_stations": c.LSUStations,
		"branch_stations": c.BranchStations, "system_stations": c.SystemStations,
		"alu_units": c.ALUUnits, "fpu_units": c.FPUUnits,
		"vpu_units": c.VPUUnits, "lsu_units": c.LSUUnits,
		"branch_units": c.BranchUnits, "system_units": c.SystemUnits,
	} {
		if n <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, n)
		}
	}
	if _, err := parsePredictorMode(c.PredictorMode); err != nil {
		return err
	}
	return nil
}

func parsePredictorMode(s string) (PredictorMode, error) {
	switch s {
	case "always_taken":
		return PredictorAlwaysTaken, nil
	case "never_taken":
		return PredictorNeverTaken, nil
	case "1bit":
		return Predictor1Bit, nil
	case "2bit", "":
		return Predictor2Bit, nil
	case "history":
		return PredictorHistory, nil
	default:
		return 0, fmt.Errorf("unknown predictor_mode %q", s)
	}
}

// Clone returns an independent copy of c.
func (c *Configuration) Clone() *Configuration {
	clone := *c
	return &clone
}

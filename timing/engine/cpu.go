package engine

import (
	"io"

	"github.com/sarchlab/m2sim-ooo/emu"
	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

// CPU is the cycle-by-cycle driver tying every component together. It
// owns all shared state and advances it one simulated cycle at a time,
// evaluating stages in reverse (commit, execute, issue, dispatch,
// fetch) so a value produced this cycle is visible only from the next.
type CPU struct {
	config *Configuration

	registers *emu.Registers
	memory    *emu.Memory

	rat       *RAT
	rob       *ROB
	predictor *BranchPredictor
	fetcher   *Fetcher
	dispatcher *Dispatcher
	commit    *Commit

	stations map[insts.EUClass]*ReservationStation
	units    map[insts.EUClass][]*ExecutionUnit

	stats *Stats

	terminated bool
}

// NewCPU assembles a CPU from config over the given instruction stream
// and initial memory image. table supplies per-op latencies; stdout
// receives Exit/error termination messages; saveHook (may be nil)
// backs the Save op.
func NewCPU(config *Configuration, instructions []insts.Word, initialMemory []byte, table *latency.Table, stdout io.Writer, saveHook SaveHook) *CPU {
	mode, err := parsePredictorMode(config.PredictorMode)
	if err != nil {
		panic("engine: " + err.Error())
	}

	cpu := &CPU{
		config:     config,
		registers:  emu.NewRegisters(),
		memory:     emu.NewMemory(initialMemory),
		rat:        NewRAT(),
		rob:        NewROB(config.ROBSize, config.MaxRetirePerCycle),
		predictor:  NewBranchPredictor(mode),
		fetcher:    NewFetcher(instructions, config.FetchBufferSize, config.FetchWidth),
		dispatcher: NewDispatcher(config.DispatchWidth),
		commit:     NewCommit(stdout, saveHook),
		stats:      &Stats{},
	}

	cpu.stations = map[insts.EUClass]*ReservationStation{
		insts.EUClassALU:    NewReservationStation(insts.EUClassALU, config.ALUStations),
		insts.EUClassFPU:    NewReservationStation(insts.EUClassFPU, config.FPUStations),
		insts.EUClassVPU:    NewReservationStation(insts.EUClassVPU, config.VPUStations),
		insts.EUClassLSU:    NewReservationStation(insts.EUClassLSU, config.LSUStations),
		insts.EUClassBranch: NewReservationStation(insts.EUClassBranch, config.BranchStations),
		insts.EUClassSystem: NewReservationStation(insts.EUClassSystem, config.SystemStations),
	}

	cpu.units = map[insts.EUClass][]*ExecutionUnit{
		insts.EUClassALU:    newUnits(insts.EUClassALU, config.ALUUnits, table),
		insts.EUClassFPU:    newUnits(insts.EUClassFPU, config.FPUUnits, table),
		insts.EUClassVPU:    newUnits(insts.EUClassVPU, config.VPUUnits, table),
		insts.EUClassLSU:    newUnits(insts.EUClassLSU, config.LSUUnits, table),
		insts.EUClassBranch: newUnits(insts.EUClassBranch, config.BranchUnits, table),
		insts.EUClassSystem: newUnits(insts.EUClassSystem, config.SystemUnits, table),
	}

	return cpu
}

func newUnits(class insts.EUClass, n int, table *latency.Table) []*ExecutionUnit {
	units := make([]*ExecutionUnit, n)
	for i := range units {
		units[i] = NewExecutionUnit(class, table)
	}
	return units
}

// Registers exposes the final architectural register state.
func (c *CPU) Registers() *emu.Registers { return c.registers }

// Memory exposes the final architectural memory image.
func (c *CPU) Memory() *emu.Memory { return c.memory }

// Stats exposes the running performance counters.
func (c *CPU) Stats() *Stats { return c.stats }

// Done reports whether the simulation has nothing left to do: the PC
// is past the end of the program, the ROB is empty, the fetcher is
// drained, and every reservation station and execution unit is idle.
func (c *CPU) Done() bool {
	if c.terminated {
		return true
	}
	if pc := c.registers.PC; pc >= 0 && pc < int64(len(c.fetcher.instructions)) {
		return false
	}
	if !c.rob.IsEmpty() || c.fetcher.HasOldest() {
		return false
	}
	for _, rs := range c.stations {
		if !rs.IsEmpty() {
			return false
		}
	}
	for _, units := range c.units {
		for _, u := range units {
			if u.IsBusy() {
				return false
			}
		}
	}
	return true
}

// Run advances cycles until Done, returning the total cycle count.
func (c *CPU) Run(maxCycles uint64) uint64 {
	for !c.Done() {
		if maxCycles > 0 && c.stats.Cycles >= maxCycles {
			break
		}
		c.Cycle()
	}
	return c.stats.Cycles
}

// Cycle advances the machine exactly one simulated cycle.
func (c *CPU) Cycle() {
	c.stats.Cycles++

	flush, terminated := c.commit.Cycle(c.rob, c.rat, c.registers, c.memory, c.predictor, c.stations, c.stats)
	if terminated {
		c.terminated = true
	}
	if flush {
		c.flush()
		return
	}

	c.execute()
	c.issue()
	c.dispatcher.Cycle(c.fetcher, c.rat, c.rob, c.stations, c.registers, c.stats)
	c.fetcher.Cycle(&c.registers.PC, c.predictor, c.stats)
}

func (c *CPU) execute() {
	for _, units := range c.units {
		for _, u := range units {
			if robIndex, ok := u.Cycle(c.rob); ok {
				entry := c.rob.Get(robIndex)
				// A load's data is only read at commit, which forwards it.
				if entry.Category == insts.CategoryMemoryLoad {
					continue
				}
				broadcast(c.stations, robIndex, entry.Value)
			}
		}
	}
}

func (c *CPU) issue() {
	for class, units := range c.units {
		rs := c.stations[class]
		for _, u := range units {
			if u.IsBusy() {
				continue
			}
			entry := rs.TakeOldestReady(c.rob)
			if entry == nil {
				continue
			}
			u.Start(entry, c.rob)
		}
	}
}

func (c *CPU) flush() {
	c.fetcher.Flush()
	c.rat.Flush()
	c.rob.Flush()
	c.predictor.Flush()
	for _, rs := range c.stations {
		rs.entries = nil
	}
	for _, units := range c.units {
		for _, u := range units {
			u.Flush()
		}
	}
}

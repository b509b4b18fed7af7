// Package main provides the entry point for M2Sim-OOO.
// M2Sim-OOO is a cycle-accurate out-of-order superscalar CPU simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/m2sim-ooo/program"
	"github.com/sarchlab/m2sim-ooo/timing/core"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

var (
	configPath  = flag.String("config", "", "Path to engine configuration JSON file")
	latencyPath = flag.String("latency", "", "Path to latency configuration JSON file")
	maxCycles   = flag.Uint64("max-cycles", 1_000_000, "Cycle budget before forcing termination")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: m2sim [options] <program.json>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := program.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	config := engine.DefaultConfiguration()
	if *configPath != "" {
		config, err = engine.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading engine config: %v\n", err)
			os.Exit(1)
		}
	}

	timingConfig := latency.DefaultTimingConfig()
	if *latencyPath != "" {
		timingConfig, err = latency.LoadConfig(*latencyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading latency config: %v\n", err)
			os.Exit(1)
		}
	}
	table := latency.NewTableWithConfig(timingConfig)

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Instructions: %d\n", len(prog.Instructions))
		fmt.Printf("Initial memory: %d bytes\n", len(prog.Memory))
	}

	c := core.NewCore(config, prog.Instructions, prog.Memory, table, os.Stdout, nil)
	ran := c.Run(*maxCycles)

	if !c.Done() {
		fmt.Fprintf(os.Stderr, "Warning: cycle budget exhausted after %d cycles, program still in flight\n", ran)
	}

	fmt.Println(c.Stats().Report())

	if config.PrintMemory {
		printMemory(c)
	}
}

func printMemory(c *core.Core) {
	mem := c.Memory()
	const width = 16
	for addr := 0; addr < mem.Len(); addr += width {
		n := width
		if addr+n > mem.Len() {
			n = mem.Len() - addr
		}
		fmt.Printf("%08x  % x\n", addr, mem.ReadBlob(uint64(addr), n))
	}
}

// Package main provides the entry point for M2Sim-OOO.
// M2Sim-OOO is a cycle-accurate out-of-order superscalar CPU simulator.
//
// For the full CLI, use: go run ./cmd/m2sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("M2Sim-OOO - out-of-order superscalar CPU simulator")
	fmt.Println("")
	fmt.Println("Usage: m2sim [options] <program.json>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to engine configuration JSON file")
	fmt.Println("  -latency   Path to latency configuration JSON file")
	fmt.Println("  -max-cycles Cycle budget before forcing termination")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/m2sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/m2sim' instead.")
	}
}

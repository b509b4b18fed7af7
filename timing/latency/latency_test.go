package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default Timing Values", func() {
		It("should have correct ALU latency", func() {
			Expect(table.Config().ALULatency).To(Equal(uint64(1)))
		})

		It("should have correct branch latency", func() {
			Expect(table.Config().BranchLatency).To(Equal(uint64(1)))
		})

		It("should have correct load latency", func() {
			Expect(table.Config().LoadLatency).To(Equal(uint64(4)))
		})

		It("should have correct store latency", func() {
			Expect(table.Config().StoreLatency).To(Equal(uint64(1)))
		})

		It("should have correct branch misprediction penalty", func() {
			Expect(table.Config().BranchMispredictPenalty).To(Equal(uint64(12)))
		})
	})

	Describe("ALU op latencies", func() {
		It("should return 1 cycle for Add/Subtract/BitAnd/BitOr", func() {
			for _, op := range []insts.Op{insts.Add, insts.SubtractImmediate, insts.BitAnd, insts.BitOrImmediate} {
				Expect(table.GetLatency(op)).To(Equal(uint64(1)), op.String())
			}
		})
	})

	Describe("Multiply and divide op latencies", func() {
		It("should return MultiplyLatency for Multiply and MultiplyNoOverflow", func() {
			Expect(table.GetLatency(insts.Multiply)).To(Equal(uint64(3)))
			Expect(table.GetLatency(insts.MultiplyNoOverflow)).To(Equal(uint64(3)))
		})

		It("should return DivideLatencyMin for Divide", func() {
			Expect(table.GetLatency(insts.Divide)).To(Equal(uint64(10)))
		})

		It("should expose DivideLatencyMax separately from the modeled latency", func() {
			Expect(table.GetMaxLatency(insts.Divide)).To(Equal(uint64(15)))
		})
	})

	Describe("Branch op latencies", func() {
		It("should return BranchLatency for every predictable branch and jump", func() {
			for _, op := range []insts.Op{
				insts.BranchEqual, insts.BranchGreaterEqual, insts.Jump, insts.JumpRegister, insts.JumpAndLink,
			} {
				Expect(table.GetLatency(op)).To(Equal(uint64(1)), op.String())
			}
		})
	})

	Describe("Memory op latencies", func() {
		It("should return LoadLatency for loads", func() {
			Expect(table.GetLatency(insts.LoadMemory)).To(Equal(uint64(4)))
			Expect(table.GetLatency(insts.LoadVector)).To(Equal(uint64(4)))
		})

		It("should return StoreLatency for stores", func() {
			Expect(table.GetLatency(insts.StoreMemory)).To(Equal(uint64(1)))
		})
	})

	Describe("Custom configuration", func() {
		It("should use custom config values", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 2
			config.LoadLatency = 8
			config.BranchLatency = 3
			customTable := latency.NewTableWithConfig(config)

			Expect(customTable.GetLatency(insts.Add)).To(Equal(uint64(2)))
			Expect(customTable.GetLatency(insts.LoadMemory)).To(Equal(uint64(8)))
			Expect(customTable.GetLatency(insts.BranchEqual)).To(Equal(uint64(3)))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject zero ALU latency", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero branch latency", func() {
			config := latency.DefaultTimingConfig()
			config.BranchLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero load latency", func() {
			config := latency.DefaultTimingConfig()
			config.LoadLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero store latency", func() {
			config := latency.DefaultTimingConfig()
			config.StoreLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject inverted divide latency range", func() {
			config := latency.DefaultTimingConfig()
			config.DivideLatencyMin = 20
			config.DivideLatencyMax = 10
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(uint64(1)))
			Expect(clone.ALULatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.ALULatency = 5
			original.LoadLatency = 10

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ALULatency).To(Equal(uint64(5)))
			Expect(loaded.LoadLatency).To(Equal(uint64(10)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})

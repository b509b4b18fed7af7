package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim-ooo/insts"
	"github.com/sarchlab/m2sim-ooo/timing/engine"
)

var _ = Describe("ReservationStation", func() {
	var rs *engine.ReservationStation
	var rob *engine.ROB

	BeforeEach(func() {
		rs = engine.NewReservationStation(insts.EUClassALU, 2)
		rob = engine.NewROB(8, 4)
	})

	It("starts empty and reports its class", func() {
		Expect(rs.IsEmpty()).To(BeTrue())
		Expect(rs.Class()).To(Equal(insts.EUClassALU))
	})

	It("does not issue an entry with an unresolved operand", func() {
		entry := &engine.RSEntry{
			Word:     insts.R(insts.Add, insts.General(1), insts.General(2), insts.General(3)),
			RobIndex: 0,
			ReturnOp: engine.RegOperand(insts.General(1)),
			LeftOp:   engine.RobOperand(7),
			RightOp:  engine.ScalarOperand(3),
		}
		rs.Add(entry)
		Expect(rs.TakeOldestReady(rob)).To(BeNil())
	})

	It("issues an entry once forwarding resolves its operand", func() {
		entry := &engine.RSEntry{
			Word:     insts.R(insts.Add, insts.General(1), insts.General(2), insts.General(3)),
			RobIndex: 0,
			ReturnOp: engine.RegOperand(insts.General(1)),
			LeftOp:   engine.RobOperand(7),
			RightOp:  engine.ScalarOperand(3),
		}
		rs.Add(entry)
		rs.UpdateOperands(7, engine.RobValue{Kind: engine.ValueScalar, Scalar: 10})

		got := rs.TakeOldestReady(rob)
		Expect(got).NotTo(BeNil())
		Expect(got.LeftOp.Scalar).To(Equal(int32(10)))
		Expect(rs.IsEmpty()).To(BeTrue())
	})

	It("routes a High/Low pair to the right lane per consumer op", func() {
		mfhi := &engine.RSEntry{
			Word:     insts.I(insts.MoveFromHigh, insts.General(1), insts.Register{}, 0),
			RobIndex: 1,
			ReturnOp: engine.RegOperand(insts.General(1)),
			LeftOp:   engine.RobOperand(3),
			RightOp:  engine.ScalarOperand(0),
		}
		mflo := &engine.RSEntry{
			Word:     insts.I(insts.MoveFromLow, insts.General(2), insts.Register{}, 0),
			RobIndex: 2,
			ReturnOp: engine.RegOperand(insts.General(2)),
			LeftOp:   engine.RobOperand(3),
			RightOp:  engine.ScalarOperand(0),
		}
		rs.Add(mfhi)
		rs.Add(mflo)
		rs.UpdateOperands(3, engine.RobValue{Kind: engine.ValuePair, High: 100, Low: 7})

		Expect(mfhi.LeftOp.Scalar).To(Equal(int32(100)))
		Expect(mflo.LeftOp.Scalar).To(Equal(int32(7)))
	})

	It("stalls a load behind an older overlapping store until it retires", func() {
		lsu := engine.NewReservationStation(insts.EUClassLSU, 4)
		rob := engine.NewROB(8, 4) // fresh ROB: retiring the store needs tail to start at index 0

		store := &engine.RobEntry{
			Op:          insts.StoreMemory,
			Category:    insts.CategoryMemoryStore,
			Destination: engine.Destination{Kind: engine.DestMemory, Addr: 0x100},
			MemWidth:    4,
			State:       engine.RobState{Kind: engine.RobIssued},
		}
		rob.Add(store)

		load := &engine.RSEntry{
			Word:     insts.I(insts.LoadMemory, insts.General(1), insts.General(2), 0),
			RobIndex: rob.Add(&engine.RobEntry{Op: insts.LoadMemory, Category: insts.CategoryMemoryLoad}),
			ReturnOp: engine.RegOperand(insts.General(1)),
			LeftOp:   engine.ScalarOperand(0x100),
			RightOp:  engine.ScalarOperand(0),
		}
		lsu.Add(load)

		Expect(lsu.TakeOldestReady(rob)).To(BeNil())

		// Finished but not yet retired: still overlaps, still blocks, since
		// its value has not landed in memory yet.
		store.State = engine.RobState{Kind: engine.RobFinished}
		Expect(lsu.TakeOldestReady(rob)).To(BeNil())

		// Once retired, the store leaves the in-flight window entirely.
		rob.Retire()
		Expect(lsu.TakeOldestReady(rob)).NotTo(BeNil())
	})

	It("panics when Add is called on a full station", func() {
		rs.Add(&engine.RSEntry{ReturnOp: engine.ScalarOperand(0), LeftOp: engine.ScalarOperand(0), RightOp: engine.ScalarOperand(0)})
		rs.Add(&engine.RSEntry{ReturnOp: engine.ScalarOperand(0), LeftOp: engine.ScalarOperand(0), RightOp: engine.ScalarOperand(0)})
		Expect(func() {
			rs.Add(&engine.RSEntry{ReturnOp: engine.ScalarOperand(0), LeftOp: engine.ScalarOperand(0), RightOp: engine.ScalarOperand(0)})
		}).To(Panic())
	})
})

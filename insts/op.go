package insts

import "fmt"

// Op enumerates every operation the engine can execute. Each Op has a
// fixed EU class, latency, ROB category, renaming behavior, and
// predictability, looked up via the accessor methods below rather than
// scattered across call sites.
type Op uint8

const (
	// Scalar integer ALU.
	Add Op = iota
	AddImmediate
	Subtract
	SubtractImmediate
	Multiply
	MultiplyNoOverflow
	Divide
	BitAnd
	BitAndImmediate
	BitOr
	BitOrImmediate
	LeftShift
	RightShift
	Negate
	Compare
	LoadImmediate

	// Scalar floating point (operands are IEEE-754 32-bit reinterpretations
	// of the i32 ALU payload).
	FAdd
	FAddImmediate
	FSubtract
	FSubtractImmediate
	FMultiply
	FMultiplyImmediate
	FDivide
	FDivideImmediate
	FCompare
	FLoadImmediate

	// Vector (4x32-bit lane) integer.
	VAdd
	VSubtract
	VMultiply
	VDivide
	VLeftShift
	VRightShift

	// Vector floating point.
	VFAdd
	VFSubtract
	VFMultiply
	VFDivide

	// Vector horizontal reduction.
	VSum

	// Loads/stores at byte, halfword, word and vector widths.
	LoadByte
	StoreByte
	LoadHalf
	StoreHalf
	LoadMemory
	StoreMemory
	LoadVector
	StoreVector

	// Predictable conditional branches.
	BranchEqual
	BranchNotEqual
	BranchGreater
	BranchGreaterEqual
	BranchLess
	BranchLessEqual

	// Unconditional control flow.
	Jump
	JumpRegister
	JumpAndLink

	// HI/LO result moves, consuming the paired result of
	// MultiplyNoOverflow or Divide.
	MoveFromHigh
	MoveFromLow

	// System operations.
	Exit
	ReserveMemory
	Save
)

// EUClass identifies which execution unit class handles an Op.
type EUClass uint8

const (
	EUClassALU EUClass = iota
	EUClassFPU
	EUClassVPU
	EUClassLSU
	EUClassBranch
	EUClassSystem
)

// String implements fmt.Stringer for EUClass.
func (c EUClass) String() string {
	switch c {
	case EUClassALU:
		return "ALU"
	case EUClassFPU:
		return "FPU"
	case EUClassVPU:
		return "VPU"
	case EUClassLSU:
		return "LSU"
	case EUClassBranch:
		return "Branch"
	case EUClassSystem:
		return "System"
	default:
		return "?EUClass"
	}
}

// RobCategory classifies what a committed ROB entry does to
// architectural state.
type RobCategory uint8

const (
	CategoryRegisterWrite RobCategory = iota
	CategoryMemoryLoad
	CategoryMemoryStore
	CategoryBranch
	CategorySystem
)

type opInfo struct {
	class               EUClass
	latency             uint64
	category            RobCategory
	renamesDestination  bool
	isPredictableBranch bool
}

var opTable = map[Op]opInfo{
	Add:                {EUClassALU, 1, CategoryRegisterWrite, true, false},
	AddImmediate:       {EUClassALU, 1, CategoryRegisterWrite, true, false},
	Subtract:           {EUClassALU, 1, CategoryRegisterWrite, true, false},
	SubtractImmediate:  {EUClassALU, 1, CategoryRegisterWrite, true, false},
	Multiply:           {EUClassALU, 3, CategoryRegisterWrite, true, false},
	// MultiplyNoOverflow and Divide rename only HI/LO (see
	// Op.IsHiLoProducer), never their general Dst field, so
	// renamesDestination is false here.
	MultiplyNoOverflow: {EUClassALU, 3, CategoryRegisterWrite, false, false},
	Divide:             {EUClassALU, 10, CategoryRegisterWrite, false, false},
	BitAnd:             {EUClassALU, 1, CategoryRegisterWrite, true, false},
	BitAndImmediate:    {EUClassALU, 1, CategoryRegisterWrite, true, false},
	BitOr:              {EUClassALU, 1, CategoryRegisterWrite, true, false},
	BitOrImmediate:     {EUClassALU, 1, CategoryRegisterWrite, true, false},
	LeftShift:          {EUClassALU, 1, CategoryRegisterWrite, true, false},
	RightShift:         {EUClassALU, 1, CategoryRegisterWrite, true, false},
	Negate:             {EUClassALU, 1, CategoryRegisterWrite, true, false},
	Compare:            {EUClassALU, 1, CategoryRegisterWrite, true, false},
	LoadImmediate:      {EUClassLSU, 1, CategoryRegisterWrite, true, false},

	FAdd:               {EUClassFPU, 2, CategoryRegisterWrite, true, false},
	FAddImmediate:      {EUClassFPU, 2, CategoryRegisterWrite, true, false},
	FSubtract:          {EUClassFPU, 2, CategoryRegisterWrite, true, false},
	FSubtractImmediate: {EUClassFPU, 2, CategoryRegisterWrite, true, false},
	FMultiply:          {EUClassFPU, 4, CategoryRegisterWrite, true, false},
	FMultiplyImmediate: {EUClassFPU, 4, CategoryRegisterWrite, true, false},
	FDivide:            {EUClassFPU, 12, CategoryRegisterWrite, true, false},
	FDivideImmediate:   {EUClassFPU, 12, CategoryRegisterWrite, true, false},
	FCompare:           {EUClassFPU, 2, CategoryRegisterWrite, true, false},
	FLoadImmediate:     {EUClassLSU, 1, CategoryRegisterWrite, true, false},

	VAdd:        {EUClassVPU, 2, CategoryRegisterWrite, true, false},
	VSubtract:   {EUClassVPU, 2, CategoryRegisterWrite, true, false},
	VMultiply:   {EUClassVPU, 4, CategoryRegisterWrite, true, false},
	VDivide:     {EUClassVPU, 12, CategoryRegisterWrite, true, false},
	VLeftShift:  {EUClassVPU, 2, CategoryRegisterWrite, true, false},
	VRightShift: {EUClassVPU, 2, CategoryRegisterWrite, true, false},

	VFAdd:      {EUClassVPU, 3, CategoryRegisterWrite, true, false},
	VFSubtract: {EUClassVPU, 3, CategoryRegisterWrite, true, false},
	VFMultiply: {EUClassVPU, 5, CategoryRegisterWrite, true, false},
	VFDivide:   {EUClassVPU, 14, CategoryRegisterWrite, true, false},

	VSum: {EUClassVPU, 3, CategoryRegisterWrite, true, false},

	LoadByte:    {EUClassLSU, 4, CategoryMemoryLoad, true, false},
	StoreByte:   {EUClassLSU, 1, CategoryMemoryStore, false, false},
	LoadHalf:    {EUClassLSU, 4, CategoryMemoryLoad, true, false},
	StoreHalf:   {EUClassLSU, 1, CategoryMemoryStore, false, false},
	LoadMemory:  {EUClassLSU, 4, CategoryMemoryLoad, true, false},
	StoreMemory: {EUClassLSU, 1, CategoryMemoryStore, false, false},
	LoadVector:  {EUClassLSU, 4, CategoryMemoryLoad, true, false},
	StoreVector: {EUClassLSU, 1, CategoryMemoryStore, false, false},

	BranchEqual:        {EUClassBranch, 1, CategoryBranch, false, true},
	BranchNotEqual:     {EUClassBranch, 1, CategoryBranch, false, true},
	BranchGreater:      {EUClassBranch, 1, CategoryBranch, false, true},
	BranchGreaterEqual: {EUClassBranch, 1, CategoryBranch, false, true},
	BranchLess:         {EUClassBranch, 1, CategoryBranch, false, true},
	BranchLessEqual:    {EUClassBranch, 1, CategoryBranch, false, true},

	Jump:         {EUClassBranch, 1, CategoryBranch, false, false},
	JumpRegister: {EUClassBranch, 1, CategoryBranch, false, false},
	JumpAndLink:  {EUClassBranch, 1, CategoryBranch, true, false},

	MoveFromHigh: {EUClassALU, 1, CategoryRegisterWrite, true, false},
	MoveFromLow:  {EUClassALU, 1, CategoryRegisterWrite, true, false},

	Exit:          {EUClassSystem, 1, CategorySystem, false, false},
	ReserveMemory: {EUClassSystem, 1, CategorySystem, true, false},
	Save:          {EUClassSystem, 1, CategorySystem, false, false},
}

func (op Op) info() opInfo {
	info, ok := opTable[op]
	if !ok {
		panic("insts: unknown op in metadata table")
	}
	return info
}

// EUClass returns the execution unit class required to run op.
func (op Op) EUClass() EUClass { return op.info().class }

// Latency returns op's nominal latency from the metadata table. The
// timing engine's execution units do not use it; they charge the
// latency from timing/latency.Table.GetLatency.
func (op Op) Latency() uint64 { return op.info().latency }

// Category returns the ROB category op commits as.
func (op Op) Category() RobCategory { return op.info().category }

// RenamesDestination reports whether op's destination is written via
// register renaming (i.e. the dispatcher should set RAT[dst] to the
// new ROB slot).
func (op Op) RenamesDestination() bool { return op.info().renamesDestination }

// IsPredictableBranch reports whether op is one of the six conditional
// branches the branch predictor speculates on.
func (op Op) IsPredictableBranch() bool { return op.info().isPredictableBranch }

// IsVectorOp reports whether op operates on 128-bit vector registers.
func (op Op) IsVectorOp() bool {
	switch op {
	case VAdd, VSubtract, VMultiply, VDivide, VLeftShift, VRightShift,
		VFAdd, VFSubtract, VFMultiply, VFDivide, VSum, LoadVector, StoreVector:
		return true
	default:
		return false
	}
}

// IsHiLoProducer reports whether op produces a paired High/Low result.
func (op Op) IsHiLoProducer() bool {
	return op == MultiplyNoOverflow || op == Divide
}

// MemoryWidth returns the byte width of a load/store op's access. It
// is zero for non-memory ops.
func (op Op) MemoryWidth() int {
	switch op {
	case LoadByte, StoreByte:
		return 1
	case LoadHalf, StoreHalf:
		return 2
	case LoadMemory, StoreMemory:
		return 4
	case LoadVector, StoreVector:
		return 16
	default:
		return 0
	}
}

// String implements fmt.Stringer for Op, used by diagnostics and tests.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "?op"
}

// ParseOp looks up an Op by its mnemonic, as produced by String(). It is
// used by program loaders that read instructions from a text/JSON form.
func ParseOp(name string) (Op, error) {
	if opsByName == nil {
		opsByName = make(map[string]Op, len(opNames))
		for op, n := range opNames {
			opsByName[n] = op
		}
	}
	op, ok := opsByName[name]
	if !ok {
		return 0, fmt.Errorf("insts: unknown op mnemonic %q", name)
	}
	return op, nil
}

var opsByName map[string]Op

var opNames = map[Op]string{
	Add: "add", AddImmediate: "addi", Subtract: "sub", SubtractImmediate: "subi",
	Multiply: "mul", MultiplyNoOverflow: "mulno", Divide: "div",
	BitAnd: "and", BitAndImmediate: "andi", BitOr: "or", BitOrImmediate: "ori",
	LeftShift: "shl", RightShift: "shr", Negate: "neg", Compare: "cmp",
	LoadImmediate: "li",
	FAdd: "fadd", FAddImmediate: "faddi", FSubtract: "fsub", FSubtractImmediate: "fsubi",
	FMultiply: "fmul", FMultiplyImmediate: "fmuli", FDivide: "fdiv", FDivideImmediate: "fdivi",
	FCompare: "fcmp", FLoadImmediate: "fli",
	VAdd: "vadd", VSubtract: "vsub", VMultiply: "vmul", VDivide: "vdiv",
	VLeftShift: "vshl", VRightShift: "vshr",
	VFAdd: "vfadd", VFSubtract: "vfsub", VFMultiply: "vfmul", VFDivide: "vfdiv",
	VSum: "vsum",
	LoadByte: "lb", StoreByte: "sb", LoadHalf: "lh", StoreHalf: "sh",
	LoadMemory: "lw", StoreMemory: "sw", LoadVector: "lv", StoreVector: "sv",
	BranchEqual: "beq", BranchNotEqual: "bne", BranchGreater: "bgt",
	BranchGreaterEqual: "bge", BranchLess: "blt", BranchLessEqual: "ble",
	Jump: "j", JumpRegister: "jr", JumpAndLink: "jal",
	MoveFromHigh: "mfhi", MoveFromLow: "mflo",
	Exit: "exit", ReserveMemory: "reserve", Save: "save",
}

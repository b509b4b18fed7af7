package engine

import "github.com/sarchlab/m2sim-ooo/insts"

// FetchedEntry is a word pulled from instruction memory, annotated with
// its own address and the direction the predictor committed to.
type FetchedEntry struct {
	Word           insts.Word
	PC             int64
	PredictedTaken bool
}

// Fetcher holds a bounded FIFO of fetched-but-undispatched entries. It
// advances the PC register directly (PC lives in Registers so the
// dispatcher and commit can treat it uniformly with every other
// register).
type Fetcher struct {
	instructions []insts.Word
	capacity     int
	width        int

	buffer []FetchedEntry
}

// NewFetcher returns a fetcher over the given instruction stream.
func NewFetcher(instructions []insts.Word, capacity, width int) *Fetcher {
	return &Fetcher{instructions: instructions, capacity: capacity, width: width}
}

// HasOldest reports whether the buffer holds an entry dispatch can pop,
// used by the driver's termination check.
func (f *Fetcher) HasOldest() bool { return len(f.buffer) > 0 }

// PeekOldest returns the oldest buffered entry without removing it.
func (f *Fetcher) PeekOldest() (FetchedEntry, bool) {
	if len(f.buffer) == 0 {
		return FetchedEntry{}, false
	}
	return f.buffer[0], true
}

// PopOldest removes and returns the oldest buffered entry.
func (f *Fetcher) PopOldest() FetchedEntry {
	e := f.buffer[0]
	f.buffer = f.buffer[1:]
	return e
}

// Flush empties the fetch buffer.
func (f *Fetcher) Flush() { f.buffer = nil }

// Cycle fetches up to the configured width of new entries, stopping
// early when the buffer is full or the program is exhausted. pc is the
// live value of the PC register; Cycle both reads and advances it.
func (f *Fetcher) Cycle(pc *int64, predictor *BranchPredictor, stats *Stats) {
	for i := 0; i < f.width; i++ {
		if len(f.buffer) >= f.capacity {
			return
		}
		if *pc < 0 || int(*pc) >= len(f.instructions) {
			return
		}

		word := f.instructions[*pc]
		instAddr := *pc

		switch {
		case word.Op.IsPredictableBranch():
			taken := predictor.Predict(instAddr)
			stats.BranchesPredicted++
			entry := FetchedEntry{Word: word, PC: instAddr, PredictedTaken: taken}
			f.buffer = append(f.buffer, entry)
			if taken {
				*pc = instAddr + int64(word.Imm)
			} else {
				*pc = instAddr + 1
			}

		case word.Op == insts.Jump:
			*pc = int64(word.Imm)

		case word.Op == insts.JumpAndLink:
			entry := FetchedEntry{Word: word, PC: instAddr, PredictedTaken: true}
			f.buffer = append(f.buffer, entry)
			*pc = int64(word.Imm)

		default:
			entry := FetchedEntry{Word: word, PC: instAddr}
			f.buffer = append(f.buffer, entry)
			*pc = instAddr + 1
		}
	}
}

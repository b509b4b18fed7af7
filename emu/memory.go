package emu

// Memory is a flat, byte-addressed, big-endian memory image. Reads
// past the end of the buffer return zero; writes past the end report
// failure so the caller can raise a program error, except through
// Reserve, which is the only sanctioned way to grow the buffer (used
// by the ReserveMemory op).
type Memory struct {
	bytes []byte
}

// NewMemory returns a Memory image initialized from the given bytes.
// The slice is copied; callers retain ownership of their original.
func NewMemory(initial []byte) *Memory {
	m := &Memory{bytes: make([]byte, len(initial))}
	copy(m.bytes, initial)
	return m
}

// Len returns the current size of the memory image in bytes.
func (m *Memory) Len() int { return len(m.bytes) }

// Read8 reads a single byte. Out-of-range addresses read as zero.
func (m *Memory) Read8(addr uint64) uint8 {
	if addr >= uint64(len(m.bytes)) {
		return 0
	}
	return m.bytes[addr]
}

// Write8 writes a single byte. It reports false if addr is out of range.
func (m *Memory) Write8(addr uint64, value uint8) bool {
	if addr >= uint64(len(m.bytes)) {
		return false
	}
	m.bytes[addr] = value
	return true
}

// ReadN reads n big-endian bytes starting at addr into a uint64.
func (m *Memory) ReadN(addr uint64, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(m.Read8(addr+uint64(i)))
	}
	return v
}

// WriteN writes the low n bytes of value, big-endian, starting at
// addr. It reports false (without partial effect analysis — callers
// must request a width that was validated against Len first) if any
// byte is out of range.
func (m *Memory) WriteN(addr uint64, value uint64, n int) bool {
	ok := true
	for i := 0; i < n; i++ {
		shift := uint((n - 1 - i) * 8)
		if !m.Write8(addr+uint64(i), uint8(value>>shift)) {
			ok = false
		}
	}
	return ok
}

// Read16, Read32 read 2 and 4 byte big-endian scalars.
func (m *Memory) Read16(addr uint64) uint16 { return uint16(m.ReadN(addr, 2)) }
func (m *Memory) Read32(addr uint64) uint32 { return uint32(m.ReadN(addr, 4)) }

// Write16, Write32 write 2 and 4 byte big-endian scalars.
func (m *Memory) Write16(addr uint64, value uint16) bool { return m.WriteN(addr, uint64(value), 2) }
func (m *Memory) Write32(addr uint64, value uint32) bool { return m.WriteN(addr, uint64(value), 4) }

// ReadVector reads a 128-bit value as four big-endian 32-bit lanes.
func (m *Memory) ReadVector(addr uint64) [4]uint32 {
	var lanes [4]uint32
	for i := range lanes {
		lanes[i] = m.Read32(addr + uint64(i*4))
	}
	return lanes
}

// WriteVector writes four 32-bit lanes as 128 contiguous big-endian bits.
func (m *Memory) WriteVector(addr uint64, lanes [4]uint32) bool {
	ok := true
	for i, lane := range lanes {
		if !m.Write32(addr+uint64(i*4), lane) {
			ok = false
		}
	}
	return ok
}

// ReadBlob reads n bytes starting at addr, zero-filling past the end.
func (m *Memory) ReadBlob(addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = m.Read8(addr + uint64(i))
	}
	return out
}

// Reserve grows the memory image by n zero bytes and returns the
// address of the first newly allocated byte. This is the only way
// Memory grows; it backs the ReserveMemory op.
func (m *Memory) Reserve(n uint64) uint64 {
	addr := uint64(len(m.bytes))
	m.bytes = append(m.bytes, make([]byte, n)...)
	return addr
}

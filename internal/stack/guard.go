package stack

import "encoding/binary"

// guardPatternByte fills the lowest 16 bytes of a stack's backing region.
const guardPatternByte byte = 0xA5

// sentinelWord is the fixed 64-bit word written immediately above the
// 16-byte guard pattern (spec.md §4.2: "a fixed 64-bit word written at
// stack.base + guard_size").
const sentinelWord uint64 = 0xDEADC0DEFEEDFACE

// guardRegionSize is the total low-end region reserved for overflow
// detection: 16 bytes of pattern plus the 8-byte sentinel word.
const guardRegionSize = 16 + 8

// installGuard writes the guard pattern and sentinel into the low end of
// buf. buf must be at least guardRegionSize bytes.
func installGuard(buf []byte) {
	for i := 0; i < 16; i++ {
		buf[i] = guardPatternByte
	}
	binary.LittleEndian.PutUint64(buf[16:24], sentinelWord)
}

// checkGuard reports whether the guard region at the low end of buf is
// intact.
func checkGuard(buf []byte) bool {
	for i := 0; i < 16; i++ {
		if buf[i] != guardPatternByte {
			return false
		}
	}
	return binary.LittleEndian.Uint64(buf[16:24]) == sentinelWord
}

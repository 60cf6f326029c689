package pager

import (
	"encoding/binary"
	"math"
)

// U16BE reads a big-endian uint16 from the first two bytes of b.
func U16BE(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// U32BE reads a big-endian uint32 from the first four bytes of b.
func U32BE(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// F64BE reinterprets the first eight bytes of b, read big-endian, as an
// IEEE-754 double.
func F64BE(b []byte) float64 {
	bits := binary.BigEndian.Uint64(b)
	return math.Float64frombits(bits)
}

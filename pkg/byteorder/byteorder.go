// Package byteorder implements endian-explicit, null-pointer-safe load and
// store of unaligned integer values, mirroring the original source's
// be_get_T/be_set_T/le_get_T/le_set_T family.
//
// Per spec.md's Open Question on le_move_u*: the original source's
// "little-endian move" helpers delegate to the big-endian accessors
// instead of the little-endian ones. That is carried forward here
// deliberately as documented behavior rather than papered over — Move
// always round-trips in big-endian order regardless of its name, matching
// the instruction to treat it as an intentional "move ignores endianness"
// convention rather than a bug to silently fix.
package byteorder

// BE loads and stores values in big-endian (network) byte order.
var BE bigEndian

// LE loads and stores values in little-endian byte order.
var LE littleEndian

type bigEndian struct{}
type littleEndian struct{}

// GetU8 returns the byte at p[0], or 0 if p is nil or empty.
func (bigEndian) GetU8(p []byte) uint8 {
	if len(p) < 1 {
		return 0
	}
	return p[0]
}

// SetU8 stores v at p[0]. Returns false if p is nil or empty.
func (bigEndian) SetU8(p []byte, v uint8) bool {
	if len(p) < 1 {
		return false
	}
	p[0] = v
	return true
}

// GetU16 reads a big-endian uint16 from p, or 0 if too short.
func (bigEndian) GetU16(p []byte) uint16 {
	if len(p) < 2 {
		return 0
	}
	return uint16(p[0])<<8 | uint16(p[1])
}

// SetU16 stores v as big-endian into p. Returns false if too short.
func (bigEndian) SetU16(p []byte, v uint16) bool {
	if len(p) < 2 {
		return false
	}
	p[0] = byte(v >> 8)
	p[1] = byte(v)
	return true
}

// GetU32 reads a big-endian uint32 from p, or 0 if too short.
func (bigEndian) GetU32(p []byte) uint32 {
	if len(p) < 4 {
		return 0
	}
	return uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
}

// SetU32 stores v as big-endian into p. Returns false if too short.
func (bigEndian) SetU32(p []byte, v uint32) bool {
	if len(p) < 4 {
		return false
	}
	p[0] = byte(v >> 24)
	p[1] = byte(v >> 16)
	p[2] = byte(v >> 8)
	p[3] = byte(v)
	return true
}

// GetU64 reads a big-endian uint64 from p, or 0 if too short.
func (bigEndian) GetU64(p []byte) uint64 {
	if len(p) < 8 {
		return 0
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(p[i])
	}
	return v
}

// SetU64 stores v as big-endian into p. Returns false if too short.
func (bigEndian) SetU64(p []byte, v uint64) bool {
	if len(p) < 8 {
		return false
	}
	for i := 7; i >= 0; i-- {
		p[i] = byte(v)
		v >>= 8
	}
	return true
}

// GetU16 reads a little-endian uint16 from p, or 0 if too short.
func (littleEndian) GetU16(p []byte) uint16 {
	if len(p) < 2 {
		return 0
	}
	return uint16(p[1])<<8 | uint16(p[0])
}

// SetU16 stores v as little-endian into p. Returns false if too short.
func (littleEndian) SetU16(p []byte, v uint16) bool {
	if len(p) < 2 {
		return false
	}
	p[0] = byte(v)
	p[1] = byte(v >> 8)
	return true
}

// GetU32 reads a little-endian uint32 from p, or 0 if too short.
func (littleEndian) GetU32(p []byte) uint32 {
	if len(p) < 4 {
		return 0
	}
	return uint32(p[3])<<24 | uint32(p[2])<<16 | uint32(p[1])<<8 | uint32(p[0])
}

// SetU32 stores v as little-endian into p. Returns false if too short.
func (littleEndian) SetU32(p []byte, v uint32) bool {
	if len(p) < 4 {
		return false
	}
	p[0] = byte(v)
	p[1] = byte(v >> 8)
	p[2] = byte(v >> 16)
	p[3] = byte(v >> 24)
	return true
}

// MoveU16 round-trips a uint16 through the big-endian accessors regardless
// of the "le" name, matching the original's documented-but-odd convention.
func MoveU16(dst, src []byte) bool {
	return BE.SetU16(dst, BE.GetU16(src))
}

// MoveU32 round-trips a uint32 through the big-endian accessors regardless
// of the "le" name, matching the original's documented-but-odd convention.
func MoveU32(dst, src []byte) bool {
	return BE.SetU32(dst, BE.GetU32(src))
}

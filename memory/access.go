package memory

import "encoding/binary"

// LoadUint reads a little-endian unsigned integer of width bytes (1, 2, 4
// or 8) at addr.
func (m *Memory) LoadUint(addr uint32, width int) (uint64, error) {
	b, err := m.Load(addr, width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 8:
		return binary.LittleEndian.Uint64(b), nil
	default:
		return 0, ErrOutOfRange
	}
}

// StoreUint writes a little-endian unsigned integer of width bytes at addr.
func (m *Memory) StoreUint(addr uint32, width int, v uint64) error {
	b := make([]byte, width)
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		return ErrOutOfRange
	}
	return m.Store(addr, b)
}

// Package peripherals defines the contracts between a system bus and the
// register blocks attached to it. A peripheral implements the access-width
// interfaces matching the granularities its registers support and is
// addressed by byte offset from its base address.
package peripherals

// Peripheral occupies a contiguous range of the address space.
type Peripheral interface {
	Size() uint64
}

// BytePeripheral handles 8-bit accesses.
type BytePeripheral interface {
	Peripheral
	ReadByte(offset uint64) byte
	WriteByte(offset uint64, value byte)
}

// WordPeripheral handles 16-bit accesses.
type WordPeripheral interface {
	Peripheral
	ReadWord(offset uint64) uint16
	WriteWord(offset uint64, value uint16)
}

// DoubleWordPeripheral handles 32-bit accesses.
type DoubleWordPeripheral interface {
	Peripheral
	ReadDoubleWord(offset uint64) uint32
	WriteDoubleWord(offset uint64, value uint32)
}

// Resettable restores power-on state.
type Resettable interface {
	Reset()
}

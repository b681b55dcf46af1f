// Package crc implements runtime-parameterized cyclic redundancy checks at
// 16 and 32-bit register widths using table-driven, most-significant-bit
// first computation.
package crc

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrUnsupportedWidth is returned by New for widths other than 16 and 32.
var ErrUnsupportedWidth = errors.New("crc: unsupported width")

// Width is the register width of a checksum in bits.
type Width uint8

const (
	Width16 Width = 16
	Width32 Width = 32
)

func (w Width) Valid() bool {
	return w == Width16 || w == Width32
}

// Mask returns the all-ones mask covering the width.
func (w Width) Mask() uint32 {
	return 0xFFFFFFFF >> (32 - w)
}

// Params fully determines a checksum. Two Params describe the same checksum
// exactly when their normalized values are equal.
type Params struct {
	Polynomial uint32
	Width      Width

	// Transposition applied per input byte and to the final register.
	ReflectInput  bool
	ReflectOutput bool

	Init      uint32
	XorOutput uint32
}

// Normalize masks Polynomial, Init and XorOutput to Width bits so that
// normalized Params are directly comparable.
func (p Params) Normalize() Params {
	mask := p.Width.Mask()
	p.Polynomial &= mask
	p.Init &= mask
	p.XorOutput &= mask
	return p
}

// Validate reports whether the parameters can drive an engine.
func (p Params) Validate() error {
	if !p.Width.Valid() {
		return ErrUnsupportedWidth
	}
	return nil
}

func (p Params) String() string {
	digits := int(p.Width) / 4
	return fmt.Sprintf("{Poly:0x%0*X Width:%d RefIn:%t RefOut:%t Init:0x%0*X XorOut:0x%0*X}",
		digits, p.Polynomial, p.Width, p.ReflectInput, p.ReflectOutput, digits, p.Init, digits, p.XorOutput,
	)
}

// Table is a byte-indexed lookup table of MSB-first polynomial remainders.
// For 16-bit widths only the low halves of the entries are populated.
type Table [256]uint32

func NewTable(poly uint32, width Width) (table Table) {
	top := uint32(1) << (width - 1)
	mask := width.Mask()
	poly &= mask
	for tIdx := range table {
		crc := uint32(tIdx) << (width - 8)
		for bIdx := 0; bIdx < 8; bIdx++ {
			if crc&top != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc = crc << 1
			}
		}
		table[tIdx] = crc & mask
	}
	return table
}

// Engine accumulates a checksum over a byte stream. The parameters are fixed
// at construction, the accumulator advances with Update and is observed,
// never disturbed, by Value.
type Engine struct {
	params Params
	tbl    Table
	crc    uint32
}

// New builds an engine for the normalized form of p with the accumulator
// holding the initial seed.
func New(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Normalize()
	e := &Engine{params: p, tbl: NewTable(p.Polynomial, p.Width)}
	e.Reset()
	return e, nil
}

// Reset rewinds the accumulator to the seed. Parameters are retained.
func (e *Engine) Reset() {
	e.crc = e.params.Init
}

// Update folds data into the accumulator a byte at a time. Splitting a
// buffer across calls produces the same state as a single call.
func (e *Engine) Update(data []byte) {
	crc := e.crc
	shift := e.params.Width - 8
	mask := e.params.Width.Mask()
	for _, v := range data {
		if e.params.ReflectInput {
			v = bits.Reverse8(v)
		}
		crc = (crc<<8 ^ e.tbl[crc>>shift^uint32(v)]) & mask
	}
	e.crc = crc
}

// Write folds p into the accumulator, satisfying io.Writer so streams can
// be copied straight into an engine. It never fails.
func (e *Engine) Write(p []byte) (int, error) {
	e.Update(p)
	return len(p), nil
}

// Value returns the checksum for the bytes folded in so far: the accumulator
// with the output transposition and final XOR applied. The accumulator
// itself is left untouched, so interleaving Value with Update is safe.
func (e *Engine) Value() uint32 {
	crc := e.crc
	if e.params.ReflectOutput {
		crc = reverse(crc, e.params.Width)
	}
	return (crc ^ e.params.XorOutput) & e.params.Width.Mask()
}

// Params returns the normalized parameters the engine was built from.
func (e *Engine) Params() Params {
	return e.params
}

// Checksum computes the checksum of data in one call.
func Checksum(p Params, data []byte) (uint32, error) {
	e, err := New(p)
	if err != nil {
		return 0, err
	}
	e.Update(data)
	return e.Value(), nil
}

func reverse(v uint32, width Width) uint32 {
	if width == Width16 {
		return uint32(bits.Reverse16(uint16(v)))
	}
	return bits.Reverse32(v)
}

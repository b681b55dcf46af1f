// RENODE-INFRASTRUCTURE - Register-level peripheral models for system emulation.
// Copyright (C) 2021 Auxon Corporation
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package s32kcrc models the S32K/Kinetis-family CRC hardware block: a
// runtime-reconfigurable checksum unit driven through three memory-mapped
// registers. Configuration writes are cheap raw stores; the checksum engine
// is rebuilt lazily at the next data access or committed explicitly by the
// write-as-seed sequence.
package s32kcrc

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/auxoncorp/renode-infrastructure/crc"
	"github.com/auxoncorp/renode-infrastructure/peripherals"
)

// ErrUnsupportedAccessWidth rejects checksum accumulation at word or
// doubleword granularity. The block does not decompose wide data writes.
var ErrUnsupportedAccessWidth = errors.New("s32kcrc: unsupported access width for data accumulation")

const (
	dataOffset  = 0x0
	gpolyOffset = 0x4
	ctrlOffset  = 0x8

	blockSize = 0x10

	defaultPoly = 0x00001021
	defaultSeed = 0xFFFFFFFF

	// CTRL fields. TCRC selects 16-bit width when set, WAS routes data
	// writes to the seed, FXOR inverts the read value.
	ctrlWidthBit  = 24
	ctrlSeedBit   = 25
	ctrlXorBit    = 26
	ctrlTotrShift = 28
	ctrlTotShift  = 30
)

// transpose is the two-bit encoding shared by the TOT and TOTR fields.
type transpose uint32

const (
	transposeNone transpose = iota
	transposeBits
	transposeBitsAndBytes
	transposeBytes
)

// reflects reports whether the mode feeds the engine's reflection. Bit-only
// transposition is a stored, legal configuration that leaves the engine
// untransposed.
func (t transpose) reflects() bool {
	return t == transposeBitsAndBytes || t == transposeBytes
}

// CRC is the register block. It implements byte, word and doubleword access
// and the bus reset lifecycle.
type CRC struct {
	log logrus.FieldLogger

	gpoly uint32
	ctrl  uint32
	seed  uint32

	// dirty marks raw register state not yet reflected in the engine.
	// The engine is nil until the first data access after reset.
	dirty  bool
	engine *crc.Engine
}

// New returns a block in power-on state. A nil log uses the logrus standard
// logger.
func New(log logrus.FieldLogger) *CRC {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &CRC{log: log.WithField("peripheral", "s32kcrc")}
	c.Reset()
	return c
}

func (c *CRC) Size() uint64 {
	return blockSize
}

// Reset restores power-on defaults and drops the engine.
func (c *CRC) Reset() {
	c.gpoly = defaultPoly
	c.ctrl = 0
	c.seed = defaultSeed
	c.dirty = true
	c.engine = nil
}

func (c *CRC) ReadByte(offset uint64) byte {
	if offset != dataOffset {
		c.unhandled(peripherals.Read, peripherals.Byte, offset, 0)
		return 0
	}
	return byte(c.readData())
}

func (c *CRC) ReadWord(offset uint64) uint16 {
	if offset != dataOffset {
		c.unhandled(peripherals.Read, peripherals.Word, offset, 0)
		return 0
	}
	return uint16(c.readData())
}

func (c *CRC) ReadDoubleWord(offset uint64) uint32 {
	switch offset {
	case dataOffset:
		return c.readData()
	case gpolyOffset:
		return c.gpoly
	case ctrlOffset:
		return c.ctrl
	}
	c.unhandled(peripherals.Read, peripherals.DoubleWord, offset, 0)
	return 0
}

func (c *CRC) WriteByte(offset uint64, value byte) {
	if offset != dataOffset {
		c.unhandled(peripherals.Write, peripherals.Byte, offset, uint32(value))
		return
	}
	c.writeData(peripherals.Byte, uint32(value))
}

func (c *CRC) WriteWord(offset uint64, value uint16) {
	if offset != dataOffset {
		c.unhandled(peripherals.Write, peripherals.Word, offset, uint32(value))
		return
	}
	c.writeData(peripherals.Word, uint32(value))
}

func (c *CRC) WriteDoubleWord(offset uint64, value uint32) {
	switch offset {
	case dataOffset:
		c.writeData(peripherals.DoubleWord, value)
	case gpolyOffset:
		c.gpoly = value
		c.dirty = true
	case ctrlOffset:
		c.writeCtrl(value)
	default:
		c.unhandled(peripherals.Write, peripherals.DoubleWord, offset, value)
	}
}

// readData reconciles pending configuration and returns the checksum, or
// zero while WAS is set.
func (c *CRC) readData() uint32 {
	engine := c.ensure()
	if c.writeAsSeed() {
		return 0
	}
	return engine.Value()
}

// writeData accumulates into the checksum, or stages the seed while WAS is
// set. Seed writes take any granularity; accumulation is byte-only and a
// wide write is discarded whole, not decomposed.
func (c *CRC) writeData(width peripherals.AccessWidth, value uint32) {
	if c.writeAsSeed() {
		c.seed = value
		c.dirty = true
		return
	}
	if width != peripherals.Byte {
		c.log.WithFields(logrus.Fields{
			"width": width,
			"value": value,
		}).WithError(ErrUnsupportedAccessWidth).Warn("data write rejected")
		return
	}
	c.ensure().Update([]byte{byte(value)})
}

// writeCtrl stores the raw control word. A falling WAS edge is the commit
// point: the staged registers are reconciled immediately.
func (c *CRC) writeCtrl(value uint32) {
	was := c.writeAsSeed()
	c.ctrl = value
	c.dirty = true
	if was && !c.writeAsSeed() {
		c.reconcile()
	}
}

func (c *CRC) width() crc.Width {
	if c.ctrl&(1<<ctrlWidthBit) != 0 {
		return crc.Width16
	}
	return crc.Width32
}

func (c *CRC) writeAsSeed() bool {
	return c.ctrl&(1<<ctrlSeedBit) != 0
}

func (c *CRC) xorEnabled() bool {
	return c.ctrl&(1<<ctrlXorBit) != 0
}

func (c *CRC) inputTranspose() transpose {
	return transpose(c.ctrl >> ctrlTotShift & 0x3)
}

func (c *CRC) outputTranspose() transpose {
	return transpose(c.ctrl >> ctrlTotrShift & 0x3)
}

// params derives the engine configuration from the raw registers, masked to
// the selected width.
func (c *CRC) params() crc.Params {
	p := crc.Params{
		Polynomial:    c.gpoly,
		Width:         c.width(),
		ReflectInput:  c.inputTranspose().reflects(),
		ReflectOutput: c.outputTranspose().reflects(),
		Init:          c.seed,
	}
	if c.xorEnabled() {
		p.XorOutput = p.Width.Mask()
	}
	return p.Normalize()
}

// ensure hands back an engine matching the registers, reconciling first if
// a configuration write is pending.
func (c *CRC) ensure() *crc.Engine {
	if c.engine == nil || c.dirty {
		c.reconcile()
	}
	return c.engine
}

// reconcile commits the raw registers to the engine. A changed configuration
// replaces the engine outright; an unchanged one restarts the running
// checksum from the seed.
func (c *CRC) reconcile() {
	params := c.params()
	if c.engine == nil || c.engine.Params() != params {
		engine, err := crc.New(params)
		if err != nil {
			// CTRL encodes only 16 and 32-bit widths.
			c.log.WithError(err).Panic("checksum configuration rejected")
		}
		c.engine = engine
	} else {
		c.engine.Reset()
	}
	c.dirty = false
}

func (c *CRC) unhandled(kind peripherals.AccessKind, width peripherals.AccessWidth, offset uint64, value uint32) {
	c.log.WithFields(logrus.Fields{
		"kind":   kind,
		"width":  width,
		"offset": offset,
		"value":  value,
	}).Warn("unhandled register access")
}

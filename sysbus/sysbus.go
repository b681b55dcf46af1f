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

// Package sysbus routes memory accesses to registered peripherals by
// address range. Accesses that no registration claims, or that the target
// peripheral cannot serve at the requested granularity, are logged and fall
// through: reads return zero, writes are discarded.
package sysbus

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/auxoncorp/renode-infrastructure/peripherals"
)

// Tracer observes every completed bus access, handled or not.
type Tracer interface {
	Trace(peripherals.Access)
}

type registration struct {
	name string
	base uint64
	size uint64

	peripheral peripherals.Peripheral
}

func (r registration) contains(addr uint64) bool {
	return addr >= r.base && addr < r.base+r.size
}

func (r registration) overlaps(base, size uint64) bool {
	return base < r.base+r.size && r.base < base+size
}

// Bus dispatches by registration order. One mutex serializes dispatch so a
// concurrent embedding stays coherent; peripherals themselves are called
// with the lock held.
type Bus struct {
	mu  sync.Mutex
	log logrus.FieldLogger

	registrations []registration
	tracer        Tracer
}

// New returns an empty bus. A nil log uses the logrus standard logger.
func New(log logrus.FieldLogger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{log: log.WithField("module", "sysbus")}
}

// Register attaches a peripheral at base. Registrations may not overlap and
// peripherals must occupy at least one byte.
func (b *Bus) Register(name string, base uint64, p peripherals.Peripheral) error {
	if p == nil {
		panic("sysbus: register nil peripheral")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	size := p.Size()
	if size == 0 {
		return fmt.Errorf("sysbus: peripheral %q has zero size", name)
	}
	for _, r := range b.registrations {
		if r.name == name {
			return fmt.Errorf("sysbus: peripheral already registered (%s)", name)
		}
		if r.overlaps(base, size) {
			return fmt.Errorf("sysbus: peripheral %q at 0x%08X overlaps %q at 0x%08X", name, base, r.name, r.base)
		}
	}

	b.registrations = append(b.registrations, registration{name, base, size, p})
	return nil
}

// SetTracer installs the access observer. A nil tracer disables tracing.
func (b *Bus) SetTracer(t Tracer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tracer = t
}

// Reset propagates the reset lifecycle to every resettable peripheral in
// registration order.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.registrations {
		if p, ok := r.peripheral.(peripherals.Resettable); ok {
			p.Reset()
		}
	}
}

func (b *Bus) ReadByte(addr uint64) byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	var value byte
	handled := false
	if r := b.find(addr); r != nil {
		if p, ok := r.peripheral.(peripherals.BytePeripheral); ok {
			value = p.ReadByte(addr - r.base)
			handled = true
		}
	}
	b.complete(peripherals.Read, peripherals.Byte, addr, uint32(value), handled)
	return value
}

func (b *Bus) ReadWord(addr uint64) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var value uint16
	handled := false
	if r := b.find(addr); r != nil {
		if p, ok := r.peripheral.(peripherals.WordPeripheral); ok {
			value = p.ReadWord(addr - r.base)
			handled = true
		}
	}
	b.complete(peripherals.Read, peripherals.Word, addr, uint32(value), handled)
	return value
}

func (b *Bus) ReadDoubleWord(addr uint64) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var value uint32
	handled := false
	if r := b.find(addr); r != nil {
		if p, ok := r.peripheral.(peripherals.DoubleWordPeripheral); ok {
			value = p.ReadDoubleWord(addr - r.base)
			handled = true
		}
	}
	b.complete(peripherals.Read, peripherals.DoubleWord, addr, value, handled)
	return value
}

func (b *Bus) WriteByte(addr uint64, value byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handled := false
	if r := b.find(addr); r != nil {
		if p, ok := r.peripheral.(peripherals.BytePeripheral); ok {
			p.WriteByte(addr-r.base, value)
			handled = true
		}
	}
	b.complete(peripherals.Write, peripherals.Byte, addr, uint32(value), handled)
}

func (b *Bus) WriteWord(addr uint64, value uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handled := false
	if r := b.find(addr); r != nil {
		if p, ok := r.peripheral.(peripherals.WordPeripheral); ok {
			p.WriteWord(addr-r.base, value)
			handled = true
		}
	}
	b.complete(peripherals.Write, peripherals.Word, addr, uint32(value), handled)
}

func (b *Bus) WriteDoubleWord(addr uint64, value uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handled := false
	if r := b.find(addr); r != nil {
		if p, ok := r.peripheral.(peripherals.DoubleWordPeripheral); ok {
			p.WriteDoubleWord(addr-r.base, value)
			handled = true
		}
	}
	b.complete(peripherals.Write, peripherals.DoubleWord, addr, value, handled)
}

func (b *Bus) find(addr uint64) *registration {
	for i := range b.registrations {
		if b.registrations[i].contains(addr) {
			return &b.registrations[i]
		}
	}
	return nil
}

// complete logs fallthrough accesses and hands the finished access to the
// tracer. Runs with the bus lock held so traces observe dispatch order.
func (b *Bus) complete(kind peripherals.AccessKind, width peripherals.AccessWidth, addr uint64, value uint32, handled bool) {
	if !handled {
		b.log.WithFields(logrus.Fields{
			"kind":  kind,
			"width": width,
			"addr":  fmt.Sprintf("0x%08X", addr),
			"value": value,
		}).Warn("unhandled bus access")
	}
	if b.tracer != nil {
		b.tracer.Trace(peripherals.Access{Kind: kind, Width: width, Addr: addr, Value: value, Handled: handled})
	}
}

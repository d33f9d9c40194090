// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
)

var errBoom = errors.New("remote I/O error")

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type regWrite struct {
	reg, val byte
}

// fakeBus is a 256 byte register file.
type fakeBus struct {
	addr    uint16
	regs    [256]byte
	writes  []regWrite
	reads   int
	addrErr error
	// writeErr fails writes to the given registers.
	writeErr map[byte]error
	// readErr is consulted on every ReadBlock with the 1-based call count.
	readErr func(n int) error
}

func newFakeBus() *fakeBus {
	b := &fakeBus{writeErr: map[byte]error{}}
	b.regs[RegIntStatus] = 0x01
	b.regs[RegWhoAmI] = WhoAmIValue
	return b
}

func (b *fakeBus) SetAddress(addr uint16) error {
	if b.addrErr != nil {
		return b.addrErr
	}
	b.addr = addr
	return nil
}

func (b *fakeBus) ReadBlock(reg byte, buf []byte) error {
	b.reads++
	if b.readErr != nil {
		if err := b.readErr(b.reads); err != nil {
			return err
		}
	}
	copy(buf, b.regs[int(reg):])
	return nil
}

func (b *fakeBus) WriteRegister(reg, value byte) error {
	if err := b.writeErr[reg]; err != nil {
		return err
	}
	b.writes = append(b.writes, regWrite{reg, value})
	b.regs[reg] = value
	return nil
}

func (b *fakeBus) ReadRegister(reg byte) (byte, error) {
	return b.regs[reg], nil
}

// setWord stores v big-endian at reg, reg+1.
func (b *fakeBus) setWord(reg byte, v int16) {
	b.regs[reg] = byte(uint16(v) >> 8)
	b.regs[reg+1] = byte(v)
}

// fakePin advances the clock by step on every poll.
type fakePin struct {
	clock *fakeClock
	step  time.Duration
	// fire decides whether poll n (1-based) sees an edge; nil always fires.
	fire       func(n int) bool
	err        error
	polls      int
	edge       gpio.Edge
	configured bool
}

func (p *fakePin) Configure(edge gpio.Edge) error {
	p.edge = edge
	p.configured = true
	return nil
}

func (p *fakePin) Poll(reset bool, timeout time.Duration) (bool, error) {
	p.polls++
	if p.err != nil {
		return false, p.err
	}
	if p.fire != nil && !p.fire(p.polls) {
		p.clock.advance(timeout)
		return false, nil
	}
	p.clock.advance(p.step)
	return true, nil
}

// newTestDev returns an interrupt driven device at 1 kHz on a fake bus whose
// pin fires every millisecond.
func newTestDev(o *Opts) (*InterruptDev, *fakeBus, *fakePin, *fakeClock) {
	clock := newFakeClock()
	bus := newFakeBus()
	pin := &fakePin{clock: clock, step: time.Millisecond}
	if o == nil {
		opts := DefaultOpts
		opts.Filter = FilterConfig{Filter: FilterBW184Hz}
		opts.Interrupt = InterruptConfig{DataReady: true}
		o = &opts
	}
	d, err := NewInterrupt(bus, pin, o)
	if err != nil {
		panic(err)
	}
	d.now = clock.now
	return d, bus, pin, clock
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Bus is a register addressed serial bus.
type Bus interface {
	// SetAddress selects the target device for subsequent calls.
	SetAddress(addr uint16) error
	// ReadBlock reads len(buf) consecutive registers starting at reg.
	ReadBlock(reg byte, buf []byte) error
	WriteRegister(reg, value byte) error
	ReadRegister(reg byte) (byte, error)
}

// InterruptPin is an edge triggered host input wired to the sensor INT pin.
type InterruptPin interface {
	Configure(edge gpio.Edge) error
	// Poll blocks until an edge is seen or timeout elapses. With reset set,
	// edges that arrived before the call are discarded first.
	Poll(reset bool, timeout time.Duration) (bool, error)
}

var errNoAddress = errors.New("no device address selected")

// I2CBus implements Bus on top of a periph I²C bus.
type I2CBus struct {
	bus i2c.Bus
	dev i2c.Dev
}

// NewI2CBus wraps an opened bus, e.g. from i2creg.Open.
func NewI2CBus(bus i2c.Bus) *I2CBus {
	return &I2CBus{bus: bus}
}

func (b *I2CBus) String() string {
	return fmt.Sprintf("%s@0x%02X", b.bus, b.dev.Addr)
}

func (b *I2CBus) SetAddress(addr uint16) error {
	if addr > 0x7F {
		return fmt.Errorf("invalid 7-bit address 0x%X", addr)
	}
	b.dev = i2c.Dev{Bus: b.bus, Addr: addr}
	return nil
}

func (b *I2CBus) ReadBlock(reg byte, buf []byte) error {
	if b.dev.Bus == nil {
		return errNoAddress
	}
	return b.dev.Tx([]byte{reg}, buf)
}

func (b *I2CBus) WriteRegister(reg, value byte) error {
	if b.dev.Bus == nil {
		return errNoAddress
	}
	return b.dev.Tx([]byte{reg, value}, nil)
}

func (b *I2CBus) ReadRegister(reg byte) (byte, error) {
	var r [1]byte
	if err := b.ReadBlock(reg, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// maxStaleEdges bounds how many queued edges a reset poll discards.
const maxStaleEdges = 16

// GPIOInterrupt implements InterruptPin on a periph GPIO input.
type GPIOInterrupt struct {
	pin  gpio.PinIn
	pull gpio.Pull
}

// NewGPIOInterrupt wraps pin. The sensor drives INT push-pull by default, so
// the pull resistor is left as is unless pull says otherwise.
func NewGPIOInterrupt(pin gpio.PinIn, pull gpio.Pull) *GPIOInterrupt {
	return &GPIOInterrupt{pin: pin, pull: pull}
}

func (g *GPIOInterrupt) String() string { return g.pin.String() }

func (g *GPIOInterrupt) Configure(edge gpio.Edge) error {
	if err := g.pin.In(g.pull, edge); err != nil {
		return fmt.Errorf("%s: %w", g.pin, err)
	}
	return nil
}

func (g *GPIOInterrupt) Poll(reset bool, timeout time.Duration) (bool, error) {
	if reset {
		for i := 0; i < maxStaleEdges && g.pin.WaitForEdge(0); i++ {
		}
	}
	return g.pin.WaitForEdge(timeout), nil
}

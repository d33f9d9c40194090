// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// blinker toggles a status LED. A nil *blinker does nothing.
type blinker struct {
	pin   gpio.PinOut
	level gpio.Level
}

// newBlinker looks up name in the GPIO registry. An empty name disables the
// LED and returns nil.
func newBlinker(name string) (*blinker, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("LED pin %q not found", name)
	}
	return newBlinkerOn(p)
}

func newBlinkerOn(p gpio.PinOut) (*blinker, error) {
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("LED pin %s: %w", p, err)
	}
	return &blinker{pin: p}, nil
}

func (b *blinker) Toggle() error {
	if b == nil {
		return nil
	}
	b.level = !b.level
	return b.pin.Out(b.level)
}

func (b *blinker) Off() error {
	if b == nil {
		return nil
	}
	b.level = gpio.Low
	return b.pin.Out(gpio.Low)
}

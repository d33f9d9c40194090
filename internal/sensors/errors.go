// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRegisterLayout is returned for data register ranges that do not
	// form one contiguous burst.
	ErrRegisterLayout = errors.New("invalid data register layout")

	// ErrShortRead is returned when a burst buffer is smaller than the span.
	ErrShortRead = errors.New("short burst read")

	// ErrNoInterruptPin is returned when an interrupt driven device is
	// built without a pin.
	ErrNoInterruptPin = errors.New("no interrupt pin configured")

	// ErrInsufficientSamples is returned by calibration when too few samples
	// were collected to estimate a bias.
	ErrInsufficientSamples = errors.New("insufficient samples to calibrate")
)

// BusError is a failed bus or pin operation. Op names the stage.
type BusError struct {
	Op  string
	At  time.Time
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

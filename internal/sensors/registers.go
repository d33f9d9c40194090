// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/relabs-tech/njord/internal/imu"
)

// Default I2C address (AD0 low).
const DefaultAddr = 0x68

// MPU-6050 register addresses.
const (
	RegSmplrtDiv   = 0x19
	RegConfig      = 0x1A
	RegGyroConfig  = 0x1B
	RegAccelConfig = 0x1C
	RegIntPinCfg   = 0x37
	RegIntEnable   = 0x38
	RegIntStatus   = 0x3A
	RegAccelXoutH  = 0x3B // first register of the burst span
	RegTempOutH    = 0x41
	RegGyroXoutH   = 0x43
	RegGyroZoutL   = 0x48 // last register of the burst span
	RegPwrMgmt1    = 0x6B
	RegPwrMgmt2    = 0x6C
	RegWhoAmI      = 0x75
)

// WhoAmIValue is the expected content of WHO_AM_I.
const WhoAmIValue = 0x68

// Span is a half-open range of register addresses [Start, End).
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("[0x%02X, 0x%02X)", s.Start, s.End)
}

// DataRegisters locates accelerometer, thermometer and gyroscope inside one
// burst read. The sub-ranges are stored relative to the first register of the
// burst so they index straight into the read buffer.
type DataRegisters struct {
	start int
	n     int
	accel Span
	temp  Span
	gyro  Span
}

// NewDataRegisters validates that the three ranges are back to back, in
// register order, and have the sizes the decoder expects (6, 2 and 6 bytes).
func NewDataRegisters(accel, temp, gyro Span) (DataRegisters, error) {
	if accel.End != temp.Start || temp.End != gyro.Start {
		return DataRegisters{}, fmt.Errorf("%w: accel %v, temp %v, gyro %v are not contiguous", ErrRegisterLayout, accel, temp, gyro)
	}
	if accel.Len() != 6 || temp.Len() != 2 || gyro.Len() != 6 {
		return DataRegisters{}, fmt.Errorf("%w: want 6/2/6 bytes, got %d/%d/%d", ErrRegisterLayout, accel.Len(), temp.Len(), gyro.Len())
	}
	if accel.Start < 0 || gyro.End > 0x100 {
		return DataRegisters{}, fmt.Errorf("%w: %v..%v outside the register file", ErrRegisterLayout, accel, gyro)
	}
	base := accel.Start
	return DataRegisters{
		start: base,
		n:     gyro.End - base,
		accel: Span{accel.Start - base, accel.End - base},
		temp:  Span{temp.Start - base, temp.End - base},
		gyro:  Span{gyro.Start - base, gyro.End - base},
	}, nil
}

// DefaultDataRegisters is the MPU-6050 layout 0x3B..0x48.
func DefaultDataRegisters() DataRegisters {
	d, err := NewDataRegisters(
		Span{RegAccelXoutH, RegTempOutH},
		Span{RegTempOutH, RegGyroXoutH},
		Span{RegGyroXoutH, RegGyroZoutL + 1},
	)
	if err != nil {
		panic(err)
	}
	return d
}

// Start is the first register of the burst.
func (d DataRegisters) Start() byte { return byte(d.start) }

// Len is the number of bytes in one burst.
func (d DataRegisters) Len() int { return d.n }

// Accel, Temp and Gyro return buffer offsets.
func (d DataRegisters) Accel() Span { return d.accel }
func (d DataRegisters) Temp() Span  { return d.temp }
func (d DataRegisters) Gyro() Span  { return d.gyro }

// Decode turns one burst buffer into signed register values.
func (d DataRegisters) Decode(buf []byte) (imu.Raw, error) {
	if len(buf) < d.n || d.n == 0 {
		return imu.Raw{}, fmt.Errorf("%w: have %d bytes, need %d", ErrShortRead, len(buf), d.n)
	}
	a := buf[d.accel.Start:d.accel.End]
	t := buf[d.temp.Start:d.temp.End]
	g := buf[d.gyro.Start:d.gyro.End]
	return imu.Raw{
		Ax:   imu.Word(a[0], a[1]),
		Ay:   imu.Word(a[2], a[3]),
		Az:   imu.Word(a[4], a[5]),
		Temp: imu.Word(t[0], t[1]),
		Gx:   imu.Word(g[0], g[1]),
		Gy:   imu.Word(g[2], g[3]),
		Gz:   imu.Word(g[4], g[5]),
	}, nil
}

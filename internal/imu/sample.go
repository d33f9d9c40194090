// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "time"

// Datasheet constants for the on-die thermometer (register map rev 4.2, 4.18).
const (
	TempSensitivity   = 340.0 // LSB/°C
	TempOffsetCelsius = 36.53 // °C
)

// Sample is one converted reading. At is the instant the burst read that
// produced it was started.
type Sample struct {
	Acceleration    Vec3      `json:"acceleration" yaml:"acceleration"`         // g
	AngularVelocity Vec3      `json:"angular_velocity" yaml:"angular_velocity"` // °/s
	Temperature     float64   `json:"temperature" yaml:"temperature"`           // °C
	At              time.Time `json:"-" yaml:"-"`
}

// Offsets are additive per-axis corrections in physical units.
type Offsets struct {
	Accel       Vec3    `json:"accel" yaml:"accel"`
	Gyro        Vec3    `json:"gyro" yaml:"gyro"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// Add composes two sets of offsets.
func (o Offsets) Add(d Offsets) Offsets {
	return Offsets{
		Accel:       o.Accel.Add(d.Accel),
		Gyro:        o.Gyro.Add(d.Gyro),
		Temperature: o.Temperature + d.Temperature,
	}
}

// Convert scales raw counts into g, °/s and °C and applies the offsets.
// accelScale and gyroScale are in LSB per physical unit.
func Convert(r Raw, accelScale, gyroScale float64, off Offsets) Sample {
	return Sample{
		Acceleration:    r.Accel().Div(accelScale).Add(off.Accel),
		AngularVelocity: r.Gyro().Div(gyroScale).Add(off.Gyro),
		Temperature:     float64(r.Temp)/TempSensitivity + TempOffsetCelsius + off.Temperature,
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// Raw holds one burst read as signed register values, before any scaling.
type Raw struct {
	Ax int16 `json:"ax" yaml:"ax"` // accel
	Ay int16 `json:"ay" yaml:"ay"`
	Az int16 `json:"az" yaml:"az"`

	Temp int16 `json:"temp" yaml:"temp"`

	Gx int16 `json:"gx" yaml:"gx"` // gyro
	Gy int16 `json:"gy" yaml:"gy"`
	Gz int16 `json:"gz" yaml:"gz"`
}

// Accel returns the accelerometer counts as a vector.
func (r Raw) Accel() Vec3 {
	return Vec3{X: float64(r.Ax), Y: float64(r.Ay), Z: float64(r.Az)}
}

// Gyro returns the gyroscope counts as a vector.
func (r Raw) Gyro() Vec3 {
	return Vec3{X: float64(r.Gx), Y: float64(r.Gy), Z: float64(r.Gz)}
}

// Word reassembles a register pair read in ascending address order. The
// sensor stores the high byte at the lower address, so the first byte read
// is the high half. The result is the two's-complement signed value.
func Word(first, second byte) int16 {
	return int16(uint16(second) | uint16(first)<<8)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"testing"
)

func TestWordTwosComplement(t *testing.T) {
	tests := []struct {
		first, second byte
		want          int16
	}{
		{0x00, 0x00, 0},
		{0x7F, 0xFF, 32767},
		{0x80, 0x00, -32768},
		{0xFF, 0xFF, -1},
		{0x40, 0x00, 16384},
		{0x00, 0x83, 131},
	}
	for _, tt := range tests {
		if got := Word(tt.first, tt.second); got != tt.want {
			t.Errorf("Word(0x%02X, 0x%02X) = %d, want %d", tt.first, tt.second, got, tt.want)
		}
	}
}

func TestConvertUnits(t *testing.T) {
	r := Raw{Ax: 16384, Gx: 131, Temp: 0}
	s := Convert(r, 16384, 131.0, Offsets{})
	if s.Acceleration.X != 1.0 {
		t.Errorf("accel x = %v, want exactly 1.0", s.Acceleration.X)
	}
	if s.AngularVelocity.X != 1.0 {
		t.Errorf("gyro x = %v, want exactly 1.0", s.AngularVelocity.X)
	}
	if s.Temperature != TempOffsetCelsius {
		t.Errorf("temperature = %v, want %v", s.Temperature, TempOffsetCelsius)
	}
}

func TestConvertAppliesOffsets(t *testing.T) {
	r := Raw{Az: 16384, Gy: -262, Temp: 340}
	off := Offsets{
		Accel:       Vec3{Z: -0.25},
		Gyro:        Vec3{Y: 2},
		Temperature: 0.5,
	}
	s := Convert(r, 16384, 131.0, off)
	if s.Acceleration.Z != 0.75 {
		t.Errorf("accel z = %v, want 0.75", s.Acceleration.Z)
	}
	if s.AngularVelocity.Y != 0 {
		t.Errorf("gyro y = %v, want 0", s.AngularVelocity.Y)
	}
	if want := 1 + TempOffsetCelsius + 0.5; math.Abs(s.Temperature-want) > 1e-12 {
		t.Errorf("temperature = %v, want %v", s.Temperature, want)
	}
}

func TestVec3Ops(t *testing.T) {
	v := Vec3{1, -2, 3}.Add(Vec3{1, 1, 1}).Neg().Div(2)
	if v != (Vec3{-1, 0.5, -2}) {
		t.Errorf("got %v", v)
	}
}

func TestOffsetsAdd(t *testing.T) {
	a := Offsets{Accel: Vec3{Z: 1}, Gyro: Vec3{X: -1}, Temperature: 1}
	b := Offsets{Accel: Vec3{Z: -0.5}, Gyro: Vec3{X: 2}}
	got := a.Add(b)
	if got.Accel.Z != 0.5 || got.Gyro.X != 1 || got.Temperature != 1 {
		t.Errorf("got %+v", got)
	}
}

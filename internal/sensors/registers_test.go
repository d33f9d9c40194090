// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bytes"
	"errors"
	"testing"

	"github.com/relabs-tech/njord/internal/imu"
)

func TestDefaultDataRegisters(t *testing.T) {
	d := DefaultDataRegisters()
	if d.Start() != 0x3B || d.Len() != 14 {
		t.Errorf("burst = 0x%02X+%d, want 0x3B+14", d.Start(), d.Len())
	}
	if d.Accel() != (Span{0, 6}) || d.Temp() != (Span{6, 8}) || d.Gyro() != (Span{8, 14}) {
		t.Errorf("offsets = %v %v %v", d.Accel(), d.Temp(), d.Gyro())
	}
}

func TestNewDataRegistersRejects(t *testing.T) {
	tests := []struct {
		name              string
		accel, temp, gyro Span
	}{
		{"gap before temp", Span{0x3B, 0x41}, Span{0x42, 0x44}, Span{0x44, 0x4A}},
		{"gap before gyro", Span{0x3B, 0x41}, Span{0x41, 0x43}, Span{0x44, 0x4A}},
		{"overlap", Span{0x3B, 0x41}, Span{0x40, 0x42}, Span{0x42, 0x48}},
		{"short accel", Span{0x3B, 0x40}, Span{0x40, 0x42}, Span{0x42, 0x48}},
		{"wide temp", Span{0x3B, 0x41}, Span{0x41, 0x44}, Span{0x44, 0x4A}},
		{"short gyro", Span{0x3B, 0x41}, Span{0x41, 0x43}, Span{0x43, 0x47}},
		{"past the register file", Span{0xF8, 0xFE}, Span{0xFE, 0x100}, Span{0x100, 0x106}},
	}
	for _, tt := range tests {
		if _, err := NewDataRegisters(tt.accel, tt.temp, tt.gyro); !errors.Is(err, ErrRegisterLayout) {
			t.Errorf("%s: err = %v, want ErrRegisterLayout", tt.name, err)
		}
	}
}

func TestDataRegistersAnyBase(t *testing.T) {
	for _, base := range []int{0x00, 0x10, 0x3B, 0xF2} {
		d, err := NewDataRegisters(
			Span{base, base + 6},
			Span{base + 6, base + 8},
			Span{base + 8, base + 14},
		)
		if err != nil {
			t.Errorf("base 0x%02X: %v", base, err)
			continue
		}
		if int(d.Start()) != base || d.Len() != 14 {
			t.Errorf("base 0x%02X: burst = 0x%02X+%d", base, d.Start(), d.Len())
		}

		buf := make([]byte, d.Len())
		for i := range buf {
			buf[i] = byte(0x11 * (i + 1))
		}
		slices := []struct {
			name string
			span Span
			want []byte
		}{
			{"accel", d.Accel(), buf[0:6]},
			{"temp", d.Temp(), buf[6:8]},
			{"gyro", d.Gyro(), buf[8:14]},
		}
		for _, sl := range slices {
			if got := buf[sl.span.Start:sl.span.End]; !bytes.Equal(got, sl.want) {
				t.Errorf("base 0x%02X: %s bytes = % X, want % X", base, sl.name, got, sl.want)
			}
		}

		raw, err := d.Decode(buf)
		if err != nil {
			t.Errorf("base 0x%02X: %v", base, err)
			continue
		}
		want := imu.Raw{
			Ax: imu.Word(buf[0], buf[1]), Ay: imu.Word(buf[2], buf[3]), Az: imu.Word(buf[4], buf[5]),
			Temp: imu.Word(buf[6], buf[7]),
			Gx:   imu.Word(buf[8], buf[9]), Gy: imu.Word(buf[10], buf[11]), Gz: imu.Word(buf[12], buf[13]),
		}
		if raw != want {
			t.Errorf("base 0x%02X: Decode = %+v, want %+v", base, raw, want)
		}
		if raw.Ax != 0x1122 || raw.Temp != 0x7788 || raw.Gz != -8722 {
			t.Errorf("base 0x%02X: Ax %d, Temp %d, Gz %d", base, raw.Ax, raw.Temp, raw.Gz)
		}
	}
}

func TestDecode(t *testing.T) {
	d := DefaultDataRegisters()
	buf := []byte{
		0x40, 0x00, // 16384
		0xC0, 0x00, // -16384
		0xFF, 0xFF, // -1
		0x80, 0x00, // -32768
		0x7F, 0xFF, // 32767
		0x00, 0x83, // 131
		0x01, 0x00, // 256
	}
	raw, err := d.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Ax != 16384 || raw.Ay != -16384 || raw.Az != -1 {
		t.Errorf("accel = %d %d %d", raw.Ax, raw.Ay, raw.Az)
	}
	if raw.Temp != -32768 {
		t.Errorf("temp = %d", raw.Temp)
	}
	if raw.Gx != 32767 || raw.Gy != 131 || raw.Gz != 256 {
		t.Errorf("gyro = %d %d %d", raw.Gx, raw.Gy, raw.Gz)
	}

	if _, err := d.Decode(buf[:13]); !errors.Is(err, ErrShortRead) {
		t.Errorf("short buffer: err = %v, want ErrShortRead", err)
	}
	if _, err := (DataRegisters{}).Decode(buf); !errors.Is(err, ErrShortRead) {
		t.Errorf("zero layout: err = %v, want ErrShortRead", err)
	}
}

func TestRegisterName(t *testing.T) {
	tests := map[byte]string{
		RegPwrMgmt1:  "PWR_MGMT_1",
		RegConfig:    "CONFIG",
		0x48:         "GYRO_ZOUT_L",
		RegWhoAmI:    "WHO_AM_I",
		0x00:         "REG_00",
		RegIntStatus: "INT_STATUS",
	}
	for addr, want := range tests {
		if got := RegisterName(addr); got != want {
			t.Errorf("RegisterName(0x%02X) = %q, want %q", addr, got, want)
		}
	}
}

func TestRegisterTable(t *testing.T) {
	o := DefaultOpts
	o.Power.Clock = ClockGyroX
	d, _, _, _ := newTestDev(&o)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	var shadowed int
	for _, r := range d.RegisterTable() {
		if r.Shadow {
			shadowed++
		}
		switch r.Address {
		case RegPwrMgmt1:
			if !r.Shadow || r.Value != 0x01 {
				t.Errorf("PWR_MGMT_1 = %v", r)
			}
		case RegWhoAmI, RegIntStatus:
			if r.Shadow {
				t.Errorf("%s has a shadow value", r.Name)
			}
		}
	}
	if shadowed != 8 {
		t.Errorf("%d shadowed registers, want 8", shadowed)
	}
	if len(RegisterMap()) != len(d.RegisterTable()) {
		t.Error("RegisterMap and RegisterTable differ in length")
	}
}

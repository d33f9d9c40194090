// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// PowerMode selects the PWR_MGMT_1 operating mode.
type PowerMode uint8

const (
	ModeActive PowerMode = iota
	ModeCycle            // wake up at WakeFrequency, sample, go back to sleep
	ModeReset
	ModeSleep
)

func (m PowerMode) String() string {
	switch m {
	case ModeActive:
		return "active"
	case ModeCycle:
		return "cycle"
	case ModeReset:
		return "reset"
	case ModeSleep:
		return "sleep"
	}
	return fmt.Sprintf("PowerMode(%d)", uint8(m))
}

// WakeFrequency is LP_WAKE_CTRL, only meaningful in ModeCycle.
type WakeFrequency uint8

const (
	Wake1250mHz WakeFrequency = iota // 1.25 Hz
	Wake5Hz
	Wake20Hz
	Wake40Hz
)

// ClockSource is CLKSEL in PWR_MGMT_1.
type ClockSource uint8

const (
	ClockInternal8MHz  ClockSource = 0
	ClockGyroX         ClockSource = 1
	ClockGyroY         ClockSource = 2
	ClockGyroZ         ClockSource = 3
	ClockExternal32kHz ClockSource = 4 // 32.768 kHz
	ClockExternal19MHz ClockSource = 5 // 19.2 MHz
	ClockStop          ClockSource = 7
)

// Valid reports whether c is a defined CLKSEL value.
func (c ClockSource) Valid() bool {
	return c <= ClockExternal19MHz || c == ClockStop
}

// PWR_MGMT_1 / PWR_MGMT_2 bits.
const (
	bitDeviceReset = 1 << 7
	bitSleep       = 1 << 6
	bitCycle       = 1 << 5
	bitTempDis     = 1 << 3
	clockMask      = 0x07

	bitStbyXA = 1 << 5
	bitStbyYA = 1 << 4
	bitStbyZA = 1 << 3
	bitStbyXG = 1 << 2
	bitStbyYG = 1 << 1
	bitStbyZG = 1 << 0
	wakeShift = 6
)

// PowerSettings covers both power management registers.
type PowerSettings struct {
	Mode  PowerMode
	Wake  WakeFrequency
	Clock ClockSource

	AccelX, AccelY, AccelZ bool // axis active
	GyroX, GyroY, GyroZ    bool
	Thermometer            bool
}

// DefaultPowerSettings runs every sensor on the internal oscillator.
var DefaultPowerSettings = PowerSettings{
	Mode:        ModeActive,
	Clock:       ClockInternal8MHz,
	AccelX:      true,
	AccelY:      true,
	AccelZ:      true,
	GyroX:       true,
	GyroY:       true,
	GyroZ:       true,
	Thermometer: true,
}

// Registers encodes PWR_MGMT_1 and PWR_MGMT_2.
func (p PowerSettings) Registers() (pwr1, pwr2 byte) {
	switch p.Mode {
	case ModeCycle:
		pwr1 |= bitCycle
		pwr2 |= byte(p.Wake&0x03) << wakeShift
	case ModeReset:
		pwr1 |= bitDeviceReset
	case ModeSleep:
		pwr1 |= bitSleep
	}
	if !p.Thermometer {
		pwr1 |= bitTempDis
	}
	pwr1 |= byte(p.Clock) & clockMask

	pwr2 |= standby(p.AccelX, bitStbyXA)
	pwr2 |= standby(p.AccelY, bitStbyYA)
	pwr2 |= standby(p.AccelZ, bitStbyZA)
	pwr2 |= standby(p.GyroX, bitStbyXG)
	pwr2 |= standby(p.GyroY, bitStbyYG)
	pwr2 |= standby(p.GyroZ, bitStbyZG)
	return pwr1, pwr2
}

func standby(active bool, bit byte) byte {
	if active {
		return 0
	}
	return bit
}

// DecodePowerSettings is the inverse of PowerSettings.Registers.
func DecodePowerSettings(pwr1, pwr2 byte) PowerSettings {
	p := PowerSettings{
		Clock:       ClockSource(pwr1 & clockMask),
		Thermometer: pwr1&bitTempDis == 0,
		AccelX:      pwr2&bitStbyXA == 0,
		AccelY:      pwr2&bitStbyYA == 0,
		AccelZ:      pwr2&bitStbyZA == 0,
		GyroX:       pwr2&bitStbyXG == 0,
		GyroY:       pwr2&bitStbyYG == 0,
		GyroZ:       pwr2&bitStbyZG == 0,
	}
	switch {
	case pwr1&bitDeviceReset != 0:
		p.Mode = ModeReset
	case pwr1&bitSleep != 0:
		p.Mode = ModeSleep
	case pwr1&bitCycle != 0:
		p.Mode = ModeCycle
		p.Wake = WakeFrequency(pwr2 >> wakeShift)
	}
	return p
}

// Filter is DLPF_CFG in CONFIG. It also fixes the gyroscope output rate.
type Filter uint8

const (
	FilterBW260Hz  Filter = iota // accel 260 Hz, gyro 256 Hz, 8 kHz output
	FilterBW184Hz                // accel 184 Hz, gyro 188 Hz
	FilterBW94Hz                 // accel 94 Hz, gyro 98 Hz
	FilterBW44Hz                 // accel 44 Hz, gyro 42 Hz
	FilterBW21Hz                 // accel 21 Hz, gyro 20 Hz
	FilterBW10Hz                 // accel 10 Hz, gyro 10 Hz
	FilterBW5Hz                  // accel 5 Hz, gyro 5 Hz
	FilterDisabled               // reserved setting, 8 kHz output
)

// FrameSync is EXT_SYNC_SET: which output's LSB latches the FSYNC pin.
type FrameSync uint8

const (
	FrameSyncDisabled FrameSync = iota
	FrameSyncTemp
	FrameSyncGyroX
	FrameSyncGyroY
	FrameSyncGyroZ
	FrameSyncAccelX
	FrameSyncAccelY
	FrameSyncAccelZ
)

// FilterConfig covers CONFIG and SMPLRT_DIV.
type FilterConfig struct {
	Filter            Filter
	FrameSync         FrameSync
	SampleRateDivider uint8
}

// Register encodes CONFIG.
func (f FilterConfig) Register() byte {
	return byte(f.Filter)&0x07 | (byte(f.FrameSync)&0x07)<<3
}

// DecodeFilterConfig is the inverse of FilterConfig.Register plus the divider.
func DecodeFilterConfig(config, smplrtDiv byte) FilterConfig {
	return FilterConfig{
		Filter:            Filter(config & 0x07),
		FrameSync:         FrameSync((config >> 3) & 0x07),
		SampleRateDivider: smplrtDiv,
	}
}

// GyroOutputRate is the internal rate in Hz before the divider.
func (f FilterConfig) GyroOutputRate() float64 {
	if f.Filter == FilterBW260Hz || f.Filter == FilterDisabled {
		return 8000
	}
	return 1000
}

// SampleRate is the rate in Hz at which data registers are refreshed.
func (f FilterConfig) SampleRate() float64 {
	return f.GyroOutputRate() / (1 + float64(f.SampleRateDivider))
}

// InterruptConfig covers INT_PIN_CFG and INT_ENABLE.
type InterruptConfig struct {
	ActiveLow      bool // INT pin active low instead of high
	OpenDrain      bool // open drain instead of push-pull
	Latch          bool // held until cleared instead of a 50 µs pulse
	ClearOnAnyRead bool // cleared by any read instead of only INT_STATUS
	FsyncActiveLow bool
	FsyncInterrupt bool
	I2CBypass      bool

	FIFOOverflow bool // interrupt causes
	I2CMaster    bool
	DataReady    bool
}

// Registers encodes INT_PIN_CFG and INT_ENABLE.
func (c InterruptConfig) Registers() (pinCfg, enable byte) {
	pinCfg |= bit(c.ActiveLow, 7)
	pinCfg |= bit(c.OpenDrain, 6)
	pinCfg |= bit(c.Latch, 5)
	pinCfg |= bit(c.ClearOnAnyRead, 4)
	pinCfg |= bit(c.FsyncActiveLow, 3)
	pinCfg |= bit(c.FsyncInterrupt, 2)
	pinCfg |= bit(c.I2CBypass, 1)

	enable |= bit(c.FIFOOverflow, 4)
	enable |= bit(c.I2CMaster, 3)
	enable |= bit(c.DataReady, 0)
	return pinCfg, enable
}

// Edge is the host side trigger matching the INT pin polarity.
func (c InterruptConfig) Edge() gpio.Edge {
	if c.ActiveLow {
		return gpio.FallingEdge
	}
	return gpio.RisingEdge
}

// DecodeInterruptConfig is the inverse of InterruptConfig.Registers.
func DecodeInterruptConfig(pinCfg, enable byte) InterruptConfig {
	return InterruptConfig{
		ActiveLow:      isSet(pinCfg, 7),
		OpenDrain:      isSet(pinCfg, 6),
		Latch:          isSet(pinCfg, 5),
		ClearOnAnyRead: isSet(pinCfg, 4),
		FsyncActiveLow: isSet(pinCfg, 3),
		FsyncInterrupt: isSet(pinCfg, 2),
		I2CBypass:      isSet(pinCfg, 1),
		FIFOOverflow:   isSet(enable, 4),
		I2CMaster:      isSet(enable, 3),
		DataReady:      isSet(enable, 0),
	}
}

// InterruptStatus is INT_STATUS.
type InterruptStatus struct {
	FIFOOverflow bool
	I2CMaster    bool
	DataReady    bool
}

func DecodeInterruptStatus(b byte) InterruptStatus {
	return InterruptStatus{
		FIFOOverflow: isSet(b, 4),
		I2CMaster:    isSet(b, 3),
		DataReady:    isSet(b, 0),
	}
}

func bit(v bool, n uint) byte {
	if v {
		return 1 << n
	}
	return 0
}

func isSet(b byte, n uint) bool { return b&(1<<n) != 0 }

// Sensitivity is one full-scale preset.
type Sensitivity struct {
	FullScale   float64 // ± range in g or °/s
	ScaleFactor float64 // LSB per g or per °/s
	Select      uint8   // FS_SEL / AFS_SEL
}

// Register encodes GYRO_CONFIG or ACCEL_CONFIG (self-test bits cleared).
func (s Sensitivity) Register() byte { return (s.Select & 0x03) << 3 }

var (
	Accel2G  = Sensitivity{FullScale: 2, ScaleFactor: 16384, Select: 0}
	Accel4G  = Sensitivity{FullScale: 4, ScaleFactor: 8192, Select: 1}
	Accel8G  = Sensitivity{FullScale: 8, ScaleFactor: 4096, Select: 2}
	Accel16G = Sensitivity{FullScale: 16, ScaleFactor: 2048, Select: 3}

	Gyro250DPS  = Sensitivity{FullScale: 250, ScaleFactor: 131, Select: 0}
	Gyro500DPS  = Sensitivity{FullScale: 500, ScaleFactor: 65.5, Select: 1}
	Gyro1000DPS = Sensitivity{FullScale: 1000, ScaleFactor: 32.8, Select: 2}
	Gyro2000DPS = Sensitivity{FullScale: 2000, ScaleFactor: 16.4, Select: 3}

	// Indexed by FS_SEL / AFS_SEL.
	AccelSensitivities = [4]Sensitivity{Accel2G, Accel4G, Accel8G, Accel16G}
	GyroSensitivities  = [4]Sensitivity{Gyro250DPS, Gyro500DPS, Gyro1000DPS, Gyro2000DPS}
)

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/njord/internal/config"
)

// Board is an initialized GY-521 on a host I²C bus with its INT pin wired.
type Board struct {
	*InterruptDev
	Bus i2c.BusCloser
}

// Close releases the bus. It does not put the sensor to sleep.
func (b *Board) Close() error {
	return b.Bus.Close()
}

// OptsFromConfig maps configuration values to driver options. The INT pin is
// configured push-pull, active high, pulsed, raising only on data ready.
func OptsFromConfig(cfg *config.Config) (Opts, error) {
	o := DefaultOpts
	o.Addr = cfg.I2CAddr
	if cfg.IMUAccelRange > 3 || cfg.IMUGyroRange > 3 {
		return Opts{}, fmt.Errorf("range selectors out of bounds: accel %d, gyro %d", cfg.IMUAccelRange, cfg.IMUGyroRange)
	}
	o.Accel = AccelSensitivities[cfg.IMUAccelRange]
	o.Gyro = GyroSensitivities[cfg.IMUGyroRange]
	o.Filter = FilterConfig{
		Filter:            Filter(cfg.IMUDLPFConfig & 0x07),
		FrameSync:         FrameSync(cfg.IMUExtSync & 0x07),
		SampleRateDivider: cfg.IMUSampleRateDiv,
	}
	o.Power.Clock = ClockSource(cfg.IMUClockSource)
	if !o.Power.Clock.Valid() {
		return Opts{}, fmt.Errorf("invalid clock source %d", cfg.IMUClockSource)
	}
	o.Interrupt = InterruptConfig{DataReady: true}
	return o, nil
}

// CalibrationOptionsFromConfig starts from DefaultCalibrationOptions and
// applies every calibration value that is set. Status is left to the caller.
func CalibrationOptionsFromConfig(cfg *config.Config) CalibrationOptions {
	o := DefaultCalibrationOptions
	if cfg.CalibrationCapacity > 0 {
		o.Capacity = cfg.CalibrationCapacity
	}
	if d := cfg.CalibrationPeriodDuration(); d > 0 {
		o.Period = d
	}
	if d := cfg.CalibrationDurationDuration(); d > 0 {
		o.Duration = d
	}
	if d := cfg.CalibrationStatusDuration(); d > 0 {
		o.StatusPeriod = d
	}
	if cfg.CalibrationMinSamples > 0 {
		o.MinSamples = cfg.CalibrationMinSamples
	}
	return o
}

// Open brings up the periph host, opens the configured bus and interrupt pin
// and initializes the sensor.
func Open(cfg *config.Config) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	opts, err := OptsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("IMU: %w", err)
	}

	pin := gpioreg.ByName(cfg.InterruptPin)
	if pin == nil {
		return nil, fmt.Errorf("IMU: interrupt pin %q not found", cfg.InterruptPin)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("IMU: open I2C bus %q: %w", cfg.I2CBus, err)
	}

	// The breakout already pulls INT; a second pull on the host side makes the
	// line marginal.
	dev, err := NewInterrupt(NewI2CBus(bus), NewGPIOInterrupt(pin, gpio.Float), &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}
	if err := dev.Init(); err != nil {
		bus.Close()
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if id, err := dev.WhoAmI(); err != nil {
		log.Warnf("IMU: %v", err)
	} else if id != WhoAmIValue {
		log.Warnf("IMU: WHO_AM_I = 0x%02X, expected 0x%02X", id, WhoAmIValue)
	}

	log.Printf("IMU: accelerometer range ±%gg, gyroscope range ±%g°/s", opts.Accel.FullScale, opts.Gyro.FullScale)
	log.Printf("IMU: DLPF config %d, divider %d (output rate: %g Hz)", opts.Filter.Filter, opts.Filter.SampleRateDivider, opts.Filter.SampleRate())
	log.Printf("IMU: interrupt on %s, timeout %v", pin, dev.InterruptTimeout())
	return &Board{InterruptDev: dev, Bus: bus}, nil
}

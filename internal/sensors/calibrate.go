// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/njord/internal/imu"
	"github.com/relabs-tech/njord/internal/ringlog"
)

// CalibrationOptions controls Calibrate.
type CalibrationOptions struct {
	Capacity     int // kept samples and errors retained, each
	Period       time.Duration
	Duration     time.Duration
	Timeout      time.Duration // zero uses InterruptTimeout
	StatusPeriod time.Duration
	Status       func(Progress)
	// MinSamples is the fewest retained samples accepted. Values below 1
	// are treated as 1.
	MinSamples int
}

// DefaultCalibrationOptions averages up to 10k samples at 10 Hz over five
// minutes, reporting every 30 seconds.
var DefaultCalibrationOptions = CalibrationOptions{
	Capacity:     10_000,
	Period:       100 * time.Millisecond,
	Duration:     5 * time.Minute,
	StatusPeriod: 30 * time.Second,
	MinSamples:   1,
}

// CalibrationReport summarises one calibration pass.
type CalibrationReport struct {
	Begin     time.Time
	Kept      int // samples kept by the loop, including evicted ones
	Used      int // samples averaged
	Errors    int
	Mean      imu.Sample
	Delta     imu.Offsets // added to the previous offsets
	Offsets   imu.Offsets // in effect after the pass
	Samples   []Reading
	Failures  []Failure
	Cancelled bool
}

// Mean averages samples element-wise.
func Mean(samples []imu.Sample) (imu.Sample, error) {
	if len(samples) == 0 {
		return imu.Sample{}, ErrInsufficientSamples
	}
	var sum imu.Sample
	for _, s := range samples {
		sum.Acceleration = sum.Acceleration.Add(s.Acceleration)
		sum.AngularVelocity = sum.AngularVelocity.Add(s.AngularVelocity)
		sum.Temperature += s.Temperature
	}
	n := float64(len(samples))
	return imu.Sample{
		Acceleration:    sum.Acceleration.Div(n),
		AngularVelocity: sum.AngularVelocity.Div(n),
		Temperature:     sum.Temperature / n,
	}, nil
}

// Correction returns the offsets that bring the mean of samples taken at
// rest, Z axis up, to 0 g on X and Y, +1 g on Z and 0 °/s on every gyro
// axis. The thermometer has no reference at rest and is left alone.
func Correction(samples []imu.Sample) (imu.Offsets, error) {
	m, err := Mean(samples)
	if err != nil {
		return imu.Offsets{}, err
	}
	c := imu.Offsets{
		Accel: m.Acceleration.Neg(),
		Gyro:  m.AngularVelocity.Neg(),
	}
	c.Accel.Z++
	return c, nil
}

// Calibrate samples the board at rest and adds the resulting correction to
// the current offsets. If ctx is done early the samples gathered so far are
// used. Transport errors during sampling are counted, not returned. On
// ErrInsufficientSamples the offsets are left unchanged and the report still
// describes what was collected.
func (d *InterruptDev) Calibrate(ctx context.Context, o CalibrationOptions) (CalibrationReport, error) {
	samples := ringlog.New[Reading](o.Capacity)
	failures := ringlog.New[Failure](o.Capacity)

	rep := CalibrationReport{Begin: d.now()}
	err := Record(ctx, d, samples, failures, LoopOptions{
		Period:       o.Period,
		Timeout:      o.Timeout,
		Duration:     o.Duration,
		StatusPeriod: o.StatusPeriod,
		Status:       o.Status,
	})
	rep.Kept = samples.Count()
	rep.Used = samples.Len()
	rep.Errors = failures.Count()
	rep.Samples = samples.Items()
	rep.Failures = failures.Items()
	rep.Cancelled = ctx.Err() != nil
	rep.Offsets = d.offsets
	if err != nil {
		return rep, fmt.Errorf("calibration: %w", err)
	}

	need := max(o.MinSamples, 1)
	if rep.Used < need {
		return rep, fmt.Errorf("%w: have %d, need %d", ErrInsufficientSamples, rep.Used, need)
	}

	// Readings already include the current offsets, so the correction is a
	// delta on top of them.
	raw := make([]imu.Sample, len(rep.Samples))
	for i, r := range rep.Samples {
		raw[i] = r.Sample
	}
	rep.Mean, _ = Mean(raw)
	rep.Delta, _ = Correction(raw)
	d.offsets = d.offsets.Add(rep.Delta)
	rep.Offsets = d.offsets

	log.Debugf("calibration: %d samples, %d errors, delta accel %v gyro %v", rep.Used, rep.Errors, rep.Delta.Accel, rep.Delta.Gyro)
	return rep, nil
}

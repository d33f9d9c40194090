// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package export writes session artifacts as YAML.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/njord/internal/imu"
	"github.com/relabs-tech/njord/internal/sensors"
)

// SampleRecord is one kept sample with its wall clock time.
type SampleRecord struct {
	Time       time.Time     `yaml:"time"`
	Elapsed    time.Duration `yaml:"elapsed"`
	imu.Sample `yaml:",inline"`
}

// ErrorRecord is one transport failure.
type ErrorRecord struct {
	Time    time.Time     `yaml:"time"`
	Elapsed time.Duration `yaml:"elapsed"`
	Error   string        `yaml:"error"`
}

// CalibrationRecord is the persisted form of a calibration pass.
type CalibrationRecord struct {
	Begin     time.Time   `yaml:"begin"`
	Kept      int         `yaml:"kept"`
	Used      int         `yaml:"used"`
	Errors    int         `yaml:"errors"`
	Cancelled bool        `yaml:"cancelled"`
	Mean      imu.Sample  `yaml:"mean"`
	Delta     imu.Offsets `yaml:"delta"`
	Offsets   imu.Offsets `yaml:"offsets"`
}

// Samples converts readings to records. Time is loop start plus elapsed
// time, never the wall clock read at capture.
func Samples(readings []sensors.Reading) []SampleRecord {
	out := make([]SampleRecord, len(readings))
	for i, r := range readings {
		out[i] = SampleRecord{Time: r.Time(), Elapsed: r.Elapsed, Sample: r.Sample}
	}
	return out
}

// Errors converts failures to records.
func Errors(failures []sensors.Failure) []ErrorRecord {
	out := make([]ErrorRecord, len(failures))
	for i, f := range failures {
		out[i] = ErrorRecord{Time: f.Time(), Elapsed: f.Elapsed, Error: f.Err.Error()}
	}
	return out
}

// Calibration converts a calibration report to its record.
func Calibration(rep sensors.CalibrationReport) CalibrationRecord {
	return CalibrationRecord{
		Begin:     rep.Begin.Round(0),
		Kept:      rep.Kept,
		Used:      rep.Used,
		Errors:    rep.Errors,
		Cancelled: rep.Cancelled,
		Mean:      rep.Mean,
		Delta:     rep.Delta,
		Offsets:   rep.Offsets,
	}
}

func encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func WriteSamples(w io.Writer, readings []sensors.Reading) error {
	return encode(w, Samples(readings))
}

func WriteErrors(w io.Writer, failures []sensors.Failure) error {
	return encode(w, Errors(failures))
}

func WriteCalibration(w io.Writer, rep sensors.CalibrationReport) error {
	return encode(w, Calibration(rep))
}

// create opens path for writing, creating parent directories.
func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

func save(path string, write func(io.Writer) error) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// SaveSamples writes readings to path.
func SaveSamples(path string, readings []sensors.Reading) error {
	return save(path, func(w io.Writer) error { return WriteSamples(w, readings) })
}

// SaveErrors writes failures to path.
func SaveErrors(path string, failures []sensors.Failure) error {
	return save(path, func(w io.Writer) error { return WriteErrors(w, failures) })
}

// SaveCalibration writes the calibration record to path.
func SaveCalibration(path string, rep sensors.CalibrationReport) error {
	return save(path, func(w io.Writer) error { return WriteCalibration(w, rep) })
}

// LoadOffsets reads the offsets of a file written by SaveCalibration.
func LoadOffsets(path string) (imu.Offsets, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return imu.Offsets{}, err
	}
	var rec CalibrationRecord
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return imu.Offsets{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return rec.Offsets, nil
}

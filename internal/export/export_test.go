// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/njord/internal/imu"
	"github.com/relabs-tech/njord/internal/sensors"
)

var begin = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestWriteSamples(t *testing.T) {
	readings := []sensors.Reading{
		{Sample: imu.Sample{Acceleration: imu.Vec3{Z: 1}, Temperature: 24.5, At: begin}, Begin: begin, Elapsed: 0},
		{Sample: imu.Sample{AngularVelocity: imu.Vec3{X: -0.25}, At: begin.Add(100 * time.Millisecond)}, Begin: begin, Elapsed: 100 * time.Millisecond},
	}
	var buf bytes.Buffer
	if err := WriteSamples(&buf, readings); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"time: 2024-05-01T12:00:00.1Z", "elapsed: 100ms", "angular_velocity:", "temperature: 24.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "at:") {
		t.Errorf("capture instant leaked into output:\n%s", out)
	}

	var back []SampleRecord
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0].Acceleration.Z != 1 || back[1].AngularVelocity.X != -0.25 {
		t.Errorf("decoded = %+v", back)
	}
	if !back[1].Time.Equal(begin.Add(100 * time.Millisecond)) {
		t.Errorf("time = %v", back[1].Time)
	}
}

func TestWriteErrors(t *testing.T) {
	failures := []sensors.Failure{
		{Err: &sensors.BusError{Op: "burst read", Err: errors.New("remote I/O error")}, At: begin.Add(2 * time.Second), Begin: begin, Elapsed: 2 * time.Second},
	}
	var buf bytes.Buffer
	if err := WriteErrors(&buf, failures); err != nil {
		t.Fatal(err)
	}
	var back []ErrorRecord
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0].Error != "burst read: remote I/O error" {
		t.Fatalf("decoded = %+v", back)
	}
	if !back[0].Time.Equal(begin.Add(2 * time.Second)) {
		t.Errorf("time = %v", back[0].Time)
	}
}

// The wall clock read at capture can step (NTP on a board without an RTC);
// records must stay at loop start plus elapsed time.
func TestExportTimesIgnoreWallClockSteps(t *testing.T) {
	stepped := begin.Add(-time.Hour)
	readings := []sensors.Reading{
		{Sample: imu.Sample{At: begin.Add(time.Second)}, Begin: begin, Elapsed: time.Second},
		{Sample: imu.Sample{At: stepped}, Begin: begin, Elapsed: 2 * time.Second},
	}
	for i, r := range Samples(readings) {
		if want := begin.Add(readings[i].Elapsed); !r.Time.Equal(want) {
			t.Errorf("sample %d: time %v, want %v", i, r.Time, want)
		}
	}
	if !Samples(readings)[1].Time.After(Samples(readings)[0].Time) {
		t.Error("sample times went backwards")
	}

	failures := []sensors.Failure{
		{Err: errors.New("nack"), At: stepped, Begin: begin, Elapsed: 1500 * time.Millisecond},
	}
	if got, want := Errors(failures)[0].Time, begin.Add(1500*time.Millisecond); !got.Equal(want) {
		t.Errorf("error time %v, want %v", got, want)
	}
}

func TestSaveCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Data", "Calibrated data.yaml")
	if err := SaveSamples(path, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestCalibrationOffsetsRoundTrip(t *testing.T) {
	rep := sensors.CalibrationReport{
		Begin:   begin,
		Kept:    3000,
		Used:    3000,
		Errors:  2,
		Delta:   imu.Offsets{Accel: imu.Vec3{X: 0.01, Z: -0.05}},
		Offsets: imu.Offsets{Accel: imu.Vec3{X: 0.01, Z: -0.05}, Gyro: imu.Vec3{Y: 1.5}},
	}
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	if err := SaveCalibration(path, rep); err != nil {
		t.Fatal(err)
	}
	got, err := LoadOffsets(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != rep.Offsets {
		t.Errorf("LoadOffsets = %+v, want %+v", got, rep.Offsets)
	}
	if _, err := LoadOffsets(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadOffsets of a missing file succeeded")
	}
}

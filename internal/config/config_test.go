// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "njord_config.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.I2CAddr != 0x68 {
		t.Errorf("I2CAddr = 0x%X, want 0x68", cfg.I2CAddr)
	}
	if cfg.CalibrationCapacity != 10000 || cfg.SampleCapacity != 5000 {
		t.Errorf("capacities = %d/%d, want 10000/5000", cfg.CalibrationCapacity, cfg.SampleCapacity)
	}
	if got := cfg.CalibrationDurationDuration(); got != 5*time.Minute {
		t.Errorf("calibration duration = %v, want 5m", got)
	}
	if got := cfg.BlinkIntervalDuration(); got != 800*time.Millisecond {
		t.Errorf("blink interval = %v, want 800ms", got)
	}
	if cfg.DataFile != "Data/Calibrated data.yaml" {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if cfg.CalibrationMinSamples != 1 {
		t.Errorf("CalibrationMinSamples = %d, want 1", cfg.CalibrationMinSamples)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `# bench setup
I2C_BUS=1
I2C_ADDR=0x69
INTERRUPT_PIN=GPIO4
IMU_ACCEL_RANGE=2
IMU_GYRO_RANGE=3
IMU_DLPF_CFG=3
IMU_SMPLRT_DIV=9
IMU_CLOCK_SOURCE=1
SAMPLE_INTERVAL=20
DISPLAY_ENABLED=true
MQTT_BROKER=tcp://localhost:1883
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.I2CBus != "1" || cfg.I2CAddr != 0x69 || cfg.InterruptPin != "GPIO4" {
		t.Errorf("hardware = %q 0x%X %q", cfg.I2CBus, cfg.I2CAddr, cfg.InterruptPin)
	}
	if cfg.IMUAccelRange != 2 || cfg.IMUGyroRange != 3 || cfg.IMUDLPFConfig != 3 || cfg.IMUSampleRateDiv != 9 || cfg.IMUClockSource != 1 {
		t.Errorf("imu = %+v", cfg)
	}
	if cfg.SampleIntervalDuration() != 20*time.Millisecond {
		t.Errorf("SampleInterval = %v", cfg.SampleIntervalDuration())
	}
	if !cfg.DisplayEnabled {
		t.Error("DisplayEnabled = false")
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" || cfg.TopicSamples != "njord/imu" {
		t.Errorf("mqtt = %q %q", cfg.MQTTBroker, cfg.TopicSamples)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NJORD_SAMPLE_CAPACITY", "42")
	path := writeConfig(t, "SAMPLE_CAPACITY=100\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleCapacity != 42 {
		t.Errorf("SampleCapacity = %d, want 42", cfg.SampleCapacity)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "IMU_LEFT_SPI_DEVICE=/dev/spidev0.0\n", "unknown config key"},
		{"accel range", "IMU_ACCEL_RANGE=4\n", "IMU_ACCEL_RANGE must be 0-3"},
		{"gyro range", "IMU_GYRO_RANGE=x\n", "invalid IMU_GYRO_RANGE"},
		{"divider", "IMU_SMPLRT_DIV=256\n", "IMU_SMPLRT_DIV must be 0-255"},
		{"reserved clock", "IMU_CLOCK_SOURCE=6\n", "reserved"},
		{"address", "I2C_ADDR=0x80\n", "7-bit"},
		{"capacity", "SAMPLE_CAPACITY=0\n", "must be positive"},
		{"no pin", "INTERRUPT_PIN=\n", "INTERRUPT_PIN is required"},
		{"log level", "LOG_LEVEL=loud\n", "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

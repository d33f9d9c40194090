// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is where the commands look for the configuration file.
const DefaultPath = "njord_config.txt"

// EnvPrefix prefixes environment overrides, e.g. NJORD_I2C_BUS.
const EnvPrefix = "NJORD"

// Config holds all application configuration values.
type Config struct {
	// Hardware
	I2CBus       string // periph bus name, "" for the first bus
	I2CAddr      uint16
	InterruptPin string
	LEDPin       string // "" disables the LED

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// IMU Sample Rate Configuration
	IMUDLPFConfig    byte // Digital Low Pass Filter configuration (0-7)
	IMUExtSync       byte // FSYNC latch target (0-7)
	IMUSampleRateDiv byte // Sample rate divider (output rate = internal rate / (1 + div))
	IMUClockSource   byte // CLKSEL (0-5, 7)

	SettleDelay int // milliseconds between initialization and calibration

	// Calibration
	CalibrationDuration       int // seconds
	CalibrationCapacity       int
	CalibrationPeriod         int // milliseconds
	CalibrationStatusInterval int // seconds
	CalibrationMinSamples     int

	// Session
	SampleInterval int // milliseconds
	SampleCapacity int
	BlinkInterval  int // milliseconds

	// Output
	DataFile        string
	ErrorFile       string
	CalibrationFile string

	// MQTT, disabled when MQTTBroker is empty
	MQTTBroker   string
	MQTTClientID string
	TopicSamples string
	TopicStatus  string

	// Web Server, disabled when 0
	WebServerPort int

	// Display
	DisplayEnabled bool

	LogLevel string
}

// defaults are applied before the file is read. Every accepted key has one.
var defaults = map[string]any{
	"I2C_BUS":                     "",
	"I2C_ADDR":                    "0x68",
	"INTERRUPT_PIN":               "GPIO17",
	"LED_PIN":                     "GPIO27",
	"IMU_ACCEL_RANGE":             0,
	"IMU_GYRO_RANGE":              0,
	"IMU_DLPF_CFG":                0,
	"IMU_EXT_SYNC":                0,
	"IMU_SMPLRT_DIV":              0,
	"IMU_CLOCK_SOURCE":            0,
	"SETTLE_DELAY":                1000,
	"CALIBRATION_DURATION":        300,
	"CALIBRATION_CAPACITY":        10000,
	"CALIBRATION_PERIOD":          100,
	"CALIBRATION_STATUS_INTERVAL": 30,
	"CALIBRATION_MIN_SAMPLES":     1,
	"SAMPLE_INTERVAL":             100,
	"SAMPLE_CAPACITY":             5000,
	"BLINK_INTERVAL":              800,
	"DATA_FILE":                   "Data/Calibrated data.yaml",
	"ERROR_FILE":                  "Data/Calibrated errors.yaml",
	"CALIBRATION_FILE":            "Data/Calibration.yaml",
	"MQTT_BROKER":                 "",
	"MQTT_CLIENT_ID":              "njord",
	"TOPIC_SAMPLES":               "njord/imu",
	"TOPIC_STATUS":                "njord/status",
	"WEB_SERVER_PORT":             0,
	"DISPLAY_ENABLED":             false,
	"LOG_LEVEL":                   "info",
}

// Package-level singleton. InitGlobal sets it once, Get reads it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file. Environment variables named
// NJORD_<KEY> override the file. An empty path loads defaults and
// environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// viper lowercases keys; anything without a default is a typo.
	var unknown []string
	for _, k := range v.AllKeys() {
		if _, ok := defaults[strings.ToUpper(k)]; !ok {
			unknown = append(unknown, strings.ToUpper(k))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown config key(s): %s", strings.Join(unknown, ", "))
	}

	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := &Config{}
	for _, key := range keys {
		if err := cfg.setValue(key, strings.TrimSpace(v.GetString(key))); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intRange(key, value string, lo, hi int, hint string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < lo || val > hi {
		if hint != "" {
			return 0, fmt.Errorf("%s must be %d-%d (%s), got %d", key, lo, hi, hint, val)
		}
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, val)
	}
	return val, nil
}

func positive(key, value string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, val)
	}
	return val, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Hardware
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid I2C_ADDR %q: %w", value, perr)
		}
		if addr > 0x7F {
			return fmt.Errorf("I2C_ADDR must be a 7-bit address, got 0x%X", addr)
		}
		c.I2CAddr = uint16(addr)
	case "INTERRUPT_PIN":
		c.InterruptPin = value
	case "LED_PIN":
		c.LEDPin = value

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		var v int
		v, err = intRange(key, value, 0, 3, "0=±2g, 1=±4g, 2=±8g, 3=±16g")
		c.IMUAccelRange = byte(v)
	case "IMU_GYRO_RANGE":
		var v int
		v, err = intRange(key, value, 0, 3, "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s")
		c.IMUGyroRange = byte(v)

	// IMU Sample Rate Configuration
	case "IMU_DLPF_CFG":
		var v int
		v, err = intRange(key, value, 0, 7, "")
		c.IMUDLPFConfig = byte(v)
	case "IMU_EXT_SYNC":
		var v int
		v, err = intRange(key, value, 0, 7, "")
		c.IMUExtSync = byte(v)
	case "IMU_SMPLRT_DIV":
		var v int
		v, err = intRange(key, value, 0, 255, "")
		c.IMUSampleRateDiv = byte(v)
	case "IMU_CLOCK_SOURCE":
		var v int
		v, err = intRange(key, value, 0, 7, "0=internal, 1-3=gyro PLL, 4=32kHz, 5=19.2MHz, 7=stop")
		if err == nil && v == 6 {
			err = fmt.Errorf("IMU_CLOCK_SOURCE 6 is reserved")
		}
		c.IMUClockSource = byte(v)

	case "SETTLE_DELAY":
		c.SettleDelay, err = intRange(key, value, 0, 60_000, "milliseconds")

	// Calibration
	case "CALIBRATION_DURATION":
		c.CalibrationDuration, err = positive(key, value)
	case "CALIBRATION_CAPACITY":
		c.CalibrationCapacity, err = positive(key, value)
	case "CALIBRATION_PERIOD":
		c.CalibrationPeriod, err = positive(key, value)
	case "CALIBRATION_STATUS_INTERVAL":
		c.CalibrationStatusInterval, err = positive(key, value)
	case "CALIBRATION_MIN_SAMPLES":
		c.CalibrationMinSamples, err = positive(key, value)

	// Session
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = positive(key, value)
	case "SAMPLE_CAPACITY":
		c.SampleCapacity, err = positive(key, value)
	case "BLINK_INTERVAL":
		c.BlinkInterval, err = positive(key, value)

	// Output
	case "DATA_FILE":
		c.DataFile = value
	case "ERROR_FILE":
		c.ErrorFile = value
	case "CALIBRATION_FILE":
		c.CalibrationFile = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_SAMPLES":
		c.TopicSamples = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = intRange(key, value, 0, 65535, "0 disables the monitor")

	// Display
	case "DISPLAY_ENABLED":
		b, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, perr)
		}
		c.DisplayEnabled = b

	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return err
}

// validate checks fields that depend on each other.
func (c *Config) validate() error {
	if c.InterruptPin == "" {
		return fmt.Errorf("INTERRUPT_PIN is required")
	}
	if c.DataFile == "" || c.ErrorFile == "" {
		return fmt.Errorf("DATA_FILE and ERROR_FILE are required")
	}
	if c.MQTTBroker != "" && (c.TopicSamples == "" || c.TopicStatus == "") {
		return fmt.Errorf("TOPIC_SAMPLES and TOPIC_STATUS are required when MQTT_BROKER is set")
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// Durations in the units the rest of the program uses.

func (c *Config) SettleDelayDuration() time.Duration {
	return time.Duration(c.SettleDelay) * time.Millisecond
}

func (c *Config) CalibrationDurationDuration() time.Duration {
	return time.Duration(c.CalibrationDuration) * time.Second
}

func (c *Config) CalibrationPeriodDuration() time.Duration {
	return time.Duration(c.CalibrationPeriod) * time.Millisecond
}

func (c *Config) CalibrationStatusDuration() time.Duration {
	return time.Duration(c.CalibrationStatusInterval) * time.Second
}

func (c *Config) SampleIntervalDuration() time.Duration {
	return time.Duration(c.SampleInterval) * time.Millisecond
}

func (c *Config) BlinkIntervalDuration() time.Duration {
	return time.Duration(c.BlinkInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file. Only the first
// call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

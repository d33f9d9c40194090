// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/njord/main.go
//
// njord drives a GY-521 (MPU-6050) over I²C: it calibrates the sensor at rest,
// then records interrupt paced samples until the log is full or Ctrl-C.
//
// Run:
//
//	go run ./cmd/njord run --config njord_config.txt
//	go run ./cmd/njord calibrate
//	go run ./cmd/njord registers
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/njord/internal/app"
	"github.com/relabs-tech/njord/internal/config"
)

var RootCmd = &cobra.Command{
	Use:   "njord",
	Short: "GY-521 calibration and sample logger",
	Long: `njord initializes a GY-521 (MPU-6050) inertial sensor, estimates its bias
while it rests, and records calibrated samples to YAML.
Configuration is read from a KEY=VALUE file; NJORD_<KEY> environment
variables override file values.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "calibrate, then record until the sample log is full",
	Long: `run calibrates the sensor and records samples.
The first Ctrl-C ends calibration early, the second ends recording.
With --offsets, calibration is skipped and the offsets are loaded from file.
Samples and errors are written to DATA_FILE and ERROR_FILE.`,
	Example: `  njord run
  njord run --offsets "Data/Calibration.yaml"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		offsets, _ := cmd.Flags().GetString("offsets")
		return app.RunSession(context.Background(), notify(), offsets)
	},
}

var CalibrateCmd = &cobra.Command{
	Use:     "calibrate",
	Short:   "estimate sensor bias and write CALIBRATION_FILE",
	Example: `  njord calibrate --config njord_config.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunCalibration(context.Background(), notify())
	},
}

var RegistersCmd = &cobra.Command{
	Use:     "registers",
	Short:   "initialize the sensor and dump its register table",
	Example: `  njord registers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunRegisters()
	},
}

func setup(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if err := config.InitGlobal(configPath); err != nil {
		return err
	}
	level, err := log.ParseLevel(config.Get().LogLevel)
	if err != nil {
		return err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

// notify delivers every interrupt to the session, which decides what each
// one ends.
func notify() <-chan os.Signal {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	return sig
}

func main() {
	RootCmd.PersistentFlags().String("config", config.DefaultPath, "path to configuration file")
	RootCmd.PersistentFlags().Bool("debug", false, "toggle debug logging")
	RunCmd.Flags().String("offsets", "", "load calibration offsets from this YAML file instead of calibrating")

	RootCmd.AddCommand(RunCmd, CalibrateCmd, RegistersCmd)
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("njord: %v", err)
	}
}

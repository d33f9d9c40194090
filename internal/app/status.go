// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"github.com/relabs-tech/njord/internal/imu"
	"github.com/relabs-tech/njord/internal/sensors"
)

// Phases of a session.
const (
	PhaseStarting    = "starting"
	PhaseCalibrating = "calibrating"
	PhaseRecording   = "recording"
	PhaseDone        = "done"
)

// Status is the liveness snapshot shared by the console, MQTT, the monitor
// and the display.
type Status struct {
	Phase    string        `json:"phase"`
	Time     time.Time     `json:"time"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Update   int           `json:"update"`
	Expected int           `json:"expected,omitempty"` // 0 when open ended
	Kept     int           `json:"kept"`
	Errors   int           `json:"errors"`
	Last     *imu.Sample   `json:"last,omitempty"`
	Offsets  imu.Offsets   `json:"offsets"`
}

// observer receives everything the sampling loop produces. Calls come from
// the loop goroutine only.
type observer interface {
	OnSample(r sensors.Reading)
	OnStatus(s Status)
}

type observers []observer

func (o observers) OnSample(r sensors.Reading) {
	for _, x := range o {
		x.OnSample(r)
	}
}

func (o observers) OnStatus(s Status) {
	for _, x := range o {
		x.OnStatus(s)
	}
}

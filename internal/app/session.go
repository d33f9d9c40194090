// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/njord/internal/config"
	"github.com/relabs-tech/njord/internal/export"
	"github.com/relabs-tech/njord/internal/imu"
	"github.com/relabs-tech/njord/internal/ringlog"
	"github.com/relabs-tech/njord/internal/sensors"
)

// session owns the board and every optional output for one run.
type session struct {
	cfg     *config.Config
	board   *sensors.Board
	led     *blinker
	pub     *publisher
	monitor *Monitor
	display *statusDisplay
	obs     observers
	last    *imu.Sample

	cancel context.CancelFunc // stops the monitor server
	served <-chan struct{}    // closed once the monitor server returned
}

func openSession(parent context.Context, cfg *config.Config) (*session, error) {
	board, err := sensors.Open(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	s := &session{cfg: cfg, board: board, cancel: cancel}

	if s.led, err = newBlinker(cfg.LEDPin); err != nil {
		log.Warnf("LED disabled: %v", err)
	}
	if cfg.MQTTBroker != "" {
		if s.pub, err = newPublisher(cfg); err != nil {
			log.Warnf("MQTT disabled: %v", err)
		} else {
			s.obs = append(s.obs, s.pub)
		}
	}
	if cfg.WebServerPort > 0 {
		s.monitor = NewMonitor()
		s.monitor.SetRegisters(board.RegisterTable())
		s.obs = append(s.obs, s.monitor)
		s.served = s.startMonitor(ctx, fmt.Sprintf(":%d", cfg.WebServerPort))
	}
	if cfg.DisplayEnabled {
		if s.display, err = newStatusDisplay(board.Bus); err != nil {
			log.Warnf("display disabled: %v", err)
		} else {
			s.obs = append(s.obs, s.display)
		}
	}
	s.starting()
	return s, nil
}

// starting publishes the initial status so the monitor has data before the
// first status tick.
func (s *session) starting() {
	s.obs.OnStatus(s.status(PhaseStarting, sensors.Progress{}, 0))
}

func (s *session) startMonitor(ctx context.Context, addr string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.monitor.Serve(ctx, addr); err != nil {
			log.Errorf("monitor: %v", err)
		}
	}()
	return done
}

func (s *session) close() {
	if err := s.led.Off(); err != nil {
		log.Warnf("LED: %v", err)
	}
	if s.display != nil {
		if err := s.display.Halt(); err != nil {
			log.Warnf("display: halt: %v", err)
		}
	}
	if s.pub != nil {
		s.pub.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.served != nil {
		<-s.served
	}
	if s.monitor != nil {
		s.monitor.Close()
	}
	if err := s.board.Close(); err != nil {
		log.Warnf("IMU: close bus: %v", err)
	}
}

func (s *session) status(phase string, p sensors.Progress, expected int) Status {
	return Status{
		Phase:    phase,
		Time:     time.Now(),
		Elapsed:  p.Elapsed,
		Update:   p.Update,
		Expected: expected,
		Kept:     p.Kept,
		Errors:   p.Errors,
		Last:     s.last,
		Offsets:  s.board.Offsets(),
	}
}

func (s *session) onSample(r sensors.Reading) {
	sample := r.Sample
	s.last = &sample
	s.obs.OnSample(r)
}

// settle waits for the sensor to start up after initialization.
func (s *session) settle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.cfg.SettleDelayDuration()):
	}
}

func (s *session) calibrate(ctx context.Context) (sensors.CalibrationReport, error) {
	cfg := s.cfg
	opts := sensors.CalibrationOptionsFromConfig(cfg)
	expected := int(opts.Duration / opts.StatusPeriod)
	log.Printf("calibrating for %v, keep the sensor still", opts.Duration)

	opts.Status = func(p sensors.Progress) {
		log.Printf("Status update: \t%d/%d", p.Update, expected)
		s.obs.OnStatus(s.status(PhaseCalibrating, p, expected))
	}
	rep, err := s.board.Calibrate(ctx, opts)
	if rep.Cancelled {
		log.Printf("calibration interrupted after %v", time.Since(rep.Begin).Round(time.Second))
	}
	if err != nil {
		return rep, err
	}
	log.Printf("calibrated from %d samples (%d errors): accel %v gyro %v",
		rep.Used, rep.Errors, rep.Offsets.Accel, rep.Offsets.Gyro)

	if cfg.CalibrationFile != "" {
		if err := export.SaveCalibration(cfg.CalibrationFile, rep); err != nil {
			log.Warnf("calibration: %v", err)
		}
	}
	if s.monitor != nil {
		s.monitor.SetRegisters(s.board.RegisterTable())
	}
	return rep, nil
}

// record runs the down-sampled logging loop until the sample log fills up or
// ctx is done, then sleeps the sensor and writes both logs.
func (s *session) record(ctx context.Context) error {
	cfg := s.cfg
	samples := ringlog.New[sensors.Reading](cfg.SampleCapacity)
	failures := ringlog.New[sensors.Failure](cfg.SampleCapacity)

	log.Printf("recording %d samples every %v", cfg.SampleCapacity, cfg.SampleIntervalDuration())
	err := sensors.Record(ctx, s.board.InterruptDev, samples, failures, sensors.LoopOptions{
		Period:       cfg.SampleIntervalDuration(),
		StopWhenFull: true,
		StatusPeriod: cfg.BlinkIntervalDuration(),
		Status: func(p sensors.Progress) {
			if err := s.led.Toggle(); err != nil {
				log.Debugf("LED: %v", err)
			}
			log.Printf("Samples: %d | Elapsed time: %v", p.Kept, p.Elapsed.Round(time.Millisecond))
			s.obs.OnStatus(s.status(PhaseRecording, p, 0))
		},
		OnSample: s.onSample,
	})

	if err := s.led.Off(); err != nil {
		log.Warnf("LED: %v", err)
	}
	if err := s.board.Sleep(); err != nil {
		log.Warnf("IMU: sleep: %v", err)
	}
	s.obs.OnStatus(s.status(PhaseDone, sensors.Progress{Kept: samples.Count(), Errors: failures.Count()}, 0))

	log.Println("Writing data.")
	if werr := export.SaveSamples(cfg.DataFile, samples.Items()); werr != nil {
		return werr
	}
	if werr := export.SaveErrors(cfg.ErrorFile, failures.Items()); werr != nil {
		return werr
	}
	log.Printf("Errors: %d", failures.Count())
	return err
}

// RunSession initializes the sensor, calibrates it (or loads offsets from
// offsetsFile when set) and records a session. Each value received on
// interrupt ends the current phase only, so a first interrupt during
// calibration moves on to recording and a second one ends recording.
func RunSession(ctx context.Context, interrupt <-chan os.Signal, offsetsFile string) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	if offsetsFile != "" {
		off, err := export.LoadOffsets(offsetsFile)
		if err != nil {
			return fmt.Errorf("load offsets: %w", err)
		}
		s.board.SetOffsets(off)
		log.Printf("using offsets from %s: accel %v gyro %v", offsetsFile, off.Accel, off.Gyro)
	} else {
		s.settle(ctx)
		phase, stop := phaseContext(ctx, interrupt)
		_, err := s.calibrate(phase)
		stop()
		if err != nil {
			return err
		}
	}

	phase, stop := phaseContext(ctx, interrupt)
	defer stop()
	return s.record(phase)
}

// RunCalibration runs a calibration pass only and writes CALIBRATION_FILE.
func RunCalibration(ctx context.Context, interrupt <-chan os.Signal) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	s.settle(ctx)
	phase, stop := phaseContext(ctx, interrupt)
	defer stop()
	if _, err := s.calibrate(phase); err != nil {
		return err
	}
	if err := s.board.Sleep(); err != nil {
		log.Warnf("IMU: sleep: %v", err)
	}
	return nil
}

// RunRegisters initializes the sensor and prints the register map with the
// values the driver wrote.
func RunRegisters() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}
	board, err := sensors.Open(cfg)
	if err != nil {
		return err
	}
	defer board.Close()

	if id, err := board.WhoAmI(); err == nil {
		fmt.Printf("WHO_AM_I      0x%02X\n", id)
	}
	for _, r := range board.RegisterTable() {
		fmt.Printf("%v  %s\n", r, r.Description)
	}

	sh := board.Shadow()
	fmt.Printf("\npower:     %+v\n", sensors.DecodePowerSettings(sh.PwrMgmt1, sh.PwrMgmt2))
	fmt.Printf("filter:    %+v (%g Hz)\n", sensors.DecodeFilterConfig(sh.Config, sh.SmplrtDiv), board.SampleRate())
	fmt.Printf("interrupt: %+v\n", sensors.DecodeInterruptConfig(sh.IntPinCfg, sh.IntEnable))
	return nil
}

// phaseContext derives a context that is cancelled by the parent or by one
// value from interrupt. stop releases the watcher without consuming a value.
func phaseContext(parent context.Context, interrupt <-chan os.Signal) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-interrupt:
			log.Printf("received %v", sig)
			cancel()
		case <-ctx.Done():
		case <-done:
		}
	}()
	return ctx, func() {
		close(done)
		cancel()
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/njord/internal/imu"
	"github.com/relabs-tech/njord/internal/ringlog"
)

// Reading is a kept sample with its capture time relative to loop start.
// Begin is the wall clock at loop start without a monotonic reading.
type Reading struct {
	Sample  imu.Sample
	Begin   time.Time
	Elapsed time.Duration
}

// Time is the absolute capture time: loop start plus monotonic elapsed
// time, so a wall clock step mid-session does not reorder readings.
func (r Reading) Time() time.Time { return r.Begin.Add(r.Elapsed) }

// Failure is a transport error seen by the loop.
type Failure struct {
	Err     error
	At      time.Time
	Begin   time.Time
	Elapsed time.Duration
}

// Time is loop start plus the monotonic elapsed time of the failure.
func (f Failure) Time() time.Time { return f.Begin.Add(f.Elapsed) }

// Progress is passed to the status callback.
type Progress struct {
	Update  int // 1 for the first callback
	Elapsed time.Duration
	Kept    int // samples kept so far, including evicted ones
	Errors  int
}

// LoopOptions controls Record.
type LoopOptions struct {
	// Period down-samples the native output rate: the n-th kept sample
	// (counting from zero) is captured at least n*Period after start.
	// Zero keeps every sample.
	Period time.Duration
	// Timeout bounds each interrupt wait. Zero uses InterruptTimeout.
	Timeout time.Duration
	// Duration ends the loop. Zero runs until cancelled or full.
	Duration time.Duration
	// StopWhenFull ends the loop once the sample log is at capacity.
	StopWhenFull bool

	StatusPeriod time.Duration
	Status       func(Progress)

	// OnSample is called for each kept reading.
	OnSample func(Reading)
}

// Record runs the interrupt driven acquisition loop, appending kept readings
// to samples and transport errors to failures. It returns nil when the
// duration elapses, the sample log fills up (with StopWhenFull) or ctx is
// done. Only *BusError is absorbed; any other error ends the loop.
func Record(ctx context.Context, d *InterruptDev, samples *ringlog.Log[Reading], failures *ringlog.Log[Failure], o LoopOptions) error {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = d.InterruptTimeout()
	}

	begin := d.now()
	wall := begin.Round(0)
	var kept, updates int
	for {
		select {
		case <-ctx.Done():
			log.Debugf("sampling cancelled after %d samples", kept)
			return nil
		default:
		}
		if o.Duration > 0 && d.now().Sub(begin) >= o.Duration {
			return nil
		}

		s, ok, err := d.WaitForSample(timeout)
		switch {
		case err != nil:
			var be *BusError
			if !errors.As(err, &be) {
				return err
			}
			log.Debugf("sampling: %v", err)
			failures.Push(Failure{Err: err, At: be.At, Begin: wall, Elapsed: be.At.Sub(begin)})
		case ok:
			elapsed := s.At.Sub(begin)
			if o.Period <= 0 || elapsed >= time.Duration(kept)*o.Period {
				r := Reading{Sample: s, Begin: wall, Elapsed: elapsed}
				samples.Push(r)
				kept++
				if o.OnSample != nil {
					o.OnSample(r)
				}
			}
		}

		if o.StatusPeriod > 0 && o.Status != nil {
			elapsed := d.now().Sub(begin)
			if n := int(elapsed / o.StatusPeriod); n > updates {
				updates = n
				o.Status(Progress{Update: n, Elapsed: elapsed, Kept: kept, Errors: failures.Count()})
			}
		}

		if o.StopWhenFull && samples.Full() {
			return nil
		}
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/njord/internal/sensors"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// statusDisplay shows the session status on an SSD1306 sharing the sensor
// bus. It is refreshed from the sampling loop on the status cadence.
type statusDisplay struct {
	dev *ssd1306.Dev
}

func newStatusDisplay(bus i2c.Bus) (*statusDisplay, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	d := &statusDisplay{dev: dev}
	if err := d.draw(renderLines("njord", "GY-521 logger", "starting...")); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}
	return d, nil
}

func (d *statusDisplay) draw(img *image1bit.VerticalLSB) error {
	return d.dev.Draw(d.dev.Bounds(), img, image.Point{})
}

func (d *statusDisplay) OnSample(sensors.Reading) {}

func (d *statusDisplay) OnStatus(s Status) {
	if err := d.draw(renderStatus(s)); err != nil {
		log.Debugf("display: %v", err)
	}
}

func (d *statusDisplay) Halt() error {
	return d.dev.Halt()
}

// renderStatus lays out up to four lines of 7x13 text.
func renderStatus(s Status) *image1bit.VerticalLSB {
	lines := []string{
		fmt.Sprintf("%s %ds", s.Phase, int(s.Elapsed.Seconds())),
		fmt.Sprintf("N:%d E:%d", s.Kept, s.Errors),
	}
	if s.Expected > 0 {
		lines[0] = fmt.Sprintf("%s %d/%d", s.Phase, s.Update, s.Expected)
	}
	if s.Last != nil {
		a := s.Last.Acceleration
		lines = append(lines,
			fmt.Sprintf("A%+.2f%+.2f%+.2f", a.X, a.Y, a.Z),
			fmt.Sprintf("T:%.1fC", s.Last.Temperature),
		)
	}
	return renderLines(lines...)
}

func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		if (i+1)*lineHeight > displayHeight {
			break
		}
		drawer.Dot = fixed.P(0, (i+1)*lineHeight)
		drawer.DrawString(line)
	}
	return img
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"time"

	"github.com/relabs-tech/njord/internal/imu"
)

// Opts configures a GY-521 (MPU-6050) board.
type Opts struct {
	Addr      uint16
	Power     PowerSettings
	Filter    FilterConfig
	Interrupt InterruptConfig
	Accel     Sensitivity
	Gyro      Sensitivity
	Offsets   imu.Offsets
	// Data defaults to DefaultDataRegisters when left zero.
	Data DataRegisters
}

// DefaultOpts matches the power-on state of the chip.
var DefaultOpts = Opts{
	Addr:  DefaultAddr,
	Power: DefaultPowerSettings,
	Accel: Accel2G,
	Gyro:  Gyro250DPS,
}

// Shadow holds the last value successfully written to each configuration
// register.
type Shadow struct {
	PwrMgmt1    byte
	PwrMgmt2    byte
	IntPinCfg   byte
	IntEnable   byte
	Config      byte
	SmplrtDiv   byte
	GyroConfig  byte
	AccelConfig byte
}

// Lookup returns the shadow value of the register at addr.
func (s Shadow) Lookup(addr byte) (byte, bool) {
	switch addr {
	case RegPwrMgmt1:
		return s.PwrMgmt1, true
	case RegPwrMgmt2:
		return s.PwrMgmt2, true
	case RegIntPinCfg:
		return s.IntPinCfg, true
	case RegIntEnable:
		return s.IntEnable, true
	case RegConfig:
		return s.Config, true
	case RegSmplrtDiv:
		return s.SmplrtDiv, true
	case RegGyroConfig:
		return s.GyroConfig, true
	case RegAccelConfig:
		return s.AccelConfig, true
	}
	return 0, false
}

// Dev is a GY-521 used by polling. It is not safe for concurrent use; one
// goroutine owns it for the whole session.
type Dev struct {
	bus     Bus
	opts    Opts
	data    DataRegisters
	shadow  Shadow
	offsets imu.Offsets
	buf     []byte
	now     func() time.Time
}

// New returns a device bound to bus. Nothing is sent until Init.
func New(bus Bus, o *Opts) (*Dev, error) {
	if bus == nil {
		return nil, fmt.Errorf("gy521: nil bus")
	}
	if o == nil {
		o = &DefaultOpts
	}
	if o.Accel.ScaleFactor <= 0 || o.Gyro.ScaleFactor <= 0 {
		return nil, fmt.Errorf("gy521: scale factors must be positive (accel %v, gyro %v)", o.Accel.ScaleFactor, o.Gyro.ScaleFactor)
	}
	if !o.Power.Clock.Valid() {
		return nil, fmt.Errorf("gy521: invalid clock source %d", o.Power.Clock)
	}
	data := o.Data
	if data.Len() == 0 {
		data = DefaultDataRegisters()
	}
	return &Dev{
		bus:     bus,
		opts:    *o,
		data:    data,
		offsets: o.Offsets,
		buf:     make([]byte, data.Len()),
		now:     time.Now,
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("GY521{addr:0x%02X, ±%gg, ±%g°/s, %g Hz}", d.opts.Addr, d.opts.Accel.FullScale, d.opts.Gyro.FullScale, d.SampleRate())
}

// Init pushes the whole configuration to the device. The interrupt
// registers are left untouched; see InterruptDev.Init.
func (d *Dev) Init() error {
	return d.init(nil)
}

// init writes each register and records it in the shadow only once the write
// succeeded. The first failure aborts; earlier writes are not rolled back.
func (d *Dev) init(pin InterruptPin) error {
	if err := d.bus.SetAddress(d.opts.Addr); err != nil {
		return &BusError{Op: fmt.Sprintf("select address 0x%02X", d.opts.Addr), At: d.now(), Err: err}
	}

	pwr1, pwr2 := d.opts.Power.Registers()
	if err := d.write(RegPwrMgmt1, pwr1, &d.shadow.PwrMgmt1); err != nil {
		return err
	}
	if err := d.write(RegPwrMgmt2, pwr2, &d.shadow.PwrMgmt2); err != nil {
		return err
	}

	if pin != nil {
		if err := pin.Configure(d.opts.Interrupt.Edge()); err != nil {
			return &BusError{Op: "configure interrupt pin", At: d.now(), Err: err}
		}
		pinCfg, enable := d.opts.Interrupt.Registers()
		if err := d.write(RegIntPinCfg, pinCfg, &d.shadow.IntPinCfg); err != nil {
			return err
		}
		if err := d.write(RegIntEnable, enable, &d.shadow.IntEnable); err != nil {
			return err
		}
	}

	if err := d.write(RegConfig, d.opts.Filter.Register(), &d.shadow.Config); err != nil {
		return err
	}
	if err := d.write(RegSmplrtDiv, d.opts.Filter.SampleRateDivider, &d.shadow.SmplrtDiv); err != nil {
		return err
	}
	if err := d.write(RegGyroConfig, d.opts.Gyro.Register(), &d.shadow.GyroConfig); err != nil {
		return err
	}
	return d.write(RegAccelConfig, d.opts.Accel.Register(), &d.shadow.AccelConfig)
}

func (d *Dev) write(reg, value byte, shadow *byte) error {
	if err := d.bus.WriteRegister(reg, value); err != nil {
		return &BusError{Op: fmt.Sprintf("write %s (0x%02X)", RegisterName(reg), reg), At: d.now(), Err: err}
	}
	*shadow = value
	return nil
}

// ReadRaw performs one burst read of the data registers.
func (d *Dev) ReadRaw() (imu.Raw, error) {
	if err := d.bus.ReadBlock(d.data.Start(), d.buf); err != nil {
		return imu.Raw{}, err
	}
	return d.data.Decode(d.buf)
}

// Read returns a converted, offset corrected sample stamped with the instant
// the burst read started.
func (d *Dev) Read() (imu.Sample, error) {
	at := d.now()
	raw, err := d.ReadRaw()
	if err != nil {
		return imu.Sample{}, &BusError{Op: "burst read", At: at, Err: err}
	}
	s := imu.Convert(raw, d.opts.Accel.ScaleFactor, d.opts.Gyro.ScaleFactor, d.offsets)
	s.At = at
	return s, nil
}

// SetClockSource rewrites only CLKSEL in PWR_MGMT_1.
func (d *Dev) SetClockSource(c ClockSource) error {
	if !c.Valid() {
		return fmt.Errorf("gy521: invalid clock source %d", c)
	}
	v := d.shadow.PwrMgmt1&^clockMask | byte(c)
	if err := d.write(RegPwrMgmt1, v, &d.shadow.PwrMgmt1); err != nil {
		return err
	}
	d.opts.Power.Clock = c
	return nil
}

// Sleep sets the SLEEP bit.
func (d *Dev) Sleep() error {
	if err := d.write(RegPwrMgmt1, d.shadow.PwrMgmt1|bitSleep, &d.shadow.PwrMgmt1); err != nil {
		return err
	}
	d.opts.Power.Mode = ModeSleep
	return nil
}

// Wake clears the SLEEP bit.
func (d *Dev) Wake() error {
	if err := d.write(RegPwrMgmt1, d.shadow.PwrMgmt1&^bitSleep, &d.shadow.PwrMgmt1); err != nil {
		return err
	}
	d.opts.Power.Mode = DecodePowerSettings(d.shadow.PwrMgmt1, d.shadow.PwrMgmt2).Mode
	return nil
}

// WhoAmI reads the identity register; a genuine MPU-6050 answers 0x68.
func (d *Dev) WhoAmI() (byte, error) {
	v, err := d.bus.ReadRegister(RegWhoAmI)
	if err != nil {
		return 0, &BusError{Op: "read WHO_AM_I", At: d.now(), Err: err}
	}
	return v, nil
}

// Opts returns the configuration currently in effect.
func (d *Dev) Opts() Opts { return d.opts }

// Shadow returns the last written configuration registers.
func (d *Dev) Shadow() Shadow { return d.shadow }

// Offsets returns the calibration offsets applied by Read.
func (d *Dev) Offsets() imu.Offsets { return d.offsets }

// SetOffsets replaces the calibration offsets.
func (d *Dev) SetOffsets(o imu.Offsets) { d.offsets = o }

// SampleRate is the configured data register refresh rate in Hz.
func (d *Dev) SampleRate() float64 { return d.opts.Filter.SampleRate() }

// InterruptDev is a Dev with its INT pin wired to a host input. Only this
// type can wait for data ready interrupts.
type InterruptDev struct {
	*Dev
	pin InterruptPin
}

// NewInterrupt returns an interrupt driven device.
func NewInterrupt(bus Bus, pin InterruptPin, o *Opts) (*InterruptDev, error) {
	if pin == nil {
		return nil, ErrNoInterruptPin
	}
	d, err := New(bus, o)
	if err != nil {
		return nil, err
	}
	return &InterruptDev{Dev: d, pin: pin}, nil
}

// Init pushes the configuration including the interrupt registers and
// programs the pin trigger edge.
func (d *InterruptDev) Init() error {
	return d.init(d.pin)
}

// InterruptTimeout is 1.5 sample periods: long enough to ride out one late
// edge, short enough to notice a missing one.
func (d *InterruptDev) InterruptTimeout() time.Duration {
	return time.Duration(1.5 * float64(time.Second) / d.SampleRate())
}

// WaitForInterrupt blocks on the pin and, if it fired, reads INT_STATUS.
// The bool is false when the wait timed out.
func (d *InterruptDev) WaitForInterrupt(reset bool, timeout time.Duration) (InterruptStatus, bool, error) {
	fired, err := d.pin.Poll(reset, timeout)
	if err != nil {
		return InterruptStatus{}, false, &BusError{Op: "poll interrupt", At: d.now(), Err: err}
	}
	if !fired {
		return InterruptStatus{}, false, nil
	}
	b, err := d.bus.ReadRegister(RegIntStatus)
	if err != nil {
		return InterruptStatus{}, false, &BusError{Op: "read INT_STATUS", At: d.now(), Err: err}
	}
	return DecodeInterruptStatus(b), true, nil
}

// WaitForSample waits for a data ready interrupt and reads the sample. The
// bool is false when no sample was produced this cycle (timeout or another
// interrupt cause); that is not an error.
func (d *InterruptDev) WaitForSample(timeout time.Duration) (imu.Sample, bool, error) {
	st, fired, err := d.WaitForInterrupt(false, timeout)
	if err != nil || !fired || !st.DataReady {
		return imu.Sample{}, false, err
	}
	s, err := d.Read()
	if err != nil {
		return imu.Sample{}, false, err
	}
	return s, true, nil
}

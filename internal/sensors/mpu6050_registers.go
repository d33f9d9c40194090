// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// BitField describes one field of a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo describes one register the driver touches.
type RegisterInfo struct {
	Address     byte       `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "RW"
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterValue pairs a register with its shadow value, when the driver
// keeps one.
type RegisterValue struct {
	RegisterInfo
	Value  byte `json:"value"`
	Shadow bool `json:"shadow"`
}

func (r RegisterValue) String() string {
	if !r.Shadow {
		return fmt.Sprintf("0x%02X %-12s  --", r.Address, r.Name)
	}
	return fmt.Sprintf("0x%02X %-12s  0x%02X  %08b", r.Address, r.Name, r.Value, r.Value)
}

var mpu6050Registers = []RegisterInfo{
	{Address: RegSmplrtDiv, Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW",
		BitFields: []BitField{
			{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro Output Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
		}},
	{Address: RegConfig, Name: "CONFIG", Description: "Configuration (DLPF, FSYNC)", Access: "RW",
		BitFields: []BitField{
			{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "FSYNC pin sampling", Values: "0=Disabled, 1=TEMP, 2=GYRO_X, 3=GYRO_Y, 4=GYRO_Z, 5=ACCEL_X, 6=ACCEL_Y, 7=ACCEL_Z"},
			{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz(8kHz), 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz, 7=Reserved(8kHz)"},
		}},
	{Address: RegGyroConfig, Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW",
		BitFields: []BitField{
			{Bits: "7:5", Name: "XG_ST/YG_ST/ZG_ST", Description: "Gyro self-test", Values: "0=Disabled, 1=Enabled"},
			{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
		}},
	{Address: RegAccelConfig, Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW",
		BitFields: []BitField{
			{Bits: "7:5", Name: "XA_ST/YA_ST/ZA_ST", Description: "Accel self-test", Values: "0=Disabled, 1=Enabled"},
			{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
		}},
	{Address: RegIntPinCfg, Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW",
		BitFields: []BitField{
			{Bits: "7", Name: "INT_LEVEL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
			{Bits: "6", Name: "INT_OPEN", Description: "INT pin open drain", Values: "0=Push-pull, 1=Open drain"},
			{Bits: "5", Name: "LATCH_INT_EN", Description: "Latch INT pin", Values: "0=50us pulse, 1=Latch until cleared"},
			{Bits: "4", Name: "INT_RD_CLEAR", Description: "Clear INT on any read", Values: "0=Status read only, 1=Any read"},
			{Bits: "3", Name: "FSYNC_INT_LEVEL", Description: "FSYNC pin active low", Values: "0=Active high, 1=Active low"},
			{Bits: "2", Name: "FSYNC_INT_EN", Description: "Enable FSYNC as interrupt", Values: "0=Disabled, 1=Enabled"},
			{Bits: "1", Name: "I2C_BYPASS_EN", Description: "Auxiliary I2C bypass", Values: "0=Disabled, 1=Enabled"},
		}},
	{Address: RegIntEnable, Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW",
		BitFields: []BitField{
			{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
			{Bits: "3", Name: "I2C_MST_INT_EN", Description: "I2C master interrupt sources", Values: "0=Disabled, 1=Enabled"},
			{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt", Values: "0=Disabled, 1=Enabled"},
		}},
	{Address: RegIntStatus, Name: "INT_STATUS", Description: "Interrupt Status", Access: "R",
		BitFields: []BitField{
			{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow interrupt status"},
			{Bits: "3", Name: "I2C_MST_INT", Description: "I2C master interrupt status"},
			{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready interrupt status"},
		}},

	// Sensor data registers, read in one burst.
	{Address: 0x3B, Name: "ACCEL_XOUT_H", Description: "Accelerometer X high byte", Access: "R"},
	{Address: 0x3C, Name: "ACCEL_XOUT_L", Description: "Accelerometer X low byte", Access: "R"},
	{Address: 0x3D, Name: "ACCEL_YOUT_H", Description: "Accelerometer Y high byte", Access: "R"},
	{Address: 0x3E, Name: "ACCEL_YOUT_L", Description: "Accelerometer Y low byte", Access: "R"},
	{Address: 0x3F, Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z high byte", Access: "R"},
	{Address: 0x40, Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z low byte", Access: "R"},
	{Address: 0x41, Name: "TEMP_OUT_H", Description: "Temperature high byte", Access: "R"},
	{Address: 0x42, Name: "TEMP_OUT_L", Description: "Temperature low byte", Access: "R"},
	{Address: 0x43, Name: "GYRO_XOUT_H", Description: "Gyroscope X high byte", Access: "R"},
	{Address: 0x44, Name: "GYRO_XOUT_L", Description: "Gyroscope X low byte", Access: "R"},
	{Address: 0x45, Name: "GYRO_YOUT_H", Description: "Gyroscope Y high byte", Access: "R"},
	{Address: 0x46, Name: "GYRO_YOUT_L", Description: "Gyroscope Y low byte", Access: "R"},
	{Address: 0x47, Name: "GYRO_ZOUT_H", Description: "Gyroscope Z high byte", Access: "R"},
	{Address: 0x48, Name: "GYRO_ZOUT_L", Description: "Gyroscope Z low byte", Access: "R"},

	// Power management
	{Address: RegPwrMgmt1, Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW",
		BitFields: []BitField{
			{Bits: "7", Name: "DEVICE_RESET", Description: "Reset all registers", Values: "1=Reset"},
			{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Awake, 1=Sleep"},
			{Bits: "5", Name: "CYCLE", Description: "Cycle between sleep and sampling", Values: "0=Disabled, 1=Enabled"},
			{Bits: "3", Name: "TEMP_DIS", Description: "Disable temperature sensor", Values: "0=Enabled, 1=Disabled"},
			{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL Gyro X, 2=PLL Gyro Y, 3=PLL Gyro Z, 4=Ext 32.768kHz, 5=Ext 19.2MHz, 7=Stop"},
		}},
	{Address: RegPwrMgmt2, Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW",
		BitFields: []BitField{
			{Bits: "7:6", Name: "LP_WAKE_CTRL", Description: "Wake-up frequency in cycle mode", Values: "0=1.25Hz, 1=5Hz, 2=20Hz, 3=40Hz"},
			{Bits: "5", Name: "STBY_XA", Description: "Accel X standby", Values: "0=Active, 1=Standby"},
			{Bits: "4", Name: "STBY_YA", Description: "Accel Y standby", Values: "0=Active, 1=Standby"},
			{Bits: "3", Name: "STBY_ZA", Description: "Accel Z standby", Values: "0=Active, 1=Standby"},
			{Bits: "2", Name: "STBY_XG", Description: "Gyro X standby", Values: "0=Active, 1=Standby"},
			{Bits: "1", Name: "STBY_YG", Description: "Gyro Y standby", Values: "0=Active, 1=Standby"},
			{Bits: "0", Name: "STBY_ZG", Description: "Gyro Z standby", Values: "0=Active, 1=Standby"},
		}},
	{Address: RegWhoAmI, Name: "WHO_AM_I", Description: "Device identity (0x68)", Access: "R"},
}

// RegisterMap returns metadata for every register the driver uses.
func RegisterMap() []RegisterInfo {
	out := make([]RegisterInfo, len(mpu6050Registers))
	copy(out, mpu6050Registers)
	return out
}

// RegisterName returns the datasheet name of addr, or its hex form.
func RegisterName(addr byte) string {
	for _, r := range mpu6050Registers {
		if r.Address == addr {
			return r.Name
		}
	}
	return fmt.Sprintf("REG_%02X", addr)
}

// RegisterTable returns the register map with the device's shadow values.
func (d *Dev) RegisterTable() []RegisterValue {
	out := make([]RegisterValue, 0, len(mpu6050Registers))
	for _, r := range mpu6050Registers {
		v, ok := d.shadow.Lookup(r.Address)
		out = append(out, RegisterValue{RegisterInfo: r, Value: v, Shadow: ok})
	}
	return out
}

package usmu

import (
	"fmt"
	"strings"

	"github.com/microvolt/go-usmu/scpi"
	"github.com/microvolt/go-usmu/unit"
)

// MaxCurrentLimit is the maximum current capability of the uSMU.
const MaxCurrentLimit = unit.Current(0.04) // 40 mA

// MaxDacLevel is the maximum level of the 12-bit current-limit DAC.
const MaxDacLevel = 4095

// ResponseShape identifies what the device sends back for a command.
type ResponseShape int

const (
	// RespEmpty means the device sends no reply line.
	RespEmpty ResponseShape = iota
	// RespMeasurement is a "<volts>,<amps>" reply.
	RespMeasurement
	// RespUint is a single unsigned decimal reply.
	RespUint
	// RespFloat is a single decimal float reply.
	RespFloat
	// RespIdentity is the identity banner followed by an unsigned id.
	RespIdentity
)

// Command is one validated, encoded device command.
//
// Commands are built only through the catalog constructors below; parameter
// validation happens there, so an out-of-domain value never reaches the
// encoder.
type Command struct {
	name  string
	shape ResponseShape
	line  string
}

// Name returns the catalog name of the command.
func (c Command) Name() string { return c.name }

// ResponseShape returns the reply shape the device produces for this command.
func (c Command) ResponseShape() ResponseShape { return c.shape }

// Encode returns the wire line of the command without its terminator.
func (c Command) Encode() string { return c.line }

// commandSpec is one row of the catalog: the wire prefix and the reply shape.
//
// The prefix carries its own trailing separator, so entries like CH1:RANGE
// that join the parameter with no space encode through the same path as the
// space-separated ones. Multiple fields are joined by single spaces.
type commandSpec struct {
	name   string
	prefix string
	shape  ResponseShape
}

func (s commandSpec) command(fields ...string) Command {
	return Command{
		name:  s.name,
		shape: s.shape,
		line:  s.prefix + strings.Join(fields, " "),
	}
}

// The command catalog. Mnemonics are case-sensitive literals; the firmware
// rejects anything else.
var (
	specEnable             = commandSpec{"Enable", "CH1:ENA", RespEmpty}
	specDisable            = commandSpec{"Disable", "CH1:DIS", RespEmpty}
	specSetCurrentLimit    = commandSpec{"SetCurrentLimit", "CH1:CUR ", RespEmpty}
	specSetVoltage         = commandSpec{"SetVoltage", "CH1:VOL ", RespEmpty}
	specMeasure            = commandSpec{"Measure", "CH1:MEA:VOL ", RespMeasurement}
	specSetOverSampleRate  = commandSpec{"SetOverSampleRate", "CH1:OSR ", RespEmpty}
	specSetVoltageDac      = commandSpec{"SetVoltageDac", "DAC ", RespEmpty}
	specDiffConversion     = commandSpec{"DifferentialConversion", "ADC ", RespUint}
	specSetCurrentLimitDac = commandSpec{"SetCurrentLimitDac", "ILIM ", RespEmpty}
	specVoltageCalMode     = commandSpec{"EnableVoltageCalibrationMode", "CH1:VCAL", RespEmpty}
	specLockCurrentRange   = commandSpec{"LockCurrentRangeAndClearCalibration", "CH1:RANGE", RespEmpty}
	specReadEeprom         = commandSpec{"ReadEeprom", "*READ ", RespFloat}
	specReset              = commandSpec{"Reset", "*RST", RespEmpty}
	specIdentity           = commandSpec{"Identity", "*IDN?", RespIdentity}
	specWriteVoltageDacCal = commandSpec{"WriteVoltageDacCalibration", "CAL:DAC ", RespEmpty}
	specWriteVoltageAdcCal = commandSpec{"WriteVoltageAdcCalibration", "CAL:VOL ", RespEmpty}
	specWriteCurrentCal    = commandSpec{"WriteCurrentLimitCalibration", "CAL:CUR:RANGE ", RespEmpty}
	specWriteCurrentDacCal = commandSpec{"WriteCurrentLimitDacCalibration", "CAL:ILIM ", RespEmpty}
)

// CurrentRange selects one of the four hardware current measurement ranges.
type CurrentRange uint8

// NewCurrentRange validates v as a current range selector. Only 1 through 4
// exist in hardware.
func NewCurrentRange(v uint8) (CurrentRange, error) {
	r := CurrentRange(v)
	if err := r.validate(); err != nil {
		return 0, err
	}

	return r, nil
}

func (r CurrentRange) validate() error {
	if r < 1 || r > 4 {
		return fmt.Errorf("%w: current range %d, only 1-4 are valid", ErrConfiguration, r)
	}

	return nil
}

// Enable returns the command that enables the SMU output.
func Enable() Command { return specEnable.command() }

// Disable returns the command that disables the SMU output (high impedance).
func Disable() Command { return specDisable.command() }

// SetCurrentLimit returns the command that sets the sink/source current
// limit.
//
// The limit is an absolute value applied to both source and sink current;
// sink current reads back with a negative sign. Limits below zero or above
// 40 mA exceed the hardware capability and fail with [ErrConfiguration].
func SetCurrentLimit(limit unit.Current) (Command, error) {
	if limit < 0 || limit > MaxCurrentLimit {
		return Command{}, fmt.Errorf("%w: current limit %s mA out of range [0 mA, 40 mA]",
			ErrConfiguration, scpi.FormatFloat32(limit.Milliamperes()))
	}

	// The current-limit field travels in milliamps on the wire.
	return specSetCurrentLimit.command(scpi.FormatFloat32(limit.Milliamperes())), nil
}

// SetVoltage returns the command that sets the output voltage.
func SetVoltage(voltage unit.Voltage) Command {
	return specSetVoltage.command(scpi.FormatFloat32(voltage.Volts()))
}

// Measure returns the command that sets the output voltage and reports the
// measured voltage and current.
func Measure(voltage unit.Voltage) Command {
	return specMeasure.command(scpi.FormatFloat32(voltage.Volts()))
}

// SetOverSampleRate returns the command that sets the number of raw samples
// the device averages per reported measurement.
func SetOverSampleRate(samples uint16) Command {
	return specSetOverSampleRate.command(scpi.FormatUint(uint64(samples)))
}

// SetVoltageDac returns the command that sets the voltage DAC level
// directly.
func SetVoltageDac(level uint16) Command {
	return specSetVoltageDac.command(scpi.FormatUint(uint64(level)))
}

// DifferentialConversion returns the command that performs a raw
// differential ADC conversion.
//
// The differential measurement is sampled against the next adjacent channel
// (0 with 1, 2 with 3), so only channels 0 and 2 are valid.
func DifferentialConversion(channel uint8) (Command, error) {
	if channel != 0 && channel != 2 {
		return Command{}, fmt.Errorf("%w: differential conversion channel %d, only 0 and 2 are valid",
			ErrConfiguration, channel)
	}

	return specDiffConversion.command(scpi.FormatUint(uint64(channel))), nil
}

// DifferentialConversionChannelZero returns the differential conversion
// command for channel 0.
func DifferentialConversionChannelZero() Command {
	cmd, _ := DifferentialConversion(0)
	return cmd
}

// DifferentialConversionChannelTwo returns the differential conversion
// command for channel 2.
func DifferentialConversionChannelTwo() Command {
	cmd, _ := DifferentialConversion(2)
	return cmd
}

// SetCurrentLimitDac returns the command that sets the current-limit DAC
// level directly. The DAC is 12 bits wide; levels above 4095 fail with
// [ErrConfiguration].
func SetCurrentLimitDac(level uint16) (Command, error) {
	if level > MaxDacLevel {
		return Command{}, fmt.Errorf("%w: current limit DAC level %d exceeds 12 bits", ErrConfiguration, level)
	}

	return specSetCurrentLimitDac.command(scpi.FormatUint(uint64(level))), nil
}

// EnableVoltageCalibrationMode returns the command that enables voltage
// calibration mode.
func EnableVoltageCalibrationMode() Command {
	return specVoltageCalMode.command()
}

// LockCurrentRangeAndClearCalibration returns the command that locks the
// given current range and temporarily clears the current calibration data.
func LockCurrentRangeAndClearCalibration(r CurrentRange) (Command, error) {
	if err := r.validate(); err != nil {
		return Command{}, err
	}

	return specLockCurrentRange.command(scpi.FormatUint(uint64(r))), nil
}

// ReadEeprom returns the command that reads the float stored at the given
// EEPROM address.
func ReadEeprom(address uint8) Command {
	return specReadEeprom.command(scpi.FormatUint(uint64(address)))
}

// WriteEeprom always fails with [ErrUnsupported].
//
// The documented wire format of the EEPROM write command disagrees with the
// firmware implementation, which makes the command unsafe to send. Use the
// dedicated calibration write commands instead.
func WriteEeprom(address uint8, value float32) (Command, error) {
	return Command{}, fmt.Errorf("%w: EEPROM write (address %d)", ErrUnsupported, address)
}

// Reset returns the command that resets the uSMU. A successful reset makes
// the virtual COM port disconnect; the connection must be rediscovered.
func Reset() Command { return specReset.command() }

// Identity returns the command that reads the device identification.
func Identity() Command { return specIdentity.command() }

// WriteVoltageDacCalibration returns the command that writes the voltage DAC
// calibration to EEPROM.
func WriteVoltageDacCalibration(slope, intercept float32) Command {
	return specWriteVoltageDacCal.command(scpi.FormatFloat32(slope), scpi.FormatFloat32(intercept))
}

// WriteVoltageAdcCalibration returns the command that writes the voltage ADC
// calibration to EEPROM.
func WriteVoltageAdcCalibration(slope, intercept float32) Command {
	return specWriteVoltageAdcCal.command(scpi.FormatFloat32(slope), scpi.FormatFloat32(intercept))
}

// WriteCurrentLimitCalibration returns the command that writes the current
// ADC calibration for the given range to EEPROM.
func WriteCurrentLimitCalibration(r CurrentRange, slope, intercept float32) (Command, error) {
	if err := r.validate(); err != nil {
		return Command{}, err
	}

	return specWriteCurrentCal.command(
		scpi.FormatUint(uint64(r)),
		scpi.FormatFloat32(slope),
		scpi.FormatFloat32(intercept),
	), nil
}

// WriteCurrentLimitDacCalibration returns the command that writes the
// current-limit DAC calibration to EEPROM.
func WriteCurrentLimitDacCalibration(slope, intercept float32) Command {
	return specWriteCurrentDacCal.command(scpi.FormatFloat32(slope), scpi.FormatFloat32(intercept))
}

package usmu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microvolt/go-usmu/unit"
)

// --- Wire encodings ---

func TestCommand_Encodings(t *testing.T) {
	limit, err := SetCurrentLimit(unit.Milliamperes(20))
	require.NoError(t, err)

	diff, err := DifferentialConversion(2)
	require.NoError(t, err)

	ilim, err := SetCurrentLimitDac(4095)
	require.NoError(t, err)

	rng, err := NewCurrentRange(3)
	require.NoError(t, err)
	lock, err := LockCurrentRangeAndClearCalibration(rng)
	require.NoError(t, err)

	curCal, err := WriteCurrentLimitCalibration(rng, 1.5, -0.25)
	require.NoError(t, err)

	cases := []struct {
		cmd  Command
		want string
	}{
		{Enable(), "CH1:ENA"},
		{Disable(), "CH1:DIS"},
		{limit, "CH1:CUR 20"},
		{SetVoltage(unit.Volts(1.5)), "CH1:VOL 1.5"},
		{SetVoltage(unit.Volts(-1)), "CH1:VOL -1"},
		{Measure(unit.Volts(0.5)), "CH1:MEA:VOL 0.5"},
		{SetOverSampleRate(10), "CH1:OSR 10"},
		{SetVoltageDac(2048), "DAC 2048"},
		{diff, "ADC 2"},
		{ilim, "ILIM 4095"},
		{EnableVoltageCalibrationMode(), "CH1:VCAL"},
		{lock, "CH1:RANGE3"},
		{ReadEeprom(16), "*READ 16"},
		{Reset(), "*RST"},
		{Identity(), "*IDN?"},
		{WriteVoltageDacCalibration(1.5, -0.25), "CAL:DAC 1.5 -0.25"},
		{WriteVoltageAdcCalibration(0.5, 2), "CAL:VOL 0.5 2"},
		{curCal, "CAL:CUR:RANGE 3 1.5 -0.25"},
		{WriteCurrentLimitDacCalibration(2, 0), "CAL:ILIM 2 0"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.cmd.Encode(), "wire line of %s", tc.cmd.Name())
	}
}

func TestSetCurrentLimit_MilliampScale(t *testing.T) {
	// The current-limit field travels in milliamps, not amps.
	cmd, err := SetCurrentLimit(unit.Amperes(0.04))
	require.NoError(t, err)
	assert.Equal(t, "CH1:CUR 40", cmd.Encode())
}

func TestSetVoltage_SubNanovoltPrecision(t *testing.T) {
	// Tiny set-points stay in positional decimal; the firmware does not
	// parse exponent notation.
	cmd := SetVoltage(unit.Volts(0.000000001))
	assert.Equal(t, "CH1:VOL 0.000000001", cmd.Encode())

	cmd = SetVoltage(unit.Volts(-5.9604645e-08))
	assert.Equal(t, "CH1:VOL -0.000000059604645", cmd.Encode())
}

// --- Parameter domains ---

func TestSetCurrentLimit_Domain(t *testing.T) {
	_, err := SetCurrentLimit(unit.Milliamperes(0))
	assert.NoError(t, err)

	_, err = SetCurrentLimit(unit.Milliamperes(40))
	assert.NoError(t, err)

	_, err = SetCurrentLimit(unit.Milliamperes(-1))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = SetCurrentLimit(unit.Milliamperes(100))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSetCurrentLimitDac_Domain(t *testing.T) {
	_, err := SetCurrentLimitDac(0)
	assert.NoError(t, err)

	_, err = SetCurrentLimitDac(4095)
	assert.NoError(t, err)

	_, err = SetCurrentLimitDac(4096)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDifferentialConversion_Domain(t *testing.T) {
	_, err := DifferentialConversion(0)
	assert.NoError(t, err)

	_, err = DifferentialConversion(2)
	assert.NoError(t, err)

	_, err = DifferentialConversion(1)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = DifferentialConversion(3)
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.Equal(t, "ADC 0", DifferentialConversionChannelZero().Encode())
	assert.Equal(t, "ADC 2", DifferentialConversionChannelTwo().Encode())
}

func TestCurrentRange_Domain(t *testing.T) {
	for v := uint8(1); v <= 4; v++ {
		r, err := NewCurrentRange(v)
		require.NoError(t, err, "range %d", v)
		assert.Equal(t, CurrentRange(v), r)
	}

	_, err := NewCurrentRange(0)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewCurrentRange(5)
	assert.ErrorIs(t, err, ErrConfiguration)

	// A range smuggled in by conversion is still rejected at command
	// construction.
	_, err = LockCurrentRangeAndClearCalibration(CurrentRange(7))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = WriteCurrentLimitCalibration(CurrentRange(0), 1, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestWriteEeprom_Unsupported(t *testing.T) {
	_, err := WriteEeprom(16, 1.5)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCommand_ResponseShapes(t *testing.T) {
	assert.Equal(t, RespEmpty, Enable().ResponseShape())
	assert.Equal(t, RespMeasurement, Measure(unit.Volts(0)).ResponseShape())
	assert.Equal(t, RespUint, DifferentialConversionChannelZero().ResponseShape())
	assert.Equal(t, RespFloat, ReadEeprom(0).ResponseShape())
	assert.Equal(t, RespIdentity, Identity().ResponseShape())
}

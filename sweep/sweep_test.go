package sweep

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microvolt/go-usmu/unit"
	"github.com/microvolt/go-usmu/usmu"
)

// fakeDevice records the operation sequence and echoes commanded set-points
// back as measurements, offset slightly to mimic ADC read-back.
type fakeDevice struct {
	calls      []string
	setPoints  []unit.Voltage
	measured   []unit.Voltage
	current    unit.Current
	readBack   unit.Voltage // added to the commanded voltage in Measure
	failOn     string       // operation name that fails, empty for none
	enabled    bool
	disabled   bool
	sampleRate uint16
	limit      unit.Current
}

func (d *fakeDevice) fail(op string) error {
	if d.failOn == op {
		return fmt.Errorf("%s: %w", op, errInjected)
	}

	return nil
}

var errInjected = errors.New("injected failure")

func (d *fakeDevice) SetVoltage(v unit.Voltage) error {
	d.calls = append(d.calls, "SetVoltage")
	d.setPoints = append(d.setPoints, v)

	return d.fail("SetVoltage")
}

func (d *fakeDevice) SetCurrentLimit(limit unit.Current) error {
	d.calls = append(d.calls, "SetCurrentLimit")
	d.limit = limit

	return d.fail("SetCurrentLimit")
}

func (d *fakeDevice) Enable() error {
	d.calls = append(d.calls, "Enable")
	d.enabled = true

	return d.fail("Enable")
}

func (d *fakeDevice) Disable() error {
	d.calls = append(d.calls, "Disable")
	d.disabled = true

	return d.fail("Disable")
}

func (d *fakeDevice) SetOverSampleRate(samples uint16) error {
	d.calls = append(d.calls, "SetOverSampleRate")
	d.sampleRate = samples

	return d.fail("SetOverSampleRate")
}

func (d *fakeDevice) Measure(v unit.Voltage) (usmu.MeasureResponse, error) {
	d.calls = append(d.calls, "Measure")
	d.measured = append(d.measured, v)

	if err := d.fail("Measure"); err != nil {
		return usmu.MeasureResponse{}, err
	}

	return usmu.MeasureResponse{
		Voltage: unit.Volts(v.Volts() + d.readBack.Volts()),
		Current: d.current,
	}, nil
}

func basicConfig() Config {
	return Config{
		Start:        unit.Volts(-1),
		End:          unit.Volts(1),
		Steps:        50,
		CurrentLimit: unit.Milliamperes(20),
		OverSampling: 10,
	}
}

func TestRun_SetupSequence(t *testing.T) {
	dev := &fakeDevice{}
	cfg := basicConfig()
	cfg.Steps = 1

	_, err := Run(dev, cfg)
	require.NoError(t, err)

	// Voltage, limit, enable, oversampling, then the ramp, then disable.
	assert.Equal(t, []string{
		"SetVoltage", "SetCurrentLimit", "Enable", "SetOverSampleRate",
		"SetVoltage", "Measure",
		"Disable",
	}, dev.calls)
	assert.Equal(t, unit.Milliamperes(20), dev.limit)
	assert.Equal(t, uint16(10), dev.sampleRate)
}

func TestRun_LinearSetPoints(t *testing.T) {
	dev := &fakeDevice{}

	samples, err := Run(dev, basicConfig())
	require.NoError(t, err)
	require.Len(t, samples, 50)

	// dev.setPoints[0] is the pre-ramp start voltage; the ramp follows.
	ramp := dev.setPoints[1:]
	require.Len(t, ramp, 50)

	assert.Equal(t, unit.Volts(-1), ramp[0], "first set-point is exactly the start")
	assert.Equal(t, unit.Volts(1), ramp[49], "last set-point is exactly the end")

	spacing := float32(2) / 49
	for i := 1; i < len(ramp); i++ {
		assert.InDelta(t, spacing, ramp[i].Volts()-ramp[i-1].Volts(), 1e-6,
			"spacing between steps %d and %d", i-1, i)
	}

	// Measurements are requested at the commanded set-points.
	assert.Equal(t, ramp, dev.measured)
}

func TestRun_SingleStep(t *testing.T) {
	dev := &fakeDevice{}
	cfg := basicConfig()
	cfg.Steps = 1

	samples, err := Run(dev, cfg)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	assert.Equal(t, []unit.Voltage{unit.Volts(-1)}, dev.measured,
		"a single step sweeps exactly the start voltage")
}

func TestRun_ReportsMeasuredNotCommanded(t *testing.T) {
	dev := &fakeDevice{
		readBack: unit.Volts(0.01),
		current:  unit.Amperes(0.002),
	}
	cfg := basicConfig()
	cfg.Steps = 2

	samples, err := Run(dev, cfg)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.InDelta(t, -0.99, samples[0].Voltage.Volts(), 1e-6,
		"the ADC read-back is reported, not the set-point")
	assert.Equal(t, unit.Amperes(0.002), samples[0].Current)
}

func TestRun_DownwardRamp(t *testing.T) {
	dev := &fakeDevice{}
	cfg := basicConfig()
	cfg.Start = unit.Volts(1)
	cfg.End = unit.Volts(-1)
	cfg.Steps = 3

	_, err := Run(dev, cfg)
	require.NoError(t, err)

	assert.Equal(t, []unit.Voltage{
		unit.Volts(1), unit.Volts(0), unit.Volts(-1),
	}, dev.measured)
}

func TestRun_InvalidStepCount(t *testing.T) {
	dev := &fakeDevice{}
	cfg := basicConfig()
	cfg.Steps = 0

	_, err := Run(dev, cfg)
	assert.ErrorIs(t, err, usmu.ErrConfiguration)
	assert.Empty(t, dev.calls, "nothing is sent for an invalid config")
}

func TestRun_MidSweepFailure(t *testing.T) {
	dev := &fakeDevice{failOn: "Measure"}

	_, err := Run(dev, basicConfig())
	assert.ErrorIs(t, err, errInjected, "failures propagate unchanged")
	assert.False(t, dev.disabled, "output stays in its last state on failure")
}

func TestRun_DisableAfterLastStep(t *testing.T) {
	dev := &fakeDevice{}

	_, err := Run(dev, basicConfig())
	require.NoError(t, err)

	require.NotEmpty(t, dev.calls)
	assert.Equal(t, "Disable", dev.calls[len(dev.calls)-1])
}

func TestSetPoints_EndpointsExact(t *testing.T) {
	pts := setPoints(-1, 1, 50)
	require.Len(t, pts, 50)
	assert.Equal(t, float32(-1), pts[0])
	assert.Equal(t, float32(1), pts[49])

	pts = setPoints(0.5, 0.5, 1)
	assert.Equal(t, []float32{0.5}, pts)
}

// Package sweep records an IV curve by ramping a uSMU through a linear
// voltage sweep and measuring the current response at every step.
package sweep

import (
	"fmt"
	"time"

	"github.com/microvolt/go-usmu/unit"
	"github.com/microvolt/go-usmu/usmu"
)

// Device is the slice of the uSMU driver a sweep needs. *usmu.Device
// satisfies it.
type Device interface {
	SetVoltage(voltage unit.Voltage) error
	SetCurrentLimit(limit unit.Current) error
	Enable() error
	Disable() error
	SetOverSampleRate(samples uint16) error
	Measure(voltage unit.Voltage) (usmu.MeasureResponse, error)
}

var _ Device = (*usmu.Device)(nil)

// Config describes one voltage sweep.
type Config struct {
	// Start and End are the first and last commanded set-points. Both are
	// included in the sweep; Start may exceed End for a downward ramp.
	Start unit.Voltage
	End   unit.Voltage

	// Steps is the number of set-points, linearly spaced between Start and
	// End. Must be at least 1; a single step sweeps exactly Start.
	Steps int

	// CurrentLimit is the absolute sink/source current limit applied before
	// the output is enabled.
	CurrentLimit unit.Current

	// OverSampling is the number of raw samples the device averages per
	// measurement. High values lengthen the measurement and can exceed the
	// device read timeout.
	OverSampling uint16

	// Delay is the pause between commanding a set-point and measuring it.
	Delay time.Duration
}

// Validate checks the sweep parameters that the device does not.
func (cfg *Config) Validate() error {
	if cfg.Steps < 1 {
		return fmt.Errorf("%w: step count %d, must be at least 1", usmu.ErrConfiguration, cfg.Steps)
	}
	if cfg.Delay < 0 {
		return fmt.Errorf("%w: negative inter-step delay %v", usmu.ErrConfiguration, cfg.Delay)
	}

	return nil
}

// Sample is one recorded point of the IV curve: the measured voltage
// (ADC read-back, which may differ slightly from the commanded set-point)
// and the measured current.
type Sample struct {
	Voltage unit.Voltage
	Current unit.Current
}

// Run executes the sweep on dev and returns one Sample per step, in step
// order.
//
// Steps execute strictly in sequence; the protocol and the device are both
// single-channel and half-duplex, so there is nothing to parallelize. Any
// failure is returned immediately with the samples gathered so far
// discarded; the output is disabled only on the successful completion path,
// so after a mid-sweep failure the device may still be driving the last
// commanded set-point.
func Run(dev Device, cfg Config) ([]Sample, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := dev.SetVoltage(cfg.Start); err != nil {
		return nil, err
	}
	if err := dev.SetCurrentLimit(cfg.CurrentLimit); err != nil {
		return nil, err
	}
	if err := dev.Enable(); err != nil {
		return nil, err
	}
	if err := dev.SetOverSampleRate(cfg.OverSampling); err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, cfg.Steps)

	for _, setPoint := range setPoints(cfg.Start.Volts(), cfg.End.Volts(), cfg.Steps) {
		voltage := unit.Volts(setPoint)

		if err := dev.SetVoltage(voltage); err != nil {
			return nil, err
		}

		time.Sleep(cfg.Delay)

		m, err := dev.Measure(voltage)
		if err != nil {
			return nil, err
		}

		samples = append(samples, Sample{Voltage: m.Voltage, Current: m.Current})
	}

	if err := dev.Disable(); err != nil {
		return nil, err
	}

	return samples, nil
}

// setPoints returns n voltages linearly spaced from start to end, inclusive
// of both endpoints. n=1 yields exactly start.
func setPoints(start, end float32, n int) []float32 {
	if n == 1 {
		return []float32{start}
	}

	points := make([]float32, n)
	spacing := (end - start) / float32(n-1)
	for i := range points {
		points[i] = start + float32(i)*spacing
	}
	// Pin the final point: accumulated rounding must not move the endpoint.
	points[n-1] = end

	return points
}

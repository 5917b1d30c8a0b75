package usmu

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/microvolt/go-usmu/logger"
	"github.com/microvolt/go-usmu/scpi"
	"github.com/microvolt/go-usmu/unit"
)

// Port is the byte transport a [Device] drives.
//
// go.bug.st/serial's Port satisfies it; tests substitute an in-memory
// implementation.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Device is an open connection to a uSMU.
//
// A Device is the exclusive owner of its serial handle: the link is
// half-duplex and the firmware is single-threaded, so only one command may
// be in flight and a Device must not be used from more than one goroutine.
//
// Operations follow the cycle send, settle delay, optional reply. A
// successful [Device.Reset] or an unrecoverable I/O failure closes the
// connection; every later operation fails with [ErrConnectionClosed].
type Device struct {
	port   Port
	cfg    *DeviceConfig
	logger logger.Logger
	closed bool
}

// Open opens the uSMU attached at the given serial port path.
func Open(path string, opts ...DeviceOption) (*Device, error) {
	cfg, err := NewDeviceConfig(opts...)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, &serial.Mode{BaudRate: cfg.baudRate})
	if err != nil {
		return nil, fmt.Errorf("usmu: open %s: %w", path, err)
	}

	dev, err := newDevice(port, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	dev.logger.Debug("device opened", "path", path, "baudRate", cfg.baudRate)

	return dev, nil
}

// NewDevice creates a Device over an already-open transport. Intended for
// tests and custom transports; production code normally uses [Open] or
// [Discover].
func NewDevice(port Port, opts ...DeviceOption) (*Device, error) {
	cfg, err := NewDeviceConfig(opts...)
	if err != nil {
		return nil, err
	}

	return newDevice(port, cfg)
}

func newDevice(port Port, cfg *DeviceConfig) (*Device, error) {
	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		return nil, fmt.Errorf("usmu: set read timeout: %w", err)
	}

	return &Device{
		port:   port,
		cfg:    cfg,
		logger: cfg.logger,
	}, nil
}

// Close closes the underlying serial port. The Device must not be used
// afterwards.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	return d.port.Close()
}

// Send transmits a command that expects no reply, then holds the settle
// delay.
//
// The delay is a mandatory minimum spacing between commands, not a response
// wait; it elapses even though no reply will come.
func (d *Device) Send(cmd Command) error {
	if cmd.ResponseShape() != RespEmpty {
		return fmt.Errorf("%w: command %s expects a reply, use Query", ErrConfiguration, cmd.Name())
	}

	return d.write(cmd)
}

// Query transmits a command, holds the settle delay, then reads and decodes
// exactly one terminated reply line.
//
// The read blocks for the device's actual measurement latency, invisible
// until the reply arrives or the read timeout fires with [ErrTimeout].
// Neither a timeout nor a malformed reply is retried.
func (d *Device) Query(cmd Command) (Response, error) {
	if cmd.ResponseShape() == RespEmpty {
		return nil, fmt.Errorf("%w: command %s expects no reply, use Send", ErrConfiguration, cmd.Name())
	}

	if err := d.write(cmd); err != nil {
		return nil, err
	}

	line, err := d.readLine()
	if err != nil {
		return nil, fmt.Errorf("usmu: read reply to %s: %w", cmd.Name(), err)
	}

	resp, err := DecodeResponse(cmd.ResponseShape(), line)
	if err != nil {
		return nil, fmt.Errorf("usmu: decode reply to %s: %w", cmd.Name(), err)
	}

	return resp, nil
}

// write encodes cmd, transmits it as a single terminated line, and holds
// the settle delay.
func (d *Device) write(cmd Command) error {
	if d.closed {
		return ErrConnectionClosed
	}

	line := cmd.Encode()
	if !scpi.ValidLine(line) {
		return fmt.Errorf("%w: command %s encodes to an invalid line %q", ErrConfiguration, cmd.Name(), line)
	}

	d.logger.Debug("send command", "name", cmd.Name(), "line", line)

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, scpi.Terminator...)

	if err := d.writeAll(buf); err != nil {
		// Link-level write failures are unrecoverable for this connection.
		d.closed = true
		return fmt.Errorf("usmu: write %s: %w", cmd.Name(), err)
	}

	// The device cannot accept another command inside this window, whether
	// or not a reply is expected.
	time.Sleep(d.cfg.settleDelay)

	return nil
}

// writeAll writes all bytes in data to the port.
func (d *Device) writeAll(data []byte) error {
	for written := 0; written < len(data); {
		n, err := d.port.Write(data[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}

// readLine accumulates bytes until a terminator arrives.
//
// The returned string includes the terminator and any bytes the port
// delivered after it; the decoder rejects such trailing data. A zero-byte
// read signals an expired read timeout (go.bug.st/serial reports timeouts
// as n=0 with a nil error).
func (d *Device) readLine() (string, error) {
	var buf []byte
	chunk := make([]byte, 64)

	for {
		n, err := d.port.Read(chunk)
		if err != nil {
			d.closed = true
			return "", err
		}
		if n == 0 {
			return "", fmt.Errorf("no reply within %v: %w", d.cfg.readTimeout, ErrTimeout)
		}

		buf = append(buf, chunk[:n]...)
		if bytes.IndexByte(buf, '\n') >= 0 {
			return string(buf), nil
		}
	}
}

// --- Catalog operations ---

// Enable enables the SMU output.
func (d *Device) Enable() error {
	return d.Send(Enable())
}

// Disable disables the SMU output (high impedance).
func (d *Device) Disable() error {
	return d.Send(Disable())
}

// SetCurrentLimit sets the sink/source current limit.
//
// The limit is an absolute value applied to both source and sink current,
// although sink induces a negative sign in the measurements.
func (d *Device) SetCurrentLimit(limit unit.Current) error {
	cmd, err := SetCurrentLimit(limit)
	if err != nil {
		return err
	}

	return d.Send(cmd)
}

// SetVoltage sets the output to the requested voltage level.
func (d *Device) SetVoltage(voltage unit.Voltage) error {
	return d.Send(SetVoltage(voltage))
}

// Measure sets the output to the requested voltage level and returns the
// measured voltage and current.
func (d *Device) Measure(voltage unit.Voltage) (MeasureResponse, error) {
	resp, err := d.Query(Measure(voltage))
	if err != nil {
		return MeasureResponse{}, err
	}

	return resp.(MeasureResponse), nil
}

// SetOverSampleRate sets the number of raw samples averaged per reported
// measurement.
func (d *Device) SetOverSampleRate(samples uint16) error {
	return d.Send(SetOverSampleRate(samples))
}

// SetVoltageDac sets the voltage DAC to the given level.
func (d *Device) SetVoltageDac(level uint16) error {
	return d.Send(SetVoltageDac(level))
}

// DifferentialConversion performs a differential conversion between
// adjacent ADC channels and returns the raw value. Only channels 0 and 2
// are valid.
func (d *Device) DifferentialConversion(channel uint8) (uint16, error) {
	cmd, err := DifferentialConversion(channel)
	if err != nil {
		return 0, err
	}

	resp, err := d.Query(cmd)
	if err != nil {
		return 0, err
	}

	return resp.(ValueResponse).Value, nil
}

// SetCurrentLimitDac sets the current-limit DAC to the given level.
func (d *Device) SetCurrentLimitDac(level uint16) error {
	cmd, err := SetCurrentLimitDac(level)
	if err != nil {
		return err
	}

	return d.Send(cmd)
}

// EnableVoltageCalibrationMode enables voltage calibration mode.
func (d *Device) EnableVoltageCalibrationMode() error {
	return d.Send(EnableVoltageCalibrationMode())
}

// LockCurrentRangeAndClearCalibration locks the given current range and
// temporarily clears the current calibration data.
func (d *Device) LockCurrentRangeAndClearCalibration(r CurrentRange) error {
	cmd, err := LockCurrentRangeAndClearCalibration(r)
	if err != nil {
		return err
	}

	return d.Send(cmd)
}

// ReadEeprom reads the float stored at the given EEPROM address.
func (d *Device) ReadEeprom(address uint8) (float32, error) {
	resp, err := d.Query(ReadEeprom(address))
	if err != nil {
		return 0, err
	}

	return resp.(FloatResponse).Value, nil
}

// WriteEeprom always fails with [ErrUnsupported]. The documented wire
// format of the EEPROM write command disagrees with the firmware
// implementation, which makes the command unsafe to send; use the dedicated
// calibration write commands instead.
func (d *Device) WriteEeprom(address uint8, value float32) error {
	_, err := WriteEeprom(address, value)
	return err
}

// Reset resets the uSMU. The virtual COM port disconnects, so the
// connection is closed regardless of the outcome and the device must be
// rediscovered.
func (d *Device) Reset() error {
	err := d.Send(Reset())

	d.closed = true
	_ = d.port.Close()

	return err
}

// Identity reads the uSMU identification.
func (d *Device) Identity() (uint32, error) {
	resp, err := d.Query(Identity())
	if err != nil {
		return 0, err
	}

	return resp.(IdentityResponse).UID, nil
}

// WriteVoltageDacCalibration writes the voltage DAC calibration to EEPROM.
func (d *Device) WriteVoltageDacCalibration(slope, intercept float32) error {
	return d.Send(WriteVoltageDacCalibration(slope, intercept))
}

// WriteVoltageAdcCalibration writes the voltage ADC calibration to EEPROM.
func (d *Device) WriteVoltageAdcCalibration(slope, intercept float32) error {
	return d.Send(WriteVoltageAdcCalibration(slope, intercept))
}

// WriteCurrentLimitCalibration writes the current ADC calibration for the
// given range to EEPROM.
func (d *Device) WriteCurrentLimitCalibration(r CurrentRange, slope, intercept float32) error {
	cmd, err := WriteCurrentLimitCalibration(r, slope, intercept)
	if err != nil {
		return err
	}

	return d.Send(cmd)
}

// WriteCurrentLimitDacCalibration writes the current-limit DAC calibration
// to EEPROM.
func (d *Device) WriteCurrentLimitDacCalibration(slope, intercept float32) error {
	return d.Send(WriteCurrentLimitDacCalibration(slope, intercept))
}

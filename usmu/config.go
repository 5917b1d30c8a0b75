package usmu

import (
	"errors"
	"fmt"
	"time"

	"github.com/microvolt/go-usmu/logger"
)

// Serial link defaults. The settle delay and read timeout come from the
// device's observed timing behavior: it cannot accept a new command within
// 50 ms of the previous one, and it withholds measurement replies for the
// full measurement duration, so the read timeout must cover the worst-case
// latency. High oversampling configurations can still exceed the default;
// raise it with [WithReadTimeout].
const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 1000 * time.Millisecond
	DefaultSettleDelay = 50 * time.Millisecond
)

// DeviceConfig holds the configuration of a [Device].
type DeviceConfig struct {
	baudRate    int
	readTimeout time.Duration
	settleDelay time.Duration
	logger      logger.Logger
}

// NewDeviceConfig creates a device configuration with the defaults above,
// then applies opts in order.
func NewDeviceConfig(opts ...DeviceOption) (*DeviceConfig, error) {
	cfg := &DeviceConfig{
		baudRate:    DefaultBaudRate,
		readTimeout: DefaultReadTimeout,
		settleDelay: DefaultSettleDelay,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// BaudRate returns the configured baud rate.
func (cfg *DeviceConfig) BaudRate() int { return cfg.baudRate }

// ReadTimeout returns the per-reply read timeout.
func (cfg *DeviceConfig) ReadTimeout() time.Duration { return cfg.readTimeout }

// SettleDelay returns the mandatory pause after each transmitted command.
func (cfg *DeviceConfig) SettleDelay() time.Duration { return cfg.settleDelay }

// GetLogger returns the configured logger.
func (cfg *DeviceConfig) GetLogger() logger.Logger { return cfg.logger }

// DeviceOption is a functional option for configuring a [Device].
type DeviceOption interface {
	apply(*DeviceConfig) error
}

type deviceOptFunc func(*DeviceConfig) error

func (f deviceOptFunc) apply(cfg *DeviceConfig) error { return f(cfg) }

// WithBaudRate sets the serial baud rate.
func WithBaudRate(rate int) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if rate <= 0 {
			return fmt.Errorf("usmu: baud rate %d must be positive", rate)
		}
		cfg.baudRate = rate

		return nil
	})
}

// WithReadTimeout sets the per-reply read timeout.
func WithReadTimeout(d time.Duration) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if d <= 0 {
			return errors.New("usmu: read timeout must be positive")
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithSettleDelay sets the pause held after each transmitted command.
//
// The default matches the device's minimum spacing; smaller values risk
// I/O timeouts on the next command.
func WithSettleDelay(d time.Duration) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if d < 0 {
			return errors.New("usmu: settle delay must not be negative")
		}
		cfg.settleDelay = d

		return nil
	})
}

// WithLogger sets the logger for the device.
func WithLogger(l logger.Logger) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if l == nil {
			return errors.New("usmu: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

package usmu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microvolt/go-usmu/logger"
)

func TestNewDeviceConfig_Defaults(t *testing.T) {
	cfg, err := NewDeviceConfig()
	require.NoError(t, err)

	assert.Equal(t, 9600, cfg.BaudRate())
	assert.Equal(t, 1000*time.Millisecond, cfg.ReadTimeout())
	assert.Equal(t, 50*time.Millisecond, cfg.SettleDelay())
	assert.NotNil(t, cfg.GetLogger())
}

func TestNewDeviceConfig_Options(t *testing.T) {
	mockLogger := logger.NewMockLogger()

	cfg, err := NewDeviceConfig(
		WithBaudRate(115200),
		WithReadTimeout(5*time.Second),
		WithSettleDelay(10*time.Millisecond),
		WithLogger(mockLogger),
	)
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.BaudRate())
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout())
	assert.Equal(t, 10*time.Millisecond, cfg.SettleDelay())
	assert.Same(t, logger.Logger(mockLogger), cfg.GetLogger())
}

func TestNewDeviceConfig_InvalidOptions(t *testing.T) {
	_, err := NewDeviceConfig(WithBaudRate(0))
	assert.Error(t, err)

	_, err = NewDeviceConfig(WithReadTimeout(0))
	assert.Error(t, err)

	_, err = NewDeviceConfig(WithSettleDelay(-time.Millisecond))
	assert.Error(t, err)

	_, err = NewDeviceConfig(WithLogger(nil))
	assert.Error(t, err)
}

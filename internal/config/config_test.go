package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "motion_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMinimalConfig(t *testing.T) {
	path := writeConfig(t, `
# minimal setup
MQTT_BROKER=tcp://localhost:1883
MOTION_SOURCE=mock
TOPIC_THETA=camera/theta
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "mock", cfg.MotionSource)
	assert.Equal(t, "camera/theta", cfg.TopicTheta)

	// Filter defaults survive when not overridden.
	assert.Equal(t, 0.98, cfg.FilterAlpha)
	assert.Equal(t, math.Pi, cfg.InitialYawRad)
	assert.Equal(t, 1.0, cfg.GyroScaleX)
}

func TestLoadFilterOverrides(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MOTION_SOURCE=mock
TOPIC_THETA=camera/theta
FILTER_ALPHA=0.9
GYRO_SCALE_X=0.0175
GYRO_SCALE_Y=0.0175
GYRO_SCALE_Z=0.0175
INITIAL_YAW_RAD=0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.FilterAlpha)
	assert.Equal(t, 0.0175, cfg.GyroScaleZ)
	assert.Equal(t, 0.0, cfg.InitialYawRad)
}

func TestLoadRejectsAlphaOutOfRange(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MOTION_SOURCE=mock
TOPIC_THETA=camera/theta
FILTER_ALPHA=1.0
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "FILTER_ALPHA")
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MOTION_SOURCE=mock
TOPIC_THETA=camera/theta
NOT_A_KEY=1
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown config key")
}

func TestLoadRequiresSerialSettingsForNMEASource(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MOTION_SOURCE=nmea
TOPIC_THETA=camera/theta
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "SERIAL_PORT")
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	path := writeConfig(t, "MQTT_BROKER tcp://localhost:1883\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid config line")
}

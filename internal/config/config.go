package config

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicTheta string
	TopicGyro  string
	TopicAccel string
	TopicPose  string

	// Motion source selection: "mock", "pose_mock", "nmea", "mpu9250"
	MotionSource string

	// Serial source (NMEA IMU bridge)
	SerialPort string
	SerialBaud int

	// MPU-9250 source
	IMUSPIDevice      string
	IMUCSPin          string
	IMUPollIntervalMS int

	// Mock source rates
	MockGyroRateHz  int
	MockAccelRateHz int

	// Fusion filter. Alpha is the gyro weight in (0,1); the scale factors
	// convert raw gyro units per axis; InitialYawRad is the heading
	// convention applied on the first accelerometer sample.
	FilterAlpha   float64
	GyroScaleX    float64
	GyroScaleY    float64
	GyroScaleZ    float64
	InitialYawRad float64

	// Timing
	PublishIntervalMS int // producer → MQTT cadence
	ViewerIntervalMS  int // local viewer poll cadence

	// Web server
	WebServerPort int

	// Display
	DisplayUpdateIntervalMS int
}

// Package-level singleton: unexported so other packages go through
// InitGlobal/Get, which serialize access.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config with the filter and timing values used by the
// stock camera module. Everything else must come from the file.
func defaults() *Config {
	return &Config{
		FilterAlpha:             0.98,
		GyroScaleX:              1,
		GyroScaleY:              1,
		GyroScaleZ:              1,
		InitialYawRad:           math.Pi,
		MockGyroRateHz:          200,
		MockAccelRateHz:         63,
		PublishIntervalMS:       100,
		ViewerIntervalMS:        33,
		IMUPollIntervalMS:       5,
		DisplayUpdateIntervalMS: 200,
		WebServerPort:           8080,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_THETA":
		c.TopicTheta = value
	case "TOPIC_GYRO":
		c.TopicGyro = value
	case "TOPIC_ACCEL":
		c.TopicAccel = value
	case "TOPIC_POSE":
		c.TopicPose = value

	// Source
	case "MOTION_SOURCE":
		switch value {
		case "mock", "pose_mock", "nmea", "mpu9250":
			c.MotionSource = value
		default:
			return fmt.Errorf("MOTION_SOURCE must be mock, pose_mock, nmea or mpu9250, got %q", value)
		}
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD":
		baud, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD %q: %w", value, err)
		}
		c.SerialBaud = baud
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_POLL_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_POLL_INTERVAL_MS %q: %w", value, err)
		}
		c.IMUPollIntervalMS = interval
	case "MOCK_GYRO_RATE_HZ":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_GYRO_RATE_HZ %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("MOCK_GYRO_RATE_HZ must be positive, got %d", rate)
		}
		c.MockGyroRateHz = rate
	case "MOCK_ACCEL_RATE_HZ":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_ACCEL_RATE_HZ %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("MOCK_ACCEL_RATE_HZ must be positive, got %d", rate)
		}
		c.MockAccelRateHz = rate

	// Fusion filter
	case "FILTER_ALPHA":
		alpha, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FILTER_ALPHA %q: %w", value, err)
		}
		if alpha <= 0 || alpha >= 1 {
			return fmt.Errorf("FILTER_ALPHA must be in (0,1), got %v", alpha)
		}
		c.FilterAlpha = alpha
	case "GYRO_SCALE_X":
		scale, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GYRO_SCALE_X %q: %w", value, err)
		}
		c.GyroScaleX = scale
	case "GYRO_SCALE_Y":
		scale, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GYRO_SCALE_Y %q: %w", value, err)
		}
		c.GyroScaleY = scale
	case "GYRO_SCALE_Z":
		scale, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GYRO_SCALE_Z %q: %w", value, err)
		}
		c.GyroScaleZ = scale
	case "INITIAL_YAW_RAD":
		yaw, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid INITIAL_YAW_RAD %q: %w", value, err)
		}
		c.InitialYawRad = yaw

	// Timing
	case "PUBLISH_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PUBLISH_INTERVAL_MS %q: %w", value, err)
		}
		c.PublishIntervalMS = interval
	case "VIEWER_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid VIEWER_INTERVAL_MS %q: %w", value, err)
		}
		c.ViewerIntervalMS = interval

	// Web server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL_MS %q: %w", value, err)
		}
		c.DisplayUpdateIntervalMS = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.MotionSource == "" {
		return fmt.Errorf("MOTION_SOURCE is required")
	}
	if c.TopicTheta == "" {
		return fmt.Errorf("TOPIC_THETA is required")
	}
	if c.MotionSource == "nmea" {
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for the nmea source")
		}
		if c.SerialBaud == 0 {
			return fmt.Errorf("SERIAL_BAUD is required for the nmea source")
		}
	}
	if c.MotionSource == "mpu9250" {
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for the mpu9250 source")
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required for the mpu9250 source")
		}
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

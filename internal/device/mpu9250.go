// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

// mpu9250Source polls an MPU-9250 over SPI and forwards raw gyro and accel
// counts as motion frames. Unit conversion is the estimator's calibration
// concern; timestamps are host-clock milliseconds since Start.
type mpu9250Source struct {
	spiDevice    string
	csPin        string
	pollInterval time.Duration

	mu      sync.Mutex
	started bool
	imu     *mpu9250.MPU9250
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewMPU9250 creates an MPU-9250 SPI source polled at pollInterval.
func NewMPU9250(spiDevice, csPin string, pollInterval time.Duration) motion.Source {
	return &mpu9250Source{
		spiDevice:    spiDevice,
		csPin:        csPin,
		pollInterval: pollInterval,
	}
}

func (s *mpu9250Source) Capability() motion.Capability { return motion.CapabilityIMU }

func (s *mpu9250Source) Start(h motion.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return motion.ErrAlreadyStarted
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("mpu9250: periph host init: %w", err)
	}

	cs := gpioreg.ByName(s.csPin)
	if cs == nil {
		return fmt.Errorf("mpu9250: CS pin %q not found", s.csPin)
	}

	tr, err := mpu9250.NewSpiTransport(s.spiDevice, cs)
	if err != nil {
		return fmt.Errorf("mpu9250: SPI transport (%s): %w", s.spiDevice, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return fmt.Errorf("mpu9250: device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return fmt.Errorf("mpu9250: initialization: %w", err)
	}

	if _, err := imu.SelfTest(); err != nil {
		log.Printf("Warning: mpu9250 self-test failed: %v", err)
	}
	if err := imu.Calibrate(); err != nil {
		log.Printf("Warning: mpu9250 calibration failed: %v", err)
	}

	s.imu = imu
	s.started = true
	s.stop = make(chan struct{})
	log.Printf("mpu9250: initialized on %s (CS %s), polling every %s", s.spiDevice, s.csPin, s.pollInterval)

	start := time.Now()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pollLoop(h, start)
	}()
	return nil
}

func (s *mpu9250Source) pollLoop(h motion.Handler, start time.Time) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			ms := float64(now.Sub(start).Microseconds()) / 1000.0

			gx, err := s.imu.GetRotationX()
			if err != nil {
				log.Printf("mpu9250: gyro X read error: %v", err)
				continue
			}
			gy, err := s.imu.GetRotationY()
			if err != nil {
				log.Printf("mpu9250: gyro Y read error: %v", err)
				continue
			}
			gz, err := s.imu.GetRotationZ()
			if err != nil {
				log.Printf("mpu9250: gyro Z read error: %v", err)
				continue
			}
			h(motion.GyroFrame(motion.GyroSample{
				X:         float64(gx),
				Y:         float64(gy),
				Z:         float64(gz),
				Timestamp: ms,
			}))

			ax, err := s.imu.GetAccelerationX()
			if err != nil {
				log.Printf("mpu9250: accel X read error: %v", err)
				continue
			}
			ay, err := s.imu.GetAccelerationY()
			if err != nil {
				log.Printf("mpu9250: accel Y read error: %v", err)
				continue
			}
			az, err := s.imu.GetAccelerationZ()
			if err != nil {
				log.Printf("mpu9250: accel Z read error: %v", err)
				continue
			}
			h(motion.AccelFrame(motion.AccelSample{
				X: float64(ax),
				Y: float64(ay),
				Z: float64(az),
			}))
		}
	}
}

func (s *mpu9250Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	close(s.stop)
	s.wg.Wait()
	s.started = false
	return nil
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

// mockIMUSource generates smooth synthetic gyro and accel streams on
// independent tickers, so the two streams arrive unsynchronized just like
// real hardware channels.
type mockIMUSource struct {
	gyroInterval  time.Duration
	accelInterval time.Duration

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewMockIMU creates a mock IMU source emitting gyro samples at gyroRateHz
// and accelerometer samples at accelRateHz.
func NewMockIMU(gyroRateHz, accelRateHz int) motion.Source {
	return &mockIMUSource{
		gyroInterval:  time.Second / time.Duration(gyroRateHz),
		accelInterval: time.Second / time.Duration(accelRateHz),
	}
}

func (m *mockIMUSource) Capability() motion.Capability { return motion.CapabilityIMU }

func (m *mockIMUSource) Start(h motion.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return motion.ErrAlreadyStarted
	}
	m.started = true
	m.stop = make(chan struct{})

	start := time.Now()

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.gyroInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case now := <-ticker.C:
				t := now.Sub(start).Seconds()
				h(motion.GyroFrame(motion.GyroSample{
					X:         0.4 * math.Sin(t),
					Y:         0.2 * math.Sin(0.5*t),
					Z:         0.3 * math.Cos(0.8*t),
					Timestamp: now.Sub(start).Seconds() * 1000,
				}))
			}
		}
	}()
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.accelInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case now := <-ticker.C:
				t := now.Sub(start).Seconds()
				// Gravity vector of a gently tilting body, in g.
				h(motion.AccelFrame(motion.AccelSample{
					X: 0.2 * math.Sin(0.3*t),
					Y: 0.15 * math.Cos(0.2*t),
					Z: 1,
				}))
			}
		}
	}()
	return nil
}

func (m *mockIMUSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	close(m.stop)
	m.wg.Wait()
	m.started = false
	return nil
}

// mockPoseSource emits a pre-fused pose sweeping slowly around the vertical
// axis, standing in for a device with on-board tracking.
type mockPoseSource struct {
	mu      sync.Mutex
	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewMockPose creates a mock pose-capable source.
func NewMockPose() motion.Source {
	return &mockPoseSource{}
}

func (m *mockPoseSource) Capability() motion.Capability { return motion.CapabilityPose }

func (m *mockPoseSource) Start(h motion.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return motion.ErrAlreadyStarted
	}
	m.started = true
	m.stop = make(chan struct{})

	start := time.Now()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(5 * time.Millisecond) // 200 Hz pose stream
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case now := <-ticker.C:
				a := 0.2 * now.Sub(start).Seconds() // heading angle, rad
				h(motion.PoseFrame(motion.PoseSample{
					Translation: [3]float64{0.1 * math.Cos(a), 0, 0.1 * math.Sin(a)},
					Rotation: motion.Quaternion{
						Y: math.Sin(a / 2),
						W: math.Cos(a / 2),
					},
				}))
			}
		}
	}()
	return nil
}

func (m *mockPoseSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	close(m.stop)
	m.wg.Wait()
	m.started = false
	return nil
}

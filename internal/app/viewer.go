// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/camera_motion/internal/config"
	"github.com/relabs-tech/camera_motion/internal/device"
	"github.com/relabs-tech/camera_motion/internal/motion"
	"github.com/relabs-tech/camera_motion/internal/orientation"
)

// RunViewer runs the whole chain in one process: the configured source
// feeds the estimator from its delivery goroutines while a local display
// loop polls the estimate at its own cadence. The two sides share nothing
// but the estimator itself.
func RunViewer() error {
	cfg := config.Get()

	src, err := device.FromConfig(cfg)
	if err != nil {
		return err
	}
	if src.Capability() != motion.CapabilityIMU {
		return fmt.Errorf("viewer: source %q has no IMU streams to fuse", cfg.MotionSource)
	}

	est, err := orientation.NewEstimator(orientation.Config{
		Alpha: cfg.FilterAlpha,
		GyroScale: orientation.GyroScale{
			X: cfg.GyroScaleX,
			Y: cfg.GyroScaleY,
			Z: cfg.GyroScaleZ,
		},
		InitialYaw: cfg.InitialYawRad,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := src.Start(func(f motion.Frame) {
		switch f.Kind {
		case motion.StreamGyro:
			est.ProcessGyro(f.Gyro)
		case motion.StreamAccel:
			est.ProcessAccel(f.Accel)
		}
	}); err != nil {
		return err
	}

	log.Printf("viewer: %s source started, polling theta every %dms", cfg.MotionSource, cfg.ViewerIntervalMS)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(cfg.ViewerIntervalMS) * time.Millisecond)
		defer ticker.Stop()

		deg := 180 / math.Pi
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				th := est.Theta()
				fmt.Printf("PITCH=%7.2f  YAW=%7.2f  ROLL=%7.2f deg\r",
					th.Pitch*deg, th.Yaw*deg, th.Roll*deg)
			}
		}
	})

	err = g.Wait()
	fmt.Println()
	log.Println("viewer: shutting down")
	if stopErr := src.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

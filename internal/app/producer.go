package app

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/camera_motion/internal/config"
	"github.com/relabs-tech/camera_motion/internal/device"
	"github.com/relabs-tech/camera_motion/internal/motion"
	"github.com/relabs-tech/camera_motion/internal/orientation"
)

// RunMotionProducer starts the configured motion source, fuses IMU streams
// into an orientation estimate (or passes a device pose straight through),
// and publishes the result over MQTT.
func RunMotionProducer() error {
	log.Println("starting camera-motion producer")

	cfg := config.Get()

	src, err := device.FromConfig(cfg)
	if err != nil {
		return err
	}
	log.Printf("producer: using %s source (%s capability)", cfg.MotionSource, src.Capability())

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Println("producer: connected to MQTT, starting publish loop")

	switch src.Capability() {
	case motion.CapabilityPose:
		return runPosePassthrough(client, cfg, src)
	default:
		return runFusedProducer(client, cfg, src)
	}
}

// runFusedProducer routes gyro and accel frames into the estimator from
// the source's delivery goroutines, and publishes the fused theta plus the
// latest raw samples on a fixed cadence.
func runFusedProducer(client mqtt.Client, cfg *config.Config, src motion.Source) error {
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

	// Latest raw samples, kept for the raw topics only. The estimator has
	// its own guard.
	var (
		rawMu     sync.RWMutex
		lastGyro  motion.GyroSample
		lastAccel motion.AccelSample
		haveGyro  bool
		haveAccel bool
	)

	err = src.Start(func(f motion.Frame) {
		switch f.Kind {
		case motion.StreamGyro:
			est.ProcessGyro(f.Gyro)
			rawMu.Lock()
			lastGyro, haveGyro = f.Gyro, true
			rawMu.Unlock()
		case motion.StreamAccel:
			est.ProcessAccel(f.Accel)
			rawMu.Lock()
			lastAccel, haveAccel = f.Accel, true
			rawMu.Unlock()
		}
	})
	if err != nil {
		return err
	}
	defer src.Stop()

	ticker := time.NewTicker(time.Duration(cfg.PublishIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		theta := est.Theta()

		payload, err := json.Marshal(theta)
		if err != nil {
			log.Printf("producer: theta marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicTheta, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("producer: MQTT publish error (theta): %v", token.Error())
			continue
		}

		rawMu.RLock()
		gyro, gOK := lastGyro, haveGyro
		accel, aOK := lastAccel, haveAccel
		rawMu.RUnlock()

		if cfg.TopicGyro != "" && gOK {
			if payload, err := json.Marshal(gyro); err != nil {
				log.Printf("producer: gyro marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicGyro, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("producer: MQTT publish error (gyro): %v", token.Error())
			}
		}
		if cfg.TopicAccel != "" && aOK {
			if payload, err := json.Marshal(accel); err != nil {
				log.Printf("producer: accel marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicAccel, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("producer: MQTT publish error (accel): %v", token.Error())
			}
		}

		log.Printf("%s tick: theta P=%.3f Y=%.3f R=%.3f | gyro x=%.3f y=%.3f z=%.3f | accel x=%.3f y=%.3f z=%.3f",
			t.Format(time.RFC3339),
			theta.Pitch, theta.Yaw, theta.Roll,
			gyro.X, gyro.Y, gyro.Z,
			accel.X, accel.Y, accel.Z,
		)
	}
	return nil
}

// runPosePassthrough forwards pre-fused pose samples unchanged. Devices
// with on-board tracking need no fusion on our side.
func runPosePassthrough(client mqtt.Client, cfg *config.Config, src motion.Source) error {
	var (
		poseMu   sync.RWMutex
		lastPose motion.PoseSample
		havePose bool
	)

	err := src.Start(func(f motion.Frame) {
		if f.Kind != motion.StreamPose {
			return
		}
		poseMu.Lock()
		lastPose, havePose = f.Pose, true
		poseMu.Unlock()
	})
	if err != nil {
		return err
	}
	defer src.Stop()

	ticker := time.NewTicker(time.Duration(cfg.PublishIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		poseMu.RLock()
		pose, ok := lastPose, havePose
		poseMu.RUnlock()
		if !ok {
			continue
		}

		payload, err := json.Marshal(pose)
		if err != nil {
			log.Printf("producer: pose marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("producer: MQTT publish error (pose): %v", token.Error())
			continue
		}

		log.Printf("%s tick: pose t=(%.2f %.2f %.2f) q=(%.3f %.3f %.3f %.3f)",
			t.Format(time.RFC3339),
			pose.Translation[0], pose.Translation[1], pose.Translation[2],
			pose.Rotation.X, pose.Rotation.Y, pose.Rotation.Z, pose.Rotation.W,
		)
	}
	return nil
}

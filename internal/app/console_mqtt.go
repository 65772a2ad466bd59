package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/camera_motion/internal/config"
	"github.com/relabs-tech/camera_motion/internal/motion"
	"github.com/relabs-tech/camera_motion/internal/orientation"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to the fused orientation
	thetaToken := client.Subscribe(cfg.TopicTheta, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var th orientation.Theta
		if err := json.Unmarshal(msg.Payload(), &th); err != nil {
			log.Printf("console: theta unmarshal error: %v", err)
			return
		}

		deg := 180 / math.Pi
		fmt.Printf(
			"[THETA] PITCH=%7.3f  YAW=%7.3f  ROLL=%7.3f rad  (%6.1f %6.1f %6.1f deg)\n",
			th.Pitch, th.Yaw, th.Roll,
			th.Pitch*deg, th.Yaw*deg, th.Roll*deg,
		)
	})
	thetaToken.Wait()
	if thetaToken.Error() != nil {
		return thetaToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTheta)

	// Subscribe to raw gyro samples
	if cfg.TopicGyro != "" {
		gyroToken := client.Subscribe(cfg.TopicGyro, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s motion.GyroSample
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("console: gyro unmarshal error: %v", err)
				return
			}
			fmt.Printf("[GYRO ] x=%8.3f y=%8.3f z=%8.3f  ts=%.1fms\n", s.X, s.Y, s.Z, s.Timestamp)
		})
		gyroToken.Wait()
		if gyroToken.Error() != nil {
			return gyroToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicGyro)
	}

	// Subscribe to raw accelerometer samples
	if cfg.TopicAccel != "" {
		accelToken := client.Subscribe(cfg.TopicAccel, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s motion.AccelSample
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("console: accel unmarshal error: %v", err)
				return
			}
			fmt.Printf("[ACCEL] x=%8.3f y=%8.3f z=%8.3f\n", s.X, s.Y, s.Z)
		})
		accelToken.Wait()
		if accelToken.Error() != nil {
			return accelToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicAccel)
	}

	// Subscribe to pass-through poses from pose-capable devices
	if cfg.TopicPose != "" {
		poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var p motion.PoseSample
			if err := json.Unmarshal(msg.Payload(), &p); err != nil {
				log.Printf("console: pose unmarshal error: %v", err)
				return
			}
			fmt.Printf("[POSE ] t=(%.2f %.2f %.2f) q=(%.3f %.3f %.3f %.3f)\n",
				p.Translation[0], p.Translation[1], p.Translation[2],
				p.Rotation.X, p.Rotation.Y, p.Rotation.Z, p.Rotation.W,
			)
		})
		poseToken.Wait()
		if poseToken.Error() != nil {
			return poseToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicPose)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/camera_motion/internal/config"
	"github.com/relabs-tech/camera_motion/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

func RunWeb() error {
	cfg := config.Get()

	var (
		mu        sync.RWMutex
		lastTheta orientation.Theta
		haveTheta bool
	)

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the fused orientation and keep the latest value
	token := client.Subscribe(cfg.TopicTheta, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var th orientation.Theta
		if err := json.Unmarshal(msg.Payload(), &th); err != nil {
			log.Printf("web: theta unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastTheta = th
		haveTheta = true
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicTheta)

	// 3) JSON API endpoint: latest orientation
	http.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveTheta {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastTheta); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) WebSocket stream: push the latest orientation at display cadence
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateIntervalMS) * time.Millisecond)
		defer ticker.Stop()

		for range ticker.C {
			mu.RLock()
			th, ok := lastTheta, haveTheta
			mu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(th); err != nil {
				log.Printf("web: websocket client %s gone: %v", r.RemoteAddr, err)
				return
			}
		}
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

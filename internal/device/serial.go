package device

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

// nmeaSource reads IMU sentences from a serial bridge and demultiplexes
// them into gyro and accel frames. Malformed or foreign sentences are
// skipped; the stream keeps going.
type nmeaSource struct {
	portName string
	baudRate uint

	mu      sync.Mutex
	started bool
	port    io.ReadWriteCloser
	wg      sync.WaitGroup
}

// NewNMEASource creates a serial-port IMU source.
func NewNMEASource(portName string, baudRate int) motion.Source {
	return &nmeaSource{portName: portName, baudRate: uint(baudRate)}
}

func (n *nmeaSource) Capability() motion.Capability { return motion.CapabilityIMU }

func (n *nmeaSource) Start(h motion.Handler) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return motion.ErrAlreadyStarted
	}

	serialOpts := serial.OpenOptions{
		PortName:        n.portName,
		BaudRate:        n.baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", n.portName, err)
	}
	n.port = port
	n.started = true
	log.Printf("nmea source: serial port opened on %s at %d baud", n.portName, n.baudRate)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.readLoop(h)
	}()
	return nil
}

func (n *nmeaSource) readLoop(h motion.Handler) {
	reader := bufio.NewReader(n.port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Port closed by Stop, or a genuine read failure. Either way
			// delivery ends here.
			log.Printf("nmea source: read loop ended: %v", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		frame, err := frameFromLine(line)
		if err != nil {
			// Noisy links produce partial sentences; keep reading.
			continue
		}
		h(frame)
	}
}

func (n *nmeaSource) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started {
		return nil
	}
	err := n.port.Close()
	n.wg.Wait()
	n.started = false
	return err
}

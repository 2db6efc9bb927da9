package player

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/quranku-cli/quranku/log"
)

// eventListener reads mpv property-change notifications off a persistent
// connection and translates them into MediaEvents.
type eventListener struct {
	socketPath string
	conn       net.Conn
	emit       func(MediaEvent)
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool

	// Last observed position and duration, stamped onto every event.
	lastTime     float64
	lastDuration float64
	wasSeeking   bool
	loaded       bool
}

func newEventListener(socketPath string, emit func(MediaEvent)) *eventListener {
	return &eventListener{
		socketPath: socketPath,
		emit:       emit,
		stopCh:     make(chan struct{}),
	}
}

// Start subscribes to the properties the engine needs and begins the read loop.
func (el *eventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	properties := []struct {
		id   int
		name string
	}{
		{1, "time-pos"},
		{2, "pause"},
		{3, "seeking"},
		{4, "eof-reached"},
		{5, "paused-for-cache"},
		{6, "duration"},
	}

	for _, prop := range properties {
		_, err := doSendCommand(el.socketPath, []any{"observe_property", prop.id, prop.name})
		if err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Infof("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop terminates the listener.
func (el *eventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop reads newline-delimited JSON events from the persistent connection.
func (el *eventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue
			}
			log.Warnf("event listener read error: %v", err)
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line carries over to the next read.
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			el.processLine(line)
		}
	}
}

// processLine parses one mpv event and dispatches the matching MediaEvent.
func (el *eventListener) processLine(line string) {
	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	switch eventType {
	case "property-change":
		name, _ := event["name"].(string)
		el.propertyChange(name, event["data"])
	case "file-loaded":
		el.loaded = true
		el.send(MediaLoadedMetadata)
	case "start-file":
		el.loaded = false
	case "end-file":
		if reason, _ := event["reason"].(string); reason == "error" {
			el.emit(MediaEvent{
				Type: MediaError,
				Time: el.lastTime,
				Err:  fmt.Errorf("playback failed: %v", event["file_error"]),
			})
		}
	}
}

func (el *eventListener) propertyChange(name string, data any) {
	switch name {
	case "time-pos":
		if pos, ok := data.(float64); ok {
			el.lastTime = pos
			el.send(MediaTimeUpdate)
		}
	case "duration":
		if dur, ok := data.(float64); ok {
			el.lastDuration = dur
		}
	case "pause":
		if paused, ok := data.(bool); ok && el.loaded {
			if paused {
				el.send(MediaPause)
			} else {
				el.send(MediaPlaying)
			}
		}
	case "seeking":
		if seeking, ok := data.(bool); ok {
			if seeking {
				el.wasSeeking = true
				el.send(MediaSeeking)
			} else if el.wasSeeking {
				el.wasSeeking = false
				el.send(MediaSeeked)
			}
		}
	case "eof-reached":
		if eof, ok := data.(bool); ok && eof {
			el.send(MediaEnded)
		}
	case "paused-for-cache":
		if stalled, ok := data.(bool); ok && stalled {
			el.send(MediaWaiting)
		}
	}
}

func (el *eventListener) send(t MediaEventType) {
	el.emit(MediaEvent{Type: t, Time: el.lastTime, Duration: el.lastDuration})
}

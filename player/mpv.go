package player

import (
	"crypto/rand"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/quranku-cli/quranku/constant"
	"github.com/quranku-cli/quranku/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements Element on top of mpv's JSON-IPC protocol. The process is
// started lazily on the first Load and reused for subsequent tracks.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	events     chan MediaEvent
	listener   *eventListener
	mu         sync.Mutex // protects socket writes and process state
}

// NewMPV creates an idle mpv element. No process is spawned until Load.
func NewMPV() *MPV {
	return &MPV{
		exited: make(chan struct{}),
		events: make(chan MediaEvent, 64),
	}
}

// Load points mpv at the given audio URL, spawning the process on first use.
func (m *MPV) Load(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.mu.Lock()
	running := m.isRunningLocked()
	m.mu.Unlock()

	if !running {
		if err := m.start(); err != nil {
			return err
		}
	}

	m.emit(MediaEvent{Type: MediaLoadStart})

	// Load paused so the engine decides when playback begins.
	if _, err := m.sendCommand([]any{"loadfile", safeURL, "replace"}); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}
	return m.set("pause", true)
}

// start spawns mpv in idle audio-only mode and begins event observation.
func (m *MPV) start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		if runtime.GOOS == constant.Windows {
			m.socketPath = fmt.Sprintf(`\\.\pipe\quranku-%x`, randomBytes)
		} else {
			// os.TempDir keeps this working on macOS where $TMPDIR is /var/folders/...
			m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("quranku-%x.sock", randomBytes))
		}
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--no-video",
		"--force-window=no",
		"--idle=yes",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
	}

	m.cmd = exec.Command("mpv", args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.exited = make(chan struct{})
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newEventListener(m.socketPath, m.emit)
	if err := m.listener.Start(); err != nil {
		return fmt.Errorf("event listener: %w", err)
	}
	return nil
}

// waitForSocket polls until the mpv IPC socket accepts connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.set("pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	return m.set("pause", true)
}

// Seek moves to an absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand([]any{"seek", seconds, "absolute"})
	return err
}

// SetRate changes the playback speed multiplier.
func (m *MPV) SetRate(rate float64) error {
	return m.set("speed", rate)
}

// CurrentTime reports the playback position, zero when nothing is loaded.
func (m *MPV) CurrentTime() float64 {
	pos, err := m.getFloatProperty("time-pos")
	if err != nil {
		return 0
	}
	return pos
}

// Duration reports the track length, zero when unknown.
func (m *MPV) Duration() float64 {
	dur, err := m.getFloatProperty("duration")
	if err != nil || math.IsNaN(dur) {
		return 0
	}
	return dur
}

// Events streams media notifications translated from mpv property changes.
func (m *MPV) Events() <-chan MediaEvent {
	return m.events
}

func (m *MPV) emit(ev MediaEvent) {
	select {
	case m.events <- ev:
	default:
		// A stalled consumer must not block the IPC read loop.
	}
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunningLocked()
}

func (m *MPV) isRunningLocked() bool {
	if m.socketPath == "" || m.cmd == nil {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// Close shuts the mpv process down and removes the socket.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.Stop()
	}

	if m.socketPath == "" {
		return nil
	}

	_, _ = m.sendCommand([]any{"quit"})

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) set(property string, value any) error {
	_, err := m.sendCommand([]any{"set_property", property, value})
	return err
}

// getFloatProperty retrieves a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]any{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
// Prevents flag injection through crafted audio URLs.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path.
	return filepath.Clean(l), nil
}

package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/log"
	"github.com/spf13/viper"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	eventBuffer       = 64
)

// MPV implements Media by keeping one idle mpv process alive and loading
// files into it over JSON-IPC.
type MPV struct {
	binary     string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	listener   *EventListener
	events     chan Event
	done       chan struct{}
	mu         sync.Mutex // protects socket writes

	state sync.Mutex
	ready bool
}

// NewMPV creates an MPV backend; the process starts on the first Load.
func NewMPV() *MPV {
	exited := make(chan struct{})
	close(exited)

	binary := viper.GetString(key.PlayerBinary)
	if binary == "" {
		binary = "mpv"
	}

	return &MPV{
		binary: binary,
		exited: exited,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// start launches mpv in idle mode and attaches the event listener.
func (m *MPV) start() error {
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Offplay, randomBytes))
	}

	// only transport flags; the user's mpv.conf decides output and decoding
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--pause=yes",
	}

	m.cmd = exec.Command(m.binary, args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.binary, err)
	}

	exited := make(chan struct{})
	m.exited = exited
	go func(cmd *exec.Cmd) {
		_ = cmd.Wait()
		close(exited)
	}(m.cmd)

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = terminate(m.cmd, true)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.handle)
	if err := m.listener.Start(); err != nil {
		_ = terminate(m.cmd, true)
		return err
	}

	go func(listener *EventListener) {
		select {
		case <-exited:
			listener.Stop()
			m.emit(Event{Kind: EventExited}, true)
		case <-m.done:
		}
	}(m.listener)

	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
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

// IsRunning reports whether the mpv process is alive.
func (m *MPV) IsRunning() bool {
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) Load(path, title string) error {
	target, err := sanitizePath(path)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if !m.IsRunning() {
		if err := m.start(); err != nil {
			return err
		}
	}

	m.state.Lock()
	m.ready = false
	m.state.Unlock()

	if err := m.set("pause", true); err != nil {
		return err
	}
	if err := m.set("force-media-title", sanitizeTitle(title)); err != nil {
		return err
	}
	_, err = m.sendCommand([]interface{}{"loadfile", target, "replace"})
	return err
}

func (m *MPV) Unload() error {
	if !m.IsRunning() {
		return nil
	}
	_, err := m.sendCommand([]interface{}{"stop"})
	return err
}

func (m *MPV) Play() error  { return m.set("pause", false) }
func (m *MPV) Pause() error { return m.set("pause", true) }

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

func (m *MPV) SetRate(rate float64) error { return m.set("speed", rate) }

func (m *MPV) SetVolume(volume float64) error { return m.set("volume", volume*100) }

func (m *MPV) SetMute(muted bool) error { return m.set("mute", muted) }

// Position returns the current playback position in seconds.
func (m *MPV) Position() (float64, error) { return m.getFloatProperty("time-pos") }

// Duration returns the total duration of the current media in seconds.
func (m *MPV) Duration() (float64, error) { return m.getFloatProperty("duration") }

// Paused returns whether playback is currently paused.
func (m *MPV) Paused() (bool, error) {
	data, err := m.sendCommand([]interface{}{"get_property", "pause"})
	if err != nil {
		return false, err
	}
	paused, ok := data.(bool)
	if !ok {
		return false, nil
	}
	return paused, nil
}

func (m *MPV) Events() <-chan Event { return m.events }

// Socket returns the IPC socket path.
func (m *MPV) Socket() string { return m.socketPath }

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	select {
	case <-m.done:
		return nil
	default:
		close(m.done)
	}

	if m.listener != nil {
		m.listener.Stop()
	}

	if !m.IsRunning() {
		return nil
	}

	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = terminate(m.cmd, false)
		select {
		case <-m.exited:
		case <-time.After(time.Second):
			_ = terminate(m.cmd, true)
		}
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// handle turns observed property changes into events.
func (m *MPV) handle(property string, data interface{}) {
	switch property {
	case "duration":
		d, ok := data.(float64)
		if !ok || d <= 0 {
			return
		}
		m.state.Lock()
		first := !m.ready
		m.ready = true
		m.state.Unlock()
		if first {
			m.emit(Event{Kind: EventReady, Value: d}, true)
		}
	case "time-pos":
		if pos, ok := data.(float64); ok {
			m.emit(Event{Kind: EventPosition, Value: pos}, false)
		}
	case "pause":
		if paused, ok := data.(bool); ok {
			kind := EventResumed
			if paused {
				kind = EventPaused
			}
			m.emit(Event{Kind: kind}, true)
		}
	case "eof-reached":
		if eof, ok := data.(bool); ok && eof {
			m.emit(Event{Kind: EventEnded}, true)
		}
	case "end-file":
		// end-file also fires on unload and replace; only errors matter here
		event, _ := data.(map[string]interface{})
		if reason, _ := event["reason"].(string); reason == "error" {
			log.Warnf("mpv could not play the file: %v", event["file_error"])
			m.emit(Event{Kind: EventFailed}, true)
		}
	}
}

// emit delivers e; position ticks are dropped when the consumer lags.
func (m *MPV) emit(e Event, mustDeliver bool) {
	if !mustDeliver {
		select {
		case m.events <- e:
		default:
		}
		return
	}

	select {
	case m.events <- e:
	case <-m.done:
	}
}

func (m *MPV) set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
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

// sanitizePath validates that a local file path is safe to pass to mpv.
func sanitizePath(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.ContainsAny(p, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in path")
	}

	// mpv would read a leading dash as an option
	if strings.HasPrefix(p, "-") {
		return "", fmt.Errorf("path must not start with '-' (looks like a flag)")
	}

	if strings.Contains(p, "://") {
		return "", fmt.Errorf("only local files can be played")
	}

	return filepath.Clean(p), nil
}

// sanitizeTitle cleans up the title for mpv
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}

package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Player process defaults
const (
	DefaultPlayerCommand = "ffplay"
	PlayerLogLevel       = "error"
	StartupGrace         = 400 * time.Millisecond
)

// ErrNotPlaying is returned by Stop when no process is running
var ErrNotPlaying = errors.New("audio player is not running")

// ProcessBackend plays audio by supervising an external player process. At
// most one process runs at a time; Play replaces the current one.
type ProcessBackend struct {
	command string
	log     zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	onExit func(error) // called for unexpected exits after startup
}

// NewProcessBackend creates a backend for command (ffplay when empty)
func NewProcessBackend(command string, log zerolog.Logger) *ProcessBackend {
	if strings.TrimSpace(command) == "" {
		command = DefaultPlayerCommand
	}
	return &ProcessBackend{command: command, log: log}
}

// SetExitCallback sets the function called when a started player exits on
// its own. It runs on the supervising goroutine.
func (b *ProcessBackend) SetExitCallback(callback func(error)) {
	b.mu.Lock()
	b.onExit = callback
	b.mu.Unlock()
}

// BuildPlayerArgs builds the ffplay arguments for a looping, windowless run
func BuildPlayerArgs(source string, volume int) []string {
	return []string{
		"-nodisp",   // No video window
		"-autoexit", // Exit when playback ends
		"-loglevel", PlayerLogLevel, // Quiet output
		"-loop", "0", // Loop forever
		"-volume", strconv.Itoa(volume), // 0..100
		source,
	}
}

// Play starts the player for source. A process that dies within
// StartupGrace is reported as an error, so an unreachable source or a
// missing player surface immediately.
func (b *ProcessBackend) Play(source string, volume int) error {
	b.stopCurrent()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, b.command, BuildPlayerArgs(source, volume)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", b.command, err)
	}

	done := make(chan struct{})
	exited := make(chan error, 1)
	started := make(chan bool, 1) // whether Play reported success
	go func() {
		err := cmd.Wait()
		close(done)
		exited <- err

		if !<-started || ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("playback ended")
		}
		b.log.Warn().Err(err).Str("stderr", strings.TrimSpace(stderr.String())).Msg("Audio player exited")

		b.mu.Lock()
		callback := b.onExit
		b.mu.Unlock()
		if callback != nil {
			callback(err)
		}
	}()

	select {
	case err := <-exited:
		started <- false
		cancel()
		if err == nil {
			err = errors.New("exited immediately")
		}
		return fmt.Errorf("%s could not play %s: %w", b.command, source, err)
	case <-time.After(StartupGrace):
	}

	b.mu.Lock()
	b.cancel = cancel
	b.done = done
	b.mu.Unlock()
	started <- true

	b.log.Debug().Str("source", source).Int("volume", volume).Msg("Audio player started")
	return nil
}

// Stop terminates the running player and waits for it to exit
func (b *ProcessBackend) Stop() error {
	if !b.stopCurrent() {
		return ErrNotPlaying
	}
	return nil
}

// Playing reports whether a player process is alive
func (b *ProcessBackend) Playing() bool {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (b *ProcessBackend) stopCurrent() bool {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

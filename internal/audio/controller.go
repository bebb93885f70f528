package audio

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ytget/direct-downloader/internal/model"
)

// DefaultRemoteURL is the built-in background track
const DefaultRemoteURL = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"

// DefaultVolume is the unmuted player volume (0..100)
const DefaultVolume = 60

// synthCycles is how many pattern cycles go into the rendered loop file
const synthCycles = 4

var (
	// ErrDisabled is returned by Play while audio is switched off
	ErrDisabled = errors.New("audio is disabled")
	// ErrInvalidLink is returned for links that are not absolute http(s) URLs
	ErrInvalidLink = errors.New("audio link must be an absolute http:// or https:// URL")
	// ErrNoLink is returned when the link strategy is used without a saved link
	ErrNoLink = errors.New("no audio link saved")
	// ErrBlocked wraps backend failures to start playback
	ErrBlocked = errors.New("audio playback blocked")
)

// Strategy selects where the background audio comes from
type Strategy string

const (
	StrategyRemote Strategy = "remote"
	StrategyLink   Strategy = "link"
	StrategySynth  Strategy = "synth"
)

// Strategies lists the strategies in display order
var Strategies = []Strategy{StrategyRemote, StrategyLink, StrategySynth}

// ParseStrategy validates s
func ParseStrategy(s string) (Strategy, error) {
	for _, strategy := range Strategies {
		if string(strategy) == strings.ToLower(strings.TrimSpace(s)) {
			return strategy, nil
		}
	}
	return "", fmt.Errorf("unknown audio strategy: %q", s)
}

// State is the playback state shown to the user
type State string

const (
	StateStopped State = "Stopped"
	StatePlaying State = "Playing"
	// StateBlocked means playback was requested but could not start
	StateBlocked State = "Blocked"
)

// Snapshot is a consistent copy of the controller state
type Snapshot struct {
	Enabled  bool
	Muted    bool
	State    State
	Strategy Strategy
	Link     string
}

// ControllerOptions configures a Controller. Zero values select defaults.
type ControllerOptions struct {
	Backend   Backend
	Store     LinkStore
	Journal   Journal
	Logger    zerolog.Logger
	RemoteURL string
	Sequence  *Sequence
	TempDir   string
	Strategy  Strategy
}

// Controller owns the background audio state. All methods are safe for
// concurrent use.
type Controller struct {
	backend   Backend
	store     LinkStore
	journal   Journal
	log       zerolog.Logger
	remoteURL string
	sequence  Sequence
	tempDir   string
	synthPath string

	mu       sync.Mutex
	strategy Strategy
	enabled  bool
	muted    bool
	state    State
	onChange func(Snapshot) // callback for UI updates
}

// NewController creates an enabled, stopped controller
func NewController(opts ControllerOptions) *Controller {
	backend := opts.Backend
	if backend == nil {
		backend = NewProcessBackend("", opts.Logger)
	}

	var store LinkStore = &memoryStore{}
	if opts.Store != nil {
		store = opts.Store
	}

	var journal Journal = nopJournal{}
	if opts.Journal != nil {
		journal = opts.Journal
	}

	remoteURL := strings.TrimSpace(opts.RemoteURL)
	if remoteURL == "" {
		remoteURL = DefaultRemoteURL
	}

	sequence := DefaultSequence
	if opts.Sequence != nil {
		sequence = *opts.Sequence
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyRemote
		if store.AudioURL() != "" {
			strategy = StrategyLink
		}
	}

	c := &Controller{
		backend:   backend,
		store:     store,
		journal:   journal,
		log:       opts.Logger,
		remoteURL: remoteURL,
		sequence:  sequence,
		tempDir:   opts.TempDir,
		strategy:  strategy,
		enabled:   true,
		state:     StateStopped,
	}
	backend.SetExitCallback(c.playerExited)
	return c
}

// SetChangeCallback sets the function called after every state change
func (c *Controller) SetChangeCallback(callback func(Snapshot)) {
	c.mu.Lock()
	c.onChange = callback
	c.mu.Unlock()
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Enabled reports whether audio is switched on
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Muted reports whether audio is muted
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// State returns the playback state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Link returns the saved audio link
func (c *Controller) Link() string {
	return c.store.AudioURL()
}

// Play starts playback with the current strategy. It unmutes first, the way
// an explicit "start audio" action should.
func (c *Controller) Play() error {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return ErrDisabled
	}
	c.muted = false
	err := c.startLocked()
	c.mu.Unlock()

	c.notify()
	return err
}

// Stop stops playback. Stopping an idle controller is not an error.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()

	c.journal.Add(model.SeverityInfo, "Audio stopped")
	c.notify()
}

// ToggleMute flips the mute flag, applying it to running playback
func (c *Controller) ToggleMute() (bool, error) {
	c.mu.Lock()
	c.muted = !c.muted
	muted := c.muted

	var err error
	if c.state == StatePlaying {
		err = c.startLocked()
	}
	c.mu.Unlock()

	c.journal.Add(model.SeverityInfo, "Mute: "+onOff(muted))
	c.notify()
	return muted, err
}

// SetEnabled switches audio on or off. Switching on tries to play; the
// returned error is the playback error, if any.
func (c *Controller) SetEnabled(enabled bool) error {
	c.mu.Lock()
	c.enabled = enabled

	var err error
	if enabled {
		err = c.startLocked()
	} else {
		c.stopLocked()
	}
	c.mu.Unlock()

	c.journal.Add(model.SeverityInfo, "Audio: "+onOff(enabled))
	c.notify()
	return err
}

// Toggle flips the enabled flag
func (c *Controller) Toggle() error {
	return c.SetEnabled(!c.Enabled())
}

// SetStrategy changes the audio source. Active playback restarts with the
// new source.
func (c *Controller) SetStrategy(strategy Strategy) error {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return err
	}

	c.mu.Lock()
	c.strategy = strategy
	var err error
	if c.enabled && c.state != StateStopped {
		err = c.startLocked()
	}
	c.mu.Unlock()

	c.journal.Add(model.SeverityInfo, "Audio source: "+string(strategy))
	c.notify()
	return err
}

// SetLink validates and persists the user's audio link. An empty link clears
// the slot.
func (c *Controller) SetLink(raw string) error {
	link := strings.TrimSpace(raw)
	if link == "" {
		c.store.SetAudioURL("")
		c.journal.Add(model.SeverityInfo, "Audio link cleared")
		c.notify()
		return nil
	}

	if err := validateLink(link); err != nil {
		c.journal.Add(model.SeverityBad, "Audio link rejected: "+link)
		return err
	}

	c.store.SetAudioURL(link)
	c.journal.Add(model.SeverityOK, "Audio link saved")

	c.mu.Lock()
	var err error
	if c.strategy == StrategyLink && c.enabled && c.state != StateStopped {
		err = c.startLocked()
	}
	c.mu.Unlock()

	c.notify()
	return err
}

// Close stops playback and removes the rendered synth file
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if c.synthPath != "" {
		if err := os.Remove(c.synthPath); err != nil && !os.IsNotExist(err) {
			c.log.Warn().Err(err).Str("path", c.synthPath).Msg("Failed to remove synth file")
		}
		c.synthPath = ""
	}
}

func (c *Controller) startLocked() error {
	source, err := c.sourceLocked()
	if err != nil {
		c.state = StateStopped
		c.journal.Add(model.SeverityWarn, fmt.Sprintf("Audio not started: %v", err))
		return err
	}

	volume := DefaultVolume
	if c.muted {
		volume = 0
	}

	if err := c.backend.Play(source, volume); err != nil {
		c.state = StateBlocked
		c.log.Warn().Err(err).Str("strategy", string(c.strategy)).Msg("Audio playback failed")
		c.journal.Add(model.SeverityWarn, "Audio could not start automatically; press Start audio")
		return fmt.Errorf("%w: %v", ErrBlocked, err)
	}

	c.state = StatePlaying
	c.journal.Add(model.SeverityOK, "Audio playback started")
	return nil
}

// playerExited moves running playback to Blocked when the backend stopped on
// its own, so the shell offers the start gate again
func (c *Controller) playerExited(err error) {
	c.mu.Lock()
	if c.state != StatePlaying || c.backend.Playing() {
		c.mu.Unlock()
		return
	}
	c.state = StateBlocked
	strategy := c.strategy
	c.mu.Unlock()

	c.log.Warn().Err(err).Str("strategy", string(strategy)).Msg("Audio playback ended unexpectedly")
	c.journal.Add(model.SeverityWarn, "Audio playback stopped; press Start audio")
	c.notify()
}

func (c *Controller) stopLocked() {
	if err := c.backend.Stop(); err != nil && !errors.Is(err, ErrNotPlaying) {
		c.log.Warn().Err(err).Msg("Failed to stop audio")
	}
	c.state = StateStopped
}

func (c *Controller) sourceLocked() (string, error) {
	switch c.strategy {
	case StrategyLink:
		link := c.store.AudioURL()
		if link == "" {
			return "", ErrNoLink
		}
		return link, nil
	case StrategySynth:
		return c.synthFileLocked()
	default:
		return c.remoteURL, nil
	}
}

// synthFileLocked renders the tone loop once and reuses the file
func (c *Controller) synthFileLocked() (string, error) {
	if c.synthPath != "" {
		if _, err := os.Stat(c.synthPath); err == nil {
			return c.synthPath, nil
		}
	}

	f, err := os.CreateTemp(c.tempDir, "direct-dl-synth-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create synth file: %w", err)
	}
	defer f.Close()

	if err := c.sequence.RenderWAV(f, c.sequence.Len()*synthCycles); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	c.synthPath = f.Name()
	return c.synthPath, nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Enabled:  c.enabled,
		Muted:    c.muted,
		State:    c.state,
		Strategy: c.strategy,
		Link:     c.store.AudioURL(),
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	callback := c.onChange
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

func validateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidLink
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

// Package session owns the state of one user session and turns user intents
// into calls on the transfer engine, the audio controller and the command
// builder. The UI and the CLI both drive it through Dispatch.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/direct-downloader/internal/audio"
	"github.com/ytget/direct-downloader/internal/command"
	"github.com/ytget/direct-downloader/internal/download"
	"github.com/ytget/direct-downloader/internal/logbook"
	"github.com/ytget/direct-downloader/internal/model"
)

var (
	// ErrBusy is returned when a download or HEAD check is requested while
	// another retrieval is still in flight
	ErrBusy = errors.New("a download is already in progress")
	// ErrNoURL is returned by URL intents with an empty URL
	ErrNoURL = errors.New("enter a URL first")
	// ErrNothingSaved is returned by the reveal intent before any download
	ErrNothingSaved = errors.New("nothing has been downloaded yet")
	// ErrNoInspector is returned when page inspection is not configured
	ErrNoInspector = errors.New("page inspection is not available")
	// ErrNoAudio is returned by audio intents when no controller is configured
	ErrNoAudio = errors.New("audio is not available")
)

// PageInspector looks for media links on an HTML page
type PageInspector interface {
	InspectPage(ctx context.Context, rawURL string) (*model.PageInspection, error)
}

// RevealFunc shows a saved file to the user, e.g. in the file manager
type RevealFunc func(path string) error

// Options configures a Session. Engine and Logbook are required.
type Options struct {
	Engine    download.Retriever
	Audio     *audio.Controller
	Inspector PageInspector
	Logbook   *logbook.Logbook
	Logger    zerolog.Logger
	Reveal    RevealFunc

	// RequestTimeout bounds one download, 0 means no limit
	RequestTimeout time.Duration
}

// Session is the explicit per-window state. One retrieval at a time.
type Session struct {
	engine         download.Retriever
	audio          *audio.Controller
	inspector      PageInspector
	book           *logbook.Logbook
	log            zerolog.Logger
	reveal         RevealFunc
	requestTimeout time.Duration

	mu         sync.Mutex
	busy       bool
	running    IntentKind
	cancel     context.CancelFunc
	lastSaved  string
	onBusy     func(bool)                // callback for UI updates
	onProgress func(model.ProgressEvent) // callback for UI updates
}

// New creates a session
func New(opts Options) *Session {
	book := opts.Logbook
	if book == nil {
		book = logbook.New(opts.Logger)
	}

	return &Session{
		engine:         opts.Engine,
		audio:          opts.Audio,
		inspector:      opts.Inspector,
		book:           book,
		log:            opts.Logger,
		reveal:         opts.Reveal,
		requestTimeout: opts.RequestTimeout,
	}
}

// SetBusyCallback sets the function called when a retrieval starts (true)
// and after it finished (false)
func (s *Session) SetBusyCallback(callback func(bool)) {
	s.mu.Lock()
	s.onBusy = callback
	s.mu.Unlock()
}

// SetProgressCallback sets the function receiving progress events
func (s *Session) SetProgressCallback(callback func(model.ProgressEvent)) {
	s.mu.Lock()
	s.onProgress = callback
	s.mu.Unlock()
}

// Logbook returns the session log
func (s *Session) Logbook() *logbook.Logbook {
	return s.book
}

// Busy reports whether a retrieval is in flight
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastSaved returns the path of the last saved file, or ""
func (s *Session) LastSaved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Start writes the greeting lines and tries to start background audio. A
// blocked start is not an error here; the controller state tells the UI to
// show the start gate.
func (s *Session) Start() {
	s.book.Infof("Ready")
	s.book.Warnf("Browser-style download works best with a direct file URL")

	if s.audio != nil {
		if err := s.audio.Play(); err != nil {
			s.log.Debug().Err(err).Msg("Initial audio start failed")
		}
	}
}

// Cancel aborts the download or HEAD check in flight, if any
func (s *Session) Cancel() bool {
	s.mu.Lock()
	cancel := s.cancel
	running := s.running
	s.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()

	switch running {
	case IntentProbe:
		s.book.Warnf("HEAD check canceled by user")
	default:
		s.book.Warnf("Download canceled by user")
	}
	return true
}

// Dispatch executes one intent and returns its result. Download and probe
// intents block until the engine is done.
func (s *Session) Dispatch(ctx context.Context, intent Intent) Result {
	s.log.Debug().Str("intent", string(intent.Kind)).Msg("Dispatching intent")

	switch intent.Kind {
	case IntentDownload:
		return s.download(ctx, intent)
	case IntentProbe:
		return s.probe(ctx, intent)
	case IntentInspectPage:
		return s.inspect(ctx, intent)
	case IntentBuildCommand:
		return Result{Kind: intent.Kind, Command: command.Build(intent.URL, intent.Mode, intent.OutDir)}
	case IntentCopyCommand:
		cmd := command.Build(intent.URL, intent.Mode, intent.OutDir)
		s.book.OKf("Command copied")
		return Result{Kind: intent.Kind, Command: cmd, Text: cmd}
	case IntentCopyLog:
		text := s.book.Text()
		s.book.OKf("Log copied")
		return Result{Kind: intent.Kind, Text: text}
	case IntentExplain:
		s.book.Warnf("%s", command.ExplainNoticeEN)
		return Result{Kind: intent.Kind, Text: command.ExplainNoticeEN}
	case IntentClear:
		s.book.Infof("Inputs cleared")
		return Result{Kind: intent.Kind}
	case IntentReveal:
		return s.revealLast(intent)
	case IntentAudioStart, IntentAudioStop, IntentAudioToggle, IntentAudioMute,
		IntentAudioSetLink, IntentAudioStrategy, IntentAudioState:
		return s.dispatchAudio(intent)
	default:
		return Result{Kind: intent.Kind, Err: fmt.Errorf("unknown intent: %q", intent.Kind)}
	}
}

func (s *Session) download(ctx context.Context, intent Intent) Result {
	res := Result{Kind: intent.Kind}

	url := strings.TrimSpace(intent.URL)
	if url == "" {
		s.book.Warnf("Enter a URL first")
		res.Err = ErrNoURL
		return res
	}

	ctx, release, err := s.acquire(ctx, intent.Kind)
	if err != nil {
		s.book.Warnf("Download already in progress")
		res.Err = err
		return res
	}
	defer release()

	switch download.ClassifyURL(url) {
	case download.URLClassPage:
		s.book.Warnf("This looks like a web page, not a file. The download may fail or save HTML.")
	case download.URLClassUnclassified:
		s.book.Infof("Could not tell from the URL whether this is a file; trying anyway")
	}

	req := model.NewRetrievalRequest(url, intent.FilenameHint)
	outcome := s.engine.Retrieve(ctx, req, s.emitProgress)
	res.Outcome = &outcome

	if !outcome.OK() {
		res.Err = outcome.Err
		return res
	}

	s.mu.Lock()
	s.lastSaved = outcome.SavedPath
	s.mu.Unlock()
	return res
}

func (s *Session) probe(ctx context.Context, intent Intent) Result {
	res := Result{Kind: intent.Kind}

	url := strings.TrimSpace(intent.URL)
	if url == "" {
		s.book.Warnf("Enter a URL first")
		res.Err = ErrNoURL
		return res
	}

	ctx, release, err := s.acquire(ctx, intent.Kind)
	if err != nil {
		res.Err = err
		return res
	}
	defer release()

	probe := s.engine.Probe(ctx, url)
	res.Probe = &probe
	return res
}

func (s *Session) inspect(ctx context.Context, intent Intent) Result {
	res := Result{Kind: intent.Kind}

	url := strings.TrimSpace(intent.URL)
	if url == "" {
		s.book.Warnf("Enter a URL first")
		res.Err = ErrNoURL
		return res
	}
	if s.inspector == nil {
		res.Err = ErrNoInspector
		return res
	}

	s.book.Infof("Inspecting page: %s", url)
	page, err := s.inspector.InspectPage(ctx, url)
	if err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("Page inspection failed")
		s.book.Badf("Page inspection failed: %v", err)
		res.Err = err
		return res
	}
	res.Page = page

	if !page.HasLinks() {
		s.book.Warnf("No media links found on the page")
		return res
	}

	title := page.Title
	if title == "" {
		title = url
	}
	s.book.OKf("Found %d media link(s) on %s", len(page.Links), title)
	for _, link := range page.Links {
		if link.Label != "" {
			s.book.Infof("%s: %s (%s)", link.Kind, link.URL, link.Label)
		} else {
			s.book.Infof("%s: %s", link.Kind, link.URL)
		}
	}
	return res
}

func (s *Session) revealLast(intent Intent) Result {
	res := Result{Kind: intent.Kind}

	path := s.LastSaved()
	if path == "" {
		res.Err = ErrNothingSaved
		return res
	}
	res.Text = path

	if s.reveal == nil {
		return res
	}
	if err := s.reveal(path); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to reveal file")
		s.book.Badf("Could not open the file location: %v", err)
		res.Err = err
	}
	return res
}

func (s *Session) dispatchAudio(intent Intent) Result {
	res := Result{Kind: intent.Kind}
	if s.audio == nil {
		res.Err = ErrNoAudio
		return res
	}

	switch intent.Kind {
	case IntentAudioStart:
		res.Err = s.audio.Play()
	case IntentAudioStop:
		s.audio.Stop()
	case IntentAudioToggle:
		res.Err = s.audio.Toggle()
	case IntentAudioMute:
		_, res.Err = s.audio.ToggleMute()
	case IntentAudioSetLink:
		res.Err = s.audio.SetLink(intent.Link)
	case IntentAudioStrategy:
		res.Err = s.audio.SetStrategy(intent.Strategy)
	case IntentAudioState:
		// snapshot only
	}

	res.Audio = s.audio.Snapshot()
	return res
}

// acquire marks the session busy and derives the retrieval context. The
// returned release must be called exactly once.
func (s *Session) acquire(parent context.Context, kind IntentKind) (context.Context, func(), error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, nil, ErrBusy
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.requestTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, s.requestTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	s.busy = true
	s.running = kind
	s.cancel = cancel
	onBusy := s.onBusy
	s.mu.Unlock()

	if onBusy != nil {
		onBusy(true)
	}

	release := func() {
		cancel()

		s.mu.Lock()
		s.busy = false
		s.running = ""
		s.cancel = nil
		onBusy := s.onBusy
		s.mu.Unlock()

		if onBusy != nil {
			onBusy(false)
		}
	}
	return ctx, release, nil
}

func (s *Session) emitProgress(ev model.ProgressEvent) {
	s.mu.Lock()
	callback := s.onProgress
	s.mu.Unlock()

	if callback != nil {
		callback(ev)
	}
}

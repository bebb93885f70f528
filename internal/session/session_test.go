package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ytget/direct-downloader/internal/audio"
	"github.com/ytget/direct-downloader/internal/command"
	"github.com/ytget/direct-downloader/internal/download"
	"github.com/ytget/direct-downloader/internal/logbook"
	"github.com/ytget/direct-downloader/internal/model"
)

// fakeEngine returns a fixed outcome. When gate is set Retrieve blocks until
// it is closed or the context ends; probeGate does the same for Probe.
type fakeEngine struct {
	outcome      model.RetrievalOutcome
	events       []model.ProgressEvent
	gate         chan struct{}
	started      chan struct{}
	probeGate    chan struct{}
	probeStarted chan struct{}
	calls        atomic.Int32
	probes       atomic.Int32
	lastReq      model.RetrievalRequest
	lastMu       sync.Mutex
}

func (f *fakeEngine) Retrieve(ctx context.Context, req model.RetrievalRequest, onProgress download.ProgressFunc) model.RetrievalOutcome {
	f.calls.Add(1)
	f.lastMu.Lock()
	f.lastReq = req
	f.lastMu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return model.Failure(req.ID, model.ErrorKindCanceled, ctx.Err())
		}
	}

	for _, ev := range f.events {
		onProgress(ev)
	}
	outcome := f.outcome
	outcome.RequestID = req.ID
	return outcome
}

func (f *fakeEngine) Probe(ctx context.Context, rawURL string) model.ProbeResult {
	f.probes.Add(1)
	if f.probeStarted != nil {
		close(f.probeStarted)
	}
	if f.probeGate != nil {
		select {
		case <-f.probeGate:
		case <-ctx.Done():
			return model.ProbeResult{Err: ctx.Err()}
		}
	}
	return model.ProbeResult{OK: true, StatusCode: 200, ContentType: "audio/mpeg", ContentLength: 2048}
}

func (f *fakeEngine) Status() model.RetrievalStatus {
	return model.RetrievalStatusIdle
}

func (f *fakeEngine) SetStatusCallback(func(model.RetrievalStatus)) {}

type fakeInspector struct {
	page *model.PageInspection
	err  error
}

func (f *fakeInspector) InspectPage(ctx context.Context, rawURL string) (*model.PageInspection, error) {
	return f.page, f.err
}

type fakeBackend struct {
	playErr error
	playing bool
}

func (b *fakeBackend) Play(source string, volume int) error {
	if b.playErr != nil {
		return b.playErr
	}
	b.playing = true
	return nil
}

func (b *fakeBackend) Stop() error {
	if !b.playing {
		return audio.ErrNotPlaying
	}
	b.playing = false
	return nil
}

func (b *fakeBackend) Playing() bool {
	return b.playing
}

func (b *fakeBackend) SetExitCallback(func(error)) {}

func newTestSession(engine *fakeEngine) (*Session, *logbook.Logbook) {
	book := logbook.New(zerolog.Nop())
	return New(Options{
		Engine:  engine,
		Logbook: book,
		Logger:  zerolog.Nop(),
	}), book
}

func bookText(book *logbook.Logbook) string {
	var lines []string
	for _, entry := range book.Entries() {
		lines = append(lines, entry.Message)
	}
	return strings.Join(lines, "\n")
}

func TestDownloadSuccess(t *testing.T) {
	engine := &fakeEngine{
		outcome: model.RetrievalOutcome{SavedFilename: "song.mp3", SavedPath: "/tmp/song.mp3", TotalBytes: 2048},
		events: []model.ProgressEvent{
			model.NewProgressEvent("", 1024, 2048),
			model.CompletedProgressEvent("", 2048, 2048),
		},
	}
	s, _ := newTestSession(engine)

	var events []model.ProgressEvent
	s.SetProgressCallback(func(ev model.ProgressEvent) {
		events = append(events, ev)
	})
	var busyStates []bool
	s.SetBusyCallback(func(busy bool) {
		busyStates = append(busyStates, busy)
	})

	res := s.Dispatch(context.Background(), Download("https://x.test/song.mp3", ""))

	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.Outcome == nil || res.Outcome.SavedFilename != "song.mp3" {
		t.Errorf("Outcome got %+v, expected song.mp3", res.Outcome)
	}
	if len(events) != 2 {
		t.Errorf("progress events got %d, expected 2", len(events))
	}
	if len(busyStates) != 2 || !busyStates[0] || busyStates[1] {
		t.Errorf("busy callbacks got %v, expected [true false]", busyStates)
	}
	if s.Busy() {
		t.Error("session should not be busy after the download")
	}
	if s.LastSaved() != "/tmp/song.mp3" {
		t.Errorf("LastSaved got %q, expected %q", s.LastSaved(), "/tmp/song.mp3")
	}
}

func TestDownloadFailureReleasesBusy(t *testing.T) {
	engine := &fakeEngine{outcome: model.HTTPFailure("", 404)}
	s, _ := newTestSession(engine)

	res := s.Dispatch(context.Background(), Download("https://x.test/missing.mp3", ""))

	var retrievalErr *model.RetrievalError
	if !errors.As(res.Err, &retrievalErr) {
		t.Fatalf("expected *model.RetrievalError, got %v", res.Err)
	}
	if retrievalErr.Kind != model.ErrorKindHTTP || retrievalErr.HTTPStatus != 404 {
		t.Errorf("error got %+v, expected HTTP 404", retrievalErr)
	}
	if s.Busy() {
		t.Error("session should not be busy after a failed download")
	}
	if s.LastSaved() != "" {
		t.Errorf("LastSaved got %q, expected empty", s.LastSaved())
	}

	// the session stays usable
	engine.outcome = model.RetrievalOutcome{SavedFilename: "ok.mp3", SavedPath: "/tmp/ok.mp3"}
	if res := s.Dispatch(context.Background(), Download("https://x.test/ok.mp3", "")); !res.OK() {
		t.Errorf("second download should succeed, got %v", res.Err)
	}
}

func TestDownloadEmptyURL(t *testing.T) {
	engine := &fakeEngine{}
	s, book := newTestSession(engine)

	res := s.Dispatch(context.Background(), Download("   ", ""))

	if !errors.Is(res.Err, ErrNoURL) {
		t.Errorf("expected ErrNoURL, got %v", res.Err)
	}
	if engine.calls.Load() != 0 {
		t.Errorf("engine calls got %d, expected 0", engine.calls.Load())
	}
	entries := book.Entries()
	if len(entries) != 1 || entries[0].Severity != model.SeverityWarn {
		t.Errorf("expected one warn entry, got %+v", entries)
	}
}

func TestDownloadPassesFilenameHint(t *testing.T) {
	engine := &fakeEngine{outcome: model.RetrievalOutcome{SavedFilename: "clip.mp4"}}
	s, book := newTestSession(engine)

	s.Dispatch(context.Background(), Download(" https://x.test/watch?v=1 ", "clip"))

	engine.lastMu.Lock()
	req := engine.lastReq
	engine.lastMu.Unlock()

	if req.SourceURL != "https://x.test/watch?v=1" {
		t.Errorf("SourceURL got %q, expected trimmed URL", req.SourceURL)
	}
	if req.FilenameHint != "clip" {
		t.Errorf("FilenameHint got %q, expected %q", req.FilenameHint, "clip")
	}
	if !strings.Contains(bookText(book), "Could not tell from the URL") {
		t.Errorf("expected unclassified hint in log, got:\n%s", bookText(book))
	}
}

func TestDownloadPageHint(t *testing.T) {
	engine := &fakeEngine{outcome: model.RetrievalOutcome{SavedFilename: "watch.html"}}
	s, book := newTestSession(engine)

	s.Dispatch(context.Background(), Download("https://x.test/watch", ""))

	if !strings.Contains(bookText(book), "looks like a web page") {
		t.Errorf("expected page hint in log, got:\n%s", bookText(book))
	}
}

func TestDownloadBusy(t *testing.T) {
	engine := &fakeEngine{
		outcome: model.RetrievalOutcome{SavedFilename: "a.mp3"},
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
	s, _ := newTestSession(engine)

	done := make(chan Result, 1)
	go func() {
		done <- s.Dispatch(context.Background(), Download("https://x.test/a.mp3", ""))
	}()
	<-engine.started

	if !s.Busy() {
		t.Error("session should be busy while the engine runs")
	}
	if res := s.Dispatch(context.Background(), Download("https://x.test/b.mp3", "")); !errors.Is(res.Err, ErrBusy) {
		t.Errorf("second download got %v, expected ErrBusy", res.Err)
	}
	if res := s.Dispatch(context.Background(), Probe("https://x.test/b.mp3")); !errors.Is(res.Err, ErrBusy) {
		t.Errorf("probe got %v, expected ErrBusy", res.Err)
	}

	close(engine.gate)
	if res := <-done; !res.OK() {
		t.Errorf("first download should succeed, got %v", res.Err)
	}
	if engine.calls.Load() != 1 {
		t.Errorf("engine calls got %d, expected 1", engine.calls.Load())
	}
	if engine.probes.Load() != 0 {
		t.Errorf("probes got %d, expected 0", engine.probes.Load())
	}
}

func TestCancel(t *testing.T) {
	engine := &fakeEngine{
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
	s, _ := newTestSession(engine)

	if s.Cancel() {
		t.Error("Cancel without a download should return false")
	}

	done := make(chan Result, 1)
	go func() {
		done <- s.Dispatch(context.Background(), Download("https://x.test/a.mp3", ""))
	}()
	<-engine.started

	if !s.Cancel() {
		t.Error("Cancel during a download should return true")
	}

	res := <-done
	var retrievalErr *model.RetrievalError
	if !errors.As(res.Err, &retrievalErr) || retrievalErr.Kind != model.ErrorKindCanceled {
		t.Errorf("expected canceled error, got %v", res.Err)
	}
	if s.Busy() {
		t.Error("session should not be busy after cancel")
	}
}

func TestCancelLogsRunningOperation(t *testing.T) {
	tests := []struct {
		name     string
		intent   Intent
		expected string
	}{
		{"download", Download("https://x.test/a.mp3", ""), "Download canceled by user"},
		{"head check", Probe("https://x.test/a.mp3"), "HEAD check canceled by user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{
				gate:         make(chan struct{}),
				started:      make(chan struct{}),
				probeGate:    make(chan struct{}),
				probeStarted: make(chan struct{}),
			}
			s, book := newTestSession(engine)

			done := make(chan Result, 1)
			go func() {
				done <- s.Dispatch(context.Background(), tt.intent)
			}()
			if tt.intent.Kind == IntentProbe {
				<-engine.probeStarted
			} else {
				<-engine.started
			}

			if !s.Cancel() {
				t.Fatal("Cancel should return true while an operation runs")
			}
			<-done

			text := bookText(book)
			if !strings.Contains(text, tt.expected) {
				t.Errorf("log got %q, expected it to contain %q", text, tt.expected)
			}
			if tt.intent.Kind == IntentProbe && strings.Contains(text, "Download canceled") {
				t.Errorf("HEAD check cancel logged as a download: %q", text)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	engine := &fakeEngine{}
	s, _ := newTestSession(engine)

	res := s.Dispatch(context.Background(), Probe("https://x.test/song.mp3"))
	if !res.OK() || res.Probe == nil || !res.Probe.OK {
		t.Errorf("probe result got %+v", res)
	}
	if engine.probes.Load() != 1 {
		t.Errorf("probes got %d, expected 1", engine.probes.Load())
	}

	if res := s.Dispatch(context.Background(), Probe("")); !errors.Is(res.Err, ErrNoURL) {
		t.Errorf("empty probe got %v, expected ErrNoURL", res.Err)
	}
}

func TestCommandIntents(t *testing.T) {
	s, book := newTestSession(&fakeEngine{})

	res := s.Dispatch(context.Background(), BuildCommand("https://x.test/v", command.ModeAudio, ""))
	expected := command.Build("https://x.test/v", command.ModeAudio, "")
	if res.Command != expected {
		t.Errorf("Command got %q, expected %q", res.Command, expected)
	}
	if book.Len() != 0 {
		t.Errorf("building a command should not log, got %d entries", book.Len())
	}

	res = s.Dispatch(context.Background(), Intent{Kind: IntentCopyCommand, URL: "https://x.test/v", Mode: command.ModeBest})
	if res.Text != command.Build("https://x.test/v", command.ModeBest, "") {
		t.Errorf("copy text got %q", res.Text)
	}
	if book.Len() != 1 {
		t.Errorf("copying a command should log once, got %d entries", book.Len())
	}
}

func TestCopyLog(t *testing.T) {
	s, book := newTestSession(&fakeEngine{})

	res := s.Dispatch(context.Background(), Intent{Kind: IntentCopyLog})
	if res.Text != logbook.EmptyText {
		t.Errorf("empty log text got %q, expected %q", res.Text, logbook.EmptyText)
	}

	book.Infof("hello")
	res = s.Dispatch(context.Background(), Intent{Kind: IntentCopyLog})
	if !strings.HasSuffix(res.Text, "hello") {
		t.Errorf("log text got %q, expected it to end with hello", res.Text)
	}
}

func TestExplainAndClear(t *testing.T) {
	s, book := newTestSession(&fakeEngine{})

	s.Dispatch(context.Background(), Intent{Kind: IntentExplain})
	s.Dispatch(context.Background(), Intent{Kind: IntentClear})

	entries := book.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries got %d, expected 2", len(entries))
	}
	if entries[0].Severity != model.SeverityWarn || entries[0].Message != command.ExplainNoticeEN {
		t.Errorf("explain entry got %+v", entries[0])
	}
	if entries[1].Message != "Inputs cleared" {
		t.Errorf("clear entry got %q", entries[1].Message)
	}
}

func TestUnknownIntent(t *testing.T) {
	s, _ := newTestSession(&fakeEngine{})
	if res := s.Dispatch(context.Background(), Intent{Kind: "dance"}); res.Err == nil {
		t.Error("unknown intent should fail")
	}
}

func TestInspectPage(t *testing.T) {
	page := model.NewPageInspection("https://x.test/watch")
	page.Title = "Watch"
	page.AddLink(&model.MediaLink{URL: "https://x.test/a.mp4", Kind: model.MediaLinkVideo})
	page.AddLink(&model.MediaLink{URL: "https://x.test/b.mp3", Kind: model.MediaLinkAnchor, Label: "B side"})

	book := logbook.New(zerolog.Nop())
	s := New(Options{
		Engine:    &fakeEngine{},
		Inspector: &fakeInspector{page: page},
		Logbook:   book,
		Logger:    zerolog.Nop(),
	})

	res := s.Dispatch(context.Background(), Intent{Kind: IntentInspectPage, URL: "https://x.test/watch"})
	if !res.OK() || res.Page != page {
		t.Fatalf("inspect result got %+v", res)
	}

	text := bookText(book)
	for _, want := range []string{"Found 2 media link(s) on Watch", "https://x.test/a.mp4", "(B side)"} {
		if !strings.Contains(text, want) {
			t.Errorf("log should contain %q, got:\n%s", want, text)
		}
	}
}

func TestInspectPageErrors(t *testing.T) {
	s, _ := newTestSession(&fakeEngine{})
	if res := s.Dispatch(context.Background(), Intent{Kind: IntentInspectPage, URL: "https://x.test/"}); !errors.Is(res.Err, ErrNoInspector) {
		t.Errorf("got %v, expected ErrNoInspector", res.Err)
	}

	failure := errors.New("boom")
	book := logbook.New(zerolog.Nop())
	s = New(Options{Engine: &fakeEngine{}, Inspector: &fakeInspector{err: failure}, Logbook: book})
	if res := s.Dispatch(context.Background(), Intent{Kind: IntentInspectPage, URL: "https://x.test/"}); !errors.Is(res.Err, failure) {
		t.Errorf("got %v, expected inspector error", res.Err)
	}

	empty := model.NewPageInspection("https://x.test/")
	s = New(Options{Engine: &fakeEngine{}, Inspector: &fakeInspector{page: empty}, Logbook: book})
	if res := s.Dispatch(context.Background(), Intent{Kind: IntentInspectPage, URL: "https://x.test/"}); !res.OK() {
		t.Errorf("page without links should not fail, got %v", res.Err)
	}
	if !strings.Contains(bookText(book), "No media links found") {
		t.Errorf("expected no-links warning, got:\n%s", bookText(book))
	}
}

func TestReveal(t *testing.T) {
	var revealed string
	engine := &fakeEngine{outcome: model.RetrievalOutcome{SavedFilename: "a.mp3", SavedPath: "/tmp/a.mp3"}}
	s := New(Options{
		Engine: engine,
		Reveal: func(path string) error {
			revealed = path
			return nil
		},
	})

	if res := s.Dispatch(context.Background(), Intent{Kind: IntentReveal}); !errors.Is(res.Err, ErrNothingSaved) {
		t.Errorf("got %v, expected ErrNothingSaved", res.Err)
	}

	s.Dispatch(context.Background(), Download("https://x.test/a.mp3", ""))
	res := s.Dispatch(context.Background(), Intent{Kind: IntentReveal})
	if !res.OK() {
		t.Errorf("reveal failed: %v", res.Err)
	}
	if revealed != "/tmp/a.mp3" {
		t.Errorf("revealed got %q, expected %q", revealed, "/tmp/a.mp3")
	}
}

func TestAudioIntents(t *testing.T) {
	s, _ := newTestSession(&fakeEngine{})
	if res := s.Dispatch(context.Background(), Intent{Kind: IntentAudioStart}); !errors.Is(res.Err, ErrNoAudio) {
		t.Errorf("got %v, expected ErrNoAudio", res.Err)
	}

	backend := &fakeBackend{}
	controller := audio.NewController(audio.ControllerOptions{Backend: backend, Logger: zerolog.Nop()})
	s = New(Options{Engine: &fakeEngine{}, Audio: controller, Logger: zerolog.Nop()})

	res := s.Dispatch(context.Background(), Intent{Kind: IntentAudioStart})
	if !res.OK() || res.Audio.State != audio.StatePlaying {
		t.Errorf("start got %+v", res)
	}

	res = s.Dispatch(context.Background(), Intent{Kind: IntentAudioMute})
	if !res.OK() || !res.Audio.Muted {
		t.Errorf("mute got %+v", res)
	}

	res = s.Dispatch(context.Background(), Intent{Kind: IntentAudioSetLink, Link: "ftp://x.test/a.mp3"})
	if !errors.Is(res.Err, audio.ErrInvalidLink) {
		t.Errorf("set link got %v, expected ErrInvalidLink", res.Err)
	}

	res = s.Dispatch(context.Background(), Intent{Kind: IntentAudioStop})
	if !res.OK() || res.Audio.State != audio.StateStopped {
		t.Errorf("stop got %+v", res)
	}

	res = s.Dispatch(context.Background(), Intent{Kind: IntentAudioState})
	if !res.OK() || res.Audio.Strategy != audio.StrategyRemote || res.Audio.State != audio.StateStopped {
		t.Errorf("state got %+v", res)
	}

	res = s.Dispatch(context.Background(), Intent{Kind: IntentAudioToggle})
	if !res.OK() || res.Audio.Enabled {
		t.Errorf("toggle got %+v, expected disabled", res)
	}
}

func TestStartBlockedAudio(t *testing.T) {
	backend := &fakeBackend{playErr: errors.New("no output device")}
	controller := audio.NewController(audio.ControllerOptions{Backend: backend, Logger: zerolog.Nop()})
	book := logbook.New(zerolog.Nop())
	s := New(Options{Engine: &fakeEngine{}, Audio: controller, Logbook: book, Logger: zerolog.Nop()})

	s.Start()

	if controller.State() != audio.StateBlocked {
		t.Errorf("audio state got %v, expected %v", controller.State(), audio.StateBlocked)
	}
	entries := book.Entries()
	if len(entries) < 2 || entries[0].Message != "Ready" {
		t.Errorf("expected greeting lines first, got %+v", entries)
	}
}

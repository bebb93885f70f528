package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ytget/direct-downloader/internal/model"
)

// Engine defaults
const (
	DefaultChunkSize    = 64 * 1024
	DefaultProbeTimeout = 15 * time.Second
	MaxRedirects        = 10
	MaxChunkSize        = 16 << 20

	// maxPrealloc bounds how much of a declared Content-Length is reserved
	// before any byte arrives
	maxPrealloc = 8 << 20
)

var errLimitExceeded = errors.New("response body exceeds the size limit")

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Client  *http.Client
	Saver   Saver
	Journal Journal
	Logger  zerolog.Logger

	ChunkSize    int           // read buffer size per chunk
	RateLimit    int64         // bytes per second, 0 = unlimited
	MaxSize      int64         // max accepted body size, 0 = unlimited
	ProbeTimeout time.Duration // timeout of the advisory HEAD request

	// DisableStreaming reads the whole body in one call; only the terminal
	// progress event is emitted then.
	DisableStreaming bool
}

// Service is the transfer engine. It is safe to reuse across retrievals; a
// failed retrieval leaves nothing behind that affects the next one.
type Service struct {
	client       *http.Client
	saver        Saver
	journal      Journal
	log          zerolog.Logger
	chunkSize    int
	limiter      *rate.Limiter
	maxSize      int64
	probeTimeout time.Duration
	streaming    bool

	statusMutex sync.RWMutex
	status      model.RetrievalStatus
	onStatus    func(model.RetrievalStatus) // callback for UI updates
}

// NewService creates a new transfer engine
func NewService(opts Options) *Service {
	client := opts.Client
	if client == nil {
		client = NewHTTPClient()
	}

	saver := opts.Saver
	if saver == nil {
		saver = NewFileSaver(FileSaverOptions{Dir: ".", Logger: opts.Logger})
	}

	var journal Journal = nopJournal{}
	if opts.Journal != nil {
		journal = opts.Journal
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = min(chunkSize, MaxChunkSize)

	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		// burst must cover one full chunk so WaitN never rejects a read
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), chunkSize)
	}

	return &Service{
		client:       client,
		saver:        saver,
		journal:      journal,
		log:          opts.Logger,
		chunkSize:    chunkSize,
		limiter:      limiter,
		maxSize:      opts.MaxSize,
		probeTimeout: probeTimeout,
		streaming:    !opts.DisableStreaming,
		status:       model.RetrievalStatusIdle,
	}
}

// NewHTTPClient returns the client used when Options.Client is nil. There is
// no overall timeout; retrievals are bounded by their context.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", MaxRedirects)
			}
			return nil
		},
	}
}

// SetStatusCallback sets the callback function for status changes
func (s *Service) SetStatusCallback(callback func(model.RetrievalStatus)) {
	s.statusMutex.Lock()
	s.onStatus = callback
	s.statusMutex.Unlock()
}

// Status returns the status of the current or last retrieval
func (s *Service) Status() model.RetrievalStatus {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.status
}

// Retrieve downloads req.SourceURL and saves it. onProgress may be nil.
func (s *Service) Retrieve(ctx context.Context, req model.RetrievalRequest, onProgress ProgressFunc) (outcome model.RetrievalOutcome) {
	log := s.log.With().Str("retrieval_id", req.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Retrieval panicked")
			outcome = model.Failure(req.ID, model.ErrorKindTransport, fmt.Errorf("internal error: %v", r))
		}
		s.finish(outcome)
	}()

	u, err := ValidateSourceURL(req.SourceURL)
	if err != nil {
		s.journal.Add(model.SeverityBad, fmt.Sprintf("Invalid URL: %v", err))
		return model.Failure(req.ID, model.ErrorKindInvalidInput, err)
	}
	sourceURL := u.String()

	s.journal.Add(model.SeverityInfo, "Download started: "+sourceURL)
	log.Info().Str("url", sourceURL).Msg("Starting retrieval")

	// Advisory only: the result is logged and otherwise ignored.
	s.setStatus(model.RetrievalStatusProbing)
	s.Probe(ctx, sourceURL)

	s.setStatus(model.RetrievalStatusDownloading)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return s.fail(req.ID, model.ErrorKindInvalidInput, err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return s.fail(req.ID, model.ErrorKindCanceled, ctx.Err())
		}
		log.Warn().Err(err).Msg("GET failed")
		s.journal.Add(model.SeverityBad, "Fetch failed (network/cross-origin). Check that this is a direct file link.")
		return model.Failure(req.ID, model.ErrorKindTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.journal.Add(model.SeverityBad, fmt.Sprintf("Download failed: HTTP %d", resp.StatusCode))
		return model.HTTPFailure(req.ID, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	total := declaredSize(resp)
	if s.maxSize > 0 && total > s.maxSize {
		return s.fail(req.ID, model.ErrorKindLimitExceeded,
			fmt.Errorf("declared size %s exceeds limit %s", model.FormatBytes(total), model.FormatBytes(s.maxSize)))
	}

	filename := ResolveFilename(req.FilenameHint, sourceURL, contentType)
	log.Debug().
		Str("content_type", contentType).
		Int64("total", total).
		Str("filename", filename).
		Msg("Response accepted")

	tracker := &progressTracker{requestID: req.ID, total: total, emit: onProgress}

	var payload []byte
	if s.streaming {
		payload, err = s.readStream(ctx, resp.Body, tracker)
	} else {
		payload, err = s.readAll(resp.Body)
	}
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return s.fail(req.ID, model.ErrorKindCanceled, ctx.Err())
		case errors.Is(err, errLimitExceeded):
			return s.fail(req.ID, model.ErrorKindLimitExceeded, err)
		default:
			return s.fail(req.ID, model.ErrorKindTransport, fmt.Errorf("failed to read response body: %w", err))
		}
	}
	received := int64(len(payload))

	s.setStatus(model.RetrievalStatusSaving)
	savedPath, err := s.saver.Save(ctx, filename, payload)
	if err != nil {
		if ctx.Err() != nil {
			return s.fail(req.ID, model.ErrorKindCanceled, ctx.Err())
		}
		return s.fail(req.ID, model.ErrorKindSave, err)
	}

	tracker.complete(received)

	// the saver may number the name to avoid overwriting
	savedName := filepath.Base(savedPath)
	s.journal.Add(model.SeverityOK, fmt.Sprintf("Completed: %s (%s)", savedName, model.FormatBytes(received)))
	log.Info().Str("path", savedPath).Int64("bytes", received).Msg("Retrieval completed")

	return model.RetrievalOutcome{
		RequestID:     req.ID,
		SavedFilename: savedName,
		SavedPath:     savedPath,
		TotalBytes:    received,
	}
}

// Probe issues a HEAD request against rawURL. Failures are logged and
// reported in the result, never returned as errors.
func (s *Service) Probe(ctx context.Context, rawURL string) model.ProbeResult {
	var result model.ProbeResult

	u, err := ValidateSourceURL(rawURL)
	if err != nil {
		result.Err = err
		s.journal.Add(model.SeverityWarn, fmt.Sprintf("HEAD check skipped: %v", err))
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		result.Err = err
		s.journal.Add(model.SeverityWarn, "HEAD check failed (network/server settings)")
		return result
	}

	resp, err := s.client.Do(req)
	if err != nil {
		result.Err = err
		s.log.Debug().Err(err).Str("url", u.String()).Msg("HEAD probe failed")
		s.journal.Add(model.SeverityWarn, "HEAD check failed (network/cross-origin/server settings)")
		return result
	}
	resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	result.ContentType = resp.Header.Get("Content-Type")
	result.ContentLength = declaredSize(resp)

	verdict, severity := "OK", model.SeverityOK
	if !result.OK {
		verdict, severity = "FAIL", model.SeverityBad
	}
	s.journal.Add(severity, fmt.Sprintf("HEAD response: %s | type=%s | size=%s",
		verdict, result.ContentType, model.FormatBytes(result.ContentLength)))

	return result
}

// readStream reads body chunk by chunk, emitting a progress event per chunk
func (s *Service) readStream(ctx context.Context, body io.Reader, tracker *progressTracker) ([]byte, error) {
	var buf bytes.Buffer
	if tracker.total > 0 && (s.maxSize == 0 || tracker.total <= s.maxSize) {
		buf.Grow(int(min(tracker.total, maxPrealloc)))
	}

	chunk := make([]byte, s.chunkSize)
	var received int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)

			if s.maxSize > 0 && received > s.maxSize {
				return nil, errLimitExceeded
			}

			tracker.update(received)

			if s.limiter != nil {
				if werr := s.limiter.WaitN(ctx, n); werr != nil {
					return nil, werr
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// readAll is the non-streaming path: one read of the full body
func (s *Service) readAll(body io.Reader) ([]byte, error) {
	if s.maxSize > 0 {
		body = io.LimitReader(body, s.maxSize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, errLimitExceeded
	}
	return data, nil
}

// fail logs a failure with its kind-specific hint and builds the outcome
func (s *Service) fail(requestID string, kind model.ErrorKind, cause error) model.RetrievalOutcome {
	outcome := model.Failure(requestID, kind, cause)
	s.journal.Add(model.SeverityBad, fmt.Sprintf("Download failed: %s", outcome.Err.Hint()))
	s.log.Warn().Err(cause).Str("retrieval_id", requestID).Str("kind", kind.String()).Msg("Retrieval failed")
	return outcome
}

func (s *Service) finish(outcome model.RetrievalOutcome) {
	if outcome.OK() {
		s.setStatus(model.RetrievalStatusCompleted)
		return
	}
	s.setStatus(model.RetrievalStatusError)
}

func (s *Service) setStatus(status model.RetrievalStatus) {
	s.statusMutex.Lock()
	s.status = status
	callback := s.onStatus
	s.statusMutex.Unlock()

	if callback != nil {
		callback(status)
	}
}

// declaredSize returns Content-Length, or 0 when absent or invalid
func declaredSize(resp *http.Response) int64 {
	if header := resp.Header.Get("Content-Length"); header != "" {
		if n, err := strconv.ParseInt(header, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	return 0
}

// progressTracker emits progress events for one retrieval and remembers the
// last one so the terminal 100% event is not sent twice.
type progressTracker struct {
	requestID string
	total     int64
	emit      ProgressFunc
	last      model.ProgressEvent
	emitted   bool
}

func (p *progressTracker) update(received int64) {
	p.send(model.NewProgressEvent(p.requestID, received, p.total))
}

func (p *progressTracker) complete(received int64) {
	final := model.CompletedProgressEvent(p.requestID, received, p.total)
	if p.emitted && p.last.IsComplete() && p.last.ReceivedBytes == final.ReceivedBytes {
		return
	}
	p.send(final)
}

func (p *progressTracker) send(ev model.ProgressEvent) {
	p.last = ev
	p.emitted = true
	if p.emit != nil {
		p.emit(ev)
	}
}

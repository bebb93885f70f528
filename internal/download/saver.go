package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// DefaultReleaseDelay is how long a staging file outlives its commit
const DefaultReleaseDelay = 1500 * time.Millisecond

const stagingPattern = ".direct-dl-*.part"

// maxNameAttempts bounds the "name (n).ext" search
const maxNameAttempts = 1000

// ErrInsufficientSpace is returned when the target volume cannot hold the payload
var ErrInsufficientSpace = errors.New("not enough free disk space")

// FileSaverOptions configures a FileSaver
type FileSaverOptions struct {
	Dir    string
	Logger zerolog.Logger

	// ReleaseDelay keeps the staging file around after commit. Negative
	// selects DefaultReleaseDelay, 0 releases immediately.
	ReleaseDelay time.Duration

	// SkipSpaceCheck disables the free space check before staging
	SkipSpaceCheck bool
}

// FileSaver writes payloads into a directory. Each save goes through a hidden
// staging file that is committed under a unique name and released after a
// short grace delay, whether or not the commit succeeded.
type FileSaver struct {
	dir          string
	log          zerolog.Logger
	releaseDelay time.Duration
	checkSpace   bool

	mu       sync.Mutex // serializes name selection and commit
	releases sync.WaitGroup
}

// NewFileSaver creates a saver for opts.Dir
func NewFileSaver(opts FileSaverOptions) *FileSaver {
	delay := opts.ReleaseDelay
	if delay < 0 {
		delay = DefaultReleaseDelay
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	return &FileSaver{
		dir:          dir,
		log:          opts.Logger,
		releaseDelay: delay,
		checkSpace:   !opts.SkipSpaceCheck,
	}
}

// Dir returns the target directory
func (s *FileSaver) Dir() string {
	return s.dir
}

// Save writes payload as filename inside the target directory and returns
// the final path. An existing file is never overwritten.
func (s *FileSaver) Save(ctx context.Context, filename string, payload []byte) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		name = DefaultFilename
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	if s.checkSpace {
		if err := s.ensureSpace(int64(len(payload))); err != nil {
			return "", err
		}
	}

	staging, err := os.CreateTemp(s.dir, stagingPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	stagingPath := staging.Name()
	renamed := false
	defer func() { s.scheduleRelease(stagingPath, renamed) }()

	if _, err := staging.Write(payload); err != nil {
		staging.Close()
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := staging.Close(); err != nil {
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	finalPath, linked, err := s.commit(stagingPath, name)
	if err != nil {
		return "", err
	}
	renamed = !linked

	s.log.Debug().Str("path", finalPath).Int("bytes", len(payload)).Msg("Saved file")
	return finalPath, nil
}

// Wait blocks until all scheduled staging releases have run
func (s *FileSaver) Wait() {
	s.releases.Wait()
}

// commit publishes the staging file under a free name. It prefers a hard
// link so the staging file can be released independently, and falls back to
// rename on filesystems without link support.
func (s *FileSaver) commit(stagingPath, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < maxNameAttempts; i++ {
		candidate := filepath.Join(s.dir, numberedName(name, i))

		err := os.Link(stagingPath, candidate)
		if err == nil {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrExist) {
			continue
		}

		// no link support: rename, but never onto an existing file
		if _, statErr := os.Stat(candidate); statErr == nil {
			continue
		}
		if err := os.Rename(stagingPath, candidate); err != nil {
			return "", false, fmt.Errorf("failed to save file: %w", err)
		}
		return candidate, false, nil
	}

	return "", false, fmt.Errorf("failed to save file: no free name for %q", name)
}

func (s *FileSaver) ensureSpace(need int64) error {
	usage, err := disk.Usage(s.dir)
	if err != nil {
		s.log.Debug().Err(err).Str("dir", s.dir).Msg("Disk usage unavailable, skipping space check")
		return nil
	}
	if usage.Free < uint64(need) {
		return fmt.Errorf("%w: need %d bytes, %d available", ErrInsufficientSpace, need, usage.Free)
	}
	return nil
}

// scheduleRelease removes the staging file after the grace delay. gone means
// the file was already moved away by rename.
func (s *FileSaver) scheduleRelease(stagingPath string, gone bool) {
	if gone {
		return
	}

	release := func() {
		if err := os.Remove(stagingPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", stagingPath).Msg("Failed to release staging file")
		}
	}

	if s.releaseDelay == 0 {
		release()
		return
	}

	s.releases.Add(1)
	time.AfterFunc(s.releaseDelay, func() {
		defer s.releases.Done()
		release()
	})
}

// numberedName returns name for n == 0, otherwise "base (n).ext"
func numberedName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := ""
	if loc := extensionRe.FindStringIndex(name); loc != nil {
		ext = name[loc[0]:]
	}
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}

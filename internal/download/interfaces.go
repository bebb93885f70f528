package download

import (
	"context"

	"github.com/ytget/direct-downloader/internal/model"
)

// ProgressFunc receives progress events on the retrieving goroutine
type ProgressFunc func(model.ProgressEvent)

// Retriever defines the interface for the transfer engine.
type Retriever interface {
	// Retrieve runs one retrieval to its terminal outcome. It never panics
	// and never returns a partially filled success.
	Retrieve(ctx context.Context, req model.RetrievalRequest, onProgress ProgressFunc) model.RetrievalOutcome

	// Probe issues the advisory HEAD request and logs what it learned
	Probe(ctx context.Context, rawURL string) model.ProbeResult

	Status() model.RetrievalStatus
	SetStatusCallback(func(model.RetrievalStatus))
}

// Saver writes a finished payload somewhere the user can reach it and
// returns the final path.
type Saver interface {
	Save(ctx context.Context, filename string, payload []byte) (string, error)
}

// Journal receives the user-visible activity lines
type Journal interface {
	Add(severity model.Severity, message string)
}

type nopJournal struct{}

func (nopJournal) Add(model.Severity, string) {}

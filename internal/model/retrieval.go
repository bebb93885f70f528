package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RetrievalIDPrefix prefixes every generated retrieval ID
const RetrievalIDPrefix = "retrieval-"

// RetrievalRequest describes one user-initiated download. It lives only for
// the duration of a single retrieval and is never reused for a retry.
type RetrievalRequest struct {
	ID           string
	SourceURL    string
	FilenameHint string // optional, sanitized before use
	CreatedAt    time.Time
}

// NewRetrievalRequest creates a request with a fresh ID
func NewRetrievalRequest(sourceURL, filenameHint string) RetrievalRequest {
	return RetrievalRequest{
		ID:           generateRetrievalID(),
		SourceURL:    strings.TrimSpace(sourceURL),
		FilenameHint: filenameHint,
		CreatedAt:    time.Now(),
	}
}

// ErrorKind classifies a failed retrieval
type ErrorKind string

const (
	// ErrorKindInvalidInput means the URL was rejected before any network call
	ErrorKindInvalidInput ErrorKind = "InvalidInput"

	// ErrorKindTransport means the request never produced an HTTP status
	// (DNS, refused connection, TLS, broken stream)
	ErrorKindTransport ErrorKind = "TransportError"

	// ErrorKindHTTP means the server answered with a non-2xx status
	ErrorKindHTTP ErrorKind = "HttpError"

	// ErrorKindCanceled means the caller's context ended the retrieval
	ErrorKindCanceled ErrorKind = "Canceled"

	// ErrorKindLimitExceeded means the body is larger than the configured cap
	ErrorKindLimitExceeded ErrorKind = "LimitExceeded"

	// ErrorKindSave means the payload could not be written locally
	ErrorKindSave ErrorKind = "SaveError"
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	return string(k)
}

// RetrievalError is the failure half of a RetrievalOutcome
type RetrievalError struct {
	Kind       ErrorKind
	HTTPStatus int // only set for ErrorKindHTTP
	Cause      error
}

// Error implements error
func (e *RetrievalError) Error() string {
	switch {
	case e.Kind == ErrorKindHTTP:
		return fmt.Sprintf("%s: HTTP %d", e.Kind, e.HTTPStatus)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause
func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Hint returns a short English explanation suitable for end users
func (e *RetrievalError) Hint() string {
	switch e.Kind {
	case ErrorKindInvalidInput:
		return "enter a full http:// or https:// URL"
	case ErrorKindTransport:
		return "check network or cross-origin restrictions; a direct file link works best"
	case ErrorKindHTTP:
		return fmt.Sprintf("server returned status %d", e.HTTPStatus)
	case ErrorKindCanceled:
		return "download was canceled"
	case ErrorKindLimitExceeded:
		return "file is larger than the configured size limit"
	case ErrorKindSave:
		return "could not write the file to the download directory"
	default:
		return "download failed"
	}
}

// RetrievalOutcome is the single terminal value of a retrieval. Err is nil on
// success; otherwise only Err is meaningful.
type RetrievalOutcome struct {
	RequestID     string
	SavedFilename string // base name actually written, numbered on collision
	SavedPath     string
	TotalBytes    int64 // bytes actually received
	Err           *RetrievalError
}

// OK reports whether the retrieval succeeded
func (o RetrievalOutcome) OK() bool {
	return o.Err == nil
}

// Failure builds a failed outcome
func Failure(requestID string, kind ErrorKind, cause error) RetrievalOutcome {
	return RetrievalOutcome{
		RequestID: requestID,
		Err:       &RetrievalError{Kind: kind, Cause: cause},
	}
}

// HTTPFailure builds a failed outcome carrying the response status
func HTTPFailure(requestID string, status int) RetrievalOutcome {
	return RetrievalOutcome{
		RequestID: requestID,
		Err:       &RetrievalError{Kind: ErrorKindHTTP, HTTPStatus: status},
	}
}

// ProbeResult is what the advisory HEAD request learned. It never decides the
// outcome of a retrieval.
type ProbeResult struct {
	OK            bool
	StatusCode    int
	ContentType   string
	ContentLength int64
	Err           error
}

// generateRetrievalID generates a unique, time-ordered retrieval ID
func generateRetrievalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RetrievalIDPrefix+"%d", time.Now().UnixNano())
	}
	return RetrievalIDPrefix + id.String()
}

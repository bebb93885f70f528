package download

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// URLClass is the result of the direct-file heuristic
type URLClass int

const (
	// URLClassInvalid means the input is not an absolute http(s) URL
	URLClassInvalid URLClass = iota
	// URLClassDirectFile means the path ends in a known media extension
	URLClassDirectFile
	// URLClassPage means the URL most likely points at an HTML page
	URLClassPage
	// URLClassUnclassified means the path has no extension but a query string
	// is present; the file type may be hidden in the query, so no guess is made
	URLClassUnclassified
)

// String returns a short label for the class
func (c URLClass) String() string {
	switch c {
	case URLClassDirectFile:
		return "direct-file"
	case URLClassPage:
		return "page"
	case URLClassUnclassified:
		return "unclassified"
	default:
		return "invalid"
	}
}

// DirectFileExtensions are path extensions treated as downloadable media
var DirectFileExtensions = []string{
	"mp3", "wav", "ogg", "oga", "opus", "m4a", "aac", "flac",
	"mp4", "m4v", "webm", "mkv", "mov",
}

var (
	errNotAbsolute = errors.New("URL must be absolute, e.g. https://example.com/file.mp3")
	errBadScheme   = errors.New("URL must start with http:// or https://")
)

// ValidateSourceURL parses raw and checks it is an absolute http(s) URL with a
// host. It performs no network access.
func ValidateSourceURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("URL is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, errNotAbsolute
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errBadScheme
	}
	return u, nil
}

// ClassifyURL guesses whether raw references a media file directly
func ClassifyURL(raw string) URLClass {
	u, err := ValidateSourceURL(raw)
	if err != nil {
		return URLClassInvalid
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if ext != "" {
		for _, known := range DirectFileExtensions {
			if ext == known {
				return URLClassDirectFile
			}
		}
		return URLClassPage
	}

	if u.RawQuery != "" {
		return URLClassUnclassified
	}
	return URLClassPage
}

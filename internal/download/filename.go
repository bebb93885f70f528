package download

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxFilenameLength caps sanitized names, counted in runes
const MaxFilenameLength = 120

// DefaultFilename is used when neither the hint nor the URL yields a name
const DefaultFilename = "download"

var (
	forbiddenCharsRe = regexp.MustCompile(`[\\/:*?"<>|]+`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	extensionRe      = regexp.MustCompile(`\.[A-Za-z0-9]{1,6}$`)
)

// mediaTypeExtensions maps declared media types to fallback extensions; the
// first match wins.
var mediaTypeExtensions = []struct {
	mediaType string
	extension string
}{
	{"audio/mpeg", "mp3"},
	{"audio/wav", "wav"},
	{"audio/ogg", "ogg"},
	{"video/mp4", "mp4"},
	{"video/webm", "webm"},
}

// FallbackExtension returns the extension implied by a Content-Type header
// value, or "" when the type is not a known media type.
func FallbackExtension(contentType string) string {
	ct := strings.ToLower(contentType)
	for _, m := range mediaTypeExtensions {
		if strings.Contains(ct, m.mediaType) {
			return m.extension
		}
	}
	return ""
}

// SanitizeFilename replaces runs of characters that are invalid in file names
// with "_", collapses whitespace and truncates to MaxFilenameLength.
func SanitizeFilename(name string) string {
	s := strings.TrimSpace(name)
	s = forbiddenCharsRe.ReplaceAllString(s, "_")
	s = whitespaceRe.ReplaceAllString(s, " ")
	if utf8.RuneCountInString(s) > MaxFilenameLength {
		s = string([]rune(s)[:MaxFilenameLength])
	}
	return strings.TrimSpace(s)
}

// HasExtension reports whether name ends in a dot and 1-6 alphanumerics
func HasExtension(name string) bool {
	return extensionRe.MatchString(name)
}

// NameFromURL derives a file name from the last non-empty path segment
func NameFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return DefaultFilename
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return DefaultFilename
	}

	name := SanitizeFilename(segments[len(segments)-1])
	if name == "" {
		return DefaultFilename
	}
	return name
}

// ResolveFilename picks the name a retrieval is saved under: the sanitized
// hint, else the URL's last path segment, else DefaultFilename. The fallback
// extension for contentType is appended only when the name has none.
func ResolveFilename(hint, rawURL, contentType string) string {
	name := SanitizeFilename(hint)
	if name == "" {
		name = NameFromURL(rawURL)
	}

	if ext := FallbackExtension(contentType); ext != "" && !HasExtension(name) {
		name += "." + ext
	}
	return name
}

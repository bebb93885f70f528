package download

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"forbidden characters", "My:File*Name?", "My_File_Name_"},
		{"run collapses to one underscore", `a<>|b`, "a_b"},
		{"path separators", `dir/sub\file.mp3`, "dir_sub_file.mp3"},
		{"whitespace collapse", "  my \t  song\n.mp3  ", "my song .mp3"},
		{"quotes", `"quoted".txt`, "_quoted_.txt"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"unicode kept", "노래 제목.mp3", "노래 제목.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("가", 200)
	result := SanitizeFilename(long)
	if n := utf8.RuneCountInString(result); n != MaxFilenameLength {
		t.Errorf("SanitizeFilename length got %d, expected %d", n, MaxFilenameLength)
	}

	// a space at the cut point is trimmed
	padded := strings.Repeat("a", MaxFilenameLength-1) + " tail"
	result = SanitizeFilename(padded)
	if strings.HasSuffix(result, " ") {
		t.Errorf("SanitizeFilename(%q) kept trailing space: %q", padded, result)
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	inputs := []string{
		"My:File*Name?",
		"  a   b  ",
		strings.Repeat("x ", 100),
		`<<weird>>|"name".mp4`,
	}
	for _, input := range inputs {
		once := SanitizeFilename(input)
		twice := SanitizeFilename(once)
		if once != twice {
			t.Errorf("SanitizeFilename not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestFallbackExtension(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"audio/mpeg", "mp3"},
		{"audio/wav", "wav"},
		{"audio/ogg", "ogg"},
		{"video/mp4", "mp4"},
		{"video/webm", "webm"},
		{"Video/MP4; charset=binary", "mp4"},
		{"text/html; charset=utf-8", ""},
		{"application/octet-stream", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if result := FallbackExtension(tt.contentType); result != tt.expected {
				t.Errorf("FallbackExtension(%q) = %q, expected %q", tt.contentType, result, tt.expected)
			}
		})
	}
}

func TestHasExtension(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"song.mp3", true},
		{"clip.WEBM", true},
		{"archive.tar.gz", true},
		{"page", false},
		{"name.", false},
		{"name.toolongext", false},
		{"name.mp_3", false},
	}

	for _, tt := range tests {
		if result := HasExtension(tt.name); result != tt.expected {
			t.Errorf("HasExtension(%q) = %v, expected %v", tt.name, result, tt.expected)
		}
	}
}

func TestNameFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://x.test/song.mp3", "song.mp3"},
		{"https://x.test/a/b/clip.mp4?token=1", "clip.mp4"},
		{"https://x.test/dir/", "dir"},
		{"https://x.test/", DefaultFilename},
		{"https://x.test", DefaultFilename},
		{"https://x.test/my%20song.mp3", "my song.mp3"},
		{"https://x.test/%3Cbad%3E.mp3", "_bad_.mp3"},
		{"::bad", DefaultFilename},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if result := NameFromURL(tt.url); result != tt.expected {
				t.Errorf("NameFromURL(%q) = %q, expected %q", tt.url, result, tt.expected)
			}
		})
	}
}

func TestResolveFilename(t *testing.T) {
	tests := []struct {
		name        string
		hint        string
		url         string
		contentType string
		expected    string
	}{
		{"url name kept", "", "https://x.test/song.mp3", "audio/mpeg", "song.mp3"},
		{"page gets fallback", "", "https://x.test/page", "video/mp4", "page.mp4"},
		{"hint wins", "My:File*Name?", "https://x.test/song.mp3", "", "My_File_Name_"},
		{"hint gets fallback", "My:File*Name?", "https://x.test/song.mp3", "audio/mpeg", "My_File_Name_.mp3"},
		{"hint with extension", "track.ogg", "https://x.test/x", "audio/mpeg", "track.ogg"},
		{"blank hint falls back", "   ", "https://x.test/clip.webm", "video/webm", "clip.webm"},
		{"no path", "", "https://x.test/", "audio/wav", "download.wav"},
		{"unknown type", "", "https://x.test/page", "text/html", "page"},
		{"extension differs from type", "", "https://x.test/clip.mov", "video/mp4", "clip.mov"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ResolveFilename(tt.hint, tt.url, tt.contentType)
			if result != tt.expected {
				t.Errorf("ResolveFilename(%q, %q, %q) = %q, expected %q",
					tt.hint, tt.url, tt.contentType, result, tt.expected)
			}

			again := ResolveFilename(tt.hint, tt.url, tt.contentType)
			if again != result {
				t.Errorf("ResolveFilename not deterministic: %q then %q", result, again)
			}
		})
	}
}

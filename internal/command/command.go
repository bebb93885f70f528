// Package command renders the copy-paste recipe for the external yt-dlp
// downloader. The recipe is display text only; nothing here executes it.
package command

import (
	"strings"

	"github.com/alessio/shellescape"
)

// Mode selects what the external downloader should fetch
type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
	ModeBest  Mode = "best"
)

// Modes lists the modes in the order they are offered to the user
var Modes = []Mode{ModeBest, ModeVideo, ModeAudio}

// Recipe constants
const (
	InstallLine    = "pip install -U yt-dlp"
	Executable     = "yt-dlp"
	PlaceholderURL = "https://example.com/..."
	OutputTemplate = "%(title)s.%(ext)s"

	AudioFormat     = "mp3"
	VideoFormat     = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/best"
	BestFormat      = "bv*+ba/best"
	ExplainNoticeEN = "yt-dlp is a separate command-line tool. Run it on your own machine, and only for content the site's terms and copyright allow you to download."
)

// ParseMode maps user input to a Mode. Anything unrecognised is ModeBest.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAudio:
		return ModeAudio
	case ModeVideo:
		return ModeVideo
	default:
		return ModeBest
	}
}

// String returns the string representation of Mode
func (m Mode) String() string {
	return string(m)
}

// BuildArgs builds the yt-dlp arguments for url, mode and outDir. An empty
// url is replaced with PlaceholderURL.
func BuildArgs(url string, mode Mode, outDir string) []string {
	url = strings.TrimSpace(url)
	if url == "" {
		url = PlaceholderURL
	}

	args := []string{Executable}
	switch mode {
	case ModeAudio:
		args = append(args, "-x", "--audio-format", AudioFormat) // Extract audio as mp3
	case ModeVideo:
		args = append(args, "-f", VideoFormat) // Prefer mp4 video with m4a audio
	default:
		args = append(args, "-f", BestFormat) // Best available streams
	}

	return append(args,
		"-o", OutputPath(outDir), // Output template
		url,
	)
}

// OutputPath joins outDir and the title template with a single slash. An
// empty outDir leaves the template relative to the working directory.
func OutputPath(outDir string) string {
	dir := strings.TrimSpace(outDir)
	if dir == "" {
		return OutputTemplate
	}
	return strings.TrimRight(dir, "/\\") + "/" + OutputTemplate
}

// Build returns the two-line recipe: the install line, then the quoted
// invocation.
func Build(url string, mode Mode, outDir string) string {
	return InstallLine + "\n" + shellescape.QuoteCommand(BuildArgs(url, mode, outDir))
}

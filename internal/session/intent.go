package session

import (
	"github.com/ytget/direct-downloader/internal/audio"
	"github.com/ytget/direct-downloader/internal/command"
	"github.com/ytget/direct-downloader/internal/model"
)

// IntentKind names a user action
type IntentKind string

const (
	IntentDownload      IntentKind = "download"
	IntentProbe         IntentKind = "probe"
	IntentInspectPage   IntentKind = "inspect_page"
	IntentBuildCommand  IntentKind = "build_command"
	IntentCopyCommand   IntentKind = "copy_command"
	IntentCopyLog       IntentKind = "copy_log"
	IntentExplain       IntentKind = "explain"
	IntentClear         IntentKind = "clear"
	IntentReveal        IntentKind = "reveal"
	IntentAudioStart    IntentKind = "audio_start"
	IntentAudioStop     IntentKind = "audio_stop"
	IntentAudioToggle   IntentKind = "audio_toggle"
	IntentAudioMute     IntentKind = "audio_mute"
	IntentAudioSetLink  IntentKind = "audio_set_link"
	IntentAudioStrategy IntentKind = "audio_strategy"
	IntentAudioState    IntentKind = "audio_state"
)

// Intent is one discrete user action. Only the fields relevant to Kind are
// read.
type Intent struct {
	Kind         IntentKind
	URL          string
	FilenameHint string
	Mode         command.Mode
	OutDir       string
	Link         string
	Strategy     audio.Strategy
}

// Result is the structured answer to an Intent. Err is nil on success.
type Result struct {
	Kind    IntentKind
	Outcome *model.RetrievalOutcome
	Probe   *model.ProbeResult
	Page    *model.PageInspection
	Command string
	Text    string // clipboard payload for copy intents
	Audio   audio.Snapshot
	Err     error
}

// OK reports whether the intent succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Download builds a download intent
func Download(url, filenameHint string) Intent {
	return Intent{Kind: IntentDownload, URL: url, FilenameHint: filenameHint}
}

// Probe builds a HEAD check intent
func Probe(url string) Intent {
	return Intent{Kind: IntentProbe, URL: url}
}

// BuildCommand builds a command preview intent
func BuildCommand(url string, mode command.Mode, outDir string) Intent {
	return Intent{Kind: IntentBuildCommand, URL: url, Mode: mode, OutDir: outDir}
}

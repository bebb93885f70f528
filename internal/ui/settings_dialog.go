package ui

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/direct-downloader/internal/audio"
	"github.com/ytget/direct-downloader/internal/config"
	"github.com/ytget/direct-downloader/internal/session"
)

// SettingsDialog edits the audio link, the only value the app persists, and
// the audio source for this run
type SettingsDialog struct {
	settings     *config.Settings
	session      *session.Session
	localization *Localization
	window       fyne.Window
	downloadDir  string
	dialog       *dialog.ConfirmDialog

	// UI components
	linkEntry      *widget.Entry
	strategySelect *widget.Select
	onSaved        func()
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, sess *session.Session, localization *Localization, window fyne.Window, downloadDir string) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		session:      sess,
		localization: localization,
		window:       window,
		downloadDir:  downloadDir,
	}

	sd.createUI()
	return sd
}

// ShowSettingsDialog builds and shows the dialog; onSaved runs after a save
func ShowSettingsDialog(settings *config.Settings, sess *session.Session, localization *Localization, window fyne.Window, downloadDir string, onSaved func()) {
	sd := NewSettingsDialog(settings, sess, localization, window, downloadDir)
	sd.onSaved = onSaved
	sd.Show()
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.linkEntry = widget.NewEntry()
	sd.linkEntry.SetPlaceHolder("https://example.com/music.mp3")

	sd.strategySelect = widget.NewSelect(strategyLabels(l), nil)

	dirLabel := widget.NewLabel(sd.downloadDir)
	dirLabel.Truncation = fyne.TextTruncateEllipsis

	hint := widget.NewLabel(l.GetText(KeyRuntimeConfig))
	hint.Wrapping = fyne.TextWrapWord
	hint.Importance = widget.LowImportance

	form := container.NewVBox(
		widget.NewLabel(l.GetText(KeySectionAudio)),
		widget.NewSeparator(),

		widget.NewLabel(l.GetText(KeyAudioLink)+":"),
		sd.linkEntry,

		widget.NewLabel(l.GetText(KeyAudioSource)+":"),
		container.NewBorder(nil, nil, withMinSize(sd.strategySelect, SelectMinWidth, 0), nil),

		widget.NewSeparator(),
		widget.NewLabel(l.GetText(KeyDownloadDir)+":"),
		dirLabel,
		hint,
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(500, 360))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.linkEntry.SetText(sd.settings.AudioURL())

	strategy := audio.StrategyRemote
	if sd.session != nil {
		strategy = sd.session.Dispatch(context.Background(), session.Intent{Kind: session.IntentAudioState}).Audio.Strategy
	}
	sd.strategySelect.SetSelected(strategyLabel(sd.localization, strategy))
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed || sd.session == nil {
		return
	}

	ctx := context.Background()
	res := sd.session.Dispatch(ctx, session.Intent{Kind: session.IntentAudioSetLink, Link: sd.linkEntry.Text})
	if errors.Is(res.Err, audio.ErrInvalidLink) {
		dialog.ShowError(res.Err, sd.window)
		return
	}

	if strategy, ok := strategyFromLabel(sd.localization, sd.strategySelect.Selected); ok {
		sd.session.Dispatch(ctx, session.Intent{Kind: session.IntentAudioStrategy, Strategy: strategy})
	}

	if sd.onSaved != nil {
		sd.onSaved()
	}
}

func strategyLabel(l *Localization, strategy audio.Strategy) string {
	switch strategy {
	case audio.StrategyLink:
		return l.GetText(KeyStrategyLink)
	case audio.StrategySynth:
		return l.GetText(KeyStrategySynth)
	default:
		return l.GetText(KeyStrategyRemote)
	}
}

func strategyLabels(l *Localization) []string {
	labels := make([]string, 0, len(audio.Strategies))
	for _, strategy := range audio.Strategies {
		labels = append(labels, strategyLabel(l, strategy))
	}
	return labels
}

func strategyFromLabel(l *Localization, label string) (audio.Strategy, bool) {
	for _, strategy := range audio.Strategies {
		if strategyLabel(l, strategy) == label {
			return strategy, true
		}
	}
	return "", false
}

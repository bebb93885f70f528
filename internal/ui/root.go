package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/ytget/direct-downloader/internal/audio"
	"github.com/ytget/direct-downloader/internal/command"
	"github.com/ytget/direct-downloader/internal/config"
	"github.com/ytget/direct-downloader/internal/download"
	"github.com/ytget/direct-downloader/internal/model"
	"github.com/ytget/direct-downloader/internal/platform"
	"github.com/ytget/direct-downloader/internal/session"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	session      *session.Session
	settings     *config.Settings
	localization *Localization
	downloadDir  string
	log          zerolog.Logger

	// Direct download
	urlEntry      *widget.Entry
	filenameEntry *widget.Entry
	downloadBtn   *widget.Button
	headBtn       *widget.Button
	cancelBtn     *widget.Button
	clearBtn      *widget.Button
	inspectBtn    *widget.Button
	revealBtn     *widget.Button
	progressBar   *widget.ProgressBar
	statusLabel   *widget.Label
	sizeLabel     *widget.Label

	// Command recipe
	modeSelect  *widget.Select
	outDirEntry *widget.Entry
	commandBox  *widget.Label
	copyCmdBtn  *widget.Button
	explainBtn  *widget.Button

	// Background audio
	audioToggleBtn *widget.Button
	startAudioBtn  *widget.Button
	stopAudioBtn   *widget.Button
	muteBtn        *widget.Button
	audioState     *widget.Label
	audioGate      *fyne.Container
	audioGateLabel *widget.Label
	audioGateBtn   *widget.Button
	audioSnapshot  audio.Snapshot

	// Activity log
	logList    *widget.List
	logEntries []model.LogEntry
	copyLogBtn *widget.Button

	// Section titles
	directTitle  *widget.Label
	commandTitle *widget.Label
	audioTitle   *widget.Label
	logTitle     *widget.Label

	// UI update debouncing
	lastUIUpdate  time.Time
	uiUpdateMutex sync.Mutex
}

// Options wires the window to the rest of the application
type Options struct {
	Session     *session.Session
	Settings    *config.Settings
	DownloadDir string
	Language    string
	Logger      zerolog.Logger
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, opts Options) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(opts.Language)

	ui := &RootUI{
		window:       window,
		app:          app,
		session:      opts.Session,
		settings:     opts.Settings,
		localization: localization,
		downloadDir:  opts.DownloadDir,
		log:          opts.Logger,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	ui.session.Logbook().SetAppendCallback(ui.onLogAppend)
	ui.session.SetBusyCallback(ui.onBusyChange)
	ui.session.SetProgressCallback(ui.onProgress)

	ui.setupUI()
	ui.log.Debug().Msg("UI setup completed")
	return ui
}

// OnAudioChange renders a new audio controller state. It may be called from
// any goroutine.
func (ui *RootUI) OnAudioChange(snapshot audio.Snapshot) {
	fyne.Do(func() {
		ui.audioSnapshot = snapshot
		ui.renderAudio()
	})
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	l := ui.localization
	ui.createMenu()

	// Direct download section
	ui.directTitle = sectionTitle(l.GetText(KeySectionDirect))

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(l.GetText(KeyEnterURL))
	ui.urlEntry.Validator = ui.validateURL
	ui.urlEntry.OnChanged = func(string) { ui.refreshCommand() }
	ui.urlEntry.OnSubmitted = func(string) { ui.onDownloadClick() }

	ui.filenameEntry = widget.NewEntry()
	ui.filenameEntry.SetPlaceHolder(l.GetText(KeyFilenameHint))
	ui.filenameEntry.OnSubmitted = func(string) { ui.onDownloadClick() }

	ui.downloadBtn = widget.NewButton(l.GetText(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.headBtn = widget.NewButton(l.GetText(KeyHeadCheck), ui.onHeadCheckClick)
	ui.cancelBtn = widget.NewButton(l.GetText(KeyCancel), ui.onCancelClick)
	ui.cancelBtn.Disable()
	ui.clearBtn = widget.NewButton(l.GetText(KeyClear), ui.onClearClick)
	ui.inspectBtn = widget.NewButton(l.GetText(KeyInspectPage), ui.onInspectClick)
	ui.revealBtn = widget.NewButton(IconFolder+" "+l.GetText(KeyReveal), ui.onRevealClick)
	ui.revealBtn.Disable()

	ui.progressBar = widget.NewProgressBar()
	ui.progressBar.TextFormatter = func() string { return "" }
	ui.statusLabel = widget.NewLabel("")
	ui.sizeLabel = widget.NewLabel("")
	ui.sizeLabel.Alignment = fyne.TextAlignTrailing
	ui.setProgress(waitingView(l))

	directSection := container.NewVBox(
		ui.directTitle,
		ui.urlEntry,
		ui.filenameEntry,
		container.NewHBox(ui.downloadBtn, ui.headBtn, ui.cancelBtn, ui.clearBtn),
		container.NewHBox(ui.inspectBtn, ui.revealBtn),
		ui.progressBar,
		container.NewBorder(nil, nil, ui.statusLabel, ui.sizeLabel),
	)

	// Command recipe section
	ui.commandTitle = sectionTitle(l.GetText(KeySectionCommand))

	ui.modeSelect = widget.NewSelect(modeLabels(l), func(string) { ui.refreshCommand() })
	ui.outDirEntry = widget.NewEntry()
	ui.outDirEntry.SetPlaceHolder(l.GetText(KeyOutDir))
	ui.outDirEntry.OnChanged = func(string) { ui.refreshCommand() }

	ui.commandBox = widget.NewLabel("")
	ui.commandBox.TextStyle = fyne.TextStyle{Monospace: true}
	ui.commandBox.Wrapping = fyne.TextWrapBreak

	ui.copyCmdBtn = widget.NewButton(IconCopy+" "+l.GetText(KeyCopyCommand), ui.onCopyCommandClick)
	ui.explainBtn = widget.NewButton(l.GetText(KeyExplain), ui.onExplainClick)
	ui.modeSelect.SetSelected(modeLabel(l, command.ModeBest))

	commandSection := container.NewVBox(
		ui.commandTitle,
		container.NewBorder(nil, nil, withMinSize(ui.modeSelect, SelectMinWidth, 0), nil, ui.outDirEntry),
		withMinSize(ui.commandBox, 0, CommandBoxMinHeight),
		container.NewHBox(ui.copyCmdBtn, ui.explainBtn),
	)

	// Background audio section
	ui.audioTitle = sectionTitle(IconMusic + " " + l.GetText(KeySectionAudio))

	ui.audioToggleBtn = widget.NewButton("", func() { ui.dispatchAudio(session.IntentAudioToggle) })
	ui.startAudioBtn = widget.NewButton(l.GetText(KeyStartAudio), func() { ui.dispatchAudio(session.IntentAudioStart) })
	ui.stopAudioBtn = widget.NewButton(l.GetText(KeyStopAudio), func() { ui.dispatchAudio(session.IntentAudioStop) })
	ui.muteBtn = widget.NewButton("", func() { ui.dispatchAudio(session.IntentAudioMute) })
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance
	ui.audioState = widget.NewLabel("")

	ui.audioGateLabel = widget.NewLabel(l.GetText(KeyAudioBlocked))
	ui.audioGateLabel.Importance = widget.WarningImportance
	ui.audioGateBtn = widget.NewButton(l.GetText(KeyStartAudio), func() { ui.dispatchAudio(session.IntentAudioStart) })
	ui.audioGateBtn.Importance = widget.HighImportance
	ui.audioGate = container.NewBorder(nil, nil, nil, ui.audioGateBtn, ui.audioGateLabel)
	ui.audioGate.Hide()

	audioSection := container.NewVBox(
		ui.audioTitle,
		ui.audioGate,
		container.NewHBox(ui.audioToggleBtn, ui.startAudioBtn, ui.stopAudioBtn, ui.muteBtn, settingsBtn, ui.audioState),
	)
	ui.audioSnapshot = ui.session.Dispatch(context.Background(), session.Intent{Kind: session.IntentAudioState}).Audio
	ui.renderAudio()

	// Activity log section
	ui.logTitle = sectionTitle(l.GetText(KeySectionLog))
	ui.logList = widget.NewList(
		func() int {
			return len(ui.logEntries)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ui.updateLogItem(id, obj)
		},
	)
	ui.copyLogBtn = widget.NewButton(IconCopy+" "+l.GetText(KeyCopyLog), ui.onCopyLogClick)

	logScroll := withMinSize(ui.logList, 0, LogMinHeight)
	logHeader := container.NewBorder(nil, nil, ui.logTitle, ui.copyLogBtn)

	top := container.NewVBox(
		directSection,
		widget.NewSeparator(),
		commandSection,
		widget.NewSeparator(),
		audioSection,
		widget.NewSeparator(),
		logHeader,
	)

	content := container.NewBorder(
		top,       // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		logScroll, // center - activity log
	)

	ui.window.SetContent(withMinSize(container.NewPadded(content), WindowMinWidth, WindowMinHeight))
	ui.refreshCommand()
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code // Capture for closure
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	)

	ui.window.SetMainMenu(mainMenu)
}

// onLanguageChange switches the UI language for this run
func (ui *RootUI) onLanguageChange(langCode string) {
	mode := modeFromLabel(ui.localization, ui.modeSelect.Selected)
	ui.localization.SetLanguage(langCode)
	ui.refreshUITexts(mode)
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language; mode is the
// command mode selected before the switch
func (ui *RootUI) refreshUITexts(mode command.Mode) {
	l := ui.localization
	ui.window.SetTitle(l.GetText(KeyAppTitle))

	ui.directTitle.SetText(l.GetText(KeySectionDirect))
	ui.commandTitle.SetText(l.GetText(KeySectionCommand))
	ui.audioTitle.SetText(IconMusic + " " + l.GetText(KeySectionAudio))
	ui.logTitle.SetText(l.GetText(KeySectionLog))

	ui.urlEntry.SetPlaceHolder(l.GetText(KeyEnterURL))
	ui.filenameEntry.SetPlaceHolder(l.GetText(KeyFilenameHint))
	ui.downloadBtn.SetText(l.GetText(KeyDownload))
	ui.headBtn.SetText(l.GetText(KeyHeadCheck))
	ui.cancelBtn.SetText(l.GetText(KeyCancel))
	ui.clearBtn.SetText(l.GetText(KeyClear))
	ui.inspectBtn.SetText(l.GetText(KeyInspectPage))
	ui.revealBtn.SetText(IconFolder + " " + l.GetText(KeyReveal))

	ui.modeSelect.Options = modeLabels(l)
	ui.modeSelect.SetSelected(modeLabel(l, mode))
	ui.outDirEntry.SetPlaceHolder(l.GetText(KeyOutDir))
	ui.copyCmdBtn.SetText(IconCopy + " " + l.GetText(KeyCopyCommand))
	ui.explainBtn.SetText(l.GetText(KeyExplain))

	ui.startAudioBtn.SetText(l.GetText(KeyStartAudio))
	ui.stopAudioBtn.SetText(l.GetText(KeyStopAudio))
	ui.audioGateLabel.SetText(l.GetText(KeyAudioBlocked))
	ui.audioGateBtn.SetText(l.GetText(KeyStartAudio))
	ui.renderAudio()

	ui.copyLogBtn.SetText(IconCopy + " " + l.GetText(KeyCopyLog))
	if !ui.session.Busy() {
		ui.setProgress(waitingView(l))
	}
}

// validateURL validates the entered URL; empty is allowed
func (ui *RootUI) validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	_, err := download.ValidateSourceURL(input)
	return err
}

// onDownloadClick handles the download button click
func (ui *RootUI) onDownloadClick() {
	url := cleanInput(ui.urlEntry.Text)
	filename := strings.TrimSpace(ui.filenameEntry.Text)

	if url != "" {
		ui.setProgress(preparingView(ui.localization))
	}

	go func() {
		res := ui.session.Dispatch(context.Background(), session.Download(url, filename))
		fyne.Do(func() {
			ui.onDownloadResult(res)
		})
	}()
}

// onDownloadResult renders the terminal state of a download
func (ui *RootUI) onDownloadResult(res session.Result) {
	switch {
	case errors.Is(res.Err, session.ErrNoURL):
		ui.window.Canvas().Focus(ui.urlEntry)
		return
	case errors.Is(res.Err, session.ErrBusy):
		return
	case res.Err != nil:
		ui.setProgress(failureView(ui.localization, res.Err))
		return
	}

	outcome := res.Outcome
	ui.setProgress(eventView(ui.localization, model.CompletedProgressEvent(outcome.RequestID, outcome.TotalBytes, outcome.TotalBytes)))
	ui.revealBtn.Enable()
	ui.sendCompletionNotification(outcome)
}

// onHeadCheckClick runs the advisory HEAD request
func (ui *RootUI) onHeadCheckClick() {
	url := cleanInput(ui.urlEntry.Text)
	go ui.session.Dispatch(context.Background(), session.Probe(url))
}

// onCancelClick aborts the download in flight
func (ui *RootUI) onCancelClick() {
	ui.session.Cancel()
}

// onClearClick resets all inputs
func (ui *RootUI) onClearClick() {
	ui.urlEntry.SetText("")
	ui.filenameEntry.SetText("")
	ui.outDirEntry.SetText("")
	ui.modeSelect.SetSelected(modeLabel(ui.localization, command.ModeBest))
	ui.refreshCommand()
	if !ui.session.Busy() {
		ui.setProgress(waitingView(ui.localization))
	}
	ui.session.Dispatch(context.Background(), session.Intent{Kind: session.IntentClear})
}

// onInspectClick looks for media links on the entered page
func (ui *RootUI) onInspectClick() {
	url := cleanInput(ui.urlEntry.Text)
	ui.inspectBtn.Disable()

	go func() {
		res := ui.session.Dispatch(context.Background(), session.Intent{Kind: session.IntentInspectPage, URL: url})
		fyne.Do(func() {
			ui.inspectBtn.Enable()
			if res.Err == nil && res.Page != nil && res.Page.HasLinks() {
				ui.showMediaLinks(res.Page)
			}
		})
	}()
}

// showMediaLinks lets the user pick one of the found links as the URL
func (ui *RootUI) showMediaLinks(page *model.PageInspection) {
	var picker dialog.Dialog

	items := container.NewVBox()
	for _, link := range page.Links {
		target := link.URL
		text := string(link.Kind) + MiddleDotSeparator + target
		if link.Label != "" {
			text = string(link.Kind) + MiddleDotSeparator + link.Label
		}
		btn := widget.NewButton(text, func() {
			ui.urlEntry.SetText(target)
			if picker != nil {
				picker.Hide()
			}
		})
		btn.Alignment = widget.ButtonAlignLeading
		items.Add(btn)
	}

	title := page.Title
	if title == "" {
		title = ui.localization.GetText(KeyInspectPage)
	}
	scroll := container.NewVScroll(items)
	scroll.SetMinSize(fyne.NewSize(ToastWidth*2, ToastHeight*2))

	picker = dialog.NewCustom(title, ui.localization.GetText(KeyCancel), scroll, ui.window)
	picker.Show()
}

// onRevealClick shows the last saved file in the file manager
func (ui *RootUI) onRevealClick() {
	res := ui.session.Dispatch(context.Background(), session.Intent{Kind: session.IntentReveal})
	if res.Err != nil && !errors.Is(res.Err, session.ErrNothingSaved) {
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyErrorOpeningFile)+": "+res.Err.Error()), ui.window.Canvas())
	}
}

// onOpenFile opens a downloaded file with the default application
func (ui *RootUI) onOpenFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		ui.log.Error().Err(err).Str("path", filePath).Msg("Failed to open file")
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error()), ui.window.Canvas())
	}
}

// refreshCommand rebuilds the yt-dlp recipe from the current inputs
func (ui *RootUI) refreshCommand() {
	if ui.commandBox == nil || ui.modeSelect == nil || ui.outDirEntry == nil {
		return
	}
	res := ui.session.Dispatch(context.Background(), ui.commandIntent(session.IntentBuildCommand))
	ui.commandBox.SetText(res.Command)
}

func (ui *RootUI) commandIntent(kind session.IntentKind) session.Intent {
	return session.Intent{
		Kind:   kind,
		URL:    strings.TrimSpace(ui.urlEntry.Text),
		Mode:   modeFromLabel(ui.localization, ui.modeSelect.Selected),
		OutDir: ui.outDirEntry.Text,
	}
}

// onCopyCommandClick copies the recipe to the clipboard
func (ui *RootUI) onCopyCommandClick() {
	res := ui.session.Dispatch(context.Background(), ui.commandIntent(session.IntentCopyCommand))
	ui.app.Clipboard().SetContent(res.Text)
}

// onExplainClick shows the usage notice
func (ui *RootUI) onExplainClick() {
	ui.session.Dispatch(context.Background(), session.Intent{Kind: session.IntentExplain})
	dialog.ShowInformation(ui.localization.GetText(KeyExplain), ui.localization.GetText(KeyExplainNotice), ui.window)
}

// onCopyLogClick copies the activity log to the clipboard
func (ui *RootUI) onCopyLogClick() {
	res := ui.session.Dispatch(context.Background(), session.Intent{Kind: session.IntentCopyLog})
	ui.app.Clipboard().SetContent(res.Text)
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.settings, ui.session, ui.localization, ui.window, ui.downloadDir, func() {
		widget.ShowPopUp(widget.NewLabel(ui.localization.GetText(KeySettingsSaved)), ui.window.Canvas())
	})
}

// dispatchAudio runs an audio intent off the UI goroutine; the controller
// reports the new state through OnAudioChange
func (ui *RootUI) dispatchAudio(kind session.IntentKind) {
	go func() {
		res := ui.session.Dispatch(context.Background(), session.Intent{Kind: kind})
		if res.Err != nil {
			ui.log.Debug().Err(res.Err).Str("intent", string(kind)).Msg("Audio intent failed")
		}
	}()
}

// renderAudio updates the audio controls from the last snapshot
func (ui *RootUI) renderAudio() {
	l := ui.localization
	snapshot := ui.audioSnapshot

	if snapshot.Enabled {
		ui.audioToggleBtn.SetText(l.GetText(KeyAudioOn))
		ui.startAudioBtn.Enable()
		ui.muteBtn.Enable()
	} else {
		ui.audioToggleBtn.SetText(l.GetText(KeyAudioOff))
		ui.startAudioBtn.Disable()
		ui.muteBtn.Disable()
	}

	if snapshot.Muted {
		ui.muteBtn.SetText(IconSound + " " + l.GetText(KeyUnmute))
	} else {
		ui.muteBtn.SetText(IconMute + " " + l.GetText(KeyMute))
	}

	if snapshot.State == audio.StatePlaying {
		ui.stopAudioBtn.Enable()
	} else {
		ui.stopAudioBtn.Disable()
	}

	state := string(snapshot.State)
	if state == "" {
		state = DashPlaceholder
	}
	ui.audioState.SetText(l.Textf(KeyAudioState, state) + MiddleDotSeparator + strategyLabel(l, snapshot.Strategy))

	if snapshot.Enabled && snapshot.State == audio.StateBlocked {
		ui.audioGate.Show()
	} else {
		ui.audioGate.Hide()
	}
}

// onBusyChange enables or disables the triggers around a retrieval
func (ui *RootUI) onBusyChange(busy bool) {
	fyne.Do(func() {
		if busy {
			ui.downloadBtn.Disable()
			ui.headBtn.Disable()
			ui.cancelBtn.Enable()
		} else {
			ui.downloadBtn.Enable()
			ui.headBtn.Enable()
			ui.cancelBtn.Disable()
		}
	})
}

// onProgress renders engine progress; intermediate events are debounced
func (ui *RootUI) onProgress(ev model.ProgressEvent) {
	if !ev.IsComplete() && !ui.debouncedUIUpdate() {
		return
	}
	view := eventView(ui.localization, ev)
	fyne.Do(func() {
		ui.setProgress(view)
	})
}

// debouncedUIUpdate prevents excessive UI updates by limiting frequency
func (ui *RootUI) debouncedUIUpdate() bool {
	ui.uiUpdateMutex.Lock()
	defer ui.uiUpdateMutex.Unlock()

	now := time.Now()
	if now.Sub(ui.lastUIUpdate) < ProgressUpdateDebounce {
		return false
	}

	ui.lastUIUpdate = now
	return true
}

func (ui *RootUI) setProgress(view progressView) {
	ui.progressBar.SetValue(view.Fraction)
	ui.statusLabel.SetText(view.Status)
	ui.sizeLabel.SetText(view.Size)
}

// onLogAppend adds a logbook entry to the list
func (ui *RootUI) onLogAppend(entry model.LogEntry) {
	fyne.Do(func() {
		ui.logEntries = append(ui.logEntries, entry)
		if ui.logList != nil {
			ui.logList.Refresh()
			ui.logList.ScrollToBottom()
		}
	})
}

func (ui *RootUI) updateLogItem(id widget.ListItemID, obj fyne.CanvasObject) {
	if id >= len(ui.logEntries) {
		return
	}
	entry := ui.logEntries[id]

	if label, ok := obj.(*widget.Label); ok {
		label.Importance = severityImportance(entry.Severity)
		label.SetText(entry.String())
	}
}

// sendCompletionNotification sends a system notification for completed downloads
func (ui *RootUI) sendCompletionNotification(outcome *model.RetrievalOutcome) {
	title := ui.localization.GetText(KeyDownloadCompleted)

	ui.app.SendNotification(&fyne.Notification{
		Title:   title,
		Content: outcome.SavedFilename,
	})

	ui.showToastNotification(outcome)
}

// showToastNotification shows an in-app toast notification with action buttons
func (ui *RootUI) showToastNotification(outcome *model.RetrievalOutcome) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyDownloadCompleted))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(outcome.SavedFilename + MiddleDotSeparator + model.FormatBytes(outcome.TotalBytes))
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	revealBtn := widget.NewButton(IconFolder, ui.onRevealClick)
	revealBtn.Importance = widget.HighImportance

	savedPath := outcome.SavedPath
	openBtn := widget.NewButton(ui.localization.GetText(KeyOpen), func() {
		ui.onOpenFile(savedPath)
	})
	openBtn.Importance = widget.MediumImportance

	var toastPopup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		if toastPopup != nil {
			toastPopup.Hide()
		}
	})
	closeBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil, titleLabel, closeBtn)
	actions := container.NewHBox(revealBtn, openBtn)
	content := container.NewVBox(
		header,
		messageLabel,
		actions,
	)

	toastPopup = widget.NewPopUp(content, ui.window.Canvas())

	// Position in top-right corner
	canvasSize := ui.window.Canvas().Size()
	toastSize := fyne.NewSize(ToastWidth, ToastHeight)
	toastPos := fyne.NewPos(canvasSize.Width-toastSize.Width-ToastMargin, ToastMargin)

	toastPopup.Resize(toastSize)
	toastPopup.Move(toastPos)
	toastPopup.Show()

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(toastPopup.Hide)
	})
}

func sectionTitle(text string) *widget.Label {
	label := widget.NewLabel(text)
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// cleanInput strips line breaks pasted along with a URL
func cleanInput(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}

func modeLabel(l *Localization, mode command.Mode) string {
	switch mode {
	case command.ModeAudio:
		return l.GetText(KeyModeAudio)
	case command.ModeVideo:
		return l.GetText(KeyModeVideo)
	default:
		return l.GetText(KeyModeBest)
	}
}

func modeLabels(l *Localization) []string {
	labels := make([]string, 0, len(command.Modes))
	for _, mode := range command.Modes {
		labels = append(labels, modeLabel(l, mode))
	}
	return labels
}

// modeFromLabel maps a select label back to its mode; unknown labels are best
func modeFromLabel(l *Localization, label string) command.Mode {
	for _, mode := range command.Modes {
		if modeLabel(l, mode) == label {
			return mode
		}
	}
	return command.ModeBest
}

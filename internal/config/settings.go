package config

import (
	"strings"

	"fyne.io/fyne/v2"
)

// KeyAudioURL is the only durable preference: the user's chosen audio link
const KeyAudioURL = "bgm_url"

// Settings manages the durable preference slot
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// AudioURL returns the saved audio link, or "" when none was chosen
func (s *Settings) AudioURL() string {
	return s.app.Preferences().String(KeyAudioURL)
}

// SetAudioURL saves the audio link. An empty value clears the slot.
func (s *Settings) SetAudioURL(link string) {
	link = strings.TrimSpace(link)
	if link == "" {
		s.app.Preferences().RemoveValue(KeyAudioURL)
		return
	}
	s.app.Preferences().SetString(KeyAudioURL, link)
}

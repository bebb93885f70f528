package audio

import "github.com/ytget/direct-downloader/internal/model"

// Backend plays one looping source at a time
type Backend interface {
	// Play replaces whatever is playing with source at volume 0..100
	Play(source string, volume int) error
	Stop() error
	Playing() bool

	// SetExitCallback registers a function called when playback that had
	// started ends without Stop, e.g. a stream that dropped
	SetExitCallback(func(err error))
}

// LinkStore is the durable slot holding the user's audio link
type LinkStore interface {
	AudioURL() string
	SetAudioURL(link string)
}

// Journal receives the user-visible activity lines
type Journal interface {
	Add(severity model.Severity, message string)
}

type nopJournal struct{}

func (nopJournal) Add(model.Severity, string) {}

// memoryStore keeps the link in memory when no durable store is wired
type memoryStore struct {
	link string
}

func (m *memoryStore) AudioURL() string        { return m.link }
func (m *memoryStore) SetAudioURL(link string) { m.link = link }

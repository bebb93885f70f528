package config

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/ytget/direct-downloader/internal/model"
)

// NewLogger returns a human readable console logger writing to w. Timestamps
// use the same clock format as the activity log.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: model.LogTimeLayout,
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

package ui

import (
	"errors"
	"testing"

	"github.com/ytget/direct-downloader/internal/model"
)

func TestEventView(t *testing.T) {
	l := NewLocalization()

	tests := []struct {
		name     string
		event    model.ProgressEvent
		fraction float64
		status   string
		size     string
	}{
		{
			name:     "known total",
			event:    model.NewProgressEvent("r", 1024, 2048),
			fraction: 0.5,
			status:   "Downloading...",
			size:     "1.00 KB / 2.00 KB",
		},
		{
			name:   "unknown total",
			event:  model.NewProgressEvent("r", 512, 0),
			status: "Downloading...",
			size:   "512 B",
		},
		{
			name:     "complete",
			event:    model.CompletedProgressEvent("r", 2048, 2048),
			fraction: 1,
			status:   "Done!",
			size:     "2.00 KB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := eventView(l, tt.event)
			if tt.fraction > 0 && view.Fraction != tt.fraction {
				t.Errorf("Fraction got %v, expected %v", view.Fraction, tt.fraction)
			}
			if view.Status != tt.status {
				t.Errorf("Status got %q, expected %q", view.Status, tt.status)
			}
			if view.Size != tt.size {
				t.Errorf("Size got %q, expected %q", view.Size, tt.size)
			}
		})
	}
}

func TestEventViewUnknownTotalStaysBelowDone(t *testing.T) {
	l := NewLocalization()
	view := eventView(l, model.NewProgressEvent("r", 50*1024*1024, 0))
	if view.Fraction >= 1 {
		t.Errorf("indeterminate fraction got %v, expected < 1", view.Fraction)
	}
	if view.Status == l.GetText(KeyDone) {
		t.Error("indeterminate event must not render as done")
	}
}

func TestFailureView(t *testing.T) {
	l := NewLocalization()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"http", model.HTTPFailure("r", 404).Err, "Failed: HTTP 404"},
		{"transport", model.Failure("r", model.ErrorKindTransport, errors.New("reset")).Err, "Failed: network/cross-origin"},
		{"canceled", model.Failure("r", model.ErrorKindCanceled, nil).Err, "Failed: Download was canceled"},
		{"plain error", errors.New("boom"), "Failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := failureView(l, tt.err)
			if view.Status != tt.expected {
				t.Errorf("Status got %q, expected %q", view.Status, tt.expected)
			}
			if view.Fraction != 0 || view.Size != "" {
				t.Errorf("failure should reset the bar, got %+v", view)
			}
		})
	}
}

func TestWaitingAndPreparingViews(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage(LanguageKorean)

	if got := waitingView(l).Status; got != "대기 중" {
		t.Errorf("waiting got %q", got)
	}
	if got := preparingView(l).Status; got != "다운로드 준비 중..." {
		t.Errorf("preparing got %q", got)
	}
}

func TestModeLabels(t *testing.T) {
	l := NewLocalization()
	labels := modeLabels(l)
	if len(labels) != 3 {
		t.Fatalf("labels got %d, expected 3", len(labels))
	}
	for _, label := range labels {
		mode := modeFromLabel(l, label)
		if modeLabel(l, mode) != label {
			t.Errorf("label %q does not map back to itself", label)
		}
	}
	if modeFromLabel(l, "unknown") != "best" {
		t.Errorf("unknown label should map to best")
	}
}

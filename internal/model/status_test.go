package model

import "testing"

func TestRetrievalStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   RetrievalStatus
		expected bool
	}{
		{RetrievalStatusIdle, false},
		{RetrievalStatusProbing, true},
		{RetrievalStatusDownloading, true},
		{RetrievalStatusSaving, true},
		{RetrievalStatusCompleted, false},
		{RetrievalStatusError, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("RetrievalStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestRetrievalStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   RetrievalStatus
		expected bool
	}{
		{RetrievalStatusIdle, false},
		{RetrievalStatusProbing, false},
		{RetrievalStatusDownloading, false},
		{RetrievalStatusSaving, false},
		{RetrievalStatusCompleted, true},
		{RetrievalStatusError, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("RetrievalStatus(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestRetrievalStatus_String(t *testing.T) {
	status := RetrievalStatusDownloading
	expected := "Downloading"
	result := status.String()

	if result != expected {
		t.Errorf("RetrievalStatus.String() = %s, expected %s", result, expected)
	}
}

package model

// UnknownSizeBaseline is the assumed size used to animate progress when the
// server does not declare Content-Length
const UnknownSizeBaseline = 5 * 1024 * 1024

// UnknownSizeCeiling caps the estimated percent until the stream really ends
const UnknownSizeCeiling = 95.0

// ProgressEvent reports bytes received so far for one retrieval
type ProgressEvent struct {
	RequestID     string
	ReceivedBytes int64
	TotalBytes    int64   // 0 means unknown
	Percent       float64 // 0..100; an estimate when Indeterminate
	Indeterminate bool
}

// NewProgressEvent computes the percent for received/total. With an unknown
// total the event is indeterminate and the percent is a capped ramp against
// UnknownSizeBaseline, so it never reaches 100 before completion.
func NewProgressEvent(requestID string, received, total int64) ProgressEvent {
	ev := ProgressEvent{
		RequestID:     requestID,
		ReceivedBytes: received,
		TotalBytes:    total,
	}

	if total > 0 {
		ev.Percent = clampPercent(float64(received) / float64(total) * 100)
		return ev
	}

	ev.Indeterminate = true
	estimate := float64(received) / UnknownSizeBaseline * 100
	if estimate > UnknownSizeCeiling {
		estimate = UnknownSizeCeiling
	}
	ev.Percent = clampPercent(estimate)
	return ev
}

// CompletedProgressEvent is the terminal 100% event carrying the true count
func CompletedProgressEvent(requestID string, received, total int64) ProgressEvent {
	if total <= 0 {
		total = received
	}
	return ProgressEvent{
		RequestID:     requestID,
		ReceivedBytes: received,
		TotalBytes:    total,
		Percent:       100,
	}
}

// Fraction returns the percent as 0..1 for progress widgets
func (e ProgressEvent) Fraction() float64 {
	return e.Percent / 100
}

// IsComplete reports whether the event is a final 100% event
func (e ProgressEvent) IsComplete() bool {
	return !e.Indeterminate && e.Percent >= 100 && e.ReceivedBytes == e.TotalBytes
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconCopy     = "📋"
	IconClose    = "×"
	IconMusic    = "🎵"
	IconMute     = "🔇"
	IconSound    = "🔊"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
	DashPlaceholder    = "—"
)

// Layout sizing
const (
	WindowMinWidth  float32 = 720
	WindowMinHeight float32 = 640

	CommandBoxMinHeight float32 = 72
	LogMinHeight        float32 = 180
	SelectMinWidth      float32 = 180
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 300
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// Debounce durations
const (
	// ProgressUpdateDebounce limits progress redraws; final events always draw
	ProgressUpdateDebounce = 100 * time.Millisecond
)

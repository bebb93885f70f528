// Package ui contains the Fyne-based desktop user interface. It turns button
// presses into session intents and renders progress, the command recipe, the
// audio controls and the activity log. All UI strings are localized via
// Localization.
package ui

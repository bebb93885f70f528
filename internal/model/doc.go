package model

// Package model defines the data structures shared by the transfer engine and
// the shell: retrieval requests and outcomes, progress events, log entries and
// status enums. The engine produces them; the UI only renders them.

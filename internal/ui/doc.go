// Package ui contains terminal presentation helpers: the lipgloss color
// palette derived from user settings and the bubbletea watch-mode view.
//
// Watch mode is a cooperative loop, not a background worker: a timer tick
// re-fetches playback state at the configured interval and any keypress
// returns control to the command prompt.
package ui

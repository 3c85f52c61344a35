package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir string `env:"HOME"`

	// File being read aloud.
	Path string

	// Rendering width cap; zero means terminal width.
	MaxWidth uint

	EnableMouse bool

	// Speech provider name ("mock" until real providers land).
	Provider string

	// Planning rate for duration estimates.
	WordsPerMinute int

	// Synthesis cache location; empty disables caching.
	CacheDir string

	// How long auto-scroll stays suppressed after a manual scroll.
	ScrollCooldown time.Duration `env:"LECTERN_SCROLL_COOLDOWN" envDefault:"4s"`

	// For debugging the UI.
	MouseWheelDelta int `env:"LECTERN_WHEEL_DELTA" envDefault:"3"`
}

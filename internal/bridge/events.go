// Package bridge is the one-way, fire-and-forget event channel between the
// sync engine and the UI. Outbound events drive highlighting and the
// transport display; inbound events carry seek requests back. No delivery
// is acknowledged: a dropped event is logged and superseded by the next
// tick's event.
package bridge

import (
	"time"

	"github.com/lectern-reader/lectern/internal/timing"
)

// Event is any bridge payload. Concrete types below double as bubbletea
// messages on the UI side.
type Event any

// Outbound events (engine -> UI).

// HighlightMsg asks the coordinator to light paragraph Index. Timestamp is
// epoch milliseconds at emission so the receiver can measure its own
// latency.
type HighlightMsg struct {
	Index     int   `validate:"gte=0"`
	Timestamp int64 `validate:"gt=0"`
}

// HighlightWordMsg asks the coordinator to light a word within the
// currently tracked paragraph.
type HighlightWordMsg struct {
	ParagraphIndex int   `validate:"gte=0"`
	WordIndex      int   `validate:"gte=0"`
	Timestamp      int64 `validate:"gt=0"`
}

// SetWordTimelineMsg attaches a paragraph's normalized word boundaries so
// the coordinator can resolve word character ranges.
type SetWordTimelineMsg struct {
	ParagraphIndex int `validate:"gte=0"`
	Boundaries     []timing.WordBoundary
}

// ClearHighlightMsg clears both highlight layers. Sent on session stop or
// completion only.
type ClearHighlightMsg struct{}

// ProgressMsg carries transport display state. TimeRemaining is
// preformatted "M:SS".
type ProgressMsg struct {
	Percent       float64 `validate:"gte=0,lte=100"`
	TimeRemaining string  `validate:"required"`
}

// Inbound events (UI -> engine).

// JumpToParagraphMsg seeks playback to the start of a paragraph.
type JumpToParagraphMsg struct {
	Index int `validate:"gte=0"`
}

// JumpToWordMsg seeks playback to the exact start time of a word.
type JumpToWordMsg struct {
	ParagraphIndex int `validate:"gte=0"`
	WordIndex      int `validate:"gte=0"`
}

// Now returns the current time as epoch milliseconds, the bridge's
// timestamp unit.
func Now() int64 {
	return time.Now().UnixMilli()
}

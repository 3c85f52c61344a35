// Package timeline maps an advancing audio position to a paragraph index.
//
// Entries are contiguous: entry i ends exactly where entry i+1 starts and
// the last entry ends at the total duration. The timeline starts from a
// word-count-proportional estimate and is rescaled once the audio source
// reports its authoritative duration.
package timeline

import (
	"errors"
	"sort"
	"time"

	"github.com/lectern-reader/lectern/internal/document"
)

// Common errors for timeline operations.
var (
	ErrNoParagraphs    = errors.New("timeline requires at least one paragraph")
	ErrInvalidDuration = errors.New("timeline duration must be positive")
	ErrAlreadyRescaled = errors.New("timeline already rescaled to actual duration")
)

// Entry is the time slice a single paragraph occupies. A position t maps
// to the entry with Start <= t < End.
type Entry struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of the entry's time slice.
func (e Entry) Duration() time.Duration {
	return e.End - e.Start
}

// Timeline is the ordered, contiguous paragraph timeline for one session.
type Timeline struct {
	entries          []Entry
	total            time.Duration
	durationAccurate bool
}

// Build allocates each paragraph a slice of the estimated duration
// proportional to its word count. The result is marked estimated until
// RescaleToActual is called.
func Build(paragraphs []document.Paragraph, estimated time.Duration) (*Timeline, error) {
	if len(paragraphs) == 0 {
		return nil, ErrNoParagraphs
	}
	if estimated <= 0 {
		return nil, ErrInvalidDuration
	}

	totalWords := 0
	for _, p := range paragraphs {
		totalWords += p.WordCount()
	}

	entries := make([]Entry, len(paragraphs))
	cumulative := 0
	start := time.Duration(0)
	for i, p := range paragraphs {
		cumulative += p.WordCount()
		end := time.Duration(float64(estimated) * float64(cumulative) / float64(totalWords))
		entries[i] = Entry{Index: i, Start: start, End: end}
		start = end
	}
	// Cumulative arithmetic keeps entries contiguous; pin the last end to
	// the exact total regardless of float rounding.
	entries[len(entries)-1].End = estimated

	return &Timeline{entries: entries, total: estimated}, nil
}

// RescaleToActual rescales every boundary by actual/previousTotal and then
// forces contiguity so float rounding cannot open gaps between paragraphs
// (a gap shows up as a skipped paragraph at playback time). Must be called
// exactly once, when the audio source reports its true duration.
func (t *Timeline) RescaleToActual(actual time.Duration) error {
	if t.durationAccurate {
		return ErrAlreadyRescaled
	}
	if actual <= 0 {
		return ErrInvalidDuration
	}

	ratio := float64(actual) / float64(t.total)
	for i := range t.entries {
		t.entries[i].Start = time.Duration(float64(t.entries[i].Start) * ratio)
		t.entries[i].End = time.Duration(float64(t.entries[i].End) * ratio)
	}
	for i := 0; i < len(t.entries)-1; i++ {
		t.entries[i].End = t.entries[i+1].Start
	}
	t.entries[len(t.entries)-1].End = actual

	t.total = actual
	t.durationAccurate = true
	return nil
}

// IndexAt resolves the paragraph index containing position pos via binary
// search. Positions outside the timeline clamp to the first or last entry;
// if rounding leaves no exact containment the closest entry by distance
// wins rather than leaving the index unchanged.
func (t *Timeline) IndexAt(pos time.Duration) int {
	last := len(t.entries) - 1
	if pos < 0 {
		return 0
	}
	if pos >= t.total {
		return last
	}

	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].End > pos
	})
	if i > last {
		i = last
	}
	if t.entries[i].Start <= pos && pos < t.entries[i].End {
		return i
	}
	return t.closestTo(pos, i)
}

// closestTo picks the nearer of entry i and its neighbors by distance to
// pos. Only reachable when rounding produced a degenerate entry.
func (t *Timeline) closestTo(pos time.Duration, i int) int {
	best, bestDist := i, distance(t.entries[i], pos)
	for _, j := range []int{i - 1, i + 1} {
		if j < 0 || j >= len(t.entries) {
			continue
		}
		if d := distance(t.entries[j], pos); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func distance(e Entry, pos time.Duration) time.Duration {
	if pos < e.Start {
		return e.Start - pos
	}
	if pos >= e.End {
		return pos - e.End
	}
	return 0
}

// Entry returns the entry for a paragraph index, clamped into range.
func (t *Timeline) Entry(index int) Entry {
	if index < 0 {
		index = 0
	}
	if index >= len(t.entries) {
		index = len(t.entries) - 1
	}
	return t.entries[index]
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Total returns the timeline's total duration.
func (t *Timeline) Total() time.Duration {
	return t.total
}

// DurationAccurate reports whether the timeline has been rescaled to the
// audio source's authoritative duration.
func (t *Timeline) DurationAccurate() bool {
	return t.durationAccurate
}

// Entries returns a copy of the entries, useful for diagnostics.
func (t *Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

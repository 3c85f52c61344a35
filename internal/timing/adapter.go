// Package timing normalizes provider-specific word-timing payloads into a
// canonical per-paragraph boundary list.
//
// Providers disagree on shape: some report word-granularity timestamps,
// others character-granularity alignment arrays. Both are modeled as an
// explicit tagged union and validated before use. Normalization never
// panics and never returns an error: a payload it cannot make sense of
// yields nil, which downstream treats as "no word-level capability for
// this paragraph" — a normal degraded mode, not a failure.
package timing

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// WordBoundary is a single word's character range and time range within
// its paragraph. CharOffset and CharLength are byte positions into the
// paragraph text.
type WordBoundary struct {
	Word       string
	CharOffset int
	CharLength int
	Start      time.Duration
	End        time.Duration
}

// WordPayload is the word-granularity provider shape: parallel arrays of
// words, start times, and durations in milliseconds.
type WordPayload struct {
	Words       []string
	StartMs     []float64
	DurationsMs []float64
}

// CharPayload is the character-granularity provider shape: parallel arrays
// of characters (including spaces), start times, and durations in
// milliseconds.
type CharPayload struct {
	Chars       []string
	CharStartMs []float64
	CharDurMs   []float64
}

// Payload is the tagged union over the known provider shapes. Exactly one
// field should be set; setting both or neither yields nil boundaries.
type Payload struct {
	Words *WordPayload
	Chars *CharPayload
}

// Normalize converts a raw payload into sequential, non-overlapping word
// boundaries anchored to paragraphText. Individual words that cannot be
// located in the text or carry out-of-range offsets are dropped; a payload
// that is structurally unusable yields nil.
func Normalize(p Payload, paragraphText string) []WordBoundary {
	switch {
	case p.Words != nil && p.Chars == nil:
		return normalizeWords(p.Words, paragraphText)
	case p.Chars != nil && p.Words == nil:
		return normalizeChars(p.Chars, paragraphText)
	default:
		return nil
	}
}

func normalizeWords(p *WordPayload, text string) []WordBoundary {
	if len(p.Words) == 0 ||
		len(p.Words) != len(p.StartMs) ||
		len(p.Words) != len(p.DurationsMs) {
		return nil
	}

	boundaries := make([]WordBoundary, 0, len(p.Words))
	cursor := 0
	for i, word := range p.Words {
		if word == "" || p.StartMs[i] < 0 {
			continue
		}
		at := strings.Index(text[cursor:], word)
		if at < 0 {
			// Word not present at or after the cursor: reject this word,
			// keep the rest.
			continue
		}
		offset := cursor + at
		cursor = offset + len(word)

		start := msToDuration(p.StartMs[i])
		dur := p.DurationsMs[i]
		if dur < 0 {
			dur = 0
		}
		boundaries = append(boundaries, WordBoundary{
			Word:       word,
			CharOffset: offset,
			CharLength: len(word),
			Start:      start,
			End:        start + msToDuration(dur),
		})
	}
	return finalize(boundaries, text)
}

func normalizeChars(p *CharPayload, text string) []WordBoundary {
	if len(p.Chars) == 0 ||
		len(p.Chars) != len(p.CharStartMs) ||
		len(p.Chars) != len(p.CharDurMs) {
		return nil
	}

	var boundaries []WordBoundary
	offset := 0
	var word strings.Builder
	wordOffset := 0
	wordStart := -1.0
	wordEnd := 0.0

	flush := func() {
		if word.Len() == 0 || wordStart < 0 {
			word.Reset()
			return
		}
		boundaries = append(boundaries, WordBoundary{
			Word:       word.String(),
			CharOffset: wordOffset,
			CharLength: word.Len(),
			Start:      msToDuration(wordStart),
			End:        msToDuration(wordEnd),
		})
		word.Reset()
		wordStart = -1.0
	}

	for i, ch := range p.Chars {
		if isSpace(ch) {
			flush()
			offset += len(ch)
			continue
		}
		if word.Len() == 0 {
			wordOffset = offset
		}
		if wordStart < 0 && p.CharStartMs[i] >= 0 {
			wordStart = p.CharStartMs[i]
		}
		end := p.CharStartMs[i] + max0(p.CharDurMs[i])
		if end > wordEnd {
			wordEnd = end
		}
		word.WriteString(ch)
		offset += len(ch)
	}
	flush()
	return finalize(boundaries, text)
}

// finalize drops boundaries whose character range falls outside the
// paragraph text and enforces sequential, non-overlapping times.
func finalize(boundaries []WordBoundary, text string) []WordBoundary {
	out := boundaries[:0]
	prevEnd := time.Duration(0)
	for _, b := range boundaries {
		if b.CharOffset < 0 || b.CharLength <= 0 || b.CharOffset+b.CharLength > len(text) {
			continue
		}
		if b.Start < prevEnd {
			b.Start = prevEnd
		}
		if b.End < b.Start {
			b.End = b.Start
		}
		prevEnd = b.End
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// IndexAt resolves the word active at a paragraph-relative position via
// binary search, mirroring the paragraph-level search. Returns -1 when no
// boundaries are attached or the position precedes the first word.
func IndexAt(boundaries []WordBoundary, pos time.Duration) int {
	if len(boundaries) == 0 || pos < boundaries[0].Start {
		return -1
	}
	i := sort.Search(len(boundaries), func(i int) bool {
		return boundaries[i].Start > pos
	})
	return i - 1
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func isSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return s != ""
}

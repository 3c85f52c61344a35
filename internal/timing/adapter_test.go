package timing

import (
	"testing"
	"time"
)

func TestNormalizeWordPayload(t *testing.T) {
	text := "The quick fox"
	got := Normalize(Payload{Words: &WordPayload{
		Words:       []string{"The", "quick", "fox"},
		StartMs:     []float64{0, 200, 500},
		DurationsMs: []float64{200, 300, 250},
	}}, text)

	want := []WordBoundary{
		{Word: "The", CharOffset: 0, CharLength: 3, Start: 0, End: 200 * time.Millisecond},
		{Word: "quick", CharOffset: 4, CharLength: 5, Start: 200 * time.Millisecond, End: 500 * time.Millisecond},
		{Word: "fox", CharOffset: 10, CharLength: 3, Start: 500 * time.Millisecond, End: 750 * time.Millisecond},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d boundaries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("boundary %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNormalizeCharPayload(t *testing.T) {
	text := "go on"
	got := Normalize(Payload{Chars: &CharPayload{
		Chars:       []string{"g", "o", " ", "o", "n"},
		CharStartMs: []float64{0, 100, 200, 250, 350},
		CharDurMs:   []float64{100, 100, 50, 100, 100},
	}}, text)

	want := []WordBoundary{
		{Word: "go", CharOffset: 0, CharLength: 2, Start: 0, End: 200 * time.Millisecond},
		{Word: "on", CharOffset: 3, CharLength: 2, Start: 250 * time.Millisecond, End: 450 * time.Millisecond},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d boundaries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("boundary %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		p    Payload
	}{
		{"empty payload", Payload{}},
		{"both shapes set", Payload{Words: &WordPayload{}, Chars: &CharPayload{}}},
		{
			"mismatched word arrays",
			Payload{Words: &WordPayload{Words: []string{"a", "b"}, StartMs: []float64{0}, DurationsMs: []float64{1, 2}}},
		},
		{
			"mismatched char arrays",
			Payload{Chars: &CharPayload{Chars: []string{"a"}, CharStartMs: []float64{0, 1}, CharDurMs: []float64{1}}},
		},
		{
			"no words at all",
			Payload{Words: &WordPayload{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.p, "some text"); got != nil {
				t.Errorf("got %v, want nil", got)
			}
		})
	}
}

func TestNormalizeDropsUnlocatableWords(t *testing.T) {
	// "missing" is not in the text; only the other two survive.
	got := Normalize(Payload{Words: &WordPayload{
		Words:       []string{"one", "missing", "two"},
		StartMs:     []float64{0, 100, 200},
		DurationsMs: []float64{100, 100, 100},
	}}, "one two")
	if len(got) != 2 {
		t.Fatalf("got %d boundaries, want 2", len(got))
	}
	if got[0].Word != "one" || got[1].Word != "two" {
		t.Errorf("unexpected words: %+v", got)
	}
}

func TestNormalizeClampsNegativeDuration(t *testing.T) {
	got := Normalize(Payload{Words: &WordPayload{
		Words:       []string{"hi"},
		StartMs:     []float64{100},
		DurationsMs: []float64{-50},
	}}, "hi")
	if len(got) != 1 {
		t.Fatalf("got %d boundaries, want 1", len(got))
	}
	if got[0].End != got[0].Start {
		t.Errorf("negative duration should clamp End to Start, got %+v", got[0])
	}
}

func TestNormalizeEnforcesSequentialTimes(t *testing.T) {
	got := Normalize(Payload{Words: &WordPayload{
		Words:       []string{"a", "b"},
		StartMs:     []float64{500, 100}, // out of order
		DurationsMs: []float64{200, 200},
	}}, "a b")
	if len(got) != 2 {
		t.Fatalf("got %d boundaries, want 2", len(got))
	}
	if got[1].Start < got[0].End {
		t.Errorf("boundaries overlap: %+v", got)
	}
}

func TestIndexAt(t *testing.T) {
	boundaries := []WordBoundary{
		{Word: "a", Start: 0, End: 100 * time.Millisecond},
		{Word: "b", Start: 100 * time.Millisecond, End: 300 * time.Millisecond},
		{Word: "c", Start: 300 * time.Millisecond, End: 600 * time.Millisecond},
	}
	tests := []struct {
		pos  time.Duration
		want int
	}{
		{-time.Millisecond, -1},
		{0, 0},
		{99 * time.Millisecond, 0},
		{100 * time.Millisecond, 1},
		{299 * time.Millisecond, 1},
		{10 * time.Second, 2}, // past the last word stays on the last word
	}
	for _, tt := range tests {
		if got := IndexAt(boundaries, tt.pos); got != tt.want {
			t.Errorf("IndexAt(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
	if got := IndexAt(nil, 0); got != -1 {
		t.Errorf("IndexAt on nil = %d, want -1", got)
	}
}

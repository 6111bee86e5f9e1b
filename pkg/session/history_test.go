package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/teslashibe/recemotion/pkg/facs"
)

func TestHistory_Push(t *testing.T) {
	h := NewHistory(3)
	for _, e := range []facs.Emotion{facs.EmotionHappy, facs.EmotionSad, facs.EmotionAngry, facs.EmotionCurious} {
		h.Push(e)
	}

	want := []facs.Emotion{facs.EmotionSad, facs.EmotionAngry, facs.EmotionCurious}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_EntriesIsCopy(t *testing.T) {
	h := NewHistory(2)
	h.Push(facs.EmotionHappy)
	entries := h.Entries()
	entries[0] = facs.EmotionSad

	if h.Entries()[0] != facs.EmotionHappy {
		t.Error("Entries should return a copy")
	}
}

func TestHistory_Dominant(t *testing.T) {
	tests := []struct {
		name    string
		entries []facs.Emotion
		want    facs.Emotion
	}{
		{"empty", nil, facs.EmotionNeutral},
		{"single", []facs.Emotion{facs.EmotionSad}, facs.EmotionSad},
		{"clear winner", []facs.Emotion{facs.EmotionSad, facs.EmotionHappy, facs.EmotionHappy}, facs.EmotionHappy},
		{"tie goes to first seen", []facs.Emotion{facs.EmotionAngry, facs.EmotionHappy, facs.EmotionHappy, facs.EmotionAngry}, facs.EmotionAngry},
		{"tie reversed", []facs.Emotion{facs.EmotionHappy, facs.EmotionAngry, facs.EmotionAngry, facs.EmotionHappy}, facs.EmotionHappy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(10)
			for _, e := range tt.entries {
				h.Push(e)
			}
			if got := h.Dominant(); got != tt.want {
				t.Errorf("Dominant() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(5)
	h.Push(facs.EmotionHappy)
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", h.Len())
	}
	if len(h.Counts()) != 0 {
		t.Error("Counts() should be empty after Clear")
	}
}

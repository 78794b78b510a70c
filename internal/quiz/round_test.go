package quiz

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"spectroquiz/internal/xenocanto"
)

func TestSelectRejectsTargetCollision(t *testing.T) {
	// target=7, d1=200, d2=7 (redraw) -> 350
	sel := NewSelector(script(t, 7, 200, 7, 350), DistinctDistractors, zerolog.Nop())

	r, err := sel.Select(testPage(500))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if r.TargetIndex != 7 {
		t.Errorf("TargetIndex = %d, expected 7", r.TargetIndex)
	}
	if r.DistractorIndices != [2]int{200, 350} {
		t.Errorf("DistractorIndices = %v, expected [200 350]", r.DistractorIndices)
	}
	if r.Target.ID != "7" || r.Distractors[0].ID != "200" || r.Distractors[1].ID != "350" {
		t.Errorf("recordings do not match indices: %s %s %s", r.Target.ID, r.Distractors[0].ID, r.Distractors[1].ID)
	}
}

func TestSelectDistractorPolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   DistractorPolicy
		draws    []int
		expected [2]int
	}{
		{"legacy keeps duplicate distractor", LegacyDistractors, []int{0, 1, 1}, [2]int{1, 1}},
		{"distinct redraws duplicate distractor", DistinctDistractors, []int{0, 1, 1, 0, 2}, [2]int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelector(script(t, tt.draws...), tt.policy, zerolog.Nop())
			r, err := sel.Select(testPage(3))
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if r.TargetIndex != 0 {
				t.Errorf("TargetIndex = %d, expected 0", r.TargetIndex)
			}
			if r.DistractorIndices != tt.expected {
				t.Errorf("DistractorIndices = %v, expected %v", r.DistractorIndices, tt.expected)
			}
		})
	}
}

func TestSelectNeverPicksTargetAsDistractor(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, policy := range []DistractorPolicy{DistinctDistractors, LegacyDistractors} {
		sel := NewSelector(rng, policy, zerolog.Nop())
		for size := 3; size <= 12; size++ {
			page := testPage(size)
			for i := 0; i < 500; i++ {
				r, err := sel.Select(page)
				if err != nil {
					t.Fatalf("%s size %d: Select: %v", policy, size, err)
				}
				tIdx, d1, d2 := r.TargetIndex, r.DistractorIndices[0], r.DistractorIndices[1]
				if tIdx == d1 || tIdx == d2 {
					t.Fatalf("%s size %d: target %d collides with distractors %d, %d", policy, size, tIdx, d1, d2)
				}
				if policy == DistinctDistractors && d1 == d2 {
					t.Fatalf("distinct size %d: duplicate distractor %d", size, d1)
				}
			}
		}
	}
}

func TestSelectSkipsMalformedRecordings(t *testing.T) {
	page := testPage(5)
	page.Recordings[2].Sono.Large = ""

	// 2 is malformed for every draw it appears in
	sel := NewSelector(script(t, 2, 0, 2, 1, 3), DistinctDistractors, zerolog.Nop())
	r, err := sel.Select(page)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if r.TargetIndex != 0 || r.DistractorIndices != [2]int{1, 3} {
		t.Errorf("got target %d distractors %v, expected 0 [1 3]", r.TargetIndex, r.DistractorIndices)
	}
}

func TestSelectEmptyPage(t *testing.T) {
	tests := []struct {
		name   string
		page   xenocanto.Page
		policy DistractorPolicy
		usable int
	}{
		{"no recordings", testPage(0), DistinctDistractors, 0},
		{"too few for distinct", testPage(2), DistinctDistractors, 2},
		{"too few for legacy", testPage(1), LegacyDistractors, 1},
		{"all malformed", func() xenocanto.Page {
			p := testPage(4)
			for i := range p.Recordings {
				p.Recordings[i].AudioURL = ""
			}
			return p
		}(), DistinctDistractors, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelector(script(t), tt.policy, zerolog.Nop())
			_, err := sel.Select(tt.page)
			var empty *EmptyPageError
			if !errors.As(err, &empty) {
				t.Fatalf("expected *EmptyPageError, got %v", err)
			}
			if empty.Usable != tt.usable {
				t.Errorf("Usable = %d, expected %d", empty.Usable, tt.usable)
			}
		})
	}
}

func TestSelectLegacyAcceptsTwoRecordings(t *testing.T) {
	sel := NewSelector(script(t, 1, 0, 1, 0), LegacyDistractors, zerolog.Nop())
	r, err := sel.Select(testPage(2))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if r.TargetIndex != 1 || r.DistractorIndices != [2]int{0, 0} {
		t.Errorf("got target %d distractors %v", r.TargetIndex, r.DistractorIndices)
	}
}

func TestParseDistractorPolicy(t *testing.T) {
	tests := []struct {
		in       string
		expected DistractorPolicy
	}{
		{"legacy", LegacyDistractors},
		{" LEGACY ", LegacyDistractors},
		{"distinct", DistinctDistractors},
		{"", DistinctDistractors},
		{"whatever", DistinctDistractors},
	}
	for _, tt := range tests {
		if got := ParseDistractorPolicy(tt.in); got != tt.expected {
			t.Errorf("ParseDistractorPolicy(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

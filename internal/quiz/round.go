package quiz

import (
	"strings"

	"github.com/rs/zerolog"

	"spectroquiz/internal/xenocanto"
)

// Rand is the randomness the quiz needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type DistractorPolicy string

const (
	// DistinctDistractors draws the second distractor away from both the
	// target and the first distractor.
	DistinctDistractors DistractorPolicy = "distinct"
	// LegacyDistractors only keeps distractors away from the target, so the
	// same decoy can appear twice.
	LegacyDistractors DistractorPolicy = "legacy"
)

func ParseDistractorPolicy(s string) DistractorPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LegacyDistractors):
		return LegacyDistractors
	default:
		return DistinctDistractors
	}
}

// needs is the number of usable recordings a round requires.
func (p DistractorPolicy) needs() int {
	if p == LegacyDistractors {
		return 2
	}
	return 3
}

type Round struct {
	TargetIndex       int
	DistractorIndices [2]int

	Target      xenocanto.Recording
	Distractors [2]xenocanto.Recording
}

type Selector struct {
	rng    Rand
	policy DistractorPolicy
	log    zerolog.Logger
}

func NewSelector(rng Rand, policy DistractorPolicy, log zerolog.Logger) *Selector {
	if policy == "" {
		policy = DistinctDistractors
	}
	return &Selector{rng: rng, policy: policy, log: log}
}

// Select picks a target and two distractors from the page by rejection
// sampling over the page indices. Malformed recordings are skipped.
func (s *Selector) Select(page xenocanto.Page) (Round, error) {
	recs := page.Recordings

	usable := 0
	for _, r := range recs {
		if r.Validate() == nil {
			usable++
		}
	}
	if usable < s.policy.needs() {
		return Round{}, &EmptyPageError{Recordings: len(recs), Usable: usable, Needed: s.policy.needs()}
	}

	t := s.draw(recs)
	d1 := s.draw(recs, t)
	var d2 int
	if s.policy == LegacyDistractors {
		d2 = s.draw(recs, t)
	} else {
		d2 = s.draw(recs, t, d1)
	}

	return Round{
		TargetIndex:       t,
		DistractorIndices: [2]int{d1, d2},
		Target:            recs[t],
		Distractors:       [2]xenocanto.Recording{recs[d1], recs[d2]},
	}, nil
}

// draw terminates because Select checked there are enough usable indices
// outside any exclusion set it passes.
func (s *Selector) draw(recs []xenocanto.Recording, exclude ...int) int {
	for {
		i := s.rng.Intn(len(recs))
		if containsInt(exclude, i) {
			continue
		}
		if err := recs[i].Validate(); err != nil {
			s.log.Warn().Err(err).Int("index", i).Msg("skipping malformed recording")
			continue
		}
		return i
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

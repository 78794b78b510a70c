package quiz

import (
	"strings"

	"spectroquiz/internal/xenocanto"
)

type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
)

// Labels in display order.
var Labels = [3]Label{LabelA, LabelB, LabelC}

func ParseLabel(s string) (Label, error) {
	switch Label(strings.ToUpper(strings.TrimSpace(s))) {
	case LabelA:
		return LabelA, nil
	case LabelB:
		return LabelB, nil
	case LabelC:
		return LabelC, nil
	}
	return "", &InvalidLabelError{Value: s}
}

func (l Label) index() int {
	for i, x := range Labels {
		if x == l {
			return i
		}
	}
	return -1
}

type Choice struct {
	Label     Label
	ImageURL  string
	Recording xenocanto.Recording
}

type AnswerKey struct {
	AudioURL string
	Choices  [3]Choice
	Correct  Label
}

func (k AnswerKey) DisplayOrder() [3]string {
	var out [3]string
	for i, c := range k.Choices {
		out[i] = c.ImageURL
	}
	return out
}

// Citations lists the attribution of every choice in display order.
func (k AnswerKey) Citations() []string {
	out := make([]string, 0, len(k.Choices))
	for _, c := range k.Choices {
		out = append(out, c.Recording.Citation())
	}
	return out
}

// BuildKey shuffles the target and distractors with Fisher-Yates and records
// which label ended up holding the target's spectrogram.
func BuildKey(r Round, rng Rand) (AnswerKey, error) {
	recs := [3]xenocanto.Recording{r.Target, r.Distractors[0], r.Distractors[1]}
	for i := len(recs) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		recs[i], recs[j] = recs[j], recs[i]
	}

	target := r.Target.SpectrogramURL()
	key := AnswerKey{AudioURL: r.Target.Audio()}
	matches := 0
	for i, rec := range recs {
		key.Choices[i] = Choice{
			Label:     Labels[i],
			ImageURL:  rec.SpectrogramURL(),
			Recording: rec,
		}
		if key.Choices[i].ImageURL == target {
			key.Correct = Labels[i]
			matches++
		}
	}
	if matches != 1 {
		return AnswerKey{}, &AnswerMismatchError{TargetURL: target, Matches: matches}
	}
	return key, nil
}

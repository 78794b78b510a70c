package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady     = errors.New("quiz: session has no round ready")
	ErrNoRound      = errors.New("quiz: no round on screen")
	ErrUnknownEvent = errors.New("quiz: unknown event")
)

// EmptyPageError aborts round creation: the page cannot supply a target plus
// two distractors.
type EmptyPageError struct {
	Recordings int
	Usable     int
	Needed     int
}

func (e *EmptyPageError) Error() string {
	if e.Recordings == 0 {
		return "quiz: recordings page is empty"
	}
	return fmt.Sprintf("quiz: page has %d usable of %d recordings, need %d", e.Usable, e.Recordings, e.Needed)
}

// AnswerMismatchError means the shuffled choices do not hold the target's
// spectrogram exactly once. It indicates a matching bug and must never be
// shown to the user as feedback.
type AnswerMismatchError struct {
	TargetURL string
	Matches   int
}

func (e *AnswerMismatchError) Error() string {
	return fmt.Sprintf("quiz: target spectrogram %q found %d times in answer key", e.TargetURL, e.Matches)
}

type InvalidLabelError struct {
	Value string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("quiz: invalid label %q (want A, B or C)", e.Value)
}

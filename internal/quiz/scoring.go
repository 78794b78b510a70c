package quiz

const (
	MsgSelect  = "Select a checkbox."
	MsgCorrect = "Correct answer!"
	MsgWrong   = "Wrong answer!"
)

// Surface is what the core needs from the presentation layer.
type Surface interface {
	Render(v RoundView)
	ClearSelection(l Label)
	MarkSelection(l Label, correct bool)
	ShowResult(text string)
	ShowCitations(lines []string)
}

type RoundView struct {
	Number       int
	Instructions string
	AudioURL     string
	Autoplay     bool
	Choices      [3]Choice
}

// State is the scoring state of the round on screen. The zero value is
// Unanswered.
type State struct {
	Answered bool  `json:"answered"`
	Label    Label `json:"label,omitempty"`
	Correct  bool  `json:"correct"`
}

// Scorer owns the selection state machine for one round. It never locks:
// every selection is scored and only the latest result is shown.
type Scorer struct {
	key   AnswerKey
	state State
}

func NewScorer(key AnswerKey) *Scorer {
	return &Scorer{key: key}
}

func (s *Scorer) State() State { return s.state }

func (s *Scorer) Select(l Label, surface Surface) (State, error) {
	if l.index() < 0 {
		return s.state, &InvalidLabelError{Value: string(l)}
	}

	if s.state.Answered && s.state.Label != l {
		surface.ClearSelection(s.state.Label)
	}

	correct := l == s.key.Correct
	s.state = State{Answered: true, Label: l, Correct: correct}

	surface.MarkSelection(l, correct)
	if correct {
		surface.ShowResult(MsgCorrect)
	} else {
		surface.ShowResult(MsgWrong)
	}
	return s.state, nil
}

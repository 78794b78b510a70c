package quiz

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"spectroquiz/internal/xenocanto"
)

type Status string

const (
	StatusLoading Status = "loading" // page fetch in flight
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"  // page cannot supply a round
	StatusFailed  Status = "failed" // page fetch failed; never becomes interactive
	StatusError   Status = "error"  // answer key could not be built
)

const Instructions = "Listen to the audio sample and select the corresponding spectrogram."

// ControlLabel is the text of the advance control for a status.
func (s Status) ControlLabel() string {
	switch s {
	case StatusReady:
		return "Quiz me!"
	case StatusEmpty, StatusError:
		return "Try again"
	default:
		return "Loading..."
	}
}

// Event is a user interface event consumed by Session.Dispatch.
type Event interface{ isEvent() }

type SelectionChanged struct {
	Label Label
}

type AdvanceRequested struct{}

func (SelectionChanged) isEvent() {}
func (AdvanceRequested) isEvent() {}

type Options struct {
	Autoplay bool
	Policy   DistractorPolicy
}

type prepared struct {
	round Round
	key   AnswerKey
}

// Session is the state of one quiz: the cached page, the round on screen, the
// prefetched next round and the scorer. Safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	opts     Options
	rng      Rand
	selector *Selector
	surface  Surface
	log      zerolog.Logger

	mu       sync.Mutex
	status   Status
	err      error
	page     xenocanto.Page
	current  *prepared
	next     *prepared
	scorer   *Scorer
	rounds   int
	lastSeen time.Time
}

// View is a consistent read of the session taken under its lock.
type View struct {
	ID           string `json:"id"`
	Status       Status `json:"status"`
	ControlLabel string `json:"control_label"`
	Error        string `json:"error,omitempty"`
	Round        int    `json:"round"`
	Selection    State  `json:"selection"`
	PageNumber   int    `json:"page,omitempty"`
	PageSize     int    `json:"page_size,omitempty"`
}

func NewSession(id string, surface Surface, rng Rand, opts Options, log zerolog.Logger) *Session {
	now := time.Now()
	log = log.With().Str("session", id).Logger()
	return &Session{
		ID:        id,
		CreatedAt: now,
		opts:      opts,
		rng:       rng,
		selector:  NewSelector(rng, opts.Policy, log),
		surface:   surface,
		log:       log,
		status:    StatusLoading,
		lastSeen:  now,
	}
}

// Load installs the fetched page and prefetches the first round. The page is
// reused for every round of the session.
func (s *Session) Load(page xenocanto.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.page = page
	if err := s.prefetch(); err != nil {
		return err
	}
	s.status = StatusReady
	s.log.Info().Int("page", page.Number).Int("recordings", page.Len()).Msg("session ready")
	return nil
}

// Fail records a page fetch failure. The session stays on its loading label.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.status = StatusFailed
	s.err = err
	s.log.Error().Err(err).Msg("session failed to load recordings")
}

// Dispatch feeds one UI event into the session.
func (s *Session) Dispatch(ev Event) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch e := ev.(type) {
	case SelectionChanged:
		if s.scorer == nil {
			return State{}, ErrNoRound
		}
		return s.scorer.Select(e.Label, s.surface)
	case AdvanceRequested:
		if err := s.advance(); err != nil {
			return State{}, err
		}
		return s.scorer.State(), nil
	default:
		return State{}, ErrUnknownEvent
	}
}

func (s *Session) Advance() error {
	_, err := s.Dispatch(AdvanceRequested{})
	return err
}

func (s *Session) Select(l Label) (State, error) {
	return s.Dispatch(SelectionChanged{Label: l})
}

// Citations pushes the attribution of the round on screen to the surface and
// returns it.
func (s *Session) Citations() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.current == nil {
		return nil, ErrNoRound
	}
	lines := s.current.key.Citations()
	s.surface.ShowCitations(lines)
	return lines, nil
}

// Inspect runs fn with a consistent view while holding the session lock, so
// reads of the surface inside fn see a complete round.
func (s *Session) Inspect(fn func(View)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:           s.ID,
		Status:       s.status,
		ControlLabel: s.status.ControlLabel(),
		Round:        s.rounds,
		PageNumber:   s.page.Number,
		PageSize:     s.page.Len(),
	}
	if s.err != nil && s.status != StatusFailed {
		v.Error = s.err.Error()
	}
	if s.scorer != nil {
		v.Selection = s.scorer.State()
	}
	fn(v)
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) advance() error {
	if s.status != StatusReady || s.next == nil {
		return ErrNotReady
	}

	p := s.next
	s.next = nil
	s.current = p
	s.rounds++
	s.scorer = NewScorer(p.key)

	s.surface.Render(RoundView{
		Number:       s.rounds,
		Instructions: Instructions,
		AudioURL:     p.key.AudioURL,
		Autoplay:     s.opts.Autoplay,
		Choices:      p.key.Choices,
	})
	s.surface.ShowResult(MsgSelect)

	s.log.Debug().
		Int("round", s.rounds).
		Int("target", p.round.TargetIndex).
		Ints("distractors", p.round.DistractorIndices[:]).
		Str("correct", string(p.key.Correct)).
		Msg("round rendered")

	return s.prefetch()
}

// prefetch builds the next round from the cached page. A failure moves the
// session out of ready so the advance control offers a retry.
func (s *Session) prefetch() error {
	round, err := s.selector.Select(s.page)
	if err == nil {
		var key AnswerKey
		key, err = BuildKey(round, s.rng)
		if err == nil {
			s.next = &prepared{round: round, key: key}
			return nil
		}
	}

	s.err = err
	var empty *EmptyPageError
	if errors.As(err, &empty) {
		s.status = StatusEmpty
		s.log.Warn().Err(err).Msg("round creation aborted")
	} else {
		s.status = StatusError
		s.log.Error().Err(err).Msg("round creation aborted")
	}
	return err
}

func (s *Session) touch() { s.lastSeen = time.Now() }

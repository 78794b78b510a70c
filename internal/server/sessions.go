package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"spectroquiz/internal/quiz"
	"spectroquiz/internal/view"
)

type entry struct {
	sess  *quiz.Session
	board *view.Board
}

type sessionResponse struct {
	quiz.View
	Nodes []view.Node `json:"nodes"`
}

type selectRequest struct {
	Label string `json:"label"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		writeError(w, http.StatusServiceUnavailable, "too many active sessions")
		return
	}

	id := uuid.NewString()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	board := view.NewBoard()
	e := &entry{
		sess: quiz.NewSession(id, board, rng, quiz.Options{
			Autoplay: s.cfg.Autoplay,
			Policy:   s.cfg.Policy,
		}, s.log),
		board: board,
	}
	s.sessions[id] = e
	s.mu.Unlock()

	// page number is drawn once per session
	page := s.src.RandomPage(rng)
	s.loads.Add(1)
	go s.load(e, page)

	writeJSON(w, http.StatusCreated, e.snapshot())
}

// load fetches the session's page in the background. A failure leaves the
// session on its loading label.
func (s *Server) load(e *entry, page int) {
	defer s.loads.Done()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.FetchTimeout)
	defer cancel()

	p, err := s.src.FetchPage(ctx, s.src.Query(), page)
	if err != nil {
		e.sess.Fail(err)
		return
	}
	// round-creation errors are recorded on the session and shown to the user
	_ = e.sess.Load(p)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e.snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := e.sess.Advance(); err != nil {
		s.writeSessionError(w, e, err)
		return
	}
	writeJSON(w, http.StatusOK, e.snapshot())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	label, err := quiz.ParseLabel(req.Label)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := e.sess.Dispatch(quiz.SelectionChanged{Label: label}); err != nil {
		s.writeSessionError(w, e, err)
		return
	}
	writeJSON(w, http.StatusOK, e.snapshot())
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	lines, err := e.sess.Citations()
	if err != nil {
		s.writeSessionError(w, e, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"citations": lines,
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return e, true
}

// Sweep drops sessions idle for longer than the TTL and reports how many.
func (s *Server) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		if now.Sub(e.sess.IdleSince()) > s.cfg.SessionTTL {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) writeSessionError(w http.ResponseWriter, e *entry, err error) {
	var mismatch *quiz.AnswerMismatchError
	switch {
	case errors.Is(err, quiz.ErrNotReady), errors.Is(err, quiz.ErrNoRound):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &mismatch):
		// the session now carries a visible error; return it with the board
		s.log.Error().Err(err).Str("session", e.sess.ID).Msg("round aborted")
		writeJSON(w, http.StatusInternalServerError, e.snapshot())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (e *entry) snapshot() sessionResponse {
	var out sessionResponse
	e.sess.Inspect(func(v quiz.View) {
		out = sessionResponse{View: v, Nodes: e.board.Snapshot()}
	})
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

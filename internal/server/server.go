package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"spectroquiz/internal/quiz"
	"spectroquiz/internal/xenocanto"
)

type Config struct {
	Bind              string
	Port              int
	ReadHeaderTimeout time.Duration
	AllowedOrigins    []string

	Autoplay     bool
	Policy       quiz.DistractorPolicy
	SessionTTL   time.Duration
	MaxSessions  int
	FetchTimeout time.Duration
}

// PageSource is the recordings API as the server uses it.
type PageSource interface {
	Query() string
	RandomPage(rng xenocanto.Intner) int
	FetchPage(ctx context.Context, query string, page int) (xenocanto.Page, error)
}

type Server struct {
	cfg Config
	src PageSource
	log zerolog.Logger

	// parent of background page fetches; cancelled on shutdown
	baseCtx context.Context

	mu       sync.Mutex
	sessions map[string]*entry

	loads sync.WaitGroup
}

func New(cfg Config, src PageSource, log zerolog.Logger) *Server {
	if cfg.Bind == "" {
		cfg.Bind = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8092
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.Policy == "" {
		cfg.Policy = quiz.DistinctDistractors
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}

	return &Server{
		cfg:      cfg,
		src:      src,
		log:      log,
		baseCtx:  context.Background(),
		sessions: make(map[string]*entry),
	}
}

func (s *Server) Addr() string {
	return fmt.Sprintf("http://%s:%d", s.cfg.Bind, s.cfg.Port)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// UI
	r.Get("/", s.handleIndex)
	r.Get("/app.js", s.handleAppJS)
	r.Get("/tutorial", s.handleTutorial)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if len(s.cfg.AllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.cfg.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/next", s.handleNext)
			r.Post("/select", s.handleSelect)
			r.Get("/citations", s.handleCitations)
		})
	})

	return r
}

// Start serves until ctx is cancelled, sweeping idle sessions every
// sweepEvery.
func (s *Server) Start(ctx context.Context, sweepEvery time.Duration) error {
	s.baseCtx = ctx

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Bind, s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	go func() {
		tk := time.NewTicker(sweepEvery)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tk.C:
				if n := s.Sweep(now); n > 0 {
					s.log.Info().Int("evicted", n).Int("active", s.Len()).Msg("idle sessions evicted")
				}
			}
		}
	}()

	// shutdown
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	s.log.Info().Str("addr", srv.Addr).Msg("http server listening")
	err := srv.ListenAndServe()
	s.loads.Wait()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// Package dummy is an in-process fake of the fitness gateway. It implements
// every endpoint the simulator calls and can inject random server errors.
package dummy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServerConfig struct {
	Port int
	// FailRate is the probability in [0,1] that an /api request answers 503.
	FailRate float64
	// Jitter is the upper bound of a random delay added to every response.
	Jitter time.Duration
	Secret []byte
	Seed   int64
	Log    *zap.Logger
	Now    func() time.Time
}

type Server struct {
	cfg ServerConfig
	log *zap.Logger

	mu        sync.Mutex
	rng       *rand.Rand
	nextID    int64
	users     map[int64]*user
	byName    map[string]int64
	byEmail   map[string]int64
	goals     map[int64][]*goal
	meals     map[int64][]meal
	exercises map[int64][]exercise
}

func New(cfg ServerConfig) *Server {
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte(uuid.NewString())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		log:       log,
		rng:       rand.New(rand.NewSource(seed)),
		users:     map[int64]*user{},
		byName:    map[string]int64{},
		byEmail:   map[string]int64{},
		goals:     map[int64][]*goal{},
		meals:     map[int64][]meal{},
		exercises: map[int64][]exercise{},
	}
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// Handler returns the gateway routes wrapped with fault injection and
// request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)

	mux.Handle("PUT /api/users/{userId}/profile", s.authed(s.updateProfile))
	mux.Handle("GET /api/users/{userId}/dashboard", s.authed(s.dashboard))
	mux.Handle("POST /api/goals", s.authed(s.createGoal))
	mux.Handle("GET /api/goals/my-goals", s.authed(s.myGoals))
	mux.Handle("GET /api/goals/recommendations", s.authed(s.recommendations))
	mux.Handle("GET /api/goals/{goalId}/statistics", s.authed(s.goalStatistics))
	mux.Handle("GET /api/foods", s.authed(s.listFoods))
	mux.Handle("POST /api/meals", s.authed(s.createMeal))
	mux.Handle("POST /api/exercises", s.authed(s.createExercise))
	mux.Handle("GET /api/nutrition/analysis", s.authed(s.nutritionAnalysis))

	return s.middleware(mux)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		s.mu.Lock()
		var jitter time.Duration
		if s.cfg.Jitter > 0 {
			jitter = time.Duration(s.rng.Int63n(int64(s.cfg.Jitter)))
		}
		fail := strings.HasPrefix(r.URL.Path, "/api/") && s.cfg.FailRate > 0 && s.rng.Float64() < s.cfg.FailRate
		s.mu.Unlock()

		if jitter > 0 {
			select {
			case <-time.After(jitter):
			case <-r.Context().Done():
				return
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if fail {
			writeError(rec, http.StatusServiceUnavailable, "injected failure")
		} else {
			next.ServeHTTP(rec, r)
		}

		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("took", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Start serves the gateway on cfg.Port until ctx is cancelled.
func Start(ctx context.Context, cfg ServerConfig) error {
	srv := New(cfg)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}
	srv.log.Info("dummy gateway listening", zap.String("addr", ln.Addr().String()), zap.Float64("fail_rate", cfg.FailRate))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/signal"
)

// Server serves one render function to many clients.
type Server struct {
	config   *Config
	view     func() any
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}
	served   atomic.Uint64

	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
	httpServer *http.Server
}

// New creates a server for view. A nil config uses DefaultConfig.
func New(view func() any, config *Config) *Server {
	config = config.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config: config,
		view:   view,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:     config.Logger.With("component", "server"),
		sessions:   make(map[*Session]struct{}),
		baseCtx:    ctx,
		cancelBase: cancel,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/render", s.handleRender)
	r.Get("/ws", s.handleWebSocket)
	if s.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// newRuntime builds a runtime with the server's observers. A nil scheduler
// leaves flushes on the runtime's own queue.
func (s *Server) newRuntime(scheduler hooks.Scheduler, logger *slog.Logger) *hooks.Runtime {
	opts := []hooks.Option{
		hooks.WithProvider(signal.Provider()),
		hooks.WithHookOrderCheck(s.config.CheckHookOrder),
		hooks.WithLogger(logger),
	}
	if scheduler != nil {
		opts = append(opts, hooks.WithScheduler(scheduler))
	}
	for _, o := range s.config.Observers {
		opts = append(opts, hooks.WithObserver(o))
	}
	return hooks.NewRuntime(opts...)
}

// Health is the /healthz payload.
type Health struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Hosts    int    `json:"hosts"`
	Served   uint64 `json:"served"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := Health{Status: "ok", Served: s.served.Load()}
	s.mu.Lock()
	for sess := range s.sessions {
		h.Sessions++
		h.Hosts += sess.rt.Stats().Hosts
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, h)
}

// handleRender renders the view once on a fresh host, flushes its effects,
// renders again so state set by mount effects is visible, then disposes.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	rt := s.newRuntime(nil, s.logger)
	host := hooks.NewHost()

	view, err := func() (view any, err error) {
		defer hooks.DisposeIn(rt, host)
		defer hooks.Recover(&err)
		render := NewActions().Bind(s.view)
		hooks.EstablishIn(rt, host, render)
		rt.Drain()
		view = hooks.EstablishIn(rt, host, render)
		rt.Drain()
		return view, nil
	}()
	if err != nil {
		s.logger.Error("render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Message{Type: TypeError, Error: err.Error()})
		return
	}
	s.served.Add(1)
	writeJSON(w, http.StatusOK, Message{Type: TypeView, Seq: 1, View: view})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess, err := s.newSession(conn)
	if err != nil {
		s.logger.Error("session setup failed", "error", err)
		conn.Close()
		return
	}
	s.track(sess, true)
	s.served.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.track(sess, false)
		sess.logger.Debug("session started")
		sess.Serve(s.baseCtx)
		sess.logger.Debug("session closed")
	}()
}

func (s *Server) track(sess *Session, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.sessions[sess] = struct{}{}
	} else {
		delete(s.sessions, sess)
	}
}

// SessionCount returns the number of open WebSocket sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	var err error
	if s.httpServer != nil {
		if err = s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
	}

	// Hijacked WebSocket connections are not closed by http.Server.
	s.cancelBase()
	s.mu.Lock()
	for sess := range s.sessions {
		sess.conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()

	s.logger.Info("server shutdown complete")
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	hserrors "github.com/vango-dev/hookscope/internal/errors"
	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/loop"
	"github.com/vango-dev/hookscope/pkg/signal"
)

// sessionIDCounter is used to generate session IDs.
var sessionIDCounter atomic.Uint64

// Session is one WebSocket connection rendering one host.
type Session struct {
	ID string

	conn    *websocket.Conn
	loop    *loop.Loop
	rt      *hooks.Runtime
	host    *hooks.Host
	watcher *signal.Watcher
	view    func() any

	// Touched only on the loop goroutine.
	table *Actions

	// renderQueued is set while a re-render waits to run.
	renderQueued atomic.Bool
	seq   uint64

	writeTimeout time.Duration
	logger       *slog.Logger
}

func (s *Server) newSession(conn *websocket.Conn) (*Session, error) {
	id := fmt.Sprintf("s%d", sessionIDCounter.Add(1))
	logger := s.logger.With("session_id", id)

	l, err := loop.New(
		loop.WithLogger(logger),
		loop.WithQueueSize(s.config.QueueSize),
		loop.WithMicrotaskBudget(s.config.MicrotaskBudget),
	)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:           id,
		conn:         conn,
		loop:         l,
		rt:           s.newRuntime(l, logger),
		host:         hooks.NewNamedHost(id),
		view:         s.view,
		writeTimeout: s.config.WriteTimeout,
		logger:       logger,
	}
	sess.watcher = signal.NewWatcher(sess.scheduleRender)
	return sess, nil
}

// Serve runs the session until the connection closes or ctx is cancelled.
// The first view is sent before any client action is processed.
func (s *Session) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("loop exited", "error", err)
		}
	}()

	if err := s.loop.Submit(s.render); err != nil {
		s.logger.Error("initial render", "error", err)
		return
	}

	s.readLoop(ctx)

	// Storage is released once the loop has exited, so cleanups never race
	// a render.
	cancel()
	<-loopDone
	s.watcher.Stop()
	s.dispose()
	s.conn.Close()
}

// readLoop reads client frames and submits each action to the loop.
func (s *Session) readLoop(ctx context.Context) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("message decode error", "error", err)
			s.submit(func() { s.sendError("malformed message") })
			continue
		}
		if msg.Type != TypeAction {
			s.logger.Warn("unknown message type", "type", msg.Type)
			continue
		}
		s.submit(func() { s.dispatch(msg) })
	}
}

func (s *Session) submit(fn func()) {
	if err := s.loop.Submit(fn); err != nil {
		s.logger.Warn("dropped task", "error", err)
	}
}

// scheduleRender is the watcher callback: some cell read by the last render
// changed. The watcher fires once per tracked render, so the re-render must
// not be lost to a full task queue; it falls back to a microtask, which is
// not bounded by the queue size.
func (s *Session) scheduleRender() {
	if !s.renderQueued.CompareAndSwap(false, true) {
		return
	}
	err := s.loop.Submit(s.render)
	if err == nil {
		return
	}
	if errors.Is(err, loop.ErrLoopOverloaded) {
		s.logger.Warn("task queue full, rendering as microtask")
		s.loop.QueueMicrotask(s.render)
		return
	}
	s.renderQueued.Store(false)
	s.logger.Debug("re-render not scheduled", "error", err)
}

// dispatch runs the handler the latest render registered for msg.Name.
func (s *Session) dispatch(msg Message) {
	if err := s.table.Dispatch(msg.Name, msg.Payload); err != nil {
		s.sendError("unknown action " + msg.Name)
	}
}

// render runs one render pass on the loop and pushes the view. Hook errors
// go to the client; other panics reach the loop's panic handler.
func (s *Session) render() {
	s.renderQueued.Store(false)
	var (
		view any
		err  error
	)
	table := NewActions()
	s.watcher.Track(func() {
		view, err = s.renderPass(table)
	})
	if err != nil {
		s.logger.Error("render failed", "error", err)
		s.sendError(hserrors.FromError(err, "H004").FormatCompact())
		return
	}
	s.table = table
	s.seq++
	s.write(Message{Type: TypeView, Seq: s.seq, View: view})
}

func (s *Session) renderPass(table *Actions) (view any, err error) {
	defer hooks.Recover(&err)
	view = hooks.EstablishIn(s.rt, s.host, table.Bind(s.view))
	return view, nil
}

func (s *Session) dispose() {
	hooks.DisposeIn(s.rt, s.host)
}

func (s *Session) sendError(text string) {
	s.write(Message{Type: TypeError, Error: text})
}

// write sends msg. Only the loop goroutine writes to the connection.
func (s *Session) write(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("message encode error", "error", err)
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("write error", "error", err)
	}
}

// Package server hosts one match of the card game over websockets. All game
// and room state is owned by a single core goroutine; connection goroutines
// only decode envelopes and forward them, so no state needs locking.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/Yamazak-mc/algo-cg/internal/config"
)

// roomSize is the number of players a match needs. The engine plays duels.
const roomSize = 2

// Server accepts websocket connections, seats players in a waiting room,
// and runs the match once the room fills.
type Server struct {
	cfg  config.Config
	log  *logrus.Logger
	core chan coreMsg
	sem  *semaphore.Weighted
}

// New builds a server from resolved configuration.
func New(cfg config.Config, log *logrus.Logger) *Server {
	return &Server{
		cfg:  cfg,
		log:  log,
		core: make(chan coreMsg, 64),
		sem:  semaphore.NewWeighted(roomSize),
	}
}

// Run serves until the hosted match finishes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	srv := &http.Server{Addr: s.cfg.ListenAddr, Handler: mux}

	coreDone := make(chan struct{})
	go func() {
		defer close(coreDone)
		s.runCore(ctx)
	}()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.ListenAndServe()
	}()
	s.log.WithField("addr", s.cfg.ListenAddr).Info("listening")

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	case <-coreDone:
	}

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	if err := srv.Shutdown(shutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleWS upgrades a connection and starts its pump goroutines. The
// semaphore caps concurrent connections at the room size; latecomers get a
// plain HTTP rejection before the upgrade.
func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if !s.sem.TryAcquire(1) {
		http.Error(w, "room is full", http.StatusServiceUnavailable)
		return
	}

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.sem.Release(1)
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	s.log.WithField("remote", r.RemoteAddr).Info("connection accepted")

	l := newWSLink(ws)
	go l.writePump(ctx)
	go func() {
		defer s.sem.Release(1)
		err := l.readPump(ctx, s.core)
		select {
		case s.core <- connLostMsg{from: l, err: err}:
		case <-ctx.Done():
		}
	}()
}

// runCore is the single-writer loop owning the room and the match.
func (s *Server) runCore(ctx context.Context) {
	log := s.log.WithField("component", "core")
	room := newWaitingRoom(log, roomSize)
	var match *GameInstance

	for {
		var msg coreMsg
		select {
		case <-ctx.Done():
			return
		case msg = <-s.core:
		}

		switch m := msg.(type) {
		case inboundMsg:
			if match != nil {
				match.HandleMessage(m.from, m.env)
				break
			}
			room.HandleMessage(m.from, m.env)
			if room.Full() {
				gi, err := newGameInstance(log, s.cfg.Game, room.Handlers())
				if err != nil {
					log.WithError(err).Error("cannot start match")
					for _, h := range room.Handlers() {
						h.link.Close("cannot start match")
					}
					room = newWaitingRoom(log, roomSize)
					break
				}
				match = gi
				match.Start()
			}
		case connLostMsg:
			if match != nil {
				match.HandleLost(m.from)
			} else {
				room.HandleLost(m.from)
			}
		}

		if match != nil && match.Done() {
			for _, h := range match.handlers {
				h.link.Close("match over")
			}
			return
		}
	}
}

// Package server hosts the tabletop.space board server: the authoritative
// shape store, the peer relay hub, and the mutation gateway that joins them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/tabletop.space/internal/board/gateway"
	"github.com/louisbranch/tabletop.space/internal/board/storage/sqlite"
	"github.com/louisbranch/tabletop.space/internal/board/transport/ws"
	"github.com/louisbranch/tabletop.space/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Server hosts the board HTTP and websocket endpoints.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	hub        *ws.Hub
	store      *sqlite.Store
	emitter    *telemetry.Emitter
	logger     *log.Logger
}

// New creates a configured board server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured board server listening on addr.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	store, err := openBoardStore()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	logger := log.Default()
	hub := ws.NewHub(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/ws", hub.Handler())

	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: mux},
		hub:        hub,
		store:      store,
		emitter:    telemetry.NewEmitter(store),
		logger:     logger,
	}, nil
}

// Addr returns the listener address for the board server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a board server until the context ends.
func Run(ctx context.Context, port int) error {
	boardServer, err := New(port)
	if err != nil {
		return err
	}
	return boardServer.Serve(ctx)
}

// RunWithAddr creates and serves a board server on addr until the context ends.
func RunWithAddr(ctx context.Context, addr string) error {
	boardServer, err := NewWithAddr(addr)
	if err != nil {
		return err
	}
	return boardServer.Serve(ctx)
}

// Serve starts the board server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	s.logger.Printf("board server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	go s.relayLoop(ctx)

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("http shutdown: %v", err)
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// relayLoop drains peer envelopes and applies each one through a gateway
// that rebroadcasts to every peer except the sender.
func (s *Server) relayLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case inbound := <-s.hub.Inbound():
			s.applyInbound(inbound)
		}
	}
}

func (s *Server) applyInbound(inbound ws.Inbound) {
	relay := relayExcept{hub: s.hub, skip: inbound.Source}
	gw := gateway.New(s.store, relay, s.emitter, s.logger)
	dispatch(gw, inbound.Envelope, s.logger)
}

// relayExcept rebroadcasts envelopes to everyone but the originating peer.
type relayExcept struct {
	hub  *ws.Hub
	skip *ws.Client
}

func (r relayExcept) Broadcast(env ws.Envelope) {
	r.hub.BroadcastExcept(r.skip, env)
}

func openBoardStore() (*sqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("TABLETOP_SPACE_BOARD_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "board.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Printf("close board store: %v", err)
	}
}

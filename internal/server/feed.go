// Package server streams simulation frames to viewers over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/zeuphys/internal/core/observability/log"
)

type Config struct {
	Addr         string
	WriteTimeout time.Duration
	// SendBuffer is how many frames may queue for one viewer before it is dropped.
	SendBuffer int
	MaxViewers int
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":8090",
		WriteTimeout: 2 * time.Second,
		SendBuffer:   16,
		MaxViewers:   64,
	}
}

type viewer struct {
	id    string
	send  chan []byte
	close func()
	once  sync.Once
}

func (v *viewer) stop() {
	v.once.Do(func() {
		close(v.send)
		if v.close != nil {
			v.close()
		}
	})
}

// Feed fans binary frames out to every connected viewer. Broadcast never
// blocks: a viewer whose queue is full is disconnected.
type Feed struct {
	cfg      Config
	logger   log.Log
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	viewers map[string]*viewer
	last    []byte

	frames  atomic.Uint64
	dropped atomic.Uint64
	running atomic.Bool
	closed  atomic.Bool
}

func NewFeed(cfg Config, logger log.Log) (*Feed, error) {
	if cfg.SendBuffer <= 0 {
		return nil, fmt.Errorf("%w: send buffer must be positive, got %d", ErrInvalidConfig, cfg.SendBuffer)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		cfg:    cfg,
		logger: logger.Named("feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		viewers: make(map[string]*viewer),
	}, nil
}

// Handler serves /ws for viewers and /healthz for health checks.
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", f.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run serves Handler on cfg.Addr until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFeedClosed
	}
	if !f.running.CompareAndSwap(false, true) {
		return ErrFeedAlreadyRunning
	}
	defer f.running.Store(false)

	listener, err := net.Listen("tcp", f.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", f.cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           f.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	f.logger.Info("feed listening", log.String("addr", listener.Addr().String()))

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve feed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f.Close()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown feed: %w", err)
	}
	return nil
}

// Broadcast queues frame for every viewer. The frame must not be modified
// afterwards.
func (f *Feed) Broadcast(frame []byte) {
	if f.closed.Load() {
		return
	}
	f.frames.Add(1)

	f.mu.Lock()
	f.last = frame
	var slow []*viewer
	for _, v := range f.viewers {
		select {
		case v.send <- frame:
		default:
			slow = append(slow, v)
		}
	}
	for _, v := range slow {
		delete(f.viewers, v.id)
	}
	f.mu.Unlock()

	for _, v := range slow {
		f.dropped.Add(1)
		f.logger.Warn("dropping slow viewer", log.String("viewer", v.id))
		v.stop()
	}
}

// Viewers returns the number of connected viewers.
func (f *Feed) Viewers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.viewers)
}

// Dropped returns how many viewers were disconnected for falling behind.
func (f *Feed) Dropped() uint64 { return f.dropped.Load() }

func (f *Feed) Frames() uint64 { return f.frames.Load() }

// Close disconnects every viewer and rejects new ones.
func (f *Feed) Close() {
	if !f.closed.CompareAndSwap(false, true) {
		return
	}
	f.mu.Lock()
	viewers := f.viewers
	f.viewers = make(map[string]*viewer)
	f.mu.Unlock()
	for _, v := range viewers {
		v.stop()
	}
}

func (f *Feed) add(v *viewer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed.Load() {
		return ErrFeedClosed
	}
	if f.cfg.MaxViewers > 0 && len(f.viewers) >= f.cfg.MaxViewers {
		return ErrMaxViewersReached
	}
	f.viewers[v.id] = v
	if f.last != nil {
		v.send <- f.last
	}
	return nil
}

func (f *Feed) remove(v *viewer) {
	f.mu.Lock()
	if cur, ok := f.viewers[v.id]; ok && cur == v {
		delete(f.viewers, v.id)
	}
	f.mu.Unlock()
	v.stop()
}

func (f *Feed) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Debug("websocket upgrade failed", log.Error(err))
		return
	}

	v := &viewer{
		id:    uuid.NewString(),
		send:  make(chan []byte, f.cfg.SendBuffer),
		close: func() { _ = conn.Close() },
	}
	if err = f.add(v); err != nil {
		f.logger.Warn("viewer rejected", log.String("remote", conn.RemoteAddr().String()), log.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	f.logger.Info("viewer connected", log.String("viewer", v.id), log.String("remote", conn.RemoteAddr().String()))

	go f.writeLoop(conn, v)
	f.readLoop(conn, v)
	f.logger.Info("viewer disconnected", log.String("viewer", v.id))
}

// readLoop discards viewer input; it only exists to notice the close.
func (f *Feed) readLoop(conn *websocket.Conn, v *viewer) {
	defer f.remove(v)
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writeLoop(conn *websocket.Conn, v *viewer) {
	defer f.remove(v)
	for frame := range v.send {
		if f.cfg.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(f.cfg.WriteTimeout))
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}

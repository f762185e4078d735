// Package server is the cookiewatch daemon: a JSON-RPC 2.0 API over HTTP
// and WebSocket in front of a live browser session, with the regeneration
// guard running for the daemon's lifetime.
package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

type Server struct {
	log      logger.Logger
	api      *api.Api
	browser  Browser
	rpc      *RPCServer
	ws       *WebServer
	listener net.Listener
	mu       sync.Mutex
	stopOnce sync.Once
}

// NewServer wires the RPC methods to a and browser. browser may be nil for
// a daemon that only classifies and scores.
func NewServer(l logger.Logger, a *api.Api, browser Browser, cfg *RPCConfig) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	rpc := NewRPCServer(cfg, a, browser, l)
	return &Server{
		log:     l,
		api:     a,
		browser: browser,
		rpc:     rpc,
		ws:      NewWebServer(rpc, cfg),
	}
}

// Addr returns the bound address once Start is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens, runs the guard and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	l, err := s.ws.Listen()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.log.Info("rpc listening on %s", l.Addr())

	if s.browser != nil {
		go s.runGuard(ctx)
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return s.ws.Serve(l)
}

// runGuard removes blocked cookies the browser writes back and pushes a
// cookie.regenerated notification for each.
func (s *Server) runGuard(ctx context.Context) {
	g := s.api.Guard(s.browser)
	g.OnRegenerated = func(r cookielib.Regeneration) {
		s.rpc.notifier.Broadcast(common.NotifyCookieRegenerated, regeneratedNotification(r))
	}
	if err := g.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("regeneration guard stopped: %v", err)
	}
}

func regeneratedNotification(r cookielib.Regeneration) *common.CookieRegenerated {
	return &common.CookieRegenerated{
		Name:    r.Cookie.Name,
		Domain:  r.Cookie.Domain,
		URL:     r.Request.URL,
		Removed: r.Removed,
	}
}

// Shutdown stops the web server and the RPC bridge. It is safe to call
// more than once.
func (s *Server) Shutdown() error {
	var err error
	s.stopOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err = s.ws.Shutdown(shutdownCtx); err != nil {
			s.log.Warning("error shutting down web server: %v", err)
		}
		s.rpc.Close()
	})
	return err
}

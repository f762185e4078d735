package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// WebServer serves the JSON-RPC endpoints over HTTP:
//
//	/jsonrpc     single requests through the jrpc2 bridge
//	/jsonrpc/ws  a jrpc2 session per WebSocket, with push notifications
type WebServer struct {
	rpc       *RPCServer
	port      int
	listenAll bool
	server    *http.Server
	mu        sync.Mutex
}

func NewWebServer(rpc *RPCServer, cfg *RPCConfig) *WebServer {
	return &WebServer{rpc: rpc, port: cfg.Port, listenAll: cfg.ListenAll}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.rpc.secret, s.rpc.bridge))
	mux.Handle("/jsonrpc/ws", requireToken(s.rpc.secret, http.HandlerFunc(s.rpc.serveWS)))
	return mux
}

func (s *WebServer) addr() string {
	host := "127.0.0.1"
	if s.listenAll {
		host = "0.0.0.0"
	}
	return net.JoinHostPort(host, fmt.Sprint(s.port))
}

// Listen binds the configured address.
func (s *WebServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.addr())
}

// Serve blocks serving l until Shutdown.
func (s *WebServer) Serve(l net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	err := srv.Serve(l)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

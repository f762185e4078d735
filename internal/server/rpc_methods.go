package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/internal/storage"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// JSON-RPC error codes for cookie operations.
const (
	codeCollectionFailed = jrpc2.Code(-32010)
	codeNoActivePage     = jrpc2.Code(-32011)
	codeNoBrowser        = jrpc2.Code(-32012)
	codeInvalidParams    = jrpc2.Code(-32602)
)

// Browser is the live browser session the daemon scans and deletes in.
type Browser interface {
	cookielib.PageContext
	cookielib.CookieStore
	Navigate(ctx context.Context, rawURL string) error
}

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required, empty rejects every request)
	ListenAll bool   // Bind to 0.0.0.0 instead of 127.0.0.1
	Port      int
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	bridge   jhttp.Bridge
	methods  handler.Map
	secret   string
	api      *api.Api
	browser  Browser
	notifier *RPCNotifier
	log      logger.Logger
}

// NewRPCServer creates the method table and HTTP bridge. browser may be nil,
// in which case scan and delete report codeNoBrowser.
func NewRPCServer(cfg *RPCConfig, a *api.Api, browser Browser, l logger.Logger) *RPCServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	rs := &RPCServer{
		secret:   cfg.Secret,
		api:      a,
		browser:  browser,
		notifier: NewRPCNotifier(l),
		log:      l,
	}

	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"cookies.scan":      handler.New(rs.cookiesScan),
		"cookies.lastScan":  handler.New(rs.cookiesLastScan),
		"cookies.classify":  handler.New(rs.cookiesClassify),
		"cookies.score":     handler.New(rs.cookiesScore),
		"cookies.delete":    handler.New(rs.cookiesDelete),
		"streak.tick":       handler.New(rs.streakTick),
		"tips.random":       handler.New(rs.tipsRandom),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// Notifier returns the push broadcaster shared by every WebSocket client.
func (rs *RPCServer) Notifier() *RPCNotifier {
	return rs.notifier
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResponse, error) {
	return rs.api.Version(), nil
}

// cookiesScan collects cookies for the active page, optionally loading
// p.URL first. Progress is pushed to WebSocket clients.
func (rs *RPCServer) cookiesScan(ctx context.Context, p *common.ScanParams) (*common.ScanResponse, error) {
	if rs.browser == nil {
		return nil, &jrpc2.Error{Code: codeNoBrowser, Message: "no browser session"}
	}
	if p.URL != "" {
		if err := rs.browser.Navigate(ctx, p.URL); err != nil {
			return nil, &jrpc2.Error{Code: codeCollectionFailed, Message: fmt.Sprintf("navigate: %v", err)}
		}
	}
	resp, err := rs.api.Scan(ctx, rs.browser, rs.browser, func(sp common.ScanProgress) {
		rs.notifier.Broadcast(common.NotifyScanProgress, &sp)
	})
	if errors.Is(err, cookielib.ErrNoActivePage) {
		return nil, &jrpc2.Error{Code: codeNoActivePage, Message: err.Error()}
	}
	if err != nil {
		return nil, &jrpc2.Error{Code: codeCollectionFailed, Message: err.Error()}
	}
	return resp, nil
}

func (rs *RPCServer) cookiesLastScan(ctx context.Context) (*storage.Snapshot, error) {
	snap, err := rs.api.LastSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, &jrpc2.Error{Code: codeNoActivePage, Message: "no scan recorded"}
	}
	return snap, nil
}

func (rs *RPCServer) cookiesClassify(_ context.Context, p *common.ClassifyParams) (*common.ClassifyResponse, error) {
	if len(p.Names) == 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: names"}
	}
	return rs.api.Classify(p.Names), nil
}

func (rs *RPCServer) cookiesScore(_ context.Context, p *common.ScoreParams) (*cookielib.PrivacyScore, error) {
	score := rs.api.Score(p.Cookies)
	return &score, nil
}

// cookiesDelete removes the selected cookies from the browser and blocks
// them for the guard window.
func (rs *RPCServer) cookiesDelete(ctx context.Context, p *common.DeleteParams) (*common.DeleteResponse, error) {
	if rs.browser == nil {
		return nil, &jrpc2.Error{Code: codeNoBrowser, Message: "no browser session"}
	}
	if len(p.Cookies) == 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: cookies"}
	}
	return rs.api.Delete(ctx, rs.browser, p), nil
}

func (rs *RPCServer) streakTick(ctx context.Context) (*common.StreakResponse, error) {
	return rs.api.TickStreak(ctx)
}

func (rs *RPCServer) tipsRandom(_ context.Context) (*cookielib.Tip, error) {
	tip := rs.api.Tip()
	return &tip, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}

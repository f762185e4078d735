package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	cws "github.com/coder/websocket"
	"github.com/laurynn-wl/cookie-project/internal/api"
	"github.com/laurynn-wl/cookie-project/internal/storage"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

const testSecret = "rpc-test-secret-42"

// fakeBrowser is an in-memory Browser.
type fakeBrowser struct {
	*cookielib.StaticPage
	*cookielib.MemoryStore

	mu        sync.Mutex
	navigated []string
}

func (b *fakeBrowser) Navigate(_ context.Context, rawURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigated = append(b.navigated, rawURL)
	b.StaticPage.URL = rawURL
	return nil
}

func newSiteBrowser() *fakeBrowser {
	return &fakeBrowser{
		StaticPage: &cookielib.StaticPage{
			URL:       "https://example.com/",
			Resources: []string{"https://connect.facebook.com/sdk.js"},
		},
		MemoryStore: cookielib.NewMemoryStore(
			cookielib.Cookie{Name: "_ga", Value: "g", Domain: ".example.com", Path: "/", Secure: true, HTTPOnly: true},
			cookielib.Cookie{Name: "session", Value: "s", Domain: "example.com", Path: "/", Secure: true, HTTPOnly: true},
			cookielib.Cookie{Name: "_fbp", Value: "f", Domain: ".facebook.com", Path: "/"},
		),
	}
}

func newTestApi() *api.Api {
	kv := cookielib.NewMemoryKV()
	return api.NewApi(logger.NewNopLogger(), nil, kv, storage.NewSnapshotStore(kv, nil), api.Options{
		Version:     "1.0.0",
		Commit:      "abc123",
		GuardWindow: time.Minute,
		SettleDelay: time.Millisecond,
	})
}

// startTestServer serves a daemon over httptest and returns its URL.
func startTestServer(t *testing.T, browser Browser) (string, *Server) {
	t.Helper()
	s := NewServer(logger.NewNopLogger(), newTestApi(), browser, &RPCConfig{Secret: testSecret})
	srv := httptest.NewServer(s.ws.handler())
	t.Cleanup(func() {
		srv.Close()
		s.rpc.Close()
	})
	return srv.URL, s
}

// rpcCallRaw posts body to /jsonrpc with token as bearer, if set.
func rpcCallRaw(t *testing.T, serverURL string, body []byte, token string) (int, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest("POST", serverURL+"/jsonrpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /jsonrpc: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func rpcCall(t *testing.T, serverURL, method string, params any) map[string]any {
	t.Helper()
	req := map[string]any{"jsonrpc": "2.0", "method": method, "id": 1}
	if params != nil {
		req["params"] = params
	}
	data, _ := json.Marshal(req)
	code, resp := rpcCallRaw(t, serverURL, data, testSecret)
	if code != http.StatusOK {
		t.Fatalf("%s: HTTP %d", method, code)
	}
	return resp
}

func errorCode(resp map[string]any) int {
	e, ok := resp["error"].(map[string]any)
	if !ok {
		return 0
	}
	code, _ := e["code"].(float64)
	return int(code)
}

func result(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	r, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v (error: %v)", resp["result"], resp["error"])
	}
	return r
}

func TestRPC_Auth(t *testing.T) {
	serverURL, _ := startTestServer(t, nil)
	body := []byte(`{"jsonrpc":"2.0","method":"system.getVersion","id":1}`)

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong token", "wrong-token", http.StatusUnauthorized},
		{"valid token", testSecret, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := rpcCallRaw(t, serverURL, body, tt.token)
			if code != tt.wantCode {
				t.Fatalf("HTTP %d, want %d", code, tt.wantCode)
			}
			if tt.wantCode == http.StatusUnauthorized && errorCode(resp) != -32600 {
				t.Errorf("error = %v, want -32600", resp["error"])
			}
		})
	}

	req, _ := http.NewRequest("POST", serverURL+"/jsonrpc?token="+testSecret, bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("query token: HTTP %d", resp.StatusCode)
	}
}

func TestValidToken(t *testing.T) {
	tests := []struct {
		secret, header string
		want           bool
	}{
		{"s3cret", "Bearer s3cret", true},
		{"s3cret", "bearer s3cret", false},
		{"s3cret", "s3cret", false},
		{"s3cret", "Bearer ", false},
		{"", "Bearer ", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := validToken(tt.secret, tt.header); got != tt.want {
			t.Errorf("validToken(%q, %q) = %v, want %v", tt.secret, tt.header, got, tt.want)
		}
	}
}

func TestRPC_SystemGetVersion(t *testing.T) {
	serverURL, _ := startTestServer(t, nil)
	r := result(t, rpcCall(t, serverURL, "system.getVersion", nil))
	if r["version"] != "1.0.0" || r["commit"] != "abc123" {
		t.Errorf("version = %v", r)
	}
}

func TestRPC_CookiesScan(t *testing.T) {
	browser := newSiteBrowser()
	serverURL, _ := startTestServer(t, browser)

	r := result(t, rpcCall(t, serverURL, "cookies.scan", map[string]any{"url": "https://example.com/"}))
	score := r["score"].(map[string]any)
	if score["score"] != float64(88) || score["rank"] != "Good" {
		t.Errorf("score = %v", score)
	}
	if r["status"] != "ok" || len(r["cookies"].([]any)) != 3 {
		t.Errorf("scan = %v", r)
	}
	if len(browser.navigated) != 1 {
		t.Errorf("navigated %v, want one navigation", browser.navigated)
	}

	last := result(t, rpcCall(t, serverURL, "cookies.lastScan", nil))
	if last["id"] != r["scan_id"] {
		t.Errorf("lastScan id = %v, want %v", last["id"], r["scan_id"])
	}
}

func TestRPC_ErrorCodes(t *testing.T) {
	failing := newSiteBrowser()
	failing.ResourceErr = errors.New("page crashed")

	tests := []struct {
		name     string
		browser  Browser
		method   string
		params   any
		wantCode int
	}{
		{"no browser scan", nil, "cookies.scan", map[string]any{}, -32012},
		{"no browser delete", nil, "cookies.delete", map[string]any{"cookies": []any{}}, -32012},
		{"no active page", &fakeBrowser{StaticPage: &cookielib.StaticPage{}, MemoryStore: cookielib.NewMemoryStore()}, "cookies.scan", map[string]any{}, -32011},
		{"collection failed", failing, "cookies.scan", map[string]any{}, -32010},
		{"no scan recorded", nil, "cookies.lastScan", nil, -32011},
		{"classify without names", nil, "cookies.classify", map[string]any{"names": []string{}}, -32602},
		{"delete without cookies", newSiteBrowser(), "cookies.delete", map[string]any{}, -32602},
		{"unknown method", nil, "download.add", nil, -32601},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serverURL, _ := startTestServer(t, tt.browser)
			resp := rpcCall(t, serverURL, tt.method, tt.params)
			if got := errorCode(resp); got != tt.wantCode {
				t.Errorf("error code = %d, want %d (%v)", got, tt.wantCode, resp["error"])
			}
		})
	}
}

func TestRPC_ClassifyAndScore(t *testing.T) {
	serverURL, _ := startTestServer(t, nil)

	r := result(t, rpcCall(t, serverURL, "cookies.classify", map[string]any{"names": []string{"_ga", "IDE"}}))
	cats := r["categories"].(map[string]any)
	if cats["_ga"] != "Analytics" || cats["IDE"] != "Tracking" {
		t.Errorf("categories = %v", cats)
	}

	score := result(t, rpcCall(t, serverURL, "cookies.score", map[string]any{"cookies": []map[string]any{
		{"name": "session", "domain": "example.com", "httpOnly": true},
	}}))
	if score["score"] != float64(45) || score["capReached"] != true {
		t.Errorf("score = %v", score)
	}
}

func TestRPC_CookiesDelete(t *testing.T) {
	browser := newSiteBrowser()
	serverURL, s := startTestServer(t, browser)

	r := result(t, rpcCall(t, serverURL, "cookies.delete", map[string]any{"cookies": browser.Cookies()}))
	if r["deleted"] != float64(2) || r["filtered"] != float64(1) {
		t.Errorf("delete = %v", r)
	}
	left := browser.Cookies()
	if len(left) != 1 || left[0].Name != "session" {
		t.Errorf("browser left with %+v", left)
	}
	if s.api.BlockList().Len() != 2 {
		t.Errorf("block list holds %d keys, want 2", s.api.BlockList().Len())
	}
}

func TestRPC_StreakAndTip(t *testing.T) {
	serverURL, _ := startTestServer(t, nil)

	streak := result(t, rpcCall(t, serverURL, "streak.tick", nil))
	if streak["count"] != float64(1) || len(streak["milestones"].([]any)) != 3 {
		t.Errorf("streak = %v", streak)
	}
	tip := result(t, rpcCall(t, serverURL, "tips.random", nil))
	if tip["title"] == "" || tip["text"] == "" {
		t.Errorf("tip = %v", tip)
	}
}

func wsURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/jsonrpc/ws"
}

func TestWebSocketEndpoint_Auth(t *testing.T) {
	serverURL, _ := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, header := range []http.Header{nil, {"Authorization": []string{"Bearer wrong-token"}}} {
		_, resp, err := cws.Dial(ctx, wsURL(serverURL), &cws.DialOptions{HTTPHeader: header})
		if err == nil {
			t.Fatal("expected error for unauthorized WebSocket connection")
		}
		if resp != nil && resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	}

	conn, _, err := cws.Dial(ctx, wsURL(serverURL)+"?token="+testSecret, nil)
	if err != nil {
		t.Fatalf("dial with query token: %v", err)
	}
	conn.Close(cws.StatusNormalClosure, "")
}

func dialWS(t *testing.T, ctx context.Context, serverURL string) *cws.Conn {
	t.Helper()
	conn, _, err := cws.Dial(ctx, wsURL(serverURL), &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + testSecret}},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close(cws.StatusNormalClosure, "") })
	return conn
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.rpc.notifier.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("notifier has %d clients, want %d", s.rpc.notifier.Count(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketEndpoint_ScanPushesProgress(t *testing.T) {
	serverURL, s := startTestServer(t, newSiteBrowser())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialWS(t, ctx, serverURL)
	waitForClients(t, s, 1)

	if err := conn.Write(ctx, cws.MessageText, []byte(`{"jsonrpc":"2.0","method":"cookies.scan","id":7}`)); err != nil {
		t.Fatalf("WebSocket write failed: %v", err)
	}
	progress := 0
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("WebSocket read failed: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg["method"] == "cookies.scanProgress" {
			progress++
			continue
		}
		if msg["id"] != float64(7) {
			continue
		}
		if _, ok := msg["result"].(map[string]any); !ok {
			t.Fatalf("scan over websocket failed: %v", msg["error"])
		}
		break
	}
	if progress != 2 {
		t.Errorf("got %d progress notifications, want 2", progress)
	}
}

func TestWebSocketEndpoint_RegenerationPushed(t *testing.T) {
	browser := newSiteBrowser()
	serverURL, s := startTestServer(t, browser)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialWS(t, ctx, serverURL)
	waitForClients(t, s, 1)

	tracker := cookielib.Cookie{Name: "_fbp", Domain: ".facebook.com"}
	s.api.BlockList().Add(tracker.GuardKey())
	go s.runGuard(ctx)

	// The guard subscribes asynchronously: keep writing the cookie back
	// until a notification arrives.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			_ = browser.Set(ctx, cookielib.SetRequest{URL: "http://facebook.com/", Name: "_fbp", Value: "again", Domain: ".facebook.com", Path: "/"})
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("no regeneration notification: %v", err)
		}
		var msg struct {
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Method != "cookie.regenerated" {
			continue
		}
		if msg.Params["name"] != "_fbp" || msg.Params["removed"] != true || msg.Params["url"] != "http://facebook.com/" {
			t.Errorf("params = %v", msg.Params)
		}
		return
	}
}

func TestRPCNotifier_RegisterUnregister(t *testing.T) {
	n := NewRPCNotifier(logger.NewNopLogger())
	if n.Count() != 0 {
		t.Fatalf("Count() = %d", n.Count())
	}
	// Broadcasting with no servers is a no-op.
	n.Broadcast("cookie.regenerated", map[string]string{"name": "x"})
}

package cookielib

import (
	"encoding/json"
	"net/url"
	"testing"
)

func TestOwnerURL(t *testing.T) {
	tests := []struct {
		cookie Cookie
		want   string
	}{
		{Cookie{Domain: ".youtube.com", Path: "/watch", Secure: true}, "https://youtube.com/watch"},
		{Cookie{Domain: "example.com", Path: "/", Secure: false}, "http://example.com/"},
		{Cookie{Domain: "example.com"}, "http://example.com/"},
	}
	for _, tt := range tests {
		if got := OwnerURL(&tt.cookie); got != tt.want {
			t.Errorf("OwnerURL(%+v) = %q, want %q", tt.cookie, got, tt.want)
		}
	}
}

func TestNewRemoveRequest(t *testing.T) {
	pk := json.RawMessage(`{"topLevelSite":"https://news.example"}`)
	c := Cookie{Name: "_fbp", Domain: ".facebook.com", Path: "/", Secure: true, PartitionKey: pk}
	req := NewRemoveRequest(&c)
	if req.URL != "https://facebook.com/" || req.Name != "_fbp" || req.StoreID != "0" {
		t.Errorf("unexpected request %+v", req)
	}
	if string(req.PartitionKey) != string(pk) {
		t.Errorf("partition key = %s, want %s", req.PartitionKey, pk)
	}
}

func TestCookie_Normalize(t *testing.T) {
	exp := int64(1_900_000_000)
	c := Cookie{Name: "a", Domain: "example.com", SameSite: "None", Expiration: &exp}
	c.Normalize()
	if c.Path != "/" || c.StoreID != DefaultStoreID {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.SameSite != SameSiteNoRestriction {
		t.Errorf("SameSite = %s, want no_restriction", c.SameSite)
	}
	if !c.HostOnly {
		t.Error("dotless domain should be host-only")
	}
	if c.Session {
		t.Error("cookie with expiration is not a session cookie")
	}

	s := Cookie{Name: "b", Domain: ".example.com", Session: true, Expiration: &exp}
	s.Normalize()
	if s.Expiration != nil {
		t.Error("session cookie must not carry an expiration")
	}
	if s.HostOnly {
		t.Error("leading-dot domain is not host-only")
	}
	if s.SameSite != SameSiteUnspecified {
		t.Errorf("SameSite = %s, want unspecified", s.SameSite)
	}
}

func TestCookie_Keys(t *testing.T) {
	a := Cookie{Name: "SID", Domain: ".example.com", Path: "/", StoreID: "0"}
	b := Cookie{Name: "sid", Domain: ".example.com", Path: "/app", StoreID: "1"}
	if a.Key() == b.Key() {
		t.Error("dedupe keys should differ on path and store")
	}
	if a.GuardKey() != b.GuardKey() {
		t.Error("guard keys should ignore path and store")
	}
	if got := a.GuardKey().String(); got != "sid|.example.com" {
		t.Errorf("GuardKey().String() = %q", got)
	}
}

func TestCookie_VisibleTo(t *testing.T) {
	tests := []struct {
		name   string
		cookie Cookie
		url    string
		want   bool
	}{
		{"host match", Cookie{Domain: "example.com", Path: "/"}, "http://example.com/a", true},
		{"host-only rejects subdomain", Cookie{Domain: "example.com", Path: "/", HostOnly: true}, "http://www.example.com/", false},
		{"domain cookie on subdomain", Cookie{Domain: ".example.com", Path: "/"}, "https://www.example.com/", true},
		{"suffix is not a subdomain", Cookie{Domain: ".example.com", Path: "/"}, "https://badexample.com/", false},
		{"secure needs https", Cookie{Domain: "example.com", Path: "/", Secure: true}, "http://example.com/", false},
		{"path prefix", Cookie{Domain: "example.com", Path: "/app"}, "http://example.com/app/x", true},
		{"path prefix needs boundary", Cookie{Domain: "example.com", Path: "/app"}, "http://example.com/apple", false},
		{"path mismatch", Cookie{Domain: "example.com", Path: "/app"}, "http://example.com/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatal(err)
			}
			if got := tt.cookie.VisibleTo(u); got != tt.want {
				t.Errorf("VisibleTo(%s) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	first := Cookie{Name: "_ga", Value: "1", Domain: ".example.com", Path: "/", StoreID: "0"}
	dup := first
	dup.Value = "2"
	other := Cookie{Name: "_ga", Value: "3", Domain: ".example.com", Path: "/blog", StoreID: "0"}

	got := Dedupe([]Cookie{first, dup, other, first})
	if len(got) != 2 {
		t.Fatalf("Dedupe returned %d cookies, want 2", len(got))
	}
	if got[0].Value != "1" {
		t.Errorf("first occurrence should win, got value %q", got[0].Value)
	}
	if got[1].Path != "/blog" {
		t.Errorf("unexpected second cookie %+v", got[1])
	}
	if Dedupe(nil) != nil {
		t.Error("Dedupe(nil) should be nil")
	}
}

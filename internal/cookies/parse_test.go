package cookies

import (
	"strconv"
	"strings"
	"testing"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

func byName(cookies []cookielib.Cookie) map[string]cookielib.Cookie {
	m := make(map[string]cookielib.Cookie, len(cookies))
	for _, c := range cookies {
		m[c.Name] = c
	}
	return m
}

func TestParseChrome(t *testing.T) {
	future := testNow.Unix() + 86400
	past := testNow.Unix() - 86400
	rows := []chromeRow{
		{Name: "sid", Value: "v1", HostKey: "example.com", Path: "/", ExpiresUTC: unixToChrome(future), HasExpires: 1, Secure: 1, HTTPOnly: 1, SameSite: 2},
		{Name: "_ga", Value: "", Encrypted: []byte("v10xxxx"), HostKey: ".example.com", Path: "/", ExpiresUTC: unixToChrome(future), HasExpires: 1, SameSite: 0},
		{Name: "pref", Value: "dark", HostKey: "example.com", Path: "/app", ExpiresUTC: 0, HasExpires: 0, SameSite: -1},
		{Name: "old", Value: "x", HostKey: "example.com", Path: "/", ExpiresUTC: unixToChrome(past), HasExpires: 1},
	}
	path := createChromeFixture(t, t.TempDir(), false, rows)

	got, err := ParseChrome(path, testNow)
	if err != nil {
		t.Fatalf("ParseChrome: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d cookies, want 3 (expired skipped)", len(got))
	}
	m := byName(got)

	sid := m["sid"]
	if !sid.Secure || !sid.HTTPOnly || !sid.HostOnly || sid.SameSite != cookielib.SameSiteStrict {
		t.Errorf("sid attributes = %+v", sid)
	}
	if sid.Expiration == nil || *sid.Expiration != future {
		t.Errorf("sid expiration = %v, want %d", sid.Expiration, future)
	}
	ga := m["_ga"]
	if ga.Value != "" || ga.HostOnly || ga.SameSite != cookielib.SameSiteNoRestriction {
		t.Errorf("_ga = %+v, want empty value, domain cookie, no_restriction", ga)
	}
	pref := m["pref"]
	if !pref.Session || pref.Expiration != nil || pref.Path != "/app" || pref.SameSite != cookielib.SameSiteUnspecified {
		t.Errorf("pref = %+v, want session cookie on /app", pref)
	}
	if _, ok := m["old"]; ok {
		t.Error("expired cookie was returned")
	}
}

func TestParseChrome_LegacySchema(t *testing.T) {
	future := testNow.Unix() + 3600
	path := createChromeFixture(t, t.TempDir(), true, []chromeRow{
		{Name: "a", Value: "1", HostKey: ".example.org", Path: "/", ExpiresUTC: unixToChrome(future)},
	})
	got, err := ParseChrome(path, testNow)
	if err != nil {
		t.Fatalf("ParseChrome: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d cookies, want 1", len(got))
	}
	if got[0].SameSite != cookielib.SameSiteUnspecified || got[0].Session {
		t.Errorf("legacy cookie = %+v", got[0])
	}
}

func TestChromeTimestamps(t *testing.T) {
	for _, unix := range []int64{0, 1_700_000_000, testNow.Unix()} {
		if got := chromeToUnix(unixToChrome(unix)); got != unix {
			t.Errorf("round trip %d = %d", unix, got)
		}
	}
	if got := chromeToUnix(chromeEpochOffsetSeconds * 1_000_000); got != 0 {
		t.Errorf("unix epoch in chrome time = %d, want 0", got)
	}
}

func TestParseFirefox(t *testing.T) {
	future := testNow.Unix() + 86400
	rows := []firefoxRow{
		{Name: "sid", Value: "v", Host: "example.com", Path: "/", Expiry: future, Secure: 1, HTTPOnly: 1, SameSite: 1},
		{Name: "_fbp", Value: "fb", Host: ".example.com", Path: "/", Expiry: future * 1000, SameSite: 0},
		{Name: "part", Value: "p", Host: ".embed.test", Path: "/", Expiry: future, OriginAttributes: "^partitionKey=%28https%2Cexample.com%29"},
		{Name: "gone", Value: "g", Host: "example.com", Path: "/", Expiry: testNow.Unix() - 1},
		{Name: "sess", Value: "s", Host: "example.com", Path: "/", Expiry: 0},
	}
	path := createFirefoxFixture(t, t.TempDir(), rows)

	got, err := ParseFirefox(path, testNow)
	if err != nil {
		t.Fatalf("ParseFirefox: %v", err)
	}
	m := byName(got)
	if len(m) != 4 {
		t.Fatalf("got %d cookies, want 4", len(m))
	}
	if c := m["sid"]; !c.Secure || !c.HTTPOnly || c.SameSite != cookielib.SameSiteLax || !c.HostOnly {
		t.Errorf("sid = %+v", c)
	}
	if c := m["_fbp"]; c.Expiration == nil || *c.Expiration != future {
		t.Errorf("millisecond expiry not converted: %+v", c.Expiration)
	}
	if c := m["part"]; string(c.PartitionKey) != `{"topLevelSite":"https://example.com"}` {
		t.Errorf("partition key = %s", c.PartitionKey)
	}
	if c := m["sess"]; !c.Session {
		t.Errorf("expiry 0 should be a session cookie: %+v", c)
	}
	if _, ok := m["gone"]; ok {
		t.Error("expired cookie was returned")
	}
}

func TestFirefoxPartitionKey(t *testing.T) {
	tests := []struct {
		attrs string
		want  string
	}{
		{"", ""},
		{"^userContextId=1", ""},
		{"^userContextId=2&partitionKey=%28http%2Clocalhost%2C8080%29", `{"topLevelSite":"http://localhost"}`},
		{"partitionKey=%28https%2Cexample.com%29", ""},
	}
	for _, tt := range tests {
		if got := string(firefoxPartitionKey(tt.attrs)); got != tt.want {
			t.Errorf("firefoxPartitionKey(%q) = %q, want %q", tt.attrs, got, tt.want)
		}
	}
}

func TestParseNetscape(t *testing.T) {
	future := testNow.Unix() + 86400
	content := strings.Join([]string{
		"# Netscape HTTP Cookie File",
		"",
		"# a comment",
		".example.com\tTRUE\t/\tTRUE\t" + itoa(future) + "\t_ga\tGA1",
		"#HttpOnly_example.com\tFALSE\t/\tFALSE\t0\tsid\tabc",
		"example.com\tTRUE\t/\tFALSE\t" + itoa(future) + "\tsub\tx\r",
		"example.com\tFALSE\t/\tFALSE\t100\told\tx",
		"broken line",
		"example.com\tFALSE\t/\tFALSE\tsoon\tbad\tx",
	}, "\n")
	path := writeFile(t, t.TempDir()+"/cookies.txt", content)
	l := logger.NewMockLogger()

	got, err := ParseNetscape(path, testNow, l)
	if err != nil {
		t.Fatalf("ParseNetscape: %v", err)
	}
	m := byName(got)
	if len(m) != 3 {
		t.Fatalf("got %d cookies (%v), want 3", len(m), got)
	}
	if c := m["_ga"]; c.HostOnly || !c.Secure || c.Expiration == nil {
		t.Errorf("_ga = %+v", c)
	}
	if c := m["sid"]; !c.HTTPOnly || !c.HostOnly || !c.Session {
		t.Errorf("sid = %+v", c)
	}
	if c := m["sub"]; c.Domain != ".example.com" || c.HostOnly || c.Value != "x" {
		t.Errorf("sub = %+v, want dotted domain cookie", c)
	}
	warnings := l.WarningCalls()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", warnings)
	}
	for _, w := range warnings {
		if strings.Contains(w, "abc") || strings.Contains(w, "GA1") {
			t.Errorf("warning leaks a cookie value: %q", w)
		}
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

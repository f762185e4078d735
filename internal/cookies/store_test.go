package cookies

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()
	future := testNow.Unix() + 60
	ff := createFirefoxFixture(t, filepath.Join(dir, "ff"), nil)
	chrome := createChromeFixture(t, filepath.Join(dir, "chrome"), false, []chromeRow{
		{Name: "a", Value: "1", HostKey: "a.test", Path: "/", ExpiresUTC: unixToChrome(future), HasExpires: 1},
	})
	netscape := writeFile(t, filepath.Join(dir, "ns.txt"), "# Netscape HTTP Cookie File\n")
	alt := writeFile(t, filepath.Join(dir, "alt.txt"), "# HTTP Cookie File\r\n")
	unknown := writeFile(t, filepath.Join(dir, "unknown.txt"), "name=value\n")
	empty := writeFile(t, filepath.Join(dir, "empty.txt"), "")

	tests := []struct {
		name    string
		path    string
		want    CookieFormat
		wantErr string
	}{
		{"firefox", ff, FormatFirefox, ""},
		{"chrome", chrome, FormatChrome, ""},
		{"netscape", netscape, FormatNetscape, ""},
		{"netscape alt header", alt, FormatNetscape, ""},
		{"unknown text", unknown, FormatUnknown, "unsupported"},
		{"empty", empty, FormatUnknown, "empty"},
		{"missing", filepath.Join(dir, "nope"), FormatUnknown, "not found"},
		{"directory", dir, FormatUnknown, "directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("format = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormat_SQLiteUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.sqlite")
	createFirefoxFixture(t, filepath.Dir(path), nil)
	if err := os.Rename(filepath.Join(filepath.Dir(path), "cookies.sqlite"), path); err != nil {
		t.Fatal(err)
	}
	db := openForTest(t, path)
	if _, err := db.Exec(`ALTER TABLE moz_cookies RENAME TO something_else`); err != nil {
		t.Fatalf("rename table: %v", err)
	}
	db.Close()

	if _, err := DetectFormat(path); err == nil {
		t.Fatal("expected an error for a foreign sqlite schema")
	}
}

func TestFileStore(t *testing.T) {
	future := testNow.Unix() + 86400
	path := createFirefoxFixture(t, t.TempDir(), []firefoxRow{
		{Name: "sid", Value: "s", Host: "shop.example.com", Path: "/", Expiry: future, Secure: 1},
		{Name: "_ga", Value: "g", Host: ".example.com", Path: "/", Expiry: future},
		{Name: "cart", Value: "c", Host: "shop.example.com", Path: "/cart", Expiry: future},
		{Name: "other", Value: "o", Host: "other.test", Path: "/", Expiry: future},
	})
	cookies, source, err := LoadCookies(path, testNow, logger.NewMockLogger())
	if err != nil {
		t.Fatalf("LoadCookies: %v", err)
	}
	if source.Format != FormatFirefox || source.Browser != "Firefox" || source.Path != path {
		t.Errorf("source = %+v", source)
	}
	store := NewFileStore(cookies, source)
	if store.Len() != 4 {
		t.Fatalf("Len = %d, want 4", store.Len())
	}

	ctx := context.Background()
	tests := []struct {
		url  string
		want []string
	}{
		{"https://shop.example.com/", []string{"_ga", "sid"}},
		{"http://shop.example.com/", []string{"_ga"}},
		{"https://shop.example.com/cart/items", []string{"_ga", "cart", "sid"}},
		{"https://www.example.com/", []string{"_ga"}},
		{"https://other.test/", []string{"other"}},
		{"https://unrelated.test/", nil},
	}
	for _, tt := range tests {
		got, err := store.GetAll(ctx, tt.url)
		if err != nil {
			t.Fatalf("GetAll(%s): %v", tt.url, err)
		}
		var names []string
		for _, c := range got {
			names = append(names, c.Name)
		}
		if strings.Join(sortedCopy(names), ",") != strings.Join(tt.want, ",") {
			t.Errorf("GetAll(%s) = %v, want %v", tt.url, names, tt.want)
		}
	}

	if _, err := store.GetAll(ctx, "not a url"); err == nil {
		t.Error("GetAll accepted a url without a host")
	}
	if ok, err := store.Remove(ctx, cookielib.RemoveRequest{}); ok || !errors.Is(err, cookielib.ErrReadOnlyStore) {
		t.Errorf("Remove = %v, %v; want read-only error", ok, err)
	}
	if err := store.Set(ctx, cookielib.SetRequest{}); !errors.Is(err, cookielib.ErrReadOnlyStore) {
		t.Errorf("Set err = %v", err)
	}
	if _, err := store.Watch(ctx); !errors.Is(err, cookielib.ErrReadOnlyStore) {
		t.Errorf("Watch err = %v", err)
	}
}

func TestFileStore_Collect(t *testing.T) {
	future := farFuture
	path := writeFile(t, filepath.Join(t.TempDir(), "cookies.txt"), strings.Join([]string{
		"# Netscape HTTP Cookie File",
		".example.com\tTRUE\t/\tFALSE\t" + itoa(future) + "\t_ga\tx",
		"cdn.example.net\tFALSE\t/\tFALSE\t" + itoa(future) + "\t_fbp\ty",
	}, "\n"))
	store, err := OpenFileStore(path, logger.NewMockLogger())
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	page := &cookielib.StaticPage{
		URL:       "https://www.example.com/",
		Resources: []string{"https://cdn.example.net/lib.js"},
	}
	res, err := cookielib.NewCollector(page, store, logger.NewMockLogger(), cookielib.CollectorOptions{}).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(res.Cookies) != 2 {
		t.Fatalf("collected %d cookies, want 2", len(res.Cookies))
	}
}

func TestSafeCopy(t *testing.T) {
	src := writeFile(t, filepath.Join(t.TempDir(), "cookies.sqlite"), "SQLite format 3\x00 data")
	writeFile(t, src+"-wal", "wal")

	tempDir, cleanup, err := SafeCopy(src)
	if err != nil {
		t.Fatalf("SafeCopy: %v", err)
	}
	for name, want := range map[string]string{
		"cookies.sqlite":     "SQLite format 3\x00 data",
		"cookies.sqlite-wal": "wal",
	} {
		got, err := os.ReadFile(filepath.Join(tempDir, name))
		if err != nil || string(got) != want {
			t.Errorf("%s = %q, %v; want %q", name, got, err, want)
		}
	}
	if _, err := os.Stat(filepath.Join(tempDir, "cookies.sqlite-shm")); !os.IsNotExist(err) {
		t.Errorf("shm companion should not exist, stat err = %v", err)
	}
	cleanup()
	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Errorf("cleanup left %s behind", tempDir)
	}

	for _, bad := range []string{t.TempDir(), filepath.Join(t.TempDir(), "missing")} {
		if _, _, err := SafeCopy(bad); err == nil {
			t.Errorf("SafeCopy(%s) succeeded", bad)
		}
	}
}

func TestParseProfilesIni(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string // relative to the ini dir, nil for ""
	}{
		{
			name:    "install section wins",
			content: "[Install1234]\nDefault=Profiles/abcd.default\n\n[Profile0]\nPath=Profiles/other\nIsRelative=1\nDefault=1\n",
			want:    []string{"Profiles", "abcd.default"},
		},
		{
			name:    "profile default",
			content: "[Profile0]\nPath=Profiles/a.other\nIsRelative=1\n\n[Profile1]\nPath=Profiles/b.default\nIsRelative=1\nDefault=1\n",
			want:    []string{"Profiles", "b.default"},
		},
		{
			name:    "comments ignored",
			content: "; comment\n[Profile0]\n; another\nPath=Profiles/c.default\nDefault=1\n",
			want:    []string{"Profiles", "c.default"},
		},
		{name: "no default", content: "[Profile0]\nPath=Profiles/x\n"},
		{name: "empty", content: ""},
		{name: "garbage", content: "this is not ini\n===\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			iniPath := writeFile(t, filepath.Join(dir, "profiles.ini"), tt.content)
			want := ""
			if tt.want != nil {
				want = filepath.Join(append([]string{dir}, tt.want...)...)
			}
			if got := parseProfilesIni(iniPath); got != want {
				t.Errorf("parseProfilesIni = %q, want %q", got, want)
			}
		})
	}

	if got := parseProfilesIni(filepath.Join(t.TempDir(), "missing.ini")); got != "" {
		t.Errorf("missing ini = %q", got)
	}
}

func TestParseProfilesIni_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere", "p.default")
	iniPath := writeFile(t, filepath.Join(dir, "profiles.ini"),
		"[Profile0]\nIsRelative=0\nPath="+filepath.ToSlash(abs)+"\nDefault=1\n")
	if got := parseProfilesIni(iniPath); got != abs {
		t.Errorf("parseProfilesIni = %q, want %q", got, abs)
	}
}

func TestDetectWithSpecs(t *testing.T) {
	future := testNow.Unix() + 3600
	dir := t.TempDir()

	// Firefox profile is declared but holds no cookie database.
	ffIni := writeFile(t, filepath.Join(dir, "firefox", "profiles.ini"), "[Install1]\nDefault=Profiles/empty\n")
	chromeDir := filepath.Join(dir, "chrome", "Default", "Network")
	createChromeFixture(t, chromeDir, false, []chromeRow{
		{Name: "c", Value: "1", HostKey: "a.test", Path: "/", ExpiresUTC: unixToChrome(future), HasExpires: 1},
	})
	specs := []browserSpec{
		{Name: "Firefox", ProfilesIniPaths: []string{ffIni}},
		chromiumSpec("Chrome", filepath.Join(dir, "chrome", "Default")),
	}

	store, err := detectWithSpecs(specs, testNow, logger.NewMockLogger())
	if err != nil {
		t.Fatalf("detectWithSpecs: %v", err)
	}
	if store.Source().Browser != "Chrome" || store.Len() != 1 {
		t.Errorf("source = %+v len = %d", store.Source(), store.Len())
	}

	// A Firefox store once present takes priority.
	createFirefoxFixture(t, filepath.Join(dir, "firefox", "Profiles", "empty"), []firefoxRow{
		{Name: "f", Value: "1", Host: "a.test", Path: "/", Expiry: future},
	})
	store, err = detectWithSpecs(specs, testNow, logger.NewMockLogger())
	if err != nil {
		t.Fatalf("detectWithSpecs: %v", err)
	}
	if store.Source().Browser != "Firefox" {
		t.Errorf("browser = %s, want Firefox", store.Source().Browser)
	}

	_, err = detectWithSpecs([]browserSpec{{Name: "Nothing", CookiePaths: []string{filepath.Join(dir, "none")}}}, testNow, logger.NewMockLogger())
	if err == nil || !strings.Contains(err.Error(), "Nothing") {
		t.Errorf("err = %v, want a list of tried browsers", err)
	}
}

func TestBrowserSpecsHavePaths(t *testing.T) {
	specs := getBrowserCookiePaths()
	if len(specs) == 0 {
		t.Skip("no home directory")
	}
	if specs[0].Name != "Firefox" {
		t.Errorf("first browser = %s, want Firefox", specs[0].Name)
	}
	for _, s := range specs {
		if len(s.CookiePaths) == 0 && len(s.ProfilesIniPaths) == 0 {
			t.Errorf("%s has no candidate paths", s.Name)
		}
	}
}

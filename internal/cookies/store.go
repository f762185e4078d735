package cookies

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// LoadCookies detects the format of the cookie file at sourcePath, copies
// SQLite files aside and parses every unexpired cookie.
func LoadCookies(sourcePath string, now time.Time, l logger.Logger) ([]cookielib.Cookie, *CookieSource, error) {
	format, err := DetectFormat(sourcePath)
	if err != nil {
		return nil, nil, err
	}
	source := &CookieSource{Path: sourcePath, Format: format}

	var cookies []cookielib.Cookie
	switch format {
	case FormatFirefox:
		source.Browser = "Firefox"
		cookies, err = loadSQLite(sourcePath, now, ParseFirefox)
	case FormatChrome:
		source.Browser = "Chrome"
		cookies, err = loadSQLite(sourcePath, now, ParseChrome)
	case FormatNetscape:
		source.Browser = "Netscape"
		cookies, err = ParseNetscape(sourcePath, now, l)
	default:
		return nil, nil, fmt.Errorf("error: unsupported cookie database schema at %s", sourcePath)
	}
	if err != nil {
		return nil, nil, err
	}
	l.Debug("cookies: loaded %d cookies from %s (%s)", len(cookies), source.Browser, format)
	return cookies, source, nil
}

func loadSQLite(sourcePath string, now time.Time, parse func(string, time.Time) ([]cookielib.Cookie, error)) ([]cookielib.Cookie, error) {
	tempDir, cleanup, err := SafeCopy(sourcePath)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return parse(filepath.Join(tempDir, filepath.Base(sourcePath)), now)
}

// FileStore is a read-only cookielib.CookieStore over a snapshot of a
// browser cookie file.
type FileStore struct {
	source  *CookieSource
	cookies []cookielib.Cookie
}

// NewFileStore wraps already loaded cookies.
func NewFileStore(cookies []cookielib.Cookie, source *CookieSource) *FileStore {
	return &FileStore{source: source, cookies: cookies}
}

// OpenFileStore loads the cookie file at path.
func OpenFileStore(path string, l logger.Logger) (*FileStore, error) {
	cookies, source, err := LoadCookies(path, time.Now(), l)
	if err != nil {
		return nil, err
	}
	return NewFileStore(cookies, source), nil
}

// DetectFileStore loads the first cookie store found among the known browser
// profile locations.
func DetectFileStore(l logger.Logger) (*FileStore, error) {
	return detectWithSpecs(getBrowserCookiePaths(), time.Now(), l)
}

// Source describes the file the store was loaded from.
func (s *FileStore) Source() *CookieSource {
	return s.source
}

// All returns a copy of every cookie in the store.
func (s *FileStore) All() []cookielib.Cookie {
	return slices.Clone(s.cookies)
}

// Len returns the number of cookies in the store.
func (s *FileStore) Len() int {
	return len(s.cookies)
}

func (s *FileStore) GetAll(_ context.Context, rawURL string) ([]cookielib.Cookie, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("error: invalid cookie url %q", rawURL)
	}
	var out []cookielib.Cookie
	for i := range s.cookies {
		if s.cookies[i].VisibleTo(u) {
			out = append(out, s.cookies[i])
		}
	}
	return out, nil
}

func (s *FileStore) Remove(context.Context, cookielib.RemoveRequest) (bool, error) {
	return false, cookielib.ErrReadOnlyStore
}

func (s *FileStore) Set(context.Context, cookielib.SetRequest) error {
	return cookielib.ErrReadOnlyStore
}

func (s *FileStore) Watch(context.Context) (<-chan cookielib.ChangeEvent, error) {
	return nil, cookielib.ErrReadOnlyStore
}

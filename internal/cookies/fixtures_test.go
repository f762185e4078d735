package cookies

import (
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// farFuture (2100-01-01) outlives the wall clock used by OpenFileStore.
const farFuture int64 = 4102444800

type chromeRow struct {
	Name, Value, HostKey, Path string
	Encrypted                  []byte
	ExpiresUTC                 int64
	HasExpires                 int
	Secure, HTTPOnly           int
	SameSite                   int
}

// createChromeFixture writes a Chromium cookies database. A legacy schema
// leaves out the samesite and has_expires columns.
func createChromeFixture(t *testing.T, dir string, legacy bool, rows []chromeRow) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	dbPath := filepath.Join(dir, "Cookies")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	schema := `CREATE TABLE cookies (
        host_key TEXT NOT NULL, name TEXT NOT NULL, value TEXT NOT NULL,
        encrypted_value BLOB, path TEXT NOT NULL, expires_utc INTEGER NOT NULL,
        is_secure INTEGER NOT NULL, is_httponly INTEGER NOT NULL`
	if !legacy {
		schema += `, samesite INTEGER NOT NULL DEFAULT -1, has_expires INTEGER NOT NULL DEFAULT 1`
	}
	if _, err := db.Exec(schema + `)`); err != nil {
		t.Fatalf("create cookies table: %v", err)
	}
	for _, r := range rows {
		if legacy {
			_, err = db.Exec(`INSERT INTO cookies (host_key, name, value, encrypted_value, path, expires_utc, is_secure, is_httponly) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.HostKey, r.Name, r.Value, r.Encrypted, r.Path, r.ExpiresUTC, r.Secure, r.HTTPOnly)
		} else {
			_, err = db.Exec(`INSERT INTO cookies (host_key, name, value, encrypted_value, path, expires_utc, is_secure, is_httponly, samesite, has_expires) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.HostKey, r.Name, r.Value, r.Encrypted, r.Path, r.ExpiresUTC, r.Secure, r.HTTPOnly, r.SameSite, r.HasExpires)
		}
		if err != nil {
			t.Fatalf("insert chrome row: %v", err)
		}
	}
	return dbPath
}

type firefoxRow struct {
	Name, Value, Host, Path string
	Expiry                  int64
	Secure, HTTPOnly        int
	SameSite                int
	OriginAttributes        string
}

func createFirefoxFixture(t *testing.T, dir string, rows []firefoxRow) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	dbPath := filepath.Join(dir, "cookies.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE moz_cookies (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        originAttributes TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL, value TEXT NOT NULL, host TEXT NOT NULL,
        path TEXT NOT NULL DEFAULT '/', expiry INTEGER NOT NULL DEFAULT 0,
        isSecure INTEGER NOT NULL DEFAULT 0, isHttpOnly INTEGER NOT NULL DEFAULT 0,
        sameSite INTEGER NOT NULL DEFAULT 0
    )`)
	if err != nil {
		t.Fatalf("create moz_cookies table: %v", err)
	}
	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO moz_cookies (originAttributes, name, value, host, path, expiry, isSecure, isHttpOnly, sameSite) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.OriginAttributes, r.Name, r.Value, r.Host, r.Path, r.Expiry, r.Secure, r.HTTPOnly, r.SameSite)
		if err != nil {
			t.Fatalf("insert firefox row: %v", err)
		}
	}
	return dbPath
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func openForTest(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

package cookies

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	_ "modernc.org/sqlite"
)

// chromeEpochOffsetSeconds is the number of seconds between the Windows NT epoch
// (1601-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const chromeEpochOffsetSeconds int64 = 11_644_473_600

// chromeToUnix converts a Chrome timestamp (microseconds since 1601-01-01)
// to a Unix timestamp (seconds since 1970-01-01).
func chromeToUnix(chromeUSec int64) int64 {
	return (chromeUSec / 1_000_000) - chromeEpochOffsetSeconds
}

// unixToChrome is the inverse of chromeToUnix.
func unixToChrome(unix int64) int64 {
	return (unix + chromeEpochOffsetSeconds) * 1_000_000
}

// chromeSameSite maps the samesite column (-1 unspecified, 0 none, 1 lax, 2 strict).
func chromeSameSite(v int64) cookielib.SameSite {
	switch v {
	case 0:
		return cookielib.SameSiteNoRestriction
	case 1:
		return cookielib.SameSiteLax
	case 2:
		return cookielib.SameSiteStrict
	default:
		return cookielib.SameSiteUnspecified
	}
}

// ParseChrome reads every unexpired cookie from a Chromium Cookies SQLite file.
// Encrypted values are left empty. The dbPath should point to a copied (not
// in-use) database.
func ParseChrome(dbPath string, now time.Time) ([]cookielib.Cookie, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?immutable=1", dbPath))
	if err != nil {
		return nil, fmt.Errorf("error: cannot open Chrome cookie database: %w", err)
	}
	defer db.Close()

	cols, err := tableColumns(db, "cookies")
	if err != nil {
		return nil, fmt.Errorf("error: failed to inspect Chrome cookie schema: %w", err)
	}
	query := fmt.Sprintf(`
        SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly, %s, %s
        FROM cookies
        WHERE expires_utc = 0 OR expires_utc > ?
        ORDER BY host_key ASC, path DESC, name ASC
    `, optionalColumn(cols, "samesite", "-1"), optionalColumn(cols, "has_expires", "1"))

	rows, err := db.Query(query, unixToChrome(now.Unix()))
	if err != nil {
		return nil, fmt.Errorf("error: failed to query Chrome cookies: %w", err)
	}
	defer rows.Close()

	var cookies []cookielib.Cookie
	for rows.Next() {
		var (
			name, value, hostKey, path string
			expiresUTC                 int64
			isSecure, isHTTPOnly       int
			sameSite, hasExpires       int64
		)
		if err := rows.Scan(&name, &value, &hostKey, &path, &expiresUTC, &isSecure, &isHTTPOnly, &sameSite, &hasExpires); err != nil {
			return nil, fmt.Errorf("error: failed to scan Chrome cookie row: %w", err)
		}
		c := cookielib.Cookie{
			Name:     name,
			Value:    value,
			Domain:   hostKey,
			Path:     path,
			Secure:   isSecure != 0,
			HTTPOnly: isHTTPOnly != 0,
			SameSite: chromeSameSite(sameSite),
		}
		if hasExpires != 0 && expiresUTC != 0 {
			exp := chromeToUnix(expiresUTC)
			c.Expiration = &exp
		}
		c.Normalize()
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate Chrome cookie rows: %w", err)
	}
	return cookies, nil
}

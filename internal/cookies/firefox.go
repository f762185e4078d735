package cookies

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	_ "modernc.org/sqlite"
)

// firefoxMillisThreshold separates second and millisecond expiry values;
// newer Firefox releases store milliseconds.
const firefoxMillisThreshold int64 = 100_000_000_000

func firefoxExpirySeconds(expiry int64) int64 {
	if expiry > firefoxMillisThreshold {
		return expiry / 1000
	}
	return expiry
}

// firefoxSameSite maps the sameSite column (0 none, 1 lax, 2 strict).
func firefoxSameSite(v int64) cookielib.SameSite {
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

// ParseFirefox reads every unexpired cookie from a Firefox cookies.sqlite file.
// The dbPath should point to a copied (not in-use) database.
func ParseFirefox(dbPath string, now time.Time) ([]cookielib.Cookie, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?immutable=1", dbPath))
	if err != nil {
		return nil, fmt.Errorf("error: cannot open Firefox cookie database: %w", err)
	}
	defer db.Close()

	cols, err := tableColumns(db, "moz_cookies")
	if err != nil {
		return nil, fmt.Errorf("error: failed to inspect Firefox cookie schema: %w", err)
	}
	query := fmt.Sprintf(`
        SELECT name, value, host, path, expiry, isSecure, isHttpOnly, %s, %s
        FROM moz_cookies
        ORDER BY host ASC, path DESC, name ASC
    `, optionalColumn(cols, "sameSite", "-1"), optionalColumn(cols, "originAttributes", "''"))

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query Firefox cookies: %w", err)
	}
	defer rows.Close()

	nowUnix := now.Unix()
	var cookies []cookielib.Cookie
	for rows.Next() {
		var (
			name, value, host, path string
			expiry                  int64
			isSecure, isHTTPOnly    int
			sameSite                int64
			originAttributes        string
		)
		if err := rows.Scan(&name, &value, &host, &path, &expiry, &isSecure, &isHTTPOnly, &sameSite, &originAttributes); err != nil {
			return nil, fmt.Errorf("error: failed to scan Firefox cookie row: %w", err)
		}
		c := cookielib.Cookie{
			Name:         name,
			Value:        value,
			Domain:       host,
			Path:         path,
			Secure:       isSecure != 0,
			HTTPOnly:     isHTTPOnly != 0,
			SameSite:     firefoxSameSite(sameSite),
			PartitionKey: firefoxPartitionKey(originAttributes),
		}
		if expiry != 0 {
			exp := firefoxExpirySeconds(expiry)
			if exp <= nowUnix {
				continue
			}
			c.Expiration = &exp
		}
		c.Normalize()
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate Firefox cookie rows: %w", err)
	}
	return cookies, nil
}

// firefoxPartitionKey turns the partitionKey origin attribute, for example
// "^partitionKey=%28https%2Cexample.com%29", into the extension API shape
// {"topLevelSite":"https://example.com"}.
func firefoxPartitionKey(attrs string) json.RawMessage {
	attrs, ok := strings.CutPrefix(attrs, "^")
	if !ok {
		return nil
	}
	for _, part := range strings.Split(attrs, "&") {
		v, ok := strings.CutPrefix(part, "partitionKey=")
		if !ok || v == "" {
			continue
		}
		v, err := url.QueryUnescape(v)
		if err != nil {
			return nil
		}
		v = strings.TrimSuffix(strings.TrimPrefix(v, "("), ")")
		scheme, host, ok := strings.Cut(v, ",")
		if !ok {
			return nil
		}
		// a third element is the port
		host, _, _ = strings.Cut(host, ",")
		raw, err := json.Marshal(map[string]string{"topLevelSite": scheme + "://" + host})
		if err != nil {
			return nil
		}
		return raw
	}
	return nil
}

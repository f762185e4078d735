package cdp

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/network"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

func isWebURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// fromCDP converts a DevTools cookie into the pipeline record.
func fromCDP(c *network.Cookie) cookielib.Cookie {
	out := cookielib.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		HostOnly: !strings.HasPrefix(c.Domain, "."),
		SameSite: cookielib.ParseSameSite(c.SameSite.String()),
		Session:  c.Session,
	}
	if !c.Session && c.Expires > 0 {
		exp := int64(c.Expires)
		out.Expiration = &exp
	}
	if c.PartitionKey != nil {
		if raw, err := json.Marshal(c.PartitionKey); err == nil {
			out.PartitionKey = raw
		}
	}
	out.Normalize()
	return out
}

func fromCDPAll(raw []*network.Cookie) []cookielib.Cookie {
	if len(raw) == 0 {
		return nil
	}
	out := make([]cookielib.Cookie, 0, len(raw))
	for _, c := range raw {
		if c != nil {
			out = append(out, fromCDP(c))
		}
	}
	return out
}

func toCDPSameSite(s cookielib.SameSite) network.CookieSameSite {
	switch s {
	case cookielib.SameSiteStrict:
		return network.CookieSameSiteStrict
	case cookielib.SameSiteLax:
		return network.CookieSameSiteLax
	case cookielib.SameSiteNoRestriction:
		return network.CookieSameSiteNone
	default:
		return ""
	}
}

// hasSetCookie reports whether response headers carry a Set-Cookie field.
// DevTools reports header names as the server sent them.
func hasSetCookie(h network.Headers) bool {
	for k := range h {
		if http.CanonicalHeaderKey(k) == "Set-Cookie" {
			return true
		}
	}
	return false
}

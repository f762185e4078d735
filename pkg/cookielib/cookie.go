// Package cookielib provides the cookie intelligence pipeline used by cookiewatch:
// collection across a page's resources, classification, risk rating, privacy
// scoring, deletion and the regeneration guard.
package cookielib

import (
	"encoding/json"
	"net/url"
	"strings"
)

// SameSite is the cookie SameSite attribute as reported by the browser cookie store.
type SameSite string

const (
	SameSiteNoRestriction SameSite = "no_restriction"
	SameSiteLax           SameSite = "lax"
	SameSiteStrict        SameSite = "strict"
	SameSiteUnspecified   SameSite = "unspecified"
)

// ParseSameSite normalizes the different spellings used by browsers and
// cookie files ("None", "no_restriction", "Lax", ...).
func ParseSameSite(s string) SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no_restriction", "none":
		return SameSiteNoRestriction
	case "lax":
		return SameSiteLax
	case "strict":
		return SameSiteStrict
	default:
		return SameSiteUnspecified
	}
}

// Category is the purpose category assigned to a cookie.
type Category string

const (
	CategoryEssential  Category = "Essential"
	CategoryPreference Category = "Preference"
	CategoryAnalytics  Category = "Analytics"
	CategoryTracking   Category = "Tracking"
	CategoryUnknown    Category = "Unknown"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryEssential,
	CategoryPreference,
	CategoryAnalytics,
	CategoryTracking,
	CategoryUnknown,
}

// DefaultStoreID is the cookie jar used when a record does not carry one.
const DefaultStoreID = "0"

// Cookie is the normalized cookie record consumed by the pipeline.
// Value is sensitive and must never be logged.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value,omitempty"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
	Secure   bool     `json:"secure"`
	HTTPOnly bool     `json:"httpOnly"`
	HostOnly bool     `json:"hostOnly"`
	SameSite SameSite `json:"sameSite"`
	Session  bool     `json:"session"`
	// Expiration is in epoch seconds; nil iff Session.
	Expiration *int64 `json:"expirationDate,omitempty"`
	StoreID    string `json:"storeId"`
	// PartitionKey is passed through to the cookie store untouched.
	PartitionKey json.RawMessage `json:"partitionKey,omitempty"`

	Category   Category  `json:"category,omitempty"`
	RiskScore  int       `json:"riskScore"`
	RiskLabel  RiskLabel `json:"riskLabel,omitempty"`
	ThirdParty bool      `json:"thirdParty,omitempty"`
}

// Key identifies a single cookie observation for deduplication.
type Key struct {
	Name    string
	Domain  string
	Path    string
	StoreID string
}

// Key returns the (name, domain, path, storeId) identity of c. Names compare
// case-insensitively.
func (c *Cookie) Key() Key {
	return Key{
		Name:    strings.ToLower(c.Name),
		Domain:  c.Domain,
		Path:    c.Path,
		StoreID: c.StoreID,
	}
}

// GuardKey identifies a cookie for regeneration blocking. It ignores path and
// store so a re-set under a different path is still caught.
type GuardKey struct {
	Name   string
	Domain string
}

// GuardKey returns the (name, domain) identity of c.
func (c *Cookie) GuardKey() GuardKey {
	return GuardKey{Name: strings.ToLower(c.Name), Domain: c.Domain}
}

func (k GuardKey) String() string {
	return k.Name + "|" + k.Domain
}

// CanonicalDomain strips the leading dot of a domain-wide cookie domain.
func CanonicalDomain(domain string) string {
	return strings.TrimPrefix(domain, ".")
}

// OwnerURL rebuilds the URL the cookie store needs to address c:
// scheme from Secure, domain without its leading dot, path defaulting to "/".
func OwnerURL(c *Cookie) string {
	if c == nil {
		return ""
	}
	protocol := "http:"
	if c.Secure {
		protocol = "https:"
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	return protocol + "//" + CanonicalDomain(c.Domain) + path
}

// Normalize fills defaults: path "/", store "0", lowercase SameSite form,
// host-only derived from the domain when not set, and session when there is
// no expiration.
func (c *Cookie) Normalize() {
	if c.Path == "" {
		c.Path = "/"
	}
	if c.StoreID == "" {
		c.StoreID = DefaultStoreID
	}
	c.SameSite = ParseSameSite(string(c.SameSite))
	if !c.HostOnly && c.Domain != "" && !strings.HasPrefix(c.Domain, ".") {
		c.HostOnly = true
	}
	if c.Expiration == nil {
		c.Session = true
	}
	if c.Session {
		c.Expiration = nil
	}
}

// VisibleTo reports whether a browser would send c with a request to u,
// following the RFC 6265 domain-match and path-match rules.
func (c *Cookie) VisibleTo(u *url.URL) bool {
	if u == nil {
		return false
	}
	if c.Secure && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	domain := strings.ToLower(CanonicalDomain(c.Domain))
	if host != domain {
		hostOnly := c.HostOnly || (c.Domain != "" && !strings.HasPrefix(c.Domain, "."))
		if hostOnly || !strings.HasSuffix(host, "."+domain) {
			return false
		}
	}
	return pathMatch(u.Path, c.Path)
}

func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == "" {
		reqPath = "/"
	}
	if cookiePath == "" || cookiePath == "/" || reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}

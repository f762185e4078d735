package cookielib

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Analyzer turns raw cookie records into categorized, risk-rated cookies.
type Analyzer struct {
	classifier *Classifier
	now        func() time.Time
}

// NewAnalyzer returns an Analyzer using classifier and the wall clock.
func NewAnalyzer(classifier *Classifier) *Analyzer {
	return &Analyzer{classifier: classifier, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Classifier returns the classifier used by a.
func (a *Analyzer) Classifier() *Classifier {
	return a.classifier
}

// Analyze normalizes, classifies and rates every cookie. primaryURL is the
// page the cookies were collected for; it only drives the third-party flag
// and may be empty.
func (a *Analyzer) Analyze(cookies []Cookie, primaryURL string) []Cookie {
	if len(cookies) == 0 {
		return nil
	}
	now := a.now()
	site := registrableDomain(hostOf(primaryURL))

	out := make([]Cookie, len(cookies))
	for i, c := range cookies {
		a.analyzeOne(&c, now, site)
		out[i] = c
	}
	return out
}

// AnalyzeOne rates a single cookie in place.
func (a *Analyzer) AnalyzeOne(c *Cookie) {
	a.analyzeOne(c, a.now(), "")
}

func (a *Analyzer) analyzeOne(c *Cookie, now time.Time, site string) {
	c.Normalize()
	c.Category = a.classifier.Classify(c.Name)
	risk := ScoreRisk(RiskAttrsOf(c), now)
	c.RiskScore = risk.Score
	c.RiskLabel = risk.Label
	if site != "" {
		c.ThirdParty = registrableDomain(CanonicalDomain(c.Domain)) != site
	}
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// registrableDomain returns the eTLD+1 of host, or host itself for IPs,
// localhost and other names without a public suffix.
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return ""
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}

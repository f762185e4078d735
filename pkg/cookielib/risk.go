package cookielib

import "time"

// RiskLabel is the coarse risk rating of a single cookie.
type RiskLabel string

const (
	RiskLow      RiskLabel = "Low Risk"
	RiskModerate RiskLabel = "Moderate Risk"
	RiskHigh     RiskLabel = "High Risk"
)

// longLivedSeconds is the lifetime above which a persistent cookie adds risk.
const longLivedSeconds = 31_536_000

// RiskAttrs are the security attributes the risk score is derived from.
type RiskAttrs struct {
	Secure     bool
	HTTPOnly   bool
	HostOnly   bool
	SameSite   SameSite
	Session    bool
	Expiration *int64
}

// RiskAttrsOf extracts the risk attributes of c.
func RiskAttrsOf(c *Cookie) RiskAttrs {
	return RiskAttrs{
		Secure:     c.Secure,
		HTTPOnly:   c.HTTPOnly,
		HostOnly:   c.HostOnly,
		SameSite:   c.SameSite,
		Session:    c.Session,
		Expiration: c.Expiration,
	}
}

// Risk is the additive risk score and its label.
type Risk struct {
	Score int       `json:"riskScore"`
	Label RiskLabel `json:"riskLabel"`
}

// ScoreRisk rates attrs at wall-clock time now. The long-lived check uses now,
// so a label can change over time without the cookie changing.
func ScoreRisk(attrs RiskAttrs, now time.Time) Risk {
	score := 0
	if !attrs.Secure {
		score += 3
	}
	if !attrs.HTTPOnly {
		score += 3
	}
	if !attrs.HostOnly {
		score += 1
	}
	if attrs.SameSite == SameSiteNoRestriction {
		score += 2
	}
	if isLongLived(attrs.Session, attrs.Expiration, now) {
		score += 1
	}
	return Risk{Score: score, Label: riskLabelFor(score)}
}

func isLongLived(session bool, expiration *int64, now time.Time) bool {
	if session || expiration == nil {
		return false
	}
	return *expiration-now.Unix() > longLivedSeconds
}

func riskLabelFor(score int) RiskLabel {
	switch {
	case score >= 7:
		return RiskHigh
	case score >= 3:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Severity orders findings for display.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// Finding explains one risk factor of a cookie.
type Finding struct {
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Findings itemizes the risk factors of c. A cookie with none gets a single
// low-risk finding.
func Findings(c *Cookie, now time.Time) []Finding {
	var out []Finding
	if !c.HTTPOnly {
		out = append(out, Finding{
			Title:    "Missing HttpOnly Flag",
			Severity: SeverityHigh,
			Detail:   "Page scripts can read this cookie, so injected scripts could steal it.",
		})
	}
	if !c.Secure {
		out = append(out, Finding{
			Title:    "Missing Secure Flag",
			Severity: SeverityHigh,
			Detail:   "The cookie may be sent over unencrypted HTTP connections.",
		})
	}
	if !c.HostOnly {
		out = append(out, Finding{
			Title:    "Wide Domain Scope (Not HostOnly)",
			Severity: SeverityMedium,
			Detail:   "Every subdomain of " + CanonicalDomain(c.Domain) + " receives this cookie.",
		})
	}
	if c.SameSite == SameSiteNoRestriction {
		out = append(out, Finding{
			Title:    "SameSite: No restriction",
			Severity: SeverityMedium,
			Detail:   "The cookie is sent on cross-site requests, which enables cross-site tracking.",
		})
	}
	if isLongLived(c.Session, c.Expiration, now) {
		out = append(out, Finding{
			Title:    "Long Expiration Date",
			Severity: SeverityInfo,
			Detail:   "The cookie lives for more than a year.",
		})
	}
	if len(out) == 0 {
		out = append(out, Finding{
			Title:    "Low Risk Cookie",
			Severity: SeverityLow,
			Detail:   "No risky attributes were found on this cookie.",
		})
	}
	return out
}

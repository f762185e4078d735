package cookielib

import "strings"

// Classifier maps cookie names to categories using the reference dataset
// and a fixed set of heuristics. It is safe for concurrent use.
type Classifier struct {
	source DatasetSource
}

// NewClassifier returns a Classifier backed by source. A nil source means
// heuristics only.
func NewClassifier(source DatasetSource) *Classifier {
	return &Classifier{source: source}
}

func (c *Classifier) dataset() *Dataset {
	if c == nil || c.source == nil {
		return nil
	}
	return c.source.Dataset()
}

var (
	essentialPrefixes  = []string{"st-", "jsessionid", "phpsessid", "aspsessionid", "aws"}
	essentialContains  = []string{"csrf", "xsrf"}
	preferenceExact    = []string{"lang", "language"}
	preferencePrefixes = []string{"wp-settings-"}
	analyticsPrefixes  = []string{"_pk_", "_ga", "_gid", "_gat"}
	trackingExact      = []string{"ide"}
	trackingPrefixes   = []string{"_fbp", "_uet"}
)

type keywordRule struct {
	category Category
	keywords []string
}

// Checked in order, first hit wins.
var keywordRules = []keywordRule{
	{CategoryEssential, []string{"sess", "auth", "id", "cart"}},
	{CategoryPreference, []string{"pref", "darkmode", "theme"}},
	{CategoryAnalytics, []string{"metric", "analytics", "stats"}},
	{CategoryTracking, []string{"pixel", "tracker", "ads", "banner"}},
}

// Classify returns the category of the cookie called name.
func (c *Classifier) Classify(name string) Category {
	lower := strings.ToLower(name)

	if cat, ok := c.dataset().Lookup(lower); ok {
		return cat
	}
	if cat, ok := classifyPattern(lower); ok {
		return cat
	}
	for _, rule := range keywordRules {
		if containsAny(lower, rule.keywords) {
			return rule.category
		}
	}
	return CategoryUnknown
}

func classifyPattern(name string) (Category, bool) {
	switch {
	case hasAnyPrefix(name, essentialPrefixes), containsAny(name, essentialContains):
		return CategoryEssential, true
	case equalsAny(name, preferenceExact), hasAnyPrefix(name, preferencePrefixes):
		return CategoryPreference, true
	case hasAnyPrefix(name, analyticsPrefixes):
		return CategoryAnalytics, true
	case equalsAny(name, trackingExact), hasAnyPrefix(name, trackingPrefixes):
		return CategoryTracking, true
	}
	return "", false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func equalsAny(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}

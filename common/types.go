package common

import "github.com/laurynn-wl/cookie-project/pkg/cookielib"

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"build_type,omitempty"`
}

type ScanParams struct {
	// URL, when set, is loaded before collecting.
	URL string `json:"url,omitempty"`
}

type ScanResponse struct {
	ScanID      string                    `json:"scan_id"`
	PrimaryURL  string                    `json:"primary_url"`
	Status      string                    `json:"status"`
	URLs        []string                  `json:"urls"`
	Cookies     []cookielib.Cookie        `json:"cookies"`
	Score       cookielib.PrivacyScore    `json:"score"`
	Categories  []cookielib.CategoryCount `json:"categories"`
	FetchErrors []string                  `json:"fetch_errors,omitempty"`
}

type ClassifyParams struct {
	Names []string `json:"names"`
}

type ClassifyResponse struct {
	Categories map[string]cookielib.Category `json:"categories"`
}

type ScoreParams struct {
	Cookies []cookielib.Cookie `json:"cookies"`
}

type DeleteParams struct {
	Cookies []cookielib.Cookie `json:"cookies"`
	// Categories narrows the targets to the listed categories.
	Categories []cookielib.Category `json:"categories,omitempty"`
	// Force skips the deletable-category policy.
	Force  bool `json:"force,omitempty"`
	Verify bool `json:"verify,omitempty"`
}

type DeleteResponse struct {
	cookielib.DeleteResult
	// Filtered counts targets dropped by the category policy.
	Filtered int `json:"filtered,omitempty"`
}

type StreakResponse struct {
	Count      int                   `json:"count"`
	Milestones []cookielib.Milestone `json:"milestones"`
}

type CookieRegenerated struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	URL     string `json:"url"`
	Removed bool   `json:"removed"`
}

type ScanProgress struct {
	URL     string `json:"url"`
	Cookies int    `json:"cookies"`
	Error   string `json:"error,omitempty"`
}

package cookielib

import "fmt"

const (
	maxTrackingPenalty = 50
	maxSecurityPenalty = 30
	maxVolumePenalty   = 20

	insecureEssentialCap   = 45
	scriptableEssentialCap = 60
)

// Grade is a letter grade with its rank and presentation tag.
type Grade struct {
	Letter   string `json:"grade"`
	Rank     string `json:"rank"`
	ColorTag string `json:"colorTag"`
}

// Grade thresholds, highest first.
var grades = []struct {
	min   int
	grade Grade
}{
	{90, Grade{"A", "Excellent", "green"}},
	{75, Grade{"B", "Good", "lime"}},
	{50, Grade{"C", "Medium", "yellow"}},
	{30, Grade{"D", "Poor", "orange"}},
	{0, Grade{"F", "Very Poor", "red"}},
}

// GradeFor returns the grade of a final privacy score.
func GradeFor(score int) Grade {
	for _, g := range grades {
		if score >= g.min {
			return g.grade
		}
	}
	return grades[len(grades)-1].grade
}

// Penalties is the breakdown of points taken off the baseline of 100.
type Penalties struct {
	Tracking int `json:"tracking"`
	Security int `json:"security"`
	Volume   int `json:"volume"`
}

// PrivacyScore is the aggregate score of a site's cookie set.
type PrivacyScore struct {
	Score     int       `json:"score"`
	Grade     string    `json:"grade"`
	Rank      string    `json:"rank"`
	ColorTag  string    `json:"colorTag"`
	BadgeText string    `json:"badgeText"`
	Penalties Penalties `json:"penalties"`
	// Cap is the tightest cap applied by insecure Essential cookies (100 when none).
	Cap int `json:"cap"`
	// CapReached is set when the final score sits exactly on an active cap.
	CapReached bool `json:"capReached"`
}

func newPrivacyScore(score int, p Penalties, limit int) PrivacyScore {
	g := GradeFor(score)
	return PrivacyScore{
		Score:      score,
		Grade:      g.Letter,
		Rank:       g.Rank,
		ColorTag:   g.ColorTag,
		BadgeText:  fmt.Sprintf("Site Rank: %s - %s", g.Letter, g.Rank),
		Penalties:  p,
		Cap:        limit,
		CapReached: limit < 100 && score == limit,
	}
}

// ComputePrivacyScore scores a full cookie set. It is pure and must be rerun
// whenever the set changes.
func ComputePrivacyScore(cookies []Cookie) PrivacyScore {
	if len(cookies) == 0 {
		return newPrivacyScore(100, Penalties{}, 100)
	}

	var p Penalties
	tracking := 0
	security := 0
	limit := 100
	for i := range cookies {
		c := &cookies[i]
		if c.Category == CategoryTracking {
			tracking++
		}
		if !c.Secure || !c.HTTPOnly {
			// Tracking cookies already carry the tracking penalty.
			if c.Category == CategoryTracking {
				security += 2
			} else {
				security += 5
			}
		}
		if c.Category == CategoryEssential {
			if !c.Secure {
				limit = min(limit, insecureEssentialCap)
			}
			if !c.HTTPOnly {
				limit = min(limit, scriptableEssentialCap)
			}
		}
	}

	p.Tracking = min(tracking*10, maxTrackingPenalty)
	p.Security = min(security, maxSecurityPenalty)
	p.Volume = min(len(cookies)/5, maxVolumePenalty)

	score := max(100-p.Tracking-p.Security-p.Volume, 0)
	score = min(score, limit)
	return newPrivacyScore(score, p, limit)
}

// CategoryCount is the number of cookies in one category.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// CountByCategory returns non-zero counts in display order. Cookies without a
// category count as Unknown.
func CountByCategory(cookies []Cookie) []CategoryCount {
	counts := make(map[Category]int, len(Categories))
	for i := range cookies {
		cat := cookies[i].Category
		if cat == "" {
			cat = CategoryUnknown
		}
		counts[cat]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, cat := range Categories {
		if n := counts[cat]; n > 0 {
			out = append(out, CategoryCount{Category: cat, Count: n})
		}
	}
	return out
}

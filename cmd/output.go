package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/laurynn-wl/cookie-project/common"
	cmdcommon "github.com/laurynn-wl/cookie-project/cmd/common"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

var jsonOut = sonic.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

func printJSON(v any) error {
	data, err := jsonOut.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

// printScan renders a scan as a score header followed by the cookie table.
func printScan(resp *common.ScanResponse) {
	if resp.PrimaryURL != "" {
		fmt.Printf("Cookies for %s\n", resp.PrimaryURL)
	}
	printScore(&resp.Score)
	if len(resp.Categories) > 0 {
		parts := make([]string, 0, len(resp.Categories))
		for _, cc := range resp.Categories {
			parts = append(parts, fmt.Sprintf("%s %d", cc.Category, cc.Count))
		}
		fmt.Printf("Categories: %s\n", strings.Join(parts, ", "))
	}
	for _, fe := range resp.FetchErrors {
		fmt.Printf("warning: %s\n", fe)
	}
	if len(resp.Cookies) == 0 {
		fmt.Println("cookiewatch: no cookies found")
		return
	}
	fmt.Println(cookieTable(resp.Cookies))
}

func printScore(s *cookielib.PrivacyScore) {
	fmt.Printf("Privacy score: %d/100 (%s, %s)\n", s.Score, s.Grade, s.Rank)
	if s.CapReached {
		fmt.Printf("Capped at %d by insecure essential cookies\n", s.Cap)
	}
}

var tableWidths = []int{3, 18, 26, 12, 15}

func tableRow(cells ...string) string {
	row := "|"
	for i, c := range cells {
		row += cmdcommon.Fit(c, tableWidths[i]) + "|"
	}
	return row
}

func cookieTable(cookies []cookielib.Cookie) string {
	rule := strings.Repeat("-", len(tableRow("", "", "", "", "")))
	sep := "|"
	for _, w := range tableWidths {
		sep += strings.Repeat("-", w) + "|"
	}
	txt := "\n" + rule
	txt += "\n" + tableRow("Num", "Name", "Domain", "Category", "Risk")
	txt += "\n" + sep
	for i := range cookies {
		c := &cookies[i]
		cat := string(c.Category)
		if c.ThirdParty {
			cat += "*"
		}
		txt += "\n" + tableRow(fmt.Sprintf("%d", i+1), c.Name, c.Domain, cat, string(c.RiskLabel))
	}
	txt += "\n" + rule
	txt += "\n* third-party"
	return txt
}

func printDelete(resp *common.DeleteResponse) {
	fmt.Printf("Deleted %d cookie(s)\n", resp.Deleted)
	if resp.Filtered > 0 {
		fmt.Printf("Kept %d essential or unknown cookie(s), use --force to delete them\n", resp.Filtered)
	}
	if resp.Regenerated > 0 {
		fmt.Printf("Removed %d cookie(s) again after the site rewrote them\n", resp.Regenerated)
	}
	for _, s := range resp.Skipped {
		fmt.Printf("  skipped %s (%s): %s\n", s.Name, s.Domain, s.Reason)
	}
}

func printStreak(resp *common.StreakResponse) {
	day := "days"
	if resp.Count == 1 {
		day = "day"
	}
	fmt.Printf("Streak: %d %s\n", resp.Count, day)
	for _, m := range resp.Milestones {
		state := fmt.Sprintf("%d%%", m.Progress)
		if m.Unlocked {
			state = "unlocked"
		}
		fmt.Printf("  %s (%d days): %s\n", m.Label, m.Days, state)
	}
}

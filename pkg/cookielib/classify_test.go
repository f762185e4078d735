package cookielib

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

func embeddedDatasetForTest(t *testing.T) *Dataset {
	t.Helper()
	ds, err := EmbeddedDatasetLoader()()
	if err != nil {
		t.Fatalf("embedded dataset: %v", err)
	}
	return ds
}

func TestClassify_DatasetTakesPriority(t *testing.T) {
	c := NewClassifier(embeddedDatasetForTest(t))
	tests := []struct {
		name string
		want Category
	}{
		// The heuristics would say Essential ("id").
		{"lidc", CategoryPreference},
		// The heuristics would say Essential ("sess").
		{"_hjSessionUser_1234", CategoryAnalytics},
		{"_hjSession_1234", CategoryAnalytics},
		// The heuristics would say Unknown.
		{"bcookie", CategoryTracking},
		{"_gcl_au", CategoryTracking},
		{"__cf_bm", CategoryEssential},
		{"NID", CategoryEssential},
		{"_ga_ABC123", CategoryAnalytics},
		{"IDE", CategoryTracking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassify_EveryExactEntryUsesDataset(t *testing.T) {
	ds := embeddedDatasetForTest(t)
	c := NewClassifier(ds)
	if len(ds.exact) == 0 {
		t.Fatal("embedded dataset has no exact entries")
	}
	for name, want := range ds.exact {
		if got := c.Classify(name); got != want {
			t.Errorf("Classify(%q) = %s, want dataset category %s", name, got, want)
		}
	}
}

func TestClassify_Heuristics(t *testing.T) {
	c := NewClassifier(nil)
	tests := []struct {
		name string
		want Category
	}{
		{"st-token", CategoryEssential},
		{"JSESSIONID", CategoryEssential},
		{"PHPSESSID", CategoryEssential},
		{"AWSALB", CategoryEssential},
		{"my_csrf_token", CategoryEssential},
		{"XSRF-TOKEN", CategoryEssential},
		{"lang", CategoryPreference},
		{"Language", CategoryPreference},
		{"wp-settings-1", CategoryPreference},
		{"_pk_id.1.abcd", CategoryAnalytics},
		{"_gat_UA-1", CategoryAnalytics},
		{"ide", CategoryTracking},
		{"_fbp", CategoryTracking},
		{"_uetsid", CategoryTracking},
		{"user_session", CategoryEssential},
		{"cart_token", CategoryEssential},
		{"darkmode", CategoryPreference},
		{"theme_ads", CategoryPreference},
		{"site_stats", CategoryAnalytics},
		{"fb_pixel", CategoryTracking},
		{"banner", CategoryTracking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassify_UnknownNames(t *testing.T) {
	c := NewClassifier(embeddedDatasetForTest(t))
	for _, name := range []string{"", "zzz", "foo", "q", "xyz_123"} {
		if got := c.Classify(name); got != CategoryUnknown {
			t.Errorf("Classify(%q) = %s, want Unknown", name, got)
		}
	}
}

func TestLazyDataset_LoadsOnce(t *testing.T) {
	calls := 0
	lazy := NewLazyDataset(func() (*Dataset, error) {
		calls++
		return NewDataset([]DatasetEntry{{Cookie: "abc", Category: "Marketing"}}), nil
	}, nil)
	c := NewClassifier(lazy)

	if calls != 0 {
		t.Fatalf("dataset loaded before first use")
	}
	for range 3 {
		if got := c.Classify("abc"); got != CategoryTracking {
			t.Fatalf("Classify(abc) = %s, want Tracking", got)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestLazyDataset_FailureDegradesToHeuristics(t *testing.T) {
	log := logger.NewMockLogger()
	lazy := NewLazyDataset(func() (*Dataset, error) {
		return ParseOpenCookieDatabase([]byte("{not json"))
	}, log)
	c := NewClassifier(lazy)

	if got := c.Classify("_hjSessionUser_1"); got != CategoryEssential {
		t.Errorf("Classify = %s, want heuristic Essential", got)
	}
	if !errors.Is(lazy.Err(), ErrDatasetLoad) {
		t.Errorf("Err() = %v, want ErrDatasetLoad", lazy.Err())
	}
	if n := len(log.WarningCalls()); n != 1 {
		t.Errorf("expected 1 warning, got %d", n)
	}
}

func TestDataset_WildcardLongestPrefixWins(t *testing.T) {
	ds := NewDataset([]DatasetEntry{
		{Cookie: "_x", Category: "Analytics", WildcardMatch: "1"},
		{Cookie: "_x_ads_", Category: "Marketing", WildcardMatch: "1"},
		{Cookie: "dropped", Category: "Unclassified"},
	})
	if got, _ := ds.Lookup("_x_ads_42"); got != CategoryTracking {
		t.Errorf("Lookup(_x_ads_42) = %s, want Tracking", got)
	}
	if got, _ := ds.Lookup("_x_other"); got != CategoryAnalytics {
		t.Errorf("Lookup(_x_other) = %s, want Analytics", got)
	}
	if _, ok := ds.Lookup("dropped"); ok {
		t.Error("unmapped category should be withheld")
	}
}

func TestFileDatasetLoader(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := `{"Acme": [{"cookie": "acme_tr", "category": "Marketing", "wildcardMatch": "0"}]}`
	if err := afero.WriteFile(fs, "/data/ocd.json", []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := FileDatasetLoader(fs, "/data/ocd.json")()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, _ := ds.Lookup("ACME_TR"); got != CategoryTracking {
		t.Errorf("Lookup = %s, want Tracking", got)
	}

	if _, err := FileDatasetLoader(fs, "/missing.json")(); !errors.Is(err, ErrDatasetLoad) {
		t.Errorf("missing file error = %v, want ErrDatasetLoad", err)
	}
}

package cookielib

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/spf13/afero"

	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

//go:embed data/known_cookies.json
var embeddedDataset []byte

// DatasetEntry is one record of the Open Cookie Database.
type DatasetEntry struct {
	ID            string `json:"id,omitempty"`
	Platform      string `json:"platform,omitempty"`
	Category      string `json:"category"`
	Cookie        string `json:"cookie"`
	Domain        string `json:"domain,omitempty"`
	Description   string `json:"description,omitempty"`
	WildcardMatch string `json:"wildcardMatch"`
}

type wildcardRule struct {
	prefix   string
	category Category
}

// Dataset is the immutable lookup structure built from the reference data:
// an exact table keyed by lowercase name and prefix rules ordered longest first.
type Dataset struct {
	exact     map[string]Category
	wildcards []wildcardRule
}

// remapDatasetCategory maps the reference dataset categories onto ours.
// Categories without a mapping are withheld.
func remapDatasetCategory(c string) (Category, bool) {
	switch c {
	case "Security", "Functional":
		return CategoryEssential, true
	case "Personalization":
		return CategoryPreference, true
	case "Analytics":
		return CategoryAnalytics, true
	case "Marketing":
		return CategoryTracking, true
	default:
		return "", false
	}
}

// NewDataset builds a Dataset from raw entries.
func NewDataset(entries []DatasetEntry) *Dataset {
	d := &Dataset{exact: make(map[string]Category, len(entries))}
	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Cookie))
		if name == "" || e.Category == "" {
			continue
		}
		cat, ok := remapDatasetCategory(e.Category)
		if !ok {
			continue
		}
		if e.WildcardMatch == "1" {
			d.wildcards = append(d.wildcards, wildcardRule{prefix: name, category: cat})
			continue
		}
		d.exact[name] = cat
	}
	// Longest prefix first so the first structural match is the most specific.
	sort.SliceStable(d.wildcards, func(i, j int) bool {
		return len(d.wildcards[i].prefix) > len(d.wildcards[j].prefix)
	})
	return d
}

// EmptyDataset returns a dataset with no entries.
func EmptyDataset() *Dataset {
	return &Dataset{exact: map[string]Category{}}
}

// Lookup returns the mapped category for name: exact match first, then the
// longest matching wildcard prefix.
func (d *Dataset) Lookup(name string) (Category, bool) {
	if d == nil || name == "" {
		return "", false
	}
	name = strings.ToLower(name)
	if cat, ok := d.exact[name]; ok {
		return cat, true
	}
	for _, w := range d.wildcards {
		if strings.HasPrefix(name, w.prefix) {
			return w.category, true
		}
	}
	return "", false
}

// Len returns the number of exact and wildcard entries.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.exact) + len(d.wildcards)
}

// Dataset lets a *Dataset be used directly as a DatasetSource.
func (d *Dataset) Dataset() *Dataset {
	return d
}

// ParseOpenCookieDatabase parses the Open Cookie Database JSON layout:
// an object keyed by platform whose values are arrays of entries.
func ParseOpenCookieDatabase(data []byte) (*Dataset, error) {
	var raw map[string][]DatasetEntry
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetLoad, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: no platforms in dataset", ErrDatasetLoad)
	}
	platforms := make([]string, 0, len(raw))
	for p := range raw {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	var entries []DatasetEntry
	for _, p := range platforms {
		entries = append(entries, raw[p]...)
	}
	return NewDataset(entries), nil
}

// DatasetLoader produces a Dataset on demand.
type DatasetLoader func() (*Dataset, error)

// EmbeddedDatasetLoader loads the dataset shipped with the binary.
func EmbeddedDatasetLoader() DatasetLoader {
	return func() (*Dataset, error) {
		return ParseOpenCookieDatabase(embeddedDataset)
	}
}

// FileDatasetLoader loads an Open Cookie Database JSON file from fs.
func FileDatasetLoader(fs afero.Fs, path string) DatasetLoader {
	return func() (*Dataset, error) {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatasetLoad, err)
		}
		return ParseOpenCookieDatabase(data)
	}
}

// DatasetSource hands the classifier its lookup structure.
type DatasetSource interface {
	Dataset() *Dataset
}

// LazyDataset builds its Dataset on first use and caches it for its lifetime.
// A failed load degrades to an empty dataset so classification falls back to
// heuristics.
type LazyDataset struct {
	load DatasetLoader
	log  logger.Logger

	once sync.Once
	ds   *Dataset
	err  error
}

// NewLazyDataset wraps load. A nil logger discards messages.
func NewLazyDataset(load DatasetLoader, l logger.Logger) *LazyDataset {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &LazyDataset{load: load, log: l}
}

// Dataset returns the cached dataset, loading it on the first call.
func (l *LazyDataset) Dataset() *Dataset {
	l.once.Do(func() {
		if l.load == nil {
			l.ds = EmptyDataset()
			return
		}
		ds, err := l.load()
		if err != nil {
			l.err = err
			l.log.Warning("cookie dataset unavailable, using heuristics only: %v", err)
			l.ds = EmptyDataset()
			return
		}
		l.log.Debug("cookie dataset initialised with %d entries", ds.Len())
		l.ds = ds
	})
	return l.ds
}

// Err returns the load error, if the dataset has been loaded and failed.
func (l *LazyDataset) Err() error {
	return l.err
}

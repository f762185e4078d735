package cookielib

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// DefaultMaxConcurrency bounds the number of in-flight cookie queries.
const DefaultMaxConcurrency = 16

// CollectStatus distinguishes a successful collection with data from a
// successful collection that found nothing.
type CollectStatus int

const (
	StatusOK CollectStatus = iota
	StatusEmpty
)

func (s CollectStatus) String() string {
	if s == StatusEmpty {
		return "empty"
	}
	return "ok"
}

// FetchError is a failed cookie query for one URL. It matches ErrCookieFetch.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCookieFetch, e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrCookieFetch, e.Err}
}

// CollectResult is the outcome of a successful collection.
type CollectResult struct {
	Status     CollectStatus
	PrimaryURL string
	// URLs is every URL that was queried, primary first.
	URLs    []string
	Cookies []Cookie
	// FetchErrors lists the URLs whose query failed and were treated as
	// having no cookies.
	FetchErrors []*FetchError
}

// CollectorOptions tunes a Collector.
type CollectorOptions struct {
	// MaxConcurrency bounds parallel cookie queries; <= 0 uses DefaultMaxConcurrency.
	MaxConcurrency int
	// Analyzer, when set, classifies and rates every collected cookie.
	Analyzer *Analyzer
	// OnFetched is called once per URL after its query finishes. It may be
	// called from several goroutines at once.
	OnFetched func(rawURL string, n int, err error)
}

// Collector gathers every cookie associated with the active page: the
// document itself, its frames and its subresources.
type Collector struct {
	page  PageContext
	store CookieStore
	log   logger.Logger
	opts  CollectorOptions
}

// NewCollector returns a Collector reading from page and store.
func NewCollector(page PageContext, store CookieStore, l logger.Logger, opts CollectorOptions) *Collector {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	return &Collector{page: page, store: store, log: l, opts: opts}
}

// Collect runs discovery and the cookie fan-out. Discovery failures abort
// the collection; a failed query for a single URL only loses that URL's
// cookies.
func (c *Collector) Collect(ctx context.Context) (CollectResult, error) {
	primary, err := c.page.ActiveURL(ctx)
	if err != nil {
		return CollectResult{}, fmt.Errorf("%w: %v", ErrNoActivePage, err)
	}
	if primary == "" {
		return CollectResult{}, ErrNoActivePage
	}
	resources, err := c.page.ResourceURLs(ctx)
	if err != nil {
		return CollectResult{}, fmt.Errorf("%w: resources: %v", ErrResourceEnumeration, err)
	}
	frames, err := c.page.FrameURLs(ctx)
	if err != nil {
		return CollectResult{}, fmt.Errorf("%w: frames: %v", ErrResourceEnumeration, err)
	}

	urls := collectURLs(primary, resources, frames)
	c.log.Debug("collecting cookies for %s across %d urls", primary, len(urls))

	type slot struct {
		cookies []Cookie
		err     error
	}
	slots := make([]slot, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrency)
	for i, u := range urls {
		g.Go(func() error {
			cookies, err := c.store.GetAll(gctx, u)
			slots[i] = slot{cookies: cookies, err: err}
			if c.opts.OnFetched != nil {
				c.opts.OnFetched(u, len(cookies), err)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return CollectResult{}, err
	}

	res := CollectResult{PrimaryURL: primary, URLs: urls}
	var all []Cookie
	for i, s := range slots {
		if s.err != nil {
			c.log.Warning("failed to fetch cookies for %s: %v", urls[i], s.err)
			res.FetchErrors = append(res.FetchErrors, &FetchError{URL: urls[i], Err: s.err})
			continue
		}
		for _, ck := range s.cookies {
			ck.Normalize()
			all = append(all, ck)
		}
	}
	res.Cookies = Dedupe(all)
	if c.opts.Analyzer != nil {
		res.Cookies = c.opts.Analyzer.Analyze(res.Cookies, primary)
	}
	res.Status = StatusOK
	if len(res.Cookies) == 0 {
		res.Status = StatusEmpty
	}
	return res, nil
}

// collectURLs returns the set union of the primary, resource and frame URLs.
// The primary URL comes first and the rest follow in lexical order, which
// fixes which duplicate observation survives deduplication.
func collectURLs(primary string, resources, frames []string) []string {
	set := make(map[string]struct{}, len(resources)+len(frames))
	for _, list := range [][]string{resources, frames} {
		for _, u := range list {
			if u == primary || !isWebURL(u) {
				continue
			}
			set[u] = struct{}{}
		}
	}
	rest := make([]string, 0, len(set))
	for u := range set {
		rest = append(rest, u)
	}
	slices.Sort(rest)
	return append([]string{primary}, rest...)
}

func isWebURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

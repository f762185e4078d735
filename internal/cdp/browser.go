// Package cdp drives a Chromium-family browser over the DevTools protocol and
// exposes the active tab as a cookielib.PageContext and the browser cookie jar
// as a cookielib.CookieStore.
package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// DefaultPollInterval is how often Watch re-reads the cookie jar when no
// Set-Cookie response nudges it earlier.
const DefaultPollInterval = time.Second

// resourcesJS lists every subresource the page has loaded.
const resourcesJS = `performance.getEntriesByType('resource').map(e => e.name)`

// Options configures how the browser is reached.
type Options struct {
	// RemoteURL is the DevTools websocket URL of a running browser. When empty
	// a local browser is launched.
	RemoteURL string
	// Headless launches the local browser without a window.
	Headless bool
	// PollInterval overrides DefaultPollInterval.
	PollInterval time.Duration
}

// Browser is a single DevTools tab plus the browser-wide cookie jar.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Logger
	poll   time.Duration
}

// New connects to (or launches) a browser and opens a tab. The tab lives
// until Close; parent only bounds the startup.
func New(parent context.Context, opts Options, l logger.Logger) (*Browser, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	b := &Browser{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		log:  l,
		poll: opts.PollInterval,
	}
	if b.poll <= 0 {
		b.poll = DefaultPollInterval
	}
	// The first Run allocates the browser and ties it to the context it is
	// given, so it runs on the tab context itself.
	errc := make(chan error, 1)
	go func() { errc <- chromedp.Run(tabCtx, network.Enable()) }()
	select {
	case err := <-errc:
		if err != nil {
			b.cancel()
			return nil, fmt.Errorf("cdp: start browser: %w", err)
		}
	case <-parent.Done():
		b.cancel()
		return nil, parent.Err()
	}
	if opts.RemoteURL != "" {
		l.Info("cdp: attached to %s", opts.RemoteURL)
	} else {
		l.Info("cdp: launched browser (headless=%t)", opts.Headless)
	}
	return b, nil
}

// Close closes the tab and, for a launched browser, the browser itself.
func (b *Browser) Close() {
	b.cancel()
}

// run executes actions in the tab, aborting when ctx is done.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads rawURL in the tab and waits for the load event.
func (b *Browser) Navigate(ctx context.Context, rawURL string) error {
	if err := b.run(ctx, chromedp.Navigate(rawURL)); err != nil {
		return fmt.Errorf("cdp: navigate to %s: %w", rawURL, err)
	}
	return nil
}

// ActiveURL returns the tab's URL, or "" when the tab shows no web page.
func (b *Browser) ActiveURL(ctx context.Context) (string, error) {
	var loc string
	if err := b.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	if !isWebURL(loc) {
		return "", nil
	}
	return loc, nil
}

func (b *Browser) ResourceURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := b.run(ctx, chromedp.Evaluate(resourcesJS, &urls)); err != nil {
		return nil, err
	}
	return urls, nil
}

func (b *Browser) FrameURLs(ctx context.Context) ([]string, error) {
	var tree *page.FrameTree
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		tree, err = page.GetFrameTree().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return frameURLs(tree, nil), nil
}

func frameURLs(tree *page.FrameTree, acc []string) []string {
	if tree == nil {
		return acc
	}
	if tree.Frame != nil && tree.Frame.URL != "" {
		acc = append(acc, tree.Frame.URL)
	}
	for _, child := range tree.ChildFrames {
		acc = frameURLs(child, acc)
	}
	return acc
}

func (b *Browser) GetAll(ctx context.Context, rawURL string) ([]cookielib.Cookie, error) {
	var raw []*network.Cookie
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().WithURLs([]string{rawURL}).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return fromCDPAll(raw), nil
}

// allCookies returns the whole cookie jar.
func (b *Browser) allCookies(ctx context.Context) ([]cookielib.Cookie, error) {
	var raw []*network.Cookie
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return fromCDPAll(raw), nil
}

// Remove deletes the cookie and re-reads the jar, since DevTools does not
// report whether anything matched.
func (b *Browser) Remove(ctx context.Context, req cookielib.RemoveRequest) (bool, error) {
	params := network.DeleteCookies(req.Name).WithURL(req.URL)
	if pk, err := partitionKey(req.PartitionKey); err != nil {
		return false, err
	} else if pk != nil {
		params = params.WithPartitionKey(pk)
	}
	if err := b.run(ctx, params); err != nil {
		return false, err
	}

	left, err := b.GetAll(ctx, req.URL)
	if err != nil {
		return false, err
	}
	for _, c := range left {
		if c.Name == req.Name {
			return false, nil
		}
	}
	return true, nil
}

func (b *Browser) Set(ctx context.Context, req cookielib.SetRequest) error {
	params := network.SetCookie(req.Name, req.Value).
		WithURL(req.URL).
		WithSecure(req.Secure).
		WithHTTPOnly(req.HTTPOnly)
	if req.Domain != "" {
		params = params.WithDomain(req.Domain)
	}
	if req.Path != "" {
		params = params.WithPath(req.Path)
	}
	if ss := toCDPSameSite(req.SameSite); ss != "" {
		params = params.WithSameSite(ss)
	}
	expires := cdp.TimeSinceEpoch(time.Unix(req.Expiration, 0))
	params = params.WithExpires(&expires)
	pk, err := partitionKey(req.PartitionKey)
	if err != nil {
		return err
	}
	if pk != nil {
		params = params.WithPartitionKey(pk)
	}
	return b.run(ctx, params)
}

// partitionKey decodes the opaque partition key carried by cookielib.
func partitionKey(raw json.RawMessage) (*network.CookiePartitionKey, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var pk network.CookiePartitionKey
	if err := json.Unmarshal(raw, &pk); err != nil {
		return nil, fmt.Errorf("cdp: invalid partition key: %w", err)
	}
	if pk.TopLevelSite == "" {
		return nil, errors.New("cdp: partition key without topLevelSite")
	}
	return &pk, nil
}

var (
	_ cookielib.PageContext = (*Browser)(nil)
	_ cookielib.CookieStore = (*Browser)(nil)
)

package cdp

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

// Watch reports cookie jar changes. DevTools has no cookie change event, so
// the jar is diffed on every poll tick and right after any response that
// carried Set-Cookie.
func (b *Browser) Watch(ctx context.Context) (<-chan cookielib.ChangeEvent, error) {
	initial, err := b.allCookies(ctx)
	if err != nil {
		return nil, err
	}

	nudge := make(chan struct{}, 1)
	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		e, ok := ev.(*network.EventResponseReceivedExtraInfo)
		if !ok || !hasSetCookie(e.Headers) {
			return
		}
		select {
		case nudge <- struct{}{}:
		default:
		}
	})

	out := make(chan cookielib.ChangeEvent, 64)
	go func() {
		defer close(out)
		prev := jarOf(initial)
		ticker := time.NewTicker(b.poll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-nudge:
			}
			cur, err := b.allCookies(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.log.Warning("cdp: failed to read cookie jar: %v", err)
				continue
			}
			next := jarOf(cur)
			for _, ev := range diffJars(prev, next) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
			prev = next
		}
	}()
	return out, nil
}

type jar map[cookielib.Key]cookielib.Cookie

func jarOf(cookies []cookielib.Cookie) jar {
	j := make(jar, len(cookies))
	for _, c := range cookies {
		j[c.Key()] = c
	}
	return j
}

// diffJars lists the changes turning prev into next, ordered by name then
// domain then path.
func diffJars(prev, next jar) []cookielib.ChangeEvent {
	var events []cookielib.ChangeEvent
	for k, c := range next {
		old, ok := prev[k]
		switch {
		case !ok:
			events = append(events, cookielib.ChangeEvent{Cookie: c, Cause: cookielib.ChangeAdded})
		case changed(old, c):
			events = append(events, cookielib.ChangeEvent{Cookie: c, Cause: cookielib.ChangeModified})
		}
	}
	for k, c := range prev {
		if _, ok := next[k]; !ok {
			events = append(events, cookielib.ChangeEvent{Cookie: c, Cause: cookielib.ChangeRemoved})
		}
	}
	slices.SortFunc(events, func(a, b cookielib.ChangeEvent) int {
		if n := strings.Compare(a.Cookie.Name, b.Cookie.Name); n != 0 {
			return n
		}
		if n := strings.Compare(a.Cookie.Domain, b.Cookie.Domain); n != 0 {
			return n
		}
		return strings.Compare(a.Cookie.Path, b.Cookie.Path)
	})
	return events
}

func changed(a, b cookielib.Cookie) bool {
	if a.Value != b.Value || a.Secure != b.Secure || a.HTTPOnly != b.HTTPOnly ||
		a.SameSite != b.SameSite || a.Session != b.Session {
		return true
	}
	if (a.Expiration == nil) != (b.Expiration == nil) {
		return true
	}
	return a.Expiration != nil && *a.Expiration != *b.Expiration
}

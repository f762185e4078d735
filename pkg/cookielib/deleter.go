package cookielib

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// DefaultSettleDelay is how long verification waits for sites to re-set
// cookies after a deletion batch.
const DefaultSettleDelay = 500 * time.Millisecond

// SkippedCookie is a target the store did not confirm as removed.
type SkippedCookie struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

// DeleteResult aggregates a deletion batch.
type DeleteResult struct {
	Deleted int             `json:"deleted"`
	Skipped []SkippedCookie `json:"skipped,omitempty"`
	// Regenerated counts cookies that reappeared during verification and
	// were removed again.
	Regenerated int `json:"regenerated,omitempty"`
}

// DeleterOptions tunes a Deleter.
type DeleterOptions struct {
	// ExpireFallback overwrites a cookie with an already expired copy when
	// its removal is not confirmed.
	ExpireFallback bool
	// Verify re-queries every owner URL after SettleDelay and removes any
	// target that came back.
	Verify      bool
	SettleDelay time.Duration
}

// Deleter removes cookies from a CookieStore and records them in a
// BlockList for the regeneration guard. It does not apply any category
// policy; see FilterDeletable.
type Deleter struct {
	store   CookieStore
	blocked *BlockList
	log     logger.Logger
	opts    DeleterOptions
	now     func() time.Time
}

// NewDeleter returns a Deleter. blocked may be nil when no guard runs.
func NewDeleter(store CookieStore, blocked *BlockList, l logger.Logger, opts DeleterOptions) *Deleter {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if opts.Verify && opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Deleter{store: store, blocked: blocked, log: l, opts: opts, now: time.Now}
}

// Delete removes every target concurrently. Failures are reported in the
// result and never abort the batch.
func (d *Deleter) Delete(ctx context.Context, targets []Cookie) DeleteResult {
	var res DeleteResult
	if len(targets) == 0 {
		return res
	}
	errs := make([]error, len(targets))
	var g errgroup.Group
	for i := range targets {
		t := targets[i]
		g.Go(func() error {
			errs[i] = d.deleteOne(ctx, &t)
			return nil
		})
	}
	_ = g.Wait()

	deleted := make([]Cookie, 0, len(targets))
	for i, err := range errs {
		t := &targets[i]
		if err != nil {
			d.log.Warning("failed to delete cookie %s: %v", t.GuardKey(), err)
			res.Skipped = append(res.Skipped, SkippedCookie{Name: t.Name, Domain: t.Domain, Reason: err.Error()})
			continue
		}
		res.Deleted++
		deleted = append(deleted, *t)
	}
	if d.opts.Verify && len(deleted) > 0 {
		res.Regenerated = d.verify(ctx, deleted)
	}
	return res
}

func (d *Deleter) deleteOne(ctx context.Context, c *Cookie) error {
	// Block before removing so a re-set racing the removal is still caught.
	if d.blocked != nil {
		d.blocked.Add(c.GuardKey())
	}
	req := NewRemoveRequest(c)
	ok, err := d.store.Remove(ctx, req)
	if err == nil && ok {
		return nil
	}
	if err == nil {
		err = ErrDeletion
	} else {
		err = fmt.Errorf("%w: %v", ErrDeletion, err)
	}
	if !d.opts.ExpireFallback {
		return err
	}
	if serr := d.store.Set(ctx, d.expiredCopy(c, req)); serr != nil {
		return fmt.Errorf("%w; expire fallback: %v", err, serr)
	}
	return nil
}

func (d *Deleter) expiredCopy(c *Cookie, req RemoveRequest) SetRequest {
	s := SetRequest{
		URL:          req.URL,
		Name:         c.Name,
		Path:         c.Path,
		Secure:       c.Secure,
		HTTPOnly:     c.HTTPOnly,
		SameSite:     c.SameSite,
		Expiration:   d.now().Add(-24 * time.Hour).Unix(),
		StoreID:      req.StoreID,
		PartitionKey: c.PartitionKey,
	}
	if !c.HostOnly {
		s.Domain = c.Domain
	}
	return s
}

// verify waits for the settle delay, then removes deleted cookies that a
// site has already written back. It returns how many were removed again.
func (d *Deleter) verify(ctx context.Context, deleted []Cookie) int {
	t := time.NewTimer(d.opts.SettleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return 0
	case <-t.C:
	}

	want := make(map[GuardKey]struct{}, len(deleted))
	byURL := make(map[string]struct{})
	for i := range deleted {
		want[deleted[i].GuardKey()] = struct{}{}
		byURL[OwnerURL(&deleted[i])] = struct{}{}
	}
	var again []Cookie
	seen := make(map[Key]struct{})
	for u := range byURL {
		cookies, err := d.store.GetAll(ctx, u)
		if err != nil {
			d.log.Warning("verify: failed to fetch cookies for %s: %v", u, err)
			continue
		}
		for _, c := range cookies {
			c.Normalize()
			if _, ok := want[c.GuardKey()]; !ok {
				continue
			}
			if _, ok := seen[c.Key()]; ok {
				continue
			}
			seen[c.Key()] = struct{}{}
			again = append(again, c)
		}
	}
	n := 0
	for i := range again {
		ok, err := d.store.Remove(ctx, NewRemoveRequest(&again[i]))
		if err != nil || !ok {
			d.log.Warning("verify: cookie %s came back and could not be removed", again[i].GuardKey())
			continue
		}
		d.log.Info("verify: removed regenerated cookie %s", again[i].GuardKey())
		n++
	}
	return n
}

// DeletablePolicy reports whether the presentation layer may offer c for
// deletion. Essential and Unknown cookies are kept.
func DeletablePolicy(c *Cookie) bool {
	return c.Category != CategoryEssential && c.Category != CategoryUnknown
}

// FilterDeletable returns the cookies allowed by DeletablePolicy.
func FilterDeletable(cookies []Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for i := range cookies {
		if DeletablePolicy(&cookies[i]) {
			out = append(out, cookies[i])
		}
	}
	return out
}

package cookielib

import (
	"context"
	"fmt"

	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// Regeneration describes one corrective removal made by the guard.
type Regeneration struct {
	Cookie  Cookie        `json:"cookie"`
	Request RemoveRequest `json:"request"`
	Removed bool          `json:"removed"`
	Err     error         `json:"-"`
}

// Guard watches the cookie store and removes blocked cookies as soon as a
// site writes them back.
type Guard struct {
	store   CookieStore
	blocked *BlockList
	log     logger.Logger

	// OnRegenerated, if set, is called after every corrective removal.
	OnRegenerated func(Regeneration)
}

// NewGuard returns a Guard enforcing blocked against store.
func NewGuard(store CookieStore, blocked *BlockList, l logger.Logger) *Guard {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Guard{store: store, blocked: blocked, log: l}
}

// Check decides whether ev is a regeneration of a blocked cookie and
// returns the removal that undoes it.
func (g *Guard) Check(ev ChangeEvent) (RemoveRequest, bool) {
	if ev.Removed() {
		return RemoveRequest{}, false
	}
	c := ev.Cookie
	c.Normalize()
	if !g.blocked.Contains(c.GuardKey()) {
		return RemoveRequest{}, false
	}
	return NewRemoveRequest(&c), true
}

// Handle applies Check to ev and issues at most one corrective removal.
// It reports whether a removal was attempted.
func (g *Guard) Handle(ctx context.Context, ev ChangeEvent) bool {
	req, ok := g.Check(ev)
	if !ok {
		return false
	}
	removed, err := g.store.Remove(ctx, req)
	if err == nil && !removed {
		err = ErrDeletion
	}
	if err != nil {
		g.log.Warning("guard: failed to remove regenerated cookie %s: %v", ev.Cookie.GuardKey(), err)
	} else {
		g.log.Info("guard: removed regenerated cookie %s", ev.Cookie.GuardKey())
	}
	if g.OnRegenerated != nil {
		g.OnRegenerated(Regeneration{Cookie: ev.Cookie, Request: req, Removed: err == nil, Err: err})
	}
	return true
}

// Run subscribes to the store once and handles change events until ctx is
// done or the subscription closes.
func (g *Guard) Run(ctx context.Context) error {
	events, err := g.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("guard: watch cookie store: %w", err)
	}
	g.log.Debug("guard: watching cookie store")
	return g.Serve(ctx, events)
}

// Serve handles events from an existing subscription.
func (g *Guard) Serve(ctx context.Context, events <-chan ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			g.Handle(ctx, ev)
		}
	}
}

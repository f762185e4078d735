package api

import (
	"context"
	"slices"

	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

// PlanDelete classifies the requested cookies and narrows them to the ones
// that may be deleted: the listed categories only, and unless Force the
// deletable policy. It returns the targets and how many were dropped.
func (s *Api) PlanDelete(p *common.DeleteParams) ([]cookielib.Cookie, int) {
	targets := s.analyzer.Analyze(p.Cookies, "")
	if len(p.Categories) > 0 {
		targets = slices.DeleteFunc(targets, func(c cookielib.Cookie) bool {
			return !slices.Contains(p.Categories, c.Category)
		})
	}
	if !p.Force {
		targets = cookielib.FilterDeletable(targets)
	}
	return targets, len(p.Cookies) - len(targets)
}

// Delete removes the planned targets from store and blocks them from
// regenerating for the guard window.
func (s *Api) Delete(ctx context.Context, store cookielib.CookieStore, p *common.DeleteParams) *common.DeleteResponse {
	targets, filtered := s.PlanDelete(p)
	d := cookielib.NewDeleter(store, s.blocked, s.log, cookielib.DeleterOptions{
		ExpireFallback: true,
		Verify:         p.Verify,
		SettleDelay:    s.opts.SettleDelay,
	})
	res := d.Delete(ctx, targets)
	s.log.Info("deleted %d cookies (%d skipped, %d filtered, %d regenerated)", res.Deleted, len(res.Skipped), filtered, res.Regenerated)
	return &common.DeleteResponse{DeleteResult: res, Filtered: filtered}
}

// RegisterDeleted blocks cookies the caller deletes itself, such as the
// browser extension, so the guard catches their regeneration.
func (s *Api) RegisterDeleted(cookies []cookielib.Cookie) []cookielib.RemoveRequest {
	reqs := make([]cookielib.RemoveRequest, 0, len(cookies))
	for i := range cookies {
		c := &cookies[i]
		c.Normalize()
		s.blocked.Add(c.GuardKey())
		reqs = append(reqs, cookielib.NewRemoveRequest(c))
	}
	return reqs
}

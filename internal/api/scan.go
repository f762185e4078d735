package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/storage"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

// Scan collects, analyzes and scores every cookie visible to the page.
// progress, when non-nil, is called once per queried URL.
func (s *Api) Scan(ctx context.Context, page cookielib.PageContext, store cookielib.CookieStore, progress func(common.ScanProgress)) (*common.ScanResponse, error) {
	opts := cookielib.CollectorOptions{
		MaxConcurrency: s.opts.MaxConcurrency,
		Analyzer:       s.analyzer,
	}
	if progress != nil {
		opts.OnFetched = func(u string, n int, err error) {
			p := common.ScanProgress{URL: u, Cookies: n}
			if err != nil {
				p.Error = err.Error()
			}
			progress(p)
		}
	}
	res, err := cookielib.NewCollector(page, store, s.log, opts).Collect(ctx)
	if err != nil {
		return nil, err
	}

	resp := s.report(ctx, res.PrimaryURL, res.Cookies)
	resp.Status = res.Status.String()
	resp.URLs = res.URLs
	for _, fe := range res.FetchErrors {
		resp.FetchErrors = append(resp.FetchErrors, fe.Error())
	}
	s.log.Info("scan %s: %d cookies across %d urls, score %d", res.PrimaryURL, len(resp.Cookies), len(res.URLs), resp.Score.Score)
	return resp, nil
}

// Analyze runs the pipeline over cookies gathered by someone else, such as
// the browser extension, for the page at activeURL.
func (s *Api) Analyze(ctx context.Context, activeURL string, raw []cookielib.Cookie) *common.ScanResponse {
	for i := range raw {
		raw[i].Normalize()
	}
	cookies := s.analyzer.Analyze(cookielib.Dedupe(raw), activeURL)
	resp := s.report(ctx, activeURL, cookies)
	resp.Status = cookielib.StatusOK.String()
	if len(cookies) == 0 {
		resp.Status = cookielib.StatusEmpty.String()
	}
	if activeURL != "" {
		resp.URLs = []string{activeURL}
	}
	return resp
}

// report scores cookies and saves the snapshot. A failed save is logged,
// never returned: the analysis itself succeeded.
func (s *Api) report(ctx context.Context, activeURL string, cookies []cookielib.Cookie) *common.ScanResponse {
	if cookies == nil {
		cookies = []cookielib.Cookie{}
	}
	resp := &common.ScanResponse{
		PrimaryURL: activeURL,
		Cookies:    cookies,
		Score:      cookielib.ComputePrivacyScore(cookies),
		Categories: cookielib.CountByCategory(cookies),
	}
	if s.snapshots == nil {
		resp.ScanID = uuid.NewString()
		return resp
	}
	snap, err := s.snapshots.Save(ctx, activeURL, cookies)
	if err != nil {
		s.log.Warning("failed to save scan snapshot: %v", err)
		resp.ScanID = uuid.NewString()
		return resp
	}
	resp.ScanID = snap.ID
	return resp
}

// LastSnapshot returns the most recent saved scan, or nil.
func (s *Api) LastSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	return s.snapshots.Last(ctx)
}

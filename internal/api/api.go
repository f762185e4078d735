// Package api is the single entry point the cookiewatch surfaces (native
// messaging host, RPC daemon and CLI) use to run the cookie pipeline.
package api

import (
	"time"

	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/internal/storage"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// Options tunes the pipeline. Zero values take the package defaults.
type Options struct {
	MaxConcurrency int
	GuardWindow    time.Duration
	SettleDelay    time.Duration

	Version   string
	Commit    string
	BuildType string
}

type Api struct {
	log        logger.Logger
	opts       Options
	analyzer   *cookielib.Analyzer
	blocked    *cookielib.BlockList
	streak     *cookielib.StreakTracker
	onboarding *cookielib.Onboarding
	snapshots  *storage.SnapshotStore
}

// NewApi wires the pipeline around dataset and kv. snapshots may be nil, in
// which case scans are not persisted.
func NewApi(l logger.Logger, dataset cookielib.DatasetSource, kv cookielib.KVStore, snapshots *storage.SnapshotStore, opts Options) *Api {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = cookielib.DefaultMaxConcurrency
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = common.DefaultSettleDelay
	}
	return &Api{
		log:        l,
		opts:       opts,
		analyzer:   cookielib.NewAnalyzer(cookielib.NewClassifier(dataset)),
		blocked:    cookielib.NewBlockList(opts.GuardWindow),
		streak:     cookielib.NewStreakTracker(kv, l),
		onboarding: cookielib.NewOnboarding(kv),
		snapshots:  snapshots,
	}
}

// WithClock replaces the wall clock of every time-dependent component.
func (s *Api) WithClock(now func() time.Time) *Api {
	s.analyzer.WithClock(now)
	s.blocked.WithClock(now)
	s.streak.WithClock(now)
	return s
}

// BlockList is the list shared by every deletion and guard of this Api.
func (s *Api) BlockList() *cookielib.BlockList {
	return s.blocked
}

// Guard returns a regeneration guard over store sharing the Api block list.
func (s *Api) Guard(store cookielib.CookieStore) *cookielib.Guard {
	return cookielib.NewGuard(store, s.blocked, s.log)
}

func (s *Api) Version() *common.VersionResponse {
	return &common.VersionResponse{
		Version:   s.opts.Version,
		Commit:    s.opts.Commit,
		BuildType: s.opts.BuildType,
	}
}

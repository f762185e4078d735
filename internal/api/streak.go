package api

import (
	"context"

	"github.com/laurynn-wl/cookie-project/common"
	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

// TickStreak records today's visit and reports the streak with its
// milestones.
func (s *Api) TickStreak(ctx context.Context) (*common.StreakResponse, error) {
	count, err := s.streak.Tick(ctx)
	if err != nil {
		return nil, err
	}
	return &common.StreakResponse{Count: count, Milestones: cookielib.Milestones(count)}, nil
}

// FirstRun reports whether onboarding has not been shown yet, marking it shown.
func (s *Api) FirstRun(ctx context.Context) (bool, error) {
	return s.onboarding.FirstRun(ctx)
}

func (s *Api) Tip() cookielib.Tip {
	return cookielib.RandomTip()
}

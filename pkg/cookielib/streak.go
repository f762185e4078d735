package cookielib

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

const (
	// StreakKey is the storage key of the streak state.
	StreakKey = "streak_data"
	// OnboardingKey is the storage key of the onboarding flag.
	OnboardingKey = "has_seen_onboarding"

	msPerDay = 86_400_000
)

// StreakState is the persisted streak. LastVisitDay is a whole-number day
// index since the Unix epoch, nil before the first visit.
type StreakState struct {
	Count        int    `json:"count"`
	LastVisitDay *int64 `json:"last_visit"`
}

// DayIndex returns the epoch-day of t.
func DayIndex(t time.Time) int64 {
	return t.UnixMilli() / msPerDay
}

// Next applies one visit on day today and reports whether the state changed.
func (s StreakState) Next(today int64) (StreakState, bool) {
	if s.LastVisitDay != nil && *s.LastVisitDay == today {
		return s, false
	}
	next := StreakState{Count: 1, LastVisitDay: &today}
	if s.LastVisitDay != nil && today-*s.LastVisitDay == 1 {
		next.Count = s.Count + 1
	}
	return next, true
}

// StreakTracker counts consecutive days the dashboard was opened.
type StreakTracker struct {
	kv  KVStore
	log logger.Logger
	now func() time.Time
}

// NewStreakTracker returns a tracker persisting to kv.
func NewStreakTracker(kv KVStore, l logger.Logger) *StreakTracker {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &StreakTracker{kv: kv, log: l, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (t *StreakTracker) WithClock(now func() time.Time) *StreakTracker {
	t.now = now
	return t
}

// State reads the persisted state. A missing or unreadable value is the
// initial state.
func (t *StreakTracker) State(ctx context.Context) (StreakState, error) {
	raw, ok, err := t.kv.Get(ctx, StreakKey)
	if err != nil {
		return StreakState{}, fmt.Errorf("read streak: %w", err)
	}
	var st StreakState
	if !ok || len(raw) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		t.log.Warning("discarding unreadable streak state: %v", err)
		return StreakState{}, nil
	}
	return st, nil
}

// Tick records today's visit and returns the current streak. The state is
// written at most once per calendar day.
func (t *StreakTracker) Tick(ctx context.Context) (int, error) {
	st, err := t.State(ctx)
	if err != nil {
		return 0, err
	}
	next, changed := st.Next(DayIndex(t.now()))
	if !changed {
		return st.Count, nil
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return 0, err
	}
	if err := t.kv.Set(ctx, StreakKey, raw); err != nil {
		return 0, fmt.Errorf("save streak: %w", err)
	}
	return next.Count, nil
}

// Milestone is a streak trophy.
type Milestone struct {
	Days     int    `json:"days"`
	Label    string `json:"label"`
	Unlocked bool   `json:"unlocked"`
	// Progress is the percentage towards the milestone, capped at 100.
	Progress int `json:"progress"`
}

var milestoneDays = []int{3, 10, 50}

// Milestones reports the trophy state for a streak of count days.
func Milestones(count int) []Milestone {
	out := make([]Milestone, 0, len(milestoneDays))
	for _, days := range milestoneDays {
		out = append(out, Milestone{
			Days:     days,
			Label:    fmt.Sprintf("%d Day Streak", days),
			Unlocked: count >= days,
			Progress: min(count*100/days, 100),
		})
	}
	return out
}

// Onboarding tracks the one-time onboarding flag.
type Onboarding struct {
	kv KVStore
}

// NewOnboarding returns an Onboarding persisting to kv.
func NewOnboarding(kv KVStore) *Onboarding {
	return &Onboarding{kv: kv}
}

// FirstRun reports true exactly once, persisting the flag on that call.
func (o *Onboarding) FirstRun(ctx context.Context) (bool, error) {
	raw, ok, err := o.kv.Get(ctx, OnboardingKey)
	if err != nil {
		return false, fmt.Errorf("read onboarding flag: %w", err)
	}
	if ok && string(raw) == "true" {
		return false, nil
	}
	if err := o.kv.Set(ctx, OnboardingKey, []byte("true")); err != nil {
		return false, fmt.Errorf("save onboarding flag: %w", err)
	}
	return true, nil
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/credman"
)

// Storage keys of the last scan.
const (
	SnapshotKey  = "cookies_from_site"
	ActiveURLKey = "active_url"
)

// Snapshot is the result of the most recent scan, kept so the dashboard can
// reopen without rescanning.
type Snapshot struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	ActiveURL string                 `json:"active_url"`
	Cookies   []cookielib.Cookie     `json:"cookies"`
	Score     cookielib.PrivacyScore `json:"score"`
}

// SnapshotStore saves snapshots to a KVStore. With a vault the snapshot is
// sealed; without one cookie values are dropped before saving.
type SnapshotStore struct {
	kv    cookielib.KVStore
	vault *credman.Vault
	now   func() time.Time
}

// NewSnapshotStore returns a store writing to kv. vault may be nil.
func NewSnapshotStore(kv cookielib.KVStore, vault *credman.Vault) *SnapshotStore {
	return &SnapshotStore{kv: kv, vault: vault, now: time.Now}
}

// Save records a new snapshot and returns it with its generated ID.
func (s *SnapshotStore) Save(ctx context.Context, activeURL string, cookies []cookielib.Cookie) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		ActiveURL: activeURL,
		Cookies:   cookies,
		Score:     cookielib.ComputePrivacyScore(cookies),
	}
	stored := *snap
	if s.vault == nil {
		stored.Cookies = make([]cookielib.Cookie, len(cookies))
		for i, c := range cookies {
			c.Value = ""
			stored.Cookies[i] = c
		}
	}
	data, err := sonic.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if s.vault != nil {
		if data, err = s.vault.Seal(data); err != nil {
			return nil, fmt.Errorf("seal snapshot: %w", err)
		}
	}
	if err := s.kv.Set(ctx, SnapshotKey, data); err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, ActiveURLKey, []byte(activeURL)); err != nil {
		return nil, err
	}
	return snap, nil
}

// Last returns the most recent snapshot, or nil when none was saved.
func (s *SnapshotStore) Last(ctx context.Context) (*Snapshot, error) {
	data, ok, err := s.kv.Get(ctx, SnapshotKey)
	if err != nil || !ok {
		return nil, err
	}
	if s.vault != nil {
		if data, err = s.vault.Open(data); err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
	}
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// ActiveURL returns the page URL of the last snapshot.
func (s *SnapshotStore) ActiveURL(ctx context.Context) (string, error) {
	data, _, err := s.kv.Get(ctx, ActiveURLKey)
	return string(data), err
}

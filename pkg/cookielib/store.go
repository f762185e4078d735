package cookielib

import (
	"context"
	"encoding/json"
)

// RemoveRequest addresses a single cookie in the browser cookie store.
type RemoveRequest struct {
	URL          string          `json:"url"`
	Name         string          `json:"name"`
	StoreID      string          `json:"storeId"`
	PartitionKey json.RawMessage `json:"partitionKey,omitempty"`
}

// NewRemoveRequest builds the removal details for c, reconstructing its owner URL
// and defaulting the store to "0".
func NewRemoveRequest(c *Cookie) RemoveRequest {
	storeID := c.StoreID
	if storeID == "" {
		storeID = DefaultStoreID
	}
	return RemoveRequest{
		URL:          OwnerURL(c),
		Name:         c.Name,
		StoreID:      storeID,
		PartitionKey: c.PartitionKey,
	}
}

// SetRequest writes a cookie with an explicit expiry.
type SetRequest struct {
	URL          string          `json:"url"`
	Name         string          `json:"name"`
	Value        string          `json:"value"`
	Domain       string          `json:"domain,omitempty"`
	Path         string          `json:"path,omitempty"`
	Secure       bool            `json:"secure"`
	HTTPOnly     bool            `json:"httpOnly"`
	SameSite     SameSite        `json:"sameSite,omitempty"`
	Expiration   int64           `json:"expirationDate"`
	StoreID      string          `json:"storeId"`
	PartitionKey json.RawMessage `json:"partitionKey,omitempty"`
}

// ChangeCause tells additions and modifications apart from removals.
type ChangeCause string

const (
	ChangeAdded    ChangeCause = "added"
	ChangeModified ChangeCause = "modified"
	ChangeRemoved  ChangeCause = "removed"
)

// ChangeEvent is a single cookie store change notification.
type ChangeEvent struct {
	Cookie Cookie      `json:"cookie"`
	Cause  ChangeCause `json:"cause"`
}

// Removed reports whether the event describes a removal.
func (e ChangeEvent) Removed() bool {
	return e.Cause == ChangeRemoved
}

// CookieStore is the browser-owned cookie store. Every call is individually
// atomic at the store boundary; cookiewatch never locks it.
type CookieStore interface {
	// GetAll returns all cookies visible to rawURL.
	GetAll(ctx context.Context, rawURL string) ([]Cookie, error)
	// Remove deletes a cookie and reports whether the store confirmed it.
	Remove(ctx context.Context, req RemoveRequest) (bool, error)
	// Set writes a cookie with an explicit expiry.
	Set(ctx context.Context, req SetRequest) error
	// Watch subscribes to change notifications until ctx is done.
	Watch(ctx context.Context) (<-chan ChangeEvent, error)
}

// PageContext describes the page being inspected.
type PageContext interface {
	// ActiveURL returns the page's primary URL.
	ActiveURL(ctx context.Context) (string, error)
	// ResourceURLs returns every network resource URL the page has loaded.
	ResourceURLs(ctx context.Context) ([]string, error)
	// FrameURLs returns the URL of the main frame and every nested frame.
	FrameURLs(ctx context.Context) ([]string, error)
}

// KVStore is durable, last-write-wins key-value storage.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

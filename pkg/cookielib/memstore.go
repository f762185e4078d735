package cookielib

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory CookieStore. It backs offline analysis and
// tests; every Remove and Set call is recorded.
type MemoryStore struct {
	mu       sync.Mutex
	cookies  []Cookie
	watchers map[int]chan ChangeEvent
	nextID   int

	removes []RemoveRequest
	sets    []SetRequest

	// GetAllErrors makes GetAll fail for the listed URLs.
	GetAllErrors map[string]error
	// RejectRemove makes Remove report false for the listed cookie names.
	RejectRemove map[string]bool

	now func() time.Time
}

// NewMemoryStore returns a store holding cookies.
func NewMemoryStore(cookies ...Cookie) *MemoryStore {
	m := &MemoryStore{watchers: make(map[int]chan ChangeEvent), now: time.Now}
	for _, c := range cookies {
		c.Normalize()
		m.cookies = append(m.cookies, c)
	}
	return m
}

// GetAll implements CookieStore.
func (m *MemoryStore) GetAll(_ context.Context, rawURL string) ([]Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.GetAllErrors[rawURL]; ok {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var out []Cookie
	for i := range m.cookies {
		if m.cookies[i].VisibleTo(u) {
			out = append(out, m.cookies[i])
		}
	}
	return out, nil
}

// Remove implements CookieStore.
func (m *MemoryStore) Remove(_ context.Context, req RemoveRequest) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes = append(m.removes, req)
	if m.RejectRemove[req.Name] {
		return false, nil
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return false, err
	}
	found := false
	m.cookies = slices.DeleteFunc(m.cookies, func(c Cookie) bool {
		if !m.addresses(&c, u, req.Name, req.StoreID) {
			return false
		}
		found = true
		m.emit(ChangeEvent{Cookie: c, Cause: ChangeRemoved})
		return true
	})
	return found, nil
}

// addresses matches a removal the way browsers do: same name and store,
// the URL's host equal to the cookie domain and its path equal to the
// cookie path.
func (m *MemoryStore) addresses(c *Cookie, u *url.URL, name, storeID string) bool {
	if c.Name != name || (storeID != "" && c.StoreID != storeID) {
		return false
	}
	if !strings.EqualFold(u.Hostname(), CanonicalDomain(c.Domain)) {
		return false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return p == c.Path
}

// Set implements CookieStore. A past expiry removes the cookie.
func (m *MemoryStore) Set(_ context.Context, req SetRequest) error {
	u, err := url.Parse(req.URL)
	if err != nil {
		return err
	}
	c := Cookie{
		Name:         req.Name,
		Value:        req.Value,
		Domain:       req.Domain,
		Path:         req.Path,
		Secure:       req.Secure,
		HTTPOnly:     req.HTTPOnly,
		SameSite:     req.SameSite,
		StoreID:      req.StoreID,
		PartitionKey: req.PartitionKey,
	}
	if c.Domain == "" {
		c.Domain = u.Hostname()
	}
	if c.Path == "" {
		c.Path = u.Path
	}
	if req.Expiration != 0 {
		exp := req.Expiration
		c.Expiration = &exp
	}
	c.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, req)
	k := c.Key()
	existed := false
	m.cookies = slices.DeleteFunc(m.cookies, func(old Cookie) bool {
		if old.Key() == k {
			existed = true
			return true
		}
		return false
	})
	if c.Expiration != nil && *c.Expiration <= m.now().Unix() {
		if existed {
			m.emit(ChangeEvent{Cookie: c, Cause: ChangeRemoved})
		}
		return nil
	}
	m.cookies = append(m.cookies, c)
	cause := ChangeAdded
	if existed {
		cause = ChangeModified
	}
	m.emit(ChangeEvent{Cookie: c, Cause: cause})
	return nil
}

// Watch implements CookieStore. The channel is closed when ctx is done.
func (m *MemoryStore) Watch(ctx context.Context) (<-chan ChangeEvent, error) {
	ch := make(chan ChangeEvent, 64)
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = ch
	m.mu.Unlock()
	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, id)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// emit must be called with m.mu held. Slow watchers lose events.
func (m *MemoryStore) emit(ev ChangeEvent) {
	for _, ch := range m.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Cookies returns a snapshot of the stored cookies.
func (m *MemoryStore) Cookies() []Cookie {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.cookies)
}

// Removes returns every Remove call made so far.
func (m *MemoryStore) Removes() []RemoveRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.removes)
}

// Sets returns every Set call made so far.
func (m *MemoryStore) Sets() []SetRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sets)
}

// StaticPage is a PageContext with fixed answers.
type StaticPage struct {
	URL         string
	Resources   []string
	Frames      []string
	ResourceErr error
	FrameErr    error
}

func (p *StaticPage) ActiveURL(context.Context) (string, error) {
	return p.URL, nil
}

func (p *StaticPage) ResourceURLs(context.Context) ([]string, error) {
	return p.Resources, p.ResourceErr
}

func (p *StaticPage) FrameURLs(context.Context) ([]string, error) {
	return p.Frames, p.FrameErr
}

// MemoryKV is an in-memory KVStore that counts writes.
type MemoryKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (kv *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.data[key]
	return slices.Clone(v), ok, nil
}

func (kv *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = slices.Clone(value)
	kv.writes++
	return nil
}

// Writes returns the number of Set calls.
func (kv *MemoryKV) Writes() int {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.writes
}

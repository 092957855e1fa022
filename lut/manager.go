package lut

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/camstudio"
)

// maxTableBytes bounds a fetched table file. A 64-point cube is ~9 MB of
// text; anything past this is not a plausible LUT.
const maxTableBytes = 32 << 20

// Manager fetches and caches LUT tables by URL.
//
// Concurrent requests for the same URL collapse into a single fetch, and
// repeat requests return the same cached Table. There is no automatic
// eviction; callers manage the cache via Clear.
//
// Manager is safe for concurrent use.
type Manager struct {
	// Client is the HTTP client used for fetches.
	// If nil, http.DefaultClient is used.
	Client *http.Client

	mu    sync.RWMutex
	cache map[string]Table
	group singleflight.Group
}

// NewManager creates an empty Manager using http.DefaultClient.
func NewManager() *Manager {
	return &Manager{cache: make(map[string]Table)}
}

// Load fetches, parses, and caches the table at url. The returned Table is
// the same instance for every caller requesting the same URL.
//
// Load is cancellation-safe: a caller whose ctx is cancelled returns early
// with ctx.Err(), while the shared fetch runs on a detached context so the
// remaining callers for the same URL still get the table. Parse failures
// return a *ParseError and cache nothing, so a corrected upstream file can
// be retried.
func (m *Manager) Load(ctx context.Context, url, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	m.mu.RLock()
	if t, ok := m.cache[url]; ok {
		m.mu.RUnlock()
		return t, nil
	}
	m.mu.RUnlock()

	// The flight outlives any single caller. Values and timeouts carried
	// by ctx stay attached; only cancellation is detached.
	fetchCtx := context.WithoutCancel(ctx)

	ch := m.group.DoChan(url, func() (any, error) {
		// Re-check: another flight may have populated the cache between
		// the read-lock and DoChan.
		m.mu.RLock()
		t, ok := m.cache[url]
		m.mu.RUnlock()
		if ok {
			return t, nil
		}

		src, err := m.fetch(fetchCtx, url)
		if err != nil {
			return Table{}, err
		}

		t, err = Parse(src, name)
		if err != nil {
			camstudio.Logger().Warn("lut: parse failed, caller should fall back to identity",
				"url", url, "err", err)
			return Table{}, err
		}

		m.mu.Lock()
		if m.cache == nil {
			m.cache = make(map[string]Table)
		}
		m.cache[url] = t
		m.mu.Unlock()

		camstudio.Logger().Debug("lut: loaded", "url", url, "name", name, "size", t.Size)
		return t, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Table{}, res.Err
		}
		return res.Val.(Table), nil
	case <-ctx.Done():
		return Table{}, ctx.Err()
	}
}

func (m *Manager) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("lut: fetch %s: %w", url, err)
	}

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lut: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lut: fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTableBytes))
	if err != nil {
		return "", fmt.Errorf("lut: fetch %s: %w", url, err)
	}
	return string(body), nil
}

// Clear discards every cached table.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.cache = make(map[string]Table)
	m.mu.Unlock()
}

// Len returns the number of cached tables.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

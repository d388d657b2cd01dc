package feed

import (
	"context"
	"fmt"
	"sync"

	"memefeed/internal/models"
)

// Merger accumulates author-enriched memes across listing pages. It owns the
// accumulated sequence and the in-flight flag for one feed view; pages are
// fetched strictly in increasing order and never twice.
type Merger struct {
	api     API
	tokens  TokenSource
	authors *AuthorCache

	mu       sync.Mutex
	memes    []models.MemeWithAuthor
	nextPage int  // page to fetch next; 0 once exhausted
	fetching bool // one fetch at a time; dedupes rapid sentinel signals
}

// NewMerger creates a merger starting at page 1.
func NewMerger(api API, tokens TokenSource, authors *AuthorCache) *Merger {
	if authors == nil {
		authors = NewAuthorCache()
	}
	return &Merger{
		api:      api,
		tokens:   tokens,
		authors:  authors,
		nextPage: 1,
	}
}

// Memes returns a copy of the accumulated feed in page order.
func (m *Merger) Memes() []models.MemeWithAuthor {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MemeWithAuthor, len(m.memes))
	copy(out, m.memes)
	return out
}

// HasMore reports whether another page remains. It is true before the first
// fetch and false once the last page has been committed.
func (m *Merger) HasMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextPage != 0
}

// InFlight reports whether a fetch is currently running.
func (m *Merger) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetching
}

// FetchNext fetches and commits the next page. It is a guarded no-op,
// issuing no request, when a fetch is already in flight or the listing is
// exhausted; it returns whether a page was committed. The listing call and
// every author lookup must succeed or the whole page fails with nothing
// committed.
func (m *Merger) FetchNext(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.fetching || m.nextPage == 0 {
		m.mu.Unlock()
		return false, nil
	}
	page := m.nextPage
	m.fetching = true
	m.mu.Unlock()

	enriched, next, err := m.fetchPage(ctx, page)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetching = false
	if err != nil {
		return false, err
	}
	if ctx.Err() != nil {
		// Canceled between completion and commit; drop the results.
		return false, ctx.Err()
	}
	m.memes = append(m.memes, enriched...)
	m.nextPage = next
	return true, nil
}

// fetchPage loads one listing page and attaches authors, preserving the
// server-provided order.
func (m *Merger) fetchPage(ctx context.Context, page int) ([]models.MemeWithAuthor, int, error) {
	token, err := m.tokens.Token()
	if err != nil {
		return nil, 0, err
	}

	listing, err := m.api.ListMemes(ctx, token, page)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching meme page %d: %w", page, err)
	}

	ids := make([]string, len(listing.Results))
	for i, meme := range listing.Results {
		ids[i] = meme.AuthorID
	}
	users, err := m.authors.Resolve(ctx, m.api, token, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("enriching meme page %d: %w", page, err)
	}

	enriched := make([]models.MemeWithAuthor, len(listing.Results))
	for i, meme := range listing.Results {
		enriched[i] = models.MemeWithAuthor{Meme: meme, Author: users[meme.AuthorID]}
	}
	return enriched, listing.NextPage(page), nil
}

package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"memefeed/internal/models"
)

// Thread accumulates one meme's author-enriched comments, page by page, with
// the same ordering and in-flight guarantees as the feed merger. Threads are
// loaded lazily, when the comment panel is expanded.
type Thread struct {
	api     API
	tokens  TokenSource
	authors *AuthorCache
	memeID  string

	mu       sync.Mutex
	comments []models.CommentWithAuthor
	nextPage int
	fetching bool
}

// NewThread creates a thread loader for one meme. Passing the merger's
// AuthorCache shares author lookups between the feed and its threads.
func NewThread(api API, tokens TokenSource, authors *AuthorCache, memeID string) *Thread {
	if authors == nil {
		authors = NewAuthorCache()
	}
	return &Thread{
		api:      api,
		tokens:   tokens,
		authors:  authors,
		memeID:   memeID,
		nextPage: 1,
	}
}

// MemeID returns the id of the meme this thread belongs to.
func (t *Thread) MemeID() string { return t.memeID }

// Comments returns a copy of the accumulated thread in page order.
func (t *Thread) Comments() []models.CommentWithAuthor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.CommentWithAuthor, len(t.comments))
	copy(out, t.comments)
	return out
}

// HasMore reports whether another comment page remains.
func (t *Thread) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextPage != 0
}

// FetchNext fetches and commits the next comment page; a guarded no-op while
// a fetch is in flight or after exhaustion. Returns whether a page was
// committed.
func (t *Thread) FetchNext(ctx context.Context) (bool, error) {
	t.mu.Lock()
	if t.fetching || t.nextPage == 0 {
		t.mu.Unlock()
		return false, nil
	}
	page := t.nextPage
	t.fetching = true
	t.mu.Unlock()

	enriched, next, err := t.fetchPage(ctx, page)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.fetching = false
	if err != nil {
		return false, err
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	t.comments = append(t.comments, enriched...)
	t.nextPage = next
	return true, nil
}

// FetchAll drains every remaining comment page in order.
func (t *Thread) FetchAll(ctx context.Context) error {
	for t.HasMore() {
		if _, err := t.FetchNext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Submit posts a new comment. Empty or whitespace-only content is rejected
// locally before any network call. On success the created comment is
// enriched and appended to the thread; on failure nothing changes, so the
// caller can keep the user's input for retry.
func (t *Thread) Submit(ctx context.Context, content string) (models.CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.CommentWithAuthor{}, models.NewValidationError("comment content is required")
	}

	token, err := t.tokens.Token()
	if err != nil {
		return models.CommentWithAuthor{}, err
	}

	created, err := t.api.CreateMemeComment(ctx, token, t.memeID, content)
	if err != nil {
		return models.CommentWithAuthor{}, fmt.Errorf("submitting comment on meme %s: %w", t.memeID, err)
	}

	users, err := t.authors.Resolve(ctx, t.api, token, []string{created.AuthorID})
	if err != nil {
		return models.CommentWithAuthor{}, err
	}
	enriched := models.CommentWithAuthor{Comment: created, Author: users[created.AuthorID]}

	t.mu.Lock()
	t.comments = append(t.comments, enriched)
	t.mu.Unlock()
	return enriched, nil
}

// fetchPage loads one comment page and attaches authors in original order.
func (t *Thread) fetchPage(ctx context.Context, page int) ([]models.CommentWithAuthor, int, error) {
	token, err := t.tokens.Token()
	if err != nil {
		return nil, 0, err
	}

	listing, err := t.api.ListMemeComments(ctx, token, t.memeID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching comment page %d of meme %s: %w", page, t.memeID, err)
	}

	ids := make([]string, len(listing.Results))
	for i, comment := range listing.Results {
		ids[i] = comment.AuthorID
	}
	users, err := t.authors.Resolve(ctx, t.api, token, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("enriching comment page %d of meme %s: %w", page, t.memeID, err)
	}

	enriched := make([]models.CommentWithAuthor, len(listing.Results))
	for i, comment := range listing.Results {
		enriched[i] = models.CommentWithAuthor{Comment: comment, Author: users[comment.AuthorID]}
	}
	return enriched, listing.NextPage(page), nil
}

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"memefeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiStub is a stub for the API interface.
type apiStub struct {
	listMemesFn     func(ctx context.Context, token string, page int) (models.Page[models.Meme], error)
	listCommentsFn  func(ctx context.Context, token, memeID string, page int) (models.Page[models.Comment], error)
	createCommentFn func(ctx context.Context, token, memeID, content string) (models.Comment, error)
	getUserFn       func(ctx context.Context, token, id string) (models.User, error)
}

func (s *apiStub) ListMemes(ctx context.Context, token string, page int) (models.Page[models.Meme], error) {
	return s.listMemesFn(ctx, token, page)
}
func (s *apiStub) ListMemeComments(ctx context.Context, token, memeID string, page int) (models.Page[models.Comment], error) {
	return s.listCommentsFn(ctx, token, memeID, page)
}
func (s *apiStub) CreateMemeComment(ctx context.Context, token, memeID, content string) (models.Comment, error) {
	return s.createCommentFn(ctx, token, memeID, content)
}
func (s *apiStub) GetUserByID(ctx context.Context, token, id string) (models.User, error) {
	return s.getUserFn(ctx, token, id)
}

// staticTokens always hands out the same token.
type staticTokens struct{ token string }

func (s staticTokens) Token() (string, error) { return s.token, nil }

// signedOutTokens simulates a store after sign-out.
type signedOutTokens struct{}

func (signedOutTokens) Token() (string, error) {
	return "", models.NewUnauthorizedError("not authenticated")
}

// pagedMemes builds a listing stub serving total memes in pages of pageSize,
// one author per meme.
func pagedMemes(total, pageSize int) func(context.Context, string, int) (models.Page[models.Meme], error) {
	return func(_ context.Context, _ string, page int) (models.Page[models.Meme], error) {
		out := models.Page[models.Meme]{Total: total, PageSize: pageSize}
		start := (page - 1) * pageSize
		for i := start; i < start+pageSize && i < total; i++ {
			out.Results = append(out.Results, models.Meme{
				ID:       fmt.Sprintf("meme-%d", i),
				AuthorID: fmt.Sprintf("author-%d", i),
			})
		}
		return out, nil
	}
}

func namedUser(_ context.Context, _ string, id string) (models.User, error) {
	return models.User{ID: id, Username: "name-" + id}, nil
}

func TestMergerPageCursor(t *testing.T) {
	t.Parallel()

	api := &apiStub{listMemesFn: pagedMemes(25, 10), getUserFn: namedUser}
	m := NewMerger(api, staticTokens{"tok"}, nil)
	ctx := context.Background()

	assert.True(t, m.HasMore())

	for page := 1; page <= 3; page++ {
		fetched, err := m.FetchNext(ctx)
		require.NoError(t, err)
		assert.True(t, fetched, "page %d", page)
		if page < 3 {
			assert.True(t, m.HasMore(), "after page %d", page)
		}
	}

	assert.False(t, m.HasMore())
	memes := m.Memes()
	require.Len(t, memes, 25)
	// Server order preserved across page boundaries.
	for i, meme := range memes {
		assert.Equal(t, fmt.Sprintf("meme-%d", i), meme.ID)
		assert.Equal(t, "name-"+meme.AuthorID, meme.Author.Username)
	}

	// Exhausted: no further requests.
	fetched, err := m.FetchNext(ctx)
	require.NoError(t, err)
	assert.False(t, fetched)
}

func TestMergerSingleFetchInFlight(t *testing.T) {
	t.Parallel()

	var listCalls atomic.Int32
	release := make(chan struct{})
	api := &apiStub{
		listMemesFn: func(_ context.Context, _ string, page int) (models.Page[models.Meme], error) {
			listCalls.Add(1)
			<-release
			return models.Page[models.Meme]{Total: 1, PageSize: 10,
				Results: []models.Meme{{ID: "m-0", AuthorID: "a-0"}}}, nil
		},
		getUserFn: namedUser,
	}
	m := NewMerger(api, staticTokens{"tok"}, nil)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetched, err := m.FetchNext(context.Background())
			assert.NoError(t, err)
			results[i] = fetched
		}()
	}

	// Let both goroutines hit the guard before releasing the listing call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), listCalls.Load(), "rapid FetchNext calls must issue exactly one listing request")
	assert.NotEqual(t, results[0], results[1], "exactly one caller commits the page")
	assert.Len(t, m.Memes(), 1)
}

func TestMergerPreservesOrderUnderOutOfOrderLookups(t *testing.T) {
	t.Parallel()

	delays := map[string]time.Duration{
		"author-A": 60 * time.Millisecond,
		"author-B": 30 * time.Millisecond,
		"author-C": 0,
	}
	api := &apiStub{
		listMemesFn: func(_ context.Context, _ string, _ int) (models.Page[models.Meme], error) {
			return models.Page[models.Meme]{Total: 3, PageSize: 10, Results: []models.Meme{
				{ID: "A", AuthorID: "author-A"},
				{ID: "B", AuthorID: "author-B"},
				{ID: "C", AuthorID: "author-C"},
			}}, nil
		},
		getUserFn: func(_ context.Context, _ string, id string) (models.User, error) {
			time.Sleep(delays[id]) // C resolves before A
			return models.User{ID: id, Username: "name-" + id}, nil
		},
	}
	m := NewMerger(api, staticTokens{"tok"}, nil)

	_, err := m.FetchNext(context.Background())
	require.NoError(t, err)

	memes := m.Memes()
	require.Len(t, memes, 3)
	assert.Equal(t, "A", memes[0].ID)
	assert.Equal(t, "B", memes[1].ID)
	assert.Equal(t, "C", memes[2].ID)
	assert.Equal(t, "name-author-B", memes[1].Author.Username)
}

func TestMergerFailsFastOnAuthorLookup(t *testing.T) {
	t.Parallel()

	lookupErr := errors.New("user service down")
	api := &apiStub{
		listMemesFn: pagedMemes(3, 10),
		getUserFn: func(_ context.Context, _ string, id string) (models.User, error) {
			if id == "author-1" {
				return models.User{}, lookupErr
			}
			return models.User{ID: id}, nil
		},
	}
	m := NewMerger(api, staticTokens{"tok"}, nil)

	_, err := m.FetchNext(context.Background())
	assert.ErrorIs(t, err, lookupErr)
	// No partial enrichment committed.
	assert.Empty(t, m.Memes())
	assert.True(t, m.HasMore(), "failed page stays fetchable")
}

func TestMergerListingFailurePropagates(t *testing.T) {
	t.Parallel()

	api := &apiStub{
		listMemesFn: func(_ context.Context, _ string, _ int) (models.Page[models.Meme], error) {
			return models.Page[models.Meme]{}, models.NewRequestFailedError(500, "listing failed")
		},
	}
	m := NewMerger(api, staticTokens{"tok"}, nil)

	_, err := m.FetchNext(context.Background())
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeRequestFailed, appErr.Code)
	assert.Empty(t, m.Memes())
}

func TestMergerRequiresToken(t *testing.T) {
	t.Parallel()

	api := &apiStub{
		listMemesFn: func(_ context.Context, _ string, _ int) (models.Page[models.Meme], error) {
			t.Fatal("no listing call expected while signed out")
			return models.Page[models.Meme]{}, nil
		},
	}
	m := NewMerger(api, signedOutTokens{}, nil)

	_, err := m.FetchNext(context.Background())
	assert.True(t, models.IsUnauthorized(err))
}

func TestMergerDropsResultsAfterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	api := &apiStub{
		listMemesFn: func(_ context.Context, _ string, _ int) (models.Page[models.Meme], error) {
			// The view navigated away while the request was in flight.
			cancel()
			return models.Page[models.Meme]{Total: 1, PageSize: 10,
				Results: []models.Meme{{ID: "m-0", AuthorID: "a-0"}}}, nil
		},
		getUserFn: namedUser,
	}
	m := NewMerger(api, staticTokens{"tok"}, nil)

	fetched, err := m.FetchNext(ctx)
	assert.False(t, fetched)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Memes())
	assert.False(t, m.InFlight())
}

func TestAuthorCacheMemoizesLookups(t *testing.T) {
	t.Parallel()

	var lookups atomic.Int32
	resolver := &apiStub{
		getUserFn: func(_ context.Context, _ string, id string) (models.User, error) {
			lookups.Add(1)
			return models.User{ID: id}, nil
		},
	}
	cache := NewAuthorCache()
	ctx := context.Background()

	// Duplicates within one resolve collapse to one lookup each.
	users, err := cache.Resolve(ctx, resolver, "tok", []string{"a", "b", "a"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int32(2), lookups.Load())

	// Subsequent resolves hit the cache.
	_, err = cache.Resolve(ctx, resolver, "tok", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), lookups.Load())

	// New ids still fetch.
	_, err = cache.Resolve(ctx, resolver, "tok", []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), lookups.Load())
}

// Package feed stitches the paginated meme, comment, and user endpoints into
// denormalized, incrementally extendable view models.
package feed

import (
	"context"

	"memefeed/internal/models"
)

// API is the slice of the endpoint client the feed layer consumes.
// *api.Client satisfies it; tests substitute stubs.
type API interface {
	ListMemes(ctx context.Context, token string, page int) (models.Page[models.Meme], error)
	ListMemeComments(ctx context.Context, token, memeID string, page int) (models.Page[models.Comment], error)
	CreateMemeComment(ctx context.Context, token, memeID, content string) (models.Comment, error)
	GetUserByID(ctx context.Context, token, id string) (models.User, error)
}

// UserResolver is the author-lookup subset of API.
type UserResolver interface {
	GetUserByID(ctx context.Context, token, id string) (models.User, error)
}

// TokenSource supplies the bearer token for authorized calls.
// *session.Store satisfies it.
type TokenSource interface {
	Token() (string, error)
}

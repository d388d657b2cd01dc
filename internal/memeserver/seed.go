package memeserver

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedOptions controls how much demo data Seed creates.
type SeedOptions struct {
	NumUsers        int
	MemesPerUser    int
	CommentsPerMeme int
	// Password is shared by every seeded account. Defaults to "password".
	Password string
}

// Seed fills the store with demo users, memes, and comments. It is intended
// for development and tests only.
func Seed(ctx context.Context, store *Store, opts SeedOptions) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.MemesPerUser <= 0 {
		opts.MemesPerUser = 5
	}
	if opts.Password == "" {
		opts.Password = "password"
	}

	// One hash shared by all accounts keeps seeding fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	users := make([]*userRecord, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user := &userRecord{
			ID:           uuid.NewString(),
			Username:     seedUsername(i),
			PasswordHash: string(hash),
			PictureURL:   fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.createUser(ctx, user); err != nil {
			return fmt.Errorf("seeding user %s: %w", user.Username, err)
		}
		users = append(users, user)
	}

	var memes []*memeRecord
	for _, user := range users {
		for i := 0; i < opts.MemesPerUser; i++ {
			meme := buildMeme(r, user.ID)
			if err := store.createMeme(ctx, meme); err != nil {
				return fmt.Errorf("seeding meme for %s: %w", user.Username, err)
			}
			memes = append(memes, meme)
		}
	}

	for _, meme := range memes {
		n := opts.CommentsPerMeme
		if n < 0 {
			n = 0
		}
		for i := 0; i < n; i++ {
			author := users[r.Intn(len(users))]
			comment := &commentRecord{
				ID:        uuid.NewString(),
				MemeID:    meme.ID,
				AuthorID:  author.ID,
				Content:   gofakeit.Sentence(r.Intn(10) + 3),
				CreatedAt: meme.CreatedAt.Add(time.Duration(i+1) * time.Minute),
			}
			if err := store.createComment(ctx, comment); err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
		}
	}
	return nil
}

// seedUsername makes deterministic-enough handles; the first account is
// always "demo" so developers have a known login.
func seedUsername(i int) string {
	if i == 0 {
		return "demo"
	}
	return strings.ToLower(gofakeit.Username())
}

func buildMeme(r *rand.Rand, authorID string) *memeRecord {
	// realistic created_at spread over the last 90 days
	back := time.Duration(r.Intn(90*24)) * time.Hour
	meme := &memeRecord{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		PictureURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		Description: gofakeit.Sentence(r.Intn(8) + 2),
		CreatedAt:   time.Now().UTC().Add(-back),
	}
	for i := 0; i < r.Intn(3); i++ {
		meme.Texts = append(meme.Texts, memeTextRecord{
			Content:  strings.ToUpper(gofakeit.HipsterSentence(r.Intn(4) + 1)),
			X:        r.Intn(700),
			Y:        r.Intn(700),
			Position: i,
		})
	}
	return meme
}

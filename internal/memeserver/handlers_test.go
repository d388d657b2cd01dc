package memeserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"memefeed/internal/config"
	"memefeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// pngHeader is enough for content sniffing to see image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n" + "fake image body")

func setupServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret: "test-secret-key",
		PageSize:  5,
	}
	srv := NewServer(cfg, store)
	return srv, srv.App()
}

func createUser(t *testing.T, srv *Server, username, password string) *userRecord {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &userRecord{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, srv.store.createUser(context.Background(), user))
	return user
}

func createMeme(t *testing.T, srv *Server, authorID string, createdAt time.Time) *memeRecord {
	t.Helper()
	meme := &memeRecord{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		PictureURL:  "/uploads/test.png",
		Description: "a meme",
		CreatedAt:   createdAt,
	}
	require.NoError(t, srv.store.createMeme(context.Background(), meme))
	return meme
}

func bearerFor(t *testing.T, srv *Server, userID string) string {
	t.Helper()
	token, err := srv.generateToken(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeJSON(t *testing.T, body io.Reader, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(out))
}

func TestLogin(t *testing.T) {
	srv, app := setupServer(t)
	createUser(t, srv, "alice", "password123")

	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
	}{
		{
			name:           "valid credentials",
			requestBody:    map[string]string{"username": "alice", "password": "password123"},
			expectedStatus: fiber.StatusOK,
		},
		{
			name:           "wrong password",
			requestBody:    map[string]string{"username": "alice", "password": "nope"},
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "unknown user",
			requestBody:    map[string]string{"username": "bob", "password": "password123"},
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "missing password",
			requestBody:    map[string]string{"username": "alice"},
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/authentication/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == fiber.StatusOK {
				var out loginResponse
				decodeJSON(t, resp.Body, &out)
				assert.NotEmpty(t, out.JWT)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	srv, app := setupServer(t)
	user := createUser(t, srv, "alice", "pw")

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/memes", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/memes", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewServer(&config.Config{JWTSecret: "different-secret", PageSize: 5}, srv.store)
		req := httptest.NewRequest("GET", "/memes", nil)
		req.Header.Set("Authorization", bearerFor(t, other, user.ID))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/memes", nil)
		req.Header.Set("Authorization", bearerFor(t, srv, user.ID))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestGetUser(t *testing.T) {
	srv, app := setupServer(t)
	user := createUser(t, srv, "alice", "pw")
	auth := bearerFor(t, srv, user.ID)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/users/"+user.ID, nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out models.User
		decodeJSON(t, resp.Body, &out)
		assert.Equal(t, user.ID, out.ID)
		assert.Equal(t, "alice", out.Username)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/users/"+uuid.NewString(), nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestListMemesPagination(t *testing.T) {
	srv, app := setupServer(t)
	user := createUser(t, srv, "alice", "pw")
	auth := bearerFor(t, srv, user.ID)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		createMeme(t, srv, user.ID, base.Add(time.Duration(i)*time.Minute))
	}

	fetch := func(t *testing.T, page int) models.Page[models.Meme] {
		req := httptest.NewRequest("GET", fmt.Sprintf("/memes?page=%d", page), nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var out models.Page[models.Meme]
		decodeJSON(t, resp.Body, &out)
		return out
	}

	first := fetch(t, 1)
	assert.Equal(t, 12, first.Total)
	assert.Equal(t, 5, first.PageSize)
	assert.Len(t, first.Results, 5)

	last := fetch(t, 3)
	assert.Len(t, last.Results, 2)

	beyond := fetch(t, 4)
	assert.Empty(t, beyond.Results)

	// newest first across the whole listing
	all := append(append(first.Results, fetch(t, 2).Results...), last.Results...)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}
}

func TestComments(t *testing.T) {
	srv, app := setupServer(t)
	user := createUser(t, srv, "alice", "pw")
	auth := bearerFor(t, srv, user.ID)
	meme := createMeme(t, srv, user.ID, time.Now().UTC())

	t.Run("create", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"content": "nice one"})
		req := httptest.NewRequest("POST", "/memes/"+meme.ID+"/comments", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var out models.Comment
		decodeJSON(t, resp.Body, &out)
		assert.Equal(t, "nice one", out.Content)
		assert.Equal(t, user.ID, out.AuthorID)
		assert.Equal(t, meme.ID, out.MemeID)
	})

	t.Run("list includes created comment", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/memes/"+meme.ID+"/comments?page=1", nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out models.Page[models.Comment]
		decodeJSON(t, resp.Body, &out)
		assert.Equal(t, 1, out.Total)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "nice one", out.Results[0].Content)
	})

	t.Run("blank content rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"content": "   "})
		req := httptest.NewRequest("POST", "/memes/"+meme.ID+"/comments", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown meme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/memes/"+uuid.NewString()+"/comments", nil)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestCreateMeme(t *testing.T) {
	srv, app := setupServer(t)
	user := createUser(t, srv, "alice", "pw")
	auth := bearerFor(t, srv, user.ID)

	buildForm := func(t *testing.T, picture []byte, fields map[string]string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if picture != nil {
			fw, err := w.CreateFormFile("picture", "meme.png")
			require.NoError(t, err)
			_, err = fw.Write(picture)
			require.NoError(t, err)
		}
		for k, v := range fields {
			require.NoError(t, w.WriteField(k, v))
		}
		require.NoError(t, w.Close())
		return &buf, w.FormDataContentType()
	}

	t.Run("with overlays", func(t *testing.T) {
		buf, contentType := buildForm(t, pngHeader, map[string]string{
			"description":       "top text bottom text",
			"Texts[0][Content]": "TOP",
			"Texts[0][X]":       "10",
			"Texts[0][Y]":       "20",
			"Texts[1][Content]": "BOTTOM",
			"Texts[1][X]":       "10",
			"Texts[1][Y]":       "700",
		})
		req := httptest.NewRequest("POST", "/memes", buf)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var out models.Meme
		decodeJSON(t, resp.Body, &out)
		assert.Equal(t, "top text bottom text", out.Description)
		assert.Equal(t, user.ID, out.AuthorID)
		require.Len(t, out.Texts, 2)
		assert.Equal(t, models.MemeText{Content: "TOP", X: 10, Y: 20}, out.Texts[0])
		assert.Equal(t, models.MemeText{Content: "BOTTOM", X: 10, Y: 700}, out.Texts[1])
	})

	t.Run("missing picture", func(t *testing.T) {
		buf, contentType := buildForm(t, nil, map[string]string{"description": "no image"})
		req := httptest.NewRequest("POST", "/memes", buf)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not an image", func(t *testing.T) {
		buf, contentType := buildForm(t, []byte("just some text"), nil)
		req := httptest.NewRequest("POST", "/memes", buf)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", auth)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestSeed(t *testing.T) {
	srv, _ := setupServer(t)
	err := Seed(context.Background(), srv.store, SeedOptions{
		NumUsers:        3,
		MemesPerUser:    2,
		CommentsPerMeme: 1,
	})
	require.NoError(t, err)

	ctx := context.Background()
	total, err := srv.store.countMemes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)

	demo, err := srv.store.userByUsername(ctx, "demo")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(demo.PasswordHash), []byte("password")))
}

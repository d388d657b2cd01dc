package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"memefeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoInjectsBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Do(context.Background(), http.MethodGet, "/memes", RequestOptions{Token: "tok-123"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Do(context.Background(), http.MethodPost, "/authentication/login",
		RequestOptions{JSON: map[string]string{"username": "u", "password": "p"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestDoStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"401 maps to unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.True(t, models.IsUnauthorized(err))
		}},
		{"404 maps to not found", http.StatusNotFound, func(t *testing.T, err error) {
			assert.True(t, models.IsNotFound(err))
		}},
		{"500 maps to request failed with status", http.StatusInternalServerError, func(t *testing.T, err error) {
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeRequestFailed, appErr.Code)
			assert.Equal(t, http.StatusInternalServerError, appErr.Status)
		}},
		{"418 maps to request failed with status", http.StatusTeapot, func(t *testing.T, err error) {
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusTeapot, appErr.Status)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL).Do(context.Background(), http.MethodGet, "/memes", RequestOptions{}, nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDoNetworkFailureIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	err := NewClient(srv.URL).Do(context.Background(), http.MethodGet, "/memes", RequestOptions{}, nil)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeTransportFailure, appErr.Code)
	assert.Error(t, appErr.Unwrap())
}

func TestDoHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(srv.URL).Do(ctx, http.MethodGet, "/memes", RequestOptions{}, nil)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeTransportFailure, appErr.Code)
}

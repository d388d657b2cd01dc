// Package api is the typed client for the meme-sharing REST endpoints.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"memefeed/internal/models"
	"memefeed/internal/transport"
)

// Client exposes one method per consumed endpoint. All authorized calls take
// the bearer token explicitly; the token is immutable for the duration of a
// call.
type Client struct {
	t *transport.Client
}

// New creates an API client over the given transport.
func New(t *transport.Client) *Client {
	return &Client{t: t}
}

// Login authenticates with the given credentials and returns the issued JWT.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var resp struct {
		JWT string `json:"jwt"`
	}
	if err := c.t.Do(ctx, http.MethodPost, "/authentication/login",
		transport.RequestOptions{JSON: body}, &resp); err != nil {
		return "", err
	}
	return resp.JWT, nil
}

// GetUserByID resolves one user's public profile.
func (c *Client) GetUserByID(ctx context.Context, token, id string) (models.User, error) {
	var user models.User
	err := c.t.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id),
		transport.RequestOptions{Token: token}, &user)
	return user, err
}

// ListMemes returns one page of the meme listing. Pages are 1-based.
func (c *Client) ListMemes(ctx context.Context, token string, page int) (models.Page[models.Meme], error) {
	var out models.Page[models.Meme]
	err := c.t.Do(ctx, http.MethodGet, fmt.Sprintf("/memes?page=%d", page),
		transport.RequestOptions{Token: token}, &out)
	return out, err
}

// ListMemeComments returns one page of a meme's comment thread.
func (c *Client) ListMemeComments(ctx context.Context, token, memeID string, page int) (models.Page[models.Comment], error) {
	var out models.Page[models.Comment]
	err := c.t.Do(ctx, http.MethodGet,
		fmt.Sprintf("/memes/%s/comments?page=%d", url.PathEscape(memeID), page),
		transport.RequestOptions{Token: token}, &out)
	return out, err
}

// CreateMemeComment posts a comment on a meme and returns the created comment.
func (c *Client) CreateMemeComment(ctx context.Context, token, memeID, content string) (models.Comment, error) {
	body := struct {
		Content string `json:"content"`
	}{Content: content}

	var out models.Comment
	err := c.t.Do(ctx, http.MethodPost,
		"/memes/"+url.PathEscape(memeID)+"/comments",
		transport.RequestOptions{Token: token, JSON: body}, &out)
	return out, err
}

// CreateMemeInput is the payload for creating a meme.
type CreateMemeInput struct {
	PictureName string
	Picture     io.Reader
	Description string
	Texts       []models.MemeText
}

// CreateMeme uploads a new meme as a multipart form: the picture file, the
// description, and caption overlays as indexed Texts[i][Content|X|Y] fields.
func (c *Client) CreateMeme(ctx context.Context, token string, in CreateMemeInput) (models.Meme, error) {
	var out models.Meme
	if in.Picture == nil {
		return out, models.NewValidationError("picture is required")
	}

	body, contentType, err := encodeMemeForm(in)
	if err != nil {
		return out, err
	}
	err = c.t.Do(ctx, http.MethodPost, "/memes",
		transport.RequestOptions{Token: token, Body: body, ContentType: contentType}, &out)
	return out, err
}

// itoa is a local alias to keep the form encoding readable.
func itoa(n int) string { return strconv.Itoa(n) }

// Package models contains data structures for the application's domain models.
package models

import "time"

// MemeText is a single caption overlay positioned on a meme picture.
type MemeText struct {
	Content string `json:"content"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// Meme represents a post in the feed. Memes are server-assigned and
// immutable on the client; a fresh fetch replaces them wholesale.
type Meme struct {
	ID            string     `json:"id"`
	AuthorID      string     `json:"authorId"`
	PictureURL    string     `json:"pictureUrl"`
	Description   string     `json:"description"`
	CommentsCount int        `json:"commentsCount"`
	Texts         []MemeText `json:"texts"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// MemeWithAuthor is a Meme enriched with its resolved author.
type MemeWithAuthor struct {
	Meme
	Author User `json:"author"`
}

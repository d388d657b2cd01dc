package models

import "time"

// Comment represents a comment on a meme.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	MemeID    string    `json:"memeId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentWithAuthor is a Comment enriched with its resolved author.
type CommentWithAuthor struct {
	Comment
	Author User `json:"author"`
}

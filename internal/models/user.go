package models

// User is the public profile returned by the users endpoint.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	PictureURL string `json:"pictureUrl"`
}

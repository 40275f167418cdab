package model

import "time"

// Song represents an uploaded audio file in the catalog.
type Song struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Title      string    `json:"title"`
	Filename   string    `json:"-"` // Server-generated stored filename, exposed only through the serve URL
	Uploader   string    `json:"uploader,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// PlayerItem is the JSON contract consumed by the client-side player.
type PlayerItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Uploader string `json:"uploader"`
}

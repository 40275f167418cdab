package model

import "time"

// Playlist is a named song collection owned by one user.
type Playlist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName sets the table name.
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistSong associates one playlist with one song. The composite primary
// key enforces that a song appears at most once per playlist.
type PlaylistSong struct {
	PlaylistID int64     `json:"playlistId" gorm:"primaryKey;autoIncrement:false"`
	SongID     int64     `json:"songId" gorm:"primaryKey;autoIncrement:false"`
	AddedAt    time.Time `json:"addedAt"`
}

// TableName sets the table name.
func (PlaylistSong) TableName() string {
	return "playlist_songs"
}

// PlaylistEntry is a member song joined with its uploader's name, as shown
// on the playlist page.
type PlaylistEntry struct {
	SongID   int64  `json:"songId"`
	Title    string `json:"title"`
	Filename string `json:"-"`
	Uploader string `json:"uploader"`
}

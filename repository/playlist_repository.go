package repository

import (
	"context"
	"time"

	"musicbox/model"

	"gorm.io/gorm"
)

// PlaylistRepository defines data access for playlists and their membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	GetByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error)

	AddSong(ctx context.Context, playlistID, songID int64) error
	RemoveSong(ctx context.Context, playlistID, songID int64) error
	GetEntries(ctx context.Context, playlistID int64) ([]*model.PlaylistEntry, error)

	DeleteWithMembership(ctx context.Context, playlistID int64) error
	PurgeSongMembership(ctx context.Context, songID int64) error
}

// gormPlaylistRepository is the GORM implementation.
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a GORM playlist repository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

// Create inserts a new, empty playlist.
func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

// GetByID returns a playlist or nil when absent.
func (r *gormPlaylistRepository) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&playlist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

// GetByUserID returns the user's playlists, newest first.
func (r *gormPlaylistRepository) GetByUserID(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&playlists).Error
	return playlists, err
}

// AddSong inserts a membership row. Inserting an existing (playlist, song)
// pair returns ErrDuplicateMembership.
func (r *gormPlaylistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	member := model.PlaylistSong{
		PlaylistID: playlistID,
		SongID:     songID,
		AddedAt:    time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&member).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// RemoveSong deletes a membership row. Removing an absent pair is a no-op.
func (r *gormPlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	return r.db.WithContext(ctx).
		Where("playlist_id = ? AND song_id = ?", playlistID, songID).
		Delete(&model.PlaylistSong{}).Error
}

// GetEntries returns the playlist's member songs joined with each uploader's
// name, in insertion order.
func (r *gormPlaylistRepository) GetEntries(ctx context.Context, playlistID int64) ([]*model.PlaylistEntry, error) {
	var entries []*model.PlaylistEntry
	err := r.db.WithContext(ctx).
		Table("playlist_songs").
		Select("songs.id AS song_id, songs.title, songs.filename, users.username AS uploader").
		Joins("JOIN songs ON songs.id = playlist_songs.song_id").
		Joins("JOIN users ON users.id = songs.user_id").
		Where("playlist_songs.playlist_id = ?", playlistID).
		Order("playlist_songs.added_at ASC, playlist_songs.song_id ASC").
		Scan(&entries).Error
	return entries, err
}

// DeleteWithMembership removes the playlist's membership rows and the
// playlist itself in one transaction.
func (r *gormPlaylistRepository) DeleteWithMembership(ctx context.Context, playlistID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlistID).Delete(&model.PlaylistSong{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", playlistID).Delete(&model.Playlist{}).Error
	})
}

// PurgeSongMembership removes a song from every playlist. Called when the
// song itself is deleted so no playlist keeps a dangling reference.
func (r *gormPlaylistRepository) PurgeSongMembership(ctx context.Context, songID int64) error {
	return r.db.WithContext(ctx).
		Where("song_id = ?", songID).
		Delete(&model.PlaylistSong{}).Error
}

package catalog

import (
	"context"
	"errors"
	"io"
	"strings"

	"musicbox/core/media"
	"musicbox/logger"
	"musicbox/model"
	"musicbox/repository"
)

var (
	// ErrNoFile means the upload form carried no file part.
	ErrNoFile = errors.New("no file provided")
	// ErrNotFound means the song does not exist.
	ErrNotFound = errors.New("song not found")
	// ErrForbidden means the requester does not own the song.
	ErrForbidden = errors.New("song belongs to another user")
)

// DefaultListLimit caps the unfiltered song listing.
const DefaultListLimit = 200

// ListCache caches the unfiltered song listing. A nil cache disables caching.
type ListCache interface {
	Get(ctx context.Context) ([]*model.Song, bool)
	Set(ctx context.Context, songs []*model.Song)
	Invalidate(ctx context.Context)
}

// Service is the song catalog: it composes the media store and the song
// repository, and keeps playlist membership consistent on deletion.
type Service struct {
	songs     repository.SongRepository
	playlists repository.PlaylistRepository
	media     *media.Store
	cache     ListCache
}

// NewService creates a catalog service. cache may be nil.
func NewService(songs repository.SongRepository, playlists repository.PlaylistRepository, mediaStore *media.Store, cache ListCache) *Service {
	return &Service{songs: songs, playlists: playlists, media: mediaStore, cache: cache}
}

// List returns songs newest-first. A non-empty search term filters by
// case-insensitive substring match on the title; the unfiltered listing is
// capped at limit (DefaultListLimit when limit <= 0) and served from the
// cache when one is configured.
func (s *Service) List(ctx context.Context, searchTerm string, limit int) ([]*model.Song, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	// Only the unfiltered default listing is cached; search results are too
	// varied to be worth keeping.
	cacheable := strings.TrimSpace(searchTerm) == "" && limit == DefaultListLimit && s.cache != nil
	if cacheable {
		if songs, ok := s.cache.Get(ctx); ok {
			return songs, nil
		}
	}

	songs, err := s.songs.ListSongs(searchTerm, limit)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.Set(ctx, songs)
	}
	return songs, nil
}

// ByOwner returns the songs owned by a user, newest first.
func (s *Service) ByOwner(ownerID int64) ([]*model.Song, error) {
	return s.songs.GetSongsByUserID(ownerID)
}

// Upload validates and stores an uploaded file, then inserts the song row.
// The title defaults to the original filename's stem when empty. The file is
// written before the row is inserted, so a failed insert leaves no dangling
// catalog row; the partial file is cleaned up on that path.
func (s *Service) Upload(ctx context.Context, ownerID int64, originalName string, r io.Reader, title string) (*model.Song, error) {
	if originalName == "" || r == nil {
		return nil, ErrNoFile
	}

	storedName, size, err := s.media.Save(originalName, r)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = media.TitleFromFilename(originalName)
	}

	song := &model.Song{
		UserID:   ownerID,
		Title:    title,
		Filename: storedName,
	}
	id, err := s.songs.CreateSong(song)
	if err != nil {
		if removeErr := s.media.Remove(storedName); removeErr != nil {
			logger.Warn("Failed to remove media file after insert failure",
				logger.String("file", storedName), logger.ErrorField(removeErr))
		}
		return nil, err
	}
	song.ID = id

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	logger.Info("Song uploaded",
		logger.Int64("songId", id),
		logger.Int64("userId", ownerID),
		logger.String("title", title),
		logger.Int64("bytes", size))
	return song, nil
}

// Delete removes a song owned by the requester: the backing file
// (best-effort), the catalog row, and the song's playlist membership rows.
// Row deletion proceeds even when the file removal fails.
func (s *Service) Delete(ctx context.Context, requesterID, songID int64) error {
	song, err := s.songs.GetSongByID(songID)
	if err != nil {
		return err
	}
	if song == nil {
		return ErrNotFound
	}
	if song.UserID != requesterID {
		return ErrForbidden
	}

	if err := s.media.Remove(song.Filename); err != nil {
		logger.Warn("Failed to delete media file, removing catalog row anyway",
			logger.String("file", song.Filename), logger.ErrorField(err))
	}

	if err := s.songs.DeleteSong(songID); err != nil {
		return err
	}

	if err := s.playlists.PurgeSongMembership(ctx, songID); err != nil {
		logger.Error("Failed to purge playlist membership for deleted song",
			logger.Int64("songId", songID), logger.ErrorField(err))
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	logger.Info("Song deleted", logger.Int64("songId", songID), logger.Int64("userId", requesterID))
	return nil
}

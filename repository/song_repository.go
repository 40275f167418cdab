package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"musicbox/model"
)

// SongRepository defines the interface for song catalog data operations.
type SongRepository interface {
	CreateSong(song *model.Song) (int64, error)
	GetSongByID(id int64) (*model.Song, error)
	ListSongs(searchTerm string, limit int) ([]*model.Song, error)
	GetSongsByUserID(userID int64) ([]*model.Song, error)
	DeleteSong(id int64) error
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

// CreateSong adds a new song to the catalog.
func (r *mysqlSongRepository) CreateSong(song *model.Song) (int64, error) {
	query := "INSERT INTO songs (user_id, title, filename) VALUES (?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create song statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(song.UserID, song.Title, song.Filename)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create song statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for song: %w", err)
	}
	return id, nil
}

// GetSongByID retrieves a song by its ID.
func (r *mysqlSongRepository) GetSongByID(id int64) (*model.Song, error) {
	query := `SELECT songs.id, songs.user_id, songs.title, songs.filename, songs.uploaded_at, users.username
	           FROM songs JOIN users ON users.id = songs.user_id WHERE songs.id = ?`
	row := r.db.QueryRow(query, id)

	song := &model.Song{}
	err := row.Scan(&song.ID, &song.UserID, &song.Title, &song.Filename, &song.UploadedAt, &song.Uploader)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Song not found
		}
		return nil, fmt.Errorf("failed to scan song by ID %d: %w", id, err)
	}
	return song, nil
}

// ListSongs returns songs newest-first, joined with each uploader's name.
// A non-empty searchTerm filters by case-insensitive substring match on the
// title; otherwise the listing is capped at limit rows.
func (r *mysqlSongRepository) ListSongs(searchTerm string, limit int) ([]*model.Song, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(searchTerm) != "" {
		query := `SELECT songs.id, songs.user_id, songs.title, songs.filename, songs.uploaded_at, users.username
		           FROM songs JOIN users ON users.id = songs.user_id
		           WHERE LOWER(songs.title) LIKE LOWER(?) ORDER BY songs.id DESC`
		rows, err = r.db.Query(query, "%"+strings.TrimSpace(searchTerm)+"%")
	} else {
		query := `SELECT songs.id, songs.user_id, songs.title, songs.filename, songs.uploaded_at, users.username
		           FROM songs JOIN users ON users.id = songs.user_id
		           ORDER BY songs.id DESC LIMIT ?`
		rows, err = r.db.Query(query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	return scanSongs(rows)
}

// GetSongsByUserID returns the songs owned by a user, newest first.
func (r *mysqlSongRepository) GetSongsByUserID(userID int64) ([]*model.Song, error) {
	query := `SELECT songs.id, songs.user_id, songs.title, songs.filename, songs.uploaded_at, users.username
	           FROM songs JOIN users ON users.id = songs.user_id
	           WHERE songs.user_id = ? ORDER BY songs.id DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	return scanSongs(rows)
}

// DeleteSong removes a song row.
func (r *mysqlSongRepository) DeleteSong(id int64) error {
	query := "DELETE FROM songs WHERE id = ?"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare delete song statement: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(id); err != nil {
		return fmt.Errorf("failed to execute delete song statement: %w", err)
	}
	return nil
}

func scanSongs(rows *sql.Rows) ([]*model.Song, error) {
	songs := make([]*model.Song, 0)
	for rows.Next() {
		song := &model.Song{}
		err := rows.Scan(&song.ID, &song.UserID, &song.Title, &song.Filename, &song.UploadedAt, &song.Uploader)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during song rows iteration: %w", err)
	}
	return songs, nil
}

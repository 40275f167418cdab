package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"musicbox/core/catalog"
	"musicbox/logger"
	"musicbox/model"
	"musicbox/repository"

	"github.com/gorilla/mux"
)

// PlaylistsHandler lists the current user's playlists.
func (h *Handler) PlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	playlists, err := h.playlists.GetByUserID(r.Context(), user.ID)
	if err != nil {
		logger.Error("Failed to list playlists", logger.Int64("userId", user.ID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := h.newPageData(w, r)
	data.Playlists = playlists
	h.renderer.render(w, "playlists", data)
}

// CreatePlaylistHandler serves the creation form and creates playlists.
func (h *Handler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderer.render(w, "playlist_create", h.newPageData(w, r))
		return
	}

	user := userFromContext(r.Context())
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		setFlash(w, r, "error", "Playlist name must not be empty.")
		http.Redirect(w, r, "/playlists/create", http.StatusSeeOther)
		return
	}

	playlist := &model.Playlist{UserID: user.ID, Name: name}
	if err := h.playlists.Create(r.Context(), playlist); err != nil {
		logger.Error("Failed to create playlist", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("Playlist created", logger.Int64("playlistId", playlist.ID), logger.Int64("userId", user.ID))
	setFlash(w, r, "success", "Playlist created.")
	http.Redirect(w, r, "/playlists", http.StatusSeeOther)
}

// ViewPlaylistHandler shows a playlist with its member songs and an add form
// fed by the full catalog.
func (h *Handler) ViewPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	playlist, err := h.playlists.GetByID(r.Context(), playlistID)
	if err != nil {
		logger.Error("Failed to load playlist", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if playlist == nil {
		setFlash(w, r, "error", "Playlist does not exist.")
		http.Redirect(w, r, "/playlists", http.StatusSeeOther)
		return
	}

	entries, err := h.playlists.GetEntries(r.Context(), playlistID)
	if err != nil {
		logger.Error("Failed to load playlist entries", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	allSongs, err := h.catalog.List(r.Context(), "", catalog.DefaultListLimit)
	if err != nil {
		logger.Error("Failed to list songs for playlist form", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := h.newPageData(w, r)
	data.Playlist = playlist
	data.Entries = entries
	data.AllSongs = allSongs
	data.PlayerJSON = playerJSON(playerItemsFromEntries(entries))
	h.renderer.render(w, "playlist_view", data)
}

// AddToPlaylistHandler inserts a song into a playlist. Adding a song that is
// already a member is reported as a notice, not an error page.
func (h *Handler) AddToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	viewPath := fmt.Sprintf("/playlists/%d", playlistID)

	playlist, err := h.playlists.GetByID(r.Context(), playlistID)
	if err != nil {
		logger.Error("Failed to load playlist", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if playlist == nil {
		setFlash(w, r, "error", "Playlist does not exist.")
		http.Redirect(w, r, "/playlists", http.StatusSeeOther)
		return
	}

	songID, err := strconv.ParseInt(r.FormValue("song_id"), 10, 64)
	if err != nil || songID <= 0 {
		setFlash(w, r, "error", "No song selected.")
		http.Redirect(w, r, viewPath, http.StatusSeeOther)
		return
	}

	if err := h.playlists.AddSong(r.Context(), playlistID, songID); err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			setFlash(w, r, "warning", "Song is already in this playlist.")
		} else {
			logger.Error("Failed to add song to playlist",
				logger.Int64("playlistId", playlistID), logger.Int64("songId", songID), logger.ErrorField(err))
			setFlash(w, r, "error", "Could not add the song to this playlist.")
		}
		http.Redirect(w, r, viewPath, http.StatusSeeOther)
		return
	}

	setFlash(w, r, "success", "Song added to playlist.")
	http.Redirect(w, r, viewPath, http.StatusSeeOther)
}

// RemoveFromPlaylistHandler removes a song from a playlist. Removing a song
// that isn't a member is a no-op.
func (h *Handler) RemoveFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playlistID, _ := strconv.ParseInt(vars["id"], 10, 64)
	songID, _ := strconv.ParseInt(vars["songId"], 10, 64)

	if err := h.playlists.RemoveSong(r.Context(), playlistID, songID); err != nil {
		logger.Error("Failed to remove song from playlist",
			logger.Int64("playlistId", playlistID), logger.Int64("songId", songID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setFlash(w, r, "success", "Song removed from playlist.")
	http.Redirect(w, r, fmt.Sprintf("/playlists/%d", playlistID), http.StatusSeeOther)
}

// DeletePlaylistHandler deletes a playlist owned by the current user along
// with its membership rows. Ownership is checked before anything is touched.
func (h *Handler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	playlistID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	playlist, err := h.playlists.GetByID(r.Context(), playlistID)
	if err != nil {
		logger.Error("Failed to load playlist", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if playlist == nil {
		setFlash(w, r, "error", "Playlist does not exist.")
		http.Redirect(w, r, "/playlists", http.StatusSeeOther)
		return
	}
	if playlist.UserID != user.ID {
		logger.Warn("Playlist delete denied",
			logger.Int64("playlistId", playlistID), logger.Int64("userId", user.ID))
		setFlash(w, r, "error", "You don't have permission to delete this playlist.")
		http.Redirect(w, r, "/playlists", http.StatusSeeOther)
		return
	}

	if err := h.playlists.DeleteWithMembership(r.Context(), playlistID); err != nil {
		logger.Error("Failed to delete playlist", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("Playlist deleted", logger.Int64("playlistId", playlistID), logger.Int64("userId", user.ID))
	setFlash(w, r, "success", "Playlist deleted.")
	http.Redirect(w, r, "/playlists", http.StatusSeeOther)
}

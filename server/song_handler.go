package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"musicbox/core/catalog"
	"musicbox/core/media"
	"musicbox/logger"

	"github.com/gorilla/mux"
)

// playerListCap bounds the number of songs handed to the client-side player.
const playerListCap = 50

// IndexHandler lists songs, optionally filtered by the q search term.
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	songs, err := h.catalog.List(r.Context(), q, catalog.DefaultListLimit)
	if err != nil {
		logger.Error("Failed to list songs", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := h.newPageData(w, r)
	data.Songs = songs
	player := songs
	if len(player) > playerListCap {
		player = player[:playerListCap]
	}
	data.PlayerJSON = playerJSON(playerItemsFromSongs(player))
	h.renderer.render(w, "index", data)
}

// UploadHandler serves the upload form and accepts new songs.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		data := h.newPageData(w, r)
		data.MaxUploadMB = h.cfg.MaxUploadBytes >> 20
		h.renderer.render(w, "upload", data)
		return
	}

	user := userFromContext(r.Context())

	// Cap the request body before the multipart parse; the extra MiB covers
	// form framing so a file exactly at the ceiling still fits.
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Warn("Failed to parse upload form", logger.ErrorField(err))
		setFlash(w, r, "error", fmt.Sprintf("Upload too large. Maximum size is %d MB.", h.cfg.MaxUploadBytes>>20))
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		setFlash(w, r, "error", "No file selected.")
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}
	defer file.Close()

	_, err = h.catalog.Upload(r.Context(), user.ID, header.Filename, file, r.FormValue("title"))
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNoFile):
			setFlash(w, r, "error", "No file selected.")
		case errors.Is(err, media.ErrUnsupportedFormat):
			setFlash(w, r, "error", "Unsupported format. Please use mp3, ogg, wav or m4a.")
		case errors.Is(err, media.ErrPayloadTooLarge):
			setFlash(w, r, "error", fmt.Sprintf("File too large. Maximum size is %d MB.", h.cfg.MaxUploadBytes>>20))
		default:
			logger.Error("Failed to store upload", logger.ErrorField(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	setFlash(w, r, "success", "Upload successful!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ServeMediaHandler streams a stored file. The requested name must survive
// sanitization unchanged; anything else is reported as missing rather than
// described, so the handler leaks nothing about the directory layout.
func (h *Handler) ServeMediaHandler(w http.ResponseWriter, r *http.Request) {
	requested := mux.Vars(r)["filename"]

	path, err := h.media.Resolve(requested)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logger.Error("Failed to resolve media file", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", media.ContentType(requested))
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", requested))
	}
	// ServeContent handles byte-range requests for the audio element.
	http.ServeContent(w, r, requested, info.ModTime(), file)
}

// MySongsHandler lists the songs owned by the current user.
func (h *Handler) MySongsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	songs, err := h.catalog.ByOwner(user.ID)
	if err != nil {
		logger.Error("Failed to list user songs", logger.Int64("userId", user.ID), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := h.newPageData(w, r)
	data.Songs = songs
	data.PlayerJSON = playerJSON(playerItemsFromSongs(songs))
	h.renderer.render(w, "my_songs", data)
}

// DeleteSongHandler deletes a song owned by the current user.
func (h *Handler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	songID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	if err := h.catalog.Delete(r.Context(), user.ID, songID); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			setFlash(w, r, "error", "Song does not exist.")
		case errors.Is(err, catalog.ErrForbidden):
			logger.Warn("Song delete denied",
				logger.Int64("songId", songID), logger.Int64("userId", user.ID))
			setFlash(w, r, "error", "You don't have permission to delete this song.")
		default:
			logger.Error("Failed to delete song", logger.Int64("songId", songID), logger.ErrorField(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setFlash(w, r, "success", "Song deleted.")
	http.Redirect(w, r, "/my_songs", http.StatusSeeOther)
}

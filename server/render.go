package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"musicbox/logger"
	"musicbox/model"
	"musicbox/web"
)

// pageData is the view model shared by every template; page templates embed
// it and add their own fields.
type pageData struct {
	User       *model.User
	Flashes    []Flash
	Query      string
	PlayerJSON template.JS

	// Page-specific fields. A single struct keeps the render call simple;
	// unused fields are zero.
	Songs       []*model.Song
	Playlists   []*model.Playlist
	Playlist    *model.Playlist
	Entries     []*model.PlaylistEntry
	AllSongs    []*model.Song
	MaxUploadMB int64
	Next        string
}

// renderer holds one parsed template set per page.
type renderer struct {
	pages map[string]*template.Template
}

var pageNames = []string{
	"index", "login", "register", "upload", "my_songs",
	"playlists", "playlist_create", "playlist_view",
}

// newRenderer parses the embedded templates.
func newRenderer() (*renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(web.FS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &renderer{pages: pages}, nil
}

// render executes a page template. Render failures surface as a generic 500
// since they indicate a bug, not a user error.
func (rd *renderer) render(w http.ResponseWriter, page string, data *pageData) {
	tmpl, ok := rd.pages[page]
	if !ok {
		logger.Error("Unknown page template", logger.String("page", page))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		logger.Error("Failed to render template", logger.String("page", page), logger.ErrorField(err))
	}
}

// playerJSON builds the JSON payload consumed by the client-side player.
func playerJSON(items []model.PlayerItem) template.JS {
	payload, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return template.JS(payload)
}

// playerItemsFromSongs converts catalog songs into the player contract.
func playerItemsFromSongs(songs []*model.Song) []model.PlayerItem {
	items := make([]model.PlayerItem, 0, len(songs))
	for _, s := range songs {
		items = append(items, model.PlayerItem{
			ID:       s.ID,
			Title:    s.Title,
			URL:      "/uploads/" + s.Filename,
			Uploader: s.Uploader,
		})
	}
	return items
}

// playerItemsFromEntries converts playlist entries into the player contract.
func playerItemsFromEntries(entries []*model.PlaylistEntry) []model.PlayerItem {
	items := make([]model.PlayerItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, model.PlayerItem{
			ID:       e.SongID,
			Title:    e.Title,
			URL:      "/uploads/" + e.Filename,
			Uploader: e.Uploader,
		})
	}
	return items
}

package server

import (
	"io/fs"
	"net/http"

	"musicbox/config"
	"musicbox/core/auth"
	"musicbox/core/catalog"
	"musicbox/core/media"
	"musicbox/repository"
	"musicbox/web"

	"github.com/gorilla/mux"
)

// Handler carries the wired components and owns every HTTP endpoint.
type Handler struct {
	cfg       *config.Config
	users     repository.UserRepository
	playlists repository.PlaylistRepository
	catalog   *catalog.Service
	media     *media.Store
	tokens    *auth.TokenIssuer
	sessions  auth.SessionStore
	renderer  *renderer
}

// NewHandler creates the handler and parses the page templates.
func NewHandler(
	cfg *config.Config,
	users repository.UserRepository,
	playlists repository.PlaylistRepository,
	catalogSvc *catalog.Service,
	mediaStore *media.Store,
	tokens *auth.TokenIssuer,
	sessions auth.SessionStore,
) (*Handler, error) {
	rd, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{
		cfg:       cfg,
		users:     users,
		playlists: playlists,
		catalog:   catalogSvc,
		media:     mediaStore,
		tokens:    tokens,
		sessions:  sessions,
		renderer:  rd,
	}, nil
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", h.IndexHandler).Methods(http.MethodGet)
	router.HandleFunc("/register", h.RegisterHandler).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/login", h.LoginHandler).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/logout", h.RequireSession(h.LogoutHandler)).Methods(http.MethodGet)

	router.HandleFunc("/upload", h.RequireSession(h.UploadHandler)).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/uploads/{filename}", h.ServeMediaHandler).Methods(http.MethodGet)
	router.HandleFunc("/my_songs", h.RequireSession(h.MySongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/delete_song/{id:[0-9]+}", h.RequireSession(h.DeleteSongHandler)).Methods(http.MethodGet)

	router.HandleFunc("/playlists", h.RequireSession(h.PlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/playlists/create", h.RequireSession(h.CreatePlaylistHandler)).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/playlists/delete/{id:[0-9]+}", h.RequireSession(h.DeletePlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/playlists/{id:[0-9]+}", h.RequireSession(h.ViewPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/playlists/{id:[0-9]+}/add", h.RequireSession(h.AddToPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/playlists/{id:[0-9]+}/remove/{songId:[0-9]+}", h.RequireSession(h.RemoveFromPlaylistHandler)).Methods(http.MethodGet)

	staticFS, _ := fs.Sub(web.FS, "static")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	return router
}

// newPageData assembles the view model shared by every page: the current
// user (if any), pending flash messages and the search box value.
func (h *Handler) newPageData(w http.ResponseWriter, r *http.Request) *pageData {
	user := userFromContext(r.Context())
	if user == nil {
		user = h.currentUser(r)
	}
	return &pageData{
		User:    user,
		Flashes: popFlashes(w, r),
		Query:   r.URL.Query().Get("q"),
	}
}

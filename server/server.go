package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musicbox/cache"
	"musicbox/config"
	"musicbox/core/auth"
	"musicbox/core/catalog"
	"musicbox/core/media"
	"musicbox/db"
	"musicbox/logger"
	"musicbox/model"
	"musicbox/repository"
)

// Start wires the application together and runs the HTTP server until it
// receives SIGINT or SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}
	if err := db.AutoMigrateModels(&model.Playlist{}, &model.PlaylistSong{}); err != nil {
		logger.Fatal("Failed to migrate playlist tables", logger.ErrorField(err))
	}

	mediaStore := media.NewStore(cfg.MediaDir, cfg.MaxUploadBytes, cfg.AllowedExts)
	if err := mediaStore.EnsureDir(); err != nil {
		logger.Fatal("Failed to create media directory", logger.ErrorField(err))
	}

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if err := media.Watch(watchCtx, cfg.MediaDir); err != nil {
		// The watcher is operational visibility only; the server works without it.
		logger.Warn("Media watcher unavailable", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	songRepo := repository.NewMySQLSongRepository(db.DB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)
	listCache := cache.NewSongListCache(db.RedisClient, cache.DefaultListTTL)
	catalogSvc := catalog.NewService(songRepo, playlistRepo, mediaStore, listCache)

	tokens := auth.NewTokenIssuer(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	sessions := auth.NewRedisSessionStore(db.RedisClient)

	handler, err := NewHandler(cfg, userRepo, playlistRepo, catalogSvc, mediaStore, tokens, sessions)
	if err != nil {
		logger.Fatal("Failed to build handler", logger.ErrorField(err))
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hbcplayer/cache"
	"hbcplayer/config"
	"hbcplayer/core/auth"
	"hbcplayer/db"
	"hbcplayer/logger"
	"hbcplayer/repository"
	"hbcplayer/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until SIGINT
// or SIGTERM.
func Start() {
	cfg := config.Load()
	auth.SetSecret(cfg.JWTSecret)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer cache.CloseRedis()
	logger.Info("Successfully connected to Redis")

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if err := db.MigrateCatalog(); err != nil {
		logger.Fatal("Failed to migrate catalog tables", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	productRepo := repository.NewGormProductRepository(db.GormDB)
	playlists := cache.NewPlaylistRepo(cache.RedisClient)
	hub := NewSyncHub()

	apiHandler := NewAPIHandler(userRepo, productRepo, playlists, hub, cfg)

	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Device-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Per-user stored playlist
	router.HandleFunc("/api/users/me/playlist", apiHandler.AuthMiddleware(apiHandler.GetMyPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/me/playlist", apiHandler.AuthMiddleware(apiHandler.PutMyPlaylistHandler)).Methods(http.MethodPut)

	// Auto/manual playlist resolution. Guests resolve MAIN/SEARCH/ARTIST
	// freely; FOLLOWING/LIKED/CART need the authenticated user and the
	// handler rejects those per variant.
	router.HandleFunc("/api/playlists/auto", apiHandler.OptionalAuthMiddleware(apiHandler.AutoPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/manual", apiHandler.ManualPlaylistHandler).Methods(http.MethodPost)

	// Product metadata and preview audio
	router.HandleFunc("/api/products/{id}", apiHandler.GetProductHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/products/{id}/preview", apiHandler.PreviewHandler).Methods(http.MethodGet)

	// Cross-device playlist sync
	router.HandleFunc("/api/ws/playlist", apiHandler.AuthMiddleware(apiHandler.PlaylistSyncHandler)).Methods(http.MethodGet)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
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

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Tenvin_Social/internal/cache"
	"github.com/Dias221467/Tenvin_Social/internal/config"
	"github.com/Dias221467/Tenvin_Social/internal/database"
	"github.com/Dias221467/Tenvin_Social/internal/handlers"
	"github.com/Dias221467/Tenvin_Social/internal/jobs"
	"github.com/Dias221467/Tenvin_Social/internal/repository"
	"github.com/Dias221467/Tenvin_Social/internal/scheduler"
	"github.com/Dias221467/Tenvin_Social/internal/services"
	"github.com/Dias221467/Tenvin_Social/internal/storage"
	"github.com/Dias221467/Tenvin_Social/pkg/logger"
	"github.com/Dias221467/Tenvin_Social/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file and the environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			logger.Log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	// --- Collaborators ---
	searchCache := cache.NewSearchCache(cache.Connect(cfg.RedisURL), cfg.SearchCacheTTL)

	var images storage.ImageStore = storage.NoopImageStore{}
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSImageStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.GCSPublicBaseURL)
		if err != nil {
			logger.Log.WithError(err).Warn("Object storage unavailable, wine photos disabled")
		} else {
			defer gcs.Close()
			images = gcs
		}
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	wineRepo := repository.NewWineRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	eventRepo := repository.NewEventRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	txRunner := repository.NewTxRunner(db)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo)
	userService := services.NewUserService(userRepo, searchCache, cfg.SearchMinChars, cfg.SearchLimit)
	followService := services.NewFollowService(followRepo, eventRepo, userRepo, txRunner, notificationService)
	feedService := services.NewFeedService(followRepo, postRepo, wineRepo, cfg.FeedBatchSize, cfg.FeedLimit)
	wishlistService := services.NewWishlistService(wishlistRepo, userRepo, notificationService)
	wineService := services.NewWineService(wineRepo, postRepo, userRepo, txRunner, images)
	postService := services.NewPostService(postRepo, userRepo, notificationService)

	// --- Background jobs ---
	reconciler := jobs.NewCounterReconciler(eventRepo, userRepo, followRepo, txRunner)
	followService.SetListener(reconciler)
	reconciler.Start(ctx)

	go func() {
		migrated, err := jobs.NewSchemaBackfill(userRepo, followRepo, wishlistRepo).Run(ctx)
		if err != nil {
			logger.Log.WithError(err).Error("User schema backfill failed")
		}
		// Migrated users only become searchable now.
		if migrated > 0 {
			searchCache.Invalidate(ctx)
		}
	}()

	cronJobs, err := scheduler.Start(ctx, cfg, reconciler, notificationService)
	if err != nil {
		logger.Log.Fatalf("Failed to schedule jobs: %v", err)
	}
	defer cronJobs.Stop()

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService)
	followHandler := handlers.NewFollowHandler(followService, userService)
	feedHandler := handlers.NewFeedHandler(feedService, postService)
	wineHandler := handlers.NewWineHandler(wineService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	searchSocketHandler := handlers.NewSearchSocketHandler(userService, cfg.JWTSecret, cfg.JWTIssuer, cfg.SearchDebounce, cfg.SearchLimit)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	// The websocket authenticates with ?token= since browsers cannot set headers on upgrade
	router.HandleFunc("/ws/search", searchSocketHandler.SearchWebSocketHandler)

	auth := middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

	// User routes
	userRoutes := router.PathPrefix("/users").Subrouter()
	userRoutes.Use(auth)
	userRoutes.HandleFunc("/me", userHandler.EnsureUserHandler).Methods("POST")
	userRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	userRoutes.HandleFunc("/me", userHandler.UpdateProfileHandler).Methods("PATCH")
	userRoutes.HandleFunc("/search", userHandler.SearchUsersHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/following", followHandler.ListFollowingHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/followers", followHandler.ListFollowersHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/follow", followHandler.IsFollowingHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/follow", followHandler.FollowHandler).Methods("POST")
	userRoutes.HandleFunc("/{id}/follow", followHandler.UnfollowHandler).Methods("DELETE")
	userRoutes.HandleFunc("/{id}/stats", followHandler.StatsHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/wines", wineHandler.ListUserWinesHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/posts", feedHandler.GetUserPostsHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/tasted", wishlistHandler.GetTastedHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/recommendations", wishlistHandler.RecommendHandler).Methods("POST")

	// Wine routes
	wineRoutes := router.PathPrefix("/wines").Subrouter()
	wineRoutes.Use(auth)
	wineRoutes.HandleFunc("", wineHandler.CreateWineHandler).Methods("POST")
	wineRoutes.HandleFunc("/{id}", wineHandler.GetWineHandler).Methods("GET")
	wineRoutes.HandleFunc("/{id}", wineHandler.UpdateWineHandler).Methods("PATCH")
	wineRoutes.HandleFunc("/{id}/photo", wineHandler.UploadPhotoHandler).Methods("POST")

	// Feed and post routes
	feedRoutes := router.NewRoute().Subrouter()
	feedRoutes.Use(auth)
	feedRoutes.HandleFunc("/feed", feedHandler.GetFeedHandler).Methods("GET")
	feedRoutes.HandleFunc("/posts/{id}/like", feedHandler.ToggleLikeHandler).Methods("POST")
	feedRoutes.HandleFunc("/posts/{id}/comments", feedHandler.AddCommentHandler).Methods("POST")

	// Wishlist routes
	feedRoutes.HandleFunc("/wishlist", wishlistHandler.GetWishlistHandler).Methods("GET")
	feedRoutes.HandleFunc("/wishlist/{wineId}", wishlistHandler.AddToWishlistHandler).Methods("PUT")
	feedRoutes.HandleFunc("/wishlist/{wineId}", wishlistHandler.RemoveFromWishlistHandler).Methods("DELETE")
	feedRoutes.HandleFunc("/wishlist/{wineId}/tasted", wishlistHandler.MarkTastedHandler).Methods("POST")

	// Notification routes
	feedRoutes.HandleFunc("/notifications", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	feedRoutes.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	feedRoutes.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}

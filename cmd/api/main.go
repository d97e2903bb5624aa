package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend/internal/admins"
	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/authapi"
	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/contact"
	"portfolio-backend/internal/db"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/notifications"
	"portfolio-backend/internal/posts"
	"portfolio-backend/internal/profile"
	"portfolio-backend/internal/projects"
	"portfolio-backend/internal/uploads"
	"portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "portfolio-backend",
		}
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	uploader := uploads.NewCloudinaryClient(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret)
	if uploader == nil {
		logger.Info("upload proxy disabled")
	} else {
		logger.Info("upload proxy enabled", slog.String("cloud", cfg.CloudName))
	}

	val := validation.New()
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	profileRepo := profile.NewRepository(cols.Profiles)
	profileService := profile.NewService(profileRepo, cfg.Timezone)
	profileHandler := profile.NewHandler(profileService, val, logger, cacheStore, cacheTTL)

	projectsRepo := projects.NewRepository(cols.Projects)
	projectsService := projects.NewService(projectsRepo, cfg.Timezone)
	projectsHandler := projects.NewHandler(projectsService, val, logger, cacheStore, cacheTTL)

	postsRepo := posts.NewRepository(cols.Posts)
	postsService := posts.NewService(postsRepo, cfg.Timezone)
	postsHandler := posts.NewHandler(postsService, val, logger, cacheStore, cacheTTL)

	adminsRepo := admins.NewRepository(cols.Admins)
	adminsService := admins.NewService(adminsRepo, cfg.Timezone, cfg.AdminUser, cfg.AdminPassword)
	authHandler := authapi.NewHandler(adminsService, jwtManager, val, logger, cfg.CookieSecure)

	contactRepo := contact.NewRepository(cols.ContactMessages)
	contactHandler := contact.NewHandler(contactRepo, val, logger, mailer, cfg.ContactRecipient, cfg.Timezone)

	uploadHandler := uploads.NewHandler(uploader, logger, cfg.UploadMaxBytes)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.FrontendOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Key"},
		AllowCredentials: true,
	}).Handler)
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	contactLimiter := middleware.NewRateLimiter(cfg.RateLimitContact, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitLogin, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	adminOnly := middleware.AdminAuth(cfg.AdminAPIKey, jwtManager)

	registerPostRoutes := func(api chi.Router, prefix string) {
		api.Get("/"+prefix, postsHandler.List)
		api.Get("/"+prefix+"/slug/{slug}", postsHandler.GetBySlug)
		api.Get("/"+prefix+"/{id}", postsHandler.Get)

		api.Group(func(protected chi.Router) {
			protected.Use(adminOnly)
			protected.Post("/"+prefix, postsHandler.Create)
			protected.Put("/"+prefix, postsHandler.UpdateFromBody)
			protected.Delete("/"+prefix, postsHandler.DeleteFromBody)
			protected.Post("/"+prefix+"/toggle", postsHandler.Toggle)
			protected.Put("/"+prefix+"/{id}", postsHandler.Update)
			protected.Delete("/"+prefix+"/{id}", postsHandler.Delete)
		})
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/profile", profileHandler.Get)

		api.Get("/projects", projectsHandler.List)
		api.Get("/projects/slug/{slug}", projectsHandler.GetBySlug)
		api.Get("/projects/{id}", projectsHandler.Get)

		// Legacy clients used two parallel blog families; both resolve to
		// the same consolidated resource.
		registerPostRoutes(api, "blog")
		registerPostRoutes(api, "blogs")

		api.With(contactLimiter.Middleware).Post("/contact", contactHandler.Create)

		api.With(loginLimiter.Middleware).Post("/auth", authHandler.Login)
		api.With(loginLimiter.Middleware).Post("/auth/login", authHandler.Login)
		api.Put("/auth", authHandler.ChangePassword)
		api.Put("/auth/password", authHandler.ChangePassword)
		api.Post("/auth/refresh", authHandler.Refresh)
		api.Post("/auth/signout", authHandler.Signout)

		api.Group(func(protected chi.Router) {
			protected.Use(adminOnly)
			protected.Put("/profile", profileHandler.Update)
			protected.Post("/projects", projectsHandler.Create)
			protected.Put("/projects", projectsHandler.UpdateFromBody)
			protected.Delete("/projects", projectsHandler.DeleteFromBody)
			protected.Put("/projects/{id}", projectsHandler.Update)
			protected.Delete("/projects/{id}", projectsHandler.Delete)
			protected.Post("/upload", uploadHandler.Upload)
			protected.Get("/contact/messages", contactHandler.List)
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}

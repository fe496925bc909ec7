package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spellwrite/internal/audio"
	"spellwrite/internal/cache"
	"spellwrite/internal/config"
	"spellwrite/internal/database"
	"spellwrite/internal/handlers"
	"spellwrite/internal/logger"
	"spellwrite/internal/practice"
	"spellwrite/internal/repository"
	"spellwrite/internal/security"
	"spellwrite/internal/service"
	"spellwrite/internal/templates"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sessionCleanupInterval = time.Hour
	workspaceSweepInterval = time.Minute
	audioPrewarmTimeout    = 2 * time.Minute
	shutdownTimeout        = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepTemplates,
		handlers.StepServices,
		handlers.StepAudio,
	)

	// Database
	status.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	log.Info("Database connection established", zap.String("type", cfg.DatabaseType))
	status.CompleteStep(handlers.StepDatabase)

	status.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	status.CompleteStep(handlers.StepMigrations)

	status.SetCurrentStep(handlers.StepTemplates)
	tmpl, err := templates.Load()
	if err != nil {
		log.Fatal("Failed to load templates", zap.Error(err))
	}
	status.CompleteStep(handlers.StepTemplates)

	// Services
	status.SetCurrentStep(handlers.StepServices)
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Topic cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewWordListRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	writingRepo := repository.NewWritingRepository(db)

	signer := security.NewTokenSigner(cfg.SessionSecret)
	authService := service.NewAuthService(userRepo, signer, cfg.SessionDuration)
	topicService := service.NewTopicService(topicRepo, cache.NewTopicCache(redisClient, cfg.TopicCacheTTL))

	emailService, err := service.NewEmailService(ctx, cfg.Email.AWSRegion, cfg.Email.FromEmail, cfg.Email.FromName, cfg.Email.AppBaseURL, cfg.Email.Debug)
	if err != nil {
		log.Fatal("Failed to initialize email service", zap.Error(err))
	}
	journalService := service.NewJournalService(writingRepo, userRepo, emailService)

	ttsService := audio.NewTTSService(cfg.AudioPath, cfg.TTSBaseURL)
	hub := service.NewSessionHub()

	registry := practice.NewRegistry(practice.Dependencies{
		Auth:      func(visitorID string) practice.AuthProvider { return hub.For(visitorID) },
		WordLists: listRepo,
		Speaker:   ttsService,
		Topics:    topicService,
		Entries:   journalService,
	})

	limiter := security.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	middleware := handlers.NewMiddleware(authService, hub, security.NewCSRFGenerator(cfg.SessionSecret), limiter)

	oauthProviders := handlers.OAuthProviders(cfg)
	practiceHandler := handlers.NewPracticeHandler(registry, ttsService, middleware, tmpl)
	authHandler := handlers.NewAuthHandler(authService, hub, middleware, tmpl, oauthProviders, cfg.OAuthRedirectBaseURL)
	status.CompleteStep(handlers.StepServices)

	// Setup routes
	mux := http.NewServeMux()
	handlers.PublicRoutes(mux, cfg.StaticFilesPath, status)
	handlers.Routes(mux, middleware, practiceHandler, authHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.Logging(status.RequireReady(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", "http://localhost"+server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		registry.Close()
		journalService.Wait()
		return err
	})

	g.Go(func() error {
		prewarmAudio(gctx, listRepo, ttsService)
		status.CompleteStep(handlers.StepAudio)
		status.MarkReady()
		log.Info("Server ready")
		return nil
	})

	g.Go(func() error {
		return cleanupExpiredSessions(gctx, authService)
	})

	g.Go(func() error {
		return registry.Run(gctx, cfg.WorkspaceIdleTimeout, workspaceSweepInterval)
	})

	g.Go(func() error {
		return sweepSessionHub(gctx, hub, cfg.WorkspaceIdleTimeout)
	})

	g.Go(func() error {
		return limiter.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
	log.Info("Server stopped")
}

// prewarmAudio generates speech for every stored word so the first
// "Listen" click does not wait on the TTS endpoint
func prewarmAudio(ctx context.Context, lists *repository.WordListRepository, tts *audio.TTSService) {
	ctx, cancel := context.WithTimeout(ctx, audioPrewarmTimeout)
	defer cancel()

	all, err := lists.ListAll(ctx)
	if err != nil {
		logger.Get().Warn("Failed to load word lists for audio", zap.Error(err))
		return
	}

	seen := make(map[string]bool)
	var words []string
	for _, list := range all {
		for _, word := range list.Words {
			if !seen[word] {
				seen[word] = true
				words = append(words, word)
			}
		}
	}

	if err := tts.Prewarm(ctx, words); err != nil {
		logger.Get().Warn("Failed to generate some audio files", zap.Error(err))
		return
	}
	logger.Get().Info("Audio files ready", zap.Int("words", len(words)))
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService) error {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := authService.CleanupExpiredSessions(ctx)
			if err != nil {
				logger.Get().Error("Error cleaning up expired sessions", zap.Error(err))
				continue
			}
			logger.Get().Info("Expired sessions cleaned up", zap.Int64("count", n))
		}
	}
}

// sweepSessionHub drops auth streams of visitors that went away
func sweepSessionHub(ctx context.Context, hub *service.SessionHub, idle time.Duration) error {
	ticker := time.NewTicker(workspaceSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := hub.Sweep(idle); n > 0 {
				logger.Get().Debug("Dropped idle auth streams", zap.Int("count", n))
			}
		}
	}
}

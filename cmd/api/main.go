package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"crowdfund/internal/adapter/repo"
	"crowdfund/internal/auth"
	"crowdfund/internal/contact"
	"crowdfund/internal/faq"
	"crowdfund/internal/funding"
	"crowdfund/internal/http/handlers"
	httpapi "crowdfund/internal/http/httpapi"
	"crowdfund/internal/infra"
	"crowdfund/internal/infra/credentials"
	"crowdfund/internal/infra/geoip"
	"crowdfund/internal/infra/google"
	"crowdfund/internal/middleware"
	"crowdfund/internal/onboarding"
	"crowdfund/internal/realtime"
	"crowdfund/internal/review"
	"crowdfund/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := infra.SetupTelemetry(ctx, cfg.OTelEnabled, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up telemetry")
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)
	creds := credentials.NewStore(runner)

	files, err := newStore(ctx, cfg, creds, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer countries.Close()

	googleClientID, err := creds.Resolve(ctx, credentials.ProviderGoogleOAuth, cfg.GoogleClientID)
	if err != nil {
		logger.Warn().Err(err).Msg("google client id lookup failed")
	}
	if googleClientID == "" {
		logger.Info().Msg("google sign-in disabled")
	}

	tokens := middleware.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}

	users := repo.NewUserRepository(runner)
	documents := repo.NewDocumentRepository(runner)
	campaigns := repo.NewCampaignRepository(runner)

	hub := realtime.NewHub(logger)
	defer hub.Close()
	events := realtime.NewPGPublisher(runner, logger)
	go func() {
		if err := realtime.Listen(ctx, pool, hub, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("campaign event listener stopped")
		}
	}()

	inTx := func(ctx context.Context, fn func(onboarding.Repos) error) error {
		return runner.InTx(ctx, func(tx infra.SQLExecutor) error {
			return fn(onboarding.Repos{
				Users:     repo.NewUserRepository(tx),
				Documents: repo.NewDocumentRepository(tx),
				Sessions:  repo.NewOnboardingRepository(tx),
			})
		})
	}

	app := &handlers.App{
		Auth: auth.NewService(users, google.NewVerifier(cfg.GoogleIssuer, googleClientID), tokens, logger),
		Onboarding: onboarding.NewService(repo.NewOnboardingRepository(runner), users, files, inTx, logger, onboarding.Options{
			TTL:      cfg.OnboardingTTL,
			MaxBytes: cfg.MaxDocumentBytes,
		}),
		Funding: funding.NewService(
			campaigns,
			repo.NewDonationRepository(runner),
			repo.NewExpenseRepository(runner),
			users,
			files,
			events,
			logger,
			funding.Options{DefaultCurrency: cfg.DefaultCurrency, MaxUploadBytes: cfg.MaxDocumentBytes},
		),
		Review:          review.NewService(users, documents, campaigns, files, events, logger),
		Contact:         contact.NewService(repo.NewContactRepository(runner), logger),
		FAQ:             faq.Default(),
		Stats:           repo.NewAnalyticsRepository(runner),
		Hub:             hub,
		Upgrader:        realtime.NewUpgrader(cfg.AllowedOrigins),
		DB:              pool,
		Logger:          logger,
		DefaultCurrency: cfg.DefaultCurrency,
		Shutdown:        ctx,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Tokens:          tokens,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countries.Lookup(),
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newStore(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger zerolog.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "supabase":
		key, err := creds.Resolve(ctx, credentials.ProviderSupabaseStorage, cfg.SupabaseKey)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("bucket", cfg.SupabaseBucket).Msg("using supabase storage")
		return storage.NewSupabaseStore(cfg.SupabaseURL, key, cfg.SupabaseBucket)
	default:
		logger.Info().Str("path", cfg.StoragePath).Msg("using filesystem storage")
		return storage.NewFileStore(cfg.StoragePath)
	}
}

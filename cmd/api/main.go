package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"songforge/internal/acquire"
	"songforge/internal/http/handlers"
	httpapi "songforge/internal/http/httpapi"
	"songforge/internal/infra"
	"songforge/internal/orchestrator"
	"songforge/internal/providers/artwork"
	"songforge/internal/providers/lyrics"
	"songforge/internal/providers/music"
	"songforge/internal/providers/voice"
	"songforge/internal/storage"
	"songforge/internal/store"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		// The service still answers submissions without a database; results
		// are simply not retrievable afterwards.
		logger.Warn().Err(err).Msg("database unavailable, continuing without persistence")
		dbpool = nil
	}
	if dbpool != nil {
		defer dbpool.Close()
	}
	jobStore := store.New(dbpool, logger)

	// Asset storage: object storage when configured, local files otherwise.
	var assets storage.Store
	staticDir := ""
	if cfg.MinioEndpoint != "" {
		assets, err = storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			BaseURL:   cfg.MinioBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect object storage")
		}
	} else {
		fs, err := storage.NewFileStore(cfg.GeneratedDir, cfg.PublicBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare generated-files directory")
		}
		assets = fs
		staticDir = cfg.GeneratedDir
		logger.Info().Str("dir", cfg.GeneratedDir).Msg("object storage not configured, serving assets from disk")
	}

	// Lyric writers form a chain: OpenAI, then Gemini, then a local template.
	onFallback := func(provider string) func(reason string, err error) {
		return func(reason string, err error) {
			logger.Warn().Err(err).
				Str("provider", provider).
				Str("reason", reason).
				Msg("lyric writer fell back")
		}
	}
	gemini := lyrics.NewGeminiWriter(lyrics.GeminiOptions{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		Fallback:   lyrics.NewStaticWriter(),
		OnFallback: onFallback("gemini"),
	})
	lyricWriter := lyrics.NewOpenAIWriter(lyrics.OpenAIOptions{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.OpenAIModel,
		BaseURL:    cfg.OpenAIBaseURL,
		Fallback:   gemini,
		OnFallback: onFallback("openai"),
	})

	fetcher := acquire.NewYtdlpFetcher(acquire.Options{
		YtdlpPath: cfg.YtdlpPath,
		Store:     assets,
		Logger:    logger,
	})

	orc, err := orchestrator.New(orchestrator.Options{
		Store: jobStore,
		Music: music.NewClient(music.Options{
			APIKey:  cfg.MusicAPIKey,
			BaseURL: cfg.MusicBaseURL,
			Model:   cfg.MusicModel,
		}),
		Voice: voice.NewClient(voice.Options{
			APIKey:  cfg.VoiceAPIKey,
			BaseURL: cfg.VoiceBaseURL,
		}),
		Lyrics: lyricWriter,
		Artwork: artwork.NewClient(artwork.Options{
			APIKey:  cfg.ArtworkAPIKey,
			BaseURL: cfg.ArtworkBaseURL,
		}),
		Acquire:      fetcher,
		Assets:       assets,
		Runner:       orchestrator.GoRunner{Logger: logger},
		Logger:       logger,
		Prober:       acquire.NewFfprobeProber(cfg.FfprobePath, nil),
		PollInterval: cfg.PollInterval,
		PollAttempts: cfg.PollAttempts,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	app := handlers.NewApp(orc, jobStore, logger)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		StaticDir:      staticDir,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      120,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/socialforge-go/internal/config"
	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/editor"
	"github.com/kapu/socialforge-go/internal/metrics"
	"github.com/kapu/socialforge-go/internal/preview"
	"github.com/kapu/socialforge-go/internal/profile"
	"github.com/kapu/socialforge-go/internal/server"
	"github.com/kapu/socialforge-go/internal/service/ai"
	"github.com/kapu/socialforge-go/internal/service/blob"
	"github.com/kapu/socialforge-go/internal/service/cache"
	"go.uber.org/zap"
)

// Container bundles the assembled services of one process.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store   *profile.Store
	Editor  *editor.Editor
	Server  *server.Server
	Metrics *metrics.Metrics

	closers []func()
}

// Handler returns the HTTP handler of the assembled server.
func (c *Container) Handler() http.Handler {
	return c.Server.Handler()
}

// Close releases resources in reverse construction order. Pending bio jobs
// are cancelled.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles every service. External services are optional: without a
// Gemini key the bio generator answers with its fallback text, and an
// unreachable Redis disables the bio cache.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	m := metrics.New()

	// AI stack
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.Model,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	bioCfg := ai.BioGeneratorConfig{
		Timeout:  cfg.Bio.Timeout,
		Observer: m,
	}
	if cfg.Redis.Enabled {
		bioCache, cacheErr := cache.NewBioCache(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Bio.CacheTTL,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Bio cache disabled", zap.Error(cacheErr))
		} else {
			bioCfg.Store = bioCache
			closers = append(closers, func() {
				_ = bioCache.Close()
			})
		}
	}

	var generator ai.TextGenerator
	if modelManager.Available() {
		generator = modelManager
	}
	bios := ai.NewBioGenerator(generator, bioCfg, logger)

	// Profile state and panels
	store := profile.NewStore(domain.DefaultProfile(), logger)
	blobs := blob.NewStore(cfg.Upload.MaxBytes, logger)
	ed := editor.New(store, editor.Config{
		Bios:     bios,
		Images:   blobs,
		Observer: m,
	}, logger)
	closers = append(closers, ed.Close)

	renderer, err := preview.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create preview renderer: %w", err)
	}

	srv, err := server.New(server.Deps{
		Store:          store,
		Editor:         ed,
		Bios:           bios,
		Blobs:          blobs,
		Preview:        renderer,
		Metrics:        m,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		LiveBio:        modelManager.Available(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("Application assembled",
		zap.Bool("live_bio", modelManager.Available()),
		zap.Bool("bio_cache", bioCfg.Store != nil),
		zap.Int64("upload_max_bytes", cfg.Upload.MaxBytes),
	)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Editor:  ed,
		Server:  srv,
		Metrics: m,
		closers: closers,
	}, nil
}

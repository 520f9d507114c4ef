package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/raushankrgupta/product-page-generator/ai"
	"github.com/raushankrgupta/product-page-generator/api"
	"github.com/raushankrgupta/product-page-generator/config"
	"github.com/raushankrgupta/product-page-generator/editor"
	"github.com/raushankrgupta/product-page-generator/generator"
	"github.com/raushankrgupta/product-page-generator/imaging"
	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/publish"
	"github.com/raushankrgupta/product-page-generator/scrapers"
	"github.com/raushankrgupta/product-page-generator/scrapers/base"
	"github.com/raushankrgupta/product-page-generator/settings"
	"github.com/raushankrgupta/product-page-generator/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// App is the wired service shared by the server and the CLIs
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Generator *generator.Generator
	Session   *editor.Session
	Settings  settings.Provider
	Ledger    publish.Ledger
	Publisher *publish.ShopifyPublisher
	Proxy     *api.ScrapeProxy

	closers []func(context.Context) error
}

// New builds every component from cfg. Missing Gemini credentials are not fatal:
// generation and translation then fail with ai.ErrNotConfigured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	var mongoDB *mongo.Database
	if cfg.SettingsBackend == "mongo" || cfg.LedgerBackend == "mongo" {
		client, err := utils.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Disconnect)
		mongoDB = client.Database(cfg.MongoDatabase)
		logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
	}

	store, err := app.settingsProvider(ctx, cfg, mongoDB)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Settings = store

	if cfg.LedgerBackend == "mongo" {
		app.Ledger = publish.NewMongoLedger(mongoDB)
	} else {
		app.Ledger = publish.NewMemoryLedger()
	}

	app.Publisher = publish.NewShopifyPublisher(store, nil, cfg.ShopifyAPIVersion, logger).WithLedger(app.Ledger)
	if cfg.SendGridAPIKey != "" && cfg.NotifyEmail != "" {
		mailer := utils.NewMailer(cfg.SendGridAPIKey, "Product Page Generator", cfg.NotifyFrom, logger)
		app.Publisher.WithNotifier(publish.NewEmailNotifier(mailer, cfg.NotifyEmail))
	}

	proxyClient := base.NewProxyClient(base.ProxyOptions{
		Endpoint:     cfg.ProxyEndpoint,
		PageTimeout:  cfg.ProxyPageTimeout,
		ImageTimeout: cfg.ProxyImageTimeout,
		RateLimit:    cfg.ProxyRateLimit,
		Burst:        cfg.ProxyBurst,
		TokenSource:  proxyTokenSource(cfg.JWTSecret),
		Logger:       logger,
	})
	orchestrator := scrapers.NewOrchestrator(proxyClient, logger)

	retry := utils.RetryPolicy{
		MaxRetries:   cfg.RetryMax,
		InitialDelay: cfg.RetryInitialDelay,
		Factor:       cfg.RetryFactor,
	}

	genOpts := generator.Options{
		DefaultLanguage:   cfg.DefaultLanguage,
		ResolveShortLinks: cfg.ResolveShortLinks,
	}

	gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel, logger)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn("GEMINI_API_KEY is not set; generation and translation are disabled")
		app.Generator = generator.New(orchestrator, nil, nil, genOpts, logger)
		app.Session = editor.NewSession(nil, app.Publisher, logger).WithCapacity(cfg.SessionCapacity)
	case err != nil:
		app.Close(ctx)
		return nil, err
	default:
		app.closers = append(app.closers, func(context.Context) error { return gemini.Close() })

		images, err := imageStore(ctx, cfg)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		var rasterizer imaging.Rasterizer
		if cfg.ChromeRasterizer {
			rasterizer = imaging.NewChromeRasterizer(30 * time.Second)
		}

		writer := ai.NewCopywriter(gemini, retry, logger)
		pipeline := imaging.NewPipeline(proxyClient, gemini, imaging.NewConverter(rasterizer), images, retry, logger)
		app.Generator = generator.New(orchestrator, writer, pipeline, genOpts, logger)
		app.Session = editor.NewSession(writer, app.Publisher, logger).WithCapacity(cfg.SessionCapacity)
	}

	app.Proxy = api.NewScrapeProxy(cfg.ScraperAPIKey, cfg.ScraperAPIURL, logger)
	return app, nil
}

// Handler returns the HTTP API of the app
func (a *App) Handler() http.Handler {
	h := api.NewHandlers(a.Generator, a.Session, a.Settings, a.Ledger, a.Logger)
	return api.NewRouter(h, a.Proxy, api.RouterOptions{JWTSecret: a.Config.JWTSecret}, a.Logger)
}

// Serve accepts connections on ln until ctx is done. It then lets in-flight requests
// finish within drain and only afterwards closes the app's connections.
func (a *App) Serve(ctx context.Context, server *http.Server, ln net.Listener, drain time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if closeErr := a.Close(context.Background()); closeErr != nil {
			a.Logger.Error("failed to close connections", "error", closeErr)
		}
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		a.Logger.Error("server shutdown failed", "error", err)
	}
	if closeErr := a.Close(context.Background()); closeErr != nil {
		a.Logger.Error("failed to close connections", "error", closeErr)
	}
	return err
}

// Close releases external connections in reverse order of creation
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) settingsProvider(ctx context.Context, cfg *config.Config, db *mongo.Database) (settings.Provider, error) {
	switch cfg.SettingsBackend {
	case "memory":
		return settings.NewMemoryStore(models.Settings{}), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return settings.NewRedisStore(client), nil
	case "mongo":
		return settings.NewMongoStore(db), nil
	default:
		return settings.NewFileStore(cfg.SettingsFile, cfg.SettingsSecret), nil
	}
}

func imageStore(ctx context.Context, cfg *config.Config) (imaging.ImageStore, error) {
	if cfg.AWSBucketName == "" {
		return imaging.DataURLStore{}, nil
	}
	uploader, err := utils.NewS3Uploader(ctx, cfg.AWSRegion, cfg.AWSBucketName, cfg.S3PresignTTL)
	if err != nil {
		return nil, err
	}
	return imaging.NewS3Store(uploader, "generated"), nil
}

// proxyTokenSource mints short-lived tokens so the proxy client passes the API auth
func proxyTokenSource(secret string) func() (string, error) {
	if secret == "" {
		return nil
	}
	return func() (string, error) {
		return utils.GenerateToken(secret, "proxy-client", 5*time.Minute)
	}
}

package generator

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/product-page-generator/ai"
	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/utils"
	"golang.org/x/sync/errgroup"
)

// Scraper turns a product URL into source material; it never fails
type Scraper interface {
	ScrapeProduct(ctx context.Context, url string, status func(string)) *models.ScrapedSource
}

// CopyWriter produces the product text
type CopyWriter interface {
	Generate(ctx context.Context, prompt string) (*models.GeneratedCopy, error)
}

// ImageProcessor produces the product images; it never fails
type ImageProcessor interface {
	Process(ctx context.Context, src models.ScrapedSource, status func(string)) []models.ImageResult
}

// Options tune a Generator
type Options struct {
	DefaultLanguage   string
	ResolveShortLinks bool
	// LinkClient is used to follow share links; nil uses a default client
	LinkClient *http.Client
}

// Generator runs one product page generation from user input
type Generator struct {
	scraper Scraper
	writer  CopyWriter
	images  ImageProcessor
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

// New builds a Generator. writer and images may be nil when the AI service is not configured,
// in which case every run fails with ai.ErrNotConfigured.
func New(scraper Scraper, writer CopyWriter, images ImageProcessor, opts Options, logger *slog.Logger) *Generator {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "fr"
	}
	return &Generator{
		scraper: scraper,
		writer:  writer,
		images:  images,
		opts:    opts,
		logger:  logger.With("component", "generator"),
		now:     time.Now,
	}
}

// Generate validates req, gathers source material and produces a complete record.
// Invalid input fails before any network call.
func (g *Generator) Generate(ctx context.Context, req models.GenerationRequest, status func(string)) (*models.ProductRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.writer == nil || g.images == nil {
		return nil, ai.ErrNotConfigured
	}
	if req.Mode == "" {
		req.Mode = models.ModeURL
	}
	language := req.Language
	if language == "" {
		language = g.opts.DefaultLanguage
	}
	status = serialize(status)

	var (
		source *models.ScrapedSource
		prompt string
	)
	switch req.Mode {
	case models.ModeTitle:
		title := strings.TrimSpace(req.Title)
		source = &models.ScrapedSource{Title: title, ImageURLs: []string{}}
		prompt = ai.CopyPrompt(title, language)
	case models.ModeManual:
		title := strings.TrimSpace(req.Title)
		source = &models.ScrapedSource{Title: title, ImageURLs: []string{}}
		prompt = ai.ManualPrompt(title, req.Notes, language)
	default:
		target := g.resolve(ctx, strings.TrimSpace(req.URL))
		source = g.scraper.ScrapeProduct(ctx, target, status)
		prompt = ai.CopyPrompt(source.Title, language)
	}

	status("Generating AI content...")

	var (
		text   *models.GeneratedCopy
		images []models.ImageResult
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		text, err = g.writer.Generate(egCtx, prompt)
		return err
	})
	eg.Go(func() error {
		images = g.images.Process(egCtx, *source, status)
		return nil
	})
	if err := eg.Wait(); err != nil {
		g.logger.Error("generation failed", "mode", req.Mode, "error", err)
		return nil, err
	}

	now := g.now()
	record := &models.ProductRecord{
		ID:            uuid.NewString(),
		GeneratedCopy: *text,
		Images:        images,
		Language:      language,
		Mode:          req.Mode,
		SourceURL:     strings.TrimSpace(req.URL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if record.Title == "" {
		record.Title = source.Title
	}
	record.Normalize()

	g.logger.Info("product generated",
		"id", record.ID,
		"mode", req.Mode,
		"title", record.Title,
		"images", len(record.Images),
	)
	status("✅ Product generated successfully!")
	return record, nil
}

func (g *Generator) resolve(ctx context.Context, target string) string {
	if !g.opts.ResolveShortLinks || !utils.IsShortLink(target) {
		return target
	}
	resolved, err := utils.ResolveShortenedURL(ctx, g.opts.LinkClient, target)
	if err != nil {
		g.logger.Warn("could not resolve short link", "url", target, "error", err)
		return target
	}
	return resolved
}

func serialize(status func(string)) func(string) {
	if status == nil {
		return func(string) {}
	}
	var mu sync.Mutex
	return func(m string) {
		mu.Lock()
		defer mu.Unlock()
		status(m)
	}
}

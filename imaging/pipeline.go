package imaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/raushankrgupta/product-page-generator/ai"
	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/utils"
)

// Slots is the number of images a product page carries
const Slots = 4

// ImageFetcher downloads a remote image
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (*models.InlineImage, error)
}

// StatusFunc receives human-readable progress messages. It may be nil.
type StatusFunc = func(message string)

// Pipeline turns scraped image URLs into enhanced product images, generating
// replacements for whatever could not be enhanced.
type Pipeline struct {
	fetcher   ImageFetcher
	model     ai.ImageModel
	converter *Converter
	store     ImageStore
	retry     utils.RetryPolicy
	logger    *slog.Logger
}

func NewPipeline(fetcher ImageFetcher, model ai.ImageModel, converter *Converter, store ImageStore, retry utils.RetryPolicy, logger *slog.Logger) *Pipeline {
	if converter == nil {
		converter = NewConverter(nil)
	}
	if store == nil {
		store = DataURLStore{}
	}
	logger = logger.With("component", "image_pipeline")
	retry.Logger = logger
	return &Pipeline{
		fetcher:   fetcher,
		model:     model,
		converter: converter,
		store:     store,
		retry:     retry,
		logger:    logger,
	}
}

// Process never fails as a whole. Without source URLs it returns exactly 4 slots,
// failed ones marked "failed". With source URLs it returns the successful
// enhancements plus as many backfilled generations as succeed, at most 4.
func (p *Pipeline) Process(ctx context.Context, src models.ScrapedSource, status StatusFunc) []models.ImageResult {
	status = serialize(status)

	if len(src.ImageURLs) == 0 {
		return p.generateAll(ctx, src.Title, status)
	}

	status(fmt.Sprintf("Processing %d scraped images...", len(src.ImageURLs)))
	urls := src.ImageURLs
	if len(urls) > Slots {
		urls = urls[:Slots]
	}

	results := make([]models.ImageResult, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			status(fmt.Sprintf("Enhancing image %d/%d...", i+1, len(urls)))

			ref, err := p.enhance(ctx, url, i)
			if err != nil {
				p.logger.Warn("skipping image", "index", i+1, "url", url, "error", err)
				results[i] = models.ImageResult{OriginalURL: url}
				return
			}
			results[i] = models.ImageResult{OriginalURL: url, EnhancedURL: &ref}
		}(i, url)
	}
	wg.Wait()

	valid := make([]models.ImageResult, 0, Slots)
	for _, r := range results {
		if r.Succeeded() {
			valid = append(valid, r)
		}
	}

	needed := Slots - len(valid)
	if needed <= 0 {
		return valid
	}

	status(fmt.Sprintf("Generating %d additional images...", needed))
	for i := 0; i < needed; i++ {
		ref, err := p.generate(ctx, ai.BackfillPrompt(src.Title))
		if err != nil {
			p.logger.Warn("failed to generate additional image", "error", err)
			continue
		}
		valid = append(valid, models.ImageResult{OriginalURL: models.OriginGenerated, EnhancedURL: &ref})
	}
	return valid
}

func (p *Pipeline) generateAll(ctx context.Context, title string, status StatusFunc) []models.ImageResult {
	status(fmt.Sprintf("No images found, generating %d AI images...", Slots))

	results := make([]models.ImageResult, Slots)
	var wg sync.WaitGroup
	for i := 0; i < Slots; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status(fmt.Sprintf("Generating image %d/%d...", i+1, Slots))

			ref, err := p.generate(ctx, ai.GeneratePrompt(title, i))
			if err != nil {
				p.logger.Warn("failed to generate image", "index", i+1, "error", err)
				results[i] = models.ImageResult{OriginalURL: models.OriginFailed}
				return
			}
			results[i] = models.ImageResult{OriginalURL: models.OriginGenerated, EnhancedURL: &ref}
		}(i)
	}
	wg.Wait()
	return results
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	img, err := utils.Retry(ctx, p.retry, func(ctx context.Context) (*models.InlineImage, error) {
		return p.model.GenerateImage(ctx, prompt, nil)
	})
	if err != nil {
		return "", err
	}
	return p.store.Save(ctx, *img)
}

func (p *Pipeline) enhance(ctx context.Context, url string, index int) (string, error) {
	raw, err := utils.Retry(ctx, p.retry, func(ctx context.Context) (*models.InlineImage, error) {
		return p.fetcher.FetchImage(ctx, url)
	})
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	if !IsImage(raw.MIMEType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, raw.MIMEType)
	}

	converted, err := p.converter.Convert(ctx, *raw)
	if err != nil {
		return "", err
	}

	prompt := ai.EnhancePrompt(index)
	img, err := utils.Retry(ctx, p.retry, func(ctx context.Context) (*models.InlineImage, error) {
		return p.model.GenerateImage(ctx, prompt, converted)
	})
	if err != nil {
		return "", fmt.Errorf("enhance failed: %w", err)
	}
	return p.store.Save(ctx, *img)
}

func serialize(status StatusFunc) StatusFunc {
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

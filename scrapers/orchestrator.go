package scrapers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/scrapers/aliexpress"
	"github.com/raushankrgupta/product-page-generator/scrapers/base"
	"github.com/raushankrgupta/product-page-generator/utils"
)

// ErrBlockedPage is returned when the proxy hands back an anti-bot page
var ErrBlockedPage = errors.New("blocked by anti-bot page")

// remoteStrategy fetches the page through the proxy and runs the site extractor on it
type remoteStrategy struct {
	name    string
	status  string
	premium bool
	fetcher PageFetcher
}

func (s *remoteStrategy) Name() string   { return s.name }
func (s *remoteStrategy) Status() string { return s.status }

func (s *remoteStrategy) Scrape(ctx context.Context, url string) (*models.ScrapedSource, error) {
	html, err := s.fetcher.FetchPage(ctx, url, s.premium)
	if err != nil {
		return nil, err
	}
	if base.IsBlockedPage(html) {
		return nil, ErrBlockedPage
	}
	return aliexpress.NewExtractor(aliexpress.ProfileFor(url)).Extract(html)
}

// NewPremiumStrategy renders the page with the proxy's premium options
func NewPremiumStrategy(fetcher PageFetcher) Strategy {
	return &remoteStrategy{
		name:    "premium",
		status:  "🌐 Scraping with premium settings...",
		premium: true,
		fetcher: fetcher,
	}
}

// NewStandardStrategy renders the page with default proxy options
func NewStandardStrategy(fetcher PageFetcher) Strategy {
	return &remoteStrategy{
		name:    "standard",
		status:  "🌐 Trying standard scraping...",
		fetcher: fetcher,
	}
}

type urlFallbackStrategy struct{}

// NewURLFallbackStrategy derives a title from the URL without any network call
func NewURLFallbackStrategy() Strategy { return urlFallbackStrategy{} }

func (urlFallbackStrategy) Name() string   { return "url_fallback" }
func (urlFallbackStrategy) Status() string { return "⚠️ Using fallback extraction (limited data)" }

func (urlFallbackStrategy) Scrape(_ context.Context, url string) (*models.ScrapedSource, error) {
	src := aliexpress.FallbackFromURL(url)
	return &src, nil
}

// Orchestrator runs the strategies in priority order and stops at the first success
type Orchestrator struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewOrchestrator returns the premium, standard, URL-fallback chain
func NewOrchestrator(fetcher PageFetcher, logger *slog.Logger) *Orchestrator {
	return NewOrchestratorWith(logger,
		NewPremiumStrategy(fetcher),
		NewStandardStrategy(fetcher),
		NewURLFallbackStrategy(),
	)
}

// NewOrchestratorWith builds an orchestrator over a custom strategy list
func NewOrchestratorWith(logger *slog.Logger, strategies ...Strategy) *Orchestrator {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Orchestrator{
		strategies: strategies,
		logger:     logger.With("component", "scraper"),
	}
}

// ScrapeProduct never fails: when every remote strategy fails the URL fallback answers.
func (o *Orchestrator) ScrapeProduct(ctx context.Context, url string, status StatusFunc) *models.ScrapedSource {
	for _, s := range o.strategies {
		if status != nil {
			status(s.Status())
		}
		src, err := s.Scrape(ctx, url)
		if err == nil && src != nil {
			o.logger.Info("scrape succeeded",
				"strategy", s.Name(),
				"url", url,
				"title", src.Title,
				"images", len(src.ImageURLs),
			)
			return src
		}
		o.logger.Warn("scrape strategy failed", "strategy", s.Name(), "url", url, "error", err)
	}

	// only reachable with a custom chain lacking a fallback
	src := aliexpress.FallbackFromURL(url)
	return &src
}

package scrapers

import (
	"context"

	"github.com/raushankrgupta/product-page-generator/models"
)

// Strategy is one way of turning a product URL into a ScrapedSource
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string
	// Status is the progress message shown before the strategy runs
	Status() string
	// Scrape returns the source or the reason the next strategy should be tried
	Scrape(ctx context.Context, url string) (*models.ScrapedSource, error)
}

// StatusFunc receives human-readable progress messages. It may be nil.
type StatusFunc = func(message string)

// PageFetcher is the remote page fetch the scraping strategies rely on
type PageFetcher interface {
	FetchPage(ctx context.Context, url string, premium bool) (string, error)
}

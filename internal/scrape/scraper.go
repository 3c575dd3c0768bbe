package scrape

import (
	"context"

	"go.uber.org/zap"
)

// TextFetcher is the single network primitive the extractors build on.
type TextFetcher interface {
	FetchText(ctx context.Context, url, desc string) (string, error)
}

// Scraper extracts channel, playlist, video, and caption data from the
// public site surfaces. Extraction is stateless per call; one Scraper may
// serve many concurrent crawls.
type Scraper struct {
	fetcher TextFetcher
	logger  *zap.Logger
}

// NewScraper constructs a Scraper on top of a fetcher.
func NewScraper(fetcher TextFetcher, logger *zap.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		logger:  logger,
	}
}

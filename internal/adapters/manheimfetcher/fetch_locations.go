package manheimfetcher

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

// FetchLocations читает первую страницу, определяет число страниц и разбирает каждую.
// Возвращает сырые записи без дедупликации и число обойденных страниц.
func (a *ManheimFetcherAdapter) FetchLocations(ctx context.Context) ([]domain.AuctionLocation, int, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{"component": "ManheimFetcherAdapter"})

	first, err := a.fetchPage(ctx, a.indexURL())
	if err != nil {
		return nil, 0, err
	}

	total := TotalPages(first)
	fetchLogger.Info("Detected pages of US locations", port.Fields{"pages": total, "url": a.indexURL()})

	var locations []domain.AuctionLocation
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, n - 1, err
		}

		doc := first
		if n > 1 {
			if doc, err = a.fetchPage(ctx, a.pageURL(n)); err != nil {
				return nil, n - 1, err
			}
		}

		found := ParseLocationsPage(doc, a.baseURL)
		fetchLogger.Debug("Page scraped", port.Fields{"page": n, "locations": len(found)})
		locations = append(locations, found...)
	}

	return locations, total, nil
}

// fetchPage загружает страницу клоном коллектора и отдает ее как goquery документ
func (a *ManheimFetcherAdapter) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	collector := a.collector.Clone()

	var body []byte
	var fetchErr error

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("request to %s failed with status %d: %w", pageURL, r.StatusCode, err)
	})

	if err := collector.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("empty response from %s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}

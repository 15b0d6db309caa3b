package manheimfetcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

const (
	DefaultBaseURL   = "https://site.manheim.com"
	DefaultUserAgent = "GMTV-Manheim-Locations-Scraper/6.0"
	IndexPath        = "/en/country/us-locations"
)

type Config struct {
	BaseURL   string
	UserAgent string
	// Delay пауза между страницами
	Delay time.Duration
}

// ManheimFetcherAdapter обходит постраничный список площадок Manheim в США
type ManheimFetcherAdapter struct {
	// родительский коллектор, клоны разделяют с ним лимиты
	collector *colly.Collector
	baseURL   string
}

func NewManheimFetcherAdapter(cfg Config) (*ManheimFetcherAdapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	c := colly.NewCollector(colly.UserAgent(cfg.UserAgent), colly.AllowURLRevisit())

	// одна страница за раз с паузой
	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
	})
	if err != nil {
		return nil, fmt.Errorf("ManheimFetcherAdapter: failed to set limit rule: %w", err)
	}

	extensions.Referer(c)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en")
	})

	return &ManheimFetcherAdapter{
		collector: c,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (a *ManheimFetcherAdapter) indexURL() string {
	return a.baseURL + IndexPath
}

func (a *ManheimFetcherAdapter) pageURL(n int) string {
	if n <= 1 {
		return a.indexURL()
	}
	return fmt.Sprintf("%s/page/%d", a.indexURL(), n)
}

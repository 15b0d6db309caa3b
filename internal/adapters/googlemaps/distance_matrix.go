package googlemaps_client

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://maps.googleapis.com"
	distanceMatrixPath = "/maps/api/distancematrix/json"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond ограничение частоты запросов к API, 0 - без ограничения
	RequestsPerSecond float64
}

// DistanceMatrixClient - реализация DistanceMatrixPort поверх Google Distance Matrix.
type DistanceMatrixClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewDistanceMatrixClient(cfg Config) *DistanceMatrixClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &DistanceMatrixClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Closest один запрос на все адреса, выбирается элемент с минимальной дистанцией
func (c *DistanceMatrixClient) Closest(ctx context.Context, origin string, destinations []string) (*domain.DistanceMatch, error) {
	if c.apiKey == "" || len(destinations) == 0 {
		return nil, nil
	}

	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "DistanceMatrixClient",
		"destinations": len(destinations),
	})

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("origins", origin)
	params.Set("destinations", strings.Join(destinations, "|"))
	params.Set("mode", "driving")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+distanceMatrixPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read distance matrix response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("distance matrix returned invalid JSON (status %d)", resp.StatusCode)
	}

	match := bestElement(gjson.ParseBytes(body), destinations)
	if match == nil {
		clientLogger.Debug("No reachable destinations", port.Fields{"api_status": gjson.GetBytes(body, "status").String()})
	}
	return match, nil
}

// bestElement разбирает ответ API, nil если статус не OK или нет доступных элементов
func bestElement(data gjson.Result, destinations []string) *domain.DistanceMatch {
	if data.Get("status").String() != "OK" {
		return nil
	}
	elements := data.Get("rows.0.elements").Array()

	bestIdx, bestMeters := -1, math.Inf(1)
	for i, el := range elements {
		if i >= len(destinations) || el.Get("status").String() != "OK" {
			continue
		}
		if m := el.Get("distance.value").Float(); m < bestMeters {
			bestIdx, bestMeters = i, m
		}
	}
	if bestIdx < 0 {
		return nil
	}

	return &domain.DistanceMatch{
		Address:        destinations[bestIdx],
		DistanceMeters: bestMeters,
		DurationText:   elements[bestIdx].Get("duration.text").String(),
	}
}

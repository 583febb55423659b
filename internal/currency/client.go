// Package currency получает курсы валют из внешнего сервиса и кеширует
// их в Redis, чтобы не ходить за курсом при каждом платеже.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kovalevadr/course-platform/internal/apperr"
)

// RateCache описывает кеш курсов валют.
type RateCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

type Client struct {
	apiURL     string
	cache      RateCache
	cacheTTL   time.Duration
	httpClient *http.Client
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// NewClient создаёт новый клиент курсов валют. В приложении кешем служит
// cache.Cache, в тестах — любая реализация RateCache.
func NewClient(apiURL string, rateCache RateCache, cacheTTL, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:     apiURL,
		cache:      rateCache,
		cacheTTL:   cacheTTL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetRate возвращает курс конвертации из валюты from в валюту to.
// Недоступность сервиса курсов оборачивается в apperr.ErrRateUnavailable.
func (c *Client) GetRate(ctx context.Context, from, to string) (float64, error) {
	const op = "currency.GetRate"

	cacheKey := fmt.Sprintf("rate:%s:%s", from, to)
	if c.cache != nil {
		var cached float64
		if found, err := c.cache.Get(cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	reqURL := fmt.Sprintf("%s?base=%s&symbols=%s", c.apiURL, url.QueryEscape(from), url.QueryEscape(to))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, apperr.ErrRateUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s: %w: unexpected status %s", op, apperr.ErrRateUnavailable, resp.Status)
	}

	var rates ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, apperr.ErrRateUnavailable, err)
	}
	rate, ok := rates.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%s: %w: no rate for %s", op, apperr.ErrRateUnavailable, to)
	}

	if c.cache != nil {
		_ = c.cache.Set(cacheKey, rate, c.cacheTTL)
	}
	return rate, nil
}

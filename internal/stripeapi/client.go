// Package stripeapi реализует минимальный клиент Stripe API:
// создание цены, создание сессии Stripe Checkout и чтение её статуса.
package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kovalevadr/course-platform/internal/apperr"
)

const defaultAPIURL = "https://api.stripe.com/v1"

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Stripe.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithAPIURL переопределяет адрес API. Используется в тестах.
func (c *Client) WithAPIURL(apiURL string) *Client {
	c.apiURL = apiURL
	return c
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.New().String())
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrPaymentProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrPaymentProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: %s: %s", apperr.ErrPaymentProvider, resp.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: unexpected status %s", apperr.ErrPaymentProvider, resp.Status)
	}
	return json.Unmarshal(body, out)
}

// CreatePrice создаёт цену продукта в минимальных единицах валюты.
func (c *Client) CreatePrice(ctx context.Context, currency string, unitAmount int64, productName string) (*Price, error) {
	form := url.Values{}
	form.Set("currency", strings.ToLower(currency))
	form.Set("unit_amount", strconv.FormatInt(unitAmount, 10))
	form.Set("product_data[name]", productName)

	var price Price
	if err := c.postForm(ctx, "/prices", form, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// CreateCheckoutSession создаёт сессию Stripe Checkout на единичную
// покупку по ранее созданной цене.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID, successURL string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")

	var session CheckoutSession
	if err := c.postForm(ctx, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession возвращает текущее состояние сессии оплаты.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.get(ctx, "/checkout/sessions/"+url.PathEscape(sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

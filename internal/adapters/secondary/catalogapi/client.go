package catalogapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/retry"
	"github.com/admin/tg-bots/organic-shop/internal/ports/service"
)

const (
	telegramUsersPath = "telegram-users/"
	productsPath      = "products/"
)

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// StatusError неуспешный HTTP-статус от API каталога
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog API error [status=%d]: %s", e.StatusCode, e.Body)
}

// Retryable 5xx, 408 и 429 имеет смысл повторить, остальные 4xx - нет
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests
}

// Client HTTP-клиент API каталога. Выполняет ровно одну попытку на вызов,
// неповторяемые ответы помечены retry.Permanent.
type Client struct {
	baseURL    string
	HTTPClient *http.Client
	Log        *slog.Logger
}

func NewClient(cfg *Config, log *slog.Logger) service.ICatalogClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.SkipSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		HTTPClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		Log: log,
	}
}

// UpsertUser POST /telegram-users/, 200 и 201 одинаково успешны
func (c *Client) UpsertUser(ctx context.Context, in domain.UserUpsert) error {
	body, err := json.Marshal(in)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal upsert: %w", err))
	}

	status, _, err := c.do(ctx, http.MethodPost, c.baseURL+telegramUsersPath, body)
	if err != nil {
		return err
	}

	c.Log.Debug("user upserted in catalog", "external_id", in.ExternalID, "status_code", status)
	return nil
}

// GetProduct GET /products/{id}/, 404 -> domain.ErrNotFound
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.ProductView, error) {
	url := c.baseURL + productsPath + strconv.FormatInt(id, 10) + "/"

	_, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	var product domain.ProductView
	if err := json.Unmarshal(body, &product); err != nil {
		c.Log.Debug("failed to unmarshal catalog product",
			"error", err,
			"body_preview", truncateString(string(body), 200),
		)
		return nil, fmt.Errorf("catalog API unmarshal failed: %w", err)
	}
	return &product, nil
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("catalog API request %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read catalog API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Log.Debug("catalog API returned non-2xx status",
			"method", method,
			"url", url,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncateString(string(body), 500)}
		if !statusErr.Retryable() {
			return resp.StatusCode, body, retry.Permanent(statusErr)
		}
		return resp.StatusCode, body, statusErr
	}

	return resp.StatusCode, body, nil
}

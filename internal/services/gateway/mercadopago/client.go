package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"ravehub/monitoring"
	"ravehub/utils"
)

type ClientConfig struct {
	// BaseURL is the MercadoPago API base url.
	BaseURL string `json:"baseUrl"`

	// AccessToken authenticates server-side API calls.
	AccessToken string `json:"accessToken"`

	// WebhookKey is the shared secret used to verify webhook signatures.
	WebhookKey string `json:"webhookKey"`

	// PublicBaseURL is this deployment's public base url, used for
	// callback and notification urls on preferences.
	PublicBaseURL string `json:"publicBaseUrl"`
}

// Client talks to the MercadoPago REST API. Calls run through a circuit
// breaker so a gateway outage fails fast instead of piling up requests.
type Client struct {
	baseURL       string
	accessToken   string
	webhookKey    string
	publicBaseURL string

	hc *http.Client
	cb *utils.CircuitBreaker
}

func New(c *ClientConfig) (*Client, error) {
	if c.AccessToken == "" {
		return nil, errors.New("mercadopago: access token is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil || c.BaseURL == "" {
		return nil, fmt.Errorf("mercadopago: invalid base url %q", c.BaseURL)
	}

	return &Client{
		baseURL:       c.BaseURL,
		accessToken:   c.AccessToken,
		webhookKey:    c.WebhookKey,
		publicBaseURL: c.PublicBaseURL,

		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
		cb: utils.NewCircuitBreaker("mercadopago"),
	}, nil
}

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago: status %d: %s", e.StatusCode, e.Message)
}

// do performs one authenticated API call and decodes the response into out.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	defer func() {
		monitoring.TrackGatewayCall(op, time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mercadopago: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("mercadopago: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	result, err := c.cb.Execute(ctx, func() (any, error) {
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			var detail struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(raw, &detail) == nil {
				apiErr.Message = detail.Message
			}
			return nil, apiErr
		}

		return raw, nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(result.([]byte), out); err != nil {
			return fmt.Errorf("mercadopago: decode response: %w", err)
		}
	}

	return nil
}

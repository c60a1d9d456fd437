package mercadopago

import (
	"context"
	"errors"
	"net/url"

	"github.com/shopspring/decimal"
)

// PreferenceItem is one line of a checkout preference.
type PreferenceItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

type PreferencePayer struct {
	Name  string           `json:"name,omitempty"`
	Email string           `json:"email"`
	Phone *PreferencePhone `json:"phone,omitempty"`
}

type PreferencePhone struct {
	Number string `json:"number"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             PreferencePayer  `json:"payer"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
	NotificationURL   string           `json:"notification_url"`
	ExternalReference string           `json:"external_reference"`
}

// Preference is the created checkout preference: the id plus the redirect
// entry points for production and sandbox.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference registers a checkout preference for an order. The
// success/failure/pending callbacks and the webhook notification URL are
// derived from the configured public base URL.
func (c *Client) CreatePreference(ctx context.Context, orderID string, items []PreferenceItem, payer PreferencePayer) (*Preference, error) {
	base, err := url.Parse(c.publicBaseURL)
	if err != nil || c.publicBaseURL == "" || !base.IsAbs() {
		return nil, errors.New("mercadopago: public base url is not configured")
	}
	if len(items) == 0 {
		return nil, errors.New("mercadopago: preference needs at least one item")
	}

	req := preferenceRequest{
		Items: items,
		Payer: payer,
		BackURLs: BackURLs{
			Success: base.JoinPath("checkout", "success").String(),
			Failure: base.JoinPath("checkout", "failure").String(),
			Pending: base.JoinPath("checkout", "pending").String(),
		},
		AutoReturn:        "approved",
		NotificationURL:   base.JoinPath("api", "v1", "payments", "webhook").String(),
		ExternalReference: orderID,
	}

	var pref Preference
	if err := c.do(ctx, "create_preference", "POST", "/checkout/preferences", req, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}

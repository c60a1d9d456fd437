package mercadopago

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the subset of a MercadoPago payment resource the platform
// consumes.
type Payment struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	PaymentMethodID   string          `json:"payment_method_id"`
	DateApproved      *time.Time      `json:"date_approved,omitempty"`
	Payer             Payer           `json:"payer"`
}

type Payer struct {
	Email string `json:"email"`
}

// GetPayment fetches the full payment resource by provider payment id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	path := fmt.Sprintf("/v1/payments/%s", url.PathEscape(paymentID))
	if err := c.do(ctx, "get_payment", "GET", path, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		provider    string
		wantOrder   OrderStatus
		wantPayment PaymentStatus
		known       bool
	}{
		{"approved", OrderPaymentApproved, PaymentApproved, true},
		{"pending", OrderPending, PaymentPending, true},
		{"in_process", OrderPending, PaymentPending, true},
		{"rejected", OrderCancelled, PaymentRejected, true},
		{"cancelled", OrderCancelled, PaymentRejected, true},
		{"refunded", OrderCancelled, PaymentRejected, true},
		{"charged_back", OrderCancelled, PaymentRejected, true},
		{"authorized", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range cases {
		t.Run("provider_"+tc.provider, func(t *testing.T) {
			got, ok := MapProviderStatus(tc.provider)
			assert.Equal(t, tc.known, ok)
			if tc.known {
				assert.Equal(t, tc.wantOrder, got.Order)
				assert.Equal(t, tc.wantPayment, got.Payment)
			}
		})
	}
}

func TestCanReviewInstallment(t *testing.T) {
	assert.True(t, CanReviewInstallment(InstallmentPending, false))
	assert.True(t, CanReviewInstallment(InstallmentRejected, false))

	// Approval is terminal regardless of the status column.
	assert.False(t, CanReviewInstallment(InstallmentPaid, true))
	assert.False(t, CanReviewInstallment(InstallmentPending, true))

	assert.False(t, CanReviewInstallment(InstallmentPaid, false))
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ravehub/internal/status"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestEvent_CurrentPhase(t *testing.T) {
	event := &Event{
		SalesPhases: []SalesPhase{
			{ID: "early", StartAt: baseTime.AddDate(0, -2, 0), EndAt: baseTime.AddDate(0, -1, 0)},
			{ID: "general", StartAt: baseTime.AddDate(0, -1, 0), EndAt: baseTime.AddDate(0, 1, 0)},
		},
	}

	phase := event.CurrentPhase(baseTime)
	assert.NotNil(t, phase)
	assert.Equal(t, "general", phase.ID)

	// Exactly at a phase start the new phase wins, not the closed one.
	phase = event.CurrentPhase(baseTime.AddDate(0, -1, 0))
	assert.NotNil(t, phase)
	assert.Equal(t, "general", phase.ID)

	assert.Nil(t, event.CurrentPhase(baseTime.AddDate(0, 2, 0)))
	assert.Nil(t, event.CurrentPhase(baseTime.AddDate(0, -3, 0)))
}

func TestSalesPhase_PriceFor(t *testing.T) {
	phase := &SalesPhase{
		Prices: []PhasePrice{
			{ZoneID: "general", Price: 30000, Stock: 100},
			{ZoneID: "vip", Price: 60000, Stock: 20},
		},
	}

	price, ok := phase.PriceFor("vip")
	assert.True(t, ok)
	assert.Equal(t, float64(60000), price.Price)

	_, ok = phase.PriceFor("backstage")
	assert.False(t, ok)
}

func TestTicketTransaction_Downloadable(t *testing.T) {
	future := baseTime.Add(48 * time.Hour)
	past := baseTime.Add(-48 * time.Hour)

	cases := []struct {
		name string
		tx   TicketTransaction
		want bool
	}{
		{
			name: "manual upload available",
			tx:   TicketTransaction{DeliveryMode: status.DeliveryManualUpload, DeliveryStatus: status.DeliveryAvailable},
			want: true,
		},
		{
			name: "delivery still pending",
			tx:   TicketTransaction{DeliveryMode: status.DeliveryManualUpload, DeliveryStatus: status.DeliveryPending},
			want: false,
		},
		{
			name: "automatic gated by future date",
			tx:   TicketTransaction{DeliveryMode: status.DeliveryAutomatic, DeliveryStatus: status.DeliveryAvailable, DownloadAvailableAt: &future},
			want: false,
		},
		{
			name: "automatic open after date",
			tx:   TicketTransaction{DeliveryMode: status.DeliveryAutomatic, DeliveryStatus: status.DeliveryAvailable, DownloadAvailableAt: &past},
			want: true,
		},
		{
			name: "automatic without date",
			tx:   TicketTransaction{DeliveryMode: status.DeliveryAutomatic, DeliveryStatus: status.DeliveryAvailable},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.tx.Downloadable(baseTime))
		})
	}
}

func TestTicketTransaction_ExpiredFor(t *testing.T) {
	expiry := baseTime.Add(-time.Hour)
	grace := 30 * time.Minute

	pending := TicketTransaction{PaymentStatus: status.PaymentPending, ExpiresAt: &expiry}
	assert.True(t, pending.ExpiredFor(baseTime, grace))
	assert.False(t, pending.ExpiredFor(baseTime.Add(-45*time.Minute), grace))

	approved := TicketTransaction{PaymentStatus: status.PaymentApproved, ExpiresAt: &expiry}
	assert.False(t, approved.ExpiredFor(baseTime, grace))

	// Offline transactions never get a payment deadline and age out from
	// their creation time.
	offline := TicketTransaction{PaymentStatus: status.PaymentPending, CreatedAt: baseTime.Add(-time.Hour)}
	assert.True(t, offline.ExpiredFor(baseTime, grace))
	assert.False(t, offline.ExpiredFor(baseTime.Add(-45*time.Minute), grace))

	noAnchor := TicketTransaction{PaymentStatus: status.PaymentPending}
	assert.False(t, noAnchor.ExpiredFor(baseTime, grace))
}

func TestPaymentInstallment_PendingReview(t *testing.T) {
	in := PaymentInstallment{Status: status.InstallmentPending, ProofURL: "/api/files/payment_installments/x/proof.jpg"}
	assert.True(t, in.PendingReview())

	in.AdminApproved = true
	assert.False(t, in.PendingReview())

	noProof := PaymentInstallment{Status: status.InstallmentPending}
	assert.False(t, noProof.PendingReview())

	paid := PaymentInstallment{Status: status.InstallmentPaid, ProofURL: "proof.jpg"}
	assert.False(t, paid.PendingReview())
}

func TestOrder_HasHistoryEntry(t *testing.T) {
	order := Order{
		StatusHistory: []StatusChange{
			{Status: "pending", UpdatedBy: "user-1", Notes: "order created"},
			{Status: "payment_approved", UpdatedBy: "mercadopago_webhook", Notes: "mercadopago payment 42 -> approved"},
		},
	}

	assert.True(t, order.HasHistoryEntry("mercadopago_webhook", "mercadopago payment 42 -> approved"))
	assert.False(t, order.HasHistoryEntry("mercadopago_webhook", "mercadopago payment 42 -> rejected"))
	assert.False(t, order.HasHistoryEntry("user-1", "mercadopago payment 42 -> approved"))
}

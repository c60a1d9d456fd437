package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ravehub/internal/status"
	"ravehub/models"
)

func availableTransaction() *models.TicketTransaction {
	return &models.TicketTransaction{
		ID:             "tx-1",
		UserID:         "user-1",
		DeliveryMode:   status.DeliveryManualUpload,
		DeliveryStatus: status.DeliveryAvailable,
	}
}

func TestService_Download_Allowed(t *testing.T) {
	service, store, _, _ := setupTestService()

	store.On("FindTransaction", mock.Anything, "tx-1").Return(availableTransaction(), nil)
	store.On("MarkDelivered", mock.Anything, "tx-1").Return(nil)

	tx, err := service.Download(context.Background(), "tx-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", tx.ID)
	store.AssertExpectations(t)
}

func TestService_Download_WrongUser(t *testing.T) {
	service, store, _, _ := setupTestService()

	store.On("FindTransaction", mock.Anything, "tx-1").Return(availableTransaction(), nil)

	_, err := service.Download(context.Background(), "tx-1", "someone-else")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestService_Download_NotAvailableYet(t *testing.T) {
	service, store, _, _ := setupTestService()

	tx := availableTransaction()
	tx.DeliveryStatus = status.DeliveryPending

	store.On("FindTransaction", mock.Anything, "tx-1").Return(tx, nil)

	_, err := service.Download(context.Background(), "tx-1", "user-1")
	assert.ErrorIs(t, err, status.ErrDownloadNotReady)
}

func TestService_Download_AutomaticGatedByDate(t *testing.T) {
	service, store, _, _ := setupTestService()

	future := testNow.Add(48 * time.Hour)
	tx := availableTransaction()
	tx.DeliveryMode = status.DeliveryAutomatic
	tx.DownloadAvailableAt = &future

	store.On("FindTransaction", mock.Anything, "tx-1").Return(tx, nil)

	_, err := service.Download(context.Background(), "tx-1", "user-1")
	assert.ErrorIs(t, err, status.ErrDownloadNotReady)
	assert.Equal(t, 48*time.Hour, service.DownloadAvailableIn(tx))
}

func TestService_Download_AutomaticOpenAfterDate(t *testing.T) {
	service, store, _, _ := setupTestService()

	past := testNow.Add(-time.Hour)
	tx := availableTransaction()
	tx.DeliveryMode = status.DeliveryAutomatic
	tx.DownloadAvailableAt = &past

	store.On("FindTransaction", mock.Anything, "tx-1").Return(tx, nil)
	store.On("MarkDelivered", mock.Anything, "tx-1").Return(nil)

	_, err := service.Download(context.Background(), "tx-1", "user-1")
	assert.NoError(t, err)
	assert.Zero(t, service.DownloadAvailableIn(tx))
}

func TestTransaction_Downloadable_Table(t *testing.T) {
	now := testNow
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name     string
		status   status.DeliveryStatus
		mode     status.DeliveryMode
		at       *time.Time
		expected bool
	}{
		{"manual available", status.DeliveryAvailable, status.DeliveryManualUpload, nil, true},
		{"manual pending", status.DeliveryPending, status.DeliveryManualUpload, nil, false},
		{"automatic no date", status.DeliveryAvailable, status.DeliveryAutomatic, nil, true},
		{"automatic past date", status.DeliveryAvailable, status.DeliveryAutomatic, &past, true},
		{"automatic future date", status.DeliveryAvailable, status.DeliveryAutomatic, &future, false},
		{"scheduled never downloadable", status.DeliveryScheduled, status.DeliveryAutomatic, &past, false},
		{"delivered is closed again", status.DeliveryDelivered, status.DeliveryManualUpload, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := &models.TicketTransaction{
				DeliveryStatus:      tc.status,
				DeliveryMode:        tc.mode,
				DownloadAvailableAt: tc.at,
			}
			assert.Equal(t, tc.expected, tx.Downloadable(now))
		})
	}
}

func TestService_ListTransactions_FiltersExpired(t *testing.T) {
	service, store, _, _ := setupTestService()

	store.On("ListUserTransactions", mock.Anything, "user-1", 240*time.Hour).
		Return([]*models.TicketTransaction{{ID: "tx-1"}}, nil)

	txs, err := service.ListTransactions(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	store.AssertExpectations(t)
}

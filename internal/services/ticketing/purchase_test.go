package ticketing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ravehub/internal/services/installment"
	"ravehub/internal/status"
	"ravehub/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindPublishedEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockStore) CreateTransaction(ctx context.Context, tx *models.TicketTransaction, plan *installment.Plan) (string, error) {
	args := m.Called(ctx, tx, plan)
	return args.String(0), args.Error(1)
}

func (m *MockStore) FindTransaction(ctx context.Context, id string) (*models.TicketTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketTransaction), args.Error(1)
}

func (m *MockStore) ListUserTransactions(ctx context.Context, userID string, grace time.Duration) ([]*models.TicketTransaction, error) {
	args := m.Called(ctx, userID, grace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketTransaction), args.Error(1)
}

func (m *MockStore) MarkDelivered(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReserver struct {
	mock.Mock
}

func (m *MockReserver) Reserve(ctx context.Context, eventID, phaseID, zoneID string, qty int) error {
	args := m.Called(ctx, eventID, phaseID, zoneID, qty)
	return args.Error(0)
}

func (m *MockReserver) Release(ctx context.Context, eventID, phaseID, zoneID string, qty int) error {
	args := m.Called(ctx, eventID, phaseID, zoneID, qty)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAdmins(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func publishedEvent() *models.Event {
	return &models.Event{
		ID:     "event-1",
		Name:   "Ultra Santiago",
		Status: status.EventPublished,
		Zones: []models.Zone{
			{ID: "general", Name: "General", Capacity: 500},
			{ID: "vip", Name: "VIP", Capacity: 100},
		},
		SalesPhases: []models.SalesPhase{
			{
				ID:      "phase-1",
				Name:    "Preventa",
				StartAt: testNow.AddDate(0, -1, 0),
				EndAt:   testNow.AddDate(0, 1, 0),
				Prices: []models.PhasePrice{
					{ZoneID: "general", Price: 30000, Stock: 500},
					{ZoneID: "vip", Price: 60000, Stock: 100},
				},
			},
		},
	}
}

func setupTestService() (*Service, *MockStore, *MockReserver, *MockNotifier) {
	store := &MockStore{}
	stock := &MockReserver{}
	notifier := &MockNotifier{}

	service := NewService(store, stock, notifier, time.Hour, 240*time.Hour)
	service.now = func() time.Time { return testNow }

	return service, store, stock, notifier
}

func validRequest() *PurchaseRequest {
	return &PurchaseRequest{
		UserID:        "user-1",
		EventID:       "event-1",
		Tickets:       []TicketSelection{{ZoneID: "general", Quantity: 2}},
		PaymentMethod: "online",
		PaymentType:   "full",
		TotalAmount:   60000,
		Currency:      "CLP",
	}
}

func TestService_Purchase_OnlineFull(t *testing.T) {
	service, store, stock, _ := setupTestService()

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	store.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *models.TicketTransaction) bool {
		return tx.PaymentStatus == status.PaymentPending &&
			tx.ExpiresAt != nil && tx.ExpiresAt.Equal(testNow.Add(time.Hour)) &&
			tx.TotalAmount == 60000
	}), (*installment.Plan)(nil)).Return("tx-1", nil)

	result, err := service.Purchase(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "tx-1", result.TransactionID)
	assert.Equal(t, "/checkout/pay/tx-1", result.PaymentURL)
	assert.Empty(t, result.Message)

	store.AssertExpectations(t)
	stock.AssertExpectations(t)
}

func TestService_Purchase_DeliveryConfigComesFromEvent(t *testing.T) {
	service, store, stock, _ := setupTestService()

	release := testNow.AddDate(0, 2, 0)
	event := publishedEvent()
	event.DeliveryMode = status.DeliveryManualUpload
	event.DownloadAvailableAt = &release

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(event, nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	store.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *models.TicketTransaction) bool {
		return tx.DeliveryMode == status.DeliveryManualUpload &&
			tx.DownloadAvailableAt != nil && tx.DownloadAvailableAt.Equal(release)
	}), (*installment.Plan)(nil)).Return("tx-1", nil)

	_, err := service.Purchase(context.Background(), validRequest())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_Purchase_DeliveryDefaultsToAutomatic(t *testing.T) {
	service, store, stock, _ := setupTestService()

	// Events predating the delivery configuration have no mode set.
	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	store.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *models.TicketTransaction) bool {
		return tx.DeliveryMode == status.DeliveryAutomatic && tx.DownloadAvailableAt == nil
	}), (*installment.Plan)(nil)).Return("tx-1", nil)

	_, err := service.Purchase(context.Background(), validRequest())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_Purchase_OfflineNotifiesAdmins(t *testing.T) {
	service, store, stock, notifier := setupTestService()

	req := validRequest()
	req.PaymentMethod = "offline"

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	store.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *models.TicketTransaction) bool {
		// Offline purchases never get the one-hour online expiry.
		return tx.ExpiresAt == nil
	}), (*installment.Plan)(nil)).Return("tx-2", nil)
	notifier.On("NotifyAdmins", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.NotificationAdminAction && n.OrderID == "tx-2"
	})).Return(nil)

	result, err := service.Purchase(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "upload_proof", result.NextSteps)
	assert.NotEmpty(t, result.Message)
	notifier.AssertExpectations(t)
}

func TestService_Purchase_InstallmentPlanCreated(t *testing.T) {
	service, store, stock, notifier := setupTestService()

	req := validRequest()
	req.PaymentMethod = "offline"
	req.PaymentType = "installment"
	req.Installments = 4
	req.ReservationFee = 20000

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	store.On("CreateTransaction", mock.Anything, mock.Anything, mock.MatchedBy(func(plan *installment.Plan) bool {
		if plan == nil || len(plan.Installments) != 4 {
			return false
		}
		// First installment is due the 1st of the month after purchase.
		want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		return plan.Installments[0].DueDate.Equal(want) && plan.Total().InexactFloat64() == 60000
	})).Return("tx-3", nil)
	notifier.On("NotifyAdmins", mock.Anything, mock.Anything).Return(nil)

	_, err := service.Purchase(context.Background(), req)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_Purchase_InvalidPlanReleasesStock(t *testing.T) {
	service, store, stock, _ := setupTestService()

	req := validRequest()
	req.PaymentType = "installment"
	req.Installments = 0 // invalid count
	req.ReservationFee = 20000

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	stock.On("Release", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)

	_, err := service.Purchase(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	stock.AssertExpectations(t)
}

func TestService_Purchase_MissingFields(t *testing.T) {
	service, _, _, _ := setupTestService()

	cases := []func(*PurchaseRequest){
		func(r *PurchaseRequest) { r.UserID = "" },
		func(r *PurchaseRequest) { r.EventID = "" },
		func(r *PurchaseRequest) { r.Tickets = nil },
		func(r *PurchaseRequest) { r.Currency = "" },
		func(r *PurchaseRequest) { r.PaymentMethod = "bitcoin" },
		func(r *PurchaseRequest) { r.PaymentType = "layaway" },
		func(r *PurchaseRequest) { r.Tickets = []TicketSelection{{ZoneID: "general", Quantity: 0}} },
	}

	for _, mutate := range cases {
		req := validRequest()
		mutate(req)

		_, err := service.Purchase(context.Background(), req)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "request %+v", req)
	}
}

func TestService_Purchase_UnpublishedEvent(t *testing.T) {
	service, store, _, _ := setupTestService()

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(nil, status.ErrEventNotPublished)

	_, err := service.Purchase(context.Background(), validRequest())
	assert.ErrorIs(t, err, status.ErrEventNotPublished)
}

func TestService_Purchase_TotalMismatch(t *testing.T) {
	service, store, _, _ := setupTestService()

	req := validRequest()
	req.TotalAmount = 1000 // real price is 60000

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)

	_, err := service.Purchase(context.Background(), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "total")
}

func TestService_Purchase_InsufficientStock(t *testing.T) {
	service, store, stock, _ := setupTestService()

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(status.ErrInsufficientStock)

	_, err := service.Purchase(context.Background(), validRequest())
	assert.ErrorIs(t, err, status.ErrInsufficientStock)
}

func TestService_Purchase_PartialReserveRollsBack(t *testing.T) {
	service, store, stock, _ := setupTestService()

	req := validRequest()
	req.Tickets = []TicketSelection{
		{ZoneID: "general", Quantity: 2},
		{ZoneID: "vip", Quantity: 1},
	}
	req.TotalAmount = 120000

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "vip", 1).Return(status.ErrInsufficientStock)
	stock.On("Release", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)

	_, err := service.Purchase(context.Background(), req)
	assert.ErrorIs(t, err, status.ErrInsufficientStock)
	stock.AssertExpectations(t)
}

func TestService_Purchase_StoreFailureReleasesStock(t *testing.T) {
	service, store, stock, _ := setupTestService()

	store.On("FindPublishedEvent", mock.Anything, "event-1").Return(publishedEvent(), nil)
	stock.On("Reserve", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)
	store.On("CreateTransaction", mock.Anything, mock.Anything, (*installment.Plan)(nil)).
		Return("", errors.New("db down"))
	stock.On("Release", mock.Anything, "event-1", "phase-1", "general", 2).Return(nil)

	_, err := service.Purchase(context.Background(), validRequest())
	require.Error(t, err)
	stock.AssertExpectations(t)
}

func TestFirstOfNextMonth(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, firstOfNextMonth(tc.now))
	}
}

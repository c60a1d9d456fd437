package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ravehub/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateNotification(ctx context.Context, n *models.Notification) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ListAdminUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
	published []string
}

func (m *MockPublisher) Publish(channel string, message map[string]any) error {
	m.published = append(m.published, channel)
	args := m.Called(channel, message)
	return args.Error(0)
}

func TestService_NotifyUser_WritesAndPushes(t *testing.T) {
	store := &MockStore{}
	pub := &MockPublisher{}
	service := NewService(store, pub)

	n := &models.Notification{UserID: "user-1", Title: "Pago aprobado", Type: models.NotificationPayment}

	store.On("CreateNotification", mock.Anything, n).Return("notif-1", nil)
	pub.On("Publish", "user-user-1", mock.Anything).Return(nil)

	require.NoError(t, service.NotifyUser(context.Background(), n))

	store.AssertExpectations(t)
	assert.Equal(t, []string{"user-user-1"}, pub.published)
}

func TestService_NotifyUser_PushFailureIsSwallowed(t *testing.T) {
	store := &MockStore{}
	pub := &MockPublisher{}
	service := NewService(store, pub)

	store.On("CreateNotification", mock.Anything, mock.Anything).Return("notif-1", nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("pubnub down"))

	// Push is best effort; the document write decides the outcome.
	err := service.NotifyUser(context.Background(), &models.Notification{UserID: "u"})
	assert.NoError(t, err)
}

func TestService_NotifyUser_StoreFailure(t *testing.T) {
	store := &MockStore{}
	service := NewService(store, nil)

	store.On("CreateNotification", mock.Anything, mock.Anything).Return("", errors.New("write failed"))

	err := service.NotifyUser(context.Background(), &models.Notification{UserID: "u"})
	assert.Error(t, err)
}

func TestService_NotifyAdmins_FanOut(t *testing.T) {
	store := &MockStore{}
	service := NewService(store, nil)

	store.On("ListAdminUserIDs", mock.Anything).Return([]string{"admin-1", "admin-2", "admin-3"}, nil)
	store.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == "admin-1" || n.UserID == "admin-2" || n.UserID == "admin-3"
	})).Return("id", nil).Times(3)

	err := service.NotifyAdmins(context.Background(), &models.Notification{
		Title: "Nueva compra offline",
		Type:  models.NotificationAdminAction,
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_NotifyAdmins_PartialFailureContinues(t *testing.T) {
	store := &MockStore{}
	service := NewService(store, nil)

	store.On("ListAdminUserIDs", mock.Anything).Return([]string{"admin-1", "admin-2"}, nil)
	store.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == "admin-1"
	})).Return("", errors.New("write failed"))
	store.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == "admin-2"
	})).Return("id", nil)

	err := service.NotifyAdmins(context.Background(), &models.Notification{Title: "x"})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

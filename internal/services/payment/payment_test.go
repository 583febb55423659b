package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/models"
	"github.com/kovalevadr/course-platform/internal/stripeapi"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	args := m.Called(ctx, payment)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetPayment(ctx context.Context, paymentID int) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockRepository) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockRepository) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockRepository) UpdatePaymentStatus(ctx context.Context, paymentID int, status string) error {
	args := m.Called(ctx, paymentID, status)
	return args.Error(0)
}

func (m *MockRepository) UpdatePayment(ctx context.Context, paymentID int, req models.DummyUpdatePayment) (int, error) {
	args := m.Called(ctx, paymentID, req)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RemovePayment(ctx context.Context, paymentID int) (int, error) {
	args := m.Called(ctx, paymentID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockRepository) GetLesson(ctx context.Context, lessonID int) (*models.Lesson, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

type MockRates struct {
	mock.Mock
}

func (m *MockRates) GetRate(ctx context.Context, from, to string) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreatePrice(ctx context.Context, currency string, unitAmount int64, productName string) (*stripeapi.Price, error) {
	args := m.Called(ctx, currency, unitAmount, productName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeapi.Price), args.Error(1)
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, priceID, successURL string) (*stripeapi.CheckoutSession, error) {
	args := m.Called(ctx, priceID, successURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeapi.CheckoutSession), args.Error(1)
}

func (m *MockProvider) GetSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeapi.CheckoutSession), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testOptions() Options {
	return Options{
		LocalCurrency:      "RUB",
		SettlementCurrency: "USD",
		SuccessURL:         "https://example.com/success",
		ProductLabel:       "Оплата курса",
	}
}

func ptrInt(v int) *int { return &v }

func TestService_Create_Transfer(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRates)
	provider := new(MockProvider)
	actor := authz.Actor{UID: "user-1"}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil).Once()
	rates.On("GetRate", mock.Anything, "RUB", "USD").Return(0.01, nil).Once()
	// 15000 руб по курсу 0.01 — 150 долларов, 15000 центов
	provider.On("CreatePrice", mock.Anything, "USD", int64(15000), "Оплата курса").
		Return(&stripeapi.Price{ID: "price_1"}, nil).Once()
	provider.On("CreateCheckoutSession", mock.Anything, "price_1", "https://example.com/success").
		Return(&stripeapi.CheckoutSession{
			ID:  "cs_1",
			URL: "https://checkout.stripe.com/pay/cs_1",
		}, nil).Once()
	repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.SessionID != nil && *p.SessionID == "cs_1" &&
			p.Link != nil && *p.Link == "https://checkout.stripe.com/pay/cs_1" &&
			p.PaymentStatus == models.DefaultPaymentStatus
	})).Return(42, nil).Once()

	svc := New(repo, rates, provider, testOptions(), newNoopLogger())
	payment, err := svc.Create(context.Background(), actor, models.DummyPayment{
		CourseID:      ptrInt(7),
		Amount:        15000,
		FormOfPayment: models.PaymentFormTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, payment.ID)
	require.NotNil(t, payment.Link)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", *payment.Link)

	repo.AssertExpectations(t)
	rates.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestService_Create_Cash_SkipsProvider(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRates)
	provider := new(MockProvider)
	actor := authz.Actor{UID: "user-1"}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil).Once()
	repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.SessionID == nil && p.Link == nil
	})).Return(43, nil).Once()

	svc := New(repo, rates, provider, testOptions(), newNoopLogger())
	payment, err := svc.Create(context.Background(), actor, models.DummyPayment{
		CourseID:      ptrInt(7),
		Amount:        5000,
		FormOfPayment: models.PaymentFormCash,
	})
	require.NoError(t, err)
	assert.Nil(t, payment.SessionID)

	rates.AssertNotCalled(t, "GetRate")
	provider.AssertNotCalled(t, "CreatePrice")
	repo.AssertExpectations(t)
}

func TestService_Create_RateUnavailable(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRates)
	provider := new(MockProvider)
	actor := authz.Actor{UID: "user-1"}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil).Once()
	rates.On("GetRate", mock.Anything, "RUB", "USD").
		Return(0.0, apperr.ErrRateUnavailable).Once()

	svc := New(repo, rates, provider, testOptions(), newNoopLogger())
	_, err := svc.Create(context.Background(), actor, models.DummyPayment{
		CourseID:      ptrInt(7),
		Amount:        15000,
		FormOfPayment: models.PaymentFormTransfer,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrRateUnavailable))

	// Платёж не сохраняется, если хоть один внешний вызов не прошёл
	repo.AssertNotCalled(t, "CreatePayment")
	provider.AssertNotCalled(t, "CreatePrice")
}

func TestService_Create_ProviderFailure_NoPartialRow(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRates)
	provider := new(MockProvider)
	actor := authz.Actor{UID: "user-1"}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil).Once()
	rates.On("GetRate", mock.Anything, "RUB", "USD").Return(0.01, nil).Once()
	provider.On("CreatePrice", mock.Anything, "USD", int64(15000), "Оплата курса").
		Return(&stripeapi.Price{ID: "price_1"}, nil).Once()
	provider.On("CreateCheckoutSession", mock.Anything, "price_1", "https://example.com/success").
		Return(nil, apperr.ErrPaymentProvider).Once()

	svc := New(repo, rates, provider, testOptions(), newNoopLogger())
	_, err := svc.Create(context.Background(), actor, models.DummyPayment{
		CourseID:      ptrInt(7),
		Amount:        15000,
		FormOfPayment: models.PaymentFormTransfer,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrPaymentProvider))
	repo.AssertNotCalled(t, "CreatePayment")
}

func TestService_CheckStatus(t *testing.T) {
	userUID := "user-1"
	sessionID := "cs_1"

	tests := []struct {
		name       string
		actor      authz.Actor
		payment    *models.Payment
		setupMocks func(*MockRepository, *MockProvider)
		wantErr    error
		wantStatus string
	}{
		{
			name:  "overwrites status from provider",
			actor: authz.Actor{UID: userUID},
			payment: &models.Payment{
				ID: 1, UserUID: &userUID, SessionID: &sessionID, PaymentStatus: "unpaid",
			},
			setupMocks: func(r *MockRepository, p *MockProvider) {
				p.On("GetSession", mock.Anything, sessionID).Return(&stripeapi.CheckoutSession{
					ID: sessionID, Status: "complete", PaymentStatus: "paid",
					CustomerInfo: &stripeapi.CustomerDetail{Email: "payer@example.com"},
				}, nil).Once()
				r.On("UpdatePaymentStatus", mock.Anything, 1, "paid").Return(nil).Once()
			},
			wantStatus: "paid",
		},
		{
			name:  "payment without session is rejected before provider call",
			actor: authz.Actor{UID: userUID},
			payment: &models.Payment{
				ID: 1, UserUID: &userUID, PaymentStatus: "unpaid",
			},
			wantErr: apperr.ErrInvalidSession,
		},
		{
			name:  "stranger is denied",
			actor: authz.Actor{UID: "someone-else"},
			payment: &models.Payment{
				ID: 1, UserUID: &userUID, SessionID: &sessionID,
			},
			wantErr: &apperr.PermissionError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			provider := new(MockProvider)
			repo.On("GetPayment", mock.Anything, 1).Return(tt.payment, nil).Once()
			if tt.setupMocks != nil {
				tt.setupMocks(repo, provider)
			}

			svc := New(repo, new(MockRates), provider, testOptions(), newNoopLogger())
			info, err := svc.CheckStatus(context.Background(), tt.actor, 1)

			switch wantErr := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, info.PaymentStatus)
				assert.Equal(t, "payer@example.com", info.PayerEmail)
			case *apperr.PermissionError:
				require.Error(t, err)
				_, isPermission := apperr.PermissionReason(err)
				assert.True(t, isPermission)
				provider.AssertNotCalled(t, "GetSession")
			default:
				require.Error(t, err)
				assert.True(t, errors.Is(err, wantErr))
				provider.AssertNotCalled(t, "GetSession")
			}
			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestService_List_SplitsByRole(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo, new(MockRates), new(MockProvider), testOptions(), newNoopLogger())

	admin := authz.Actor{UID: "admin-1", IsStaff: true}
	filter := models.PaymentFilter{CourseID: ptrInt(7)}
	repo.On("ListPayments", mock.Anything, filter).Return([]*models.Payment{{ID: 1}, {ID: 2}}, nil).Once()

	payments, err := svc.List(context.Background(), admin, filter)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	regular := authz.Actor{UID: "user-1"}
	repo.On("ListPaymentsByUser", mock.Anything, "user-1").Return([]*models.Payment{{ID: 3}}, nil).Once()

	payments, err = svc.List(context.Background(), regular, filter)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	repo.AssertExpectations(t)
}

func TestService_UpdateRemove_AdminOnly(t *testing.T) {
	repo := new(MockRepository)
	svc := New(repo, new(MockRates), new(MockProvider), testOptions(), newNoopLogger())
	regular := authz.Actor{UID: "user-1"}

	err := svc.Update(context.Background(), regular, 1, models.DummyUpdatePayment{PaymentStatus: "paid"})
	require.Error(t, err)
	reason, isPermission := apperr.PermissionReason(err)
	assert.True(t, isPermission)
	assert.Equal(t, authz.ReasonAdminOnly, reason)

	err = svc.Remove(context.Background(), regular, 1)
	require.Error(t, err)
	_, isPermission = apperr.PermissionReason(err)
	assert.True(t, isPermission)

	repo.AssertNotCalled(t, "UpdatePayment")
	repo.AssertNotCalled(t, "RemovePayment")

	admin := authz.Actor{UID: "admin-1", IsSuperuser: true}
	repo.On("UpdatePayment", mock.Anything, 1, mock.Anything).Return(1, nil).Once()
	repo.On("RemovePayment", mock.Anything, 1).Return(1, nil).Once()

	require.NoError(t, svc.Update(context.Background(), admin, 1, models.DummyUpdatePayment{PaymentStatus: "paid"}))
	require.NoError(t, svc.Remove(context.Background(), admin, 1))
	repo.AssertExpectations(t)
}

// Package payment реализует оформление платежей: конвертацию валюты,
// создание сессии оплаты во внешнем процессинге и сверку её статуса.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/models"
	"github.com/kovalevadr/course-platform/internal/stripeapi"
)

// PaymentRepository определяет методы хранилища для работы с платежами.
type PaymentRepository interface {
	// CreatePayment сохраняет платёж одной записью и возвращает его ID.
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	// GetPayment возвращает платёж по ID.
	GetPayment(ctx context.Context, paymentID int) (*models.Payment, error)
	// ListPayments возвращает платежи по фильтру.
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, error)
	// ListPaymentsByUser возвращает платежи пользователя.
	ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error)
	// UpdatePaymentStatus перезаписывает статус платежа.
	UpdatePaymentStatus(ctx context.Context, paymentID int, status string) error
	// UpdatePayment обновляет заполненные поля платежа.
	UpdatePayment(ctx context.Context, paymentID int, req models.DummyUpdatePayment) (int, error)
	// RemovePayment удаляет платёж.
	RemovePayment(ctx context.Context, paymentID int) (int, error)
	// GetCourse возвращает курс по ID. Используется для проверки существования.
	GetCourse(ctx context.Context, courseID int) (*models.Course, error)
	// GetLesson возвращает урок по ID. Используется для проверки существования.
	GetLesson(ctx context.Context, lessonID int) (*models.Lesson, error)
}

// RateClient возвращает курс конвертации валют.
type RateClient interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// ProviderClient — клиент внешнего платёжного процессинга.
type ProviderClient interface {
	CreatePrice(ctx context.Context, currency string, unitAmount int64, productName string) (*stripeapi.Price, error)
	CreateCheckoutSession(ctx context.Context, priceID, successURL string) (*stripeapi.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error)
}

// Options — валютные и продуктовые настройки оформления платежа.
type Options struct {
	LocalCurrency      string
	SettlementCurrency string
	SuccessURL         string
	ProductLabel       string
}

// PaymentService реализует бизнес-логику платежей.
type PaymentService struct {
	repo     PaymentRepository
	rates    RateClient
	provider ProviderClient
	opts     Options
	log      *slog.Logger
}

// New создает новый экземпляр PaymentService.
func New(repo PaymentRepository, rates RateClient, provider ProviderClient, opts Options, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		rates:    rates,
		provider: provider,
		opts:     opts,
		log:      log,
	}
}

// Create оформляет платёж инициатора за курс или урок. Для безналичной
// оплаты сначала выполняются внешние вызовы (курс валюты, цена, сессия),
// и только затем платёж сохраняется одной записью: частичных строк
// не бывает, а реквизиты сессии либо записаны оба, либо не записаны вовсе.
func (s *PaymentService) Create(ctx context.Context, actor authz.Actor, req models.DummyPayment) (*models.Payment, error) {
	if decision := authz.Decide(actor, authz.PaymentCreate, &authz.Resource{OwnerUID: &actor.UID}); !decision.Allowed {
		return nil, apperr.Permission(decision.Reason)
	}
	if req.CourseID == nil && req.LessonID == nil {
		return nil, fmt.Errorf("failed to create payment: course or lesson required: %w", apperr.ErrNotFound)
	}
	if req.CourseID != nil {
		if _, err := s.repo.GetCourse(ctx, *req.CourseID); err != nil {
			return nil, fmt.Errorf("failed to find course: %w", err)
		}
	}
	if req.LessonID != nil {
		if _, err := s.repo.GetLesson(ctx, *req.LessonID); err != nil {
			return nil, fmt.Errorf("failed to find lesson: %w", err)
		}
	}

	userUID := actor.UID
	payment := models.Payment{
		UserUID:       &userUID,
		CourseID:      req.CourseID,
		LessonID:      req.LessonID,
		Amount:        req.Amount,
		FormOfPayment: req.FormOfPayment,
		PaymentStatus: models.DefaultPaymentStatus,
	}

	if req.FormOfPayment == models.PaymentFormTransfer {
		rate, err := s.rates.GetRate(ctx, s.opts.LocalCurrency, s.opts.SettlementCurrency)
		if err != nil {
			return nil, fmt.Errorf("failed to get currency rate: %w", err)
		}
		// К сумме запроса применяется курс, целая часть умножается на 100:
		// процессингу уходят минимальные единицы валюты расчётов.
		unitAmount := int64(float64(req.Amount)*rate) * 100

		price, err := s.provider.CreatePrice(ctx, s.opts.SettlementCurrency, unitAmount, s.opts.ProductLabel)
		if err != nil {
			return nil, fmt.Errorf("failed to create price: %w", err)
		}
		session, err := s.provider.CreateCheckoutSession(ctx, price.ID, s.opts.SuccessURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create checkout session: %w", err)
		}
		payment.SessionID = &session.ID
		payment.Link = &session.URL
	}

	// Сессия во внешнем процессинге уже создана, поэтому запись выполняется
	// на отвязанном контексте: обрыв соединения клиента не оставит
	// оплаченную сессию без следа в хранилище.
	id, err := s.repo.CreatePayment(context.WithoutCancel(ctx), payment)
	if err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	payment.ID = id
	return &payment, nil
}

// Read возвращает платёж. Доступно его владельцу и администратору.
func (s *PaymentService) Read(ctx context.Context, actor authz.Actor, paymentID int) (*models.Payment, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment: %w", err)
	}
	if decision := authz.Decide(actor, authz.PaymentRead, &authz.Resource{OwnerUID: payment.UserUID}); !decision.Allowed {
		return nil, apperr.Permission(decision.Reason)
	}
	return payment, nil
}

// List возвращает платежи: администратору — все по фильтру, остальным —
// только собственные, фильтр при этом не применяется.
func (s *PaymentService) List(ctx context.Context, actor authz.Actor, filter models.PaymentFilter) ([]*models.Payment, error) {
	if actor.IsAdmin() {
		payments, err := s.repo.ListPayments(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list payments: %w", err)
		}
		return payments, nil
	}
	payments, err := s.repo.ListPaymentsByUser(ctx, actor.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// CheckStatus сверяет платёж с процессингом и перезаписывает его статус
// полученным значением. Платёж без сессии оплаты сверить нельзя —
// процессинг в этом случае не вызывается.
func (s *PaymentService) CheckStatus(ctx context.Context, actor authz.Actor, paymentID int) (*models.PaymentStatusInfo, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment: %w", err)
	}
	if decision := authz.Decide(actor, authz.PaymentRead, &authz.Resource{OwnerUID: payment.UserUID}); !decision.Allowed {
		return nil, apperr.Permission(decision.Reason)
	}
	if payment.SessionID == nil {
		return nil, fmt.Errorf("failed to check status: %w", apperr.ErrInvalidSession)
	}

	session, err := s.provider.GetSession(ctx, *payment.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := s.repo.UpdatePaymentStatus(ctx, paymentID, session.PaymentStatus); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	info := &models.PaymentStatusInfo{
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
	}
	if session.CustomerInfo != nil {
		info.PayerEmail = session.CustomerInfo.Email
	}
	return info, nil
}

// Update правит платёж. Доступно только администратору.
func (s *PaymentService) Update(ctx context.Context, actor authz.Actor, paymentID int, req models.DummyUpdatePayment) error {
	if decision := authz.Decide(actor, authz.PaymentUpdate, nil); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}

	updated, err := s.repo.UpdatePayment(ctx, paymentID, req)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("failed to update payment: %w", apperr.ErrNotFound)
	}
	return nil
}

// Remove удаляет платёж. Доступно только администратору.
func (s *PaymentService) Remove(ctx context.Context, actor authz.Actor, paymentID int) error {
	if decision := authz.Decide(actor, authz.PaymentDelete, nil); !decision.Allowed {
		return apperr.Permission(decision.Reason)
	}

	removed, err := s.repo.RemovePayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to remove payment: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("failed to remove payment: %w", apperr.ErrNotFound)
	}
	return nil
}

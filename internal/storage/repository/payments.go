package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/models"
)

const paymentColumns = `id, user_uid, course_id, lesson_id, payment_date, amount,
			      form_of_payment, session_id, link, payment_status`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var userUID, sessionID, link sql.NullString
	var courseID, lessonID sql.NullInt64
	if err := row.Scan(&p.ID, &userUID, &courseID, &lessonID, &p.PaymentDate,
		&p.Amount, &p.FormOfPayment, &sessionID, &link, &p.PaymentStatus); err != nil {
		return nil, err
	}
	if userUID.Valid {
		p.UserUID = &userUID.String
	}
	if courseID.Valid {
		id := int(courseID.Int64)
		p.CourseID = &id
	}
	if lessonID.Valid {
		id := int(lessonID.Int64)
		p.LessonID = &id
	}
	if sessionID.Valid {
		p.SessionID = &sessionID.String
	}
	if link.Valid {
		p.Link = &link.String
	}
	return p, nil
}

// CreatePayment сохраняет платёж одной записью, включая реквизиты сессии
// оплаты, и возвращает его идентификатор.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	// payment_date выставляется здесь один раз и больше не изменяется.
	query := `INSERT INTO payments (user_uid, course_id, lesson_id, payment_date, amount,
			      form_of_payment, session_id, link, payment_status)
			  VALUES ($1, $2, $3, now(), $4, $5, $6, $7, $8)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.CourseID, payment.LessonID, payment.Amount,
		payment.FormOfPayment, payment.SessionID, payment.Link, payment.PaymentStatus).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPayment возвращает платёж по идентификатору.
func (s *Storage) GetPayment(ctx context.Context, paymentID int) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPayments возвращает платежи с необязательной фильтрацией по курсу,
// уроку и форме оплаты, с сортировкой по дате платежа.
func (s *Storage) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var conditions []string
	var args []any
	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)))
	}
	if filter.LessonID != nil {
		args = append(args, *filter.LessonID)
		conditions = append(conditions, fmt.Sprintf("lesson_id = $%d", len(args)))
	}
	if filter.FormOfPayment != nil {
		args = append(args, *filter.FormOfPayment)
		conditions = append(conditions, fmt.Sprintf("form_of_payment = $%d", len(args)))
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if filter.OrderByDate {
		query += " ORDER BY payment_date"
	} else {
		query += " ORDER BY id"
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPaymentsByUser возвращает платежи пользователя по дате платежа.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + `
			  FROM payments
			  WHERE user_uid = $1
			  ORDER BY payment_date`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePaymentStatus перезаписывает статус платежа значением, полученным
// от платёжного провайдера.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, paymentID int, status string) error {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET payment_status = $1 WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, status, paymentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePayment обновляет заполненные поля платежа и возвращает
// количество изменённых строк. Пустые поля запроса не затрагиваются.
func (s *Storage) UpdatePayment(ctx context.Context, paymentID int, req models.DummyUpdatePayment) (int, error) {
	const op = "storage.UpdatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET form_of_payment = COALESCE(NULLIF($1, ''), form_of_payment),
			      payment_status = COALESCE(NULLIF($2, ''), payment_status)
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query,
		req.FormOfPayment, req.PaymentStatus, paymentID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePayment удаляет платёж и возвращает количество удалённых строк.
func (s *Storage) RemovePayment(ctx context.Context, paymentID int) (int, error) {
	const op = "storage.RemovePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM payments WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, paymentID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

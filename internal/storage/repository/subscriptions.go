package repository

import (
	"context"
	"fmt"

	"github.com/kovalevadr/course-platform/internal/models"
)

// ToggleSubscription переключает подписку пользователя на курс внутри
// транзакции: существующая подписка удаляется, отсутствующая — создаётся.
// Возвращает итоговое состояние подписки.
func (s *Storage) ToggleSubscription(ctx context.Context, userUID string, courseID int) (string, error) {
	const op = "storage.ToggleSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_uid = $1 AND course_id = $2`,
		userUID, courseID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	message := models.ToggleUnsubscribed
	if deleted == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO subscriptions (user_uid, course_id)
			 VALUES ($1, $2)
			 ON CONFLICT (user_uid, course_id) DO NOTHING`,
			userUID, courseID)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		message = models.ToggleSubscribed
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return message, nil
}

// ExistsSubscription проверяет наличие подписки пользователя на курс.
func (s *Storage) ExistsSubscription(ctx context.Context, userUID string, courseID int) (bool, error) {
	const op = "storage.ExistsSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_uid = $1 AND course_id = $2)`
	if err := s.DB.QueryRowContext(ctx, query, userUID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListSubscriberEmails возвращает адреса активных подписчиков курса.
func (s *Storage) ListSubscriberEmails(ctx context.Context, courseID int) ([]string, error) {
	const op = "storage.ListSubscriberEmails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email
			  FROM subscriptions sb
			  JOIN users u ON u.uid = sb.user_uid
			  WHERE sb.course_id = $1 AND u.is_active = true
			  ORDER BY u.email`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

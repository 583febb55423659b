package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/models"
)

func scanLesson(row interface{ Scan(...any) error }) (*models.Lesson, error) {
	l := &models.Lesson{}
	var courseID sql.NullInt64
	var ownerUID sql.NullString
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Preview, &l.Video,
		&courseID, &ownerUID, &l.UpdatedAt, &l.CreatedAt); err != nil {
		return nil, err
	}
	if courseID.Valid {
		id := int(courseID.Int64)
		l.CourseID = &id
	}
	if ownerUID.Valid {
		l.OwnerUID = &ownerUID.String
	}
	return l, nil
}

// CreateLesson сохраняет новый урок и возвращает его идентификатор.
func (s *Storage) CreateLesson(ctx context.Context, req models.DummyLesson, ownerUID string) (int, error) {
	const op = "storage.CreateLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO lessons (name, description, preview, video, course_id, owner_uid)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		req.Name, req.Description, req.Preview, req.Video, req.CourseID, ownerUID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetLesson возвращает урок по идентификатору.
func (s *Storage) GetLesson(ctx context.Context, lessonID int) (*models.Lesson, error) {
	const op = "storage.GetLesson"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, preview, video, course_id, owner_uid, updated_at, created_at
			  FROM lessons WHERE id = $1`
	l, err := scanLesson(s.DB.QueryRowContext(ctx, query, lessonID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// ListLessons возвращает страницу уроков.
func (s *Storage) ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error) {
	const op = "storage.ListLessons"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, preview, video, course_id, owner_uid, updated_at, created_at
			  FROM lessons
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListLessonsByCourse возвращает все уроки курса.
func (s *Storage) ListLessonsByCourse(ctx context.Context, courseID int) ([]*models.Lesson, error) {
	const op = "storage.ListLessonsByCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, preview, video, course_id, owner_uid, updated_at, created_at
			  FROM lessons
			  WHERE course_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateLesson обновляет поля урока, отмечает момент изменения и возвращает
// количество изменённых строк.
func (s *Storage) UpdateLesson(ctx context.Context, lessonID int, req models.DummyLesson) (int, error) {
	const op = "storage.UpdateLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE lessons
			  SET name = $1, description = $2, preview = $3, video = $4, course_id = $5, updated_at = now()
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		req.Name, req.Description, req.Preview, req.Video, req.CourseID, lessonID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveLesson удаляет урок и возвращает количество удалённых строк.
func (s *Storage) RemoveLesson(ctx context.Context, lessonID int) (int, error) {
	const op = "storage.RemoveLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM lessons WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, lessonID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/models"
)

// CreateCourse сохраняет новый курс и возвращает его идентификатор.
func (s *Storage) CreateCourse(ctx context.Context, req models.DummyCourse, ownerUID string) (int, error) {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO courses (name, description, preview, owner_uid)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		req.Name, req.Description, req.Preview, ownerUID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetCourse возвращает курс по идентификатору.
func (s *Storage) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	const op = "storage.GetCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	c := &models.Course{}
	var ownerUID, taskID sql.NullString
	query := `SELECT id, name, description, preview, owner_uid, updated_at, notification_task_id, created_at
			  FROM courses WHERE id = $1`
	err := s.DB.QueryRowContext(ctx, query, courseID).Scan(
		&c.ID, &c.Name, &c.Description, &c.Preview, &ownerUID,
		&c.UpdatedAt, &taskID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ownerUID.Valid {
		c.OwnerUID = &ownerUID.String
	}
	if taskID.Valid {
		c.NotificationTaskID = &taskID.String
	}
	return c, nil
}

// GetCourseInfo возвращает курс вместе с уроками, их количеством и признаком
// подписки наблюдателя.
func (s *Storage) GetCourseInfo(ctx context.Context, courseID int, viewerUID string) (*models.CourseInfo, error) {
	const op = "storage.GetCourseInfo"

	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lessons, err := s.ListLessonsByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var subscribed bool
	query := `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_uid = $1 AND course_id = $2)`
	if err := s.DB.QueryRowContext(ctx, query, viewerUID, courseID).Scan(&subscribed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.CourseInfo{
		Course:       *course,
		CountLessons: len(lessons),
		Lessons:      lessons,
		IsSubscribed: subscribed,
	}, nil
}

// ListCourses возвращает страницу курсов, обогащённых количеством уроков и
// признаком подписки наблюдателя. Уроки внутрь списка не включаются.
func (s *Storage) ListCourses(ctx context.Context, viewerUID string, limit, offset int) ([]*models.CourseInfo, error) {
	const op = "storage.ListCourses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.id, c.name, c.description, c.preview, c.owner_uid, c.updated_at,
			      c.notification_task_id, c.created_at,
			      (SELECT count(*) FROM lessons l WHERE l.course_id = c.id) AS count_lessons,
			      EXISTS(SELECT 1 FROM subscriptions sb WHERE sb.user_uid = $1 AND sb.course_id = c.id) AS is_subscribed
			  FROM courses c
			  ORDER BY c.id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, viewerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.CourseInfo
	for rows.Next() {
		info := &models.CourseInfo{}
		var ownerUID, taskID sql.NullString
		if err := rows.Scan(&info.ID, &info.Name, &info.Description, &info.Preview,
			&ownerUID, &info.UpdatedAt, &taskID, &info.CreatedAt,
			&info.CountLessons, &info.IsSubscribed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ownerUID.Valid {
			info.OwnerUID = &ownerUID.String
		}
		if taskID.Valid {
			info.NotificationTaskID = &taskID.String
		}
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateCourse обновляет поля курса, отмечает момент изменения и возвращает
// количество изменённых строк.
func (s *Storage) UpdateCourse(ctx context.Context, courseID int, req models.DummyCourse) (int, error) {
	const op = "storage.UpdateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET name = $1, description = $2, preview = $3, updated_at = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, req.Name, req.Description, req.Preview, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveCourse удаляет курс. Уроки и подписки удаляются каскадно.
func (s *Storage) RemoveCourse(ctx context.Context, courseID int) (int, error) {
	const op = "storage.RemoveCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM courses WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetNotificationTaskID закрепляет за курсом идентификатор отложенной
// задачи уведомления, если он ещё не установлен. Возвращает true, если
// задача была закреплена этим вызовом.
func (s *Storage) SetNotificationTaskID(ctx context.Context, courseID int, taskID string) (bool, error) {
	const op = "storage.SetNotificationTaskID"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET notification_task_id = $1
			  WHERE id = $2 AND notification_task_id IS NULL`
	result, err := s.DB.ExecContext(ctx, query, taskID, courseID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// ClearNotificationTaskID снимает с курса идентификатор задачи уведомления.
func (s *Storage) ClearNotificationTaskID(ctx context.Context, courseID int) error {
	const op = "storage.ClearNotificationTaskID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses SET notification_task_id = NULL WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, courseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

package lesson

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateLesson(ctx context.Context, req models.DummyLesson, ownerUID string) (int, error) {
	args := m.Called(ctx, req, ownerUID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetLesson(ctx context.Context, lessonID int) (*models.Lesson, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockRepository) ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lesson), args.Error(1)
}

func (m *MockRepository) UpdateLesson(ctx context.Context, lessonID int, req models.DummyLesson) (int, error) {
	args := m.Called(ctx, lessonID, req)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RemoveLesson(ctx context.Context, lessonID int) (int, error) {
	args := m.Called(ctx, lessonID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ScheduleCourseUpdate(ctx context.Context, courseID int) {
	m.Called(ctx, courseID)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func ptrInt(v int) *int { return &v }

func TestService_Create(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	actor := authz.Actor{UID: "user-1"}
	req := models.DummyLesson{Name: "Вводный урок", CourseID: ptrInt(7)}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7}, nil).Once()
	repo.On("CreateLesson", mock.Anything, req, "user-1").Return(3, nil).Once()
	notifier.On("ScheduleCourseUpdate", mock.Anything, 7).Once()

	svc := New(repo, notifier, newNoopLogger())
	id, err := svc.Create(context.Background(), actor, req)
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_Create_ModeratorDenied(t *testing.T) {
	repo := new(MockRepository)
	moderator := authz.Actor{UID: "mod-1", IsModerator: true}

	svc := New(repo, new(MockNotifier), newNoopLogger())
	_, err := svc.Create(context.Background(), moderator, models.DummyLesson{Name: "Урок"})
	require.Error(t, err)
	reason, isPermission := apperr.PermissionReason(err)
	assert.True(t, isPermission)
	assert.Equal(t, authz.ReasonModeratorForbidden, reason)
	repo.AssertNotCalled(t, "CreateLesson")
}

func TestService_Create_MissingCourse(t *testing.T) {
	repo := new(MockRepository)
	actor := authz.Actor{UID: "user-1"}

	repo.On("GetCourse", mock.Anything, 99).Return(nil, apperr.ErrNotFound).Once()

	svc := New(repo, new(MockNotifier), newNoopLogger())
	_, err := svc.Create(context.Background(), actor, models.DummyLesson{Name: "Урок", CourseID: ptrInt(99)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	repo.AssertNotCalled(t, "CreateLesson")
}

func TestService_Update_NotifiesParentCourse(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	ownerUID := "user-1"
	actor := authz.Actor{UID: ownerUID}
	req := models.DummyLesson{Name: "Обновлённый урок"}

	repo.On("GetLesson", mock.Anything, 3).Return(&models.Lesson{
		ID: 3, OwnerUID: &ownerUID, CourseID: ptrInt(7),
	}, nil).Once()
	repo.On("UpdateLesson", mock.Anything, 3, req).Return(1, nil).Once()
	notifier.On("ScheduleCourseUpdate", mock.Anything, 7).Once()

	svc := New(repo, notifier, newNoopLogger())
	require.NoError(t, svc.Update(context.Background(), actor, 3, req))

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_Update_StrangerIsDenied(t *testing.T) {
	repo := new(MockRepository)
	ownerUID := "user-1"
	stranger := authz.Actor{UID: "user-2"}

	repo.On("GetLesson", mock.Anything, 3).Return(&models.Lesson{ID: 3, OwnerUID: &ownerUID}, nil).Once()

	svc := New(repo, new(MockNotifier), newNoopLogger())
	err := svc.Update(context.Background(), stranger, 3, models.DummyLesson{Name: "Урок"})
	require.Error(t, err)
	_, isPermission := apperr.PermissionReason(err)
	assert.True(t, isPermission)
	repo.AssertNotCalled(t, "UpdateLesson")
}

func TestService_Remove_ForeignModeratorDenied(t *testing.T) {
	repo := new(MockRepository)
	ownerUID := "user-1"
	moderator := authz.Actor{UID: "mod-1", IsModerator: true}

	repo.On("GetLesson", mock.Anything, 3).Return(&models.Lesson{ID: 3, OwnerUID: &ownerUID}, nil).Once()

	svc := New(repo, new(MockNotifier), newNoopLogger())
	err := svc.Remove(context.Background(), moderator, 3)
	require.Error(t, err)
	_, isPermission := apperr.PermissionReason(err)
	assert.True(t, isPermission)
	repo.AssertNotCalled(t, "RemoveLesson")
}

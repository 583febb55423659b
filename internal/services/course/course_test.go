package course

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

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

func (m *MockRepository) CreateCourse(ctx context.Context, req models.DummyCourse, ownerUID string) (int, error) {
	args := m.Called(ctx, req, ownerUID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockRepository) GetCourseInfo(ctx context.Context, courseID int, viewerUID string) (*models.CourseInfo, error) {
	args := m.Called(ctx, courseID, viewerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseInfo), args.Error(1)
}

func (m *MockRepository) ListCourses(ctx context.Context, viewerUID string, limit, offset int) ([]*models.CourseInfo, error) {
	args := m.Called(ctx, viewerUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CourseInfo), args.Error(1)
}

func (m *MockRepository) UpdateCourse(ctx context.Context, courseID int, req models.DummyCourse) (int, error) {
	args := m.Called(ctx, courseID, req)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RemoveCourse(ctx context.Context, courseID int) (int, error) {
	args := m.Called(ctx, courseID)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) InvalidateByPrefix(prefix string) error {
	args := m.Called(prefix)
	return args.Error(0)
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

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		actor      authz.Actor
		wantDenied bool
	}{
		{name: "regular user creates course", actor: authz.Actor{UID: "user-1"}},
		{name: "moderator is denied", actor: authz.Actor{UID: "mod-1", IsModerator: true}, wantDenied: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			req := models.DummyCourse{Name: "Go для начинающих"}
			if !tt.wantDenied {
				repo.On("CreateCourse", mock.Anything, req, tt.actor.UID).Return(7, nil).Once()
			}

			svc := New(repo, new(MockCache), new(MockNotifier), newNoopLogger())
			id, err := svc.Create(context.Background(), tt.actor, req)

			if tt.wantDenied {
				require.Error(t, err)
				reason, isPermission := apperr.PermissionReason(err)
				assert.True(t, isPermission)
				assert.Equal(t, authz.ReasonModeratorForbidden, reason)
				repo.AssertNotCalled(t, "CreateCourse")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 7, id)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Read_ModeratorSeesForeignCourse(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)
	ownerUID := "owner-1"
	moderator := authz.Actor{UID: "mod-1", IsModerator: true}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7, OwnerUID: &ownerUID}, nil).Once()
	cache.On("Get", "course:7:mod-1", mock.Anything).Return(false, nil).Once()
	repo.On("GetCourseInfo", mock.Anything, 7, "mod-1").Return(&models.CourseInfo{
		Course:       models.Course{ID: 7, OwnerUID: &ownerUID},
		CountLessons: 3,
	}, nil).Once()
	cache.On("Set", "course:7:mod-1", mock.Anything, mock.Anything).Return(nil).Once()

	svc := New(repo, cache, new(MockNotifier), newNoopLogger())
	info, err := svc.Read(context.Background(), moderator, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, info.CountLessons)
	repo.AssertExpectations(t)
}

func TestService_Read_StrangerIsDenied(t *testing.T) {
	repo := new(MockRepository)
	ownerUID := "owner-1"
	stranger := authz.Actor{UID: "user-2"}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7, OwnerUID: &ownerUID}, nil).Once()

	svc := New(repo, new(MockCache), new(MockNotifier), newNoopLogger())
	_, err := svc.Read(context.Background(), stranger, 7)
	require.Error(t, err)
	reason, isPermission := apperr.PermissionReason(err)
	assert.True(t, isPermission)
	assert.Equal(t, authz.ReasonOwnerOrModerator, reason)
	repo.AssertNotCalled(t, "GetCourseInfo")
}

func TestService_Update_SchedulesNotification(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)
	notifier := new(MockNotifier)
	ownerUID := "owner-1"
	owner := authz.Actor{UID: ownerUID}
	req := models.DummyCourse{Name: "Обновлённое название"}

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7, OwnerUID: &ownerUID}, nil).Once()
	repo.On("UpdateCourse", mock.Anything, 7, req).Return(1, nil).Once()
	cache.On("InvalidateByPrefix", "course:7:").Return(nil).Once()
	notifier.On("ScheduleCourseUpdate", mock.Anything, 7).Once()

	svc := New(repo, cache, notifier, newNoopLogger())
	require.NoError(t, svc.Update(context.Background(), owner, 7, req))

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_Remove_ModeratorRules(t *testing.T) {
	ownerUID := "mod-1"
	foreignUID := "owner-2"

	tests := []struct {
		name       string
		actor      authz.Actor
		owner      *string
		wantDenied bool
	}{
		{
			name:  "moderator removes own course",
			actor: authz.Actor{UID: "mod-1", IsModerator: true},
			owner: &ownerUID,
		},
		{
			name:       "moderator cannot remove foreign course",
			actor:      authz.Actor{UID: "mod-1", IsModerator: true},
			owner:      &foreignUID,
			wantDenied: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			cache := new(MockCache)
			repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{ID: 7, OwnerUID: tt.owner}, nil).Once()
			if !tt.wantDenied {
				repo.On("RemoveCourse", mock.Anything, 7).Return(1, nil).Once()
				cache.On("InvalidateByPrefix", "course:7:").Return(nil).Once()
			}

			svc := New(repo, cache, new(MockNotifier), newNoopLogger())
			err := svc.Remove(context.Background(), tt.actor, 7)

			if tt.wantDenied {
				require.Error(t, err)
				_, isPermission := apperr.PermissionReason(err)
				assert.True(t, isPermission)
				repo.AssertNotCalled(t, "RemoveCourse")
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

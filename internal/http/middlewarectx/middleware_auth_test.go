package middlewarectx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ResolveActor(ctx context.Context, token string) (*models.User, authz.Actor, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, authz.Actor{}, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(authz.Actor), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		setupMocks func(*MockService)
		wantStatus int
		wantActor  bool
	}{
		{
			name:       "valid token puts actor into context",
			authHeader: "Bearer good-token",
			setupMocks: func(s *MockService) {
				s.On("ResolveActor", mock.Anything, "good-token").Return(
					&models.User{UID: "uid-1", Email: "u@example.com"},
					authz.Actor{UID: "uid-1", IsModerator: true},
					nil).Once()
			},
			wantStatus: http.StatusOK,
			wantActor:  true,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			authHeader: "Bearer bad-token",
			setupMocks: func(s *MockService) {
				s.On("ResolveActor", mock.Anything, "bad-token").
					Return(nil, authz.Actor{}, errors.New("invalid token")).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			if tt.setupMocks != nil {
				tt.setupMocks(service)
			}

			var gotActor authz.Actor
			var actorFound bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor, actorFound = ActorFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := JWTMiddleware(service, newNoopLogger())(next)
			req := httptest.NewRequest(http.MethodGet, "/courses", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantActor {
				require.True(t, actorFound)
				assert.Equal(t, "uid-1", gotActor.UID)
				assert.True(t, gotActor.IsModerator)
			}
			service.AssertExpectations(t)
		})
	}
}

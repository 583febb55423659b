package create

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/authz"
	"github.com/kovalevadr/course-platform/internal/http/middlewarectx"
	"github.com/kovalevadr/course-platform/internal/lib/validators"
	"github.com/kovalevadr/course-platform/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, actor authz.Actor, req models.DummyLesson) (int, error) {
	args := m.Called(ctx, actor, req)
	return args.Int(0), args.Error(1)
}

func intPtr(v int) *int { return &v }

func TestCreateLessonHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	actor := authz.Actor{UID: "user-1"}

	tests := []struct {
		name           string
		requestBody    interface{}
		withActor      bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание урока",
			requestBody: models.DummyLesson{
				Name:     "Горутины",
				Video:    "https://www.youtube.com/watch?v=f6kdp27TYZs",
				CourseID: intPtr(7),
			},
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, actor, mock.AnythingOfType("models.DummyLesson")).
					Return(15, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":15`,
		},
		{
			name: "ссылка не на YouTube отклоняется",
			requestBody: models.DummyLesson{
				Name:  "Горутины",
				Video: "https://vimeo.com/123456",
			},
			withActor:      true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   validators.VideoLinkMessage,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			withActor:      true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "отсутствует авторизация",
			requestBody: models.DummyLesson{
				Name: "Горутины",
			},
			withActor:      false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name: "указанный курс не существует",
			requestBody: models.DummyLesson{
				Name:     "Горутины",
				CourseID: intPtr(404),
			},
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, actor, mock.AnythingOfType("models.DummyLesson")).
					Return(0, apperr.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/lessons", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.withActor {
				ctx = context.WithValue(ctx, middlewarectx.ActorKey, actor)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}

package sender

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kovalevadr/course-platform/internal/apperr"
	"github.com/kovalevadr/course-platform/internal/lib/rabbitmq"
	"github.com/kovalevadr/course-platform/internal/lib/smtp"
	"github.com/kovalevadr/course-platform/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockRepository) ListSubscriberEmails(ctx context.Context, courseID int) ([]string, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) ClearNotificationTaskID(ctx context.Context, courseID int) error {
	args := m.Called(ctx, courseID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

type mockWriteCloser struct {
	failWrite bool
}

func (w *mockWriteCloser) Write(p []byte) (int, error) {
	if w.failWrite {
		return 0, errors.New("write failed")
	}
	return len(p), nil
}

func (w *mockWriteCloser) Close() error { return nil }

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Quit() error  { return m.Called().Error(0) }
func (m *MockSMTPClient) Close() error { return nil }

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	return "noreply@course-platform.ru"
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func eventBody(t *testing.T, courseID int, taskID string) []byte {
	body, err := json.Marshal(models.CourseUpdatedEvent{CourseID: courseID, TaskID: taskID})
	require.NoError(t, err)
	return body
}

func successfulSMTP(transport *MockTransport, recipients int) *MockSMTPClient {
	client := new(MockSMTPClient)
	client.On("Mail", "noreply@course-platform.ru").Return(nil).Times(recipients)
	client.On("Rcpt", mock.Anything).Return(nil).Times(recipients)
	client.On("Data").Return(&mockWriteCloser{}, nil).Times(recipients)
	client.On("Quit").Return(nil).Times(recipients)
	transport.On("Connect").Return(client, nil).Times(recipients)
	return client
}

func TestSender_SendsToAllSubscribersAndClearsTask(t *testing.T) {
	repo := new(MockRepository)
	publisher := new(MockPublisher)
	transport := new(MockTransport)
	taskID := "task-1"

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{
		ID:                 7,
		Name:               "Go для начинающих",
		UpdatedAt:          time.Now().Add(-5 * time.Hour),
		NotificationTaskID: &taskID,
	}, nil).Once()
	repo.On("ListSubscriberEmails", mock.Anything, 7).
		Return([]string{"a@example.com", "b@example.com"}, nil).Once()
	repo.On("ClearNotificationTaskID", mock.Anything, 7).Return(nil).Once()
	client := successfulSMTP(transport, 2)

	svc := New(repo, transport, publisher, 4*time.Hour, newNoopLogger())
	err := svc.HandleCourseUpdated(eventBody(t, 7, taskID))
	require.NoError(t, err)

	repo.AssertExpectations(t)
	client.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish")
}

func TestSender_FreshCourseIsDeferred(t *testing.T) {
	repo := new(MockRepository)
	publisher := new(MockPublisher)
	transport := new(MockTransport)
	taskID := "task-1"

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{
		ID:                 7,
		UpdatedAt:          time.Now().Add(-time.Hour),
		NotificationTaskID: &taskID,
	}, nil).Once()
	publisher.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RetryKey,
		models.CourseUpdatedEvent{CourseID: 7, TaskID: taskID}).Return(nil).Once()

	svc := New(repo, transport, publisher, 4*time.Hour, newNoopLogger())
	err := svc.HandleCourseUpdated(eventBody(t, 7, taskID))
	require.NoError(t, err)

	repo.AssertNotCalled(t, "ListSubscriberEmails")
	repo.AssertNotCalled(t, "ClearNotificationTaskID")
	transport.AssertNotCalled(t, "Connect")
	publisher.AssertExpectations(t)
}

func TestSender_StaleTaskIsDropped(t *testing.T) {
	repo := new(MockRepository)
	publisher := new(MockPublisher)
	taskID := "task-2"

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{
		ID:                 7,
		UpdatedAt:          time.Now().Add(-5 * time.Hour),
		NotificationTaskID: &taskID,
	}, nil).Once()

	svc := New(repo, new(MockTransport), publisher, 4*time.Hour, newNoopLogger())
	// Событие ссылается на уже заменённую задачу
	err := svc.HandleCourseUpdated(eventBody(t, 7, "task-1"))
	require.NoError(t, err)

	repo.AssertNotCalled(t, "ListSubscriberEmails")
	publisher.AssertNotCalled(t, "Publish")
}

func TestSender_DeletedCourseIsDropped(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetCourse", mock.Anything, 7).Return(nil, apperr.ErrNotFound).Once()

	svc := New(repo, new(MockTransport), new(MockPublisher), 4*time.Hour, newNoopLogger())
	err := svc.HandleCourseUpdated(eventBody(t, 7, "task-1"))
	require.NoError(t, err)
}

func TestSender_NoSubscribersStillClearsTask(t *testing.T) {
	repo := new(MockRepository)
	transport := new(MockTransport)
	taskID := "task-1"

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{
		ID:                 7,
		UpdatedAt:          time.Now().Add(-5 * time.Hour),
		NotificationTaskID: &taskID,
	}, nil).Once()
	repo.On("ListSubscriberEmails", mock.Anything, 7).Return([]string{}, nil).Once()
	repo.On("ClearNotificationTaskID", mock.Anything, 7).Return(nil).Once()

	svc := New(repo, transport, new(MockPublisher), 4*time.Hour, newNoopLogger())
	err := svc.HandleCourseUpdated(eventBody(t, 7, taskID))
	require.NoError(t, err)

	transport.AssertNotCalled(t, "Connect")
	repo.AssertExpectations(t)
}

func TestSender_TransportFailureDefersWithoutClearingTask(t *testing.T) {
	repo := new(MockRepository)
	publisher := new(MockPublisher)
	transport := new(MockTransport)
	taskID := "task-1"

	repo.On("GetCourse", mock.Anything, 7).Return(&models.Course{
		ID:                 7,
		UpdatedAt:          time.Now().Add(-5 * time.Hour),
		NotificationTaskID: &taskID,
	}, nil).Once()
	repo.On("ListSubscriberEmails", mock.Anything, 7).Return([]string{"a@example.com"}, nil).Once()
	transport.On("Connect").Return(nil, errors.New("connection refused")).Once()
	publisher.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RetryKey,
		models.CourseUpdatedEvent{CourseID: 7, TaskID: taskID}).Return(nil).Once()

	svc := New(repo, transport, publisher, 4*time.Hour, newNoopLogger())
	err := svc.HandleCourseUpdated(eventBody(t, 7, taskID))
	require.NoError(t, err)

	repo.AssertNotCalled(t, "ClearNotificationTaskID")
	publisher.AssertExpectations(t)
}

func TestSender_MalformedEventIsDropped(t *testing.T) {
	svc := New(new(MockRepository), new(MockTransport), new(MockPublisher), 4*time.Hour, newNoopLogger())
	err := svc.HandleCourseUpdated([]byte("not json"))
	assert.NoError(t, err)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kovalevadr/course-platform/internal/migrations"
	"github.com/kovalevadr/course-platform/internal/models"
)

// setupTestDatabase поднимает контейнер PostgreSQL и накатывает боевые
// миграции: тесты работают с той же схемой, что и продакшен.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForAll(
			wait.ForListeningPort(nat.Port("5432/tcp")),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	err = migrations.Run(storage.DB, "../../../migrations")
	require.NoError(t, err, "failed to run migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, email, role string, isStaff bool) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, password_hash, role, is_staff)
		VALUES ($1, $2, $3, $4) RETURNING uid`,
		email, "hashedpassword", role, isStaff).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateCourse создает тестовый курс и возвращает его идентификатор
func (f *TestDataFactory) CreateCourse(t *testing.T, name, ownerUID string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO courses (name, owner_uid)
		VALUES ($1, $2) RETURNING id`,
		name, ownerUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateLesson создает тестовый урок и возвращает его идентификатор
func (f *TestDataFactory) CreateLesson(t *testing.T, name string, courseID int, ownerUID string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO lessons (name, video, course_id, owner_uid)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		name, "https://www.youtube.com/watch?v=test", courseID, ownerUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает тестовую подписку
func (f *TestDataFactory) CreateSubscription(t *testing.T, userUID string, courseID int) {
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions (user_uid, course_id)
		VALUES ($1, $2)`,
		userUID, courseID)
	require.NoError(t, err)
}

// CreatePayment создает тестовый платёж и возвращает его идентификатор
func (f *TestDataFactory) CreatePayment(t *testing.T, userUID string, courseID int, amount int64) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO payments (user_uid, course_id, payment_date, amount, form_of_payment)
		VALUES ($1, $2, now(), $3, $4) RETURNING id`,
		userUID, courseID, amount, models.PaymentFormTransfer).Scan(&id)
	require.NoError(t, err)
	return id
}

// SetLastLogin выставляет пользователю момент последнего входа
func (f *TestDataFactory) SetLastLogin(t *testing.T, userUID string, at time.Time) {
	_, err := f.storage.DB.Exec(`UPDATE users SET last_login = $1 WHERE uid = $2`, at, userUID)
	require.NoError(t, err)
}

// CountRows возвращает количество строк таблицы по условию
func (f *TestDataFactory) CountRows(t *testing.T, query string, args ...any) int {
	var count int
	err := f.storage.DB.QueryRow(query, args...).Scan(&count)
	require.NoError(t, err)
	return count
}

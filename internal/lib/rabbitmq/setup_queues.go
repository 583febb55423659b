package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Имена обменника, очередей и ключей маршрутизации уведомлений.
const (
	NotificationsExchange = "notifications"
	CourseUpdatedQueue    = "notification.course_updated"
	CourseUpdatedKey      = "course.updated"
	RetryQueue            = "notification.course_updated.retry"
	RetryKey              = "course.updated.retry"
)

// SetupChannel объявляет обменник и очереди уведомлений. Очередь повторов
// держит сообщение retryDelay и по истечении TTL возвращает его
// в рабочую очередь через dead-letter маршрутизацию: так сбой почтового
// транспорта повторяется с фиксированной задержкой, а не мгновенно.
func SetupChannel(conn *amqp.Connection, retryDelay time.Duration) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		CourseUpdatedQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, CourseUpdatedQueue, err)
	}
	if err := ch.QueueBind(CourseUpdatedQueue, CourseUpdatedKey, NotificationsExchange, false, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, CourseUpdatedQueue, err)
	}

	_, err = ch.QueueDeclare(
		RetryQueue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-message-ttl":             retryDelay.Milliseconds(),
			"x-dead-letter-exchange":    NotificationsExchange,
			"x-dead-letter-routing-key": CourseUpdatedKey,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, RetryQueue, err)
	}
	if err := ch.QueueBind(RetryQueue, RetryKey, NotificationsExchange, false, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, RetryQueue, err)
	}

	return ch, nil
}

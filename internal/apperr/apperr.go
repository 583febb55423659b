// Package apperr определяет таксономию ошибок ядра платформы.
//
// Ошибки валидации обрабатываются валидатором на границе HTTP и сюда
// не входят. Остальные категории — сентинельные значения, которые сервисы
// оборачивают через fmt.Errorf("%s: %w", op, err), а обработчики
// распознают errors.Is/errors.As и переводят в HTTP-статусы.
package apperr

import "errors"

var (
	// ErrNotFound — запрошенный курс, урок, пользователь или платёж не существует.
	ErrNotFound = errors.New("not found")

	// ErrRateUnavailable — источник курсов валют недоступен, создание платежа прервано.
	ErrRateUnavailable = errors.New("currency rate unavailable")

	// ErrPaymentProvider — внешний процессинг вернул ошибку при создании цены или сессии.
	ErrPaymentProvider = errors.New("payment provider error")

	// ErrInvalidSession — у платежа нет сессии оплаты, сверять статус нечего.
	// Это ошибка порядка использования на стороне клиента, а не сбой сервера.
	ErrInvalidSession = errors.New("payment has no checkout session")
)

// PermissionError — отказ политики доступа. Reason показывается пользователю
// дословно и никогда не приводит к повтору запроса.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return e.Reason
}

// Permission создает ошибку отказа с человеко-читаемой причиной.
func Permission(reason string) error {
	return &PermissionError{Reason: reason}
}

// PermissionReason возвращает причину отказа, если err — отказ политики доступа.
func PermissionReason(err error) (string, bool) {
	var pe *PermissionError
	if errors.As(err, &pe) {
		return pe.Reason, true
	}
	return "", false
}

package models

import "time"

// Способы оплаты.
const (
	PaymentFormCash     = "cash"
	PaymentFormTransfer = "transfer"
)

// DefaultPaymentStatus — статус нового платежа до первой сверки с процессингом.
const DefaultPaymentStatus = "unpaid"

// Payment представляет платёж за курс или урок. История платежей переживает
// и пользователя, и оплаченный материал: все ссылки зануляются при удалении.
// PaymentDate выставляется один раз при создании и не изменяется.
// SessionID и Link либо оба nil, либо оба заполнены.
type Payment struct {
	ID            int       `json:"id"`
	UserUID       *string   `json:"user_uid"`
	CourseID      *int      `json:"course_id"`
	LessonID      *int      `json:"lesson_id"`
	PaymentDate   time.Time `json:"payment_date"`
	Amount        int64     `json:"amount"` // Сумма в минимальных единицах локальной валюты
	FormOfPayment string    `json:"form_of_payment"`
	SessionID     *string   `json:"session_id"`
	Link          *string   `json:"link"`
	PaymentStatus string    `json:"payment_status"` // Зеркало статуса процессинга, перезаписывается сверкой
}

// DummyPayment используется для приёма данных платежа из JSON-запроса.
// Должен быть указан курс или урок.
type DummyPayment struct {
	CourseID      *int   `json:"course_id" validate:"omitempty,gt=0"`
	LessonID      *int   `json:"lesson_id" validate:"omitempty,gt=0"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	FormOfPayment string `json:"form_of_payment" validate:"required,oneof=cash transfer"`
}

// DummyUpdatePayment используется администраторами для правки платежа.
type DummyUpdatePayment struct {
	FormOfPayment string `json:"form_of_payment" validate:"omitempty,oneof=cash transfer"`
	PaymentStatus string `json:"payment_status" validate:"omitempty"`
}

// PaymentFilter — параметры фильтрации списка платежей.
type PaymentFilter struct {
	CourseID      *int
	LessonID      *int
	FormOfPayment *string
	OrderByDate   bool // Сортировка по payment_date вместо id
}

// PaymentStatusInfo — результат сверки платежа с внешним процессингом.
type PaymentStatusInfo struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PayerEmail    string `json:"payer_email"`
}

// Package authz реализует политику доступа платформы: чистую функцию
// решения (actor, action, resource) -> Allow | Deny(reason).
//
// Роль модератора — это право на чтение и правку чужих материалов,
// но не на их создание и удаление. Владение ресурсом даёт правку
// и удаление и перекрывает модераторский запрет на удаление собственных
// материалов. Для платежей роль модератора не имеет значения — там
// действуют владение и административные флаги.
//
// Пакет не ходит в хранилище и не возвращает ошибок: любой некорректный
// вход трактуется как отказ с причиной.
package authz

// Action — действие над ресурсом определённого вида.
type Action string

// Действия политики доступа.
const (
	CourseCreate Action = "course.create"
	CourseRead   Action = "course.read"
	CourseUpdate Action = "course.update"
	CourseDelete Action = "course.delete"

	LessonCreate Action = "lesson.create"
	LessonRead   Action = "lesson.read"
	LessonUpdate Action = "lesson.update"
	LessonDelete Action = "lesson.delete"

	PaymentCreate Action = "payment.create"
	PaymentRead   Action = "payment.read"
	PaymentUpdate Action = "payment.update"
	PaymentDelete Action = "payment.delete"

	UserRead   Action = "user.read"
	UserUpdate Action = "user.update"
	UserDelete Action = "user.delete"
)

// Причины отказов, показываемые пользователю дословно.
const (
	ReasonModeratorForbidden = "Модераторам запрещено создавать и удалять материалы."
	ReasonOwnerOrModerator   = "Доступно только владельцу или модератору."
	ReasonOwnerOnly          = "Доступно только владельцу, если он не модератор."
	ReasonAdminOnly          = "Доступно только администратору."
	ReasonOwnerOrAdmin       = "Доступно только владельцу или администратору."
	ReasonSelfOrAdmin        = "Доступно только самому пользователю или администратору."
	ReasonUnknownAction      = "Неизвестное действие."
)

// Actor — неизменяемый контекст аутентифицированного пользователя,
// собираемый один раз на запрос. Членство в группе модераторов
// разрешается в флаг до вызова политики и не перечитывается.
type Actor struct {
	UID         string
	IsModerator bool
	IsStaff     bool
	IsSuperuser bool
}

// IsAdmin сообщает, обладает ли инициатор административными правами.
func (a Actor) IsAdmin() bool {
	return a.IsStaff || a.IsSuperuser
}

// Resource — снимок ресурса на момент решения. Для действий создания
// ресурс отсутствует (nil): владение не определено до создания.
type Resource struct {
	OwnerUID *string // Владелец ресурса; для платежа — его пользователь
}

// Decision — результат политики: разрешение или отказ с причиной.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow — положительное решение.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny — отказ с причиной для пользователя.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide принимает решение о допустимости действия. Функция чистая:
// никаких побочных эффектов, отказ вместо паники на некорректном входе.
func Decide(actor Actor, action Action, res *Resource) Decision {
	switch action {
	case CourseCreate, LessonCreate:
		// Создание закрыто для модераторов; владение до создания не определено.
		if actor.IsModerator {
			return Deny(ReasonModeratorForbidden)
		}
		return Allow()

	case CourseDelete, LessonDelete:
		// Удалять может не-модератор либо владелец: модератор-владелец
		// удаляет своё, чужой модератор — нет.
		if !actor.IsModerator || owns(actor, res) {
			return Allow()
		}
		return Deny(ReasonModeratorForbidden)

	case CourseRead, CourseUpdate, LessonRead, LessonUpdate:
		if actor.IsModerator || owns(actor, res) {
			return Allow()
		}
		return Deny(ReasonOwnerOrModerator)

	case PaymentCreate, PaymentRead:
		if actor.IsAdmin() || owns(actor, res) {
			return Allow()
		}
		return Deny(ReasonOwnerOrAdmin)

	case PaymentUpdate, PaymentDelete:
		if actor.IsAdmin() {
			return Allow()
		}
		return Deny(ReasonAdminOnly)

	case UserRead:
		// Чтение профиля разрешено всем аутентифицированным: сервис сам
		// выбирает полную либо публичную проекцию по CanSeeDetail.
		return Allow()

	case UserUpdate, UserDelete:
		if actor.IsAdmin() || owns(actor, res) {
			return Allow()
		}
		return Deny(ReasonSelfOrAdmin)
	}
	return Deny(ReasonUnknownAction)
}

// CanSeeDetail сообщает, доступна ли инициатору полная проекция профиля
// пользователя subjectUID.
func CanSeeDetail(actor Actor, subjectUID string) bool {
	return actor.IsAdmin() || actor.UID == subjectUID
}

func owns(actor Actor, res *Resource) bool {
	if res == nil || res.OwnerUID == nil || actor.UID == "" {
		return false
	}
	return *res.OwnerUID == actor.UID
}

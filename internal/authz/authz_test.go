package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func res(owner string) *Resource {
	if owner == "" {
		return &Resource{}
	}
	return &Resource{OwnerUID: &owner}
}

func TestDecide_CourseLifecycle(t *testing.T) {
	owner := Actor{UID: "owner-1"}
	moderator := Actor{UID: "mod-1", IsModerator: true}
	moderatorOwner := Actor{UID: "owner-1", IsModerator: true}
	stranger := Actor{UID: "other-1"}

	tests := []struct {
		name    string
		actor   Actor
		action  Action
		res     *Resource
		allowed bool
		reason  string
	}{
		{
			name:    "не-модератор создает курс",
			actor:   owner,
			action:  CourseCreate,
			allowed: true,
		},
		{
			name:    "модератору запрещено создавать курс",
			actor:   moderator,
			action:  CourseCreate,
			allowed: false,
			reason:  ReasonModeratorForbidden,
		},
		{
			name:    "модератору запрещено создавать курс даже будучи владельцем других",
			actor:   moderatorOwner,
			action:  CourseCreate,
			allowed: false,
			reason:  ReasonModeratorForbidden,
		},
		{
			name:    "владелец удаляет свой курс",
			actor:   owner,
			action:  CourseDelete,
			res:     res("owner-1"),
			allowed: true,
		},
		{
			name:    "чужой модератор не может удалить курс",
			actor:   moderator,
			action:  CourseDelete,
			res:     res("owner-1"),
			allowed: false,
			reason:  ReasonModeratorForbidden,
		},
		{
			name:    "модератор-владелец удаляет свой курс",
			actor:   moderatorOwner,
			action:  CourseDelete,
			res:     res("owner-1"),
			allowed: true,
		},
		{
			name:    "не-модератор удаляет чужой курс",
			actor:   stranger,
			action:  CourseDelete,
			res:     res("owner-1"),
			allowed: true,
		},
		{
			name:    "модератор читает чужой курс",
			actor:   moderator,
			action:  CourseRead,
			res:     res("owner-1"),
			allowed: true,
		},
		{
			name:    "модератор правит чужой курс",
			actor:   moderator,
			action:  CourseUpdate,
			res:     res("owner-1"),
			allowed: true,
		},
		{
			name:    "посторонний не читает чужой курс",
			actor:   stranger,
			action:  CourseRead,
			res:     res("owner-1"),
			allowed: false,
			reason:  ReasonOwnerOrModerator,
		},
		{
			name:    "владелец правит свой курс",
			actor:   owner,
			action:  CourseUpdate,
			res:     res("owner-1"),
			allowed: true,
		},
		{
			name:    "курс без владельца недоступен постороннему",
			actor:   stranger,
			action:  CourseUpdate,
			res:     res(""),
			allowed: false,
			reason:  ReasonOwnerOrModerator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.actor, tt.action, tt.res)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.reason, d.Reason)
			}
		})
	}
}

func TestDecide_LessonMirrorsCourse(t *testing.T) {
	moderator := Actor{UID: "mod-1", IsModerator: true}
	owner := Actor{UID: "owner-1"}

	assert.False(t, Decide(moderator, LessonCreate, nil).Allowed)
	assert.True(t, Decide(owner, LessonCreate, nil).Allowed)
	assert.False(t, Decide(moderator, LessonDelete, res("owner-1")).Allowed)
	assert.True(t, Decide(moderator, LessonUpdate, res("owner-1")).Allowed)
	assert.True(t, Decide(moderator, LessonRead, res("owner-1")).Allowed)
	assert.True(t, Decide(owner, LessonDelete, res("owner-1")).Allowed)
}

func TestDecide_Payments(t *testing.T) {
	payer := Actor{UID: "payer-1"}
	admin := Actor{UID: "admin-1", IsStaff: true}
	superuser := Actor{UID: "admin-2", IsSuperuser: true}
	moderator := Actor{UID: "mod-1", IsModerator: true}

	// Владелец платежа и администраторы создают и читают.
	assert.True(t, Decide(payer, PaymentCreate, res("payer-1")).Allowed)
	assert.True(t, Decide(admin, PaymentRead, res("payer-1")).Allowed)
	assert.True(t, Decide(superuser, PaymentRead, res("payer-1")).Allowed)

	// Роль модератора для платежей не значит ничего.
	assert.False(t, Decide(moderator, PaymentRead, res("payer-1")).Allowed)
	assert.False(t, Decide(moderator, PaymentUpdate, res("mod-1")).Allowed)

	// Правка и удаление — только администраторам.
	assert.False(t, Decide(payer, PaymentUpdate, res("payer-1")).Allowed)
	assert.False(t, Decide(payer, PaymentDelete, res("payer-1")).Allowed)
	assert.True(t, Decide(admin, PaymentUpdate, res("payer-1")).Allowed)
	assert.True(t, Decide(superuser, PaymentDelete, res("payer-1")).Allowed)
}

func TestDecide_Users(t *testing.T) {
	self := Actor{UID: "u-1"}
	admin := Actor{UID: "admin-1", IsStaff: true}
	other := Actor{UID: "u-2"}

	assert.True(t, Decide(self, UserUpdate, res("u-1")).Allowed)
	assert.True(t, Decide(admin, UserUpdate, res("u-1")).Allowed)
	assert.False(t, Decide(other, UserUpdate, res("u-1")).Allowed)
	assert.False(t, Decide(other, UserDelete, res("u-1")).Allowed)

	assert.True(t, CanSeeDetail(self, "u-1"))
	assert.True(t, CanSeeDetail(admin, "u-1"))
	assert.False(t, CanSeeDetail(other, "u-1"))
}

func TestDecide_MalformedInputNeverPanics(t *testing.T) {
	// Отсутствующий ресурс и пустой actor дают отказ, а не панику.
	d := Decide(Actor{}, CourseUpdate, nil)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)

	d = Decide(Actor{}, Action("bogus"), nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonUnknownAction, d.Reason)
}

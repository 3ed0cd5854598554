package quiz_test

import (
	"testing"

	quiz "github.com/goliatone/go-quiz"
	"github.com/stretchr/testify/assert"
)

func TestUserRole_IsValid(t *testing.T) {
	tests := []struct {
		name string
		role quiz.UserRole
		want bool
	}{
		{"student", quiz.RoleStudent, true},
		{"admin", quiz.RoleAdmin, true},
		{"empty", quiz.UserRole(""), false},
		{"lowercase admin", quiz.UserRole("admin"), false},
		{"unknown", quiz.UserRole("Moderator"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsValid())
		})
	}
}

func TestUserRole_IsAtLeast(t *testing.T) {
	tests := []struct {
		name    string
		role    quiz.UserRole
		minRole quiz.UserRole
		want    bool
	}{
		{"admin at least student", quiz.RoleAdmin, quiz.RoleStudent, true},
		{"admin at least admin", quiz.RoleAdmin, quiz.RoleAdmin, true},
		{"student at least student", quiz.RoleStudent, quiz.RoleStudent, true},
		{"student not at least admin", quiz.RoleStudent, quiz.RoleAdmin, false},
		{"unknown role never passes", quiz.UserRole("Moderator"), quiz.RoleStudent, false},
		{"unknown minimum never passes", quiz.RoleAdmin, quiz.UserRole("Moderator"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsAtLeast(tt.minRole))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, ok := quiz.ParseRole("Admin")
	assert.True(t, ok)
	assert.Equal(t, quiz.RoleAdmin, role)

	_, ok = quiz.ParseRole("superuser")
	assert.False(t, ok)
}

func TestGetAllRoles(t *testing.T) {
	roles := quiz.GetAllRoles()
	assert.Equal(t, []quiz.UserRole{quiz.RoleStudent, quiz.RoleAdmin}, roles)
}

package user

import "strings"

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher         = "teacher:"
	RoleTeacherHomeroom = "teacher:homeroom"

	// Student
	RoleStudent = "student:"
)

// Person is the authenticated actor, or the subject of a leave declaration.
// Accounts are issued elsewhere; only the identity travels with requests.
type Person struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (p Person) RoleStartsWith(prefix string) bool {
	for _, role := range p.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (p Person) IsAdmin() bool {
	return p.RoleStartsWith(RoleAdmin)
}

func (p Person) IsTeacher() bool {
	return p.RoleStartsWith(RoleTeacher)
}

func (p Person) IsStudent() bool {
	return p.RoleStartsWith(RoleStudent)
}

package checkin

import (
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
)

// Token is the payload decoded from one scanned code.
// Its validity is decided by the attendance service only.
type Token string

// Role tells the attendance service who is checking in.
type Role int

const (
	RoleStudent Role = iota + 1
	RoleTeacher
)

func (r Role) String() string {
	switch r {
	case RoleTeacher:
		return "teacher"
	case RoleStudent:
		return "student"
	default:
		return "unknown"
	}
}

func ParseRole(s string) (Role, error) {
	switch core.CleanString(s, true /* lower */) {
	case "teacher":
		return RoleTeacher, nil
	case "student":
		return RoleStudent, nil
	}
	return 0, errors.Errorf("unknown role %q", s)
}

package leave

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/session"
)

type Kind string

const (
	StudentSick           Kind = "student_sick"
	StudentExcused        Kind = "student_excused"
	StudentEarlyDismissal Kind = "student_early_dismissal"
	TeacherSick           Kind = "teacher_sick"
	TeacherPersonalLeave  Kind = "teacher_personal_leave"
)

var AllKinds = []Kind{StudentSick, StudentExcused, StudentEarlyDismissal, TeacherSick, TeacherPersonalLeave}

func (k Kind) IsTeacher() bool {
	return k == TeacherSick || k == TeacherPersonalLeave
}

func (k Kind) Label() string {
	switch k {
	case StudentSick:
		return "Student sick"
	case StudentExcused:
		return "Student excused"
	case StudentEarlyDismissal:
		return "Student early dismissal"
	case TeacherSick:
		return "Teacher sick"
	case TeacherPersonalLeave:
		return "Teacher personal leave"
	default:
		return string(k)
	}
}

// SessionLeave returns the session leave kind of a teacher-kind request.
func (k Kind) SessionLeave() (session.LeaveKind, bool) {
	switch k {
	case TeacherSick:
		return session.Sick, true
	case TeacherPersonalLeave:
		return session.PersonalLeave, true
	}
	return 0, false
}

func teacherKind(k session.LeaveKind) Kind {
	if k == session.Sick {
		return TeacherSick
	}
	return TeacherPersonalLeave
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) String() string {
	return r.Start.Format("15:04") + "-" + r.End.Format("15:04")
}

// Evidence is a stored attachment: an opaque reference plus the name shown to people.
type Evidence struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
}

// Request is a recorded leave declaration.
type Request struct {
	ID            uuid.UUID  `json:"id"`
	SubjectPerson string     `json:"subject_person"`
	Kind          Kind       `json:"kind"`
	TimeRange     *TimeRange `json:"time_range,omitempty"`
	Evidence      *Evidence  `json:"evidence,omitempty"`
	Note          string     `json:"note"`
	EffectiveDate time.Time  `json:"effective_date"`
	SessionID     *uuid.UUID `json:"session_id,omitempty"`
	SessionLabel  string     `json:"session_label,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// QueryFilter fields are ANDed; zero values are ignored.
type QueryFilter struct {
	SubjectPerson string
	Kinds         []Kind
	SessionID     *uuid.UUID
	From          time.Time // effective date, inclusive
	To            time.Time // effective date, inclusive
}

// Orderings accepted by Query.
var OrderingFields = []string{"effective_date", "created_at", "subject_person", "kind"}

// Inputs

type TeacherAbsence struct {
	Teacher       string    `json:"teacher" validate:"required"`
	Kind          string    `json:"kind" validate:"required,oneof=sick personal_leave"`
	Note          string    `json:"note" validate:"max=500"`
	EffectiveDate time.Time `json:"effective_date"`
}

// Attachment is an evidence file as submitted, before it is stored.
type Attachment struct {
	Name        string    `json:"name" validate:"required"`
	ContentType string    `json:"content_type"`
	Content     io.Reader `json:"content" validate:"required"`
}

type StudentExcuse struct {
	Student       string      `json:"student" validate:"required"`
	Kind          string      `json:"kind" validate:"required,oneof=sick excused"`
	Evidence      *Attachment `json:"evidence" validate:"required"`
	Note          string      `json:"note" validate:"max=500"`
	EffectiveDate time.Time   `json:"effective_date"`
}

type EarlyDismissal struct {
	Student       string    `json:"student" validate:"required"`
	Start         time.Time `json:"start" validate:"required"`
	End           time.Time `json:"end" validate:"required,gtfield=Start"`
	Note          string    `json:"note" validate:"max=500"`
	EffectiveDate time.Time `json:"effective_date"`
}

func (in *TeacherAbsence) clean() {
	in.Teacher = core.CleanString(in.Teacher)
	in.Kind = core.CleanString(in.Kind, true /* lower */)
	in.Note = core.CleanString(in.Note)
}

func (in *StudentExcuse) clean() {
	in.Student = core.CleanString(in.Student)
	in.Kind = core.CleanString(in.Kind, true /* lower */)
	in.Note = core.CleanString(in.Note)
	if in.Evidence != nil {
		in.Evidence.Name = core.CleanString(in.Evidence.Name)
	}
}

func (in *EarlyDismissal) clean() {
	in.Student = core.CleanString(in.Student)
	in.Note = core.CleanString(in.Note)
}

func (in StudentExcuse) kind() Kind {
	if in.Kind == "sick" {
		return StudentSick
	}
	return StudentExcused
}

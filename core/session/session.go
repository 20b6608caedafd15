package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
)

// namespace of the deterministic session IDs.
var namespace = uuid.MustParse("6f1c2a4e-3b0d-5c8e-9a71-2d4b6e8f0a13")

var ErrNotFound = errors.New("session not found")

// LeaveKind is the reason a teacher is excused from a session.
type LeaveKind int

const (
	Sick LeaveKind = iota + 1
	PersonalLeave
)

func (k LeaveKind) String() string {
	switch k {
	case Sick:
		return "sick"
	case PersonalLeave:
		return "personal_leave"
	default:
		return "unknown"
	}
}

func ParseLeaveKind(s string) (LeaveKind, error) {
	switch core.CleanString(s, true /* lower */) {
	case "sick":
		return Sick, nil
	case "personal_leave":
		return PersonalLeave, nil
	}
	return 0, errors.Errorf("unknown leave kind %q", s)
}

type StatusKind int

const (
	StatusOpen StatusKind = iota
	StatusTeacherExcused
	StatusClosed
)

// Status is the state of a TeachingSession.
// The zero value is Open; TeacherExcused and Closed are terminal.
type Status struct {
	kind  StatusKind
	leave LeaveKind
}

func Open() Status                         { return Status{kind: StatusOpen} }
func TeacherExcused(kind LeaveKind) Status { return Status{kind: StatusTeacherExcused, leave: kind} }

// Closed is never produced by the flows of this package; it is kept as the
// status a cancellation path would set.
func Closed() Status { return Status{kind: StatusClosed} }

func (s Status) Kind() StatusKind { return s.kind }

// Leave returns the teacher leave kind, only meaningful when TeacherExcused.
func (s Status) Leave() (LeaveKind, bool) {
	return s.leave, s.kind == StatusTeacherExcused
}

func (s Status) IsOpen() bool     { return s.kind == StatusOpen }
func (s Status) IsTerminal() bool { return s.kind != StatusOpen }

func (s Status) String() string {
	switch s.kind {
	case StatusOpen:
		return "open"
	case StatusTeacherExcused:
		return "teacher_excused:" + s.leave.String()
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type statusJSON struct {
	State string `json:"state"`
	Leave string `json:"leave,omitempty"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	out := statusJSON{State: "open"}
	switch s.kind {
	case StatusTeacherExcused:
		out.State = "teacher_excused"
		out.Leave = s.leave.String()
	case StatusClosed:
		out.State = "closed"
	}
	return json.Marshal(out)
}

// Key identifies a teaching session.
type Key struct {
	Subject   string    `json:"subject" validate:"required"`
	ClassName string    `json:"class_name" validate:"required"`
	TimeSlot  string    `json:"time_slot" validate:"required,timeslot"`
	Date      time.Time `json:"date" validate:"required"`
}

// NewKey normalizes the key fields: trimmed strings and the date truncated to its day.
func NewKey(subject, className, timeSlot string, date time.Time) Key {
	return Key{
		Subject:   core.CleanString(subject),
		ClassName: core.CleanString(className),
		TimeSlot:  strings.ReplaceAll(core.CleanString(timeSlot), " ", ""),
		Date:      core.DateOf(date),
	}
}

// ID is derived from the key so the same schedule entry always maps to the same session.
func (k Key) ID() uuid.UUID {
	name := strings.Join([]string{
		strings.ToLower(k.Subject),
		strings.ToLower(k.ClassName),
		k.TimeSlot,
		k.Date.Format("2006-01-02"),
	}, "|")
	return uuid.NewSHA1(namespace, []byte(name))
}

func (k Key) String() string {
	return fmt.Sprintf("%s / %s / %s / %s", k.Subject, k.ClassName, k.TimeSlot, k.Date.Format("2006-01-02"))
}

// TeachingSession is one subject/class/time-slot/date unit.
type TeachingSession struct {
	ID uuid.UUID `json:"id"`
	Key
	Status Status `json:"status"`
}

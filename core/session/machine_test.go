package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestKey() Key {
	return NewKey(" Mathematics ", "XI RPL 1", "07:30 - 09:00", time.Date(2024, 3, 4, 10, 15, 0, 0, time.UTC))
}

func TestNewKey(t *testing.T) {
	key := newTestKey()
	assert.Equal(t, "Mathematics", key.Subject)
	assert.Equal(t, "07:30-09:00", key.TimeSlot)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), key.Date)

	same := NewKey("mathematics", "xi rpl 1", "07:30-09:00", time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, key.ID(), same.ID(), "identity ignores case and time of day")

	other := NewKey("Mathematics", "XI RPL 1", "09:00-10:30", key.Date)
	assert.NotEqual(t, key.ID(), other.ID())
}

func TestMachine_DeclareTeacherLeave(t *testing.T) {
	tests := []struct {
		name       string
		declare    []LeaveKind
		wantStatus Status
		wantOK     []bool
	}{
		{name: "open by default", wantStatus: Open()},
		{name: "sick", declare: []LeaveKind{Sick}, wantStatus: TeacherExcused(Sick), wantOK: []bool{true}},
		{name: "personal leave", declare: []LeaveKind{PersonalLeave}, wantStatus: TeacherExcused(PersonalLeave), wantOK: []bool{true}},
		{
			name: "second declaration is a no-op", declare: []LeaveKind{Sick, PersonalLeave},
			wantStatus: TeacherExcused(Sick), wantOK: []bool{true, false},
		},
		{
			name: "repeated same kind is a no-op", declare: []LeaveKind{PersonalLeave, PersonalLeave, Sick},
			wantStatus: TeacherExcused(PersonalLeave), wantOK: []bool{true, false, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(newTestKey())
			for i, kind := range tt.declare {
				st, ok := m.DeclareTeacherLeave(kind)
				assert.Equal(t, tt.wantOK[i], ok, "declaration #%d", i)
				assert.Equal(t, m.Status(), st)
			}
			assert.Equal(t, tt.wantStatus, m.Status())
			assert.Equal(t, tt.wantStatus.IsOpen(), m.CheckInOffered())
		})
	}
}

func TestMachine_DeclareTeacherLeaveFunc(t *testing.T) {
	errCommit := errors.New("commit failed")

	m := NewMachine(newTestKey())
	st, ok, err := m.DeclareTeacherLeaveFunc(Sick, func(next Status) error {
		assert.Equal(t, TeacherExcused(Sick), next)
		return errCommit
	})
	assert.Equal(t, errCommit, err)
	assert.False(t, ok)
	assert.Equal(t, Open(), st, "failed commit leaves the session open")

	var commits int
	commit := func(Status) error { commits++; return nil }
	_, ok, err = m.DeclareTeacherLeaveFunc(PersonalLeave, commit)
	assert.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = m.DeclareTeacherLeaveFunc(Sick, commit)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, commits, "commit is not run on a terminal session")
	assert.Equal(t, TeacherExcused(PersonalLeave), m.Status())
}

func TestMachine_ConcurrentDeclarations(t *testing.T) {
	m := NewMachine(newTestKey())

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		transitions int
	)
	for i := 0; i < 50; i++ {
		kind := Sick
		if i%2 == 1 {
			kind = PersonalLeave
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := m.DeclareTeacherLeave(kind); ok {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, transitions)
	assert.True(t, m.Status().IsTerminal())
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status   Status
		wantStr  string
		wantJSON string
		terminal bool
	}{
		{status: Open(), wantStr: "open", wantJSON: `{"state":"open"}`},
		{status: TeacherExcused(Sick), wantStr: "teacher_excused:sick", wantJSON: `{"state":"teacher_excused","leave":"sick"}`, terminal: true},
		{status: TeacherExcused(PersonalLeave), wantStr: "teacher_excused:personal_leave", wantJSON: `{"state":"teacher_excused","leave":"personal_leave"}`, terminal: true},
		{status: Closed(), wantStr: "closed", wantJSON: `{"state":"closed"}`, terminal: true},
	}
	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, tt.status.String())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			data, err := tt.status.MarshalJSON()
			assert.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(data))
		})
	}

	var zero Status
	assert.True(t, zero.IsOpen())
}

func TestParseLeaveKind(t *testing.T) {
	kind, err := ParseLeaveKind(" Sick ")
	assert.NoError(t, err)
	assert.Equal(t, Sick, kind)

	kind, err = ParseLeaveKind("personal_leave")
	assert.NoError(t, err)
	assert.Equal(t, PersonalLeave, kind)

	_, err = ParseLeaveKind("holiday")
	assert.Error(t, err)
}

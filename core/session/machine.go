package session

import "sync"

// Machine owns the status of one TeachingSession.
// The only transition is Open -> TeacherExcused(kind); terminal statuses never change.
type Machine struct {
	mu      sync.RWMutex
	session TeachingSession
}

func NewMachine(key Key) *Machine {
	return &Machine{
		session: TeachingSession{
			ID:     key.ID(),
			Key:    key,
			Status: Open(),
		},
	}
}

func (m *Machine) Session() TeachingSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *Machine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Status
}

// CheckInOffered reports whether scanning should be offered for the session.
func (m *Machine) CheckInOffered() bool {
	return m.Status().IsOpen()
}

// DeclareTeacherLeave moves an Open session to TeacherExcused(kind).
// On any other status it is a no-op: the unchanged status is returned with false.
func (m *Machine) DeclareTeacherLeave(kind LeaveKind) (Status, bool) {
	st, ok, _ := m.DeclareTeacherLeaveFunc(kind, nil)
	return st, ok
}

// DeclareTeacherLeaveFunc is DeclareTeacherLeave with a commit step run under the
// machine lock before the transition. A commit error aborts the transition.
// commit receives the status the session is about to take.
func (m *Machine) DeclareTeacherLeaveFunc(kind LeaveKind, commit func(next Status) error) (Status, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.Status.IsOpen() {
		return m.session.Status, false, nil
	}

	next := TeacherExcused(kind)
	if commit != nil {
		if err := commit(next); err != nil {
			return m.session.Status, false, err
		}
	}
	m.session.Status = next
	return next, true, nil
}

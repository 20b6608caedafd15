package logsvc

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
	"github.com/rhazelina/qr-absence-sub000/core/user"
)

func TestRollbarLogger_prepare(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Debug: true})

	id := uuid.New()
	err := errors.New("smtp down")
	sum := leave.Summary{
		RequestID:     id,
		SubjectPerson: "Budi",
		Kind:          leave.TeacherSick,
		EffectiveDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Note:          "flu",
		Session:       "Biology / X MIPA 3 / 07:30-09:00 / 2024-03-04",
		SessionStatus: "teacher_excused:sick",
	}

	args := logger.prepare("notifying leave", []interface{}{err, user.Person{ID: "t-1"}, sum})
	assert.Equal(t, []interface{}{
		"notifying leave",
		err,
		map[string]interface{}{
			"leave_request_id": id.String(),
			"leave_kind":       "teacher_sick",
			"leave_subject":    "Budi",
			"effective_date":   "2024-03-04",
			"session":          "Biology / X MIPA 3 / 07:30-09:00 / 2024-03-04",
			"session_status":   "teacher_excused:sick",
		},
	}, args, "person is set aside, the summary becomes custom fields")

	fields := leaveFields(leave.Summary{Kind: leave.StudentEarlyDismissal, SubjectPerson: "Sari", Note: "dentist"})
	assert.NotContains(t, fields, "session")
	assert.NotContains(t, fields, "note")

	logger.Info("leave recorded", sum)
	assert.Contains(t, buf.String(), "leave recorded")
}

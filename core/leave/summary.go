package leave

import (
	"time"

	"github.com/google/uuid"
)

// Summary echoes a validated leave declaration back to the people involved.
type Summary struct {
	RequestID     uuid.UUID `json:"request_id"`
	SubjectPerson string    `json:"subject_person"`
	Kind          Kind      `json:"kind"`
	EffectiveDate time.Time `json:"effective_date"`
	TimeRange     string    `json:"time_range,omitempty"`
	EvidenceName  string    `json:"evidence_name,omitempty"`
	EvidenceRef   string    `json:"-"`
	Note          string    `json:"note,omitempty"`
	Session       string    `json:"session,omitempty"`
	SessionStatus string    `json:"session_status,omitempty"`
}

func newSummary(req Request) Summary {
	sum := Summary{
		RequestID:     req.ID,
		SubjectPerson: req.SubjectPerson,
		Kind:          req.Kind,
		EffectiveDate: req.EffectiveDate,
		Note:          req.Note,
		Session:       req.SessionLabel,
	}
	if req.TimeRange != nil {
		sum.TimeRange = req.TimeRange.String()
	}
	if req.Evidence != nil {
		sum.EvidenceName = req.Evidence.Name
		sum.EvidenceRef = req.Evidence.Ref
	}
	return sum
}

func (s Summary) KindLabel() string { return s.Kind.Label() }

func (s Summary) EffectiveDateString() string {
	return s.EffectiveDate.Format("Monday, 2 January 2006")
}

package leave

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/session"
)

var (
	// errors
	ErrAlreadyDeclared = errors.New("leave already declared for this session")

	// NowFunc gives the default effective date.
	NowFunc = time.Now // mockable

	noticeDeclared        = "Leave declared, check-in is closed for this session."
	noticeAlreadyDeclared = "Leave was already declared for this session."
	noticeRecorded        = "Leave request recorded."
)

type (
	Repository interface {
		// CreateRequest returns ErrAlreadyDeclared when the session already holds a teacher request.
		CreateRequest(ctx context.Context, req Request) (Request, error)
		QueryRequests(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Request, error)
	}

	// EvidenceStore keeps evidence files; content checks are its own business.
	EvidenceStore interface {
		Put(ctx context.Context, name, contentType string, r io.Reader) (Evidence, error)
	}

	// EvidenceOpener reads back a stored evidence by its Ref.
	EvidenceOpener interface {
		Open(ctx context.Context, ref string) (io.ReadCloser, error)
	}

	Notifier interface {
		NotifyLeave(ctx context.Context, sum Summary) error
	}

	// Result is the outcome of a leave submission.
	// Applied is false when a teacher absence hit a session that was no longer open.
	Result struct {
		Request Request `json:"request"`
		Summary Summary `json:"summary"`
		Applied bool    `json:"applied"`
		Notice  string  `json:"notice"`
	}

	Service struct {
		repo     Repository
		evidence EvidenceStore
		notifier Notifier
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	evidence EvidenceStore,
	notifier Notifier,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		evidence: evidence,
		notifier: notifier,
		validate: validate,
		logger:   logger,
	}
}

func effectiveDate(d time.Time) time.Time {
	if d.IsZero() {
		return core.DateOf(NowFunc())
	}
	return core.DateOf(d)
}

func (svc *Service) newRequest(person string, kind Kind, note string, date time.Time) Request {
	return Request{
		ID:            uuid.New(),
		SubjectPerson: person,
		Kind:          kind,
		Note:          note,
		EffectiveDate: effectiveDate(date),
		CreatedAt:     NowFunc().UTC(),
	}
}

// DeclareTeacherAbsence records the absence and excuses the teacher from the session.
// On a session that is not open anymore nothing is recorded and the result is not applied.
// A teacher absence already stored for the session is replayed onto m.
func (svc *Service) DeclareTeacherAbsence(ctx context.Context, m *session.Machine, in TeacherAbsence) (Result, error) {
	in.clean()
	if err := svc.validate.Struct(in); err != nil {
		return Result{}, err
	}
	kind, err := session.ParseLeaveKind(in.Kind)
	if err != nil {
		return Result{}, err
	}

	sess := m.Session()
	req := svc.newRequest(in.Teacher, teacherKind(kind), in.Note, in.EffectiveDate)
	req.SessionID = &sess.ID
	req.SessionLabel = sess.Key.String()

	status, applied, err := m.DeclareTeacherLeaveFunc(kind, func(session.Status) error {
		saved, err := svc.repo.CreateRequest(ctx, req)
		if err != nil {
			return err
		}
		req = saved
		return nil
	})
	if errors.Cause(err) == ErrAlreadyDeclared {
		// recorded through another machine: take over the stored status
		if err = svc.RestoreSession(ctx, m); err != nil {
			return Result{}, err
		}
		status, applied = m.Status(), false
	}
	if err != nil {
		return Result{}, errors.Wrap(err, "saving teacher absence")
	}

	sum := newSummary(req)
	sum.SessionStatus = status.String()
	if !applied {
		sum.RequestID = uuid.Nil
		return Result{Summary: sum, Notice: noticeAlreadyDeclared}, nil
	}

	svc.notify(ctx, sum)
	return Result{Request: req, Summary: sum, Applied: true, Notice: noticeDeclared}, nil
}

// SubmitStudentExcuse stores the evidence and records the excuse.
// The session status is never touched by student requests.
func (svc *Service) SubmitStudentExcuse(ctx context.Context, in StudentExcuse) (Result, error) {
	in.clean()
	if err := svc.validate.Struct(in); err != nil {
		return Result{}, err
	}

	evidence, err := svc.evidence.Put(ctx, in.Evidence.Name, in.Evidence.ContentType, in.Evidence.Content)
	if err != nil {
		return Result{}, errors.Wrap(err, "storing evidence")
	}

	req := svc.newRequest(in.Student, in.kind(), in.Note, in.EffectiveDate)
	req.Evidence = &evidence
	return svc.record(ctx, req)
}

func (svc *Service) SubmitEarlyDismissal(ctx context.Context, in EarlyDismissal) (Result, error) {
	in.clean()
	if err := svc.validate.Struct(in); err != nil {
		return Result{}, err
	}

	req := svc.newRequest(in.Student, StudentEarlyDismissal, in.Note, in.EffectiveDate)
	req.TimeRange = &TimeRange{Start: in.Start.UTC(), End: in.End.UTC()}
	return svc.record(ctx, req)
}

func (svc *Service) record(ctx context.Context, req Request) (Result, error) {
	saved, err := svc.repo.CreateRequest(ctx, req)
	if err != nil {
		return Result{}, errors.Wrap(err, "saving leave request")
	}
	sum := newSummary(saved)
	svc.notify(ctx, sum)
	return Result{Request: saved, Summary: sum, Applied: true, Notice: noticeRecorded}, nil
}

func (svc *Service) notify(ctx context.Context, sum Summary) {
	if svc.notifier == nil {
		return
	}
	if err := svc.notifier.NotifyLeave(ctx, sum); err != nil {
		svc.logger.Error(fmt.Sprintf("notifying leave %s: %v", sum.RequestID, err), err, sum)
	}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Request, error) {
	filter.SubjectPerson = core.CleanString(filter.SubjectPerson)
	return svc.repo.QueryRequests(ctx, filter, orderings...)
}

// RestoreSession replays a recorded teacher absence onto a freshly opened session,
// so a screen reopened after a restart sees the status it had.
func (svc *Service) RestoreSession(ctx context.Context, m *session.Machine) error {
	id := m.Session().ID
	reqs, err := svc.repo.QueryRequests(ctx, QueryFilter{
		SessionID: &id,
		Kinds:     []Kind{TeacherSick, TeacherPersonalLeave},
	}, core.DBOrdering{Field: "created_at", Ascending: true})
	if err != nil {
		return errors.Wrap(err, "querying session leave")
	}
	for _, req := range reqs {
		if kind, ok := req.Kind.SessionLeave(); ok {
			m.DeclareTeacherLeave(kind)
		}
	}
	return nil
}

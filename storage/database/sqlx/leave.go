package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

const uniqueViolation = "23505"

// leaveColumns lists the orderable columns; they match leave.OrderingFields.
var leaveColumns = map[string]string{
	"effective_date": "effective_date",
	"created_at":     "created_at",
	"subject_person": "subject_person",
	"kind":           "kind",
}

type leaveRow struct {
	ID            uuid.UUID   `db:"id"`
	SubjectPerson string      `db:"subject_person"`
	Kind          string      `db:"kind"`
	SessionID     null.String `db:"session_id"`
	SessionLabel  null.String `db:"session_label"`
	RangeStart    null.Time   `db:"range_start"`
	RangeEnd      null.Time   `db:"range_end"`
	EvidenceRef   null.String `db:"evidence_ref"`
	EvidenceName  null.String `db:"evidence_name"`
	Note          string      `db:"note"`
	EffectiveDate time.Time   `db:"effective_date"`
	CreatedAt     time.Time   `db:"created_at"`
}

type leaveRepository struct {
	db *sqlx.DB
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(db *sqlx.DB) *leaveRepository {
	return &leaveRepository{db: db}
}

func (repo leaveRepository) toRow(req leave.Request) leaveRow {
	row := leaveRow{
		ID:            req.ID,
		SubjectPerson: req.SubjectPerson,
		Kind:          string(req.Kind),
		SessionLabel:  null.NewString(req.SessionLabel, req.SessionLabel != ""),
		Note:          req.Note,
		EffectiveDate: req.EffectiveDate,
		CreatedAt:     req.CreatedAt.UTC(),
	}
	if req.SessionID != nil {
		row.SessionID = null.StringFrom(req.SessionID.String())
	}
	if req.TimeRange != nil {
		row.RangeStart = null.TimeFrom(req.TimeRange.Start.UTC())
		row.RangeEnd = null.TimeFrom(req.TimeRange.End.UTC())
	}
	if req.Evidence != nil {
		row.EvidenceRef = null.StringFrom(req.Evidence.Ref)
		row.EvidenceName = null.StringFrom(req.Evidence.Name)
	}
	return row
}

func (repo leaveRepository) fromRow(row leaveRow) leave.Request {
	req := leave.Request{
		ID:            row.ID,
		SubjectPerson: row.SubjectPerson,
		Kind:          leave.Kind(row.Kind),
		SessionLabel:  row.SessionLabel.String,
		Note:          row.Note,
		EffectiveDate: core.DateOf(row.EffectiveDate),
		CreatedAt:     row.CreatedAt.UTC(),
	}
	if row.SessionID.Valid {
		if id, err := uuid.Parse(row.SessionID.String); err == nil {
			req.SessionID = &id
		}
	}
	if row.RangeStart.Valid && row.RangeEnd.Valid {
		req.TimeRange = &leave.TimeRange{Start: row.RangeStart.Time.UTC(), End: row.RangeEnd.Time.UTC()}
	}
	if row.EvidenceRef.Valid {
		req.Evidence = &leave.Evidence{Ref: row.EvidenceRef.String, Name: row.EvidenceName.String}
	}
	return req
}

func (repo leaveRepository) CreateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	const q = `
	INSERT INTO leave_request (
		id, subject_person, kind, session_id, session_label, range_start, range_end,
		evidence_ref, evidence_name, note, effective_date, created_at
	) VALUES (
		:id, :subject_person, :kind, :session_id, :session_label, :range_start, :range_end,
		:evidence_ref, :evidence_name, :note, :effective_date, :created_at
	)`

	if _, err := repo.db.NamedExecContext(ctx, q, repo.toRow(req)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && req.Kind.IsTeacher() {
			return leave.Request{}, leave.ErrAlreadyDeclared
		}
		return leave.Request{}, dbError(err, "inserting leave request")
	}
	return req, nil
}

func (repo leaveRepository) QueryRequests(ctx context.Context, filter leave.QueryFilter, orderings ...core.DBOrdering) ([]leave.Request, error) {
	var (
		where []string
		args  []interface{}
	)
	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.SubjectPerson != "" {
		addCond("subject_person = $%d", filter.SubjectPerson)
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			kinds = append(kinds, string(k))
		}
		addCond("kind = ANY($%d)", pq.Array(kinds))
	}
	if filter.SessionID != nil {
		addCond("session_id = $%d", filter.SessionID.String())
	}
	if !filter.From.IsZero() {
		addCond("effective_date >= $%d", core.DateOf(filter.From))
	}
	if !filter.To.IsZero() {
		addCond("effective_date <= $%d", core.DateOf(filter.To))
	}

	q := "SELECT * FROM leave_request"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	orderList := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		if col, ok := leaveColumns[ord.Field]; ok {
			ord.Field = col
			orderList = append(orderList, ord.String())
		}
	}
	orderList = append(orderList, "created_at DESC")
	q += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []leaveRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, dbError(err, "querying leave requests")
	}

	reqs := make([]leave.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, repo.fromRow(row))
	}
	return reqs, nil
}

// dbError wraps err; a closed pool is reported as a shutdown error.
func dbError(err error, msg string) error {
	if errors.Is(err, sql.ErrConnDone) {
		return errors.Wrap(core.NewShutdownError(err.Error()), msg)
	}
	return errors.Wrap(err, msg)
}

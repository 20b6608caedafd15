package echoapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

const (
	orderingParam = "ordering"
	dateLayout    = "2006-01-02"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-other`, dropping fields that are not allowed.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	ord.Orderings = core.ParseOrdering(val, allowed...)
}

// LeaveQuery is the query string of the leave history endpoint.
type LeaveQuery struct {
	Subject   string   `query:"subject"`
	Kinds     []string `query:"kind"`
	SessionID string   `query:"session_id"`
	From      string   `query:"from"`
	To        string   `query:"to"`
}

// Filter converts the query into a leave.QueryFilter.
// Malformed values are reported as field errors.
func (q LeaveQuery) Filter() (leave.QueryFilter, error) {
	var filter leave.QueryFilter
	var fldErrs []core.FieldError

	filter.SubjectPerson = core.CleanString(q.Subject)

	for _, k := range q.Kinds {
		kind := leave.Kind(core.CleanString(k, true /* lower */))
		if !isKnownKind(kind) {
			fldErrs = append(fldErrs, core.FieldError{Field: "kind", Error: "unknown leave kind " + k})
			continue
		}
		filter.Kinds = append(filter.Kinds, kind)
	}

	if q.SessionID != "" {
		id, err := uuid.Parse(q.SessionID)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "session_id", Error: "session_id must be a valid UUID"})
		} else {
			filter.SessionID = &id
		}
	}

	var err error
	if filter.From, err = parseDate(q.From); err != nil {
		fldErrs = append(fldErrs, core.FieldError{Field: "from", Error: "from must be a date like 2006-01-02"})
	}
	if filter.To, err = parseDate(q.To); err != nil {
		fldErrs = append(fldErrs, core.FieldError{Field: "to", Error: "to must be a date like 2006-01-02"})
	}

	if len(fldErrs) > 0 {
		return leave.QueryFilter{}, core.NewValidationError(nil, fldErrs...)
	}
	return filter, nil
}

func isKnownKind(kind leave.Kind) bool {
	for _, k := range leave.AllKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// parseDate parses an optional YYYY-MM-DD value; empty gives the zero time.
func parseDate(s string) (time.Time, error) {
	s = core.CleanString(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

package inmemdb

import (
	"cmp"
	"context"
	"sort"
	"sync"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

type leaveRepository struct {
	mu    sync.RWMutex
	table []leave.Request
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository() *leaveRepository {
	return &leaveRepository{}
}

func (repo *leaveRepository) CreateRequest(_ context.Context, req leave.Request) (leave.Request, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if req.Kind.IsTeacher() && req.SessionID != nil {
		for _, r := range repo.table {
			if r.Kind.IsTeacher() && r.SessionID != nil && *r.SessionID == *req.SessionID {
				return leave.Request{}, leave.ErrAlreadyDeclared
			}
		}
	}
	repo.table = append(repo.table, req)
	return req, nil
}

func (repo *leaveRepository) QueryRequests(_ context.Context, filter leave.QueryFilter, orderings ...core.DBOrdering) ([]leave.Request, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	reqs := make([]leave.Request, 0, len(repo.table))
	for _, r := range repo.table {
		if matches(r, filter) {
			reqs = append(reqs, r)
		}
	}
	sortRequests(reqs, orderings)
	return reqs, nil
}

func matches(r leave.Request, filter leave.QueryFilter) bool {
	if filter.SubjectPerson != "" && r.SubjectPerson != filter.SubjectPerson {
		return false
	}
	if len(filter.Kinds) > 0 {
		var found bool
		for _, k := range filter.Kinds {
			if r.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.SessionID != nil && (r.SessionID == nil || *r.SessionID != *filter.SessionID) {
		return false
	}
	if !filter.From.IsZero() && r.EffectiveDate.Before(core.DateOf(filter.From)) {
		return false
	}
	if !filter.To.IsZero() && r.EffectiveDate.After(core.DateOf(filter.To)) {
		return false
	}
	return true
}

// sortRequests orders by the given fields, then by creation time (newest first).
func sortRequests(reqs []leave.Request, orderings []core.DBOrdering) {
	orderings = append(orderings[:len(orderings):len(orderings)], core.DBOrdering{Field: "created_at"})
	sort.SliceStable(reqs, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(reqs[i], reqs[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b leave.Request, field string) int {
	switch field {
	case "effective_date":
		return cmp.Compare(a.EffectiveDate.Unix(), b.EffectiveDate.Unix())
	case "created_at":
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	case "subject_person":
		return cmp.Compare(a.SubjectPerson, b.SubjectPerson)
	case "kind":
		return cmp.Compare(string(a.Kind), string(b.Kind))
	}
	return 0
}

package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

func newRequest(person string, kind leave.Kind, day int, createdAt time.Time) leave.Request {
	return leave.Request{
		ID:            uuid.New(),
		SubjectPerson: person,
		Kind:          kind,
		EffectiveDate: time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		CreatedAt:     createdAt,
	}
}

func Test_leaveRepository_CreateRequest(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaveRepository()
	sessionID := uuid.New()
	now := time.Now()

	teacher := newRequest("Budi", leave.TeacherSick, 10, now)
	teacher.SessionID = &sessionID
	_, err := repo.CreateRequest(ctx, teacher)
	require.NoError(t, err)

	again := newRequest("Budi", leave.TeacherPersonalLeave, 10, now)
	again.SessionID = &sessionID
	_, err = repo.CreateRequest(ctx, again)
	assert.Equal(t, leave.ErrAlreadyDeclared, err)

	// student requests are never unique per session
	for i := 0; i < 2; i++ {
		student := newRequest("Sari", leave.StudentSick, 10, now)
		student.SessionID = &sessionID
		_, err = repo.CreateRequest(ctx, student)
		require.NoError(t, err)
	}

	reqs, err := repo.QueryRequests(ctx, leave.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, reqs, 3)
}

func Test_leaveRepository_QueryRequests(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaveRepository()
	sessionID := uuid.New()
	now := time.Now()

	budi := newRequest("Budi", leave.TeacherSick, 10, now)
	budi.SessionID = &sessionID
	sari := newRequest("Sari", leave.StudentSick, 11, now.Add(time.Minute))
	dewi := newRequest("Dewi", leave.StudentEarlyDismissal, 12, now.Add(2*time.Minute))
	sari2 := newRequest("Sari", leave.StudentExcused, 12, now.Add(3*time.Minute))
	for _, r := range []leave.Request{budi, sari, dewi, sari2} {
		_, err := repo.CreateRequest(ctx, r)
		require.NoError(t, err)
	}

	ids := func(reqs ...leave.Request) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name      string
		filter    leave.QueryFilter
		orderings []core.DBOrdering
		want      []leave.Request
	}{
		{name: "newest first", want: []leave.Request{sari2, dewi, sari, budi}},
		{name: "by person", filter: leave.QueryFilter{SubjectPerson: "Sari"}, want: []leave.Request{sari2, sari}},
		{name: "by kinds", filter: leave.QueryFilter{Kinds: []leave.Kind{leave.StudentSick, leave.TeacherSick}}, want: []leave.Request{sari, budi}},
		{name: "by session", filter: leave.QueryFilter{SessionID: &sessionID}, want: []leave.Request{budi}},
		{
			name:   "by dates",
			filter: leave.QueryFilter{From: time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC), To: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)},
			want:   []leave.Request{sari},
		},
		{
			name:      "ordered",
			orderings: []core.DBOrdering{{Field: "subject_person", Ascending: true}, {Field: "effective_date"}},
			want:      []leave.Request{budi, dewi, sari2, sari},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs, err := repo.QueryRequests(ctx, tt.filter, tt.orderings...)
			require.NoError(t, err)
			assert.Equal(t, ids(tt.want...), ids(reqs...))
		})
	}
}

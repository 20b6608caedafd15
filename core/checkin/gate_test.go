package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome delivered")
		return Outcome{}
	}
}

func TestGate_SingleFlight(t *testing.T) {
	src := newFakeSource()
	sub := &fakeSubmitter{release: make(chan struct{})}
	gate := NewGate(src, sub, RoleStudent)
	done := make(chan Outcome, 1)

	assert.True(t, gate.Submit(context.Background(), "T1", func(out Outcome) { done <- out }))
	assert.Equal(t, GatePending, gate.State())

	for _, token := range []Token{"T2", "T1", "T3"} {
		assert.False(t, gate.Submit(context.Background(), token, func(Outcome) {
			t.Errorf("outcome delivered for dropped token %s", token)
		}))
	}
	assert.Equal(t, 3, gate.Dropped())

	close(sub.release)
	assert.Equal(t, Accept(), waitOutcome(t, done))

	assert.Equal(t, []Token{"T1"}, sub.submitted())
	assert.Equal(t, []Role{RoleStudent}, sub.roles)
	_, _, pauses, resumes := src.counts()
	assert.Equal(t, 1, pauses)
	assert.Equal(t, 0, resumes)
}

func TestGate_ResumeOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
	}{
		{name: "forbidden", outcome: Reject(Forbidden)},
		{name: "already recorded", outcome: Reject(AlreadyRecorded)},
		{name: "expired", outcome: Reject(Expired)},
		{name: "transport error", outcome: TransportFailure("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			sub := &fakeSubmitter{outcomes: map[Token]Outcome{"T1": tt.outcome}}
			gate := NewGate(src, sub, RoleTeacher)
			done := make(chan Outcome, 1)

			assert.True(t, gate.Submit(context.Background(), "T1", func(out Outcome) { done <- out }))
			assert.Equal(t, tt.outcome, waitOutcome(t, done))

			assert.Equal(t, GateArmed, gate.State())
			_, _, pauses, resumes := src.counts()
			assert.Equal(t, 1, pauses)
			assert.Equal(t, 1, resumes, "resumed exactly once")

			// a new scan goes through again
			assert.True(t, gate.Submit(context.Background(), "T2", func(out Outcome) { done <- out }))
			assert.Equal(t, Accept(), waitOutcome(t, done))
			assert.Equal(t, []Token{"T1", "T2"}, sub.submitted())
		})
	}
}

func TestGate_Accepted(t *testing.T) {
	src := newFakeSource()
	sub := &fakeSubmitter{}
	gate := NewGate(src, sub, RoleStudent)
	done := make(chan Outcome, 1)

	assert.True(t, gate.Submit(context.Background(), "T3", func(out Outcome) { done <- out }))
	assert.Equal(t, Accept(), waitOutcome(t, done))

	assert.Equal(t, GateSettled, gate.State())
	assert.False(t, gate.Submit(context.Background(), "T4", nil))
	_, _, pauses, resumes := src.counts()
	assert.Equal(t, 1, pauses)
	assert.Equal(t, 0, resumes, "scanning is not resumed after acceptance")
}

func TestGate_SubmissionOutlivesContext(t *testing.T) {
	src := newFakeSource()
	sub := &ctxSubmitter{}
	gate := NewGate(src, sub, RoleStudent)
	done := make(chan Outcome, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, gate.Submit(ctx, "T1", func(out Outcome) { done <- out }))
	assert.Equal(t, Accept(), waitOutcome(t, done))
}

// ctxSubmitter fails when handed a cancelled context.
type ctxSubmitter struct{}

func (ctxSubmitter) Submit(ctx context.Context, _ Token, _ Role) Outcome {
	if err := ctx.Err(); err != nil {
		return TransportFailure(err.Error())
	}
	return Accept()
}

func TestOutcome_Notice(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{outcome: Accept(), want: "Attendance recorded."},
		{outcome: Reject(Forbidden), want: "This is not your scheduled session."},
		{outcome: Reject(AlreadyRecorded), want: "You have already checked in."},
		{outcome: Reject(Expired), want: "This code has expired."},
		{outcome: TransportFailure("dial tcp: i/o timeout"), want: "Network error: dial tcp: i/o timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Notice())
		})
	}
}

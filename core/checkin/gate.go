package checkin

import (
	"context"
	"sync"
)

type GateState int

const (
	GateArmed GateState = iota
	GatePending
	GateSettled // a token was accepted, nothing more is submitted
)

func (s GateState) String() string {
	switch s {
	case GateArmed:
		return "armed"
	case GatePending:
		return "pending"
	case GateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// pauser is the part of a Source the gate drives.
type pauser interface {
	Pause()
	Resume()
}

// Gate lets at most one token at a time through to the Submitter.
type Gate struct {
	source    pauser
	submitter Submitter
	role      Role

	mu      sync.Mutex
	state   GateState
	dropped int
}

func NewGate(source pauser, submitter Submitter, role Role) *Gate {
	return &Gate{source: source, submitter: submitter, role: role}
}

// Submit forwards token to the Submitter if the gate is armed and reports false otherwise.
// The source is paused while the submission is pending. Once the outcome is known
// the gate is settled (Accepted) or re-armed with the source resumed, and done is called.
// The submission is not cancelled with ctx.
func (g *Gate) Submit(ctx context.Context, token Token, done func(Outcome)) bool {
	g.mu.Lock()
	if g.state != GateArmed {
		g.dropped++
		g.mu.Unlock()
		return false
	}
	g.state = GatePending
	g.mu.Unlock()

	g.source.Pause()

	ctx = context.WithoutCancel(ctx)
	go func() {
		out := g.submitter.Submit(ctx, token, g.role)
		g.settle(out)
		if done != nil {
			done(out)
		}
	}()
	return true
}

func (g *Gate) settle(out Outcome) {
	g.mu.Lock()
	if out.IsAccepted() {
		g.state = GateSettled
		g.mu.Unlock()
		return
	}
	g.state = GateArmed
	g.mu.Unlock()

	g.source.Resume()
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Dropped returns how many tokens were refused because the gate was not armed.
func (g *Gate) Dropped() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dropped
}

package checkin

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/session"
)

var ErrSessionNotOpen = errors.New("check-in is not offered for this session")

// Screen is one check-in screen bound to a teaching session.
// It owns the source for as long as Run runs; a Screen is used once.
type Screen struct {
	session *session.Machine
	source  Source
	gate    *Gate
	logger  core.Logger
	notify  func(Outcome)

	mu      sync.Mutex
	visible bool
}

// NewScreen builds a screen submitting decoded tokens for role.
// notify, when set, receives every outcome from the Run goroutine.
func NewScreen(
	sess *session.Machine,
	source Source,
	submitter Submitter,
	role Role,
	logger core.Logger,
	notify func(Outcome),
) *Screen {
	s := &Screen{
		session: sess,
		source:  source,
		logger:  logger,
		notify:  notify,
		visible: true,
	}
	s.gate = NewGate(visibleSource{s}, submitter, role)
	return s
}

func (s *Screen) Gate() *Gate { return s.gate }

// Run scans until a token is accepted (nil), ctx is done, the source fails, or the
// session stops offering check-in. The source is stopped on every return path.
// An outcome arriving after Run returned is discarded.
func (s *Screen) Run(ctx context.Context) error {
	sess := s.session.Session()
	if !s.session.CheckInOffered() {
		return errors.Wrap(ErrSessionNotOpen, sess.Status.String())
	}

	if err := s.source.Start(ctx); err != nil {
		return errors.Wrap(err, "starting scan source")
	}
	defer func() {
		if err := s.source.Stop(); err != nil {
			s.logger.Warn(fmt.Sprintf("stopping scan source: %v", err), err)
		}
	}()

	closed := make(chan struct{})
	defer close(closed)

	outcomes := make(chan Outcome)
	deliver := func(out Outcome) {
		select {
		case outcomes <- out:
		case <-closed:
		}
	}

	decoded := s.source.Decoded()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case token, ok := <-decoded:
			if !ok {
				return ErrSourceClosed
			}
			if token == "" {
				continue
			}
			if !s.session.CheckInOffered() {
				return errors.Wrap(ErrSessionNotOpen, s.session.Status().String())
			}
			if !s.gate.Submit(ctx, token, deliver) {
				s.logger.Debug("check-in pending, scan dropped")
			}

		case out := <-outcomes:
			s.logger.Info(fmt.Sprintf("check-in %s: %s", sess.Key, out))
			if s.notify != nil {
				s.notify(out)
			}
			if out.IsAccepted() {
				return nil
			}
		}
	}
}

// SetVisible pauses the source while the screen is hidden.
// Showing it again resumes scanning unless a submission is pending or settled.
func (s *Screen) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.visible == visible {
		return
	}
	s.visible = visible
	if !visible {
		s.source.Pause()
	} else if s.gate.State() == GateArmed {
		s.source.Resume()
	}
}

// visibleSource keeps the source paused while the screen is hidden.
type visibleSource struct{ s *Screen }

func (v visibleSource) Pause() { v.s.source.Pause() }

func (v visibleSource) Resume() {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.visible {
		v.s.source.Resume()
	}
}

func (s *Screen) SetTorch(on bool) error {
	return s.source.SetTorch(on)
}

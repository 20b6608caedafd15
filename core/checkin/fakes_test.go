package checkin

import (
	"context"
	"sync"
)

type fakeSource struct {
	mu       sync.Mutex
	decoded  chan Token
	startErr error
	started  int
	stopped  int
	pauses   int
	resumes  int
	torch    bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{decoded: make(chan Token, 16)}
}

func (s *fakeSource) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started++
	return nil
}

func (s *fakeSource) Pause() {
	s.mu.Lock()
	s.pauses++
	s.mu.Unlock()
}

func (s *fakeSource) Resume() {
	s.mu.Lock()
	s.resumes++
	s.mu.Unlock()
}

func (s *fakeSource) Decoded() <-chan Token { return s.decoded }

func (s *fakeSource) SetTorch(on bool) error {
	s.mu.Lock()
	s.torch = on
	s.mu.Unlock()
	return nil
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	s.stopped++
	s.torch = false
	s.mu.Unlock()
	return nil
}

// counts returns started, stopped, pauses and resumes.
func (s *fakeSource) counts() (int, int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started, s.stopped, s.pauses, s.resumes
}

type fakeSubmitter struct {
	mu       sync.Mutex
	tokens   []Token
	roles    []Role
	outcomes map[Token]Outcome // default: Accepted
	release  chan struct{}     // when set, submissions block until closed
}

func (f *fakeSubmitter) Submit(_ context.Context, token Token, role Role) Outcome {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.roles = append(f.roles, role)
	release := f.release
	out, ok := f.outcomes[token]
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if !ok {
		return Accept()
	}
	return out
}

func (f *fakeSubmitter) submitted() []Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Token(nil), f.tokens...)
}

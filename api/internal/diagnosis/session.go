package diagnosis

import (
	"context"
	"sync"
)

// Diagnoser is what a Session drives; *Client implements it.
type Diagnoser interface {
	Diagnose(ctx context.Context, encoded string) Result
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseClosed:
		return "closed"
	default:
		return "idle"
	}
}

// Session is the single-flight state machine of one widget instance:
// Idle -> Pending -> Idle. A submission while Pending is rejected with
// ErrBusy. Reset and Close drop the in-flight request; its result comes
// back with ErrDiscarded and is never stored.
type Session struct {
	mu      sync.Mutex
	phase   Phase
	gen     uint64
	cancel  context.CancelFunc
	last    Result
	hasLast bool
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Last возвращает последний применённый результат.
func (s *Session) Last() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Submit runs d for encoded and blocks until it finishes.
func (s *Session) Submit(ctx context.Context, d Diagnoser, encoded string) (Result, error) {
	s.mu.Lock()
	switch s.phase {
	case PhaseClosed:
		s.mu.Unlock()
		return Result{}, ErrClosed
	case PhasePending:
		s.mu.Unlock()
		return Result{}, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	s.gen++
	gen := s.gen
	s.phase = PhasePending
	s.cancel = cancel
	s.mu.Unlock()

	r := d.Diagnose(ctx, encoded)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return r, ErrDiscarded
	}
	s.phase = PhaseIdle
	s.cancel = nil
	s.last, s.hasLast = r, true
	return r, nil
}

// Reset returns the session to Idle and forgets the last result
// (e.g. a new image was selected).
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseClosed {
		return
	}
	s.dropInFlight()
	s.phase = PhaseIdle
	s.last, s.hasLast = Result{}, false
}

// Close is the teardown: later submissions fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropInFlight()
	s.phase = PhaseClosed
}

func (s *Session) dropInFlight() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Sessions — сессии по chatID.
type Sessions struct {
	m sync.Map // chatID -> *Session
}

func (ss *Sessions) Get(chatID int64) *Session {
	v, _ := ss.m.LoadOrStore(chatID, &Session{})
	return v.(*Session)
}

// Close закрывает и забывает сессию чата.
func (ss *Sessions) Close(chatID int64) {
	if v, ok := ss.m.LoadAndDelete(chatID); ok {
		v.(*Session).Close()
	}
}

package diagnosis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingDiagnoser waits for release (or ctx) before answering.
type blockingDiagnoser struct {
	started chan struct{}
	release chan struct{}
	result  Result
}

func newBlocking(r Result) *blockingDiagnoser {
	return &blockingDiagnoser{started: make(chan struct{}), release: make(chan struct{}), result: r}
}

func (b *blockingDiagnoser) Diagnose(ctx context.Context, _ string) Result {
	close(b.started)
	select {
	case <-b.release:
		return b.result
	case <-ctx.Done():
		return Failure(ctx.Err())
	}
}

type instant Result

func (i instant) Diagnose(context.Context, string) Result { return Result(i) }

type submitOut struct {
	r   Result
	err error
}

func submitAsync(s *Session, d Diagnoser) <-chan submitOut {
	ch := make(chan submitOut, 1)
	go func() {
		r, err := s.Submit(context.Background(), d, "img")
		ch <- submitOut{r, err}
	}()
	return ch
}

func TestSession_IdlePendingIdle(t *testing.T) {
	var s Session
	assert.Equal(t, PhaseIdle, s.Phase())

	d := newBlocking(Result{Kind: KindSuccess, Name: "Tomato"})
	out := submitAsync(&s, d)
	<-d.started
	assert.Equal(t, PhasePending, s.Phase())

	close(d.release)
	got := <-out
	require.NoError(t, got.err)
	assert.Equal(t, "Tomato", got.r.Name)
	assert.Equal(t, PhaseIdle, s.Phase())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, "Tomato", last.Name)
}

func TestSession_RejectsWhilePending(t *testing.T) {
	var s Session
	d := newBlocking(NotFound())
	out := submitAsync(&s, d)
	<-d.started

	_, err := s.Submit(context.Background(), instant(NotFound()), "img")
	assert.ErrorIs(t, err, ErrBusy)

	close(d.release)
	require.NoError(t, (<-out).err)

	_, err = s.Submit(context.Background(), instant(NotFound()), "img")
	assert.NoError(t, err)
}

func TestSession_CloseDiscardsInFlight(t *testing.T) {
	var s Session
	d := newBlocking(Result{Kind: KindSuccess, Name: "late"})
	out := submitAsync(&s, d)
	<-d.started

	s.Close()

	select {
	case got := <-out:
		assert.ErrorIs(t, got.err, ErrDiscarded)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
	_, ok := s.Last()
	assert.False(t, ok)
	assert.Equal(t, PhaseClosed, s.Phase())

	_, err := s.Submit(context.Background(), instant(NotFound()), "img")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_ResetDropsResultAndInFlight(t *testing.T) {
	var s Session
	_, err := s.Submit(context.Background(), instant(NotFound()), "img")
	require.NoError(t, err)
	s.Reset()
	_, ok := s.Last()
	assert.False(t, ok)

	d := newBlocking(Result{Kind: KindSuccess})
	out := submitAsync(&s, d)
	<-d.started
	s.Reset()
	assert.Equal(t, PhaseIdle, s.Phase())

	got := <-out
	assert.ErrorIs(t, got.err, ErrDiscarded)
	_, ok = s.Last()
	assert.False(t, ok)
}

func TestSessions(t *testing.T) {
	var ss Sessions
	a := ss.Get(1)
	assert.Same(t, a, ss.Get(1))

	ss.Close(1)
	assert.Equal(t, PhaseClosed, a.Phase())
	assert.NotSame(t, a, ss.Get(1))
}

package plaza

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plaza/internal/app/presence"
	"plaza/internal/app/user"
	"plaza/internal/pkg/errs"
)

const testDay = "2026-08-28"

func fixedDay() string { return testDay }

func visitor(id string) user.Snapshot {
	return user.Snapshot{ID: id, Name: id, Avatar: user.AvatarCat, Level: 1}
}

// instantRegistrar resolves every registration immediately with a fixed reward.
type instantRegistrar struct {
	mu    sync.Mutex
	calls [][3]string
}

func (r *instantRegistrar) RegisterEncounter(selfID, otherID, today string) (presence.EncounterResult, *errs.CustomError) {
	r.mu.Lock()
	r.calls = append(r.calls, [3]string{selfID, otherID, today})
	r.mu.Unlock()

	return presence.EncounterResult{
		Snapshot: user.Snapshot{ID: selfID},
		XPGained: 5,
	}, nil
}

func (r *instantRegistrar) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// gatedRegistrar blocks every registration until the test releases it.
type gatedRegistrar struct {
	mu    sync.Mutex
	gates []chan presence.EncounterResult
}

func (r *gatedRegistrar) RegisterEncounter(selfID, otherID, today string) (presence.EncounterResult, *errs.CustomError) {
	gate := make(chan presence.EncounterResult)

	r.mu.Lock()
	r.gates = append(r.gates, gate)
	r.mu.Unlock()

	return <-gate, nil
}

// release resolves the i-th registration call (0-based), waiting for it to
// have started first.
func (r *gatedRegistrar) release(t *testing.T, i int, result presence.EncounterResult) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for {
		r.mu.Lock()
		ready := len(r.gates) > i
		r.mu.Unlock()

		if ready {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("registration call %d never started", i)
		}
		time.Sleep(time.Millisecond)
	}

	r.mu.Lock()
	gate := r.gates[i]
	r.mu.Unlock()

	gate <- result
}

func startSession(t *testing.T, registrar Registrar, dwell time.Duration) *Session {
	t.Helper()

	s := NewSession("test-session", "viewer", registrar, fixedDay, dwell, nil)
	go s.Run()
	t.Cleanup(s.Stop)

	return s
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()

	select {
	case event, ok := <-s.Events():
		require.True(t, ok, "event stream closed unexpectedly")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

func TestSessionPresentsVisitorsInFIFOOrderOnceEach(t *testing.T) {
	registrar := &instantRegistrar{}
	s := startSession(t, registrar, 20*time.Millisecond)

	// A is enqueued twice; it must be presented exactly once.
	s.Enqueue(visitor("a"))
	s.Enqueue(visitor("b"))
	s.Enqueue(visitor("a"))
	s.Enqueue(visitor("c"))

	var presented []string
	for len(presented) < 3 {
		event := nextEvent(t, s)
		if event.Type == EventVisitorActive {
			presented = append(presented, event.Visitor.ID)
		}
	}

	assert.Equal(t, []string{"a", "b", "c"}, presented)

	// No fourth activation: after c clears, the stream stays quiet.
	for {
		select {
		case event := <-s.Events():
			require.NotEqual(t, EventVisitorActive, event.Type)
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}

func TestSessionFiltersViewer(t *testing.T) {
	registrar := &instantRegistrar{}
	s := startSession(t, registrar, 20*time.Millisecond)

	s.Enqueue(visitor("viewer"))
	s.Enqueue(visitor("b"))

	event := nextEvent(t, s)
	require.Equal(t, EventVisitorActive, event.Type)
	assert.Equal(t, "b", event.Visitor.ID)
}

func TestSessionRegistersEncounterPerPresentation(t *testing.T) {
	registrar := &instantRegistrar{}
	s := startSession(t, registrar, 20*time.Millisecond)

	s.Enqueue(visitor("a"))

	event := nextEvent(t, s)
	require.Equal(t, EventVisitorActive, event.Type)

	event = nextEvent(t, s)
	require.Equal(t, EventEncounterResult, event.Type)
	assert.Equal(t, 5, event.Outcome.XPGained)

	event = nextEvent(t, s)
	require.Equal(t, EventVisitorCleared, event.Type)

	registrar.mu.Lock()
	defer registrar.mu.Unlock()
	require.Len(t, registrar.calls, 1)
	assert.Equal(t, [3]string{"viewer", "a", testDay}, registrar.calls[0])
}

func TestSessionVacatesOnDwellEvenWhenRegistrationNeverResolves(t *testing.T) {
	registrar := &gatedRegistrar{}
	s := startSession(t, registrar, 30*time.Millisecond)

	s.Enqueue(visitor("a"))

	event := nextEvent(t, s)
	require.Equal(t, EventVisitorActive, event.Type)

	// The registration call is parked forever; the slot must still clear
	// after the dwell time.
	start := time.Now()
	event = nextEvent(t, s)
	require.Equal(t, EventVisitorCleared, event.Type)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSessionDiscardsStaleRegistrationResult(t *testing.T) {
	registrar := &gatedRegistrar{}
	s := startSession(t, registrar, 30*time.Millisecond)

	s.Enqueue(visitor("a"))
	s.Enqueue(visitor("b"))

	// a activates, dwells out unresolved, then b activates.
	event := nextEvent(t, s)
	require.Equal(t, EventVisitorActive, event.Type)
	require.Equal(t, "a", event.Visitor.ID)

	event = nextEvent(t, s)
	require.Equal(t, EventVisitorCleared, event.Type)

	event = nextEvent(t, s)
	require.Equal(t, EventVisitorActive, event.Type)
	require.Equal(t, "b", event.Visitor.ID)

	// a's registration finally resolves. Its token is stale; the outcome
	// must not be shown against b.
	registrar.release(t, 0, presence.EncounterResult{XPGained: 5})

	event = nextEvent(t, s)
	assert.Equal(t, EventVisitorCleared, event.Type, "stale result must not surface as an encounter outcome")
}

func TestSessionAppliesResultForCurrentOccupant(t *testing.T) {
	registrar := &gatedRegistrar{}
	s := startSession(t, registrar, 200*time.Millisecond)

	s.Enqueue(visitor("a"))

	event := nextEvent(t, s)
	require.Equal(t, EventVisitorActive, event.Type)

	registrar.release(t, 0, presence.EncounterResult{XPGained: 5, LeveledUp: true})

	event = nextEvent(t, s)
	require.Equal(t, EventEncounterResult, event.Type)
	assert.Equal(t, 5, event.Outcome.XPGained)
	assert.True(t, event.Outcome.LeveledUp)
}

func TestSessionStopClosesEventStreamAndCancelsTimer(t *testing.T) {
	registrar := &instantRegistrar{}
	s := NewSession("test-session", "viewer", registrar, fixedDay, time.Hour, nil)
	go s.Run()

	s.Enqueue(visitor("a"))

	event := nextEvent(t, s)
	require.Equal(t, EventVisitorActive, event.Type)

	s.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event stream never closed after Stop")
		}
	}
}

func TestSessionStopIsIdempotent(t *testing.T) {
	registrar := &instantRegistrar{}
	s := startSession(t, registrar, 20*time.Millisecond)

	require.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestSessionEnqueueAfterStopDoesNotBlock(t *testing.T) {
	registrar := &instantRegistrar{}
	s := startSession(t, registrar, 20*time.Millisecond)

	s.Stop()

	// Wait for the Run loop to exit so the enqueue below cannot race it.
	for range s.Events() {
	}

	done := make(chan struct{})
	go func() {
		s.Enqueue(visitor("a"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked after Stop")
	}

	assert.Equal(t, 0, registrar.callCount())
}

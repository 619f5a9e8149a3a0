package plaza

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateAndGetSession(t *testing.T) {
	m := NewManager(&instantRegistrar{}, fixedDay, 20*time.Millisecond)
	defer m.Shutdown()

	session := m.CreateSession("viewer")
	require.NotNil(t, session)
	assert.Equal(t, "viewer", session.ViewerID)

	assert.Same(t, session, m.GetSession(session.ID))
	assert.Nil(t, m.GetSession("no-such-session"))
	assert.Equal(t, 1, m.SessionCount())
}

func TestManagerCleansUpStoppedSessions(t *testing.T) {
	m := NewManager(&instantRegistrar{}, fixedDay, 20*time.Millisecond)
	defer m.Shutdown()

	session := m.CreateSession("viewer")
	session.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for m.SessionCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("stopped session was never cleaned up")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManagerShutdownStopsSessions(t *testing.T) {
	m := NewManager(&instantRegistrar{}, fixedDay, time.Hour)

	session := m.CreateSession("viewer")

	m.Shutdown()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-session.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("session event stream never closed after manager shutdown")
		}
	}
}

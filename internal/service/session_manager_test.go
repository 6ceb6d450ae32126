package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManagerReusesAndEvicts(t *testing.T) {
	var now atomic.Int64
	now.Store(testNow.UnixNano())
	deps := SessionDeps{
		Policy:  DefaultQuotaPolicy(),
		Quizzes: newFakeQuizSource(newTestQuiz(2, model.DifficultyEasy)),
		Clock:   func() time.Time { return time.Unix(0, now.Load()).UTC() },
	}
	provider := store.NewMemoryProvider()
	m := newSessionManager(provider, deps, time.Hour, 0)
	t.Cleanup(m.Close)

	a := m.Acquire("client-a")
	assert.Same(t, a, m.Acquire("client-a"))
	b := m.Acquire("client-b")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, m.Count())

	_, err := a.SetTheme(model.ThemeDark)
	require.NoError(t, err)

	now.Store(testNow.Add(30 * time.Minute).UnixNano())
	a.Snapshot()
	now.Store(testNow.Add(90 * time.Minute).UnixNano())

	assert.Equal(t, 1, m.evictIdle(deps.Clock()))
	assert.Equal(t, 1, m.Count())

	reloaded := m.Acquire("client-b")
	assert.NotSame(t, b, reloaded, "evicted session is rebuilt")
	assert.Same(t, a, m.Acquire("client-a"))

	m.Close()
	assert.Zero(t, m.Count())
	fresh := NewSessionController("client-a", provider.Open("client-a"), deps)
	defer fresh.Close()
	assert.Equal(t, model.ThemeDark, fresh.Snapshot().Theme, "stored preferences outlive the controller")
}

func TestSessionManagerEvictionKeepsGuestResult(t *testing.T) {
	var now atomic.Int64
	now.Store(testNow.UnixNano())
	deps := SessionDeps{
		Policy:  DefaultQuotaPolicy(),
		Quizzes: newFakeQuizSource(newTestQuiz(2, model.DifficultyEasy)),
		Clock:   func() time.Time { return time.Unix(0, now.Load()).UTC() },
	}
	provider := store.NewMemoryProvider()
	m := newSessionManager(provider, deps, time.Hour, 0)
	t.Cleanup(m.Close)

	c := m.Acquire("client-a")
	startAndWait(t, c)
	_, err := c.Finish()
	require.NoError(t, err)

	now.Store(testNow.Add(2 * time.Hour).UnixNano())
	require.Equal(t, 1, m.evictIdle(deps.Clock()))

	_, err = c.Home()
	assert.ErrorIs(t, err, ErrSessionClosed)

	reloaded := m.Acquire("client-a")
	require.NotSame(t, c, reloaded)
	history := reloaded.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.GuestUserID, history[0].UserID)
}

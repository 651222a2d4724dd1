package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadLocksReleaseEntries(t *testing.T) {
	l := newThreadLocks()

	unlock, err := l.lock(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 1, l.size())

	unlock()
	assert.Zero(t, l.size())
}

func TestThreadLocksWaitRespectsContext(t *testing.T) {
	l := newThreadLocks()

	unlock, err := l.lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = l.lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, l.size())

	other, err := l.lock(context.Background(), "b")
	require.NoError(t, err)
	other()
}

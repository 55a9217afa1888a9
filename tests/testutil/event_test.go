package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler(t *testing.T) {
	h := NewMockEventHandler("ebr.approved")
	assert.Equal(t, []string{"ebr.approved"}, h.EventTypes())

	actor := TestUserID()
	ev := NewTestEvent("ebr.approved", actor)
	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 1, h.HandledCount())
	assert.Equal(t, actor, h.Handled()[0].ActorID())

	h.SetError(errors.New("boom"))
	assert.Error(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 2, h.HandledCount())
}

func TestWaitForEventCount(t *testing.T) {
	h := NewMockEventHandler()
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = h.Handle(context.Background(), NewTestEvent("deviation.reported", TestUserID()))
	}()
	WaitForEventCount(t, h, 1, time.Second)
}

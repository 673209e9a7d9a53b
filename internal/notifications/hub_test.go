package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.Subscribers(1))
	assert.Equal(t, 1, hub.Subscribers(2))

	hub.Broadcast(1, []byte("hello"))

	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Equal(t, []byte("hello"), <-b.Send)
	assert.Empty(t, other.Send)

	_ = hub.Shutdown(context.Background())
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	hub := NewHub()

	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers(3))

	// Sending to a departed client must not panic.
	assert.False(t, c.TrySend([]byte("late")))
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(4, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
	assert.Len(t, c.Send, sendBuffer)

	_ = hub.Shutdown(context.Background())
}

func TestHub_Dispatch(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(9, nil)
	require.NoError(t, err)

	msg, err := Encode(9, "comment.approved", map[string]any{"_id": 1})
	require.NoError(t, err)

	hub.Dispatch("feed:post:9", string(msg))
	assert.JSONEq(t, string(msg), string(<-c.Send))

	hub.Dispatch("feed:post:abc", string(msg))
	hub.Dispatch("feed:post:9", "not json")
	assert.Empty(t, c.Send)

	_ = hub.Shutdown(context.Background())
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(5, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, open := <-c.Send
	assert.False(t, open)

	_, err = hub.Register(5, nil)
	assert.ErrorIs(t, err, ErrHubShutdown)

	// The read pump of a closed client still unregisters afterwards.
	hub.UnregisterClient(c)
}

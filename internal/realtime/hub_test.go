package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"taskbuddy-api/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu     sync.Mutex
	msgs   [][]byte
	failed bool
}

func (f *fakeClient) Send(message []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return false
	}
	f.msgs = append(f.msgs, message)
	return true
}

func (f *fakeClient) Close() {}

func TestHub_PublishReachesOnlyOwner(t *testing.T) {
	h := NewHub()
	alice, bob := &fakeClient{}, &fakeClient{}
	h.Register("alice", alice)
	h.Register("bob", bob)

	task := models.Task{ID: "t-1", Title: "a"}
	h.Publish(Event{Type: EventTaskCreated, UserID: "alice", TaskID: task.ID, Task: &task})

	require.Len(t, alice.msgs, 1)
	require.Empty(t, bob.msgs)

	var evt Event
	require.NoError(t, json.Unmarshal(alice.msgs[0], &evt))
	require.Equal(t, EventTaskCreated, evt.Type)
	require.Equal(t, "t-1", evt.TaskID)
	require.Equal(t, 1, evt.Version)
	require.False(t, evt.At.IsZero())
}

func TestHub_UnregisterAndFailedSends(t *testing.T) {
	h := NewHub()
	ok, broken := &fakeClient{}, &fakeClient{failed: true}
	h.Register("alice", ok)
	h.Register("alice", broken)
	require.Equal(t, 2, h.Clients("alice"))

	require.Equal(t, 1, h.Broadcast("alice", []byte("x")))

	h.Unregister("alice", ok)
	h.Unregister("alice", broken)
	require.Equal(t, 0, h.Clients("alice"))
	require.Equal(t, 0, h.Broadcast("alice", []byte("x")))
}

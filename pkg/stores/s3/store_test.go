package s3

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/types"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]

	if !ok {
		return nil, ErrNoSuchKey
	}

	return data, nil
}

func (m *memoryObjects) Put(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = body
	return nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return ErrNoSuchKey
	}

	delete(m.objects, key)
	return nil
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	objects := &memoryObjects{objects: map[string][]byte{}}
	store := NewSessionStore(objects)
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	state := chat.NewState()
	state.Append(30, types.NewUserTurn("concluir reunião", at))
	state.Mode = chat.Selecting(intent.KindComplete, []chat.Candidate{{ID: "A", Title: "Reunião"}})

	require.NoError(t, store.Put(ctx, "user-1", state))
	assert.Contains(t, objects.objects, "sessions/user-1.json")

	loaded, ok, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "concluir reunião", loaded.History[0].Content)
	assert.Equal(t, intent.KindComplete, loaded.Mode.LastActionContext())
	assert.Len(t, loaded.Mode.PendingTaskList(), 1)

	require.NoError(t, store.Delete(ctx, "user-1"))
	require.NoError(t, store.Delete(ctx, "user-1"))

	_, ok, err = store.Get(ctx, "user-1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStoreDropsCorruptObjects(t *testing.T) {
	objects := &memoryObjects{objects: map[string][]byte{"sessions/u.json": []byte("{not json")}}

	state, ok, err := NewSessionStore(objects).Get(context.Background(), "u")

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, state)
}

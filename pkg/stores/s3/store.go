package s3

import (
	"context"
	"encoding/json"
	"errors"
	"path"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/chat"
)

/*
Objects is the slice of Conn the session store needs.
*/
type Objects interface {
	Get(ctx context.Context, objectKey string) ([]byte, error)
	Put(ctx context.Context, objectKey string, body []byte) error
	Delete(ctx context.Context, objectKey string) error
}

/*
SessionStore keeps each user's conversation as one JSON object, so
several server replicas can share dialogue state.
*/
type SessionStore struct {
	objects Objects
	prefix  string
}

func NewSessionStore(objects Objects) *SessionStore {
	return &SessionStore{objects: objects, prefix: "sessions"}
}

func (store *SessionStore) key(userID string) string {
	return path.Join(store.prefix, userID+".json")
}

func (store *SessionStore) Get(ctx context.Context, userID string) (*chat.State, bool, error) {
	data, err := store.objects.Get(ctx, store.key(userID))

	if errors.Is(err, ErrNoSuchKey) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	state := chat.NewState()

	if err := json.Unmarshal(data, state); err != nil {
		log.Error("dropping unreadable session", "user", userID, "error", err)
		return nil, false, nil
	}

	return state, true, nil
}

func (store *SessionStore) Put(ctx context.Context, userID string, state *chat.State) error {
	data, err := json.Marshal(state)

	if err != nil {
		return err
	}

	return store.objects.Put(ctx, store.key(userID), data)
}

func (store *SessionStore) Delete(ctx context.Context, userID string) error {
	err := store.objects.Delete(ctx, store.key(userID))

	if errors.Is(err, ErrNoSuchKey) {
		return nil
	}

	return err
}

package chat

import (
	"context"
	"time"

	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

/*
Extraction is what the extraction port pulls out of a create request.
DueDate is empty when no date was mentioned.
*/
type Extraction struct {
	Title    string
	DueDate  string
	Priority string
}

// Extractor is the external task-extraction port.
type Extractor interface {
	Extract(ctx context.Context, message string, now time.Time) (Extraction, error)
}

// Answerer is the external general question-answering port.
type Answerer interface {
	Answer(ctx context.Context, userPrompt, systemPrompt string) (string, error)
}

/*
SessionStore keeps one State per user.  Eviction is up to the
implementation; the assistant only ever reads, replaces or deletes.
*/
type SessionStore interface {
	Get(ctx context.Context, userID string) (*State, bool, error)
	Put(ctx context.Context, userID string, state *State) error
	Delete(ctx context.Context, userID string) error
}

/*
ActionExecutor performs confirmed mutations.  Every method checks that the
task belongs to userID and reports errors.ErrTaskNotFound otherwise.
*/
type ActionExecutor interface {
	Complete(ctx context.Context, userID, taskID string) (tasks.Task, error)
	Delete(ctx context.Context, userID, taskID string) (tasks.Task, error)
	Create(ctx context.Context, userID string, draft tasks.Draft) (tasks.Task, error)
	UpdateStatus(ctx context.Context, userID, taskID string, status tasks.Status) (tasks.Task, error)
}

/*
Metrics receives one record per turn and per failed port call.
*/
type Metrics interface {
	RecordTurn(intent, source string, elapsed time.Duration)
	RecordPortFailure(port string)
	RecordAction(action string, success bool)
}

// AuditSink is notified after every executed action.
type AuditSink func(userID string, entry types.AuditEntry)

type nopMetrics struct{}

func (nopMetrics) RecordTurn(string, string, time.Duration) {}
func (nopMetrics) RecordPortFailure(string) {}
func (nopMetrics) RecordAction(string, bool) {}

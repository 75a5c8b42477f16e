package chat

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
	"github.com/theapemachine/taskagent/pkg/utils"
)

const genericApology = "Desculpe, ocorreu um erro. Tente novamente ou digite 'ajuda' para ver os comandos disponíveis."

/*
Assistant runs the dialogue.  Each turn is a linear pipeline: load the
user's state, resolve the intent, run the handler, then commit the new mode
and both turns in one write.  Turns of the same user are serialized; turns
of different users run concurrently.
*/
type Assistant struct {
	sessions     SessionStore
	executor     ActionExecutor
	cascade      *intent.Cascade
	extractor    Extractor
	answerer     Answerer
	metrics      Metrics
	audit        AuditSink
	clock        tasks.Clock
	location     *time.Location
	historyLimit int
	portTimeout  time.Duration
	locks        *utils.KeyedMutex

	rngMu sync.Mutex
	rng   *rand.Rand
}

type AssistantOption func(*Assistant)

func NewAssistant(options ...AssistantOption) *Assistant {
	assistant := &Assistant{
		cascade:      intent.NewCascade(),
		metrics:      nopMetrics{},
		clock:        time.Now,
		location:     tasks.LoadZone(tasks.DefaultZone),
		historyLimit: DefaultHistoryLimit,
		portTimeout:  20 * time.Second,
		locks:        utils.NewKeyedMutex(),
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x7a5c)),
	}

	for _, option := range options {
		option(assistant)
	}

	if assistant.sessions == nil {
		assistant.sessions = newMemorySessions()
	}

	return assistant
}

func WithSessionStore(store SessionStore) AssistantOption {
	return func(assistant *Assistant) {
		assistant.sessions = store
	}
}

func WithActionExecutor(executor ActionExecutor) AssistantOption {
	return func(assistant *Assistant) {
		assistant.executor = executor
	}
}

func WithCascade(cascade *intent.Cascade) AssistantOption {
	return func(assistant *Assistant) {
		assistant.cascade = cascade
	}
}

func WithExtractor(extractor Extractor) AssistantOption {
	return func(assistant *Assistant) {
		assistant.extractor = extractor
	}
}

func WithAnswerer(answerer Answerer) AssistantOption {
	return func(assistant *Assistant) {
		assistant.answerer = answerer
	}
}

func WithMetrics(metrics Metrics) AssistantOption {
	return func(assistant *Assistant) {
		if metrics != nil {
			assistant.metrics = metrics
		}
	}
}

func WithAuditSink(sink AuditSink) AssistantOption {
	return func(assistant *Assistant) {
		assistant.audit = sink
	}
}

func WithClock(clock tasks.Clock) AssistantOption {
	return func(assistant *Assistant) {
		assistant.clock = clock
	}
}

func WithLocation(location *time.Location) AssistantOption {
	return func(assistant *Assistant) {
		assistant.location = location
	}
}

// WithRand pins the source used to pick canned replies.
func WithRand(rng *rand.Rand) AssistantOption {
	return func(assistant *Assistant) {
		assistant.rng = rng
	}
}

func WithHistoryLimit(limit int) AssistantOption {
	return func(assistant *Assistant) {
		if limit > 0 {
			assistant.historyLimit = limit
		}
	}
}

func WithPortTimeout(timeout time.Duration) AssistantOption {
	return func(assistant *Assistant) {
		if timeout > 0 {
			assistant.portTimeout = timeout
		}
	}
}

func (assistant *Assistant) pick(options []string) string {
	assistant.rngMu.Lock()
	defer assistant.rngMu.Unlock()

	return options[assistant.rng.IntN(len(options))]
}

func (assistant *Assistant) load(ctx context.Context, userID string) (*State, error) {
	state, ok, err := assistant.sessions.Get(ctx, userID)

	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", userID, err)
	}

	if !ok || state == nil {
		return NewState(), nil
	}

	return state.Clone(), nil
}

/*
ProcessMessage runs one turn.  snapshot is the caller's point-in-time copy
of the user's tasks; it is read, never modified.  Errors are only returned
when the session store fails; everything else ends in a reply.
*/
func (assistant *Assistant) ProcessMessage(
	ctx context.Context, userID, message string, snapshot []tasks.Task,
) (response types.Response, err error) {
	unlock := assistant.locks.Lock(userID)
	defer unlock()

	started := time.Now()

	working, err := assistant.load(ctx, userID)

	if err != nil {
		return types.Response{}, err
	}

	now := assistant.clock().In(assistant.location)
	userTurn := types.NewUserTurn(message, now)

	defer func() {
		recovered := recover()

		if recovered == nil {
			return
		}

		log.Error("chat turn panicked", "user", userID, "panic", recovered)

		response = types.TextResponse(genericApology)
		working.Append(assistant.historyLimit, userTurn, types.NewAssistantTurn(genericApology, "", now))
		working.UpdatedAt = now

		if putErr := assistant.sessions.Put(ctx, userID, working); putErr != nil {
			err = fmt.Errorf("store session %s: %w", userID, putErr)
		}
	}()

	decision := assistant.cascade.Resolve(ctx, intent.Input{
		Message:    message,
		History:    working.History,
		Pending:    working.Mode.LastActionContext(),
		Confirming: working.Mode.AwaitingConfirmation(),
	})

	if decision.Err != nil {
		assistant.metrics.RecordPortFailure("classifier")
	}

	log.Info(
		"intent resolved",
		"user", userID,
		"intent", decision.Intent,
		"source", decision.Source,
		"context", decision.Context,
		"preview", clip(message, 50),
	)

	current := &turn{
		ctx:        ctx,
		userID:     userID,
		message:    message,
		normalized: intent.Normalize(message),
		snapshot:   snapshot,
		state:      working,
		now:        now,
		userTurn:   userTurn,
	}

	result := assistant.dispatch(current, decision.Intent)

	if result.mode != nil {
		working.Mode = *result.mode
	}

	working.Append(
		assistant.historyLimit,
		userTurn,
		types.NewAssistantTurn(result.response.Message, string(decision.Intent), now),
	)
	working.UpdatedAt = now

	if err = assistant.sessions.Put(ctx, userID, working); err != nil {
		return types.Response{}, fmt.Errorf("store session %s: %w", userID, err)
	}

	assistant.metrics.RecordTurn(string(decision.Intent), string(decision.Source), time.Since(started))

	return result.response, nil
}

// History returns a copy of the user's conversation.
func (assistant *Assistant) History(ctx context.Context, userID string) ([]types.ConversationTurn, error) {
	state, err := assistant.load(ctx, userID)

	if err != nil {
		return nil, err
	}

	return slices.Clone(state.History), nil
}

/*
ClearHistory forgets the conversation and any outstanding selection or
confirmation.  The audit log of executed actions is kept.
*/
func (assistant *Assistant) ClearHistory(ctx context.Context, userID string) error {
	unlock := assistant.locks.Lock(userID)
	defer unlock()

	state, err := assistant.load(ctx, userID)

	if err != nil {
		return err
	}

	if len(state.ExecutedActions) == 0 {
		return assistant.sessions.Delete(ctx, userID)
	}

	state.History = nil
	state.Mode = Idle()
	state.UpdatedAt = assistant.clock()

	return assistant.sessions.Put(ctx, userID, state)
}

/*
AgentStatus is the side view of a conversation exposed next to the chat.
*/
type AgentStatus struct {
	Mode              Phase              `json:"mode"`
	PendingAction     *string            `json:"pending_action"`
	PendingTasksCount int                `json:"pending_tasks_count"`
	ExecutedActions   []types.AuditEntry `json:"executed_actions"`
	HistorySize       int                `json:"history_size"`
}

func (assistant *Assistant) Status(ctx context.Context, userID string) (AgentStatus, error) {
	state, err := assistant.load(ctx, userID)

	if err != nil {
		return AgentStatus{}, err
	}

	status := AgentStatus{
		Mode:              state.Mode.Phase(),
		PendingTasksCount: len(state.Mode.PendingTaskList()),
		ExecutedActions:   state.ExecutedActions,
		HistorySize:       len(state.History),
	}

	if status.ExecutedActions == nil {
		status.ExecutedActions = []types.AuditEntry{}
	}

	if kind := state.Mode.Kind(); !state.Mode.IsIdle() && kind != intent.KindNone {
		pending := string(kind)
		status.PendingAction = &pending
	}

	return status, nil
}

// memorySessions is the fallback store used when none is configured.
type memorySessions struct {
	mu     sync.RWMutex
	states map[string]*State
}

func newMemorySessions() *memorySessions {
	return &memorySessions{states: map[string]*State{}}
}

func (store *memorySessions) Get(_ context.Context, userID string) (*State, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	state, ok := store.states[userID]
	return state, ok, nil
}

func (store *memorySessions) Put(_ context.Context, userID string, state *State) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.states[userID] = state
	return nil
}

func (store *memorySessions) Delete(_ context.Context, userID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.states, userID)
	return nil
}

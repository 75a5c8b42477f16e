package chat

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

// DefaultHistoryLimit is how many turns a conversation keeps.
const DefaultHistoryLimit = 30

/*
Candidate is a task as it was shown to the user in a numbered list or a
confirmation prompt.
*/
type Candidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func candidateOf(task tasks.Task) Candidate {
	return Candidate{ID: task.ID, Title: task.Title}
}

func candidatesOf(snapshot []tasks.Task) []Candidate {
	out := make([]Candidate, 0, len(snapshot))

	for _, task := range snapshot {
		out = append(out, candidateOf(task))
	}

	return out
}

/*
CreateDraft is the create payload carried by a pending create confirmation.
DueDate uses the canonical "YYYY-MM-DD HH:MM" form, or a bare date.
*/
type CreateDraft struct {
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	DueDate  *string `json:"due_date"`
	Priority string  `json:"priority"`
}

// Phase is the discriminator of a Mode.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSelecting  Phase = "awaiting_selection"
	PhaseConfirming Phase = "awaiting_confirmation"
)

/*
Mode is the dialogue state.  It is one of

	Idle
	AwaitingSelection{kind, candidates}
	AwaitingConfirmation{kind, target or draft}

and is only built through the constructors below, so a selection list
cannot exist without its kind and a confirmation always names what it
confirms.
*/
type Mode struct {
	phase      Phase
	kind       intent.ActionKind
	candidates []Candidate
	target     Candidate
	status     tasks.Status
	draft      CreateDraft
}

func Idle() Mode {
	return Mode{phase: PhaseIdle}
}

// Selecting waits for the user to pick one of the listed candidates.
func Selecting(kind intent.ActionKind, candidates []Candidate) Mode {
	return Mode{phase: PhaseSelecting, kind: kind, candidates: slices.Clone(candidates)}
}

// SelectingUpdate is Selecting for an update that already knows the status
// the user asked for.
func SelectingUpdate(candidates []Candidate, status tasks.Status) Mode {
	mode := Selecting(intent.KindUpdate, candidates)
	mode.status = status
	return mode
}

// Confirming waits for the user to confirm completing or deleting target.
func Confirming(kind intent.ActionKind, target Candidate) Mode {
	return Mode{phase: PhaseConfirming, kind: kind, target: target}
}

func ConfirmingStatus(target Candidate, status tasks.Status) Mode {
	return Mode{phase: PhaseConfirming, kind: intent.KindUpdate, target: target, status: status}
}

func ConfirmingCreate(draft CreateDraft) Mode {
	return Mode{phase: PhaseConfirming, kind: intent.KindCreate, draft: draft}
}

func (mode Mode) Phase() Phase {
	if mode.phase == "" {
		return PhaseIdle
	}

	return mode.phase
}

func (mode Mode) Kind() intent.ActionKind { return mode.kind }
func (mode Mode) Target() Candidate { return mode.target }
func (mode Mode) Status() tasks.Status { return mode.status }
func (mode Mode) Draft() CreateDraft { return mode.draft }
func (mode Mode) Candidates() []Candidate { return slices.Clone(mode.candidates) }
func (mode Mode) IsIdle() bool { return mode.Phase() == PhaseIdle }
func (mode Mode) IsConfirming(kind intent.ActionKind) bool {
	return mode.Phase() == PhaseConfirming && mode.kind == kind
}

// LastActionContext is the kind of the outstanding selection list, if any.
func (mode Mode) LastActionContext() intent.ActionKind {
	if mode.Phase() == PhaseSelecting {
		return mode.kind
	}

	return intent.KindNone
}

// PendingTaskList is the list last shown for selection.
func (mode Mode) PendingTaskList() []Candidate {
	if mode.Phase() == PhaseSelecting {
		return mode.Candidates()
	}

	return nil
}

// AwaitingConfirmation is the kind of the outstanding confirmation, if any.
func (mode Mode) AwaitingConfirmation() intent.ActionKind {
	if mode.Phase() == PhaseConfirming {
		return mode.kind
	}

	return intent.KindNone
}

type modeWire struct {
	Phase      Phase             `json:"phase"`
	Kind       intent.ActionKind `json:"kind,omitempty"`
	Candidates []Candidate       `json:"candidates,omitempty"`
	Target     *Candidate        `json:"target,omitempty"`
	Status     tasks.Status      `json:"status,omitempty"`
	Draft      *CreateDraft      `json:"draft,omitempty"`
}

func (mode Mode) MarshalJSON() ([]byte, error) {
	wire := modeWire{
		Phase:      mode.Phase(),
		Kind:       mode.kind,
		Candidates: mode.candidates,
		Status:     mode.status,
	}

	if mode.target.ID != "" {
		target := mode.target
		wire.Target = &target
	}

	if mode.kind == intent.KindCreate {
		draft := mode.draft
		wire.Draft = &draft
	}

	return json.Marshal(wire)
}

func (mode *Mode) UnmarshalJSON(data []byte) error {
	var wire modeWire

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch {
	case wire.Phase == PhaseSelecting && wire.Kind == intent.KindUpdate:
		*mode = SelectingUpdate(wire.Candidates, wire.Status)
	case wire.Phase == PhaseSelecting && wire.Kind != intent.KindNone:
		*mode = Selecting(wire.Kind, wire.Candidates)
	case wire.Phase == PhaseConfirming && wire.Kind == intent.KindCreate && wire.Draft != nil:
		*mode = ConfirmingCreate(*wire.Draft)
	case wire.Phase == PhaseConfirming && wire.Kind == intent.KindUpdate && wire.Target != nil:
		*mode = ConfirmingStatus(*wire.Target, wire.Status)
	case wire.Phase == PhaseConfirming && wire.Target != nil:
		*mode = Confirming(wire.Kind, *wire.Target)
	default:
		*mode = Idle()
	}

	return nil
}

/*
State is one user's conversation: the rolling history, the dialogue mode
and the audit log of executed actions.  The assistant never mutates a State
it got from the store; it works on a Clone and puts that back.
*/
type State struct {
	History         []types.ConversationTurn `json:"history"`
	Mode            Mode                     `json:"mode"`
	ExecutedActions []types.AuditEntry       `json:"executed_actions"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

func NewState() *State {
	return &State{Mode: Idle()}
}

func (state *State) Clone() *State {
	return &State{
		History:         slices.Clone(state.History),
		Mode:            state.Mode,
		ExecutedActions: slices.Clone(state.ExecutedActions),
		UpdatedAt:       state.UpdatedAt,
	}
}

// Append adds turns and drops the oldest ones beyond limit.
func (state *State) Append(limit int, turns ...types.ConversationTurn) {
	state.History = append(state.History, turns...)

	if limit > 0 && len(state.History) > limit {
		state.History = slices.Clone(state.History[len(state.History)-limit:])
	}
}

package intent

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/types"
)

/*
Classifier is the external classification port.  It answers with a raw label
which is validated before it is trusted.
*/
type Classifier interface {
	Classify(ctx context.Context, message string, recent []types.ConversationTurn) (string, error)
}

// Source records which stage of the cascade produced a decision.
type Source string

const (
	SourceQuick      Source = "quick"
	SourceContext    Source = "context"
	SourceClassifier Source = "classifier"
	SourceFallback   Source = "fallback"
)

/*
Input is everything the cascade looks at for one turn.  Pending is the kind
of an outstanding selection list, Confirming the kind of an outstanding
confirmation; both are KindNone when the dialogue is idle.
*/
type Input struct {
	Message    string
	History    []types.ConversationTurn
	Pending    ActionKind
	Confirming ActionKind
}

func (input Input) idle() bool {
	return input.Pending == KindNone && input.Confirming == KindNone
}

/*
Decision is the resolved intent plus how it was reached.  Err is set when the
classifier failed and the keyword fallback answered instead.
*/
type Decision struct {
	Intent  Intent
	Context Context
	Source  Source
	Err     error
}

/*
Cascade orders the free checks before the paid one: numeric follow-ups,
confirmations, the description context and canned phrases are all resolved
locally and only what is left reaches the classifier.
*/
type Cascade struct {
	classifier Classifier
	timeout    time.Duration
}

type CascadeOption func(*Cascade)

func NewCascade(options ...CascadeOption) *Cascade {
	cascade := &Cascade{
		timeout: 10 * time.Second,
	}

	for _, option := range options {
		option(cascade)
	}

	return cascade
}

func WithClassifier(classifier Classifier) CascadeOption {
	return func(cascade *Cascade) {
		cascade.classifier = classifier
	}
}

func WithClassifierTimeout(timeout time.Duration) CascadeOption {
	return func(cascade *Cascade) {
		if timeout > 0 {
			cascade.timeout = timeout
		}
	}
}

// Resolve makes exactly one decision for the turn.
func (cascade *Cascade) Resolve(ctx context.Context, input Input) Decision {
	normalized := Normalize(input.Message)
	numeric := IsNumeric(normalized)
	current := Infer(input.History)

	decide := func(resolved Intent, source Source) Decision {
		return Decision{Intent: resolved, Context: current, Source: source}
	}

	if numeric {
		if selected, ok := input.Pending.Select(); ok {
			return decide(selected, SourceQuick)
		}
	}

	quick, matched := QuickMatch(normalized, KindNone)

	if matched && quick == ConfirmYes && (current.IsConfirmation() || input.Confirming != KindNone) {
		return decide(ConfirmYes, SourceQuick)
	}

	if matched && quick == ConfirmNo && (current.IsConfirmation() || !input.idle()) {
		return decide(ConfirmNo, SourceQuick)
	}

	if !matched && IsWaitingForDescription(input.History) {
		return decide(CreateTask, SourceContext)
	}

	if current == AwaitingSelection && numeric {
		selected, _ := selectionKind(input.History).Select()
		return decide(selected, SourceContext)
	}

	if matched && quick != ConfirmYes && quick != ConfirmNo {
		return decide(quick, SourceQuick)
	}

	return cascade.classify(ctx, input, current)
}

func (cascade *Cascade) classify(ctx context.Context, input Input, current Context) Decision {
	if cascade.classifier == nil {
		return Decision{
			Intent:  Fallback(input.Message),
			Context: current,
			Source:  SourceFallback,
			Err:     errors.ErrPortUnavailable,
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, cascade.timeout)
	defer cancel()

	recent := input.History[max(len(input.History)-contextWindow, 0):]
	label, err := cascade.call(callCtx, input.Message, recent)

	if err == nil {
		if resolved, ok := ParseLabel(label); ok {
			return Decision{Intent: resolved, Context: current, Source: SourceClassifier}
		}

		err = fmt.Errorf("classifier returned %q: %w", label, errors.ErrInvalidPayload)
	}

	log.Warn("intent classification fell back to keywords", "error", err)

	return Decision{
		Intent:  Fallback(input.Message),
		Context: current,
		Source:  SourceFallback,
		Err:     err,
	}
}

// call converts a panicking classifier into an ordinary failure.
func (cascade *Cascade) call(
	ctx context.Context, message string, recent []types.ConversationTurn,
) (label string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("classifier panic: %v", recovered)
		}
	}()

	return cascade.classifier.Classify(ctx, message, recent)
}

package types

// This package holds the wire representation of a chat turn and of the
// responses the assistant hands back to callers.  Field names follow the
// snake_case JSON used by the web client so the default encoding/json
// marshaller can be used without bespoke glue code.

import (
	"encoding/json"
	"time"
)

// ===== Conversation ==============================================================================

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

/*
ConversationTurn is one entry of the rolling conversation history.
It is never modified after it has been appended.
*/
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Intent    string    `json:"intent,omitempty"`
}

// NewUserTurn and NewAssistantTurn stamp a turn with the given time.
func NewUserTurn(content string, at time.Time) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: content, Timestamp: at}
}

func NewAssistantTurn(content, intent string, at time.Time) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Content: content, Timestamp: at, Intent: intent}
}

// ===== Responses =================================================================================

/*
ActionButton is rendered by the client next to a confirmation message.
Clicking it posts Action and Data to the execute endpoint.
*/
type ActionButton struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Data   any    `json:"data"`
}

/*
Response is the reply to a single chat message.
*/
type Response struct {
	Message              string         `json:"message"`
	Action               string         `json:"action"`
	Data                 any            `json:"data"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	ActionButtons        []ActionButton `json:"action_buttons"`
}

/*
MarshalJSON renders an empty Action as null, which is what the web client
checks for when deciding whether to render anything besides the text.
*/
func (response Response) MarshalJSON() ([]byte, error) {
	type alias Response

	out := struct {
		alias
		Action *string `json:"action"`
	}{alias: alias(response)}

	if response.Action != "" {
		action := response.Action
		out.Action = &action
	}

	return json.Marshal(out)
}

// TextResponse is a plain reply with no action attached.
func TextResponse(message string) Response {
	return Response{Message: message}
}

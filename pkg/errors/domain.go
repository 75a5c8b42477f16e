package errors

var (
	// ErrTaskNotFound covers both a missing task and one owned by someone
	// else, so callers cannot probe for foreign ids.
	ErrTaskNotFound          = New("task not found")
	ErrTaskExists            = New("task already exists")
	ErrUnsupportedAction     = New("unsupported action")
	ErrNoPendingConfirmation = New("no pending confirmation for this action")
	ErrInvalidPayload        = New("invalid action payload")
	ErrSessionNotFound       = New("session not found")
	ErrPortUnavailable       = New("port unavailable")
)

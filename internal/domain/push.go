package domain

// PushMessage is one logical notification fanned out to many device tokens.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendOutcome records the delivery result for a single device token.
type SendOutcome struct {
	Token string
	Error error
}

// MulticastResult aggregates per-token outcomes of one fan-out send.
// It is observability output only; nothing retries based on it.
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Outcomes     []SendOutcome
}

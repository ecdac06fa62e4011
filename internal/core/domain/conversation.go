package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the append-only record of a single session. It is passed
// into and returned from turn handling by value so callers own the history;
// nothing in the pipeline mutates earlier entries.
type Transcript []Turn

func (t Transcript) Append(turn Turn) Transcript {
	out := make(Transcript, len(t), len(t)+1)
	copy(out, t)
	return append(out, turn)
}

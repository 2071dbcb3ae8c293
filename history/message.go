// Package history implements the suffix-diffing and tag-boundary parsing
// that turns a conversation's accumulated history string into the new
// messages an arrival needs to hand to the AI Client.
package history

// Message is one parsed turn from a history string (§6.2/§6.3).
type Message struct {
	Role      string
	Content   string
	Timestamp float64
}

const (
	RoleUser = "user"
	RoleBot  = "bot"
	RoleSale = "sale"
)

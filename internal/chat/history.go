package chat

import "sync"

// Role identifies who produced a conversation turn.
type Role string

// Valid turn roles.
const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Turn is a single conversation turn.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// WelcomeMessage seeds every conversation, matching the app's greeting tone.
const WelcomeMessage = "Hare Krishna! 🙏 I'm here to help you learn about Lord Krishna and Hindu philosophy. Ask me anything!"

// History is an append-only conversation transcript owned by one session.
// It is cleared only by an explicit Reset, which re-seeds the welcome turn.
//
// History is safe for concurrent use.
type History struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewHistory creates a History seeded with the welcome turn.
func NewHistory() *History {
	return &History{
		turns: []Turn{{Role: RoleAssistant, Content: WelcomeMessage}},
	}
}

// Add appends a turn.
func (h *History) Add(role Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, Turn{Role: role, Content: content})
}

// Turns returns a copy of all turns.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// QuestionsAsked counts the human turns.
func (h *History) QuestionsAsked() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, t := range h.turns {
		if t.Role == RoleHuman {
			n++
		}
	}
	return n
}

// Reset clears the transcript back to the seeded welcome turn.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = []Turn{{Role: RoleAssistant, Content: WelcomeMessage}}
}

// Package bot implements the Meidobot brain: the per-channel message
// history, the trigger classifier, the prompt assembler, the LLM and
// speech clients, and the dispatcher that ties them together.
package bot

import (
	"sync"
	"time"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
)

// DefaultHistorySize is the number of messages remembered per channel.
const DefaultHistorySize = 10

// LoggedMessage is an immutable record of a message Meidobot has seen,
// either inbound from a user or one of its own replies.
type LoggedMessage struct {
	AuthorID    string
	AuthorName  string
	Content     string
	Mentions    []channels.Participant
	Attachments []channels.Attachment
	Embeds      []channels.Embed
	FromBot     bool
	Timestamp   time.Time
}

// History keeps a bounded ordered window of messages per channel.
// Windows are created lazily on first append and live for the process
// lifetime; nothing is persisted.
//
// All operations are total: reading an unknown channel yields an
// empty window, never an error.
type History struct {
	size    int
	mu      sync.Mutex
	windows map[string][]LoggedMessage
}

// NewHistory creates a history store with the given per-channel bound.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		windows: make(map[string][]LoggedMessage),
	}
}

// Append adds a message to the channel's window in arrival order,
// evicting the single oldest entry once the bound is exceeded.
func (h *History) Append(channelID string, msg LoggedMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := append(h.windows[channelID], msg)
	if len(w) > h.size {
		copy(w, w[1:])
		w = w[:h.size]
	}
	h.windows[channelID] = w
}

// Window returns a snapshot of the channel's current window. The
// snapshot does not reflect later appends.
func (h *History) Window(channelID string) []LoggedMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.windows[channelID]
	out := make([]LoggedMessage, len(w))
	copy(out, w)
	return out
}

// Size returns the per-channel bound.
func (h *History) Size() int { return h.size }

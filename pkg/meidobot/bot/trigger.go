package bot

import (
	"strings"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
)

// DefaultTriggerWords are the substrings that wake Meidobot up.
//
// Matching is deliberately substring-based, not word-boundary: "bot"
// inside "robotti" also triggers. That over-triggering is a known,
// accepted tradeoff; do not switch to word-boundary matching without
// a product decision.
var DefaultTriggerWords = []string{"meidobot", "meido", "bot", "botti"}

// Classifier decides whether an inbound message warrants a reply.
// It is a pure predicate set: no state, no side effects.
type Classifier struct {
	words []string
}

// NewClassifier creates a classifier with the given trigger words.
// Words are matched case-insensitively; they are lowered once here.
func NewClassifier(words []string) *Classifier {
	if len(words) == 0 {
		words = DefaultTriggerWords
	}
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return &Classifier{words: lowered}
}

// ShouldRespond reports whether Meidobot should reply to msg. It
// fires when any of the following holds:
//   - the bot is explicitly mentioned
//   - the message replies to a message the bot sent
//   - the text contains a trigger word
//   - the message is a non-empty DM
func (c *Classifier) ShouldRespond(msg *channels.IncomingMessage, selfID string) bool {
	for _, m := range msg.Mentions {
		if m.ID == selfID {
			return true
		}
	}
	if msg.ReplyToAuthorID != "" && msg.ReplyToAuthorID == selfID {
		return true
	}
	if c.containsTriggerWord(msg.Content) {
		return true
	}
	if msg.Kind == channels.KindDirect && msg.Content != "" {
		return true
	}
	return false
}

// containsTriggerWord checks the lower-cased text for any trigger
// word as a substring.
func (c *Classifier) containsTriggerWord(text string) bool {
	lowered := strings.ToLower(text)
	for _, w := range c.words {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}

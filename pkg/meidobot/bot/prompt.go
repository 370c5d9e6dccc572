// prompt.go builds the ordered turn sequences sent to the completion
// provider: the main conversation prompt and the short image/embed
// reaction prompts.
package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
)

// imageExtensions is the allow-list used to pick image attachments
// for the reaction prompt. Matched as substrings so URLs with query
// strings still qualify.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// reactionInstruction is the fixed preamble of both reaction prompts.
const reactionInstruction = "*REACTION ONLY* " +
	"A user has posted %s. Please provide a reaction to it. The reaction can be any " +
	"common emoji supported by Discord. Choose the emoji according to your previously " +
	"defined personality. You could choose an emoji that can be considered a funny " +
	"insult to the user that posted the message. Respond with a single emoji. " +
	"Alternatively, you can choose not to respond by returning `None`.\n%s: %s"

// ReactionNone is the sentinel the provider returns when it declines
// to react. It is a valid outcome, not an error.
const ReactionNone = "None"

// Assembler turns a channel's history window into an ordered request
// payload. The persona preamble is fixed at construction and prepended
// to every request, never mutated, never evicted.
type Assembler struct {
	persona []Message
}

// NewAssembler creates an assembler with the given persona preamble.
func NewAssembler(persona []Message) *Assembler {
	if len(persona) == 0 {
		persona = DefaultPersona()
	}
	// Copy so later mutation of the caller's slice cannot leak in.
	p := make([]Message, len(persona))
	copy(p, persona)
	return &Assembler{persona: p}
}

// PersonaLen returns the number of preamble turns.
func (a *Assembler) PersonaLen() int { return len(a.persona) }

// Build maps the history window onto prompt turns following the
// persona preamble. Output ordering is exactly preamble then window
// order; the provider is stateless per call and reconstructs context
// purely from turn order.
//
// Messages authored by the bot itself become assistant turns with raw
// content; everything else becomes a user turn formatted as
// "<display name>: <content>" with mention IDs replaced by display
// names.
func (a *Assembler) Build(window []LoggedMessage, selfID string) []Message {
	out := make([]Message, 0, len(a.persona)+len(window))
	out = append(out, a.persona...)

	for _, msg := range window {
		content := SubstituteMentions(msg.Content, msg.Mentions)
		if msg.AuthorID == selfID {
			out = append(out, Message{Role: RoleAssistant, Content: content})
			continue
		}
		out = append(out, Message{
			Role:    RoleUser,
			Content: fmt.Sprintf("%s: %s", msg.AuthorName, content),
		})
	}
	return out
}

// BuildImageReaction builds the short reaction prompt for a message
// carrying image attachments. Returns false when no attachment URL
// matches the image allow-list; the caller must then skip the
// provider call entirely.
func (a *Assembler) BuildImageReaction(msg LoggedMessage) ([]Message, bool) {
	var links []string
	for _, att := range msg.Attachments {
		if isImageLink(att.URL) {
			links = append(links, att.URL)
		}
	}
	if len(links) == 0 {
		return nil, false
	}

	parts := []ContentPart{TextPart(fmt.Sprintf(reactionInstruction,
		"an image", msg.AuthorName, SubstituteMentions(msg.Content, msg.Mentions)))}
	for _, link := range links {
		parts = append(parts, ImagePart(link))
	}

	out := make([]Message, 0, len(a.persona)+1)
	out = append(out, a.persona...)
	out = append(out, Message{Role: RoleUser, Content: parts})
	return out, true
}

// BuildEmbedReaction builds the short reaction prompt for a message
// carrying embeds. Returns false when the message has no embeds.
// Embeds without any extractable image still produce a valid
// text-only prompt.
func (a *Assembler) BuildEmbedReaction(msg LoggedMessage) ([]Message, bool) {
	if len(msg.Embeds) == 0 {
		return nil, false
	}

	parts := []ContentPart{TextPart(fmt.Sprintf(reactionInstruction,
		"an embed", msg.AuthorName, SubstituteMentions(msg.Content, msg.Mentions)))}

	for _, embed := range msg.Embeds {
		if raw, err := json.Marshal(embed); err == nil {
			parts = append(parts, TextPart(string(raw)))
		}
	}
	for _, embed := range msg.Embeds {
		if embed.ImageURL != "" {
			parts = append(parts, ImagePart(embed.ImageURL))
		}
	}
	for _, embed := range msg.Embeds {
		if embed.ThumbnailURL != "" {
			parts = append(parts, ImagePart(embed.ThumbnailURL))
		}
	}

	out := make([]Message, 0, len(a.persona)+1)
	out = append(out, a.persona...)
	out = append(out, Message{Role: RoleUser, Content: parts})
	return out, true
}

// SubstituteMentions replaces raw mention tags ("<@id>", "<@!id>")
// with "@DisplayName" for every mentioned participant. Textual
// substitution only; unknown tags are left as-is.
func SubstituteMentions(content string, mentions []channels.Participant) string {
	for _, m := range mentions {
		content = strings.ReplaceAll(content, "<@"+m.ID+">", "@"+m.DisplayName)
		content = strings.ReplaceAll(content, "<@!"+m.ID+">", "@"+m.DisplayName)
	}
	return content
}

// isImageLink checks a URL against the image extension allow-list.
func isImageLink(url string) bool {
	lowered := strings.ToLower(url)
	for _, ext := range imageExtensions {
		if strings.Contains(lowered, ext) {
			return true
		}
	}
	return false
}

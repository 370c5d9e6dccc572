package bot

import (
	"strings"
	"testing"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
)

func TestAssemblerBuildOrderingAndRoles(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil)
	window := []LoggedMessage{
		{AuthorID: "u1", AuthorName: "Antti", Content: "moi"},
		{AuthorID: selfID, AuthorName: "Meidobot", Content: "no moi", FromBot: true},
		{AuthorID: "u2", AuthorName: "Esa", Content: "mitä kuuluu?"},
	}

	out := a.Build(window, selfID)

	if want := a.PersonaLen() + len(window); len(out) != want {
		t.Fatalf("output length = %d, want %d", len(out), want)
	}

	turns := out[a.PersonaLen():]
	wantRoles := []string{RoleUser, RoleAssistant, RoleUser}
	for i, turn := range turns {
		if turn.Role != wantRoles[i] {
			t.Errorf("turn %d role = %q, want %q", i, turn.Role, wantRoles[i])
		}
	}

	if got := turns[0].Content.(string); got != "Antti: moi" {
		t.Errorf("user turn = %q, want %q", got, "Antti: moi")
	}
	// Own messages keep raw content, no name prefix.
	if got := turns[1].Content.(string); got != "no moi" {
		t.Errorf("assistant turn = %q, want %q", got, "no moi")
	}
}

func TestAssemblerPreambleIsStable(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil)
	first := a.Build(nil, selfID)
	second := a.Build([]LoggedMessage{{AuthorID: "u1", AuthorName: "A", Content: "x"}}, selfID)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("preamble turn %d changed between calls", i)
		}
	}
}

func TestSubstituteMentions(t *testing.T) {
	t.Parallel()

	mentions := []channels.Participant{
		{ID: "42", DisplayName: "Jorma"},
		{ID: "43", DisplayName: "Esa"},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain tag", "hei <@42>!", "hei @Jorma!"},
		{"nick tag", "hei <@!42>!", "hei @Jorma!"},
		{"multiple", "<@42> ja <@43>", "@Jorma ja @Esa"},
		{"unknown id untouched", "hei <@99>", "hei <@99>"},
		{"no mentions", "moro", "moro"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SubstituteMentions(tt.in, mentions); got != tt.want {
				t.Errorf("SubstituteMentions(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildImageReactionFiltersNonImages(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil)
	m := LoggedMessage{
		AuthorName: "Antti",
		Content:    "katso tätä",
		Attachments: []channels.Attachment{
			{URL: "https://cdn.example.com/cat.png"},
			{URL: "https://cdn.example.com/notes.txt"},
		},
	}

	prompt, ok := a.BuildImageReaction(m)
	if !ok {
		t.Fatal("expected a prompt for a message with a png attachment")
	}

	parts := prompt[len(prompt)-1].Content.([]ContentPart)
	var images []string
	for _, p := range parts {
		if p.ImageURL != nil {
			images = append(images, p.ImageURL.URL)
		}
	}
	if len(images) != 1 || !strings.HasSuffix(images[0], "cat.png") {
		t.Errorf("forwarded images = %v, want only the png", images)
	}
}

func TestBuildImageReactionNoImagesSkips(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil)
	m := LoggedMessage{
		AuthorName:  "Antti",
		Attachments: []channels.Attachment{{URL: "https://cdn.example.com/notes.txt"}},
	}

	if _, ok := a.BuildImageReaction(m); ok {
		t.Error("expected no prompt when no attachment matches the image allow-list")
	}
}

func TestBuildImageReactionMatchesURLWithQueryString(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil)
	m := LoggedMessage{
		AuthorName:  "Antti",
		Attachments: []channels.Attachment{{URL: "https://cdn.example.com/cat.png?size=1024"}},
	}

	if _, ok := a.BuildImageReaction(m); !ok {
		t.Error("expected extension match inside a URL with query string")
	}
}

func TestBuildEmbedReaction(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil)

	t.Run("no embeds short-circuits", func(t *testing.T) {
		t.Parallel()
		if _, ok := a.BuildEmbedReaction(LoggedMessage{AuthorName: "A"}); ok {
			t.Error("expected no prompt without embeds")
		}
	})

	t.Run("embed without images is still a valid call", func(t *testing.T) {
		t.Parallel()
		m := LoggedMessage{
			AuthorName: "A",
			Embeds:     []channels.Embed{{Title: "news", Description: "robots rise"}},
		}
		prompt, ok := a.BuildEmbedReaction(m)
		if !ok {
			t.Fatal("expected a text-only prompt for an embed without images")
		}
		parts := prompt[len(prompt)-1].Content.([]ContentPart)
		for _, p := range parts {
			if p.ImageURL != nil {
				t.Errorf("unexpected image part %v", p.ImageURL)
			}
		}
	})

	t.Run("embed images and thumbnails are forwarded", func(t *testing.T) {
		t.Parallel()
		m := LoggedMessage{
			AuthorName: "A",
			Embeds: []channels.Embed{
				{Title: "pic", ImageURL: "https://x/img.png", ThumbnailURL: "https://x/thumb.png"},
			},
		}
		prompt, ok := a.BuildEmbedReaction(m)
		if !ok {
			t.Fatal("expected a prompt")
		}
		parts := prompt[len(prompt)-1].Content.([]ContentPart)
		var images int
		for _, p := range parts {
			if p.ImageURL != nil {
				images++
			}
		}
		if images != 2 {
			t.Errorf("image parts = %d, want 2", images)
		}
	})
}

func TestPersonaFromConfig(t *testing.T) {
	t.Parallel()

	turns := []PersonaTurn{
		{Role: RoleSystem, Content: "You are a friendly bot."},
		{Role: RoleUser, Content: "hello"},
	}
	persona := personaFromConfig(turns)
	if len(persona) != 2 {
		t.Fatalf("persona length = %d, want 2", len(persona))
	}
	if persona[0].Role != RoleSystem {
		t.Errorf("first role = %q, want system", persona[0].Role)
	}

	// Empty config falls back to the built-in script.
	if got := personaFromConfig(nil); len(got) != len(DefaultPersona()) {
		t.Errorf("fallback persona length = %d, want %d", len(got), len(DefaultPersona()))
	}
}

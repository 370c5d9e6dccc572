package bot

import (
	"testing"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
)

const selfID = "bot-123"

func TestShouldRespondTriggerWords(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"no trigger", "hello", false},
		{"trigger inside another word", "En pidä boteista", true},
		{"bot name", "Meidobot on kiva", true},
		{"upper case", "MEIDO!", true},
		{"substring match inside robotti", "robotti", true},
		{"mention in plain text", "hey meidobot, what's up", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &channels.IncomingMessage{Kind: channels.KindGroup, Content: tt.content}
			if got := c.ShouldRespond(m, selfID); got != tt.want {
				t.Errorf("ShouldRespond(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestShouldRespondMention(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)
	m := &channels.IncomingMessage{
		Kind:     channels.KindGroup,
		Content:  "hello there",
		Mentions: []channels.Participant{{ID: selfID, DisplayName: "Meidobot"}},
	}
	if !c.ShouldRespond(m, selfID) {
		t.Error("expected mention to trigger a response")
	}

	m.Mentions = []channels.Participant{{ID: "someone-else"}}
	if c.ShouldRespond(m, selfID) {
		t.Error("mention of another user should not trigger")
	}
}

func TestShouldRespondReplyToBot(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)
	m := &channels.IncomingMessage{
		Kind:            channels.KindGroup,
		Content:         "I disagree",
		ReplyToAuthorID: selfID,
	}
	if !c.ShouldRespond(m, selfID) {
		t.Error("expected reply-to-bot to trigger a response")
	}

	m.ReplyToAuthorID = "someone-else"
	if c.ShouldRespond(m, selfID) {
		t.Error("reply to another user should not trigger")
	}
}

func TestShouldRespondDirectMessage(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)

	dm := &channels.IncomingMessage{Kind: channels.KindDirect, Content: "hi"}
	if !c.ShouldRespond(dm, selfID) {
		t.Error("expected non-empty DM to trigger a response")
	}

	empty := &channels.IncomingMessage{Kind: channels.KindDirect, Content: ""}
	if c.ShouldRespond(empty, selfID) {
		t.Error("empty DM should not trigger")
	}
}

func TestShouldRespondIsPure(t *testing.T) {
	t.Parallel()

	c := NewClassifier(nil)
	m := &channels.IncomingMessage{Kind: channels.KindGroup, Content: "meido"}
	first := c.ShouldRespond(m, selfID)
	for i := 0; i < 5; i++ {
		if c.ShouldRespond(m, selfID) != first {
			t.Fatal("identical inputs must yield identical output")
		}
	}
}

func TestShouldRespondCustomWords(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]string{"Kahvi"})
	m := &channels.IncomingMessage{Kind: channels.KindGroup, Content: "haluan kahvia"}
	if !c.ShouldRespond(m, selfID) {
		t.Error("expected custom trigger word to match case-insensitively")
	}
}

package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
)

func TestFunFactPromptShape(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	d := newTestDispatcher(t, ch, "hauska fakta tästä päivästä", ReactionNone)

	fact, err := d.FunFact(context.Background(), "Antti")
	if err != nil {
		t.Fatalf("FunFact: %v", err)
	}
	if !strings.Contains(fact, "hauska fakta") {
		t.Errorf("fact = %q", fact)
	}
}

func TestAnnounceFunFactPostsAndLogs(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	d := newTestDispatcher(t, ch, "fakta", ReactionNone)
	d.cfg.FunFact = FunFactConfig{ChannelID: "announce-1"}

	if err := d.AnnounceFunFact(context.Background()); err != nil {
		t.Fatalf("AnnounceFunFact: %v", err)
	}

	if got := ch.sent["announce-1"]; len(got) != 1 || got[0] != "fakta" {
		t.Fatalf("sent = %v, want the fact", got)
	}
	// The announcement is logged so follow-up chat has it as context.
	w := d.History().Window("announce-1")
	if len(w) != 1 || !w[0].FromBot {
		t.Errorf("window = %v, want the bot's announcement", w)
	}
}

func TestAnnounceFunFactBeforeChannelAttached(t *testing.T) {
	t.Parallel()

	// The scheduler can tick before Run has attached a channel.
	d := New(DefaultConfig(), nil)
	d.cfg.FunFact = FunFactConfig{ChannelID: "announce-1"}

	err := d.AnnounceFunFact(context.Background())
	if !errors.Is(err, channels.ErrChannelDisconnected) {
		t.Errorf("err = %v, want ErrChannelDisconnected", err)
	}
}

func TestAnnounceFunFactSpoken(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	ch := newFakeChannel()
	ch.sink = sink

	d := newTestDispatcher(t, ch, "fakta", ReactionNone)
	d.cfg.FunFact = FunFactConfig{ChannelID: "announce-1", Spoken: true}
	d.cfg.Voice = VoiceConfig{Enabled: true, GuildID: "g1", ChannelID: "vc1"}
	d.playback.Interval = time.Millisecond
	d.SetSpeechProvider(&fakeSpeech{chunks: [][]byte{{1, 2}}})

	if err := d.AnnounceFunFact(context.Background()); err != nil {
		t.Fatalf("AnnounceFunFact: %v", err)
	}
	if sink.playCalls != 1 {
		t.Errorf("play calls = %d, want 1", sink.playCalls)
	}
}

// funfact.go builds the dated fun fact prompt. Facts are announced on
// a schedule and optionally spoken on the voice channel.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
)

// funFactPrompt asks for a fun fact tied to today's date, with
// numbers and dates spelled out so the text reads well when spoken.
const funFactPrompt = "Käyttäjä %s on pyytänyt sinua kertomaan hauskan faktan. " +
	"Kerro hauska fakta, joka liittyy tähän päivämäärään historiassa. " +
	"Nykyinen päivämäärä on %s. " +
	"Käytä vastauksessa sanoja numeroiden sijaan, esimerkiksi 'kolme' sen sijaan, " +
	"että kirjoittaisit '3'. Ilmaise päivämäärät siis sanallisesti eli esimerkiksi " +
	"'kolmas tammikuuta kaksituhatta kaksikymmentäkolme'."

// FunFact asks the provider for a fun fact about today's date, framed
// by the persona preamble.
func (d *Dispatcher) FunFact(ctx context.Context, requester string) (string, error) {
	loc, err := time.LoadLocation(d.cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	if requester == "" {
		requester = d.cfg.Name
	}

	prompt := fmt.Sprintf(funFactPrompt, requester, time.Now().In(loc).Format("2006-01-02"))
	messages := append(d.assembler.Build(nil, d.self.ID), Message{Role: RoleUser, Content: prompt})

	return d.llm.Complete(ctx, messages, CompleteOptions{})
}

// AnnounceFunFact generates a fun fact, posts it to the configured
// announcement channel and, when spoken delivery is enabled, plays it
// on the voice channel. Intended to be driven by the scheduler; the
// schedule may tick before Run has attached a channel, so that state
// is an error here rather than a crash.
func (d *Dispatcher) AnnounceFunFact(ctx context.Context) error {
	if d.channel == nil {
		return channels.ErrChannelDisconnected
	}

	fact, err := d.FunFact(ctx, "")
	if err != nil {
		return fmt.Errorf("fun fact generation: %w", err)
	}

	if d.cfg.FunFact.ChannelID != "" {
		if err := d.channel.Send(ctx, d.cfg.FunFact.ChannelID, &channels.OutgoingMessage{Content: fact}); err != nil {
			return fmt.Errorf("fun fact announcement: %w", err)
		}
		d.history.Append(d.cfg.FunFact.ChannelID, LoggedMessage{
			AuthorID:   d.self.ID,
			AuthorName: d.self.DisplayName,
			Content:    fact,
			FromBot:    true,
			Timestamp:  time.Now(),
		})
	}

	if d.cfg.FunFact.Spoken && d.cfg.Voice.Enabled {
		if err := d.Speak(ctx, fact); err != nil {
			return fmt.Errorf("fun fact playback: %w", err)
		}
	}
	return nil
}

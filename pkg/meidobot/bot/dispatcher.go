// dispatcher.go orchestrates the per-message flow: log the inbound
// message, classify, assemble the prompt, call the provider, emit and
// log the reply, then run the independent reaction sub-pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
	"github.com/hippu/meidobot/pkg/meidobot/tts"
	"github.com/hippu/meidobot/pkg/meidobot/voice"
)

// Dispatcher processes incoming messages from a channel and produces
// replies, reactions and spoken output.
type Dispatcher struct {
	cfg        *Config
	history    *History
	classifier *Classifier
	assembler  *Assembler
	llm        *LLMClient
	speech     tts.Provider
	playback   *voice.Coordinator
	logger     *slog.Logger

	// channel is the platform adapter, set by Run.
	channel channels.Channel

	// self is the bot's own identity, set by Run after connect.
	self channels.Participant

	// locks serializes history mutation per channel key. A lock is
	// held from the inbound append through the reply append so no
	// newer message lands between a reply being sent and logged.
	locks sync.Map // map[string]*sync.Mutex

	// voiceMu makes voice playback exclusive: one coordinator may
	// hold the connection at a time.
	voiceMu sync.Mutex
}

// New creates a Dispatcher from config.
func New(cfg *Config, logger *slog.Logger) *Dispatcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:        cfg,
		history:    NewHistory(cfg.HistorySize),
		classifier: NewClassifier(cfg.TriggerWords),
		assembler:  NewAssembler(personaFromConfig(cfg.Persona)),
		llm:        NewLLMClient(cfg, logger),
		speech:     tts.New(cfg.TTS, logger),
		playback:   voice.NewCoordinator(logger),
		logger:     logger.With("component", "dispatcher"),
	}
}

// History exposes the message history, mainly for tests and commands.
func (d *Dispatcher) History() *History { return d.history }

// SetSpeechProvider overrides the speech synthesis backend.
func (d *Dispatcher) SetSpeechProvider(p tts.Provider) { d.speech = p }

// Run consumes messages from the connected channel until the context
// is canceled. Each message is handled in its own goroutine; per-key
// locks keep same-channel processing serialized.
func (d *Dispatcher) Run(ctx context.Context, ch channels.Channel) error {
	if !ch.IsConnected() {
		return channels.ErrChannelDisconnected
	}
	d.channel = ch
	d.self = ch.Self()

	d.logger.Info("dispatcher running",
		"bot", d.self.DisplayName,
		"id", d.self.ID,
		"history_size", d.history.Size(),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch.Receive():
			if !ok {
				return channels.ErrChannelDisconnected
			}
			go d.handleMessage(ctx, msg)
		}
	}
}

// handleMessage runs the full per-message flow. A failed reply is
// logged and dropped; history stays consistent because the inbound
// message was appended before the provider call.
func (d *Dispatcher) handleMessage(ctx context.Context, msg *channels.IncomingMessage) {
	// Never respond to or log other bots (or our own echoes).
	if msg.FromBot {
		return
	}

	logger := d.logger.With("trace", uuid.NewString()[:8], "channel", msg.ChannelID)

	logged := loggedFromIncoming(msg)

	lock := d.channelLock(msg.ChannelID)
	lock.Lock()
	d.history.Append(msg.ChannelID, logged)
	logger.Debug("message logged", "author", msg.Author.DisplayName)

	if d.classifier.ShouldRespond(msg, d.self.ID) {
		err := d.reply(ctx, msg, logger)
		lock.Unlock()
		if err != nil {
			logger.Error("reply failed", "error", err)
			return
		}
	} else {
		lock.Unlock()
	}

	// The reaction sub-pipeline is independent of the reply decision;
	// both may fire for the same message.
	if d.cfg.Reactions.Enabled {
		d.react(ctx, msg, logged, logger)
	}
}

// reply assembles the prompt from the channel window, calls the
// provider and sends the response. The reply is appended to history
// before the channel lock is released so later messages cannot be
// logged ahead of it.
func (d *Dispatcher) reply(ctx context.Context, msg *channels.IncomingMessage, logger *slog.Logger) error {
	if pc, ok := d.channel.(channels.PresenceChannel); ok {
		if err := pc.SendTyping(ctx, msg.ChannelID); err != nil {
			logger.Debug("typing indicator failed", "error", err)
		}
	}

	prompt := d.assembler.Build(d.history.Window(msg.ChannelID), d.self.ID)
	response, err := d.llm.Complete(ctx, prompt, CompleteOptions{})
	if err != nil {
		return fmt.Errorf("completion: %w", err)
	}

	if err := d.channel.Send(ctx, msg.ChannelID, &channels.OutgoingMessage{Content: response}); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}

	d.history.Append(msg.ChannelID, LoggedMessage{
		AuthorID:   d.self.ID,
		AuthorName: d.self.DisplayName,
		Content:    response,
		FromBot:    true,
		Timestamp:  time.Now(),
	})

	logger.Info("replied", "length", len(response))
	return nil
}

// react runs the emoji reaction sub-pipeline: once for attachments,
// once for embeds. The none-sentinel means no observable side effect;
// provider failures are logged and swallowed so a bad reaction never
// affects the text path.
func (d *Dispatcher) react(ctx context.Context, msg *channels.IncomingMessage, logged LoggedMessage, logger *slog.Logger) {
	rc, ok := d.channel.(channels.ReactionChannel)
	if !ok {
		return
	}

	if len(msg.Attachments) > 0 {
		if prompt, ok := d.assembler.BuildImageReaction(logged); ok {
			d.sendReaction(ctx, rc, msg, prompt, logger.With("reaction", "image"))
		}
	}
	if len(msg.Embeds) > 0 {
		if prompt, ok := d.assembler.BuildEmbedReaction(logged); ok {
			d.sendReaction(ctx, rc, msg, prompt, logger.With("reaction", "embed"))
		}
	}
}

// sendReaction runs one capped reaction completion and applies the
// resulting emoji, skipping the none-sentinel.
func (d *Dispatcher) sendReaction(ctx context.Context, rc channels.ReactionChannel, msg *channels.IncomingMessage, prompt []Message, logger *slog.Logger) {
	emoji, err := d.llm.Complete(ctx, prompt, CompleteOptions{MaxTokens: d.cfg.Reactions.MaxTokens})
	if err != nil {
		// An empty reaction completion is treated like the sentinel.
		if errors.Is(err, ErrEmptyCompletion) {
			logger.Debug("no reaction")
			return
		}
		logger.Warn("reaction completion failed", "error", err)
		return
	}

	emoji = strings.TrimSpace(emoji)
	if emoji == "" || emoji == ReactionNone {
		logger.Debug("no reaction")
		return
	}

	if err := rc.React(ctx, msg.ChannelID, msg.ID, emoji); err != nil {
		logger.Warn("adding reaction failed", "emoji", emoji, "error", err)
		return
	}
	logger.Info("reacted", "emoji", emoji)
}

// Speak synthesizes text and plays it on the configured voice
// channel. The voice connection is exclusive per active session; the
// playback coordinator releases it on every path.
func (d *Dispatcher) Speak(ctx context.Context, text string) error {
	vc, ok := d.channel.(channels.VoiceChannel)
	if !ok {
		return channels.ErrVoiceUnavailable
	}

	d.voiceMu.Lock()
	defer d.voiceMu.Unlock()

	sink, err := vc.JoinVoice(ctx, d.cfg.Voice.GuildID, d.cfg.Voice.ChannelID)
	if err != nil {
		return fmt.Errorf("joining voice channel: %w", err)
	}

	acc := voice.NewAccumulator(voice.DefaultFormat)
	if err := d.speech.SynthesizeStream(ctx, text, acc.Write); err != nil {
		_ = sink.Close()
		return fmt.Errorf("speech synthesis: %w", err)
	}

	stream, err := acc.Finalize()
	if err != nil {
		_ = sink.Close()
		return fmt.Errorf("finalizing audio: %w", err)
	}

	d.logger.Info("playing speech", "samples", acc.SampleCount())
	return d.playback.Play(ctx, sink, stream)
}

// channelLock returns the mutex serializing one channel's history.
func (d *Dispatcher) channelLock(channelID string) *sync.Mutex {
	lock, _ := d.locks.LoadOrStore(channelID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// loggedFromIncoming converts a platform message into a history
// record.
func loggedFromIncoming(msg *channels.IncomingMessage) LoggedMessage {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return LoggedMessage{
		AuthorID:    msg.Author.ID,
		AuthorName:  msg.Author.DisplayName,
		Content:     msg.Content,
		Mentions:    msg.Mentions,
		Attachments: msg.Attachments,
		Embeds:      msg.Embeds,
		Timestamp:   ts,
	}
}

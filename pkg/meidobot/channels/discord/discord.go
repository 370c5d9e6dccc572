// Package discord implements the Discord channel for Meidobot using
// discordgo.
//
// Features:
//   - Send/receive text messages in guild channels and DMs
//   - Emoji reactions
//   - Typing indicators
//   - Guild and channel allowlists
//   - Voice channel playback
//   - Automatic reconnection via discordgo's gateway
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
	"github.com/hippu/meidobot/pkg/meidobot/voice"
)

// messageLimit is Discord's per-message character limit.
const messageLimit = 2000

// Config holds Discord channel configuration.
type Config struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`

	// AllowedGuilds restricts which guild IDs the bot listens in.
	// Empty means all guilds.
	AllowedGuilds []string `yaml:"allowed_guilds"`

	// AllowedChannels restricts which channel IDs the bot listens in.
	// Empty means all channels.
	AllowedChannels []string `yaml:"allowed_channels"`

	// SendTyping shows "typing..." indicators while generating.
	SendTyping bool `yaml:"send_typing"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{SendTyping: true}
}

// Discord implements channels.Channel, channels.ReactionChannel,
// channels.PresenceChannel and channels.VoiceChannel.
type Discord struct {
	cfg     Config
	logger  *slog.Logger
	session *discordgo.Session

	// messages carries incoming messages to the dispatcher.
	messages chan *channels.IncomingMessage

	// connected tracks gateway state.
	connected atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Discord channel instance.
func New(cfg Config, logger *slog.Logger) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{
		cfg:      cfg,
		logger:   logger.With("component", "discord"),
		messages: make(chan *channels.IncomingMessage, 256),
	}
}

// ---------- Channel interface ----------

// Name returns "discord".
func (d *Discord) Name() string { return "discord" }

// Connect opens the Discord gateway WebSocket connection.
func (d *Discord) Connect(ctx context.Context) error {
	if d.cfg.Token == "" {
		return fmt.Errorf("discord: bot token is required")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	session, err := discordgo.New("Bot " + d.cfg.Token)
	if err != nil {
		return fmt.Errorf("discord: creating session: %w", err)
	}

	// Message content is needed to spot trigger words and images.
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates

	session.AddHandler(d.onMessageCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord: opening gateway: %w", err)
	}

	d.session = session
	d.connected.Store(true)

	user := session.State.User
	d.logger.Info("discord: connected", "bot", user.Username, "id", user.ID)
	return nil
}

// Disconnect closes the Discord gateway connection.
func (d *Discord) Disconnect() error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.session != nil {
		d.session.Close()
	}
	d.connected.Store(false)
	d.logger.Info("discord: disconnected")
	return nil
}

// Self returns the bot's own identity. Only valid after Connect.
func (d *Discord) Self() channels.Participant {
	if d.session == nil || d.session.State.User == nil {
		return channels.Participant{}
	}
	u := d.session.State.User
	return channels.Participant{ID: u.ID, DisplayName: displayName(u)}
}

// Send sends a text message, splitting it when it exceeds Discord's
// per-message limit.
func (d *Discord) Send(ctx context.Context, channelID string, msg *channels.OutgoingMessage) error {
	if d.session == nil {
		return channels.ErrChannelDisconnected
	}

	for i, chunk := range splitMessage(msg.Content, messageLimit) {
		send := &discordgo.MessageSend{Content: chunk}
		if i == 0 && msg.ReplyTo != "" {
			send.Reference = &discordgo.MessageReference{MessageID: msg.ReplyTo}
		}
		if _, err := d.session.ChannelMessageSendComplex(channelID, send); err != nil {
			return fmt.Errorf("discord: sending message: %w", err)
		}
	}
	return nil
}

// Receive returns the incoming messages channel.
func (d *Discord) Receive() <-chan *channels.IncomingMessage {
	return d.messages
}

// IsConnected returns true if the gateway is open.
func (d *Discord) IsConnected() bool { return d.connected.Load() }

// ---------- ReactionChannel interface ----------

// React adds a single emoji reaction to a message.
func (d *Discord) React(ctx context.Context, channelID, messageID, emoji string) error {
	if d.session == nil {
		return channels.ErrChannelDisconnected
	}
	return d.session.MessageReactionAdd(channelID, messageID, emoji)
}

// ---------- PresenceChannel interface ----------

// SendTyping shows a typing indicator in the channel.
func (d *Discord) SendTyping(ctx context.Context, channelID string) error {
	if d.session == nil || !d.cfg.SendTyping {
		return nil
	}
	return d.session.ChannelTyping(channelID)
}

// ---------- Event handlers ----------

// onMessageCreate converts a gateway message event into the
// platform-neutral record. The conversation kind is classified here,
// once, and carried on the message.
func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	if !d.allowed(m) {
		return
	}

	incoming := &channels.IncomingMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Kind:      classifyKind(m),
		Author: channels.Participant{
			ID:          m.Author.ID,
			DisplayName: memberDisplayName(m),
		},
		FromBot:   m.Author.Bot || m.Author.ID == s.State.User.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}

	for _, u := range m.Mentions {
		incoming.Mentions = append(incoming.Mentions, channels.Participant{
			ID:          u.ID,
			DisplayName: displayName(u),
		})
	}

	for _, att := range m.Attachments {
		incoming.Attachments = append(incoming.Attachments, channels.Attachment{
			URL:         att.URL,
			ContentType: att.ContentType,
			Filename:    att.Filename,
		})
	}

	for _, e := range m.Embeds {
		embed := channels.Embed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
		}
		if e.Image != nil {
			embed.ImageURL = proxyOrDirect(e.Image.ProxyURL, e.Image.URL)
		}
		if e.Thumbnail != nil {
			embed.ThumbnailURL = proxyOrDirect(e.Thumbnail.ProxyURL, e.Thumbnail.URL)
		}
		incoming.Embeds = append(incoming.Embeds, embed)
	}

	if m.ReferencedMessage != nil && m.ReferencedMessage.Author != nil {
		incoming.ReplyToAuthorID = m.ReferencedMessage.Author.ID
	}

	select {
	case d.messages <- incoming:
	default:
		d.logger.Warn("discord: message buffer full, dropping message", "msg_id", incoming.ID)
	}
}

// allowed applies the guild and channel allowlists.
func (d *Discord) allowed(m *discordgo.MessageCreate) bool {
	if len(d.cfg.AllowedGuilds) > 0 && m.GuildID != "" && !contains(d.cfg.AllowedGuilds, m.GuildID) {
		return false
	}
	if len(d.cfg.AllowedChannels) > 0 && !contains(d.cfg.AllowedChannels, m.ChannelID) {
		return false
	}
	return true
}

// ---------- Helpers ----------

// classifyKind tags the conversation type from the gateway event.
func classifyKind(m *discordgo.MessageCreate) channels.Kind {
	if m.GuildID == "" {
		return channels.KindDirect
	}
	return channels.KindGroup
}

// memberDisplayName prefers the guild nickname over the account name.
func memberDisplayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return displayName(m.Author)
}

// displayName prefers the global display name over the username.
func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func proxyOrDirect(proxy, direct string) string {
	if proxy != "" {
		return proxy
	}
	return direct
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// splitMessage splits text into chunks respecting the character
// limit, preferring newline boundaries.
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}
		cutAt := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/2 {
			cutAt = idx + 1
		}
		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}

// Compile-time interface verification.
var (
	_ channels.Channel         = (*Discord)(nil)
	_ channels.ReactionChannel = (*Discord)(nil)
	_ channels.PresenceChannel = (*Discord)(nil)
	_ channels.VoiceChannel    = (*Discord)(nil)
	_ voice.Sink               = (*voiceSink)(nil)
)

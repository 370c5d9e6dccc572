// Package channels defines the platform-neutral message types and the
// interfaces a messaging platform adapter (Discord) must implement to
// feed Meidobot and to carry its replies, reactions and voice output.
package channels

import (
	"context"
	"fmt"
	"time"

	"github.com/hippu/meidobot/pkg/meidobot/voice"
)

// Kind classifies the conversation a message arrived in. The adapter
// classifies exactly once at the ingestion boundary; downstream code
// only reads the tag and never re-derives it from platform objects.
type Kind string

const (
	// KindDirect is a one-on-one DM session.
	KindDirect Kind = "direct"

	// KindGroup is a multi-party channel (guild text channel).
	KindGroup Kind = "group"

	// KindOther is anything the adapter could not classify. Messages
	// tagged KindOther are still logged but never trigger DM behavior.
	KindOther Kind = "other"
)

// Participant identifies a user on the platform.
type Participant struct {
	// ID is the stable platform user identifier.
	ID string

	// DisplayName is the name shown in chat.
	DisplayName string
}

// Attachment is a file attached to a message.
type Attachment struct {
	URL         string
	ContentType string
	Filename    string
}

// Embed is a rich content block attached to a message. Image and
// thumbnail URLs are optional.
type Embed struct {
	Title        string
	Description  string
	URL          string
	ImageURL     string
	ThumbnailURL string
}

// IncomingMessage is a message received from the platform.
type IncomingMessage struct {
	// ID is the platform message identifier.
	ID string

	// ChannelID is the stable identifier of the channel or DM session.
	// This is the history partition key, never a live connection object.
	ChannelID string

	// GuildID is the server identifier, empty for DMs.
	GuildID string

	// Kind tags the conversation type, classified at ingestion.
	Kind Kind

	// Author is the sender.
	Author Participant

	// FromBot is true when the author is a bot account (including us).
	FromBot bool

	// Content is the raw text content.
	Content string

	// Mentions lists the users explicitly mentioned, in order.
	Mentions []Participant

	// Attachments lists attached files, in order.
	Attachments []Attachment

	// Embeds lists rich content blocks, in order.
	Embeds []Embed

	// ReplyToAuthorID is the author of the message being replied to,
	// empty when the message is not a reply.
	ReplyToAuthorID string

	// Timestamp is when the platform recorded the message.
	Timestamp time.Time
}

// OutgoingMessage is a message to be sent to the platform.
type OutgoingMessage struct {
	Content string

	// ReplyTo optionally references a message to reply to.
	ReplyTo string
}

// Channel is the minimal interface a platform adapter implements.
type Channel interface {
	// Name returns the adapter identifier (e.g. "discord").
	Name() string

	// Connect establishes the connection to the platform.
	Connect(ctx context.Context) error

	// Disconnect closes the connection.
	Disconnect() error

	// Self returns the bot's own identity. Only valid after Connect.
	Self() Participant

	// Send sends a text message to the given channel.
	Send(ctx context.Context, channelID string, msg *OutgoingMessage) error

	// Receive returns the stream of incoming messages.
	Receive() <-chan *IncomingMessage

	// IsConnected reports the connection state.
	IsConnected() bool
}

// ReactionChannel is implemented by adapters that support emoji
// reactions on individual messages.
type ReactionChannel interface {
	Channel

	// React adds a single emoji reaction to a message.
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// PresenceChannel is implemented by adapters that support typing
// indicators.
type PresenceChannel interface {
	Channel

	// SendTyping shows a "typing..." indicator in the channel.
	SendTyping(ctx context.Context, channelID string) error
}

// VoiceChannel is implemented by adapters that support audio playback.
// The returned sink is exclusive: the caller owns it until Close.
type VoiceChannel interface {
	Channel

	// JoinVoice joins a voice channel and returns a playback sink.
	JoinVoice(ctx context.Context, guildID, channelID string) (voice.Sink, error)
}

// Errors.
var (
	ErrChannelDisconnected = fmt.Errorf("channel is not connected")
	ErrVoiceUnavailable    = fmt.Errorf("voice connection unavailable")
)

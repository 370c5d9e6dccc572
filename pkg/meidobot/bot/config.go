// config.go defines all configuration structures for Meidobot.
package bot

import (
	"github.com/hippu/meidobot/pkg/meidobot/channels/discord"
	"github.com/hippu/meidobot/pkg/meidobot/tts"
)

// Config holds all bot configuration.
type Config struct {
	// Name is the bot name shown in logs.
	Name string `yaml:"name"`

	// Model is the chat completion model.
	Model string `yaml:"model"`

	// Temperature is the sampling temperature for completions.
	Temperature float64 `yaml:"temperature"`

	// API configures the completion provider endpoint.
	API APIConfig `yaml:"api"`

	// TriggerWords are the substrings that wake the bot up.
	TriggerWords []string `yaml:"trigger_words"`

	// HistorySize is the per-channel message window bound.
	HistorySize int `yaml:"history_size"`

	// Persona is the fixed example-dialogue preamble. Empty means the
	// built-in Meidobot script.
	Persona []PersonaTurn `yaml:"persona"`

	// Timezone is used for dated prompts (e.g. fun facts).
	Timezone string `yaml:"timezone"`

	// Reactions configures the emoji reaction pipeline.
	Reactions ReactionConfig `yaml:"reactions"`

	// Discord configures the Discord channel.
	Discord discord.Config `yaml:"discord"`

	// TTS configures the speech synthesis provider.
	TTS tts.Config `yaml:"tts"`

	// Voice configures spoken output.
	Voice VoiceConfig `yaml:"voice"`

	// FunFact configures scheduled fun fact announcements.
	FunFact FunFactConfig `yaml:"fun_fact"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the completion provider endpoint.
type APIConfig struct {
	// BaseURL is the OpenAI-compatible endpoint base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider. Usually resolved
	// from the environment or OS keyring rather than set here.
	APIKey string `yaml:"api_key"`

	// TimeoutSeconds bounds every provider call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ReactionConfig configures the emoji reaction pipeline.
type ReactionConfig struct {
	// Enabled toggles the whole reaction pipeline.
	Enabled bool `yaml:"enabled"`

	// MaxTokens caps the reaction completion. A single emoji or the
	// none-sentinel is expected, so the budget stays tiny.
	MaxTokens int `yaml:"max_tokens"`
}

// VoiceConfig configures spoken output on a voice channel.
type VoiceConfig struct {
	// Enabled toggles the voice pipeline.
	Enabled bool `yaml:"enabled"`

	// GuildID is the server hosting the voice channel.
	GuildID string `yaml:"guild_id"`

	// ChannelID is the voice channel to join for playback.
	ChannelID string `yaml:"channel_id"`
}

// FunFactConfig configures scheduled fun fact announcements.
type FunFactConfig struct {
	// Schedule is a cron expression; empty disables the schedule.
	Schedule string `yaml:"schedule"`

	// ChannelID is the text channel announcements are posted to.
	ChannelID string `yaml:"channel_id"`

	// Spoken also plays the fact on the configured voice channel.
	Spoken bool `yaml:"spoken"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:         "Meidobot",
		Model:        "gpt-4o",
		Temperature:  1.0,
		API:          APIConfig{TimeoutSeconds: 120},
		TriggerWords: DefaultTriggerWords,
		HistorySize:  DefaultHistorySize,
		Timezone:     "Europe/Helsinki",
		Reactions:    ReactionConfig{Enabled: true, MaxTokens: 10},
		Discord:      discord.DefaultConfig(),
		TTS:          tts.DefaultConfig(),
		Logging:      LoggingConfig{Level: "info", Format: "text"},
	}
}

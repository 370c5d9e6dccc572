// voice.go implements voice channel playback. Encoded audio (WAV from
// the speech pipeline) is transcoded to Opus frames with dca/ffmpeg
// and pushed onto the voice connection.
package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"

	"github.com/hippu/meidobot/pkg/meidobot/channels"
	"github.com/hippu/meidobot/pkg/meidobot/voice"
)

// JoinVoice joins a voice channel and returns its playback sink. The
// sink is exclusive; the caller releases it with Close.
func (d *Discord) JoinVoice(ctx context.Context, guildID, channelID string) (voice.Sink, error) {
	if d.session == nil {
		return nil, channels.ErrChannelDisconnected
	}

	vc, err := d.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("discord: joining voice channel: %w: %v", channels.ErrVoiceUnavailable, err)
	}

	return &voiceSink{vc: vc, logger: d.logger.With("voice_channel", channelID)}, nil
}

// voiceSink plays encoded audio on one voice connection. Completion
// is exposed out-of-band through IsPlaying, matching the playback
// coordinator's poll loop.
type voiceSink struct {
	vc      *discordgo.VoiceConnection
	playing atomic.Bool
	logger  *slog.Logger
}

// Play transcodes the stream to Opus and starts pushing frames to the
// voice connection. Returns once streaming has started; progress is
// observed via IsPlaying.
func (s *voiceSink) Play(stream io.Reader) error {
	opts := dca.StdEncodeOptions
	opts.RawOutput = true
	opts.Bitrate = 64

	encode, err := dca.EncodeMem(stream, opts)
	if err != nil {
		return fmt.Errorf("discord: encoding audio: %w", err)
	}

	if err := s.vc.Speaking(true); err != nil {
		encode.Cleanup()
		return fmt.Errorf("discord: setting speaking state: %w", err)
	}

	s.playing.Store(true)

	done := make(chan error, 1)
	dca.NewStream(encode, s.vc, done)

	go func() {
		err := <-done
		if err != nil && err != io.EOF {
			s.logger.Warn("discord: voice stream ended with error", "error", err)
		}
		if err := s.vc.Speaking(false); err != nil {
			s.logger.Debug("discord: clearing speaking state", "error", err)
		}
		encode.Cleanup()
		s.playing.Store(false)
	}()

	return nil
}

// IsPlaying reports whether frames are still being pushed.
func (s *voiceSink) IsPlaying() bool { return s.playing.Load() }

// Close leaves the voice channel.
func (s *voiceSink) Close() error {
	return s.vc.Disconnect()
}

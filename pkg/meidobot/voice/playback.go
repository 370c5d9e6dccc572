package voice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Sink is an audio output owned by exactly one playback at a time.
// Play starts playback and returns immediately; completion is exposed
// out-of-band through IsPlaying.
type Sink interface {
	// Play starts playing the encoded stream.
	Play(stream io.Reader) error

	// IsPlaying reports whether playback is still in progress.
	IsPlaying() bool

	// Close releases the underlying connection.
	Close() error
}

// Errors.
var (
	ErrPlaybackTimeout = fmt.Errorf("voice: playback did not finish within deadline")
)

const (
	// defaultPollInterval is how often the coordinator checks whether
	// the sink is still playing.
	defaultPollInterval = 1 * time.Second

	// defaultMaxPlayback bounds a single playback. A dropped voice
	// connection must not keep the poll loop alive forever.
	defaultMaxPlayback = 5 * time.Minute
)

// Coordinator hands an encoded stream to a sink and waits for
// completion with a bounded poll loop.
type Coordinator struct {
	// Interval is the poll interval between IsPlaying checks.
	Interval time.Duration

	// Deadline bounds a single playback end to end.
	Deadline time.Duration

	logger *slog.Logger
}

// NewCoordinator creates a coordinator with default polling bounds.
func NewCoordinator(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		Interval: defaultPollInterval,
		Deadline: defaultMaxPlayback,
		logger:   logger.With("component", "playback"),
	}
}

// Play starts playback on the sink and polls until the sink reports
// completion, the context is canceled, or the deadline passes. The
// sink is closed on every path, including failure.
func (c *Coordinator) Play(ctx context.Context, sink Sink, stream io.Reader) error {
	defer func() {
		if err := sink.Close(); err != nil {
			c.logger.Warn("closing playback sink", "error", err)
		}
	}()

	start := time.Now()
	if err := sink.Play(stream); err != nil {
		return fmt.Errorf("voice: starting playback: %w", err)
	}

	for sink.IsPlaying() {
		if time.Since(start) > c.Deadline {
			return ErrPlaybackTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.Interval):
		}
	}

	c.logger.Debug("playback finished", "elapsed", time.Since(start))
	return nil
}

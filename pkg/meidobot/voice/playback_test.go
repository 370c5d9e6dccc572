package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// stubSink simulates a platform voice connection.
type stubSink struct {
	mu      sync.Mutex
	polls   int // remaining IsPlaying=true answers
	stuck   bool
	playErr error
	closed  bool
	played  string
}

func (s *stubSink) Play(stream io.Reader) error {
	if s.playErr != nil {
		return s.playErr
	}
	b, _ := io.ReadAll(stream)
	s.mu.Lock()
	s.played = string(b)
	s.mu.Unlock()
	return nil
}

func (s *stubSink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stuck {
		return true
	}
	if s.polls > 0 {
		s.polls--
		return true
	}
	return false
}

func (s *stubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func testCoordinator() *Coordinator {
	c := NewCoordinator(nil)
	c.Interval = time.Millisecond
	c.Deadline = 100 * time.Millisecond
	return c
}

func TestCoordinatorPlaysToCompletion(t *testing.T) {
	t.Parallel()

	sink := &stubSink{polls: 3}
	c := testCoordinator()

	if err := c.Play(context.Background(), sink, strings.NewReader("audio")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if sink.played != "audio" {
		t.Errorf("played = %q, want the full stream", sink.played)
	}
	if !sink.closed {
		t.Error("sink was not closed after completion")
	}
}

func TestCoordinatorDeadlineBoundsStuckSink(t *testing.T) {
	t.Parallel()

	sink := &stubSink{stuck: true}
	c := testCoordinator()

	err := c.Play(context.Background(), sink, strings.NewReader("audio"))
	if !errors.Is(err, ErrPlaybackTimeout) {
		t.Fatalf("err = %v, want ErrPlaybackTimeout", err)
	}
	if !sink.closed {
		t.Error("sink must be closed on timeout")
	}
}

func TestCoordinatorContextCancel(t *testing.T) {
	t.Parallel()

	sink := &stubSink{stuck: true}
	c := testCoordinator()
	c.Deadline = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := c.Play(ctx, sink, strings.NewReader("audio"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !sink.closed {
		t.Error("sink must be closed on cancellation")
	}
}

func TestCoordinatorPlayFailureClosesSink(t *testing.T) {
	t.Parallel()

	sink := &stubSink{playErr: fmt.Errorf("encoder unavailable")}
	c := testCoordinator()

	if err := c.Play(context.Background(), sink, strings.NewReader("audio")); err == nil {
		t.Fatal("expected playback start error")
	}
	if !sink.closed {
		t.Error("sink must be closed when playback fails to start")
	}
}

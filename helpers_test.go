package mediafx

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
)

// quietLogger discards pipeline logs so test output stays readable.
func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func solidTrack(w, h int, r, g, b uint8) *TestPatternTrack {
	return NewTestPatternTrack(TestPatternConfig{
		Width:   w,
		Height:  h,
		FPS:     30,
		Pattern: PatternSolidColor,
		SolidR:  r,
		SolidG:  g,
		SolidB:  b,
	})
}

// blockingTrack is a video track whose reads wait for release to be closed.
type blockingTrack struct {
	*BaseTrack
	reading chan struct{}
	release chan struct{}
	w, h    int
}

func newBlockingTrack(w, h int) *blockingTrack {
	return &blockingTrack{
		BaseTrack: NewBaseTrack("", "blocking", TrackKindVideo),
		reading:   make(chan struct{}, 1),
		release:   make(chan struct{}),
		w:         w,
		h:         h,
	}
}

func (t *blockingTrack) ReadFrame(ctx context.Context) (*PixelBuffer, error) {
	select {
	case t.reading <- struct{}{}:
	default:
	}
	select {
	case <-t.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if t.Ended() {
		return nil, ErrTrackEnded
	}
	return NewPixelBuffer(t.w, t.h), nil
}

func (t *blockingTrack) Settings() VideoTrackSettings {
	return VideoTrackSettings{Width: t.w, Height: t.h, FrameRate: 30}
}

func (t *blockingTrack) Clone() (MediaStreamTrack, error) {
	return newBlockingTrack(t.w, t.h), nil
}

// stallingTrack serves frames frames, then waits for its next frame until it
// is closed. With honorCtx false the wait ignores ctx, like a camera read
// that cannot be interrupted.
type stallingTrack struct {
	*BaseTrack
	frames   int64
	honorCtx bool
	reads    atomic.Int64
	stalled  chan struct{}
	closed   chan struct{}
	once     sync.Once
}

func newStallingTrack(frames int64, honorCtx bool) *stallingTrack {
	return &stallingTrack{
		BaseTrack: NewBaseTrack("", "stalling", TrackKindVideo),
		frames:    frames,
		honorCtx:  honorCtx,
		stalled:   make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}
}

func (t *stallingTrack) ReadFrame(ctx context.Context) (*PixelBuffer, error) {
	if t.reads.Add(1) <= t.frames {
		return NewPixelBuffer(4, 4), nil
	}
	select {
	case t.stalled <- struct{}{}:
	default:
	}
	if t.honorCtx {
		select {
		case <-t.closed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		<-t.closed
	}
	return nil, ErrTrackEnded
}

func (t *stallingTrack) Close() error {
	t.once.Do(func() { close(t.closed) })
	return t.BaseTrack.Close()
}

func (t *stallingTrack) Settings() VideoTrackSettings {
	return VideoTrackSettings{Width: 4, Height: 4, FrameRate: 30}
}

func (t *stallingTrack) Clone() (MediaStreamTrack, error) {
	return newStallingTrack(t.frames, t.honorCtx), nil
}

func filledBuffer(w, h int, v byte) *PixelBuffer {
	buf := NewPixelBuffer(w, h)
	for i := range buf.Data {
		buf.Data[i] = v
	}
	return buf
}

func requireEnded(t *testing.T, tracks ...MediaStreamTrack) {
	t.Helper()
	for _, tr := range tracks {
		if tr.State() != TrackStateEnded {
			t.Fatalf("track %s (%v) is %v, want ended", tr.ID(), tr.Kind(), tr.State())
		}
	}
}

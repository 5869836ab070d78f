package mediafx

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CanvasConfig configures a CanvasSink.
type CanvasConfig struct {
	Width      int       // Initial surface width
	Height     int       // Initial surface height
	ScaleMode  ScaleMode // How frames of another size are drawn
	Background [4]byte   // RGBA fill for a freshly sized surface
}

// DefaultCanvasConfig returns a default canvas configuration.
func DefaultCanvasConfig() CanvasConfig {
	return CanvasConfig{
		Width:      640,
		Height:     480,
		ScaleMode:  ScaleModeStretch,
		Background: [4]byte{0, 0, 0, 255},
	}
}

// CanvasSink is an in-memory RGBA surface implementing FrameSink. Streams
// captured from it expose the surface as a live video track.
type CanvasSink struct {
	config  CanvasConfig
	surface *PixelBuffer
	scaler  *VideoScaler

	writes   atomic.Uint64
	resizes  atomic.Uint64
	captures atomic.Uint64

	mu sync.RWMutex
}

// NewCanvasSink creates a canvas with the configured initial size.
func NewCanvasSink(config CanvasConfig) *CanvasSink {
	if config.Width < 0 {
		config.Width = 0
	}
	if config.Height < 0 {
		config.Height = 0
	}
	c := &CanvasSink{config: config}
	c.reset(config.Width, config.Height)
	return c
}

func (c *CanvasSink) reset(width, height int) {
	c.surface = NewPixelBuffer(width, height)
	for i := 0; i < len(c.surface.Data); i += ChannelCount {
		copy(c.surface.Data[i:i+ChannelCount], c.config.Background[:])
	}
	c.scaler = NewVideoScaler(width, height, c.config.ScaleMode)
}

// Resize reallocates the surface, clearing it to the background color.
func (c *CanvasSink) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(width, height)
	c.resizes.Add(1)
}

// Size returns the surface dimensions.
func (c *CanvasSink) Size() (width, height int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.surface.Width, c.surface.Height
}

// Write draws frame onto the surface, scaling it when sizes differ.
func (c *CanvasSink) Write(frame *PixelBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame = c.scaler.Scale(frame)
	copy(c.surface.Data, frame.Data)
	c.surface.Timestamp = frame.Timestamp
	c.writes.Add(1)
}

// Snapshot returns a copy of the current surface.
func (c *CanvasSink) Snapshot() *PixelBuffer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.surface.Clone()
}

// Writes returns the number of frames written.
func (c *CanvasSink) Writes() uint64 { return c.writes.Load() }

// Resizes returns the number of Resize calls.
func (c *CanvasSink) Resizes() uint64 { return c.resizes.Load() }

// Captures returns the number of streams derived with CaptureStream.
func (c *CanvasSink) Captures() uint64 { return c.captures.Load() }

// CaptureStream returns a new stream holding one CanvasTrack.
func (c *CanvasSink) CaptureStream(frameRate int) MediaStream {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	c.captures.Add(1)
	return NewMediaStream("", NewCanvasTrack(c, frameRate))
}

var _ FrameSink = (*CanvasSink)(nil)

// CanvasTrack is a VideoTrack following a CanvasSink surface.
type CanvasTrack struct {
	*BaseTrack
	canvas    *CanvasSink
	frameRate int
}

// NewCanvasTrack creates a live track reading canvas.
func NewCanvasTrack(canvas *CanvasSink, frameRate int) *CanvasTrack {
	return &CanvasTrack{
		BaseTrack: NewBaseTrack("", "canvas", TrackKindVideo),
		canvas:    canvas,
		frameRate: frameRate,
	}
}

// ReadFrame returns a copy of the canvas surface.
func (t *CanvasTrack) ReadFrame(ctx context.Context) (*PixelBuffer, error) {
	if t.Ended() {
		return nil, ErrTrackEnded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.canvas.Snapshot(), nil
}

// Settings returns the canvas size and capture rate.
func (t *CanvasTrack) Settings() VideoTrackSettings {
	w, h := t.canvas.Size()
	return VideoTrackSettings{Width: w, Height: h, FrameRate: t.frameRate}
}

// Clone creates another track on the same canvas.
func (t *CanvasTrack) Clone() (MediaStreamTrack, error) {
	return NewCanvasTrack(t.canvas, t.frameRate), nil
}

// Frames delivers a snapshot every frame period until ctx is done or the
// track ends. A slow receiver misses frames rather than delaying capture.
func (t *CanvasTrack) Frames(ctx context.Context) <-chan *PixelBuffer {
	ch := make(chan *PixelBuffer, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(time.Second / time.Duration(t.frameRate))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				frame, err := t.ReadFrame(ctx)
				if err != nil {
					return
				}
				select {
				case ch <- frame:
				default:
					// Drop frame if receiver is behind
				}
			}
		}
	}()
	return ch
}

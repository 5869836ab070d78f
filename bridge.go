package mediafx

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// StreamBridgeConfig configures a StreamBridge.
type StreamBridgeConfig struct {
	// FrameRate is the target rate of the tick loop and of the captured
	// output track (default: DefaultFrameRate).
	FrameRate int

	// LegacyResizeCheck resizes the sink only when both width and height
	// differ from the source. By default either dimension differing is enough.
	LegacyResizeCheck bool

	// NewSource creates the frame source bound on each SetInput
	// (default: NewTrackFrameSource).
	NewSource func(logger *logrus.Entry) FrameSource

	Logger *logrus.Entry
}

// StreamBridge feeds the video of one input stream through a transformer
// into a sink, and exposes the sink as a long-lived output stream that also
// carries the input's audio tracks.
type StreamBridge struct {
	config      StreamBridgeConfig
	transformer FrameTransformer
	sink        FrameSink
	loop        *PacedLoop
	log         *logrus.Entry

	mu     sync.Mutex
	source FrameSource
	input  MediaStream
	output *SimpleMediaStream

	// gen identifies the current tick chain; ticks from older chains are
	// ignored.
	gen uint64

	// cancelStart aborts a source Start still waiting for its first frame.
	cancelStart context.CancelFunc
}

// NewStreamBridge creates an idle bridge writing transformed frames to sink.
func NewStreamBridge(transformer FrameTransformer, sink FrameSink, config StreamBridgeConfig) *StreamBridge {
	if config.FrameRate <= 0 {
		config.FrameRate = DefaultFrameRate
	}
	if config.NewSource == nil {
		config.NewSource = func(logger *logrus.Entry) FrameSource {
			return NewTrackFrameSource(logger)
		}
	}
	return &StreamBridge{
		config:      config,
		transformer: transformer,
		sink:        sink,
		loop:        NewPacedLoop(),
		log:         componentLogger(config.Logger, "stream-bridge"),
	}
}

// SetInput binds stream as the frame source and starts the tick loop.
// A nil stream stops the bridge. A stream without video tracks is logged
// and ignored, leaving the bridge as it was.
func (b *StreamBridge) SetInput(ctx context.Context, stream MediaStream) {
	if stream == nil {
		b.Stop()
		return
	}
	if len(stream.GetVideoTracks()) == 0 {
		b.log.WithFields(logrus.Fields{
			"stream": stream.ID(),
			"error":  ErrNoVideoTrack,
		}).Error("Ignoring input stream")
		return
	}

	b.mu.Lock()
	b.detachLocked()

	source := b.config.NewSource(b.config.Logger)
	if err := source.Bind(stream); err != nil {
		b.mu.Unlock()
		b.log.WithError(err).Error("Failed to bind input stream")
		return
	}
	b.source = source
	b.input = stream

	width, height := source.Dimensions()
	b.sink.Resize(width, height)
	gen := b.gen
	startCtx, cancelStart := context.WithCancel(ctx)
	defer cancelStart()
	b.cancelStart = cancelStart
	b.mu.Unlock()

	b.log.WithFields(logrus.Fields{
		"stream": stream.ID(),
		"width":  width,
		"height": height,
	}).Info("Input stream bound")

	// Start may block until the first frame; it runs unlocked so a newer
	// SetInput or Stop can overtake it.
	if err := source.Start(startCtx); err != nil {
		if errors.Is(err, ErrStartSuperseded) || (startCtx.Err() != nil && ctx.Err() == nil) {
			b.log.WithField("stream", stream.ID()).Info("Capture start superseded")
		} else {
			b.log.WithError(err).WithField("stream", stream.ID()).Warn("Capture start failed, continuing")
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.cancelStart = nil
	b.syncAudioLocked()
	b.loop.Start(func(ctx context.Context) { b.tick(ctx, gen) }, b.config.FrameRate)
}

// detachLocked ends the current tick chain and releases the frame source,
// leaving the input stream running.
func (b *StreamBridge) detachLocked() {
	b.gen++
	if b.cancelStart != nil {
		b.cancelStart()
		b.cancelStart = nil
	}
	b.loop.Cancel()
	if b.source != nil {
		b.source.Stop()
		b.source.Unbind()
		b.source = nil
	}
}

// tick captures, transforms and writes one frame. The lock is held only to
// read the current source and around the sink update, so a capture waiting
// for its next frame never blocks SetInput or Stop; ctx is cancelled when
// the chain is detached.
func (b *StreamBridge) tick(ctx context.Context, gen uint64) {
	b.mu.Lock()
	source := b.source
	if gen != b.gen || source == nil {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	width, height := source.Dimensions()
	frame, err := source.Capture(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrTrackEnded) {
			b.mu.Lock()
			if gen == b.gen {
				b.log.Info("Input video track ended, pausing frame loop")
				b.loop.Cancel()
			}
			b.mu.Unlock()
			return
		}
		b.log.WithError(err).Debug("Frame capture failed")
		return
	}

	out := b.transformer.Apply(frame)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	if b.needsResize(width, height) {
		b.log.WithFields(logrus.Fields{
			"width":  width,
			"height": height,
		}).Debug("Resizing sink")
		b.sink.Resize(width, height)
	}
	b.sink.Write(out)
}

func (b *StreamBridge) needsResize(width, height int) bool {
	sw, sh := b.sink.Size()
	if b.config.LegacyResizeCheck {
		return sw != width && sh != height
	}
	return sw != width || sh != height
}

// OutputStream returns the output stream, creating it empty and inactive on
// first use. The same stream is returned for the bridge's lifetime.
func (b *StreamBridge) OutputStream() MediaStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outputLocked()
}

func (b *StreamBridge) outputLocked() *SimpleMediaStream {
	if b.output == nil {
		b.output = NewMediaStream("")
	}
	return b.output
}

// ActiveOutput returns the output stream, first attaching a fresh capture of
// the sink when the stream is not active. Once active it is returned as is.
func (b *StreamBridge) ActiveOutput() MediaStream {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.outputLocked()
	if out.Active() {
		return out
	}

	for _, t := range out.GetVideoTracks() {
		if t.State() == TrackStateEnded {
			out.RemoveTrack(t)
		}
	}
	captured := b.sink.CaptureStream(b.config.FrameRate)
	for _, t := range captured.GetVideoTracks() {
		out.AddTrack(t)
	}
	b.syncAudioLocked()

	b.log.WithFields(logrus.Fields{
		"stream":     out.ID(),
		"frame_rate": b.config.FrameRate,
	}).Info("Output stream activated")
	return out
}

// syncAudioLocked replaces the output's audio tracks with the input's.
// It is deferred until the output is active and an input is bound.
func (b *StreamBridge) syncAudioLocked() {
	if b.output == nil || !b.output.Active() || b.input == nil {
		b.log.Debug("Audio sync deferred until output is active")
		return
	}
	for _, t := range b.output.GetAudioTracks() {
		b.output.RemoveTrack(t)
	}
	for _, t := range b.input.GetAudioTracks() {
		b.output.AddTrack(t)
	}
}

// Stop ends the tick loop, stops every input track and every output track.
// The output stream itself is kept so existing holders see it go inactive.
// Stop is idempotent.
func (b *StreamBridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.detachLocked()
	b.destroyInputResourcesLocked()
	if b.output != nil {
		if err := StopTracks(b.output.GetTracks()); err != nil {
			b.log.WithError(err).Warn("Failed to stop output tracks")
		}
	}
}

// destroyInputResources stops every track of the bound input and forgets it.
func (b *StreamBridge) destroyInputResources() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyInputResourcesLocked()
}

func (b *StreamBridge) destroyInputResourcesLocked() {
	if b.input == nil {
		return
	}
	if err := StopTracks(b.input.GetTracks()); err != nil {
		b.log.WithError(err).Warn("Failed to stop input tracks")
	}
	b.input = nil
}

// Input returns the bound input stream, or nil.
func (b *StreamBridge) Input() MediaStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.input
}

// Stats returns the tick loop counters.
func (b *StreamBridge) Stats() LoopStats {
	return b.loop.Stats()
}

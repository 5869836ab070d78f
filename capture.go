package mediafx

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// TrackFrameSource is a FrameSource reading the first video track of a
// bound stream. Frames whose size differs from the capture surface are
// scaled into it.
type TrackFrameSource struct {
	track   VideoTrack
	surface *VideoScaler

	// startGen increments on every Start, Bind, Unbind and Stop so a Start
	// that was overtaken can tell.
	startGen uint64
	running  bool

	log *logrus.Entry
	mu  sync.Mutex
}

// NewTrackFrameSource creates an unbound source. A nil logger uses the logrus
// standard logger.
func NewTrackFrameSource(logger *logrus.Entry) *TrackFrameSource {
	return &TrackFrameSource{log: componentLogger(logger, "frame-source")}
}

// Bind attaches the source to the first video track of stream.
func (s *TrackFrameSource) Bind(stream MediaStream) error {
	if stream == nil {
		return fmt.Errorf("bind: %w", ErrNoVideoTrack)
	}
	tracks := stream.GetVideoTracks()
	if len(tracks) == 0 {
		return fmt.Errorf("bind stream %s: %w", stream.ID(), ErrNoVideoTrack)
	}

	track := tracks[0]
	settings := track.Settings()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.track = track
	s.startGen++
	s.running = false
	s.surface = NewVideoScaler(settings.Width, settings.Height, ScaleModeStretch)

	s.log.WithFields(logrus.Fields{
		"stream": stream.ID(),
		"track":  track.ID(),
		"width":  settings.Width,
		"height": settings.Height,
	}).Debug("Bound video track")
	return nil
}

// Unbind detaches the source from its track.
func (s *TrackFrameSource) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track = nil
	s.surface = nil
	s.startGen++
	s.running = false
}

// Dimensions returns the bound track's current frame size.
func (s *TrackFrameSource) Dimensions() (width, height int) {
	s.mu.Lock()
	track := s.track
	s.mu.Unlock()
	if track == nil {
		return 0, 0
	}
	settings := track.Settings()
	return settings.Width, settings.Height
}

// Start waits for the bound track to deliver a frame. If another Start,
// Bind, Unbind or Stop happens meanwhile it returns ErrStartSuperseded.
func (s *TrackFrameSource) Start(ctx context.Context) error {
	s.mu.Lock()
	s.startGen++
	gen := s.startGen
	track := s.track
	s.mu.Unlock()

	if track == nil {
		return ErrSourceNotBound
	}
	if _, err := track.ReadFrame(ctx); err != nil {
		return fmt.Errorf("start capture on track %s: %w", track.ID(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.startGen {
		return ErrStartSuperseded
	}
	s.running = true
	return nil
}

// Stop halts capture. The track stays bound.
func (s *TrackFrameSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startGen++
	s.running = false
}

// Running reports whether the last Start completed and was not superseded.
func (s *TrackFrameSource) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Capture reads the current frame into a buffer sized to the track's current
// dimensions, resizing the capture surface first when they changed.
func (s *TrackFrameSource) Capture(ctx context.Context) (*PixelBuffer, error) {
	s.mu.Lock()
	track := s.track
	if track == nil {
		s.mu.Unlock()
		return nil, ErrSourceNotBound
	}
	settings := track.Settings()
	if w, h := s.surface.Size(); w != settings.Width || h != settings.Height {
		s.log.WithFields(logrus.Fields{
			"from":   fmt.Sprintf("%dx%d", w, h),
			"width":  settings.Width,
			"height": settings.Height,
		}).Debug("Resizing capture surface")
		s.surface = NewVideoScaler(settings.Width, settings.Height, ScaleModeStretch)
	}
	surface := s.surface
	s.mu.Unlock()

	frame, err := track.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	return surface.Scale(frame), nil
}

var _ FrameSource = (*TrackFrameSource)(nil)

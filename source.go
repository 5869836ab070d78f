package mediafx

import (
	"context"
	"fmt"
	"sync"
)

// SourceType identifies the type of video source behind a track.
type SourceType int

const (
	SourceTypeUnknown     SourceType = iota
	SourceTypeCamera                 // Camera capture (platform-specific)
	SourceTypeScreen                 // Screen capture (platform-specific)
	SourceTypeCanvas                 // Output of a FrameSink
	SourceTypeTestPattern            // Synthetic test pattern generator
	SourceTypeCustom                 // User-provided source
)

func (s SourceType) String() string {
	switch s {
	case SourceTypeCamera:
		return "Camera"
	case SourceTypeScreen:
		return "Screen"
	case SourceTypeCanvas:
		return "Canvas"
	case SourceTypeTestPattern:
		return "TestPattern"
	case SourceTypeCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// FrameSource pulls frames out of the video track of a bound stream.
type FrameSource interface {
	// Bind attaches the source to the first video track of stream.
	Bind(stream MediaStream) error

	// Unbind detaches the source. It is safe to call when nothing is bound.
	Unbind()

	// Dimensions returns the current frame size of the bound track.
	Dimensions() (width, height int)

	// Capture returns a fresh buffer holding the current frame.
	Capture(ctx context.Context) (*PixelBuffer, error)

	// Start begins capture. It blocks until the first frame is readable.
	Start(ctx context.Context) error

	// Stop halts capture.
	Stop()
}

// FrameSink is the surface transformed frames are written to.
type FrameSink interface {
	// Resize changes the surface dimensions.
	Resize(width, height int)

	// Size returns the surface dimensions.
	Size() (width, height int)

	// Write makes frame the current output frame.
	Write(frame *PixelBuffer)

	// CaptureStream derives a stream whose video track follows the surface
	// at frameRate frames per second.
	CaptureStream(frameRate int) MediaStream
}

// VideoTrackFactory creates a video track from a source-specific configuration.
type VideoTrackFactory func(config interface{}) (VideoTrack, error)

// sourceRegistry holds registered track factories.
type sourceRegistry struct {
	videoFactories map[SourceType]VideoTrackFactory
	mu             sync.RWMutex
}

var globalSourceRegistry = &sourceRegistry{
	videoFactories: make(map[SourceType]VideoTrackFactory),
}

// RegisterVideoSource registers a video track factory for a source type.
func RegisterVideoSource(stype SourceType, factory VideoTrackFactory) {
	globalSourceRegistry.mu.Lock()
	defer globalSourceRegistry.mu.Unlock()
	globalSourceRegistry.videoFactories[stype] = factory
}

// CreateVideoTrack creates a video track of the specified source type.
func CreateVideoTrack(stype SourceType, config interface{}) (VideoTrack, error) {
	globalSourceRegistry.mu.RLock()
	factory, ok := globalSourceRegistry.videoFactories[stype]
	globalSourceRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("video source type not available: %v", stype)
	}

	return factory(config)
}

// IsVideoSourceAvailable checks if a video source type is available.
func IsVideoSourceAvailable(stype SourceType) bool {
	globalSourceRegistry.mu.RLock()
	defer globalSourceRegistry.mu.RUnlock()
	_, ok := globalSourceRegistry.videoFactories[stype]
	return ok
}

// AvailableVideoSources returns a list of available video source types.
func AvailableVideoSources() []SourceType {
	globalSourceRegistry.mu.RLock()
	defer globalSourceRegistry.mu.RUnlock()

	types := make([]SourceType, 0, len(globalSourceRegistry.videoFactories))
	for t := range globalSourceRegistry.videoFactories {
		types = append(types, t)
	}
	return types
}

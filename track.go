package mediafx

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pion/webrtc/v4"
)

// TrackKind discriminates audio and video tracks. It reuses pion's codec type
// so tracks can be handed to a webrtc.PeerConnection without translation.
type TrackKind = webrtc.RTPCodecType

const (
	TrackKindUnknown = webrtc.RTPCodecTypeUnknown
	TrackKindAudio   = webrtc.RTPCodecTypeAudio
	TrackKindVideo   = webrtc.RTPCodecTypeVideo
)

// TrackState represents the state of a track.
type TrackState int

const (
	TrackStateLive  TrackState = iota // Track is active and producing media
	TrackStateEnded                   // Track has been stopped
)

func (s TrackState) String() string {
	switch s {
	case TrackStateLive:
		return "live"
	case TrackStateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// TrackConstraints describes desired track properties (like browser MediaTrackConstraints).
type TrackConstraints struct {
	Width     int // Desired width (0 = keep)
	Height    int // Desired height (0 = keep)
	FrameRate int // Desired framerate (0 = keep)
	DeviceID  string
}

// MediaStreamTrack represents a single audio or video track.
// Close stops the track; it is idempotent.
type MediaStreamTrack interface {
	io.Closer

	// ID returns the unique identifier for this track.
	ID() string

	// Kind returns the track kind (audio or video).
	Kind() TrackKind

	// Label returns a human-readable label for the track source.
	Label() string

	// State returns the current track state.
	State() TrackState

	// Enabled returns whether the track is enabled.
	Enabled() bool

	// SetEnabled sets the enabled state.
	SetEnabled(enabled bool)

	// Clone creates a clone of this track with a new ID.
	Clone() (MediaStreamTrack, error)

	// OnEnded sets a callback for when the track ends.
	OnEnded(callback func())
}

// VideoTrack is a MediaStreamTrack that produces video frames.
type VideoTrack interface {
	MediaStreamTrack

	// ReadFrame returns the track's current frame. It returns ErrTrackEnded
	// once the track has been stopped.
	ReadFrame(ctx context.Context) (*PixelBuffer, error)

	// Settings returns the actual video settings.
	Settings() VideoTrackSettings
}

// VideoTrackSettings describes the actual video track settings.
type VideoTrackSettings struct {
	Width     int
	Height    int
	FrameRate int
	DeviceID  string
}

// AudioTrack is a MediaStreamTrack carrying audio. mediafx never decodes
// audio; tracks are only passed through.
type AudioTrack interface {
	MediaStreamTrack

	// Settings returns the actual audio settings.
	Settings() AudioTrackSettings
}

// AudioTrackSettings describes the actual audio track settings.
type AudioTrackSettings struct {
	SampleRate   int
	ChannelCount int
	DeviceID     string
}

// MediaStream is a collection of tracks (like browser's MediaStream).
type MediaStream interface {
	io.Closer

	// ID returns the unique identifier for this stream.
	ID() string

	// Active returns whether any track in the stream is live.
	Active() bool

	// GetTracks returns all tracks in the stream.
	GetTracks() []MediaStreamTrack

	// GetVideoTracks returns all video tracks.
	GetVideoTracks() []VideoTrack

	// GetAudioTracks returns all audio tracks.
	GetAudioTracks() []AudioTrack

	// GetTrackByID returns a track by its ID.
	GetTrackByID(id string) MediaStreamTrack

	// AddTrack adds a track to the stream.
	AddTrack(track MediaStreamTrack)

	// RemoveTrack removes a track from the stream.
	RemoveTrack(track MediaStreamTrack)

	// Clone creates a clone of this stream with cloned tracks.
	Clone() (MediaStream, error)

	// OnAddTrack sets a callback for when a track is added.
	OnAddTrack(callback func(track MediaStreamTrack))

	// OnRemoveTrack sets a callback for when a track is removed.
	OnRemoveTrack(callback func(track MediaStreamTrack))
}

// StopTracks stops every track and returns the combined close errors.
func StopTracks[T MediaStreamTrack](tracks []T) error {
	var result *multierror.Error
	for _, t := range tracks {
		if err := t.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("stop track %s: %w", t.ID(), err))
		}
	}
	return result.ErrorOrNil()
}

func newTrackID() string { return uuid.NewString() }

// BaseTrack provides common functionality for tracks.
type BaseTrack struct {
	id      string
	label   string
	kind    TrackKind
	state   atomic.Int32
	enabled atomic.Bool
	endedCb func()
	mu      sync.RWMutex
}

// NewBaseTrack creates a new live base track. An empty id is replaced by a random one.
func NewBaseTrack(id, label string, kind TrackKind) *BaseTrack {
	if id == "" {
		id = newTrackID()
	}
	t := &BaseTrack{
		id:    id,
		label: label,
		kind:  kind,
	}
	t.state.Store(int32(TrackStateLive))
	t.enabled.Store(true)
	return t
}

func (t *BaseTrack) ID() string      { return t.id }
func (t *BaseTrack) Kind() TrackKind { return t.kind }
func (t *BaseTrack) Label() string   { return t.label }

func (t *BaseTrack) State() TrackState {
	return TrackState(t.state.Load())
}

// SetState changes the state, firing the ended callback on the first
// transition to TrackStateEnded.
func (t *BaseTrack) SetState(state TrackState) {
	old := TrackState(t.state.Swap(int32(state)))
	if state == TrackStateEnded && old != TrackStateEnded {
		t.mu.RLock()
		cb := t.endedCb
		t.mu.RUnlock()
		if cb != nil {
			go cb()
		}
	}
}

// Ended reports whether the track has been stopped.
func (t *BaseTrack) Ended() bool { return t.State() == TrackStateEnded }

func (t *BaseTrack) Enabled() bool     { return t.enabled.Load() }
func (t *BaseTrack) SetEnabled(e bool) { t.enabled.Store(e) }

func (t *BaseTrack) OnEnded(callback func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endedCb = callback
}

// Close implements io.Closer.
func (t *BaseTrack) Close() error {
	t.SetState(TrackStateEnded)
	return nil
}

// BaseAudioTrack is a passthrough audio track.
type BaseAudioTrack struct {
	*BaseTrack
	settings AudioTrackSettings
}

// NewAudioTrack creates a live audio track.
func NewAudioTrack(label string, settings AudioTrackSettings) *BaseAudioTrack {
	return &BaseAudioTrack{
		BaseTrack: NewBaseTrack("", label, TrackKindAudio),
		settings:  settings,
	}
}

func (t *BaseAudioTrack) Settings() AudioTrackSettings { return t.settings }

func (t *BaseAudioTrack) Clone() (MediaStreamTrack, error) {
	return NewAudioTrack(t.label, t.settings), nil
}

// SimpleMediaStream is a basic MediaStream implementation. Track membership
// is mutated in place so holders of the stream observe changes.
type SimpleMediaStream struct {
	id            string
	tracks        []MediaStreamTrack
	mu            sync.RWMutex
	onAddTrack    func(MediaStreamTrack)
	onRemoveTrack func(MediaStreamTrack)
}

// NewMediaStream creates a new media stream. An empty id is replaced by a random one.
func NewMediaStream(id string, tracks ...MediaStreamTrack) *SimpleMediaStream {
	if id == "" {
		id = uuid.NewString()
	}
	s := &SimpleMediaStream{
		id:     id,
		tracks: make([]MediaStreamTrack, 0, len(tracks)),
	}
	for _, t := range tracks {
		s.AddTrack(t)
	}
	return s
}

func (s *SimpleMediaStream) ID() string { return s.id }

func (s *SimpleMediaStream) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.State() != TrackStateEnded {
			return true
		}
	}
	return false
}

func (s *SimpleMediaStream) GetTracks() []MediaStreamTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]MediaStreamTrack, len(s.tracks))
	copy(result, s.tracks)
	return result
}

func (s *SimpleMediaStream) GetVideoTracks() []VideoTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []VideoTrack
	for _, t := range s.tracks {
		if t.Kind() != TrackKindVideo {
			continue
		}
		if vt, ok := t.(VideoTrack); ok {
			result = append(result, vt)
		}
	}
	return result
}

func (s *SimpleMediaStream) GetAudioTracks() []AudioTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []AudioTrack
	for _, t := range s.tracks {
		if t.Kind() != TrackKindAudio {
			continue
		}
		if at, ok := t.(AudioTrack); ok {
			result = append(result, at)
		}
	}
	return result
}

func (s *SimpleMediaStream) GetTrackByID(id string) MediaStreamTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// AddTrack appends track unless a track with the same ID is already present.
func (s *SimpleMediaStream) AddTrack(track MediaStreamTrack) {
	s.mu.Lock()
	for _, t := range s.tracks {
		if t.ID() == track.ID() {
			s.mu.Unlock()
			return
		}
	}
	s.tracks = append(s.tracks, track)
	cb := s.onAddTrack
	s.mu.Unlock()

	if cb != nil {
		go cb(track)
	}
}

func (s *SimpleMediaStream) RemoveTrack(track MediaStreamTrack) {
	s.mu.Lock()
	removed := false
	for i, t := range s.tracks {
		if t.ID() == track.ID() {
			s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
			removed = true
			break
		}
	}
	cb := s.onRemoveTrack
	s.mu.Unlock()

	if removed && cb != nil {
		go cb(track)
	}
}

func (s *SimpleMediaStream) Clone() (MediaStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := NewMediaStream("")
	for _, t := range s.tracks {
		clonedTrack, err := t.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone track %s: %w", t.ID(), err)
		}
		clone.AddTrack(clonedTrack)
	}
	return clone, nil
}

func (s *SimpleMediaStream) OnAddTrack(callback func(MediaStreamTrack)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAddTrack = callback
}

func (s *SimpleMediaStream) OnRemoveTrack(callback func(MediaStreamTrack)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemoveTrack = callback
}

// Close stops every track. Tracks stay members of the stream.
func (s *SimpleMediaStream) Close() error {
	return StopTracks(s.GetTracks())
}

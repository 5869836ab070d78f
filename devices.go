package mediafx

import (
	"context"
	"fmt"
	"sync"
)

// DeviceKind represents the type of media device.
type DeviceKind int

const (
	DeviceKindVideoInput DeviceKind = iota // Camera
	DeviceKindAudioInput                   // Microphone
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceKindVideoInput:
		return "videoinput"
	case DeviceKindAudioInput:
		return "audioinput"
	default:
		return "unknown"
	}
}

// DeviceInfo describes a media device (like browser's MediaDeviceInfo).
type DeviceInfo struct {
	DeviceID string     // Unique identifier for the device
	Kind     DeviceKind // Device type
	Label    string     // Human-readable device name
}

// DeviceRefKind discriminates the variants of a DeviceRef.
type DeviceRefKind int

const (
	DeviceRefNone     DeviceRefKind = iota // No device
	DeviceRefPhysical                      // A device opened through a DeviceProvider
	DeviceRefStream                        // A stream owned by the caller
)

// DeviceRef names the device behind a TransformDevice: either a physical
// device identifier or an existing stream.
type DeviceRef struct {
	kind   DeviceRefKind
	id     string
	stream MediaStream
}

// PhysicalDevice refers to a device by its provider ID. The pipeline owns
// streams opened from it.
func PhysicalDevice(deviceID string) DeviceRef {
	return DeviceRef{kind: DeviceRefPhysical, id: deviceID}
}

// StreamDevice refers to a caller-owned stream.
func StreamDevice(stream MediaStream) DeviceRef {
	if stream == nil {
		return DeviceRef{}
	}
	return DeviceRef{kind: DeviceRefStream, stream: stream}
}

// Kind returns the variant.
func (r DeviceRef) Kind() DeviceRefKind { return r.kind }

// IsStream reports whether the reference is a caller-owned stream.
func (r DeviceRef) IsStream() bool { return r.kind == DeviceRefStream }

// DeviceID returns the physical device ID, or "" for other variants.
func (r DeviceRef) DeviceID() string { return r.id }

// Stream returns the referenced stream, or nil for other variants.
func (r DeviceRef) Stream() MediaStream { return r.stream }

func (r DeviceRef) String() string {
	switch r.kind {
	case DeviceRefPhysical:
		return "device:" + r.id
	case DeviceRefStream:
		return "stream:" + r.stream.ID()
	default:
		return "none"
	}
}

// UserMediaOptions configures GetUserMedia.
type UserMediaOptions struct {
	Video *VideoConstraints // nil = no video
	Audio *AudioConstraints // nil = no audio
}

// VideoConstraints for GetUserMedia video.
type VideoConstraints struct {
	DeviceID  string // Specific device ID
	Width     int    // Requested width
	Height    int    // Requested height
	FrameRate int    // Requested framerate
}

// AudioConstraints for GetUserMedia audio.
type AudioConstraints struct {
	DeviceID     string // Specific device ID
	SampleRate   int    // Requested sample rate
	ChannelCount int    // Requested channels
}

// DeviceProvider is implemented by platform-specific device implementations.
type DeviceProvider interface {
	// ListVideoDevices returns available video input devices.
	ListVideoDevices(ctx context.Context) ([]DeviceInfo, error)

	// ListAudioInputDevices returns available audio input devices.
	ListAudioInputDevices(ctx context.Context) ([]DeviceInfo, error)

	// OpenVideoDevice opens a video input device.
	OpenVideoDevice(ctx context.Context, deviceID string, constraints *VideoConstraints) (VideoTrack, error)

	// OpenAudioDevice opens an audio input device.
	OpenAudioDevice(ctx context.Context, deviceID string, constraints *AudioConstraints) (AudioTrack, error)
}

// deviceRegistry holds the registered device provider.
type deviceRegistry struct {
	provider DeviceProvider
	mu       sync.RWMutex
}

var globalDeviceRegistry = &deviceRegistry{}

// RegisterDeviceProvider registers the process-wide device provider.
func RegisterDeviceProvider(provider DeviceProvider) {
	globalDeviceRegistry.mu.Lock()
	defer globalDeviceRegistry.mu.Unlock()
	globalDeviceRegistry.provider = provider
}

// GetDeviceProvider returns the registered device provider.
func GetDeviceProvider() DeviceProvider {
	globalDeviceRegistry.mu.RLock()
	defer globalDeviceRegistry.mu.RUnlock()
	return globalDeviceRegistry.provider
}

// GetUserMedia opens the requested devices from provider and returns them as
// one stream. Empty device IDs select the provider's first device.
func GetUserMedia(ctx context.Context, provider DeviceProvider, options UserMediaOptions) (MediaStream, error) {
	if provider == nil {
		return nil, ErrNoDeviceProvider
	}

	stream := NewMediaStream("")

	if options.Video != nil {
		deviceID := options.Video.DeviceID
		if deviceID == "" {
			devices, err := provider.ListVideoDevices(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list video devices: %w", err)
			}
			if len(devices) == 0 {
				return nil, fmt.Errorf("no video devices available")
			}
			deviceID = devices[0].DeviceID
		}

		videoTrack, err := provider.OpenVideoDevice(ctx, deviceID, options.Video)
		if err != nil {
			return nil, fmt.Errorf("failed to open video device: %w", err)
		}
		stream.AddTrack(videoTrack)
	}

	if options.Audio != nil {
		deviceID := options.Audio.DeviceID
		if deviceID == "" {
			devices, err := provider.ListAudioInputDevices(ctx)
			if err != nil {
				stream.Close()
				return nil, fmt.Errorf("failed to list audio devices: %w", err)
			}
			if len(devices) == 0 {
				stream.Close()
				return nil, fmt.Errorf("no audio devices available")
			}
			deviceID = devices[0].DeviceID
		}

		audioTrack, err := provider.OpenAudioDevice(ctx, deviceID, options.Audio)
		if err != nil {
			// Close video track if we already opened it
			stream.Close()
			return nil, fmt.Errorf("failed to open audio device: %w", err)
		}
		stream.AddTrack(audioTrack)
	}

	return stream, nil
}

// ResolveDevice turns ref into a stream. Stream references are returned
// as-is; physical devices are opened as a video-only stream through provider,
// or the registered provider when provider is nil.
func ResolveDevice(ctx context.Context, provider DeviceProvider, ref DeviceRef) (MediaStream, error) {
	switch ref.Kind() {
	case DeviceRefStream:
		return ref.Stream(), nil
	case DeviceRefPhysical:
		if provider == nil {
			provider = GetDeviceProvider()
		}
		stream, err := GetUserMedia(ctx, provider, UserMediaOptions{
			Video: &VideoConstraints{DeviceID: ref.DeviceID()},
		})
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref, err)
		}
		return stream, nil
	default:
		return nil, fmt.Errorf("resolve device: no device selected")
	}
}

// TestPatternProvider is a DeviceProvider whose cameras are test patterns
// and whose microphones are silent passthrough tracks.
type TestPatternProvider struct {
	cameras map[string]TestPatternConfig
	order   []string
	mu      sync.RWMutex
}

// NewTestPatternProvider creates a provider exposing one camera per config.
// Cameras are named test-pattern-0, test-pattern-1, ...
func NewTestPatternProvider(configs ...TestPatternConfig) *TestPatternProvider {
	if len(configs) == 0 {
		configs = []TestPatternConfig{DefaultTestPatternConfig()}
	}
	p := &TestPatternProvider{cameras: make(map[string]TestPatternConfig, len(configs))}
	for i, cfg := range configs {
		id := fmt.Sprintf("test-pattern-%d", i)
		cfg.DeviceID = id
		p.cameras[id] = cfg
		p.order = append(p.order, id)
	}
	return p
}

func (p *TestPatternProvider) ListVideoDevices(ctx context.Context) ([]DeviceInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	devices := make([]DeviceInfo, 0, len(p.order))
	for _, id := range p.order {
		devices = append(devices, DeviceInfo{
			DeviceID: id,
			Kind:     DeviceKindVideoInput,
			Label:    "Test Pattern (" + p.cameras[id].Pattern.String() + ")",
		})
	}
	return devices, nil
}

func (p *TestPatternProvider) ListAudioInputDevices(ctx context.Context) ([]DeviceInfo, error) {
	return []DeviceInfo{{DeviceID: "silence-0", Kind: DeviceKindAudioInput, Label: "Silence"}}, nil
}

func (p *TestPatternProvider) OpenVideoDevice(ctx context.Context, deviceID string, constraints *VideoConstraints) (VideoTrack, error) {
	p.mu.RLock()
	cfg, ok := p.cameras[deviceID]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown video device %q", deviceID)
	}

	if constraints != nil {
		if constraints.Width > 0 {
			cfg.Width = constraints.Width
		}
		if constraints.Height > 0 {
			cfg.Height = constraints.Height
		}
		if constraints.FrameRate > 0 {
			cfg.FPS = constraints.FrameRate
		}
	}
	return CreateVideoTrack(SourceTypeTestPattern, &cfg)
}

func (p *TestPatternProvider) OpenAudioDevice(ctx context.Context, deviceID string, constraints *AudioConstraints) (AudioTrack, error) {
	if deviceID != "silence-0" {
		return nil, fmt.Errorf("unknown audio device %q", deviceID)
	}
	settings := AudioTrackSettings{SampleRate: 48000, ChannelCount: 1, DeviceID: deviceID}
	if constraints != nil {
		if constraints.SampleRate > 0 {
			settings.SampleRate = constraints.SampleRate
		}
		if constraints.ChannelCount > 0 {
			settings.ChannelCount = constraints.ChannelCount
		}
	}
	return NewAudioTrack("silence", settings), nil
}

var _ DeviceProvider = (*TestPatternProvider)(nil)

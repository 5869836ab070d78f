package mediafx

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// DeviceState is the lifecycle state of a TransformDevice.
type DeviceState int

const (
	DeviceStateIdle    DeviceState = iota // No input bound yet
	DeviceStateActive                     // Transforming an input stream
	DeviceStateStopped                    // Torn down; terminal
)

func (s DeviceState) String() string {
	switch s {
	case DeviceStateIdle:
		return "idle"
	case DeviceStateActive:
		return "active"
	case DeviceStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// TransformDeviceConfig configures a TransformDevice.
type TransformDeviceConfig struct {
	FrameRate         int          // Tick and output rate (default: DefaultFrameRate)
	LegacyResizeCheck bool         // See StreamBridgeConfig.LegacyResizeCheck
	Canvas            CanvasConfig // Output surface
	// Provider opens physical devices when TransformStream is given no
	// stream. Nil uses the registered provider.
	Provider DeviceProvider
	Logger   *logrus.Entry
}

// DefaultTransformDeviceConfig returns a default configuration.
func DefaultTransformDeviceConfig() TransformDeviceConfig {
	return TransformDeviceConfig{
		FrameRate: DefaultFrameRate,
		Canvas:    DefaultCanvasConfig(),
	}
}

// TransformDevice wraps an inner device so that its video is passed through
// an EffectDriver. The driver, and with it the effect configuration, is
// shared with devices created by ChooseNewInnerDevice.
type TransformDevice struct {
	device DeviceRef
	driver *EffectDriver
	config TransformDeviceConfig
	canvas *CanvasSink
	bridge *StreamBridge
	log    *logrus.Entry

	mu    sync.Mutex
	state DeviceState
	input MediaStream
}

// NewTransformDevice creates an idle device over device. A nil driver gets a
// fresh EffectDriver.
func NewTransformDevice(device DeviceRef, driver *EffectDriver, config TransformDeviceConfig) *TransformDevice {
	if driver == nil {
		driver = NewEffectDriver()
	}
	if config.FrameRate <= 0 {
		config.FrameRate = DefaultFrameRate
	}

	log := componentLogger(config.Logger, "transform-device").WithField("device", device.String())
	canvas := NewCanvasSink(config.Canvas)
	bridge := NewStreamBridge(driver, canvas, StreamBridgeConfig{
		FrameRate:         config.FrameRate,
		LegacyResizeCheck: config.LegacyResizeCheck,
		Logger:            config.Logger,
	})

	return &TransformDevice{
		device: device,
		driver: driver,
		config: config,
		canvas: canvas,
		bridge: bridge,
		log:    log,
	}
}

// TransformStream starts transforming stream and returns the active output
// stream. With a nil stream the inner device is resolved instead: a stream
// reference is used directly, a physical device is opened through the
// configured provider.
func (d *TransformDevice) TransformStream(ctx context.Context, stream MediaStream) (MediaStream, error) {
	d.mu.Lock()
	if d.state == DeviceStateStopped {
		d.mu.Unlock()
		return nil, ErrDeviceStopped
	}
	d.mu.Unlock()

	if stream == nil {
		resolved, err := ResolveDevice(ctx, d.config.Provider, d.device)
		if err != nil {
			return nil, err
		}
		stream = resolved
	}

	d.bridge.SetInput(ctx, stream)

	d.mu.Lock()
	d.input = stream
	d.state = DeviceStateActive
	d.mu.Unlock()

	d.log.WithField("stream", stream.ID()).Info("Transforming stream")
	return d.bridge.ActiveOutput(), nil
}

// Stop stops the video tracks of the recorded input stream and moves the
// device to the stopped state. Audio tracks are left to their owner. Stop is
// idempotent.
func (d *TransformDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.input != nil {
		if err := StopTracks(d.input.GetVideoTracks()); err != nil {
			d.log.WithError(err).Warn("Failed to stop input video tracks")
		}
		d.input = nil
	}
	if d.state != DeviceStateStopped {
		d.log.Info("Transform device stopped")
	}
	d.state = DeviceStateStopped
}

// Close stops the device and tears down the pipeline, ending the output
// stream's tracks.
func (d *TransformDevice) Close() error {
	d.Stop()
	d.bridge.Stop()
	return nil
}

// OnOutputStreamDisconnect releases the input video when the consumer of the
// output goes away, but only for physical devices: a stream reference is
// owned by the caller and is left alone.
func (d *TransformDevice) OnOutputStreamDisconnect() {
	if d.device.IsStream() {
		return
	}

	d.mu.Lock()
	input := d.input
	d.mu.Unlock()
	if input == nil {
		return
	}

	d.log.Info("Output disconnected, releasing input video")
	if err := StopTracks(input.GetVideoTracks()); err != nil {
		d.log.WithError(err).Warn("Failed to stop input video tracks")
	}
}

// ChooseNewInnerDevice returns a new idle device over newDevice sharing this
// device's EffectDriver. This device is left running.
func (d *TransformDevice) ChooseNewInnerDevice(newDevice DeviceRef) *TransformDevice {
	return NewTransformDevice(newDevice, d.driver, d.config)
}

// InnerDevice returns the wrapped device.
func (d *TransformDevice) InnerDevice() DeviceRef { return d.device }

// IntrinsicDevice returns the device the host should open. It is the inner
// device.
func (d *TransformDevice) IntrinsicDevice() DeviceRef { return d.device }

// OutputMediaStream returns the output stream, which may still be inactive.
func (d *TransformDevice) OutputMediaStream() MediaStream { return d.bridge.OutputStream() }

// Driver returns the shared effect driver.
func (d *TransformDevice) Driver() *EffectDriver { return d.driver }

// EffectConfig returns the live effect configuration.
func (d *TransformDevice) EffectConfig() *EffectConfig { return d.driver.EffectConfig() }

// State returns the lifecycle state.
func (d *TransformDevice) State() DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Canvas returns the output surface.
func (d *TransformDevice) Canvas() *CanvasSink { return d.canvas }

// Stats returns the frame loop counters.
func (d *TransformDevice) Stats() LoopStats { return d.bridge.Stats() }

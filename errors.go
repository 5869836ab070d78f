package mediafx

import "errors"

var (
	// ErrNoVideoTrack is reported when an input stream carries no video track.
	ErrNoVideoTrack = errors.New("stream has no video track")

	// ErrStartSuperseded is returned by a source Start that was overtaken by a later Start or Bind.
	ErrStartSuperseded = errors.New("start superseded by a later request")

	// ErrTrackEnded is returned when reading from a stopped track.
	ErrTrackEnded = errors.New("track ended")

	// ErrSourceNotBound is returned when capturing from a source with no bound stream.
	ErrSourceNotBound = errors.New("frame source not bound")

	// ErrDeviceStopped is returned by a TransformDevice that has been stopped.
	ErrDeviceStopped = errors.New("transform device stopped")

	// ErrNoDeviceProvider is returned when a physical device must be opened but no provider is registered.
	ErrNoDeviceProvider = errors.New("no device provider registered")
)

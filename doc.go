// Package mediafx applies per-pixel effects to a live video stream and
// re-emits the result as a new stream, keeping the input's audio tracks.
//
// Key pieces include:
//   - MediaStream/MediaStreamTrack, modelled on the browser APIs
//   - EffectDriver, the frame transform, and its EffectConfig flags
//   - StreamBridge, which moves frames from a FrameSource to a FrameSink
//   - PacedLoop, the self-pacing tick scheduler
//   - TransformDevice, the lifecycle facade with device swapping
//   - Test pattern tracks and a DeviceProvider serving them
//
// # Architecture
//
//	TransformDevice.TransformStream(input)
//	  -> StreamBridge.SetInput -> PacedLoop
//	       each tick: FrameSource.Capture -> EffectDriver.Apply -> FrameSink.Write
//	  <- StreamBridge.ActiveOutput (CanvasTrack + input audio tracks)
//
// Frames are packed RGBA (PixelBuffer). Only one frame is in flight at a
// time; the loop measures each tick and waits only for what is left of the
// frame period.
//
// # Ownership
//
// The output stream is created once per device and mutated in place, so a
// holder that grabbed it before activation sees tracks appear. The effect
// configuration belongs to the EffectDriver and survives ChooseNewInnerDevice.
package mediafx

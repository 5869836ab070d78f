package mediafx

import (
	"fmt"
	"sync/atomic"
)

// FrameTransformer turns one captured frame into the frame that is emitted.
// Implementations are invoked one frame at a time and must not retain the
// input buffer.
type FrameTransformer interface {
	Apply(frame *PixelBuffer) *PixelBuffer
}

// EffectConfig is the live set of effect flags. Flags are read once per
// frame; a change is visible from the next frame that has not read it yet.
type EffectConfig struct {
	blueShift atomic.Bool
	redShift  atomic.Bool
}

// BlueShiftEnabled reports whether the blue channel is forced to maximum.
func (c *EffectConfig) BlueShiftEnabled() bool { return c.blueShift.Load() }

// RedShiftEnabled reports whether the red channel is forced to maximum.
func (c *EffectConfig) RedShiftEnabled() bool { return c.redShift.Load() }

// SetBlueShiftEnabled toggles the blue shift.
func (c *EffectConfig) SetBlueShiftEnabled(enabled bool) { c.blueShift.Store(enabled) }

// SetRedShiftEnabled toggles the red shift.
func (c *EffectConfig) SetRedShiftEnabled(enabled bool) { c.redShift.Store(enabled) }

func (c *EffectConfig) String() string {
	return fmt.Sprintf("EffectConfig{blueShift:%t redShift:%t}", c.BlueShiftEnabled(), c.RedShiftEnabled())
}

// EffectDriver applies the configured channel effects to frames. It owns its
// EffectConfig and outlives any device it is attached to.
type EffectDriver struct {
	config *EffectConfig
}

// NewEffectDriver creates a driver with every effect disabled.
func NewEffectDriver() *EffectDriver {
	return &EffectDriver{config: &EffectConfig{}}
}

// EffectConfig returns the live configuration. It is not a copy.
func (d *EffectDriver) EffectConfig() *EffectConfig { return d.config }

// SetBlueShiftState enables or disables the blue shift from the next frame on.
func (d *EffectDriver) SetBlueShiftState(enabled bool) { d.config.SetBlueShiftEnabled(enabled) }

// SetRedShiftState enables or disables the red shift from the next frame on.
func (d *EffectDriver) SetRedShiftState(enabled bool) { d.config.SetRedShiftEnabled(enabled) }

// Apply returns a new buffer with the enabled channels saturated. The input
// is left untouched. A buffer whose length does not match its dimensions is
// a caller bug and panics.
func (d *EffectDriver) Apply(frame *PixelBuffer) *PixelBuffer {
	if err := frame.Validate(); err != nil {
		panic(fmt.Sprintf("mediafx: EffectDriver.Apply: %v", err))
	}

	// Flags are sampled once so a frame never mixes two configurations.
	red := d.config.RedShiftEnabled()
	blue := d.config.BlueShiftEnabled()

	out := frame.Clone()
	if !red && !blue {
		return out
	}
	for i := 0; i < len(out.Data); i += ChannelCount {
		if red {
			out.Data[i+ChannelRed] = 0xff
		}
		if blue {
			out.Data[i+ChannelBlue] = 0xff
		}
	}
	return out
}

var _ FrameTransformer = (*EffectDriver)(nil)

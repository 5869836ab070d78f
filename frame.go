// Core frame types used across the mediafx package.
package mediafx

import "fmt"

// ChannelCount is the number of bytes per pixel in a PixelBuffer.
const ChannelCount = 4

// Channel offsets inside one RGBA pixel.
const (
	ChannelRed   = 0
	ChannelGreen = 1
	ChannelBlue  = 2
	ChannelAlpha = 3
)

// PixelBuffer is one frame as a flat RGBA byte buffer.
// len(Data) is always Width*Height*ChannelCount.
// Buffers are allocated per tick and never retained across ticks.
type PixelBuffer struct {
	Width     int
	Height    int
	Data      []byte
	Timestamp int64 // Capture timestamp in nanoseconds
}

// NewPixelBuffer allocates a zeroed buffer for the given dimensions.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*ChannelCount),
	}
}

// FrameSize returns the buffer size needed for an RGBA frame.
func FrameSize(width, height int) int {
	return width * height * ChannelCount
}

// Validate reports whether the buffer length matches its dimensions.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil pixel buffer")
	}
	if want := FrameSize(b.Width, b.Height); len(b.Data) != want {
		return fmt.Errorf("pixel buffer %dx%d has %d bytes, want %d", b.Width, b.Height, len(b.Data), want)
	}
	return nil
}

// Pixel returns the RGBA value at (x, y).
func (b *PixelBuffer) Pixel(x, y int) (r, g, bl, a uint8) {
	i := (y*b.Width + x) * ChannelCount
	return b.Data[i], b.Data[i+1], b.Data[i+2], b.Data[i+3]
}

// SetPixel writes the RGBA value at (x, y).
func (b *PixelBuffer) SetPixel(x, y int, r, g, bl, a uint8) {
	i := (y*b.Width + x) * ChannelCount
	b.Data[i] = r
	b.Data[i+1] = g
	b.Data[i+2] = bl
	b.Data[i+3] = a
}

// Clone creates a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	clone := &PixelBuffer{
		Width:     b.Width,
		Height:    b.Height,
		Timestamp: b.Timestamp,
	}
	if b.Data != nil {
		clone.Data = make([]byte, len(b.Data))
		copy(clone.Data, b.Data)
	}
	return clone
}

// SameSize reports whether the buffer has the given dimensions.
func (b *PixelBuffer) SameSize(width, height int) bool {
	return b.Width == width && b.Height == height
}

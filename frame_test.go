package mediafx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPixelBuffer(t *testing.T) {
	buf := NewPixelBuffer(4, 3)
	assert.Equal(t, 4, buf.Width)
	assert.Equal(t, 3, buf.Height)
	assert.Len(t, buf.Data, 4*3*ChannelCount)
	assert.NoError(t, buf.Validate())

	empty := NewPixelBuffer(-1, 5)
	assert.Equal(t, 0, empty.Width)
	assert.Empty(t, empty.Data)
}

func TestPixelBuffer_Validate(t *testing.T) {
	buf := &PixelBuffer{Width: 2, Height: 2, Data: make([]byte, 15)}
	assert.Error(t, buf.Validate())

	var nilBuf *PixelBuffer
	assert.Error(t, nilBuf.Validate())
}

func TestPixelBuffer_PixelAccess(t *testing.T) {
	buf := NewPixelBuffer(3, 2)
	buf.SetPixel(2, 1, 10, 20, 30, 40)

	r, g, b, a := buf.Pixel(2, 1)
	assert.Equal(t, []uint8{10, 20, 30, 40}, []uint8{r, g, b, a})
	assert.Equal(t, byte(10), buf.Data[(1*3+2)*ChannelCount+ChannelRed])
}

func TestPixelBuffer_Clone(t *testing.T) {
	buf := filledBuffer(2, 2, 7)
	buf.Timestamp = 42

	clone := buf.Clone()
	require.Equal(t, buf, clone)

	clone.Data[0] = 99
	assert.Equal(t, byte(7), buf.Data[0], "clone must not share data")
}

package mediafx

// ScaleMode defines how scaling should handle aspect ratio mismatches.
type ScaleMode int

const (
	// ScaleModeStretch scales to exactly match target dimensions (may distort).
	ScaleModeStretch ScaleMode = iota
	// ScaleModeFit scales to fit within target dimensions, preserving aspect ratio (may letterbox).
	ScaleModeFit
	// ScaleModeFill scales to fill target dimensions, preserving aspect ratio (may crop).
	ScaleModeFill
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleModeStretch:
		return "stretch"
	case ScaleModeFit:
		return "fit"
	case ScaleModeFill:
		return "fill"
	default:
		return "unknown"
	}
}

// VideoScaler scales RGBA pixel buffers with nearest-neighbour sampling.
type VideoScaler struct {
	dstWidth, dstHeight int
	mode                ScaleMode
}

// NewVideoScaler creates a new scaler producing dstWidth x dstHeight frames.
func NewVideoScaler(dstWidth, dstHeight int, mode ScaleMode) *VideoScaler {
	return &VideoScaler{
		dstWidth:  dstWidth,
		dstHeight: dstHeight,
		mode:      mode,
	}
}

// Size returns the output dimensions.
func (s *VideoScaler) Size() (width, height int) {
	return s.dstWidth, s.dstHeight
}

// Scale returns a new buffer with the target dimensions. A frame that
// already matches is returned as-is.
func (s *VideoScaler) Scale(frame *PixelBuffer) *PixelBuffer {
	if frame.SameSize(s.dstWidth, s.dstHeight) {
		return frame
	}

	out := NewPixelBuffer(s.dstWidth, s.dstHeight)
	out.Timestamp = frame.Timestamp
	if frame.Width == 0 || frame.Height == 0 || s.dstWidth == 0 || s.dstHeight == 0 {
		return out
	}

	srcX, srcY, srcW, srcH := s.calculateSourceRegion(frame.Width, frame.Height)
	dstX, dstY, dstW, dstH := s.calculateDestRegion(frame.Width, frame.Height)

	for y := 0; y < dstH; y++ {
		sy := srcY + y*srcH/dstH
		srcRow := sy * frame.Width * ChannelCount
		dstRow := ((dstY+y)*s.dstWidth + dstX) * ChannelCount
		for x := 0; x < dstW; x++ {
			sx := srcX + x*srcW/dstW
			si := srcRow + sx*ChannelCount
			di := dstRow + x*ChannelCount
			copy(out.Data[di:di+ChannelCount], frame.Data[si:si+ChannelCount])
		}
	}
	return out
}

// calculateSourceRegion determines what region of the source to sample.
func (s *VideoScaler) calculateSourceRegion(srcW, srcH int) (x, y, w, h int) {
	if s.mode != ScaleModeFill {
		return 0, 0, srcW, srcH
	}
	// Crop the source to the destination aspect ratio.
	if srcW*s.dstHeight > srcH*s.dstWidth {
		w = srcH * s.dstWidth / s.dstHeight
		return (srcW - w) / 2, 0, w, srcH
	}
	h = srcW * s.dstHeight / s.dstWidth
	return 0, (srcH - h) / 2, srcW, h
}

// calculateDestRegion determines where in the output the image lands.
func (s *VideoScaler) calculateDestRegion(srcW, srcH int) (x, y, w, h int) {
	if s.mode != ScaleModeFit {
		return 0, 0, s.dstWidth, s.dstHeight
	}
	// Letterbox: the rest of the output stays zeroed.
	if srcW*s.dstHeight > srcH*s.dstWidth {
		h = srcH * s.dstWidth / srcW
		return 0, (s.dstHeight - h) / 2, s.dstWidth, h
	}
	w = srcW * s.dstHeight / srcH
	return (s.dstWidth - w) / 2, 0, w, s.dstHeight
}

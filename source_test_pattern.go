package mediafx

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// PatternType defines the type of test pattern to generate.
type PatternType int

const (
	PatternColorBars    PatternType = iota // SMPTE color bars
	PatternGradient                        // Horizontal gradient
	PatternCheckerboard                    // Checkerboard pattern
	PatternSolidColor                      // Solid color
	PatternMovingBox                       // Moving box (animated)
)

func (p PatternType) String() string {
	switch p {
	case PatternColorBars:
		return "ColorBars"
	case PatternGradient:
		return "Gradient"
	case PatternCheckerboard:
		return "Checkerboard"
	case PatternSolidColor:
		return "SolidColor"
	case PatternMovingBox:
		return "MovingBox"
	default:
		return "Unknown"
	}
}

// ParsePatternType maps a pattern name (as returned by String, case-sensitive) to its type.
func ParsePatternType(name string) (PatternType, error) {
	for p := PatternColorBars; p <= PatternMovingBox; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return PatternColorBars, fmt.Errorf("unknown pattern %q", name)
}

// TestPatternConfig configures a test pattern track.
type TestPatternConfig struct {
	Width    int         // Frame width (default: 640)
	Height   int         // Frame height (default: 480)
	FPS      int         // Nominal frames per second (default: 30)
	Pattern  PatternType // Pattern type (default: ColorBars)
	DeviceID string      // Reported in the track settings

	// For SolidColor pattern
	SolidR, SolidG, SolidB uint8

	// For Checkerboard pattern
	CheckerSize int // Size of each checker square (default: 32)
}

// DefaultTestPatternConfig returns a default test pattern configuration.
func DefaultTestPatternConfig() TestPatternConfig {
	return TestPatternConfig{
		Width:       640,
		Height:      480,
		FPS:         30,
		Pattern:     PatternColorBars,
		CheckerSize: 32,
	}
}

// TestPatternTrack is a synthetic VideoTrack. Each ReadFrame renders the
// pattern at the current size; the moving box advances with wall time.
type TestPatternTrack struct {
	*BaseTrack
	config    TestPatternConfig
	startTime time.Time
	mu        sync.RWMutex
}

// NewTestPatternTrack creates a new live test pattern track.
func NewTestPatternTrack(config TestPatternConfig) *TestPatternTrack {
	if config.Width <= 0 {
		config.Width = 640
	}
	if config.Height <= 0 {
		config.Height = 480
	}
	if config.FPS <= 0 {
		config.FPS = 30
	}
	if config.CheckerSize <= 0 {
		config.CheckerSize = 32
	}
	return &TestPatternTrack{
		BaseTrack: NewBaseTrack("", "test-pattern:"+config.Pattern.String(), TrackKindVideo),
		config:    config,
		startTime: time.Now(),
	}
}

// Settings returns the current pattern size and rate.
func (t *TestPatternTrack) Settings() VideoTrackSettings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return VideoTrackSettings{
		Width:     t.config.Width,
		Height:    t.config.Height,
		FrameRate: t.config.FPS,
		DeviceID:  t.config.DeviceID,
	}
}

// ApplyConstraints changes the generated size or rate. Zero fields are kept.
func (t *TestPatternTrack) ApplyConstraints(c TrackConstraints) error {
	if c.Width < 0 || c.Height < 0 || c.FrameRate < 0 {
		return fmt.Errorf("invalid constraints %+v", c)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if c.Width > 0 {
		t.config.Width = c.Width
	}
	if c.Height > 0 {
		t.config.Height = c.Height
	}
	if c.FrameRate > 0 {
		t.config.FPS = c.FrameRate
	}
	return nil
}

// Clone creates an independent track with the same configuration.
func (t *TestPatternTrack) Clone() (MediaStreamTrack, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return NewTestPatternTrack(t.config), nil
}

// ReadFrame renders the current frame into a new buffer.
func (t *TestPatternTrack) ReadFrame(ctx context.Context) (*PixelBuffer, error) {
	if t.Ended() {
		return nil, ErrTrackEnded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	cfg := t.config
	t.mu.RUnlock()

	elapsed := time.Since(t.startTime)
	frameNum := uint64(elapsed * time.Duration(cfg.FPS) / time.Second)

	buf := NewPixelBuffer(cfg.Width, cfg.Height)
	buf.Timestamp = elapsed.Nanoseconds()
	renderPattern(buf, cfg, frameNum)
	return buf, nil
}

func renderPattern(buf *PixelBuffer, cfg TestPatternConfig, frameNum uint64) {
	switch cfg.Pattern {
	case PatternGradient:
		renderGradient(buf)
	case PatternCheckerboard:
		renderCheckerboard(buf, cfg.CheckerSize)
	case PatternSolidColor:
		renderSolidColor(buf, cfg.SolidR, cfg.SolidG, cfg.SolidB)
	case PatternMovingBox:
		renderMovingBox(buf, frameNum)
	default:
		renderColorBars(buf)
	}
}

// SMPTE color bars (simplified 8-bar pattern)
var colorBarsRGB = [][3]uint8{
	{192, 192, 192}, // White (75%)
	{192, 192, 0},   // Yellow
	{0, 192, 192},   // Cyan
	{0, 192, 0},     // Green
	{192, 0, 192},   // Magenta
	{192, 0, 0},     // Red
	{0, 0, 192},     // Blue
	{16, 16, 16},    // Black
}

func renderColorBars(buf *PixelBuffer) {
	barWidth := buf.Width / 8
	if barWidth == 0 {
		barWidth = 1
	}
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			barIdx := x / barWidth
			if barIdx >= 8 {
				barIdx = 7
			}
			rgb := colorBarsRGB[barIdx]
			buf.SetPixel(x, y, rgb[0], rgb[1], rgb[2], 255)
		}
	}
}

func renderGradient(buf *PixelBuffer) {
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			v := uint8((x * 255) / buf.Width)
			buf.SetPixel(x, y, v, v, v, 255)
		}
	}
}

func renderCheckerboard(buf *PixelBuffer, size int) {
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			v := uint8(16)
			if ((x/size)+(y/size))%2 == 0 {
				v = 235
			}
			buf.SetPixel(x, y, v, v, v, 255)
		}
	}
}

func renderSolidColor(buf *PixelBuffer, r, g, b uint8) {
	for i := 0; i < len(buf.Data); i += ChannelCount {
		buf.Data[i] = r
		buf.Data[i+1] = g
		buf.Data[i+2] = b
		buf.Data[i+3] = 255
	}
}

func renderMovingBox(buf *PixelBuffer, frameNum uint64) {
	w, h := buf.Width, buf.Height
	renderSolidColor(buf, 16, 16, 16)

	// Box moves in a circle
	boxSize := min(100, w/4, h/4)
	radius := float64(min(w, h)) / 4
	angle := float64(frameNum) * 0.05
	boxX := w/2 + int(radius*math.Cos(angle)) - boxSize/2
	boxY := h/2 + int(radius*math.Sin(angle)) - boxSize/2

	for y := max(boxY, 0); y < boxY+boxSize && y < h; y++ {
		for x := max(boxX, 0); x < boxX+boxSize && x < w; x++ {
			buf.SetPixel(x, y, 235, 235, 235, 255)
		}
	}
}

func init() {
	RegisterVideoSource(SourceTypeTestPattern, func(config interface{}) (VideoTrack, error) {
		switch cfg := config.(type) {
		case *TestPatternConfig:
			return NewTestPatternTrack(*cfg), nil
		case TestPatternConfig:
			return NewTestPatternTrack(cfg), nil
		default:
			return NewTestPatternTrack(DefaultTestPatternConfig()), nil
		}
	})
}

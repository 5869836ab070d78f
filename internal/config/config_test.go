package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/mediafx"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, mediafx.DefaultFrameRate, c.FrameRate)
	assert.Equal(t, 640, c.Width)
	assert.Equal(t, 480, c.Height)
	assert.Equal(t, "ColorBars", c.Pattern)
	assert.Equal(t, 5*time.Second, c.Duration)
	assert.Zero(t, c.SwapAfter)
	assert.False(t, c.RedShift)
	assert.Equal(t, logrus.InfoLevel, c.Level())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MEDIAFX_FRAME_RATE", "24")
	t.Setenv("MEDIAFX_EFFECTS_RED_SHIFT", "true")
	t.Setenv("MEDIAFX_DURATION", "250ms")
	t.Setenv("MEDIAFX_LOG_LEVEL", "debug")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 24, c.FrameRate)
	assert.True(t, c.RedShift)
	assert.False(t, c.BlueShift)
	assert.Equal(t, 250*time.Millisecond, c.Duration)
	assert.Equal(t, logrus.DebugLevel, c.Level())
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "width: 320\nheight: 240\npattern: Checkerboard\neffects:\n  blue_shift: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mediafx.yaml"), []byte(yaml), 0o644))

	v := New()
	v.AddConfigPath(dir)
	require.NoError(t, ReadFile(v))

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 320, c.Width)
	assert.Equal(t, 240, c.Height)
	assert.True(t, c.BlueShift)

	tp := c.TestPattern()
	assert.Equal(t, mediafx.PatternCheckerboard, tp.Pattern)
	assert.Equal(t, 320, tp.Width)
}

func TestReadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mediafx.yaml"), []byte("width: [1, 2\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "mediafx.yaml"))
	assert.Error(t, ReadFile(v))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c, err := Load(New())
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }},
		{"negative width", func(c *Config) { c.Width = -1 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"negative swap", func(c *Config) { c.SwapAfter = -time.Second }},
		{"unknown pattern", func(c *Config) { c.Pattern = "plaid" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestDeviceConfig(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)
	c.LegacyResize = true

	dc := c.DeviceConfig(nil)
	assert.Equal(t, c.FrameRate, dc.FrameRate)
	assert.True(t, dc.LegacyResizeCheck)
	assert.Equal(t, mediafx.DefaultCanvasConfig(), dc.Canvas)
}

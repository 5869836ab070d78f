// Package config loads settings for the effect-pipeline binary from defaults,
// an optional mediafx.yaml, MEDIAFX_* environment variables and flags.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/thesyncim/mediafx"
)

// Keys of the settings, usable with viper.BindPFlag.
const (
	KeyFrameRate    = "frame_rate"
	KeyWidth        = "width"
	KeyHeight       = "height"
	KeyPattern      = "pattern"
	KeyRedShift     = "effects.red_shift"
	KeyBlueShift    = "effects.blue_shift"
	KeyDuration     = "duration"
	KeySwapAfter    = "swap_after"
	KeyLegacyResize = "legacy_resize"
	KeyLogLevel     = "log_level"
)

// Config is the resolved binary configuration.
type Config struct {
	FrameRate    int
	Width        int
	Height       int
	Pattern      string
	RedShift     bool
	BlueShift    bool
	Duration     time.Duration
	SwapAfter    time.Duration // 0 disables the mid-run device swap
	LegacyResize bool
	LogLevel     string
}

// New returns a viper instance with defaults, environment binding and config
// search paths set up. Nothing is read yet.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyFrameRate, mediafx.DefaultFrameRate)
	v.SetDefault(KeyWidth, 640)
	v.SetDefault(KeyHeight, 480)
	v.SetDefault(KeyPattern, mediafx.PatternColorBars.String())
	v.SetDefault(KeyRedShift, false)
	v.SetDefault(KeyBlueShift, false)
	v.SetDefault(KeyDuration, 5*time.Second)
	v.SetDefault(KeySwapAfter, time.Duration(0))
	v.SetDefault(KeyLegacyResize, false)
	v.SetDefault(KeyLogLevel, "info")

	// MEDIAFX_FRAME_RATE, MEDIAFX_EFFECTS_RED_SHIFT, ...
	v.SetEnvPrefix("mediafx")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("mediafx")
	v.SetConfigType("yaml")
	for _, path := range []string{".", "$HOME/.mediafx", "/etc/mediafx"} {
		v.AddConfigPath(os.ExpandEnv(path))
	}
	return v
}

// ReadFile reads the config file if one is found. A missing file is not an
// error.
func ReadFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return errors.Wrap(err, "read config file")
	}
	return nil
}

// Load resolves v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		FrameRate:    v.GetInt(KeyFrameRate),
		Width:        v.GetInt(KeyWidth),
		Height:       v.GetInt(KeyHeight),
		Pattern:      v.GetString(KeyPattern),
		RedShift:     v.GetBool(KeyRedShift),
		BlueShift:    v.GetBool(KeyBlueShift),
		Duration:     v.GetDuration(KeyDuration),
		SwapAfter:    v.GetDuration(KeySwapAfter),
		LegacyResize: v.GetBool(KeyLegacyResize),
		LogLevel:     v.GetString(KeyLogLevel),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		return errors.Errorf("frame rate must be positive, got %d", c.FrameRate)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.Duration <= 0 {
		return errors.Errorf("duration must be positive, got %s", c.Duration)
	}
	if c.SwapAfter < 0 {
		return errors.Errorf("swap_after must not be negative, got %s", c.SwapAfter)
	}
	if _, err := mediafx.ParsePatternType(c.Pattern); err != nil {
		return errors.Wrap(err, "pattern")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// TestPattern returns the camera configuration for the test-pattern provider.
func (c *Config) TestPattern() mediafx.TestPatternConfig {
	cfg := mediafx.DefaultTestPatternConfig()
	cfg.Width = c.Width
	cfg.Height = c.Height
	cfg.FPS = c.FrameRate
	if p, err := mediafx.ParsePatternType(c.Pattern); err == nil {
		cfg.Pattern = p
	}
	return cfg
}

// DeviceConfig returns the transform device configuration.
func (c *Config) DeviceConfig(logger *logrus.Entry) mediafx.TransformDeviceConfig {
	cfg := mediafx.DefaultTransformDeviceConfig()
	cfg.FrameRate = c.FrameRate
	cfg.LegacyResizeCheck = c.LegacyResize
	cfg.Logger = logger
	return cfg
}

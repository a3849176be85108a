package tts

import (
	"fmt"
	"time"
)

// Config contains all synthesis configuration options.
type Config struct {
	// Voice selection
	Voice   string `yaml:"voice" env:"VOCALIZE_VOICE" envDefault:"en_UK/apope_low"`
	Speaker string `yaml:"speaker" env:"VOCALIZE_SPEAKER"`

	// Voice directories searched in order. Empty means the user
	// data directories.
	VoiceDirs []string `yaml:"voice_dirs" env:"VOCALIZE_VOICE_DIRS" envSeparator:":"`

	// Renderer selection
	Renderer   string `yaml:"renderer" env:"VOCALIZE_RENDERER" envDefault:"process"`
	BinaryPath string `yaml:"binary_path" env:"VOCALIZE_BINARY_PATH"`

	// Inference parameters. Zero means the voice's own defaults.
	NoiseScale  float64 `yaml:"noise_scale" env:"VOCALIZE_NOISE_SCALE" envDefault:"0"`
	NoiseW      float64 `yaml:"noise_w" env:"VOCALIZE_NOISE_W" envDefault:"0"`
	LengthScale float64 `yaml:"length_scale" env:"VOCALIZE_LENGTH_SCALE" envDefault:"0"`

	Deterministic bool `yaml:"deterministic" env:"VOCALIZE_DETERMINISTIC" envDefault:"false"`
	FailFast      bool `yaml:"fail_fast" env:"VOCALIZE_FAIL_FAST" envDefault:"false"`

	// Output settings
	OutputDir    string `yaml:"output_dir" env:"VOCALIZE_OUTPUT_DIR"`
	OutputNaming string `yaml:"output_naming" env:"VOCALIZE_OUTPUT_NAMING" envDefault:"text"`
	MarkFile     string `yaml:"mark_file" env:"VOCALIZE_MARK_FILE"`

	// Timeouts
	RenderTimeout time.Duration `yaml:"render_timeout" env:"VOCALIZE_RENDER_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Voice:         "en_UK/apope_low",
		Renderer:      "process",
		OutputNaming:  "text",
		RenderTimeout: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Voice == "" {
		return fmt.Errorf("voice cannot be empty")
	}

	switch c.Renderer {
	case "process", "mock":
	default:
		return fmt.Errorf("invalid renderer %q: must be process or mock", c.Renderer)
	}

	switch c.OutputNaming {
	case "text", "time", "id":
	default:
		return fmt.Errorf("invalid output naming %q: must be text, time or id", c.OutputNaming)
	}

	if c.NoiseScale < 0 || c.NoiseScale > 2.0 {
		return fmt.Errorf("noise_scale must be between 0.0 and 2.0, got %f", c.NoiseScale)
	}
	if c.NoiseW < 0 || c.NoiseW > 2.0 {
		return fmt.Errorf("noise_w must be between 0.0 and 2.0, got %f", c.NoiseW)
	}
	if c.LengthScale < 0 || c.LengthScale > 3.0 {
		return fmt.Errorf("length_scale must be between 0.0 and 3.0, got %f", c.LengthScale)
	}
	if c.RenderTimeout < time.Second {
		return fmt.Errorf("render_timeout must be at least 1 second, got %v", c.RenderTimeout)
	}

	return nil
}

// VoiceKey returns the voice key with the speaker suffix applied.
func (c *Config) VoiceKey() string {
	if c.Speaker == "" {
		return c.Voice
	}
	return c.Voice + "#" + c.Speaker
}

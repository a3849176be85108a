package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads synthesis configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("tts.voice") {
		cfg.Voice = viper.GetString("tts.voice")
	}
	if viper.IsSet("tts.speaker") {
		cfg.Speaker = viper.GetString("tts.speaker")
	}
	if viper.IsSet("tts.voice_dirs") {
		cfg.VoiceDirs = viper.GetStringSlice("tts.voice_dirs")
	}
	if viper.IsSet("tts.renderer") {
		cfg.Renderer = viper.GetString("tts.renderer")
	}
	if viper.IsSet("tts.binary_path") {
		cfg.BinaryPath = viper.GetString("tts.binary_path")
	}
	if viper.IsSet("tts.noise_scale") {
		cfg.NoiseScale = viper.GetFloat64("tts.noise_scale")
	}
	if viper.IsSet("tts.noise_w") {
		cfg.NoiseW = viper.GetFloat64("tts.noise_w")
	}
	if viper.IsSet("tts.length_scale") {
		cfg.LengthScale = viper.GetFloat64("tts.length_scale")
	}
	if viper.IsSet("tts.deterministic") {
		cfg.Deterministic = viper.GetBool("tts.deterministic")
	}
	if viper.IsSet("tts.fail_fast") {
		cfg.FailFast = viper.GetBool("tts.fail_fast")
	}
	if viper.IsSet("tts.output_dir") {
		cfg.OutputDir = viper.GetString("tts.output_dir")
	}
	if viper.IsSet("tts.output_naming") {
		cfg.OutputNaming = viper.GetString("tts.output_naming")
	}
	if viper.IsSet("tts.mark_file") {
		cfg.MarkFile = viper.GetString("tts.mark_file")
	}
	if viper.IsSet("tts.render_timeout") {
		if d, err := time.ParseDuration(viper.GetString("tts.render_timeout")); err == nil {
			cfg.RenderTimeout = d
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SetDefaults sets default values in Viper for synthesis
// configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.voice", defaults.Voice)
	viper.SetDefault("tts.renderer", defaults.Renderer)
	viper.SetDefault("tts.noise_scale", defaults.NoiseScale)
	viper.SetDefault("tts.noise_w", defaults.NoiseW)
	viper.SetDefault("tts.length_scale", defaults.LengthScale)
	viper.SetDefault("tts.deterministic", defaults.Deterministic)
	viper.SetDefault("tts.fail_fast", defaults.FailFast)
	viper.SetDefault("tts.output_naming", defaults.OutputNaming)
	viper.SetDefault("tts.render_timeout", defaults.RenderTimeout.String())
}

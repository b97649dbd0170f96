// Package config loads teto's runtime configuration the way the teacher
// loads its own: spf13/viper, defaults set in code, environment overrides
// under a single prefix, an optional config file on top.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of tunables every component is constructed from.
type Config struct {
	FFmpeg  FFmpegConfig  `mapstructure:"ffmpeg"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Job     JobConfig     `mapstructure:"job"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Assets  AssetsConfig  `mapstructure:"assets"`
}

// FFmpegConfig locates the ffmpeg/ffprobe binaries the MediaBackend shells
// out to. Timeout is loaded from configuration but is not applied to Mux
// invocations; no component reads it.
type FFmpegConfig struct {
	BinaryPath  string        `mapstructure:"binary_path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CacheConfig points at the TTSCache root directory.
type CacheConfig struct {
	Root string `mapstructure:"root"`
}

// JobConfig bounds the ParallelDriver's worker pool.
type JobConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

// StorageConfig locates where rendered outputs and scratch files live.
type StorageConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	TempDir   string `mapstructure:"temp_dir"`
}

// LogConfig selects the logger's verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TTSConfig selects which TTSProvider to construct and which environment
// variable holds its credentials.
type TTSConfig struct {
	Provider  string `mapstructure:"provider"`
	APIKeyEnv string `mapstructure:"api_key_env"`
}

// AssetsConfig selects which AssetResolver to construct for generated
// (as opposed to local-file) visuals.
type AssetsConfig struct {
	Provider  string `mapstructure:"provider"`
	APIKeyEnv string `mapstructure:"api_key_env"`
}

const envPrefix = "TETO"

// Load reads defaults, an optional config.yaml, and TETO_-prefixed
// environment overrides, in that order of increasing precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/teto/")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ffmpeg.binary_path", "ffmpeg")
	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg.timeout", "30m")

	v.SetDefault("cache.root", "")

	v.SetDefault("job.workers", 4)
	v.SetDefault("job.queue_size", 32)

	v.SetDefault("storage.output_dir", "./output")
	v.SetDefault("storage.temp_dir", "./tmp")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("tts.provider", "openai")
	v.SetDefault("tts.api_key_env", "OPENAI_API_KEY")

	v.SetDefault("assets.provider", "local")
	v.SetDefault("assets.api_key_env", "GEMINI_API_KEY")
}

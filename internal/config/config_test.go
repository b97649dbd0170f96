package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ffmpeg", cfg.FFmpeg.BinaryPath)
	assert.Equal(t, "ffprobe", cfg.FFmpeg.FFprobePath)
	assert.Equal(t, 4, cfg.Job.Workers)
	assert.Equal(t, 32, cfg.Job.QueueSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "openai", cfg.TTS.Provider)
	assert.Equal(t, "OPENAI_API_KEY", cfg.TTS.APIKeyEnv)
	assert.Equal(t, "local", cfg.Assets.Provider)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TETO_JOB_WORKERS", "8")
	t.Setenv("TETO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Job.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

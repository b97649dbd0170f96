package ttscache

import (
	"testing"
	"time"

	"github.com/kazuvin/teto/internal/voice"
	"github.com/kazuvin/teto/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_DeterministicAcrossCalls(t *testing.T) {
	v := voice.CacheFields{Provider: "mock", VoiceID: "a", Speed: 1.0}
	k1, err := Key("hello", v)
	require.NoError(t, err)
	k2, err := Key("hello", v)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 16)
}

func TestKey_DiffersOnCacheRelevantField(t *testing.T) {
	a := voice.CacheFields{Provider: "mock", VoiceID: "a"}
	b := voice.CacheFields{Provider: "mock", VoiceID: "b"}
	ka, _ := Key("hello", a)
	kb, _ := Key("hello", b)
	assert.NotEqual(t, ka, kb)
}

func TestKey_SameOnNonCacheField(t *testing.T) {
	// Two distinct voice *profiles* resolving to identical CacheFields must
	// collide, per spec §4.2 — profile names never enter the key.
	a := voice.CacheFields{Provider: "mock", VoiceID: "a"}
	b := voice.CacheFields{Provider: "mock", VoiceID: "a"}
	ka, _ := Key("hello", a)
	kb, _ := Key("hello", b)
	assert.Equal(t, ka, kb)
}

func TestPutGet_RoundTrip(t *testing.T) {
	c, err := New(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	v := voice.CacheFields{Provider: "mock", VoiceID: "a"}
	require.NoError(t, c.Put("hi", v, "mp3", []byte("audio-bytes")))

	data, hit, err := c.Get("hi", v, "mp3")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("audio-bytes"), data)
}

func TestGet_Miss(t *testing.T) {
	c, err := New(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	_, hit, err := c.Get("never stored", voice.CacheFields{}, "mp3")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInfo_CountsEntries(t *testing.T) {
	c, err := New(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	require.NoError(t, c.Put("a", voice.CacheFields{VoiceID: "x"}, "mp3", []byte("1")))
	require.NoError(t, c.Put("b", voice.CacheFields{VoiceID: "y"}, "mp3", []byte("22")))

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, info.EntryCount)
	assert.EqualValues(t, 3, info.BytesUsed)
}

func TestClear_RemovesEverythingBeforeCutoff(t *testing.T) {
	c, err := New(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	require.NoError(t, c.Put("a", voice.CacheFields{VoiceID: "x"}, "mp3", []byte("1")))

	require.NoError(t, c.Clear(time.Now().Add(time.Hour)))

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, 0, info.EntryCount)
}

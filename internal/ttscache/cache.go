// Package ttscache implements teto's content-addressed TTS cache: a
// process-wide, file-backed store keyed on (plain_text, resolved voice
// fields), shared safely across concurrent compiles and processes.
package ttscache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/internal/voice"
	"github.com/kazuvin/teto/pkg/logger"
)

const keyHexLen = 16

// Info summarizes the cache's current footprint.
type Info struct {
	BytesUsed  int64
	EntryCount int
	ShardCounts map[string]int
}

// Cache is a content-addressed, directory-backed store for synthesized
// audio bytes. All methods are safe for concurrent use by multiple
// goroutines and multiple processes sharing the same Root.
type Cache struct {
	Root string
	log  logger.Logger

	mu sync.Mutex // serializes this process's writers; cross-process safety comes from atomic rename
}

// New constructs a Cache rooted at root. If root is empty, DefaultRoot()
// is used.
func New(root string, log logger.Logger) (*Cache, error) {
	if root == "" {
		r, err := DefaultRoot()
		if err != nil {
			return nil, tetoerrors.CacheIo(err)
		}
		root = r
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, tetoerrors.CacheIo(err)
	}
	if log == nil {
		log = logger.NewNoop()
	}
	return &Cache{Root: root, log: log}, nil
}

// DefaultRoot returns the platform-appropriate user cache directory for
// TTS audio: $TETO_CACHE_DIR if set, else <UserCacheDir>/teto/tts (this
// resolves to XDG_CACHE_HOME on Unix and %LocalAppData% on Windows, the
// same split spec §4.2 names explicitly).
func DefaultRoot() (string, error) {
	if dir := os.Getenv("TETO_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "teto", "tts"), nil
}

// Key computes the cache key for (text, resolved voice). Identical text
// and identical resolved voice fields yield an identical key across
// processes and machines (spec §4.2 determinism).
func Key(text string, v voice.CacheFields) (string, error) {
	canon, err := canonicalJSON(text, v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])[:keyHexLen], nil
}

func canonicalJSON(text string, v voice.CacheFields) ([]byte, error) {
	// encoding/json sorts map keys alphabetically at every nesting level,
	// and Marshal never emits insignificant whitespace — exactly the
	// "sorted keys, no whitespace" canonical form spec §4.2 requires.
	payload := map[string]interface{}{
		"text": text,
		"config": map[string]interface{}{
			"provider":        v.Provider,
			"voice_id":        v.VoiceID,
			"language_code":   v.LanguageCode,
			"speed":           v.Speed,
			"pitch":           v.Pitch,
			"model_id":        v.ModelID,
			"output_format":   v.OutputFormat,
			"voice_name":      v.VoiceName,
			"gemini_model_id": v.GeminiModelID,
			"style_prompt":    v.StylePrompt,
		},
	}
	return json.Marshal(payload)
}

func (c *Cache) shardDir(key string) string {
	return filepath.Join(c.Root, key[:2])
}

func (c *Cache) entryPath(key, ext string) string {
	return filepath.Join(c.shardDir(key), key+"."+ext)
}

// Get returns the cached bytes for (text, voice, ext), or (nil, false) on
// a cache miss.
func (c *Cache) Get(text string, v voice.CacheFields, ext string) ([]byte, bool, error) {
	key, err := Key(text, v)
	if err != nil {
		return nil, false, tetoerrors.CacheIo(err)
	}
	data, err := os.ReadFile(c.entryPath(key, ext))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, tetoerrors.CacheIo(err)
	}
	return data, true, nil
}

// Put stores bytes under the key for (text, voice, ext). Writes are
// atomic: write-to-temp-file then rename within the shard directory, so
// a concurrent second writer for the same key is tolerated — last writer
// wins, and readers always see a complete file or no file.
func (c *Cache) Put(text string, v voice.CacheFields, ext string, data []byte) error {
	key, err := Key(text, v)
	if err != nil {
		return tetoerrors.CacheIo(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dir := c.shardDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return tetoerrors.CacheIo(err)
	}

	tmp, err := os.CreateTemp(dir, key+".*.tmp")
	if err != nil {
		return tetoerrors.CacheIo(err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return tetoerrors.CacheIo(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return tetoerrors.CacheIo(err)
	}

	if err := os.Rename(tmpPath, c.entryPath(key, ext)); err != nil {
		os.Remove(tmpPath)
		return tetoerrors.CacheIo(err)
	}
	return nil
}

// Info walks the cache directory and reports aggregate size and per-shard
// entry counts — useful for diagnosing shard skew, not required by spec.
func (c *Cache) Info() (Info, error) {
	info := Info{ShardCounts: map[string]int{}}

	entries, err := os.ReadDir(c.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, tetoerrors.CacheIo(err)
	}

	for _, shard := range entries {
		if !shard.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(c.Root, shard.Name()))
		if err != nil {
			return info, tetoerrors.CacheIo(err)
		}
		count := 0
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			fi, err := f.Info()
			if err != nil {
				continue
			}
			info.BytesUsed += fi.Size()
			info.EntryCount++
			count++
		}
		if count > 0 {
			info.ShardCounts[shard.Name()] = count
		}
	}
	return info, nil
}

// Clear removes every entry whose modification time precedes cutoff (the
// zero Time clears everything), then prunes now-empty shard directories.
func (c *Cache) Clear(cutoff time.Time) error {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return tetoerrors.CacheIo(err)
	}

	shardNames := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			shardNames = append(shardNames, e.Name())
		}
	}
	sort.Strings(shardNames)

	for _, shard := range shardNames {
		shardPath := filepath.Join(c.Root, shard)
		files, err := os.ReadDir(shardPath)
		if err != nil {
			return tetoerrors.CacheIo(err)
		}
		remaining := 0
		for _, f := range files {
			fi, err := f.Info()
			if err != nil {
				continue
			}
			if cutoff.IsZero() || fi.ModTime().Before(cutoff) {
				if err := os.Remove(filepath.Join(shardPath, f.Name())); err != nil {
					return tetoerrors.CacheIo(err)
				}
				continue
			}
			remaining++
		}
		if remaining == 0 {
			os.Remove(shardPath) // best-effort; directory may briefly gain a new file concurrently
		}
	}
	return nil
}

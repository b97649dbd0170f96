package mediabackend

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kazuvin/teto/internal/project"
	"github.com/kazuvin/teto/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestFitImage_ContainProducesExactFrameSize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestPNG(t, src, 400, 200)

	dst := filepath.Join(dir, "dst.png")
	require.NoError(t, fitImage(src, dst, FrameSize{Width: 100, Height: 100}, "contain"))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestFitImage_Cover(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestPNG(t, src, 400, 200)

	dst := filepath.Join(dir, "dst.png")
	require.NoError(t, fitImage(src, dst, FrameSize{Width: 50, Height: 50}, "cover"))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestParseProgress_EmitsFraction(t *testing.T) {
	input := "Duration: 00:00:10.00\nframe=1 time=00:00:05.00\n"
	ch := make(chan float64, 4)
	parseProgress(bytes.NewBufferString(input), 0, ch, logger.NewNoop())

	var last float64
	for v := range ch {
		last = v
	}
	assert.InDelta(t, 0.5, last, 1e-6)
}

func TestLoadClip_MissingFileIsAssetNotFound(t *testing.T) {
	b := NewFFmpeg("ffmpeg", "ffprobe", logger.NewNoop())
	_, err := b.LoadClip(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), project.LayerKindVideo)
	require.Error(t, err)
}

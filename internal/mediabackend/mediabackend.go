// Package mediabackend is the sole seam between teto's pipeline and an
// actual video encoder: clip loading, frame composition (object-fit
// scaling), and muxing. Subtitle text is not rasterized here; it reaches
// the encoder as an ASS document burned in by ffmpeg's ass filter.
package mediabackend

import (
	"context"

	"github.com/kazuvin/teto/internal/project"
)

// Clip is a handle to one loaded media item: enough metadata for the
// pipeline to place it on the timeline, without decoding frames into
// process memory — frame-level work happens inside the encoder process.
type Clip struct {
	Path      string
	Kind      project.LayerKind
	Duration  float64
	HasAudio  bool
	Width     int
	Height    int
}

// FrameSize is the target output resolution clips are composed into.
type FrameSize struct {
	Width  int
	Height int
}

// Backend is the abstraction wrapping a concrete encoder/compositing
// library. teto's default implementation shells out to ffmpeg the way
// the teacher's engine.Service does; a test backend can be substituted
// with no change to the pipeline above it.
type Backend interface {
	// LoadClip probes a layer's source file for the metadata the
	// pipeline needs to plan composition (duration for video/audio,
	// audio presence for video). FFmpegBackend leaves Clip.Width and
	// Clip.Height unset.
	LoadClip(ctx context.Context, path string, kind project.LayerKind) (Clip, error)

	// ComposeFrame resizes a still image per the given object-fit
	// policy and writes the result to a new file, returning its path.
	// The default pipeline chain does not call it: object fit for
	// rendered layers is applied by ffmpeg filters built in the layers
	// package.
	ComposeFrame(ctx context.Context, srcPath string, size FrameSize, objectFit string) (string, error)

	// Mux executes a fully-built ffmpeg argv (as constructed by the
	// layers package's BuildFFmpegArgs) and streams progress, computed
	// against knownDuration, on progress until the process exits.
	Mux(ctx context.Context, args []string, knownDuration float64, progress chan<- float64) error
}

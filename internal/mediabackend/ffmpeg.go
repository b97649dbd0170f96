package mediabackend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kazuvin/teto/internal/project"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
	"github.com/kazuvin/teto/pkg/logger"
)

// FFmpegBackend shells out to ffmpeg/ffprobe, the way the teacher's
// engine.Service builds -filter_complex graphs and parses stderr
// progress, generalized from a single background-video-plus-overlays
// composition to teto's full video/image/audio/stamp/subtitle layer set.
type FFmpegBackend struct {
	BinaryPath  string
	FFprobePath string
	Verbose     bool
	log         logger.Logger
}

// NewFFmpeg constructs a Backend bound to the given binaries.
func NewFFmpeg(binaryPath, ffprobePath string, log logger.Logger) *FFmpegBackend {
	if log == nil {
		log = logger.NewNoop()
	}
	return &FFmpegBackend{BinaryPath: binaryPath, FFprobePath: ffprobePath, log: log}
}

func (b *FFmpegBackend) LoadClip(ctx context.Context, path string, kind project.LayerKind) (Clip, error) {
	if _, err := os.Stat(path); err != nil {
		return Clip{}, tetoerrors.AssetNotFound(path)
	}

	clip := Clip{Path: path, Kind: kind}

	if kind == project.LayerKindVideo || kind == project.LayerKindAudio {
		out, err := exec.CommandContext(ctx, b.FFprobePath,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path,
		).Output()
		if err != nil {
			return Clip{}, tetoerrors.EncoderIo(fmt.Errorf("ffprobe %s: %w", path, err))
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
		if err == nil {
			clip.Duration = d
		}
		if kind == project.LayerKindVideo {
			clip.HasAudio = probeHasAudioStream(ctx, b.FFprobePath, path)
		}
	}

	return clip, nil
}

func (b *FFmpegBackend) ComposeFrame(_ context.Context, srcPath string, size FrameSize, objectFit string) (string, error) {
	dst := filepath.Join(filepath.Dir(srcPath), "fit_"+filepath.Base(srcPath)+".png")
	if err := fitImage(srcPath, dst, size, objectFit); err != nil {
		return "", err
	}
	return dst, nil
}

func probeHasAudioStream(ctx context.Context, ffprobePath, path string) bool {
	out, err := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=index",
		"-of", "csv=p=0",
		path,
	).Output()
	return err == nil && strings.TrimSpace(string(out)) != ""
}

// Mux executes a fully-built ffmpeg argv — as constructed by the layers
// package's BuildFFmpegArgs — streaming progress computed against
// knownDuration, the way the teacher's engine.Service Execute does for
// its own BuildCommand output.
func (b *FFmpegBackend) Mux(ctx context.Context, args []string, knownDuration float64, progressChan chan<- float64) error {
	b.log.WithField("args", strings.Join(args, " ")).Debug("invoking ffmpeg")

	cmd := exec.CommandContext(ctx, b.BinaryPath, args...)

	pipe, err := cmd.StderrPipe()
	if err != nil {
		return tetoerrors.EncoderIo(err)
	}

	if err := cmd.Start(); err != nil {
		return tetoerrors.EncoderIo(err)
	}

	go parseProgress(pipe, knownDuration, progressChan, b.log)

	if err := cmd.Wait(); err != nil {
		return tetoerrors.EncoderIo(fmt.Errorf("ffmpeg failed: %w", err))
	}
	return nil
}

var (
	durationRegex = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
	timeRegex     = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
)

// parseProgress scans ffmpeg's stderr for Duration:/time= lines and
// reports fractional progress on progressChan, mirroring the teacher's
// parseProgress but reporting a float in [0,1] rather than a percent int.
func parseProgress(stderr io.Reader, knownDuration float64, progressChan chan<- float64, log logger.Logger) {
	if progressChan != nil {
		defer close(progressChan)
	}

	scanner := bufio.NewScanner(stderr)
	total := knownDuration

	for scanner.Scan() {
		line := scanner.Text()
		log.Debugf("ffmpeg: %s", line)

		if total == 0 {
			if m := durationRegex.FindStringSubmatch(line); len(m) == 5 {
				total = hmscsToSeconds(m)
			}
		}
		if total > 0 && progressChan != nil {
			if m := timeRegex.FindStringSubmatch(line); len(m) == 5 {
				current := hmscsToSeconds(m)
				progress := current / total
				if progress > 1 {
					progress = 1
				}
				select {
				case progressChan <- progress:
				default:
				}
			}
		}
	}
}

func hmscsToSeconds(m []string) float64 {
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	cs, _ := strconv.Atoi(m[4])
	return float64(h*3600+mi*60+s) + float64(cs)/100
}

var _ Backend = (*FFmpegBackend)(nil)

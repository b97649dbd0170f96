package mediabackend

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	ximgdraw "golang.org/x/image/draw"

	"github.com/kazuvin/teto/internal/script"
	tetoerrors "github.com/kazuvin/teto/pkg/errors"
)

// fitImage decodes srcPath, applies objectFit against size, and writes a
// PNG to dstPath. The three object-fit policies (spec §4.5.1):
//   - contain: scale to fit inside (W,H) preserving aspect; letterbox
//     with opaque black.
//   - cover:   scale to cover (W,H) preserving aspect; center-crop excess.
//   - fill:    scale to exactly (W,H), distorting aspect ratio.
func fitImage(srcPath, dstPath string, size FrameSize, objectFit string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return tetoerrors.AssetNotFound(srcPath)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return tetoerrors.EncoderIo(fmt.Errorf("decoding image %s: %w", srcPath, err))
	}

	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))

	switch objectFit {
	case script.ObjectFitFill:
		ximgdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), ximgdraw.Over, nil)
	case script.ObjectFitCover:
		drawCover(dst, src, size)
	default: // contain
		drawContain(dst, src, size)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return tetoerrors.EncoderIo(err)
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return tetoerrors.EncoderIo(err)
	}
	defer out.Close()

	if err := png.Encode(out, dst); err != nil {
		return tetoerrors.EncoderIo(err)
	}
	return nil
}

func drawContain(dst *image.RGBA, src image.Image, size FrameSize) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	sb := src.Bounds()
	scale := minFloat(
		float64(size.Width)/float64(sb.Dx()),
		float64(size.Height)/float64(sb.Dy()),
	)
	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	x0 := (size.Width - w) / 2
	y0 := (size.Height - h) / 2

	dstRect := image.Rect(x0, y0, x0+w, y0+h)
	ximgdraw.CatmullRom.Scale(dst, dstRect, src, sb, ximgdraw.Over, nil)
}

func drawCover(dst *image.RGBA, src image.Image, size FrameSize) {
	sb := src.Bounds()
	scale := maxFloat(
		float64(size.Width)/float64(sb.Dx()),
		float64(size.Height)/float64(sb.Dy()),
	)
	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	x0 := (size.Width - w) / 2
	y0 := (size.Height - h) / 2

	dstRect := image.Rect(x0, y0, x0+w, y0+h)
	ximgdraw.CatmullRom.Scale(dst, dstRect, src, sb, ximgdraw.Over, nil)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

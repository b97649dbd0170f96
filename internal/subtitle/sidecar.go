package subtitle

import (
	"fmt"
	"strings"

	"github.com/kazuvin/teto/internal/project"
)

// GenerateSRT renders layer's items as an SRT sidecar: index, comma-
// decimal time range, stripped (markup-free) text, blank line.
func GenerateSRT(layer project.SubtitleLayer) string {
	return generateSidecar(layer, ',')
}

// GenerateVTT renders layer's items as a WebVTT sidecar: the same block
// shape as SRT but dot-decimal times and a leading "WEBVTT" header.
func GenerateVTT(layer project.SubtitleLayer) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	b.WriteString(generateSidecar(layer, '.'))
	return b.String()
}

func generateSidecar(layer project.SubtitleLayer, decimalSep byte) string {
	var b strings.Builder
	for i, item := range layer.Items {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			sidecarTime(item.Start, decimalSep),
			sidecarTime(item.End, decimalSep),
			StripMarkup(item.Text),
		)
	}
	return b.String()
}

// sidecarTime renders seconds as HH:MM:SS<sep>mmm.
func sidecarTime(seconds float64, decimalSep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.5)
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, decimalSep, millis)
}

package subtitle

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kazuvin/teto/internal/project"
	"github.com/kazuvin/teto/internal/script"
)

// titleCaser renders a style name as a display title in the ASS header
// comment, matching the teacher's use of golang.org/x/text/cases for
// locale-aware title-casing rather than a hand-rolled strings.Title.
var titleCaser = cases.Title(language.Und, cases.NoLower)

// GenerateASS renders layer into a complete ASS subtitle document, one
// Dialogue event per SubtitleItem, burned in by ffmpeg's ass filter.
func GenerateASS(layer project.SubtitleLayer) string {
	base := ResolveBase(layer.BaseStyle)
	var b strings.Builder
	b.WriteString(generateHeader(base))
	b.WriteString(generateEvents(layer, base))
	return b.String()
}

func generateHeader(base ResolvedStyle) string {
	primary := colorToASS(base.FontColor)
	outline := colorToASS(base.Stroke)
	back := colorToASS(base.Background)
	alignment := alignmentFor(base.Position)
	title := titleCaser.String(fmt.Sprintf("%s subtitles", base.Appearance))

	return fmt.Sprintf(`[Script Info]
Title: %s
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,%s,%s,%s,%s,1,0,0,0,100,100,0,0,1,%d,0,%d,%d,%d,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`,
		title,
		base.FontFamily,
		base.FontSize,
		primary,
		primary,
		outline,
		back,
		base.StrokeWidth,
		alignment,
		base.Margin,
		base.Margin,
		base.Margin,
	)
}

func generateEvents(layer project.SubtitleLayer, base ResolvedStyle) string {
	var b strings.Builder
	for _, item := range layer.Items {
		start := formatASSTime(item.Start)
		end := formatASSTime(item.End)
		text := renderSpans(item.Text, layer.PartialStyles, base)
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n", start, end, text)
	}
	return b.String()
}

// renderSpans converts the item's raw (markup-retaining) text into ASS
// inline override tags, applying per-span color/weight overrides and
// stripping markup tags from the emitted text itself.
func renderSpans(raw string, styles map[string]script.PartialStyle, base ResolvedStyle) string {
	spans := ParseMarkup(normalizeWhitespace(raw))
	var b strings.Builder
	for _, sp := range spans {
		text := escapeASSText(sp.Text)
		if sp.StyleName == "" {
			b.WriteString(text)
			continue
		}
		resolved := ResolveSpan(base, sp.StyleName, styles)
		fmt.Fprintf(&b, "{\\c%s\\b%s}%s{\\r}", colorToASS(resolved.FontColor), boldTag(resolved.FontWeight), text)
	}
	return b.String()
}

func boldTag(weight string) string {
	if weight == "bold" {
		return "1"
	}
	return "0"
}

// normalizeWhitespace collapses runs of whitespace into single spaces once
// over a whole caption line, before markup splitting, so span boundaries
// never swallow the space between adjacent spans.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\n", "\\N")
	text = strings.ReplaceAll(text, "{", "\\{")
	text = strings.ReplaceAll(text, "}", "\\}")
	text = strings.ReplaceAll(text, "|", "\\h")
	return text
}

// formatASSTime renders seconds as ASS's H:MM:SS.CC time format.
func formatASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalCentis := int(seconds*100 + 0.5)
	hours := totalCentis / 360000
	minutes := (totalCentis % 360000) / 6000
	secs := (totalCentis % 6000) / 100
	centis := totalCentis % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}

// colorToASS converts a #RRGGBB (or empty) hex color to ASS's &HAABBGGRR
// format (no alpha channel set, i.e. fully opaque), matching the
// teacher's parseColorToASS. An empty or malformed color renders as
// &H00000000, i.e. opaque black.
func colorToASS(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "&H00000000"
	}
	r, g, bl := hex[0:2], hex[2:4], hex[4:6]
	return fmt.Sprintf("&H00%s%s%s", bl, g, r)
}

// alignmentFor maps a position string to ASS's numeric alignment (numpad
// layout), matching the teacher's getAlignment.
func alignmentFor(position string) int {
	alignments := map[string]int{
		"left-bottom": 1, "center-bottom": 2, "right-bottom": 3,
		"left-center": 4, "center-center": 5, "right-center": 6,
		"left-top": 7, "center-top": 8, "right-top": 9,
		"bottom-left": 1, "bottom-center": 2, "bottom-right": 3,
		"middle-left": 4, "middle-center": 5, "middle-right": 6,
		"top-left": 7, "top-center": 8, "top-right": 9,
	}
	if a, ok := alignments[position]; ok {
		return a
	}
	return 2
}

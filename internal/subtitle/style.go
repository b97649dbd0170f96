package subtitle

import "github.com/kazuvin/teto/internal/script"

// ResolvedStyle is a SubtitleStyleConfig with every field populated via
// defaulting, ready to drive ASS generation.
type ResolvedStyle struct {
	FontFamily  string
	FontSize    int
	FontColor   string
	FontWeight  string
	Stroke      string
	StrokeWidth int
	Background  string
	Position    string
	Appearance  string
	Margin      int
}

func defaultStyle() ResolvedStyle {
	return ResolvedStyle{
		FontFamily:  "Arial",
		FontSize:    48,
		FontColor:   "#FFFFFF",
		FontWeight:  "normal",
		Stroke:      "#000000",
		StrokeWidth: 2,
		Background:  "",
		Position:    "center-bottom",
		Appearance:  "plain",
		Margin:      20,
	}
}

// ResolveBase merges a SubtitleStyleConfig onto the package default,
// filling in any field base leaves at its zero value.
func ResolveBase(base script.SubtitleStyleConfig) ResolvedStyle {
	r := defaultStyle()
	if base.FontFamily != "" {
		r.FontFamily = base.FontFamily
	}
	if base.FontSize != 0 {
		r.FontSize = base.FontSize
	}
	if base.FontColor != "" {
		r.FontColor = base.FontColor
	}
	if base.FontWeight != "" {
		r.FontWeight = base.FontWeight
	}
	if base.Stroke != "" {
		r.Stroke = base.Stroke
	}
	if base.StrokeWidth != 0 {
		r.StrokeWidth = base.StrokeWidth
	}
	if base.Background != "" {
		r.Background = base.Background
	}
	if base.Position != "" {
		r.Position = base.Position
	}
	if base.Appearance != "" {
		r.Appearance = base.Appearance
	}
	if base.Margin != 0 {
		r.Margin = base.Margin
	}
	return r
}

// ResolveSpan merges a named tag's PartialStyle onto base — only
// font_color, font_weight, and font_size (when present) override; stroke
// and background stay layer-global, per spec §4.6.
func ResolveSpan(base ResolvedStyle, styleName string, styles map[string]script.PartialStyle) ResolvedStyle {
	if styleName == "" {
		return base
	}
	override, ok := styles[styleName]
	if !ok {
		return base
	}
	r := base
	if override.FontColor != "" {
		r.FontColor = override.FontColor
	}
	if override.FontWeight != "" {
		r.FontWeight = override.FontWeight
	}
	if override.FontSize != 0 {
		r.FontSize = override.FontSize
	}
	return r
}

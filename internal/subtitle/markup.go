// Package subtitle renders a project's SubtitleLayer into ffmpeg-burnable
// ASS subtitles and SRT/VTT sidecar files, and parses the inline markup a
// narration segment's text may carry.
package subtitle

import "regexp"

var markupSpanRe = regexp.MustCompile(`<([a-zA-Z0-9_-]+)>(.*?)</([a-zA-Z0-9_-]+)>`)

// Span is one stretch of text with an optional style tag. StyleName is
// empty for plain, untagged stretches.
type Span struct {
	Text      string
	StyleName string
}

// ParseMarkup splits text into an ordered sequence of Spans, peeling off
// <tag>...</tag> pairs non-greedily and leaving everything else as plain
// spans. A closing tag that doesn't match its opening tag is left as
// literal text, same as an unrecognized span.
func ParseMarkup(text string) []Span {
	var spans []Span
	pos := 0
	for _, loc := range markupSpanRe.FindAllStringSubmatchIndex(text, -1) {
		openStart, openEnd := loc[2], loc[3]
		closeStart, closeEnd := loc[6], loc[7]
		if text[openStart:openEnd] != text[closeStart:closeEnd] {
			continue
		}
		matchStart, matchEnd := loc[0], loc[1]
		if matchStart > pos {
			spans = append(spans, Span{Text: text[pos:matchStart]})
		}
		innerStart, innerEnd := loc[4], loc[5]
		spans = append(spans, Span{
			Text:      text[innerStart:innerEnd],
			StyleName: text[openStart:openEnd],
		})
		pos = matchEnd
	}
	if pos < len(text) {
		spans = append(spans, Span{Text: text[pos:]})
	}
	if spans == nil {
		spans = []Span{{Text: text}}
	}
	return spans
}

// StripMarkup returns the concatenation of every span's text, with no tags
// — this is the string fed to narration/TTS (spec's markup-passthrough
// invariant).
func StripMarkup(text string) string {
	var out []byte
	for _, sp := range ParseMarkup(text) {
		out = append(out, sp.Text...)
	}
	return string(out)
}

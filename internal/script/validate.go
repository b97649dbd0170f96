package script

import (
	"fmt"
	"regexp"

	tetoerrors "github.com/kazuvin/teto/pkg/errors"
)

var markupTagRe = regexp.MustCompile(`<([a-zA-Z0-9_-]+)>`)

// ReferencedTags returns the distinct markup tag names a narration's text
// references, in first-seen order.
func ReferencedTags(text string) []string {
	seen := map[string]bool{}
	var tags []string
	for _, m := range markupTagRe.FindAllStringSubmatch(text, -1) {
		tag := m[1]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// ValidationContext supplies the registries of valid names that a Script
// may reference, so the script package can validate references without
// importing the effects/preset packages (which depend on this one).
type ValidationContext struct {
	KnownEffects map[string]bool
	KnownPresets map[string]bool
}

// Validate runs every pre-condition check from spec §4.1 and returns a
// ValidationErrors aggregating all violations found, or nil if none.
func (s *Script) Validate(ctx ValidationContext) error {
	var verrs tetoerrors.ValidationErrors

	if len(s.Scenes) == 0 {
		verrs.Add("script must contain at least one scene")
	}

	if s.DefaultEffect != "" && !ctx.KnownEffects[s.DefaultEffect] {
		verrs.Add(fmt.Sprintf("unknown default_effect %q", s.DefaultEffect))
	}
	if s.DefaultPreset != "" && !ctx.KnownPresets[s.DefaultPreset] {
		verrs.Add(fmt.Sprintf("unknown default_preset %q", s.DefaultPreset))
	}

	for i, scene := range s.Scenes {
		loc := tetoerrors.Location{Scene: i, Valid: true}

		if scene.Voice != nil && scene.VoiceProfile != "" {
			verrs.Errors = append(verrs.Errors,
				tetoerrors.Validation(fmt.Sprintf("scene %d: both voice and voice_profile set", i)).WithLocation(loc))
		}

		if scene.VoiceProfile != "" {
			if _, ok := s.VoiceProfiles[scene.VoiceProfile]; !ok {
				verrs.Errors = append(verrs.Errors,
					tetoerrors.Validation(fmt.Sprintf("scene %d: unknown voice_profile %q", i, scene.VoiceProfile)).WithLocation(loc))
			}
		}

		if scene.Effect != "" && !ctx.KnownEffects[scene.Effect] {
			verrs.Errors = append(verrs.Errors,
				tetoerrors.Validation(fmt.Sprintf("scene %d: unknown effect %q", i, scene.Effect)).WithLocation(loc))
		}
		if scene.Preset != "" && !ctx.KnownPresets[scene.Preset] {
			verrs.Errors = append(verrs.Errors,
				tetoerrors.Validation(fmt.Sprintf("scene %d: unknown preset %q", i, scene.Preset)).WithLocation(loc))
		}

		if len(scene.Narrations) == 0 {
			if scene.Duration == nil {
				verrs.Errors = append(verrs.Errors,
					tetoerrors.Validation(fmt.Sprintf("scene %d: has no narrations and no explicit duration", i)).WithLocation(loc))
			} else if *scene.Duration <= 0 {
				verrs.Errors = append(verrs.Errors,
					tetoerrors.Validation(fmt.Sprintf("scene %d: duration must be positive", i)).WithLocation(loc))
			}
		}

		for j, seg := range scene.Narrations {
			segLoc := tetoerrors.Location{Scene: i, Segment: j, Valid: true}
			for _, tag := range ReferencedTags(seg.Text) {
				if _, ok := s.SubtitleStyles[tag]; !ok {
					verrs.Errors = append(verrs.Errors,
						tetoerrors.Validation(fmt.Sprintf("scene %d segment %d: unknown markup tag %q", i, j, tag)).WithLocation(segLoc))
				}
			}
			if seg.PauseAfter < 0 {
				verrs.Errors = append(verrs.Errors,
					tetoerrors.Validation(fmt.Sprintf("scene %d segment %d: pause_after must be >= 0", i, j)).WithLocation(segLoc))
			}
		}

		if scene.Visual.Path == "" && !scene.Visual.Generate {
			verrs.Errors = append(verrs.Errors,
				tetoerrors.Validation(fmt.Sprintf("scene %d: visual must set path or generate", i)).WithLocation(loc))
		}
		if scene.Visual.Path != "" && scene.Visual.Generate {
			verrs.Errors = append(verrs.Errors,
				tetoerrors.Validation(fmt.Sprintf("scene %d: visual must not set both path and generate", i)).WithLocation(loc))
		}

		if scene.PauseAfter < 0 {
			verrs.Errors = append(verrs.Errors,
				tetoerrors.Validation(fmt.Sprintf("scene %d: pause_after must be >= 0", i)).WithLocation(loc))
		}
	}

	for i, stamp := range s.Stamps {
		if stamp.Path == "" {
			verrs.Add(fmt.Sprintf("stamp %d: path must be set", i))
		}
		if stamp.End <= stamp.Start {
			verrs.Add(fmt.Sprintf("stamp %d: end must be greater than start", i))
		}
	}

	return verrs.AsOrNil()
}

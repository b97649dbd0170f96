package script

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON accepts either a single OutputSettings object or a JSON
// array of them, normalizing both into an ordered []OutputSettings.
func (o *OutputList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*o = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []OutputSettings
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*o = list
		return nil
	}
	var single OutputSettings
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*o = []OutputSettings{single}
	return nil
}

// MarshalJSON renders a single-element list as a bare object and longer
// lists as an array, mirroring how it was likely authored.
func (o OutputList) MarshalJSON() ([]byte, error) {
	if len(o) == 1 {
		return json.Marshal(o[0])
	}
	return json.Marshal([]OutputSettings(o))
}

// Decode parses Script JSON, rejecting any unknown top-level key (spec
// §6.2). The strict decoder also rejects unknown keys inside nested
// objects (scenes, voice, timing, styles, stamps); the "output" value is
// the exception, since OutputList.UnmarshalJSON decodes it permissively.
func Decode(data []byte) (*Script, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var strict Script
	if err := dec.Decode(&strict); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	return &strict, nil
}

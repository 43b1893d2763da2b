package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec. Use it when the lowest
// dependency surface matters more than encoding speed.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by graph export.
//
// Exported graphs are self-describing (they store the codec name in
// their header), so changing the default never breaks existing bytes.
var Default Codec = GoJSON{}

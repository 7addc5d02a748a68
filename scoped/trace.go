package scoped

import "encoding/json"

// Trace captures provenance information for one option across the scope chain
// that produced its effective value.
type Trace struct {
	Option  string       `json:"option"`
	Value   any          `json:"value,omitempty"`
	Source  string       `json:"source,omitempty"`
	Default any          `json:"default,omitempty"`
	Layers  []Provenance `json:"layers"`
}

// Provenance details how a single scope contributes to a traced option.
// Layers are ordered from the bound scope up to the root.
type Provenance struct {
	Scope string `json:"scope"`
	Value any    `json:"value,omitempty"`
	Found bool   `json:"found"`
	Depth int    `json:"depth,omitempty"`
}

// ToJSON serialises the trace for logging.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

package state

import (
	"encoding/json"
	"fmt"
)

// Output is one named value exposed by a successful apply.
type Output struct {
	Value     any    `json:"value"`
	Type      string `json:"type,omitempty"`
	Sensitive bool   `json:"sensitive,omitempty"`
}

// OutputSet maps output names to values. It is the cheap path for
// resolving live addresses without re-reading the full state.
type OutputSet map[string]Output

// ParseOutputs decodes the persisted outputs artifact. Entries may be full
// {value, type, sensitive} records or bare values.
func ParseOutputs(data []byte) (OutputSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse outputs file: %w", err)
	}

	outputs := make(OutputSet, len(raw))
	for name, msg := range raw {
		var full struct {
			Value     any    `json:"value"`
			Type      any    `json:"type"`
			Sensitive bool   `json:"sensitive"`
		}
		if err := json.Unmarshal(msg, &full); err == nil && full.Value != nil {
			typ := "string"
			if s, ok := full.Type.(string); ok && s != "" {
				typ = s
			}
			outputs[name] = Output{Value: full.Value, Type: typ, Sensitive: full.Sensitive}
			continue
		}
		var bare any
		if err := json.Unmarshal(msg, &bare); err != nil {
			return nil, fmt.Errorf("failed to parse output %q: %w", name, err)
		}
		outputs[name] = Output{Value: bare}
	}
	return outputs, nil
}

// StringValue returns the output's value when it is a string, or "".
func (o OutputSet) StringValue(name string) string {
	out, ok := o[name]
	if !ok {
		return ""
	}
	if s, ok := out.Value.(string); ok {
		return s
	}
	return ""
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// LoadBodies converts every document of a YAML or JSON input file to a JSON
// request body.
func LoadBodies(filename string) ([]json.RawMessage, error) {
	docs, err := ParseMultiYAML(filename)
	if err != nil {
		return nil, err
	}
	bodies := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("unable to convert to JSON: %v", err)
		}
		bodies = append(bodies, data)
	}
	return bodies, nil
}

// LoadBody is LoadBodies for inputs that must hold exactly one document.
func LoadBody(filename string) (json.RawMessage, error) {
	bodies, err := LoadBodies(filename)
	if err != nil {
		return nil, err
	}
	if len(bodies) != 1 {
		return nil, fmt.Errorf("%s: expected one document, found %d", filename, len(bodies))
	}
	return bodies[0], nil
}

// applySets applies key=value assignments to body. Keys are sjson paths
// (e.g. "emergency_contact" or "preferred_hospitals_ids.-1"). Values that
// parse as JSON are set as-is, everything else as a string.
func applySets(body []byte, sets []string) ([]byte, error) {
	if len(body) == 0 {
		body = []byte("{}")
	}
	var err error
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", s)
		}
		if gjson.Valid(value) {
			body, err = sjson.SetRawBytes(body, key, []byte(value))
		} else {
			body, err = sjson.SetBytes(body, key, value)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}
	}
	return body, nil
}

// buildBody combines an optional input file with --set assignments.
func buildBody(file string, sets []string) (json.RawMessage, error) {
	var body []byte
	if file != "" {
		b, err := LoadBody(file)
		if err != nil {
			return nil, err
		}
		body = b
	}
	if len(body) == 0 && len(sets) == 0 {
		return nil, fmt.Errorf("nothing to send: use -f FILE or --set key=value")
	}
	return applySets(body, sets)
}

package fileutils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrEmptyObject = errors.New("model returned an empty JSON object")

// DecodeModelJSON decodes the JSON object in a model reply into v. A markdown fence or a lead-in
// sentence around the object is tolerated. Unknown fields, an empty object and any missing
// required key are errors.
func DecodeModelJSON(outputText string, v any, required ...string) error {
	obj, err := extractObject(outputText)
	if err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(obj, &keys); err != nil {
		return fmt.Errorf("decode model object (len=%d): %w", len(obj), err)
	}
	if len(keys) == 0 {
		return ErrEmptyObject
	}
	var missing []string
	for _, k := range required {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("model object missing %s", strings.Join(missing, ", "))
	}

	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode model object: %w", err)
	}
	return nil
}

func extractObject(outputText string) ([]byte, error) {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return nil, io.ErrUnexpectedEOF
	}
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "```"))
	}
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	return []byte(s[start : end+1]), nil
}

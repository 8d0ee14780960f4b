package fetch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrNotStructured reports a document that is neither an object nor an array.
var ErrNotStructured = errors.New("document is not an object or array")

// Transcoder converts a non-JSON document into canonical JSON values.
type Transcoder interface {
	TranscodeToCanonical(data []byte) (any, error)
}

// ParseCanonical decodes a single JSON value. Numbers are kept as json.Number
// so they round-trip without precision loss.
func ParseCanonical(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// YAMLTranscoder decodes YAML and re-expresses it as canonical JSON values.
type YAMLTranscoder struct{}

// TranscodeToCanonical implements Transcoder.
func (YAMLTranscoder) TranscodeToCanonical(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	normalized, err := normalizeYAML(raw)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode yaml as json: %w", err)
	}
	return ParseCanonical(encoded)
}

// normalizeYAML rewrites maps with non-string keys so the value can be
// marshalled as JSON.
func normalizeYAML(v any) (any, error) {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			n, err := normalizeYAML(value)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			n, err := normalizeYAML(value)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(key)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			n, err := normalizeYAML(value)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

// Decode parses data as JSON, falling back to the transcoder when the bytes
// are not valid JSON, and checks that the result is an object or array. Empty
// objects and arrays are valid documents.
func Decode(data []byte, transcoder Transcoder) (any, error) {
	doc, jsonErr := ParseCanonical(data)
	if jsonErr != nil {
		if transcoder == nil {
			return nil, jsonErr
		}
		var err error
		doc, err = transcoder.TranscodeToCanonical(data)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("decode json: %w", jsonErr), err)
		}
	}

	if !IsStructured(doc) {
		return nil, ErrNotStructured
	}
	return doc, nil
}

// IsStructured reports whether v is a JSON object or array.
func IsStructured(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// Package normalize flattens the list envelopes returned by the backend
// into a single ordered slice of records.
//
// The backend is not consistent about where it puts lists. All of these are
// seen in practice and must produce the same result:
//
//	[...]
//	{"items": [...]}
//	{"data": [...]}
//	{"data": {"items": [...]}}
//	{"results": [...]}
//
// When none of the designated fields hold an array, the first array-valued
// field in document order is used. That fallback is kept for older
// endpoints only and is logged every time it fires.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Normalizer extracts record lists from response bodies.
type Normalizer struct {
	logger *zap.Logger
}

// New returns a Normalizer that reports fallback extraction on logger.
// A nil logger disables reporting.
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

var std = New(nil)

// Items extracts records from body using a Normalizer without logging.
func Items(body []byte) []json.RawMessage {
	return std.Items(body)
}

// Items returns the records held by body. It never fails: bodies that are
// not JSON, not an object or an array, or that carry no list at all yield
// an empty slice.
func (n *Normalizer) Items(body []byte) []json.RawMessage {
	if n == nil {
		n = std
	}
	if !gjson.ValidBytes(body) {
		return []json.RawMessage{}
	}

	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return elements(root)
	}
	if !root.IsObject() {
		return []json.RawMessage{}
	}

	for _, path := range []string{"items", "data", "data.items", "results"} {
		if v := root.Get(path); v.IsArray() {
			return elements(v)
		}
	}

	var (
		found gjson.Result
		field string
	)
	root.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			found = value
			field = key.String()
			return false
		}
		return true
	})
	if !found.Exists() {
		return []json.RawMessage{}
	}

	n.logger.Warn("response list found in non-standard field",
		zap.String("field", field),
		zap.Int("records", len(found.Array())))
	return elements(found)
}

func elements(arr gjson.Result) []json.RawMessage {
	out := []json.RawMessage{}
	arr.ForEach(func(_, value gjson.Result) bool {
		out = append(out, json.RawMessage(value.Raw))
		return true
	})
	return out
}

// List extracts the records of body and decodes each one into T.
// Extraction itself never fails; an error means a record did not match T.
func List[T any](n *Normalizer, body []byte) ([]T, error) {
	raw := n.Items(body)
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

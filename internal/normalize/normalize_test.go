package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ids(t *testing.T, items []json.RawMessage) []string {
	t.Helper()
	out := make([]string, 0, len(items))
	for _, item := range items {
		var rec struct {
			ID string `json:"_id"`
		}
		require.NoError(t, json.Unmarshal(item, &rec))
		out = append(out, rec.ID)
	}
	return out
}

func TestItemsEnvelopeShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"bare array", `[{"_id":"a"},{"_id":"b"}]`, []string{"a", "b"}},
		{"items", `{"items":[{"_id":"a"}],"total":1}`, []string{"a"}},
		{"data array", `{"ok":true,"data":[{"_id":"a"},{"_id":"b"}]}`, []string{"a", "b"}},
		{"data items", `{"ok":true,"data":{"items":[{"_id":"a"},{"_id":"b"}]}}`, []string{"a", "b"}},
		{"results", `{"count":2,"results":[{"_id":"x"},{"_id":"y"}]}`, []string{"x", "y"}},
		{"items wins over data", `{"data":[{"_id":"d"}],"items":[{"_id":"i"}]}`, []string{"i"}},
		{"data wins over results", `{"results":[{"_id":"r"}],"data":[{"_id":"d"}]}`, []string{"d"}},
		{"first array field", `{"meta":{"page":1},"products":[{"_id":"p"}],"other":[{"_id":"o"}]}`, []string{"p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Items([]byte(tt.body))
			assert.Equal(t, tt.want, ids(t, got))
		})
	}
}

func TestItemsEmptyResults(t *testing.T) {
	for _, body := range []string{
		``,
		`null`,
		`42`,
		`"text"`,
		`true`,
		`{}`,
		`{"ok":true,"data":{"total":0}}`,
		`{"ok":false,"message":"boom"}`,
		`not json`,
		`{"items":`,
	} {
		got := Items([]byte(body))
		require.NotNil(t, got, "body %q", body)
		assert.Empty(t, got, "body %q", body)
	}
}

func TestItemsPreservesSequence(t *testing.T) {
	body := `[3,"two",{"_id":"one"},[0]]`
	got := Items([]byte(body))
	require.Len(t, got, 4)
	assert.JSONEq(t, `3`, string(got[0]))
	assert.JSONEq(t, `"two"`, string(got[1]))
	assert.JSONEq(t, `{"_id":"one"}`, string(got[2]))
	assert.JSONEq(t, `[0]`, string(got[3]))
}

func TestItemsLogsFallbackField(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := New(zap.New(core))

	got := n.Items([]byte(`{"page":1,"brands":[{"_id":"b1"}]}`))
	assert.Equal(t, []string{"b1"}, ids(t, got))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "brands", entries[0].ContextMap()["field"])

	n.Items([]byte(`{"data":{"items":[]}}`))
	assert.Len(t, logs.All(), 1, "designated fields must not be reported")
}

func TestList(t *testing.T) {
	type rec struct {
		ID    string  `json:"_id"`
		Price float64 `json:"price"`
	}

	got, err := List[rec](nil, []byte(`{"ok":true,"data":{"items":[{"_id":"a","price":10},{"_id":"b","price":2.5}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []rec{{"a", 10}, {"b", 2.5}}, got)

	got, err = List[rec](nil, []byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = List[rec](nil, []byte(`[{"_id":1}]`))
	assert.Error(t, err)
}

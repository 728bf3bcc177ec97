package figure

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_AcceptedShapes(t *testing.T) {
	cases := map[string]any{
		"figure pointer": &Figure{Data: []Trace{{Type: "bar", Attrs: map[string]any{"x": []any{1.0, 2.0}}}}},
		"figure value":   Figure{Data: []Trace{{Type: "bar"}}},
		"trace":          Trace{Type: "bar"},
		"trace slice":    []Trace{{Type: "bar"}},
		"figure map":     map[string]any{"data": []any{map[string]any{"type": "bar"}}, "layout": map[string]any{}},
		"trace map":      map[string]any{"type": "bar", "x": []any{1, 2}},
		"map slice":      []map[string]any{{"type": "bar"}},
		"json bytes":     []byte(`{"data":[{"type":"bar"}]}`),
		"json array":     json.RawMessage(`[{"type":"bar"}]`),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Convert(in)
			require.NoError(t, err)
			require.Len(t, f.Data, 1)
			assert.Equal(t, "bar", f.Data[0].Type)
		})
	}
}

func TestConvert_DefaultsTraceType(t *testing.T) {
	f, err := Convert(map[string]any{"x": []any{1, 2}, "y": []any{3, 4}})
	require.NoError(t, err)
	assert.Equal(t, DefaultTraceType, f.Data[0].Type)
}

func TestConvert_EmptyFigure(t *testing.T) {
	f, err := Convert(map[string]any{"layout": map[string]any{"title": "empty"}})
	require.NoError(t, err)
	assert.Empty(t, f.Data)
	assert.Equal(t, "empty", f.Layout.Attrs["title"])
}

func TestConvert_RejectsUnknownTraceType(t *testing.T) {
	_, err := Convert(map[string]any{"type": "sankey-ish"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %T", err)
	require.Len(t, verr.Fields, 1)
	assert.Contains(t, verr.Fields[0].Field, "Type")
}

func TestConvert_RejectsNegativeSize(t *testing.T) {
	_, err := Convert(map[string]any{
		"data":   []any{},
		"layout": map[string]any{"width": -10},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "must not be negative")
}

func TestConvert_RejectsMalformedInput(t *testing.T) {
	_, err := Convert([]byte(`{not json`))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = Convert(nil)
	assert.ErrorAs(t, err, &verr)

	_, err = Convert(42)
	var uerr *UnsupportedError
	assert.ErrorAs(t, err, &uerr)
}

func TestConvert_CopiesInput(t *testing.T) {
	in := &Figure{Data: []Trace{{Type: "bar", Attrs: map[string]any{"x": []any{1.0}}}}}
	f, err := Convert(in)
	require.NoError(t, err)

	in.Data[0].Type = "pie"
	assert.Equal(t, "bar", f.Data[0].Type)
}

func TestFigureJSON_Deterministic(t *testing.T) {
	f1, err := Convert(map[string]any{"type": "bar", "name": "s", "x": []any{1, 2}, "y": []any{3, 4}})
	require.NoError(t, err)
	f2, err := Convert(map[string]any{"y": []any{3, 4}, "x": []any{1, 2}, "name": "s", "type": "bar"})
	require.NoError(t, err)

	b1, err := f1.JSON()
	require.NoError(t, err)
	b2, err := f2.JSON()
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
	assert.JSONEq(t, `{"data":[{"type":"bar","name":"s","x":[1,2],"y":[3,4]}],"layout":{}}`, string(b1))
}

func TestFromYAML(t *testing.T) {
	f, err := FromYAML([]byte(`
data:
  - type: line
    name: revenue
    x: [1, 2, 3]
    y: [10, 20, 15]
layout:
  width: 640
  title: Revenue
`))
	require.NoError(t, err)
	require.Len(t, f.Data, 1)
	assert.Equal(t, "line", f.Data[0].Type)
	assert.Equal(t, "revenue", f.Data[0].Name)
	assert.Equal(t, 640, f.Layout.Width)
	assert.Equal(t, "Revenue", f.Layout.Attrs["title"])
}

package chart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeValue_EmptyForAbsentInput(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, []byte("null"), []byte("  null \n")} {
		v, err := DeserializeValue(raw, "id")
		require.NoError(t, err)
		assert.True(t, v.(Value).IsEmpty(), "%q", raw)
	}
}

func TestDeserializeValue_Verbatim(t *testing.T) {
	v, err := DeserializeValue([]byte(`{"selection":{"points":[{"x":1,"y":2}]}}`), "id")
	require.NoError(t, err)
	sel := v.(Value)
	require.False(t, sel.IsEmpty())
	assert.Contains(t, sel.Map(), "selection")
}

func TestDeserializeValue_Malformed(t *testing.T) {
	_, err := DeserializeValue([]byte(`{"x":`), "id")
	assert.Error(t, err)
	_, err = DeserializeValue([]byte(`{} {}`), "id")
	assert.Error(t, err)
}

func TestSerializeValue_Empty(t *testing.T) {
	s, err := SerializeValue(Empty())
	require.NoError(t, err)
	assert.Equal(t, "{}", s)
}

func TestSerializeValue_RoundTrip(t *testing.T) {
	raw := []byte(`{"selection":{"box":[],"points":[{"curve_number":0,"x":1.5,"y":"b"}]}}`)
	v, err := DeserializeValue(raw, "id")
	require.NoError(t, err)

	s, err := SerializeValue(v)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), s)

	back, err := DeserializeValue([]byte(s), "id")
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestSerializeValue_FallsBackToString(t *testing.T) {
	payload := map[string]any{
		"ok":    1,
		"fn":    func() {},
		"nan":   math.NaN(),
		"cplx":  complex(1, 2),
		"inner": []any{make(chan int)},
	}
	s, err := SerializeValue(Selection(payload))
	require.NoError(t, err)
	assert.Contains(t, s, `"ok":1`)
	assert.Contains(t, s, `"nan":"NaN"`)
	assert.Contains(t, s, `"cplx":"(1+2i)"`)
}

func TestSelection_GoNumbersComeBackAsJSONNumber(t *testing.T) {
	s, err := SerializeValue(Selection(map[string]any{"x": 1.5}))
	require.NoError(t, err)

	back, err := DeserializeValue([]byte(s), "id")
	require.NoError(t, err)
	x := back.(Value).Map()["x"]
	require.IsType(t, json.Number(""), x)
	f, err := x.(json.Number).Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)
}

func TestSelection_NilIsEmpty(t *testing.T) {
	v := Selection(nil)
	assert.True(t, v.IsEmpty())

	s, err := SerializeValue(v)
	require.NoError(t, err)
	assert.Equal(t, "{}", s)
}

func TestValue_MapOnNonObject(t *testing.T) {
	assert.Empty(t, Empty().Map())
	assert.Empty(t, Selection([]any{1}).Map())
}

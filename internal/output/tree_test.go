package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_OrderAndHandles(t *testing.T) {
	tr := NewTree()
	h1 := tr.Enqueue("markdown", "hello")
	h2 := tr.Enqueue("chart", map[string]any{"id": "a"})

	assert.Equal(t, 0, h1.Index())
	assert.Equal(t, 1, h2.Index())
	assert.True(t, h2.Valid())
	assert.False(t, Handle{}.Valid())

	els := tr.Elements()
	require.Len(t, els, 2)
	assert.Equal(t, "markdown", els[0].Type)
	assert.Equal(t, "chart", els[1].Type)
}

func TestTree_Replace(t *testing.T) {
	tr := NewTree()
	h := tr.Enqueue("chart", "v1")
	require.NoError(t, h.Replace("v2"))
	assert.Equal(t, "v2", tr.Elements()[0].Payload)

	other := NewTree()
	assert.ErrorIs(t, other.Replace(h, "x"), ErrStaleHandle)
	assert.ErrorIs(t, Handle{}.Replace("x"), ErrStaleHandle)
}

func TestTree_JSON(t *testing.T) {
	tr := NewTree()
	tr.Enqueue("chart", map[string]any{"id": "a"})
	b, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"chart","payload":{"id":"a"}}]`, string(b))
}

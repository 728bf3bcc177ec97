package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedURL(t *testing.T) {
	cases := map[string]string{
		"https://host/abc?x=1":          "https://host/abc.embed?x=1",
		"https://host/~user/12":         "https://host/~user/12.embed",
		"https://host/~user/12#frag":    "https://host/~user/12.embed#frag",
		"http://host:8080/a/b/?q=a&r=b": "http://host:8080/a/b/.embed?q=a&r=b",
		"https://host":                  "https://host/.embed",
	}
	for in, want := range cases {
		got, err := EmbedURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestEmbedURL_Malformed(t *testing.T) {
	_, err := EmbedURL("http://[::1")
	assert.Error(t, err)
}

func TestKey_IgnoresWhitespaceAndOrder(t *testing.T) {
	a, err := Key([]byte(`{"data":[],"layout":{"a":1,"b":2}}`), Options{Sharing: "secret"})
	require.NoError(t, err)
	b, err := Key([]byte(`{ "layout": {"b":2, "a":1}, "data": [] }`), Options{Sharing: "secret"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Key([]byte(`{"data":[],"layout":{"a":1,"b":2}}`), Options{Sharing: "public"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

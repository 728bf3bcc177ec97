package publish

import (
	"fmt"
	"net/url"
)

// EmbedURL turns a hosted chart URL into its embeddable form by suffixing
// the path with ".embed".  Scheme, host, query, and fragment are kept.
//
//	https://host/~u/12?x=1  →  https://host/~u/12.embed?x=1
func EmbedURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("embed url: %w", err)
	}
	u.Path += ".embed"
	if u.RawPath != "" {
		u.RawPath += ".embed"
	}
	return u.String(), nil
}

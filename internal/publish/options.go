package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Options are the publish settings that affect the hosted document.  Two
// publishes with equal figure content and equal Options share a URL.
type Options struct {
	Sharing  string         `json:"sharing"`
	Filename string         `json:"filename,omitempty"`
	AutoOpen bool           `json:"auto_open"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Key returns the content hash identifying (figure, opts).  encoding/json
// writes map keys sorted, so equal inputs hash equally.
func Key(figure []byte, opts Options) (string, error) {
	canon, err := canonicalFigure(figure)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(struct {
		Figure  any     `json:"figure"`
		Options Options `json:"options"`
	}{canon, opts})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalFigure re-encodes figure so whitespace and key order do not
// change the hash.
func canonicalFigure(figure []byte) (any, error) {
	if len(figure) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(figure, &v); err != nil {
		return nil, err
	}
	return v, nil
}

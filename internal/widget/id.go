package widget

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
)

// generatedIDPrefix marks ids derived from element content.
const generatedIDPrefix = "$$WIDGET"

// ComputeID derives a stable widget identity from the element type, the
// element's serialized content, and the caller's key.  The same three inputs
// always produce the same id; changing any of them produces a new one.
func ComputeID(elementType string, content []byte, userKey string) string {
	h := sha256.New()
	writeField(h, []byte(elementType))
	writeField(h, content)
	writeField(h, []byte(userKey))
	return generatedIDPrefix + "-" + hex.EncodeToString(h.Sum(nil)) + "-" + userKey
}

// writeField length-prefixes b so ("ab","c") and ("a","bc") hash apart.
func writeField(w io.Writer, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(b)
}

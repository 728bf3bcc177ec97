// internal/figure/figure.go
//
// Chart figure model.
//
// Context
//   A Figure is the library-neutral description handed to the chart host:
//   a list of traces, a layout, and optional animation frames.  Only a small
//   typed head is modelled per trace and layout (enough to validate and
//   route); every other attribute is carried verbatim in Attrs so the
//   remote rendering surface sees exactly what the application produced.
//
// Workflow
//   •  Convert (convert.go) normalises the accepted input shapes into a
//      *Figure and validates it.
//   •  JSON encodes the figure with sorted keys, so identical figures always
//      produce identical bytes.  Widget identity and the publish cache key
//      both depend on that.
//
//------------------------------------------------------------------------------

package figure

import (
	"encoding/json"
)

// Figure is one chart document.
type Figure struct {
	Data   []Trace          `json:"data"   validate:"dive"`
	Layout Layout           `json:"layout"`
	Frames []map[string]any `json:"frames,omitempty"`
}

// Trace is a single data series.  Type is one of KnownTraceTypes and is
// defaulted to "scatter" by Convert when absent.
type Trace struct {
	Type  string `validate:"required,tracetype"`
	Name  string
	Mode  string
	Attrs map[string]any
}

// Layout carries figure-level presentation.  Width and Height are pixels;
// zero means "let the surface decide".
type Layout struct {
	Width  int `validate:"gte=0"`
	Height int `validate:"gte=0"`
	Attrs  map[string]any
}

// KnownTraceTypes lists the trace kinds the rendering surface accepts.
var KnownTraceTypes = map[string]bool{
	"scatter":   true,
	"scattergl": true,
	"bar":       true,
	"line":      true,
	"pie":       true,
	"histogram": true,
	"heatmap":   true,
	"box":       true,
	"area":      true,
}

// JSON returns the canonical encoding of f.
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// -----------------------------------------------------------------------------
// JSON codecs (typed head + verbatim attributes)
// -----------------------------------------------------------------------------

// MarshalJSON flattens the typed head into Attrs.
func (t Trace) MarshalJSON() ([]byte, error) {
	m := cloneAttrs(t.Attrs)
	m["type"] = t.Type
	if t.Name != "" {
		m["name"] = t.Name
	}
	if t.Mode != "" {
		m["mode"] = t.Mode
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits known keys out of the attribute map.
func (t *Trace) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	t.Type, _ = m["type"].(string)
	t.Name, _ = m["name"].(string)
	t.Mode, _ = m["mode"].(string)
	delete(m, "type")
	delete(m, "name")
	delete(m, "mode")
	t.Attrs = m
	return nil
}

// MarshalJSON flattens Width and Height into Attrs.
func (l Layout) MarshalJSON() ([]byte, error) {
	m := cloneAttrs(l.Attrs)
	if l.Width != 0 {
		m["width"] = l.Width
	}
	if l.Height != 0 {
		m["height"] = l.Height
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits width and height out of the attribute map.
func (l *Layout) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	l.Width = intAttr(m["width"])
	l.Height = intAttr(m["height"])
	delete(m, "width")
	delete(m, "height")
	l.Attrs = m
	return nil
}

func cloneAttrs(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+3)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// intAttr accepts the float64 that encoding/json produces for numbers.
// Negative values survive so validation can reject them.
func intAttr(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

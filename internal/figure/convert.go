// internal/figure/convert.go
//
// Figure-to-spec conversion.
//
// Context
//   Application code hands the chart host whatever shape is most natural:
//   a *Figure, a bare trace or list of traces, a decoded JSON/YAML map with
//   "data" and "layout" keys, or raw JSON bytes.  Convert normalises all of
//   them into a validated *Figure.  Malformed input returns *ValidationError
//   (or *UnsupportedError for an unknown Go type) and never a partial figure.
//
//------------------------------------------------------------------------------

package figure

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultTraceType is applied to traces that omit "type".
const DefaultTraceType = "scatter"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("tracetype", func(fl validator.FieldLevel) bool {
		return KnownTraceTypes[fl.Field().String()]
	})
	return v
}

// FieldError names one offending field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct{ Fields []FieldError }

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid figure"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid figure: " + strings.Join(parts, "; ")
}

// UnsupportedError is returned for Go values Convert does not understand.
type UnsupportedError struct{ Value any }

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported figure or data type %T", e.Value)
}

// Convert normalises figureOrData into a validated *Figure.  The returned
// figure is always a fresh copy; callers may keep mutating their input.
func Convert(figureOrData any) (*Figure, error) {
	f, err := normalise(figureOrData)
	if err != nil {
		return nil, err
	}
	if f.Data == nil {
		f.Data = []Trace{}
	}
	for i := range f.Data {
		if f.Data[i].Type == "" {
			f.Data[i].Type = DefaultTraceType
		}
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// FromYAML decodes a YAML chart description and converts it.
func FromYAML(raw []byte) (*Figure, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "document", Message: err.Error()}}}
	}
	return Convert(doc)
}

// Validate runs struct validation and translates failures into
// *ValidationError.
func Validate(f *Figure) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Namespace(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "tracetype":
		return fmt.Sprintf("unknown trace type %q", fe.Value())
	case "gte":
		return "must not be negative"
	default:
		return "failed " + fe.Tag()
	}
}

// -----------------------------------------------------------------------------
// Shape normalisation
// -----------------------------------------------------------------------------

func normalise(in any) (*Figure, error) {
	switch v := in.(type) {
	case nil:
		return nil, &ValidationError{Fields: []FieldError{{Field: "figure", Message: "is required"}}}
	case *Figure:
		if v == nil {
			return nil, &ValidationError{Fields: []FieldError{{Field: "figure", Message: "is required"}}}
		}
		return viaJSON(v)
	case Figure:
		return viaJSON(&v)
	case Trace:
		return viaJSON(&Figure{Data: []Trace{v}})
	case []Trace:
		return viaJSON(&Figure{Data: v})
	case json.RawMessage:
		return fromBytes(v)
	case []byte:
		return fromBytes(v)
	case map[string]any:
		return fromMap(v)
	case []map[string]any:
		return viaJSON(map[string]any{"data": v})
	case []any:
		return viaJSON(map[string]any{"data": v})
	default:
		return nil, &UnsupportedError{Value: in}
	}
}

// fromMap treats a map with a "data" key as a full figure and anything else
// as a single trace.
func fromMap(m map[string]any) (*Figure, error) {
	if _, ok := m["data"]; ok {
		return viaJSON(m)
	}
	if _, ok := m["layout"]; ok {
		return viaJSON(m)
	}
	return viaJSON(map[string]any{"data": []any{m}})
}

func fromBytes(b []byte) (*Figure, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "document", Message: err.Error()}}}
	}
	switch d := doc.(type) {
	case map[string]any:
		return fromMap(d)
	case []any:
		return viaJSON(map[string]any{"data": d})
	default:
		return nil, &ValidationError{Fields: []FieldError{{Field: "document", Message: "must be an object or an array"}}}
	}
}

// viaJSON round-trips through encoding/json, which both deep-copies the
// input and applies the Trace/Layout codecs.
func viaJSON(in any) (*Figure, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "figure", Message: err.Error()}}}
	}
	var f Figure
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "figure", Message: err.Error()}}}
	}
	return &f, nil
}

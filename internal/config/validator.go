// internal/config/validator.go
//
// go-playground/validator instance with the chart host's own rules.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, so the binary never runs with
// a malformed listen address, a non-URL publish endpoint, or a negative
// cache bound.
//
// Custom rules
// ------------
//   • `secretref` – a `vault:` API key must name `<mount>/<path>#<key>`;
//     plain keys pass untouched.
//   • Publish (struct level) – credentials without an endpoint are a
//     deployment mistake, not an inline-only setup.

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const vaultPrefix = "vault:"

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("secretref", secretRef)
	val.RegisterStructValidation(publishRules, Publish{})
	return val
}

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

func secretRef(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !strings.HasPrefix(s, vaultPrefix) {
		return true
	}
	body := strings.TrimPrefix(s, vaultPrefix)
	i := strings.LastIndexByte(body, '#')
	if i <= 0 || i == len(body)-1 {
		return false
	}
	mount, rest, ok := strings.Cut(body[:i], "/")
	return ok && mount != "" && rest != ""
}

func publishRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(Publish)
	if p.Endpoint == "" && p.APIKey != "" {
		sl.ReportError(p.Endpoint, "Endpoint", "endpoint", "required_with_api_key", "")
	}
}

package chart

import (
	"fmt"
	"strings"
)

// SharingMode says where the figure document lives.  Inline embeds it in
// the element; the other modes publish it to the chart host first.
type SharingMode string

const (
	SharingInline  SharingMode = "inline"
	SharingPrivate SharingMode = "private"
	SharingPublic  SharingMode = "public"
	SharingSecret  SharingMode = "secret"
)

// ParseSharingMode lower-cases s and checks it against the closed set.
// The empty string means inline.
func ParseSharingMode(s string) (SharingMode, error) {
	m := SharingMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return SharingInline, nil
	case SharingInline, SharingPrivate, SharingPublic, SharingSecret:
		return m, nil
	}
	return "", &ConfigurationError{
		Field: "sharing",
		Msg:   fmt.Sprintf("invalid sharing mode %q, expected inline, private, public, or secret", s),
	}
}

// Hosted reports whether the mode requires publishing.
func (m SharingMode) Hosted() bool { return m != SharingInline && m != "" }

// Theme selects the styling applied by the surface.
type Theme string

const (
	ThemeStreamlit Theme = "streamlit"
	ThemeNone      Theme = ""
)

func (t Theme) validate() error {
	switch t {
	case ThemeStreamlit, ThemeNone:
		return nil
	}
	return &ConfigurationError{
		Field: "theme",
		Msg:   fmt.Sprintf("invalid theme %q, expected %q or none", string(t), string(ThemeStreamlit)),
	}
}

// Options are the per-call render settings.  The zero value renders inline
// with no theme and selection disabled; DefaultOptions applies the host
// theme.
type Options struct {
	UseContainerWidth bool
	Sharing           SharingMode
	Theme             Theme
	Key               string

	// OnSelect is nil, a bool, "rerun", "ignore", or a handler.  See
	// ResolveSelectionMode.
	OnSelect any

	// Config is passed through to the surface.  showLink and linkText
	// are filled from ShowLink and LinkText when absent.
	Config   map[string]any
	ShowLink bool
	LinkText string

	// Filename and PublishExtra only matter for hosted sharing modes.
	Filename     string
	PublishExtra map[string]any
}

// DefaultOptions returns inline sharing with the host theme.
func DefaultOptions() Options {
	return Options{Sharing: SharingInline, Theme: ThemeStreamlit}
}

// surfaceConfig copies Config and fills the link defaults.
func (o Options) surfaceConfig() map[string]any {
	cfg := make(map[string]any, len(o.Config)+2)
	for k, v := range o.Config {
		cfg[k] = v
	}
	if _, ok := cfg["showLink"]; !ok {
		cfg["showLink"] = o.ShowLink
	}
	if _, ok := cfg["linkText"]; !ok {
		if o.LinkText != "" {
			cfg["linkText"] = o.LinkText
		} else {
			cfg["linkText"] = false
		}
	}
	return cfg
}

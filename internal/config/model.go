// internal/config/model.go
//
// Typed configuration model for the chart host.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `CHARTS_`-prefixed environment overrides – highest precedence.
//
// A `Publish.APIKey` whose string begins with `vault:` is a reference of the
// form `vault:<mount>/<path>#<key>`.  cmd/web resolves it through the Vault
// client after Load returns, so the secret never lives in YAML or git.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Durations are parsed by koanf's mapstructure hook ("30s", "5m").

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Publish section
//

// Publish configures the external chart-hosting service used for every
// sharing mode other than inline.  Endpoint may be empty, in which case
// non-inline charts fail with a publish error at render time.
type Publish struct {
	Endpoint string        `koanf:"endpoint" validate:"omitempty,url"`
	Username string        `koanf:"username"`
	APIKey   string        `koanf:"api_key"  validate:"omitempty,secretref"`
	Timeout  time.Duration `koanf:"timeout"  validate:"gte=0"`
	Retries  int           `koanf:"retries"  validate:"gte=0,lte=10"`
}

//
// Cache section
//

// Cache bounds the process-wide publish memo.  MaxEntries 0 keeps every
// entry for the lifetime of the process.
type Cache struct {
	MaxEntries int `koanf:"max_entries" validate:"gte=0"`
}

//
// Database section
//

// Database holds the optional publish-ledger DSN.  When empty the ledger is
// disabled and the publish cache is memory-only.
type Database struct {
	LedgerDSN string `koanf:"ledger_dsn"`
}

//
// Session section
//

// Session tunes per-browser session lifetime and CSRF signing.
type Session struct {
	IdleTTL time.Duration `koanf:"idle_ttl" validate:"gte=0"`
	CSRFKey string        `koanf:"csrf_key"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime.  The loader discovers `Root` (repo root or
// CHARTS_ROOT override) so later code can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Publish  Publish  `koanf:"publish"`
	Cache    Cache    `koanf:"cache"`
	Database Database `koanf:"database"`
	Session  Session  `koanf:"session"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills zero values that have a sensible non-zero default.
func applyDefaults(c *Config) {
	if c.Publish.Timeout == 0 {
		c.Publish.Timeout = 30 * time.Second
	}
	if c.Session.IdleTTL == 0 {
		c.Session.IdleTTL = 30 * time.Minute
	}
}

// internal/config/model.go
//
// Typed configuration model for adept-rest.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `ADEPT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations are written as Go duration strings ("15s"); koanf's
//     default decode hook converts them.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Database section
//

// Database selects the driver and pool.
//
// The DSN *template* stays in YAML so operators can tweak host, port, or
// flags without touching Vault.  When it contains "%s" the *secret*
// (`Password`, normally a `vault:` reference) is substituted at open time.
type Database struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=mysql pgx sqlite"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	Password        string        `koanf:"password"`
	MaxOpen         int           `koanf:"max_open"          validate:"gte=0"`
	MaxIdle         int           `koanf:"max_idle"          validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
}

//
// Pagination section
//

// Pagination is the default list policy applied to every resource that
// does not set its own.
type Pagination struct {
	Prefix       string   `koanf:"prefix"`
	DefaultLimit uint64   `koanf:"default_limit" validate:"required,gt=0"`
	Policy       string   `koanf:"policy"        validate:"omitempty,oneof=default any choices static"`
	Choices      []uint64 `koanf:"choices"       validate:"required_if=Policy choices,dive,gt=0"`
	Static       uint64   `koanf:"static"        validate:"required_if=Policy static"`
}

//
// Log section
//

// Log controls the zap logger.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

//
// Telemetry section
//

// Telemetry controls the OpenTelemetry tracer provider.
type Telemetry struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name" validate:"required_if=Enabled true"`
	Output      string `koanf:"output"` // file path; empty means stdout
}

//
// GeoIP section
//

// GeoIP points at an optional MaxMind country database.
type GeoIP struct {
	CountryDB string `koanf:"country_db"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // ADEPT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP       HTTP       `koanf:"http"`
	Database   Database   `koanf:"database"`
	Pagination Pagination `koanf:"pagination"`
	Log        Log        `koanf:"log"`
	Telemetry  Telemetry  `koanf:"telemetry"`
	GeoIP      GeoIP      `koanf:"geoip"`
	Paths      Paths      `koanf:"-"`
}

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves an environment variable. os.LookupEnv is the usual one;
// tests pass a map lookup.
type LookupFunc func(key string) (string, bool)

// MapLookup adapts a map to a LookupFunc.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Load reads the configuration from the process environment, applies
// defaults and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit variable source.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := Populate(cfg, lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Populate fills the tagged fields of the struct pointed to by dst, nested
// structs included. Any section can be loaded on its own, which the
// command-line converter uses for ReferenceConfig. Every bad value is
// reported, not just the first.
func Populate(dst any, lookup LookupFunc) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("populate: want pointer to struct, got %T", dst)
	}
	var errs []error
	populate(v.Elem(), lookup, &errs)
	return errors.Join(errs...)
}

var durationType = reflect.TypeOf(time.Duration(0))

func populate(v reflect.Value, lookup LookupFunc, errs *[]error) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			populate(fv, lookup, errs)
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		value, ok := resolve(lookup, name, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				*errs = append(*errs, fmt.Errorf("required environment variable %s is not set", name))
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}
		if err := setField(fv, value); err != nil {
			*errs = append(*errs, fmt.Errorf("invalid value for %s=%q: %w", name, value, err))
		}
	}
}

// resolve returns the first non-empty value of name or alt.
func resolve(lookup LookupFunc, name, alt string) (string, bool) {
	if v, ok := lookup(name); ok && v != "" {
		return v, true
	}
	if alt != "" {
		if v, ok := lookup(alt); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// setField parses value into field according to the field's type.
func setField(field reflect.Value, value string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(value)
	case field.CanInt():
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		field.Set(reflect.ValueOf(splitList(value)))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems collects validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p *problems) positive(d time.Duration, name string) {
	p.check(d > 0, "%s must be positive", name)
}

// Validate checks that the configuration is usable and reports every
// problem in one error.
func (c *Config) Validate() error {
	var p problems

	p.check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.positive(c.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")

	p.validateReference(&c.Reference)

	p.check(c.Upload.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(c.Upload.MaxConcurrent > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.positive(c.Upload.MaxWaitTime, "UPLOAD_MAX_WAIT_TIME")
	p.positive(c.Upload.Timeout, "UPLOAD_TIMEOUT")
	p.positive(c.Upload.SessionTTL, "SESSION_TTL")
	p.positive(c.Upload.SweepInterval, "SESSION_SWEEP_INTERVAL")
	p.check(c.Upload.PreviewRows > 0, "PREVIEW_ROWS must be positive")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.UploadLimit > 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

func (p *problems) validateReference(r *ReferenceConfig) {
	switch r.ReferenceSource() {
	case "csv":
		p.check(r.Dir != "", "REFERENCE_DIR is required when REFERENCE_SOURCE is csv")
	case "postgres":
		p.check(r.DatabaseURL != "", "DATABASE_URL is required when REFERENCE_SOURCE is postgres")
		p.check(r.MaxConns > 0, "DB_MAX_CONNS must be positive")
	case "sqlite":
		p.check(r.SQLitePath != "", "SQLITE_PATH is required when REFERENCE_SOURCE is sqlite")
	case "none":
	default:
		p.check(false, "REFERENCE_SOURCE (%q) must be one of: csv, postgres, sqlite, none", r.Source)
	}
	p.positive(r.LoadTimeout, "REFERENCE_LOAD_TIMEOUT")
}

// String renders the config for startup logs with the database URL and
// API keys masked.
func (c *Config) String() string {
	dbURL := ""
	if c.Reference.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}
	return fmt.Sprintf("Config{Server: {Addr: %q}, "+
		"Reference: {Source: %q, Dir: %q, DatabaseURL: %s, SQLitePath: %q}, "+
		"Upload: {MaxFileSize: %d, MaxConcurrent: %d, SessionTTL: %s}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d}, "+
		"Security: {RequireAPIKey: %v, APIKeys: %d}, "+
		"Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(),
		c.Reference.Source, c.Reference.Dir, dbURL, c.Reference.SQLitePath,
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.SessionTTL,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		c.Security.RequireAPIKey, len(c.Security.APIKeys),
		c.Logging.Level, c.Logging.Format)
}

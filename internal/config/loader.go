package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), defaultValue); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), envValue); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file leave cfg unchanged.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// valueSource returns the raw value for a field and the name to report in errors.
type valueSource func(field reflect.StructField) (value, name string)

func defaultValue(field reflect.StructField) (string, string) {
	return field.Tag.Get("default"), field.Name
}

// envValue tries the primary env var, then the alternate.
func envValue(field reflect.StructField) (string, string) {
	envName := field.Tag.Get("env")
	if envName == "" {
		return "", ""
	}
	value := os.Getenv(envName)
	if value == "" {
		if alt := field.Tag.Get("envAlt"); alt != "" {
			value = os.Getenv(alt)
		}
	}
	return value, envName
}

// loadStruct recursively sets every field src has a non-empty value for.
func loadStruct(v reflect.Value, src valueSource) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, src); err != nil {
				return err
			}
			continue
		}

		value, name := src(field)
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	errs := c.problems()
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidateForApply additionally requires database connection settings.
func (c *Config) ValidateForApply() error {
	errs := c.problems()
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required for apply")
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) problems() []string {
	var errs []string

	// Source and output
	if c.Source.Dir == "" {
		errs = append(errs, "MIGRATE_SOURCE_DIR must not be empty")
	}
	if c.Output.SQLFile == "" {
		errs = append(errs, "MIGRATE_SQL_FILE must not be empty")
	}
	if !c.Output.SkipManifest && c.Output.ManifestFile == "" {
		errs = append(errs, "MIGRATE_MANIFEST_FILE must not be empty unless MIGRATE_SKIP_MANIFEST is set")
	}

	// Database validation
	switch strings.ToLower(c.Database.Driver) {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER (%q) must be one of: mysql, postgres", c.Database.Driver))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.BatchSize <= 0 {
		errs = append(errs, "DB_BATCH_SIZE must be positive")
	}
	if c.Database.ConnectTimeout <= 0 {
		errs = append(errs, "DB_CONNECT_TIMEOUT must be positive")
	}

	// Migration validation
	if c.Migration.Langcode == "" {
		errs = append(errs, "MIGRATE_LANGCODE must not be empty")
	}
	if c.Migration.NodeType == "" {
		errs = append(errs, "MIGRATE_NODE_TYPE must not be empty")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	return errs
}

// String returns a safe string representation of the config for logging.
// The database password is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Source: {Dir: %q}, ", c.Source.Dir))
	b.WriteString(fmt.Sprintf("Output: {Dir: %q, SQLFile: %q, ManifestFile: %q, SkipManifest: %v}, ",
		c.Output.Dir, c.Output.SQLFile, c.Output.ManifestFile, c.Output.SkipManifest))
	b.WriteString(fmt.Sprintf("Database: {Driver: %q, URL: %s, MaxConns: %d, BatchSize: %d}, ",
		c.Database.Driver, maskURL(c.Database.URL), c.Database.MaxConns, c.Database.BatchSize))
	b.WriteString(fmt.Sprintf("Migration: {Langcode: %q, NodeType: %q}, ",
		c.Migration.Langcode, c.Migration.NodeType))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func maskURL(raw string) string {
	if raw == "" {
		return `""`
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		return u.String()
	}
	return "[MASKED]"
}

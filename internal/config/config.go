// Package config provides centralized configuration management for the
// migrator. Settings come from built-in defaults, an optional YAML file and
// environment variables, in increasing order of precedence; command-line
// flags are applied last by the CLI.
package config

import "time"

// Config holds all migrator configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Output    OutputConfig    `yaml:"output"`
	Database  DatabaseConfig  `yaml:"database"`
	Migration MigrationConfig `yaml:"migration"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourceConfig locates the Fedora CSV exports.
type SourceConfig struct {
	// Dir holds users.csv, files.csv, media.csv, media_revisions.csv and nodes.csv (default: .)
	Dir string `env:"MIGRATE_SOURCE_DIR" default:"." yaml:"dir"`
}

// OutputConfig holds settings for `migrate generate`.
type OutputConfig struct {
	// Dir is where the script and manifest are written (default: .)
	Dir string `env:"MIGRATE_OUTPUT_DIR" default:"." yaml:"dir"`

	// SQLFile is the script name inside Dir (default: migrate.sql)
	SQLFile string `env:"MIGRATE_SQL_FILE" default:"migrate.sql" yaml:"sql_file"`

	// ManifestFile is the manifest name inside Dir (default: migrate_manifest.json)
	ManifestFile string `env:"MIGRATE_MANIFEST_FILE" default:"migrate_manifest.json" yaml:"manifest_file"`

	// SkipManifest disables the JSON manifest (default: false)
	SkipManifest bool `env:"MIGRATE_SKIP_MANIFEST" default:"false" yaml:"skip_manifest"`
}

// DatabaseConfig holds settings for `migrate apply`.
type DatabaseConfig struct {
	// Driver is mysql or postgres (default: mysql)
	Driver string `env:"DB_DRIVER" default:"mysql" yaml:"driver"`

	// URL is a go-sql-driver DSN for mysql or a connection URL for postgres.
	// Supports both DATABASE_URL and DB_URL env vars. Required for apply only.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" yaml:"url"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4" yaml:"max_conns"`

	// BatchSize is the number of rows per INSERT on mysql (default: 500)
	BatchSize int `env:"DB_BATCH_SIZE" default:"500" yaml:"batch_size"`

	// ConnectTimeout bounds connecting and pinging the database (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s" yaml:"connect_timeout"`
}

// MigrationConfig holds destination content settings.
type MigrationConfig struct {
	// Langcode is the language of migrated content (default: en)
	Langcode string `env:"MIGRATE_LANGCODE" default:"en" yaml:"langcode"`

	// NodeType is the node bundle for Fedora objects (default: islandora_object)
	NodeType string `env:"MIGRATE_NODE_TYPE" default:"islandora_object" yaml:"node_type"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info" yaml:"level"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text" yaml:"format"`
}

// Package config handles configuration for the wlog server, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the wlog server.
//
// Fields:
//   - LineAddr: bind address of the line protocol listener.
//   - HTTPAddr: bind address of the HTTP sync endpoint.
//   - GRPCAddr: bind address of the gRPC sync endpoint.
//   - DatabaseDSN: SQLite file path, or a postgres:// URL for PostgreSQL.
//   - Secret: shared secret required by HTTP and gRPC sync. Empty rejects all.
//   - QueueLimit: per-connection response queue bound; 0 is unbounded.
//   - ReadHeaderTimeout: HTTP read-header timeout.
//   - S3*: object storage for server-side backups.
type Config struct {
	LineAddr          string
	HTTPAddr          string
	GRPCAddr          string
	DatabaseDSN       string
	Secret            string
	QueueLimit        int
	ReadHeaderTimeout time.Duration
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.LineAddr = ":7878"
	c.HTTPAddr = ":8000"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = "wlog.sqlite"
	c.Secret = ""
	c.QueueLimit = 0
	c.ReadHeaderTimeout = 10 * time.Second
	c.S3Bucket = "wlog"
	c.S3Region = "us-east-1"
}

// BackupEnabled reports whether enough S3 settings are present to upload.
func (c *Config) BackupEnabled() bool {
	return c.S3BaseEndpoint != "" && c.S3Bucket != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

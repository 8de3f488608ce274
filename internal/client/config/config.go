package config

import (
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/wlog/internal/filex"
)

const appName = "wlog"

// Config holds runtime settings for the wlog CLI.
//
// Message, Date and Search describe this invocation; the rest is usually
// kept in the JSON file. A zero SyncTimeout means no deadline.
type Config struct {
	DatabaseDSN    string
	Message        string
	Date           string
	Search         string
	Remote         string
	SyncURL        string
	GRPCAddr       string
	Secret         string
	Backup         bool
	SyncTimeout    time.Duration
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults stores the log in the per-user data directory, falling back
// to the working directory when there is none.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = appName + ".sqlite"
	if dir, err := filex.DataDir(appName); err == nil {
		c.DatabaseDSN = filepath.Join(dir, appName+".sqlite")
	}
	c.SyncTimeout = 0
	c.S3Bucket = appName
	c.S3Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/wlog/internal/flagx"
	"github.com/dmitrijs2005/wlog/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept "10s" style strings or integer nanoseconds.
type JsonConfig struct {
	LineAddr          string         `json:"line_addr"`
	HTTPAddr          string         `json:"http_addr"`
	GRPCAddr          string         `json:"grpc_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	Secret            string         `json:"secret"`
	QueueLimit        *int           `json:"queue_limit"`
	ReadHeaderTimeout timex.Duration `json:"read_header_timeout"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
}

// parseJson overlays the file named by -c/-config, if any. Only fields present
// in the file replace the current values. Unreadable or invalid files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.LineAddr, c.LineAddr)
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.Secret, c.Secret)
	if c.QueueLimit != nil {
		config.QueueLimit = *c.QueueLimit
	}
	if c.ReadHeaderTimeout.Duration != 0 {
		config.ReadHeaderTimeout = c.ReadHeaderTimeout.Duration
	}
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

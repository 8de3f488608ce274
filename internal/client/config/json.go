package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/wlog/internal/flagx"
	"github.com/dmitrijs2005/wlog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	DatabaseDSN    string         `json:"database_dsn"`
	Remote         string         `json:"remote"`
	SyncURL        string         `json:"sync_url"`
	GRPCAddr       string         `json:"grpc_addr"`
	Secret         string         `json:"secret"`
	SyncTimeout    timex.Duration `json:"sync_timeout"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
}

// parseJson overlays cfg with the non-empty values of the file given by -c or
// -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&cfg.DatabaseDSN:    jc.DatabaseDSN,
		&cfg.Remote:         jc.Remote,
		&cfg.SyncURL:        jc.SyncURL,
		&cfg.GRPCAddr:       jc.GRPCAddr,
		&cfg.Secret:         jc.Secret,
		&cfg.S3AccessKey:    jc.S3AccessKey,
		&cfg.S3SecretKey:    jc.S3SecretKey,
		&cfg.S3Bucket:       jc.S3Bucket,
		&cfg.S3Region:       jc.S3Region,
		&cfg.S3BaseEndpoint: jc.S3BaseEndpoint,
	} {
		if v != "" {
			*dst = v
		}
	}
	if jc.SyncTimeout.Duration != 0 {
		cfg.SyncTimeout = jc.SyncTimeout.Duration
	}
}

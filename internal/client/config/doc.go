// Package config loads runtime configuration for the wlog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-f string   local database: SQLite path or postgres:// URL
//	-m string   message to log
//	-d string   date to read from / write into (YYYY-MM-DD)
//	-s string   substring to search for
//	-r string   host:port of a line protocol server to sync with
//	-u string   URL of an HTTP sync endpoint
//	-g string   host:port of a gRPC sync endpoint
//	-k string   shared secret for HTTP and gRPC sync
//	-b          upload a backup snapshot to S3
//
// # JSON schema
//
// Flags have JSON twins; the sync timeout and the S3 settings are JSON only.
// The timeout uses timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "database_dsn": "/home/me/.local/share/wlog/wlog.sqlite",
//	  "remote": "work:7878",
//	  "sync_url": "http://work:8000/",
//	  "secret": "k",
//	  "sync_timeout": "30s",
//	  "s3_bucket": "wlog",
//	  "s3_base_endpoint": "http://127.0.0.1:9000"
//	}
package config

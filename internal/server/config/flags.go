package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/wlog/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-l string   line protocol bind address (e.g., ":7878")
//	-a string   HTTP sync bind address (e.g., ":8000")
//	-g string   gRPC sync bind address (e.g., ":50051")
//	-d string   database DSN: SQLite path or postgres:// URL
//	-s string   shared sync secret
//	-q int      per-connection response queue limit, 0 = unbounded
//	-t int      HTTP read-header timeout, seconds
//
// S3 settings are only read from the JSON file.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-l", "-a", "-g", "-d", "-s", "-q", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.LineAddr, "l", config.LineAddr, "line protocol address and port")
	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP sync address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC sync address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Secret, "s", config.Secret, "shared sync secret")
	fs.IntVar(&config.QueueLimit, "q", config.QueueLimit, "response queue limit per connection (0 = unbounded)")

	readHeaderTimeout := fs.Int("t", int(config.ReadHeaderTimeout.Seconds()), "HTTP read header timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ReadHeaderTimeout = time.Duration(*readHeaderTimeout) * time.Second
}

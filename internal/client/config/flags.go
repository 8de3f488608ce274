package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/wlog/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. See the package
// documentation for the list.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:],
		[]string{"-f", "-m", "-d", "-s", "-r", "-u", "-g", "-k", "-b"},
		[]string{"-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "f", cfg.DatabaseDSN, "local database file or DSN")
	fs.StringVar(&cfg.Message, "m", cfg.Message, "message to log")
	fs.StringVar(&cfg.Date, "d", cfg.Date, "date to read from / write into")
	fs.StringVar(&cfg.Search, "s", cfg.Search, "message substring to search for")
	fs.StringVar(&cfg.Remote, "r", cfg.Remote, "line protocol server to sync with")
	fs.StringVar(&cfg.SyncURL, "u", cfg.SyncURL, "HTTP sync endpoint URL")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC sync endpoint address")
	fs.StringVar(&cfg.Secret, "k", cfg.Secret, "shared sync secret")
	fs.BoolVar(&cfg.Backup, "b", cfg.Backup, "upload a backup to S3")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

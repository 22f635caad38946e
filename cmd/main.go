package main

import (
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/logger"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `short:"c" type:"path" env:"WAGERPOOL_CONFIG" help:"Path to the YAML configuration file"`
	Quiet   bool             `short:"q" env:"WAGERPOOL_QUIET" help:"Only write errors to the console"`
	LogFile string           `type:"path" env:"WAGERPOOL_LOG_FILE" help:"Append logs to this file"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the pool ledger HTTP server"`
	Migrate MigrateCmd `cmd:"" help:"Create the ledger tables and open configured accounts"`
}

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred closes flush the log file
// before the process exits.
func run() int {
	// A missing .env is fine; real environment variables still apply.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("wagerpool"),
		kong.Description("Pooled-wager ledger: fixed-stake entries, operator-triggered payout"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	var logFile io.Writer = io.Discard
	if cli.LogFile != "" {
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			log.Printf("open log file: %v", err)
			return 1
		}
		logFile = f
	}
	// Close also closes the log file.
	lg := logger.Init("wagerpool", !cli.Quiet, false, logFile)
	defer lg.Close()

	if err := ctx.Run(&cli); err != nil {
		lg.Errorf("wagerpool: %v", err)
		return 1
	}
	return 0
}

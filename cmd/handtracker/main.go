package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `short:"c" default:"handtracker.hcl" help:"Path to HCL config file"`
	Debug   bool             `help:"Enable debug logging"`

	Import  ImportCmd  `cmd:"" help:"Import hand history files and report the outcome"`
	Stats   StatsCmd   `cmd:"" help:"Import hand history files and print statistics"`
	Export  ExportCmd  `cmd:"" help:"Export imported hands as PHH TOML"`
	Analyze AnalyzeCmd `cmd:"" help:"Request AI commentary for one hand"`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API"`
}

func main() {
	// .env is optional; it only seeds environment defaults for local runs.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handtracker"),
		kong.Description("Poker hand history ingestion and statistics"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

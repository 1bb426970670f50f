package main

import (
	"fmt"

	"handtracker/cmd/handtracker/shared"
)

// ImportCmd runs one batch over the given files and prints the report.
type ImportCmd struct {
	Paths    []string `arg:"" name:"files" help:"Hand history files to import"`
	User     string   `help:"Subject user the statistics describe (overrides config)"`
	Platform string   `help:"Skip platform detection and use this parser" enum:",pokerstars,ggpoker" default:""`
}

func (cmd *ImportCmd) Run(cli *CLI) error {
	a, err := setup(cli, cmd.User, false)
	if err != nil {
		return err
	}
	sources, err := loadSources(cmd.Paths, cmd.Platform)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler(a.logger)
	report, err := a.tracker.Import(ctx, sources)
	fmt.Print(renderReport(report))
	return err
}

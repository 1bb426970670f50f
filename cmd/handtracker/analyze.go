package main

import (
	"fmt"

	"handtracker/cmd/handtracker/shared"
)

// AnalyzeCmd imports the given files and requests AI commentary for one
// hand by ID.
type AnalyzeCmd struct {
	HandID   string   `arg:"" name:"hand-id" help:"Hand to analyze"`
	Paths    []string `arg:"" name:"files" help:"Hand history files to import"`
	User     string   `help:"Subject user the statistics describe (overrides config)"`
	Platform string   `help:"Skip platform detection and use this parser" enum:",pokerstars,ggpoker" default:""`
}

func (cmd *AnalyzeCmd) Run(cli *CLI) error {
	a, err := setup(cli, cmd.User, false)
	if err != nil {
		return err
	}
	sources, err := loadSources(cmd.Paths, cmd.Platform)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler(a.logger)
	if _, err := a.tracker.Import(ctx, sources); err != nil {
		return err
	}

	commentary, err := a.tracker.Analyze(ctx, cmd.HandID)
	if err != nil {
		return err
	}
	fmt.Println(commentary)
	return nil
}

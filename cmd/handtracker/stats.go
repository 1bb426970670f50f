package main

import (
	"fmt"
	"time"

	"handtracker/cmd/handtracker/shared"
	"handtracker/internal/hand"
	"handtracker/internal/stats"
)

// StatsCmd imports the given files and prints the statistics snapshot.
type StatsCmd struct {
	Paths    []string `arg:"" name:"files" help:"Hand history files to import"`
	User     string   `help:"Subject user the statistics describe (overrides config)"`
	Platform string   `help:"Skip platform detection and use this parser" enum:",pokerstars,ggpoker" default:""`

	From      string `help:"Only count hands at or after this time (RFC3339)"`
	To        string `help:"Only count hands at or before this time (RFC3339)"`
	Format    string `help:"Only count this game format" enum:",cash,tournament,sitngo" default:""`
	Stakes    string `help:"Only count this stakes level (e.g. $0.25/$0.50)"`
	Position  string `help:"Only count hands played from this position"`
	PlayMoney *bool  `help:"true for play-money hands only, false for real-money only"`
}

func (cmd *StatsCmd) Run(cli *CLI) error {
	a, err := setup(cli, cmd.User, false)
	if err != nil {
		return err
	}
	filter, err := cmd.filter()
	if err != nil {
		return err
	}
	sources, err := loadSources(cmd.Paths, cmd.Platform)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler(a.logger)
	report, err := a.tracker.Import(ctx, sources)
	if err != nil {
		return err
	}
	fmt.Print(renderReport(report))

	snapshot, err := a.tracker.Statistics(ctx, filter)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(renderStatistics(snapshot))
	return nil
}

func (cmd *StatsCmd) filter() (stats.Filter, error) {
	var filter stats.Filter
	if cmd.From != "" {
		t, err := time.Parse(time.RFC3339, cmd.From)
		if err != nil {
			return filter, fmt.Errorf("invalid --from: %w", err)
		}
		filter.From = t
	}
	if cmd.To != "" {
		t, err := time.Parse(time.RFC3339, cmd.To)
		if err != nil {
			return filter, fmt.Errorf("invalid --to: %w", err)
		}
		filter.To = t
	}
	filter.Format = hand.Format(cmd.Format)
	filter.Stakes = cmd.Stakes
	filter.Position = hand.Position(cmd.Position)
	filter.PlayMoney = cmd.PlayMoney
	return filter, filter.Validate()
}

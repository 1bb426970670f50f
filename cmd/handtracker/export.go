package main

import (
	"fmt"
	"os"
	"path/filepath"

	"handtracker/cmd/handtracker/shared"
	"handtracker/internal/fileutil"
	"handtracker/internal/phh"
)

// ExportCmd imports the given files and writes each accepted hand as a
// PHH TOML document.
type ExportCmd struct {
	Paths    []string `arg:"" name:"files" help:"Hand history files to import"`
	User     string   `help:"Subject user the statistics describe (overrides config)"`
	Platform string   `help:"Skip platform detection and use this parser" enum:",pokerstars,ggpoker" default:""`
	Out      string   `short:"o" help:"Directory for .phh files (default: stdout)"`
}

func (cmd *ExportCmd) Run(cli *CLI) error {
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
	if err != nil {
		return err
	}

	if cmd.Out != "" {
		if err := os.MkdirAll(cmd.Out, 0o755); err != nil {
			return err
		}
	}

	for i := range report.Accepted {
		h := &report.Accepted[i]
		data, err := phh.EncodeToBytes(phh.Convert(h))
		if err != nil {
			return fmt.Errorf("encoding hand %s: %w", h.ID, err)
		}
		if cmd.Out == "" {
			fmt.Printf("# hand %s\n%s\n", h.ID, data)
			continue
		}
		path := filepath.Join(cmd.Out, fmt.Sprintf("%s-%s.phh", h.Platform, h.ID))
		if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return err
		}
	}
	a.logger.Info().Int("hands", len(report.Accepted)).Str("out", cmd.Out).Msg("export complete")
	return nil
}

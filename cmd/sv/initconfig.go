package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/kraitsura/segment_viewer/pkg/config"
	"github.com/kraitsura/segment_viewer/pkg/notes"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
)

// runInitConfig asks for each setting, starting from cfg, and saves the
// answers to path.
func runInitConfig(path string, cfg config.Config) error {
	mode := cfg.Mode.String()
	debounce := strconv.Itoa(cfg.DebounceMS)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Grouping mode").
				Options(
					huh.NewOption("Combined (one hierarchy)", rowstate.Combined.String()),
					huh.NewOption("Per dimension (one hierarchy per dimension)", rowstate.PerDimension.String()),
				).
				Value(&mode),
			huh.NewInput().
				Title("Result file").
				Placeholder(".sv/result.json").
				Value(&cfg.Result),
			huh.NewConfirm().
				Title("Reload when the result file changes?").
				Value(&cfg.Watch),
			huh.NewInput().
				Title("Reload debounce (ms)").
				Value(&debounce).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative number")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notes database driver").
				Options(
					huh.NewOption("sqlite3 (cgo)", notes.DriverCgo),
					huh.NewOption("sqlite (pure Go)", notes.DriverPure),
				).
				Value(&cfg.Notes.Driver),
			huh.NewInput().
				Title("Notes database path").
				Value(&cfg.Notes.Path),
			huh.NewInput().
				Title("Note author").
				Placeholder("$USER").
				Value(&cfg.Notes.Author),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	parsed, err := rowstate.ParseGroupingMode(mode)
	if err != nil {
		return err
	}
	cfg.Mode = parsed
	cfg.DebounceMS, _ = strconv.Atoi(debounce)
	return config.Save(path, cfg)
}

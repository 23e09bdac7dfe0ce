package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kraitsura/segment_viewer/pkg/config"
	"github.com/kraitsura/segment_viewer/pkg/export"
	"github.com/kraitsura/segment_viewer/pkg/loader"
	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/notes"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
	"github.com/kraitsura/segment_viewer/pkg/ui"
	"github.com/kraitsura/segment_viewer/pkg/watcher"
)

const version = "0.1.0"

func main() {
	help := flag.Bool("help", false, "Show help")
	showVersion := flag.Bool("version", false, "Show version")
	resultFlag := flag.String("result", "", "Result file to view (JSON or YAML)")
	modeFlag := flag.String("mode", "", "Grouping mode: combined or per-dimension")
	configPath := flag.String("config", config.DefaultPath, "Config file")
	watch := flag.Bool("watch", false, "Reload when the result file changes")
	robotTree := flag.Bool("robot-tree", false, "Print the segment hierarchy as JSON and exit")
	robotSummary := flag.Bool("robot-summary", false, "Print the impact summary as JSON and exit (extra args: more result files)")
	initConfig := flag.Bool("init-config", false, "Interactively write a config file")
	exportMD := flag.String("export-md", "", "Write the full hierarchy as a Markdown report to this file and exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: sv [options] [result files...]")
		fmt.Println("\nA TUI viewer for segment driver analysis results.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("sv version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *initConfig {
		if err := runInitConfig(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		os.Exit(0)
	}

	if *modeFlag != "" {
		mode, err := rowstate.ParseGroupingMode(*modeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Mode = mode
	}
	if *watch {
		cfg.Watch = true
	}

	resultPath := resolveResultPath(*resultFlag, cfg)

	if *robotSummary {
		paths := append([]string{resultPath}, flag.Args()...)
		if err := printSummaries(os.Stdout, paths); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	result, loadErr := loader.LoadResultFromFile(resultPath)
	if *robotTree {
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Error loading result: %v\n", loadErr)
			os.Exit(1)
		}
		if err := printTree(os.Stdout, result, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *exportMD != "" {
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Error loading result: %v\n", loadErr)
			os.Exit(1)
		}
		if err := exportMarkdown(*exportMD, result, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *exportMD)
		os.Exit(0)
	}

	if loadErr != nil {
		if !cfg.Watch {
			fmt.Printf("Error loading result: %v\n", loadErr)
			fmt.Println("Pass --result <file>, or use --watch to wait for one to appear.")
			os.Exit(1)
		}
		log.Printf("Warning: %v; waiting for the file to appear", loadErr)
		result = nil
	}

	if err := runTUI(resultPath, result, cfg); err != nil {
		fmt.Printf("Error running segment viewer: %v\n", err)
		os.Exit(1)
	}
}

func resolveResultPath(flagValue string, cfg config.Config) string {
	switch {
	case flagValue != "":
		return flagValue
	case cfg.Result != "":
		return cfg.Result
	default:
		return filepath.Join(".sv", loader.DefaultResultFile)
	}
}

func exportMarkdown(path string, result *model.MetricResult, cfg config.Config) error {
	ctrl := rowstate.NewController(cfg.Mode)
	if err := ctrl.Load(result); err != nil {
		return err
	}
	opts := export.MarkdownOptions{Mode: ctrl.Mode()}
	if store := notes.TryOpen(cfg.Notes.Driver, cfg.Notes.Path, ""); store != nil {
		defer store.Close()
		var keys []string
		for _, t := range ctrl.Trees() {
			t.Walk(func(r *rowstate.RowState) bool {
				keys = append(keys, r.SerializedKey)
				return true
			})
		}
		if counts, err := store.Counts(keys); err == nil {
			opts.NoteCounts = counts
		}
	}
	return export.WriteMarkdownFile(path, result, ctrl.Trees(), opts)
}

func runTUI(resultPath string, result *model.MetricResult, cfg config.Config) error {
	ctrl := rowstate.NewController(cfg.Mode)
	if result != nil {
		if err := ctrl.Load(result); err != nil {
			return err
		}
	}

	// Log output would corrupt the alternate screen.
	if os.Getenv("SV_DEBUG") != "" {
		if err := os.MkdirAll(".sv", 0755); err != nil {
			return fmt.Errorf("create .sv directory: %w", err)
		}
		f, err := tea.LogToFile(filepath.Join(".sv", "debug.log"), "sv")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	author := cfg.Notes.Author
	if author == "" {
		author = os.Getenv("USER")
	}
	store := notes.TryOpen(cfg.Notes.Driver, cfg.Notes.Path, author)
	if store != nil {
		defer store.Close()
	}

	m := ui.NewModel(ctrl, ui.Options{Notes: store, Source: resultPath})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if cfg.Watch {
		w, err := watcher.NewResultWatcher(resultPath, cfg.Debounce(), func(r *model.MetricResult, err error) {
			p.Send(ui.ResultReloadedMsg{Result: r, Err: err})
		})
		if err != nil {
			log.Printf("Warning: live reload disabled: %v", err)
		} else {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			w.Start(ctx)
			defer w.Close()
		}
	}

	_, err := p.Run()
	return err
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/kraitsura/segment_viewer/pkg/analysis"
	"github.com/kraitsura/segment_viewer/pkg/config"
	"github.com/kraitsura/segment_viewer/pkg/loader"
	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
)

type robotNode struct {
	Key      string      `json:"key"`
	Path     []string    `json:"path"`
	Children []robotNode `json:"children,omitempty"`
}

type robotForest struct {
	Name  string      `json:"name,omitempty"`
	Nodes []robotNode `json:"nodes"`
}

type robotTree struct {
	Metric  string        `json:"metric"`
	Mode    string        `json:"mode"`
	Forests []robotForest `json:"forests"`
	Skipped []string      `json:"skipped,omitempty"`
}

// newEncoder indents output for humans and keeps it compact when piped.
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		enc.SetIndent("", "  ")
	}
	return enc
}

// buildRobotTree goes through the same controller the TUI uses, so both
// always show the same hierarchy.
func buildRobotTree(result *model.MetricResult, cfg config.Config) (robotTree, error) {
	ctrl := rowstate.NewController(cfg.Mode)
	if err := ctrl.Load(result); err != nil {
		return robotTree{}, err
	}

	out := robotTree{Metric: result.Metric, Mode: ctrl.Mode().String()}
	for _, t := range ctrl.Trees() {
		rf := robotForest{Name: t.Name, Nodes: []robotNode{}}
		for _, root := range t.Roots() {
			rf.Nodes = append(rf.Nodes, toRobotNode(root))
		}
		out.Forests = append(out.Forests, rf)
	}
	for _, err := range ctrl.Skipped() {
		out.Skipped = append(out.Skipped, err.Error())
	}
	return out, nil
}

func toRobotNode(r *rowstate.RowState) robotNode {
	rn := robotNode{Key: r.SerializedKey, Path: r.Path}
	for _, child := range r.ChildList() {
		rn.Children = append(rn.Children, toRobotNode(child))
	}
	return rn
}

func printTree(w io.Writer, result *model.MetricResult, cfg config.Config) error {
	tree, err := buildRobotTree(result, cfg)
	if err != nil {
		return fmt.Errorf("build hierarchy: %w", err)
	}
	return newEncoder(w).Encode(tree)
}

// printSummaries prints one impact summary per result file, as a single
// object for one file and an array otherwise.
func printSummaries(w io.Writer, paths []string) error {
	results, err := loader.LoadResults(context.Background(), paths)
	if err != nil {
		return err
	}
	summaries := make([]analysis.ImpactSummary, len(results))
	for i, r := range results {
		summaries[i] = analysis.Summarize(r)
		if summaries[i].MissingStats > 0 {
			log.Printf("Warning: %s: %d drivers have no statistics", paths[i], summaries[i].MissingStats)
		}
	}
	enc := newEncoder(w)
	if len(summaries) == 1 {
		return enc.Encode(summaries[0])
	}
	return enc.Encode(summaries)
}

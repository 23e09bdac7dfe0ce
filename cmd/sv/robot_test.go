package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kraitsura/segment_viewer/pkg/analysis"
	"github.com/kraitsura/segment_viewer/pkg/config"
	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
)

func TestBuildRobotTreeCombined(t *testing.T) {
	result := &model.MetricResult{
		Metric:     "revenue",
		TopDrivers: []string{"country:USA", "device:ios", "country:USA|device:ios", "oops"},
	}
	tree, err := buildRobotTree(result, config.Default())
	if err != nil {
		t.Fatalf("buildRobotTree: %v", err)
	}
	if tree.Mode != "combined" || len(tree.Forests) != 1 {
		t.Fatalf("unexpected tree: %+v", tree)
	}
	roots := tree.Forests[0].Nodes
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	for _, root := range roots {
		if len(root.Children) != 1 || root.Children[0].Key != "country:USA|device:ios" {
			t.Errorf("root %s: expected the compound replica, got %+v", root.Key, root.Children)
		}
		if len(root.Children[0].Path) != 2 || root.Children[0].Path[0] != root.Key {
			t.Errorf("child path = %v", root.Children[0].Path)
		}
	}
	if len(tree.Skipped) != 1 {
		t.Errorf("expected the malformed driver reported, got %v", tree.Skipped)
	}
}

func TestBuildRobotTreePerDimension(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = rowstate.PerDimension
	result := &model.MetricResult{
		Metric:     "revenue",
		TopDrivers: []string{"country:USA", "device:ios", "country:USA|device:ios"},
	}
	tree, err := buildRobotTree(result, cfg)
	if err != nil {
		t.Fatalf("buildRobotTree: %v", err)
	}
	if len(tree.Forests) != 2 || tree.Forests[0].Name != "country" || tree.Forests[1].Name != "device" {
		t.Fatalf("unexpected forests: %+v", tree.Forests)
	}

	var buf bytes.Buffer
	if err := printTree(&buf, result, cfg); err != nil {
		t.Fatalf("printTree: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["mode"] != "per-dimension" {
		t.Errorf("mode = %v", decoded["mode"])
	}
}

func TestBuildRobotTreeMatchesController(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = rowstate.PerDimension
	result := &model.MetricResult{
		Metric:     "revenue",
		TopDrivers: []string{"a:1", "a:1|b:2", "b:2", "a:1|b:2", "a:1|b:2|c:3", ":x"},
	}
	tree, err := buildRobotTree(result, cfg)
	if err != nil {
		t.Fatalf("buildRobotTree: %v", err)
	}

	ctrl := rowstate.NewController(cfg.Mode)
	if err := ctrl.Load(result); err != nil {
		t.Fatal(err)
	}
	ctrl.SetAll(true)
	var want []string
	for _, row := range ctrl.Visible() {
		want = append(want, row.State.SerializedKey)
	}

	var got []string
	var walk func(nodes []robotNode)
	walk = func(nodes []robotNode) {
		for _, n := range nodes {
			got = append(got, n.Key)
			walk(n.Children)
		}
	}
	for _, f := range tree.Forests {
		walk(f.Nodes)
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("robot tree %v differs from the TUI rows %v", got, want)
	}
	if len(tree.Skipped) != 1 {
		t.Errorf("expected the empty-dimension driver reported, got %v", tree.Skipped)
	}
}

func TestPrintSummaries(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	a := write("a.json", `{"metric":"revenue","top_drivers":["country:USA"],"slices":{"country:USA":{"impact":5}}}`)
	b := write("b.yaml", "metric: orders\ntop_drivers: [\"device:ios\"]\nslices:\n  device:ios:\n    impact: -2\n")

	var single bytes.Buffer
	if err := printSummaries(&single, []string{a}); err != nil {
		t.Fatalf("printSummaries: %v", err)
	}
	var one analysis.ImpactSummary
	if err := json.Unmarshal(single.Bytes(), &one); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if one.Metric != "revenue" || one.TotalImpact != 5 {
		t.Errorf("summary = %+v", one)
	}

	var multi bytes.Buffer
	if err := printSummaries(&multi, []string{a, b}); err != nil {
		t.Fatalf("printSummaries: %v", err)
	}
	var many []analysis.ImpactSummary
	if err := json.Unmarshal(multi.Bytes(), &many); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(many) != 2 || many[1].Metric != "orders" || many[1].NegativeCount != 1 {
		t.Errorf("summaries = %+v", many)
	}

	if err := printSummaries(&multi, []string{filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestResolveResultPath(t *testing.T) {
	cfg := config.Default()
	if got := resolveResultPath("x.json", cfg); got != "x.json" {
		t.Errorf("flag should win, got %s", got)
	}
	cfg.Result = "cfg.json"
	if got := resolveResultPath("", cfg); got != "cfg.json" {
		t.Errorf("config should be used, got %s", got)
	}
	cfg.Result = ""
	if got := resolveResultPath("", cfg); got != filepath.Join(".sv", "result.json") {
		t.Errorf("default = %s", got)
	}
}

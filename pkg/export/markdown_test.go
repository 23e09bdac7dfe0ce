package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
)

func loadedController(t *testing.T, mode rowstate.GroupingMode) (*rowstate.Controller, *model.MetricResult) {
	t.Helper()
	result := &model.MetricResult{
		Metric:     "revenue",
		TopDrivers: []string{"country:USA", "device:ios", "country:USA|device:ios"},
		Slices: map[string]model.DimensionSliceInfo{
			"country:USA":            {Impact: 60},
			"device:ios":             {Impact: 30},
			"country:USA|device:ios": {Impact: -20},
		},
		HasMore: map[string]bool{"device:ios": true},
	}
	c := rowstate.NewController(mode)
	if err := c.Load(result); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, result
}

func TestWriteMarkdownCombined(t *testing.T) {
	c, result := loadedController(t, rowstate.Combined)

	var buf bytes.Buffer
	err := WriteMarkdown(&buf, result, c.Trees(), MarkdownOptions{
		Mode:       c.Mode(),
		NoteCounts: map[string]int{"country:USA": 2},
	})
	if err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# revenue",
		"- Grouping: Combined",
		"| 3 | 70.00 |",
		"Largest dimension: **country**",
		"- **country = USA** (impact +60.00) ✎2\n",
		"  - country = USA AND **device = ios** (impact -20.00)\n",
		"- **device = ios** (impact +30.00) …\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
	// Under device the replica emphasizes country instead.
	if strings.Count(out, "**device = ios** (impact -20.00)") != 1 {
		t.Errorf("expected the compound under country only once with device emphasized\n%s", out)
	}
}

func TestWriteMarkdownPerDimensionAndDepth(t *testing.T) {
	c, result := loadedController(t, rowstate.PerDimension)

	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, result, c.Trees(), MarkdownOptions{Mode: c.Mode(), MaxDepth: 1}); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "### country") || !strings.Contains(out, "### device") {
		t.Errorf("expected a section per dimension\n%s", out)
	}
	if strings.Contains(out, "AND") {
		t.Errorf("MaxDepth 1 should omit children\n%s", out)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("a_b*c|d"); got != `a\_b\*c\|d` {
		t.Errorf("escapeMarkdown = %q", got)
	}
}

func TestWriteMarkdownFile(t *testing.T) {
	c, result := loadedController(t, rowstate.Combined)
	path := filepath.Join(t.TempDir(), "reports", "revenue.md")
	if err := WriteMarkdownFile(path, result, c.Trees(), MarkdownOptions{Mode: c.Mode()}); err != nil {
		t.Fatalf("WriteMarkdownFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# revenue\n") {
		t.Errorf("unexpected file contents: %q", string(data)[:20])
	}
}

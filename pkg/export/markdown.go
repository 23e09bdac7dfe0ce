// Package export writes segment hierarchies to shareable formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraitsura/segment_viewer/pkg/analysis"
	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/rowstate"
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// MarkdownOptions controls the report contents.
type MarkdownOptions struct {
	Mode       rowstate.GroupingMode
	NoteCounts map[string]int // optional, keyed by canonical key
	// MaxDepth limits nesting; 0 means unlimited.
	MaxDepth int
}

// WriteMarkdown writes a report of result with every tree fully expanded,
// regardless of UI expand state.
func WriteMarkdown(w io.Writer, result *model.MetricResult, trees []*rowstate.Tree, opts MarkdownOptions) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n\n", result.Metric)
	fmt.Fprintf(bw, "- Baseline: %s\n", result.Baseline)
	fmt.Fprintf(bw, "- Comparison: %s\n", result.Comparison)
	fmt.Fprintf(bw, "- Grouping: %s\n\n", opts.Mode.Label())

	writeSummary(bw, analysis.Summarize(result))

	bw.WriteString("## Hierarchy\n\n")
	if len(trees) == 0 {
		bw.WriteString("_No segments._\n")
	}
	for _, t := range trees {
		if t.Name != "" {
			fmt.Fprintf(bw, "### %s\n\n", t.Name)
		}
		for _, root := range t.Roots() {
			writeRow(bw, result, root, 0, opts)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func writeSummary(w *bufio.Writer, s analysis.ImpactSummary) {
	w.WriteString("## Summary\n\n")
	w.WriteString("| Drivers | Total impact | Mean | Std dev | Positive | Negative |\n")
	w.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(w, "| %d | %.2f | %.2f | %.2f | %d | %d |\n\n",
		s.DriverCount, s.TotalImpact, s.MeanImpact, s.StdDevImpact, s.PositiveCount, s.NegativeCount)
	if top, ok := s.TopDimension(); ok {
		fmt.Fprintf(w, "Largest dimension: **%s** (%d segments, %.2f absolute impact)\n\n",
			top.Dimension, top.Segments, top.AbsoluteTotal)
	}
}

func writeRow(w *bufio.Writer, result *model.MetricResult, r *rowstate.RowState, depth int, opts MarkdownOptions) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return
	}

	w.WriteString(strings.Repeat("  ", depth) + "- " + markdownLabel(r))
	if info, ok := result.SliceInfo(r.Key); ok {
		fmt.Fprintf(w, " (impact %+.2f)", info.Impact)
	}
	if n := opts.NoteCounts[r.SerializedKey]; n > 0 {
		fmt.Fprintf(w, " ✎%d", n)
	}
	if result.HasMoreChildren(r.SerializedKey) {
		w.WriteString(" …")
	}
	w.WriteString("\n")

	for _, child := range r.ChildList() {
		writeRow(w, result, child, depth+1, opts)
	}
}

// markdownLabel bolds the components a row adds to its parent.
func markdownLabel(r *rowstate.RowState) string {
	tokens := segment.Format(r.Key, r.ParentKey())
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		text := escapeMarkdown(t.String())
		if t.Kind == segment.TokenComponent && t.Emphasized {
			text = "**" + text + "**"
		}
		parts[i] = text
	}
	return strings.Join(parts, " ")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `|`, `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// WriteMarkdownFile writes the report to path, creating parent directories.
func WriteMarkdownFile(path string, result *model.MetricResult, trees []*rowstate.Tree, opts MarkdownOptions) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteMarkdown(f, result, trees, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

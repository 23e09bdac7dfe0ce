package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kraitsura/segment_viewer/pkg/rowstate"
)

// filterRows fuzzy-matches query against every segment in trees, expanded
// or not, and returns one flat row per distinct key in match order.
// Replicated nodes are listed once, at their first path.
func filterRows(trees []*rowstate.Tree, query string) []rowstate.Row {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var candidates []rowstate.Row
	seen := make(map[string]bool)
	for _, t := range trees {
		t.Walk(func(r *rowstate.RowState) bool {
			if !seen[r.SerializedKey] {
				seen[r.SerializedKey] = true
				candidates = append(candidates, rowstate.Row{
					State: r,
					Tree:  t.Name,
					Depth: len(r.Path) - 1,
				})
			}
			return true
		})
	}

	searchStrings := make([]string, len(candidates))
	for i, c := range candidates {
		searchStrings[i] = c.State.SerializedKey
	}

	matches := fuzzy.Find(query, searchStrings)
	rows := make([]rowstate.Row, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, candidates[match.Index])
	}
	return rows
}

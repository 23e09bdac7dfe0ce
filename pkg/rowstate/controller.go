package rowstate

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kraitsura/segment_viewer/pkg/hierarchy"
	"github.com/kraitsura/segment_viewer/pkg/model"
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// GroupingMode selects how segments are arranged into trees.
type GroupingMode int

const (
	Combined     GroupingMode = iota // one hierarchy over all segments
	PerDimension                     // one hierarchy per dimension
)

// String returns the config/flag spelling of the mode.
func (g GroupingMode) String() string {
	switch g {
	case Combined:
		return "combined"
	case PerDimension:
		return "per-dimension"
	default:
		return "unknown"
	}
}

// Label returns a display name for the mode.
func (g GroupingMode) Label() string {
	if g == PerDimension {
		return "Grouped by dimension"
	}
	return "Combined"
}

// IsValid returns true if the mode is a recognized value.
func (g GroupingMode) IsValid() bool {
	return g == Combined || g == PerDimension
}

// ParseGroupingMode parses a mode name as written in config files and flags.
func ParseGroupingMode(s string) (GroupingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "combined":
		return Combined, nil
	case "per-dimension", "per_dimension", "perdimension":
		return PerDimension, nil
	}
	return Combined, fmt.Errorf("unknown grouping mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g GroupingMode) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("invalid grouping mode %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GroupingMode) UnmarshalText(text []byte) error {
	mode, err := ParseGroupingMode(string(text))
	if err != nil {
		return err
	}
	*g = mode
	return nil
}

// Controller owns the row-state trees for the current result and grouping
// mode. Every Load and SetMode is a full rebuild; expand state does not
// survive either.
type Controller struct {
	mode   GroupingMode
	result *model.MetricResult
	trees  []*Tree

	skipped []error
}

// NewController creates a controller with no result loaded.
func NewController(mode GroupingMode) *Controller {
	if !mode.IsValid() {
		mode = Combined
	}
	return &Controller{mode: mode}
}

// Mode returns the current grouping mode.
func (c *Controller) Mode() GroupingMode {
	return c.mode
}

// Result returns the loaded result, or nil.
func (c *Controller) Result() *model.MetricResult {
	return c.result
}

// Trees returns the current state trees. Combined mode has at most one.
func (c *Controller) Trees() []*Tree {
	return c.trees
}

// Skipped returns the errors for driver keys left out of the last rebuild.
func (c *Controller) Skipped() []error {
	return c.skipped
}

// Load replaces the current result and rebuilds.
func (c *Controller) Load(result *model.MetricResult) error {
	prev := c.result
	c.result = result
	if err := c.Rebuild(); err != nil {
		c.result = prev
		return err
	}
	return nil
}

// SetMode switches grouping mode and rebuilds, discarding expand state.
func (c *Controller) SetMode(mode GroupingMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid grouping mode %d", int(mode))
	}
	prev := c.mode
	c.mode = mode
	if err := c.Rebuild(); err != nil {
		c.mode = prev
		return err
	}
	return nil
}

// ToggleMode flips between Combined and PerDimension.
func (c *Controller) ToggleMode() error {
	if c.mode == Combined {
		return c.SetMode(PerDimension)
	}
	return c.SetMode(Combined)
}

// Rebuild recomputes the trees from the loaded result. On error the
// previous trees are kept.
func (c *Controller) Rebuild() error {
	if c.result == nil {
		c.trees = nil
		c.skipped = nil
		return nil
	}

	keys, skipped := c.result.DriverKeys()
	for _, err := range skipped {
		log.Printf("Warning: skipping driver row: %v", err)
	}

	keys, dropped := hierarchy.Sanitize(keys)
	for _, err := range dropped {
		log.Printf("Warning: dropping invalid driver key: %v", err)
	}
	skipped = append(skipped, dropped...)

	trees, err := buildTrees(c.mode, keys)
	if err != nil {
		return fmt.Errorf("build %s hierarchy: %w", c.mode, err)
	}
	c.trees = trees
	c.skipped = skipped
	return nil
}

func buildTrees(mode GroupingMode, keys []segment.Key) ([]*Tree, error) {
	switch mode {
	case PerDimension:
		forests, err := hierarchy.BuildPerDimension(keys)
		if err != nil {
			return nil, err
		}
		trees := make([]*Tree, 0, len(forests))
		for _, f := range forests {
			trees = append(trees, FromForest(f))
		}
		return trees, nil
	default:
		forest, err := hierarchy.BuildCombined(keys)
		if err != nil {
			return nil, err
		}
		return []*Tree{FromForest(forest)}, nil
	}
}

// treeFor finds the tree whose root is path[0]. Root keys are unique across
// trees: per-dimension roots are simple keys of distinct dimensions.
func (c *Controller) treeFor(path []string) (*Tree, error) {
	if len(path) == 0 {
		return nil, &PathNotFoundError{}
	}
	for _, t := range c.trees {
		if t.HasRoot(path[0]) {
			return t, nil
		}
	}
	return nil, &PathNotFoundError{Path: path, Missing: path[0]}
}

// Toggle flips the row at path in whichever tree holds it.
func (c *Controller) Toggle(path []string) error {
	t, err := c.treeFor(path)
	if err != nil {
		return err
	}
	return t.Toggle(path)
}

// SetExpanded sets the row at path in whichever tree holds it.
func (c *Controller) SetExpanded(path []string, expanded bool) error {
	t, err := c.treeFor(path)
	if err != nil {
		return err
	}
	return t.SetExpanded(path, expanded)
}

// TryToggle toggles and swallows stale-path errors, logging them. It
// reports whether the toggle took effect.
func (c *Controller) TryToggle(path []string) bool {
	err := c.Toggle(path)
	if err == nil {
		return true
	}
	var notFound *PathNotFoundError
	if errors.As(err, &notFound) {
		log.Printf("Warning: ignoring toggle on stale path: %v", err)
		return false
	}
	log.Printf("Warning: toggle failed: %v", err)
	return false
}

// Find resolves a path in whichever tree holds it.
func (c *Controller) Find(path []string) (*RowState, error) {
	t, err := c.treeFor(path)
	if err != nil {
		return nil, err
	}
	return t.Find(path)
}

// SetAll expands or collapses every row of every tree.
func (c *Controller) SetAll(expanded bool) {
	for _, t := range c.trees {
		t.SetAll(expanded)
	}
}

// Visible returns the visible rows of all trees in order.
func (c *Controller) Visible() []Row {
	var rows []Row
	for _, t := range c.trees {
		rows = append(rows, t.Visible()...)
	}
	return rows
}

// ShowsAffordance applies the expand-control rule using the loaded
// result's "has more" flags.
func (c *Controller) ShowsAffordance(r *RowState) bool {
	hasMore := c.result != nil && c.result.HasMoreChildren(r.SerializedKey)
	return ShowsAffordance(r, hasMore)
}

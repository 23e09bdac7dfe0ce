package rowstate

import "strings"

// Row is a flattened, visible row for display and navigation.
type Row struct {
	State       *RowState
	Tree        string // name of the tree the row belongs to
	Depth       int
	IsLastChild bool
	ParentPath  []bool // per ancestor below the root: was it a last child
	TreePrefix  string // rendered tree prefix (├─, └─, │ )
}

// Visible flattens the tree, descending only into expanded rows.
func (t *Tree) Visible() []Row {
	var rows []Row
	for _, root := range t.Roots() {
		rows = t.appendVisible(rows, root, 0, true, nil)
	}
	return rows
}

func (t *Tree) appendVisible(rows []Row, r *RowState, depth int, isLast bool, parentPath []bool) []Row {
	row := Row{
		State:       r,
		Tree:        t.Name,
		Depth:       depth,
		IsLastChild: isLast,
		ParentPath:  append([]bool{}, parentPath...),
	}
	row.TreePrefix = buildTreePrefix(row)
	rows = append(rows, row)

	if !r.Expanded {
		return rows
	}

	childParentPath := parentPath
	if depth > 0 {
		childParentPath = append(append([]bool{}, parentPath...), isLast)
	}
	children := r.ChildList()
	for i, child := range children {
		rows = t.appendVisible(rows, child, depth+1, i == len(children)-1, childParentPath)
	}
	return rows
}

func buildTreePrefix(row Row) string {
	if row.Depth == 0 {
		return ""
	}

	var prefix strings.Builder
	for _, wasLast := range row.ParentPath {
		if wasLast {
			prefix.WriteString("  ")
		} else {
			prefix.WriteString("│ ")
		}
	}
	if row.IsLastChild {
		prefix.WriteString("└─")
	} else {
		prefix.WriteString("├─")
	}
	return prefix.String()
}

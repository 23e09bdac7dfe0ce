package rowstate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kraitsura/segment_viewer/pkg/hierarchy"
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

func buildTree(t *testing.T, serialized ...string) *Tree {
	t.Helper()
	keys := make([]segment.Key, len(serialized))
	for i, s := range serialized {
		k, err := segment.Deserialize(s)
		if err != nil {
			t.Fatalf("Deserialize(%q): %v", s, err)
		}
		keys[i] = k
	}
	forest, err := hierarchy.BuildCombined(keys)
	if err != nil {
		t.Fatalf("BuildCombined: %v", err)
	}
	return FromForest(forest)
}

func expandedSet(tree *Tree) map[string]bool {
	out := make(map[string]bool)
	tree.Walk(func(r *RowState) bool {
		out[hierarchy.JoinPath(r.Path)] = r.Expanded
		return true
	})
	return out
}

func TestFromForestMirrorsShape(t *testing.T) {
	keys := []string{"country:USA", "device:ios", "country:USA|device:ios"}
	tree := buildTree(t, keys...)

	if tree.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tree.Len())
	}
	tree.Walk(func(r *RowState) bool {
		if r.Expanded {
			t.Errorf("row %v should start collapsed", r.Path)
		}
		if r.Path[len(r.Path)-1] != r.SerializedKey {
			t.Errorf("path %v does not end with %s", r.Path, r.SerializedKey)
		}
		return true
	})

	row, err := tree.Find([]string{"device:ios", "country:USA|device:ios"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !row.IsLeaf() {
		t.Error("expected leaf")
	}
	if got := row.ParentKey().Serialize(); got != "device:ios" {
		t.Errorf("ParentKey() = %s, want device:ios", got)
	}
}

func TestToggleFlipsOnlyTarget(t *testing.T) {
	tree := buildTree(t, "a:1", "a:1|b:2", "a:1|b:2|c:3", "d:4")
	path := []string{"a:1", "a:1|b:2"}

	before := expandedSet(tree)
	if err := tree.Toggle(path); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	after := expandedSet(tree)

	for p, was := range before {
		now := after[p]
		if p == hierarchy.JoinPath(path) {
			if now == was {
				t.Errorf("target %s was not flipped", p)
			}
			continue
		}
		if now != was {
			t.Errorf("non-target %s changed from %v to %v", p, was, now)
		}
	}

	if err := tree.Toggle(path); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !reflect.DeepEqual(before, expandedSet(tree)) {
		t.Error("double toggle should restore the original state")
	}
}

func TestToggleMissingPath(t *testing.T) {
	tree := buildTree(t, "a:1", "a:1|b:2")
	before := expandedSet(tree)

	tests := []struct {
		name    string
		path    []string
		missing string
	}{
		{"empty path", nil, ""},
		{"unknown root", []string{"z:9"}, "z:9"},
		{"unknown child", []string{"a:1", "a:1|c:3"}, "a:1|c:3"},
		{"too deep", []string{"a:1", "a:1|b:2", "a:1|b:2|c:3"}, "a:1|b:2|c:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tree.Toggle(tt.path)
			var notFound *PathNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected PathNotFoundError, got %v", err)
			}
			if notFound.Missing != tt.missing {
				t.Errorf("Missing = %q, want %q", notFound.Missing, tt.missing)
			}
		})
	}
	if !reflect.DeepEqual(before, expandedSet(tree)) {
		t.Error("failed toggles must leave the tree unmodified")
	}
}

func TestShowsAffordance(t *testing.T) {
	tree := buildTree(t, "a:1", "a:1|b:2")
	root, _ := tree.Find([]string{"a:1"})
	leaf, _ := tree.Find([]string{"a:1", "a:1|b:2"})

	if !ShowsAffordance(root, false) {
		t.Error("row with children needs an affordance")
	}
	if ShowsAffordance(leaf, false) {
		t.Error("complete leaf needs no affordance")
	}
	if !ShowsAffordance(leaf, true) {
		t.Error("leaf with uncomputed children needs an affordance")
	}
}

func TestVisible(t *testing.T) {
	tree := buildTree(t, "a:1", "a:1|b:2", "a:1|c:3", "a:1|b:2|d:4", "e:5")

	rows := tree.Visible()
	if len(rows) != 2 {
		t.Fatalf("collapsed tree should show 2 roots, got %d", len(rows))
	}

	if err := tree.Toggle([]string{"a:1"}); err != nil {
		t.Fatal(err)
	}
	if err := tree.Toggle([]string{"a:1", "a:1|b:2"}); err != nil {
		t.Fatal(err)
	}

	rows = tree.Visible()
	var got []string
	var prefixes []string
	for _, r := range rows {
		got = append(got, r.State.SerializedKey)
		prefixes = append(prefixes, r.TreePrefix)
	}
	want := []string{"a:1", "a:1|b:2", "a:1|b:2|d:4", "a:1|c:3", "e:5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	wantPrefixes := []string{"", "├─", "│ └─", "└─", ""}
	if !reflect.DeepEqual(prefixes, wantPrefixes) {
		t.Errorf("prefixes = %q, want %q", prefixes, wantPrefixes)
	}
}

func TestSetAllAndExpandedPaths(t *testing.T) {
	tree := buildTree(t, "a:1", "a:1|b:2")
	tree.SetAll(true)
	if got := tree.ExpandedPaths(); len(got) != 2 {
		t.Errorf("ExpandedPaths() = %v, want 2 entries", got)
	}
	if err := tree.SetExpanded([]string{"a:1"}, false); err != nil {
		t.Fatal(err)
	}
	if got := tree.ExpandedPaths(); !reflect.DeepEqual(got, []string{"a:1 > a:1|b:2"}) {
		t.Errorf("ExpandedPaths() = %v", got)
	}
}

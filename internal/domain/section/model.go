// Package section models the folder hierarchy test cases live in and
// derives the grouped, ordered, visibility-aware structure the list
// view renders.
package section

import (
	"sort"
	"strings"
)

// UnassignedID is the synthetic bucket collecting entities with no
// section. It has no backing Node and always renders last.
const UnassignedID = "__unassigned__"

// UnassignedName is the display name of the synthetic bucket, and also
// the node name that demotes a real section after its siblings.
const UnassignedName = "Unassigned"

// maxDepth bounds every ancestry walk. The tree is expected to be well
// formed; the bound turns a corrupted parent chain into a truncated walk
// instead of a hang.
const maxDepth = 64

// Node is one folder in the section hierarchy.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_section_id,omitempty"`
	// Level is the 1-based depth, derived when the tree is built.
	Level    int     `json:"level"`
	Children []*Node `json:"-"`
}

// Tree is an assembled section hierarchy with fast id lookup.
type Tree struct {
	roots []*Node
	byID  map[string]*Node
}

// NewTree assembles a tree from flat nodes. Input order is preserved
// among siblings except that nodes named "Unassigned" sort after their
// named siblings. Nodes whose parent is missing are treated as roots.
func NewTree(nodes []Node) *Tree {
	t := &Tree{byID: make(map[string]*Node, len(nodes))}

	for i := range nodes {
		n := nodes[i]
		n.Children = nil
		t.byID[n.ID] = &n
	}

	for _, n := range t.byID {
		if n.ParentID != nil {
			if parent, ok := t.byID[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		t.roots = append(t.roots, n)
	}

	// Rebuild sibling order from the input sequence, then demote
	// "Unassigned" nodes within each sibling group.
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	orderSiblings(t.roots, index)
	for _, n := range t.byID {
		orderSiblings(n.Children, index)
	}

	for _, root := range t.roots {
		assignLevels(root, 1, make(map[string]bool))
	}

	return t
}

func orderSiblings(siblings []*Node, index map[string]int) {
	sort.SliceStable(siblings, func(i, j int) bool {
		iUn := strings.EqualFold(siblings[i].Name, UnassignedName)
		jUn := strings.EqualFold(siblings[j].Name, UnassignedName)
		if iUn != jUn {
			return jUn
		}
		return index[siblings[i].ID] < index[siblings[j].ID]
	})
}

func assignLevels(n *Node, level int, visited map[string]bool) {
	if level > maxDepth || visited[n.ID] {
		return
	}
	visited[n.ID] = true
	n.Level = level
	for _, child := range n.Children {
		assignLevels(child, level+1, visited)
	}
}

// Get returns the node with the given id, if present.
func (t *Tree) Get(id string) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Walk visits every node depth first in display order. The walk is
// cycle-guarded and depth-bounded.
func (t *Tree) Walk(visit func(*Node)) {
	visited := make(map[string]bool, len(t.byID))
	for _, root := range t.roots {
		t.walk(root, 0, visited, visit)
	}
}

func (t *Tree) walk(n *Node, depth int, visited map[string]bool, visit func(*Node)) {
	if depth > maxDepth || visited[n.ID] {
		return
	}
	visited[n.ID] = true
	visit(n)
	for _, child := range n.Children {
		t.walk(child, depth+1, visited, visit)
	}
}

// Path returns the "/"-joined names from the root down to id. Unknown
// ids yield an empty path.
func (t *Tree) Path(id string) string {
	var names []string
	seen := make(map[string]bool)
	for cur, ok := t.byID[id]; ok && len(names) < maxDepth; {
		if seen[cur.ID] {
			break
		}
		seen[cur.ID] = true
		names = append([]string{cur.Name}, names...)
		if cur.ParentID == nil {
			break
		}
		cur, ok = t.byID[*cur.ParentID]
	}
	return strings.Join(names, " / ")
}

// Ancestors returns the parent chain of id, nearest first. The walk is
// cycle-guarded and depth-bounded.
func (t *Tree) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	cur, ok := t.byID[id]
	for ok && cur.ParentID != nil && len(out) < maxDepth {
		parentID := *cur.ParentID
		if seen[parentID] {
			break
		}
		seen[parentID] = true
		out = append(out, parentID)
		cur, ok = t.byID[parentID]
	}
	return out
}

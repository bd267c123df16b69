package section

// CollapseState tracks which sections are folded. Collapsing a node
// snapshots the collapse state of its descendants so a later expand
// restores exactly what was visible before. Session-scoped, never
// persisted.
type CollapseState struct {
	collapsed map[string]bool
	snapshots map[string]map[string]bool
}

// NewCollapseState creates an empty state (everything expanded).
func NewCollapseState() *CollapseState {
	return &CollapseState{
		collapsed: make(map[string]bool),
		snapshots: make(map[string]map[string]bool),
	}
}

// IsCollapsed reports whether the node itself is marked collapsed.
func (c *CollapseState) IsCollapsed(id string) bool {
	return c.collapsed[id]
}

// Visible reports whether a group's rows should render: hidden when the
// group or any ancestor is collapsed. The synthetic unassigned bucket
// has no ancestors.
func (c *CollapseState) Visible(id string, tree *Tree) bool {
	if c.collapsed[id] {
		return false
	}
	if id == UnassignedID || tree == nil {
		return true
	}
	for _, ancestor := range tree.Ancestors(id) {
		if c.collapsed[ancestor] {
			return false
		}
	}
	return true
}

// Collapse folds a node, snapshotting its descendants' current state
// first. Collapsing an already collapsed node is a no-op.
func (c *CollapseState) Collapse(id string, tree *Tree) {
	if c.collapsed[id] {
		return
	}
	snapshot := make(map[string]bool)
	for _, desc := range c.descendants(id, tree) {
		snapshot[desc] = c.collapsed[desc]
	}
	c.snapshots[id] = snapshot
	c.collapsed[id] = true
}

// Expand unfolds a node and restores the snapshot taken when it was
// collapsed.
func (c *CollapseState) Expand(id string, tree *Tree) {
	if !c.collapsed[id] {
		return
	}
	delete(c.collapsed, id)
	if snapshot, ok := c.snapshots[id]; ok {
		for desc, wasCollapsed := range snapshot {
			if wasCollapsed {
				c.collapsed[desc] = true
			} else {
				delete(c.collapsed, desc)
			}
		}
		delete(c.snapshots, id)
	}
}

// Toggle flips a node between collapsed and expanded.
func (c *CollapseState) Toggle(id string, tree *Tree) {
	if c.collapsed[id] {
		c.Expand(id, tree)
	} else {
		c.Collapse(id, tree)
	}
}

// Reset expands everything and drops all snapshots.
func (c *CollapseState) Reset() {
	c.collapsed = make(map[string]bool)
	c.snapshots = make(map[string]map[string]bool)
}

func (c *CollapseState) descendants(id string, tree *Tree) []string {
	if tree == nil {
		return nil
	}
	node, ok := tree.Get(id)
	if !ok {
		return nil
	}
	var out []string
	visited := map[string]bool{id: true}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if depth > maxDepth {
			return
		}
		for _, child := range n.Children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			out = append(out, child.ID)
			walk(child, depth+1)
		}
	}
	walk(node, 0)
	return out
}

package frames

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.viam.com/viz/spatialmath"
)

// TreeNode is one frame in the built forest.
type TreeNode struct {
	Name     string
	Parent   string
	Children []string
	Pose     spatialmath.Pose
	Valid    bool
	Static   bool
}

// Tree is a forest of frames. It is rebuilt whole on every call to BuildTree;
// nodes are never mutated across rebuilds, which avoids stale-parent bugs
// when the store changes concurrently.
type Tree struct {
	Nodes map[string]*TreeNode
	Roots []string
}

// BuildTree merges the static and dynamic frame tables into a forest. Static
// entries win on a name conflict: a dynamic transform never overrides a
// static one for the same child. Every known frame name gets a node even if
// it is childless and parentless. A node whose declared parent is unknown
// becomes a root. Parent edges that would close a cycle are dropped, breaking
// in favor of a frame named "map" when the cycle runs through it, so the
// result is always a true forest. Roots come back sorted by name.
//
// The function is pure so it may run off the control thread.
func BuildTree(
	static, dynamic map[string]TransformFrame,
	known []string,
	now time.Time,
	timeout time.Duration,
) *Tree {
	merged := make(map[string]TransformFrame, len(static)+len(dynamic))
	for name, frame := range dynamic {
		merged[name] = frame
	}
	for name, frame := range static {
		merged[name] = frame
	}

	tree := &Tree{Nodes: map[string]*TreeNode{}}
	ensure := func(name string) *TreeNode {
		if node, ok := tree.Nodes[name]; ok {
			return node
		}
		node := &TreeNode{Name: name, Pose: spatialmath.NewZeroPose(), Valid: true}
		tree.Nodes[name] = node
		return node
	}

	for _, name := range known {
		ensure(name)
	}
	for name, frame := range merged {
		node := ensure(name)
		node.Pose = frame.Pose()
		node.Static = frame.Static
		node.Valid = frame.Valid(now, timeout)
	}

	// Parent pointers land in a fixed order and only on nodes whose parent
	// actually exists; anything else stays a root. An edge that would close
	// a cycle is dropped so the structure stays a forest: the frame whose
	// edge closes the loop becomes a root instead. The fixed frame's own
	// edge goes last so a tf cycle through "map" breaks in its favor.
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == DefaultFixedFrame {
			return false
		}
		if names[j] == DefaultFixedFrame {
			return true
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		frame := merged[name]
		if frame.Parent == "" || frame.Parent == name {
			continue
		}
		parent, ok := tree.Nodes[frame.Parent]
		if !ok {
			continue
		}
		if hasAncestor(tree, frame.Parent, name) {
			continue
		}
		node := tree.Nodes[name]
		node.Parent = frame.Parent
		if !containsChild(parent.Children, name) {
			parent.Children = append(parent.Children, name)
		}
	}

	for name, node := range tree.Nodes {
		if node.Parent == "" {
			tree.Roots = append(tree.Roots, name)
		}
	}
	sort.Strings(tree.Roots)
	for _, node := range tree.Nodes {
		sort.Strings(node.Children)
	}
	return tree
}

// hasAncestor reports whether target appears on the parent chain starting at
// name, using only the pointers placed so far.
func hasAncestor(tree *Tree, name, target string) bool {
	for name != "" {
		if name == target {
			return true
		}
		node, ok := tree.Nodes[name]
		if !ok {
			return false
		}
		name = node.Parent
	}
	return false
}

func containsChild(children []string, name string) bool {
	for _, c := range children {
		if c == name {
			return true
		}
	}
	return false
}

// String renders the forest for debug dumps. The visited guard keeps the
// walk bounded even on a hand-built tree whose child lists loop.
func (t *Tree) String() string {
	var b strings.Builder
	visited := map[string]bool{}
	var walk func(name string, depth int)
	walk = func(name string, depth int) {
		if visited[name] {
			return
		}
		visited[name] = true
		node := t.Nodes[name]
		marker := ""
		if !node.Valid {
			marker = " (stale)"
		}
		if node.Static {
			marker += " (static)"
		}
		fmt.Fprintf(&b, "%s%s%s\n", strings.Repeat("  ", depth), name, marker)
		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range t.Roots {
		walk(root, 0)
	}
	return b.String()
}

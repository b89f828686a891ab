package frames

import (
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func frameAt(name, parent string, x float64, static bool, updated time.Time) TransformFrame {
	return TransformFrame{
		Name:        name,
		Parent:      parent,
		Translation: r3.Vector{X: x},
		LastUpdate:  updated,
		Static:      static,
	}
}

func TestBuildTreeBasicForest(t *testing.T) {
	now := time.Now()
	static := map[string]TransformFrame{
		"base_link": frameAt("base_link", "map", 0, true, now),
		"laser":     frameAt("laser", "base_link", 0.2, true, now),
	}
	tree := BuildTree(static, nil, []string{"map", "base_link", "laser"}, now, DefaultTimeout)

	test.That(t, tree.Roots, test.ShouldResemble, []string{"map"})
	test.That(t, tree.Nodes["map"].Children, test.ShouldResemble, []string{"base_link"})
	test.That(t, tree.Nodes["base_link"].Children, test.ShouldResemble, []string{"laser"})
	test.That(t, tree.Nodes["laser"].Parent, test.ShouldEqual, "base_link")
}

func TestBuildTreeDynamicExpiry(t *testing.T) {
	t0 := time.Now()
	timeout := 2 * time.Second
	dynamic := map[string]TransformFrame{
		"odom": frameAt("odom", "map", 0, false, t0),
	}
	known := []string{"map", "odom"}

	// Included strictly inside the timeout window.
	tree := BuildTree(nil, dynamic, known, t0.Add(1900*time.Millisecond), timeout)
	test.That(t, tree.Nodes["odom"].Valid, test.ShouldBeTrue)

	// Excluded once past it.
	tree = BuildTree(nil, dynamic, known, t0.Add(2100*time.Millisecond), timeout)
	test.That(t, tree.Nodes["odom"].Valid, test.ShouldBeFalse)
}

func TestBuildTreeStaticPrecedence(t *testing.T) {
	now := time.Now()
	static := map[string]TransformFrame{
		"base_link": frameAt("base_link", "map", 1.5, true, now),
	}
	dynamic := map[string]TransformFrame{
		"base_link": frameAt("base_link", "map", 99, false, now),
	}
	tree := BuildTree(static, dynamic, []string{"map", "base_link"}, now, DefaultTimeout)

	node := tree.Nodes["base_link"]
	test.That(t, node.Static, test.ShouldBeTrue)
	test.That(t, node.Pose.Point.X, test.ShouldEqual, 1.5)
}

func TestBuildTreeUnknownParentIsRoot(t *testing.T) {
	now := time.Now()
	dynamic := map[string]TransformFrame{
		"camera": frameAt("camera", "gimbal", 0, false, now),
	}
	tree := BuildTree(nil, dynamic, []string{"camera"}, now, DefaultTimeout)

	test.That(t, tree.Nodes["camera"].Parent, test.ShouldEqual, "")
	test.That(t, tree.Roots, test.ShouldResemble, []string{"camera"})
}

func TestBuildTreeMapPromotion(t *testing.T) {
	now := time.Now()
	// Two frames pointing at each other leave no natural root. The edge
	// giving map a parent is the one dropped, so map roots the forest and
	// no reciprocal child entry survives.
	dynamic := map[string]TransformFrame{
		"map":  frameAt("map", "odom", 0, false, now),
		"odom": frameAt("odom", "map", 0, false, now),
	}
	tree := BuildTree(nil, dynamic, []string{"map", "odom"}, now, DefaultTimeout)
	test.That(t, tree.Roots, test.ShouldResemble, []string{"map"})
	test.That(t, tree.Nodes["map"].Parent, test.ShouldEqual, "")
	test.That(t, tree.Nodes["map"].Children, test.ShouldResemble, []string{"odom"})
	test.That(t, tree.Nodes["odom"].Parent, test.ShouldEqual, "map")
	test.That(t, tree.Nodes["odom"].Children, test.ShouldBeEmpty)
}

func TestBuildTreeBreaksCycleThroughMap(t *testing.T) {
	now := time.Now()
	dynamic := map[string]TransformFrame{
		"map":  frameAt("map", "odom", 0, false, now),
		"odom": frameAt("odom", "base", 0, false, now),
		"base": frameAt("base", "map", 0, false, now),
	}
	tree := BuildTree(nil, dynamic, nil, now, DefaultTimeout)

	test.That(t, tree.Roots, test.ShouldResemble, []string{"map"})
	test.That(t, tree.Nodes["base"].Parent, test.ShouldEqual, "map")
	test.That(t, tree.Nodes["odom"].Parent, test.ShouldEqual, "base")

	// The dump walks each frame exactly once.
	dump := tree.String()
	test.That(t, strings.Count(dump, "map"), test.ShouldEqual, 1)
	test.That(t, strings.Count(dump, "odom"), test.ShouldEqual, 1)
}

func TestBuildTreeBreaksCycleWithoutMap(t *testing.T) {
	now := time.Now()
	dynamic := map[string]TransformFrame{
		"gimbal": frameAt("gimbal", "mount", 0, false, now),
		"mount":  frameAt("mount", "gimbal", 0, false, now),
	}
	tree := BuildTree(nil, dynamic, nil, now, DefaultTimeout)

	// One of the two edges is dropped, so exactly one frame roots the pair
	// and the parent chain terminates.
	test.That(t, len(tree.Roots), test.ShouldEqual, 1)
	root := tree.Roots[0]
	test.That(t, tree.Nodes[root].Parent, test.ShouldEqual, "")
	for name := range tree.Nodes {
		test.That(t, hasAncestor(tree, name, root), test.ShouldBeTrue)
	}
	test.That(t, tree.String(), test.ShouldNotBeEmpty)
}

func TestBuildTreeNoDuplicateChildren(t *testing.T) {
	now := time.Now()
	static := map[string]TransformFrame{
		"laser": frameAt("laser", "base_link", 0, true, now),
	}
	dynamic := map[string]TransformFrame{
		"laser": frameAt("laser", "base_link", 1, false, now),
	}
	tree := BuildTree(static, dynamic, []string{"base_link", "laser"}, now, DefaultTimeout)
	test.That(t, tree.Nodes["base_link"].Children, test.ShouldResemble, []string{"laser"})
}

func TestBuildTreeRootsSorted(t *testing.T) {
	now := time.Now()
	tree := BuildTree(nil, nil, []string{"zeta", "alpha", "mid"}, now, DefaultTimeout)
	test.That(t, tree.Roots, test.ShouldResemble, []string{"alpha", "mid", "zeta"})
}

func TestTreeString(t *testing.T) {
	now := time.Now()
	static := map[string]TransformFrame{
		"base_link": frameAt("base_link", "map", 0, true, now),
	}
	tree := BuildTree(static, nil, []string{"map", "base_link"}, now, DefaultTimeout)
	out := tree.String()
	test.That(t, out, test.ShouldContainSubstring, "map")
	test.That(t, out, test.ShouldContainSubstring, "base_link")
	test.That(t, out, test.ShouldContainSubstring, "static")
}

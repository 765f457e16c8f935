package scene

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

const tol = 1e-9

// chain builds root -> n1 -> ... -> n(depth-1), each offset by (0, 1, 0).
func chain(t testing.TB, g *Graph, depth int) []NodeID {
	t.Helper()
	ids := []NodeID{g.NewNode("root")}
	for i := 1; i < depth; i++ {
		id := g.NewNode("child")
		if err := g.SetPosition(id, math3d.V3(0, 1, 0)); err != nil {
			t.Fatal(err)
		}
		if err := g.AddChild(ids[i-1], id); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestNewNodeIsIdentity(t *testing.T) {
	g := NewGraph()
	id := g.NewNode("a")

	world, err := g.World(id)
	if err != nil {
		t.Fatal(err)
	}
	if world != math3d.Identity() {
		t.Errorf("World = %v, want identity", world)
	}
	if p, _ := g.Parent(id); p != NoNode {
		t.Errorf("Parent = %d, want NoNode", p)
	}
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}
}

func TestWorldComposesParent(t *testing.T) {
	g := NewGraph()
	parent := g.NewNode("parent")
	child := g.NewNode("child")
	must(t, g.SetPosition(parent, math3d.V3(1, 0, 0)))
	must(t, g.SetScale(parent, math3d.V3(2, 2, 2)))
	must(t, g.SetPosition(child, math3d.V3(0, 2, 0)))
	must(t, g.AddChild(parent, child))

	world, err := g.World(child)
	if err != nil {
		t.Fatal(err)
	}
	got := world.MulPoint(math3d.Zero3())
	want := math3d.V3(1, 4, 0)
	if !got.ApproxEqual(want, tol) {
		t.Errorf("child origin = %v, want %v", got, want)
	}

	stack, _ := g.Stack(child)
	if len(stack) != 2 {
		t.Fatalf("stack length = %d, want 2", len(stack))
	}
	fold := math3d.Identity()
	for _, m := range stack {
		fold = fold.Mul(m)
	}
	if !fold.ApproxEqual(world, tol) {
		t.Errorf("fold(stack) = %v, want World %v", fold, world)
	}
}

func TestLocalTransformOrder(t *testing.T) {
	g := NewGraph()
	id := g.NewNode("a")
	rot := math3d.RotateY(math.Pi / 2)
	must(t, g.SetRotation(id, rot))
	must(t, g.SetScale(id, math3d.V3(2, 1, 1)))
	must(t, g.SetPosition(id, math3d.V3(0, 0, 5)))

	local, err := g.LocalTransform(id)
	if err != nil {
		t.Fatal(err)
	}
	want := math3d.Translate(math3d.V3(0, 0, 5)).Mul(math3d.Scale(math3d.V3(2, 1, 1)).Mul(rot))
	if !local.ApproxEqual(want, tol) {
		t.Errorf("LocalTransform = %v, want %v", local, want)
	}
}

func TestTranslatePropagatesToDescendants(t *testing.T) {
	g := NewGraph()
	ids := chain(t, g, 5)
	must(t, g.Rotate(ids[1], math3d.RotateZ(0.3)))
	must(t, g.Scale(ids[2], math3d.V3(1, 3, 0.5)))

	before := make([]math3d.Mat4, len(ids))
	for i, id := range ids {
		before[i], _ = g.World(id)
	}

	delta := math3d.V3(3, -2, 7)
	must(t, g.Translate(ids[0], delta))

	for i, id := range ids {
		after, _ := g.World(id)
		want := math3d.Translate(delta).Mul(before[i])
		if !after.ApproxEqual(want, 1e-9) {
			t.Errorf("node %d: World = %v, want %v", i, after, want)
		}
		stack, _ := g.Stack(id)
		if len(stack) != i+1 {
			t.Errorf("node %d: stack length = %d, want %d", i, len(stack), i+1)
		}
	}
}

func TestMutatorsCompose(t *testing.T) {
	g := NewGraph()
	id := g.NewNode("a")

	must(t, g.Rotate(id, math3d.RotateY(math.Pi/2)))
	must(t, g.Rotate(id, math3d.RotateY(math.Pi/2)))
	must(t, g.Scale(id, math3d.V3(2, 3, 4)))
	must(t, g.Scale(id, math3d.V3(0.5, 2, 1)))
	must(t, g.Translate(id, math3d.V3(1, 0, 0)))
	must(t, g.Translate(id, math3d.V3(0, 1, 0)))

	pos, rot, scale, err := g.Local(id)
	if err != nil {
		t.Fatal(err)
	}
	if !rot.ApproxEqual(math3d.RotateY(math.Pi), tol) {
		t.Errorf("rotation = %v, want RotateY(π)", rot)
	}
	if !scale.ApproxEqual(math3d.V3(1, 6, 4), tol) {
		t.Errorf("scale = %v, want (1, 6, 4)", scale)
	}
	if !pos.ApproxEqual(math3d.V3(1, 1, 0), tol) {
		t.Errorf("position = %v, want (1, 1, 0)", pos)
	}
}

func TestAddChildErrors(t *testing.T) {
	g := NewGraph()
	a := g.NewNode("a")
	b := g.NewNode("b")
	c := g.NewNode("c")
	must(t, g.AddChild(a, b))

	tests := []struct {
		name          string
		parent, child NodeID
		want          error
	}{
		{"unknown parent", 99, c, ErrUnknownNode},
		{"unknown child", a, -5, ErrUnknownNode},
		{"self", c, c, ErrCycle},
		{"ancestor below descendant", b, a, ErrCycle},
		{"already parented", c, b, ErrHasParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddChild(tt.parent, tt.child)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddChild(%d, %d) = %v, want %v", tt.parent, tt.child, err, tt.want)
			}
		})
	}

	// Failed attaches leave the graph untouched.
	if p, _ := g.Parent(a); p != NoNode {
		t.Errorf("a gained parent %d", p)
	}
	if kids, _ := g.Children(c); len(kids) != 0 {
		t.Errorf("c gained children %v", kids)
	}
}

func TestUnknownNodeQueries(t *testing.T) {
	g := NewGraph()
	if _, err := g.World(0); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("World on empty graph: %v", err)
	}
	if err := g.Translate(3, math3d.V3(1, 0, 0)); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Translate unknown: %v", err)
	}
	if _, _, err := g.Mesh(-1); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Mesh unknown: %v", err)
	}
}

func TestDetach(t *testing.T) {
	g := NewGraph()
	ids := chain(t, g, 3)

	must(t, g.Detach(ids[1]))

	if p, _ := g.Parent(ids[1]); p != NoNode {
		t.Errorf("Parent after detach = %d", p)
	}
	if kids, _ := g.Children(ids[0]); len(kids) != 0 {
		t.Errorf("root children after detach = %v", kids)
	}
	world, _ := g.World(ids[2])
	if got := world.Translation(); !got.ApproxEqual(math3d.V3(0, 2, 0), tol) {
		t.Errorf("grandchild translation = %v, want (0, 2, 0)", got)
	}
	if !slices.Equal(g.Roots(), []NodeID{ids[0], ids[1]}) {
		t.Errorf("Roots = %v", g.Roots())
	}
}

func TestWalkOrder(t *testing.T) {
	g := NewGraph()
	r := g.NewNode("r")
	a := g.NewNode("a")
	b := g.NewNode("b")
	c := g.NewNode("c")
	g.NewNode("s")
	must(t, g.AddChild(r, a))
	must(t, g.AddChild(r, b))
	must(t, g.AddChild(a, c))

	var names []string
	var depths []int
	g.Walk(func(id NodeID, depth int) bool {
		name, _ := g.Name(id)
		names = append(names, name)
		depths = append(depths, depth)
		return true
	})
	if want := []string{"r", "a", "c", "b", "s"}; !slices.Equal(names, want) {
		t.Errorf("Walk order = %v, want %v", names, want)
	}
	if want := []int{0, 1, 2, 1, 0}; !slices.Equal(depths, want) {
		t.Errorf("Walk depths = %v, want %v", depths, want)
	}

	names = names[:0]
	g.Walk(func(id NodeID, _ int) bool {
		name, _ := g.Name(id)
		names = append(names, name)
		return id != a
	})
	if want := []string{"r", "a", "b", "s"}; !slices.Equal(names, want) {
		t.Errorf("Walk with skip = %v, want %v", names, want)
	}
}

func TestFind(t *testing.T) {
	g := NewGraph()
	g.NewNode("a")
	b := g.NewNode("b")
	g.NewNode("b")

	if id, ok := g.Find("b"); !ok || id != b {
		t.Errorf("Find(b) = %d, %v; want %d, true", id, ok, b)
	}
	if _, ok := g.Find("missing"); ok {
		t.Error("Find(missing) succeeded")
	}
}

func BenchmarkTranslateDeepChain(b *testing.B) {
	g := NewGraph()
	ids := chain(b, g, 64)
	delta := math3d.V3(0.001, 0, 0)
	for b.Loop() {
		_ = g.Translate(ids[0], delta)
	}
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

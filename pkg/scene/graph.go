// Package scene holds the scene graph and turns it into per-frame draw
// batches for the renderer.
package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
)

var (
	// ErrUnknownNode is returned for a NodeID the graph did not issue.
	ErrUnknownNode = errors.New("scene: unknown node")

	// ErrCycle is returned when attaching a node below one of its own
	// descendants.
	ErrCycle = errors.New("scene: node would become its own ancestor")

	// ErrHasParent is returned when attaching a node that is already
	// attached elsewhere.
	ErrHasParent = errors.New("scene: node already has a parent")
)

// NodeID addresses a node in a Graph.
type NodeID int

// NoNode is the parent of root nodes.
const NoNode NodeID = -1

type node struct {
	name     string
	position math3d.Vec3
	rotation math3d.Mat4
	scale    math3d.Vec3

	// stack holds every ancestor's local transform, root first, followed by
	// this node's own local transform.
	stack []math3d.Mat4

	mesh     *models.Mesh
	material int

	parent   NodeID
	children []NodeID
}

func (n *node) local() math3d.Mat4 {
	return math3d.Translate(n.position).Mul(math3d.Scale(n.scale).Mul(n.rotation))
}

// Graph is an arena of nodes. Transform stacks are propagated eagerly: every
// mutation rebuilds the stacks of the node's whole subtree before returning,
// so World is always current.
type Graph struct {
	nodes []node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// NewNode adds a root node at the origin with identity rotation and unit
// scale.
func (g *Graph) NewNode(name string) NodeID {
	n := node{
		name:     name,
		rotation: math3d.Identity(),
		scale:    math3d.V3(1, 1, 1),
		material: -1,
		parent:   NoNode,
	}
	n.stack = []math3d.Mat4{n.local()}
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

func (g *Graph) get(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	return &g.nodes[id], nil
}

// AddChild attaches child below parent. The child keeps its local transform;
// its stack becomes the parent's stack plus its own local transform.
func (g *Graph) AddChild(parent, child NodeID) error {
	p, err := g.get(parent)
	if err != nil {
		return err
	}
	c, err := g.get(child)
	if err != nil {
		return err
	}
	if c.parent != NoNode {
		return fmt.Errorf("attach %q to %q: %w", c.name, p.name, ErrHasParent)
	}
	for a := parent; a != NoNode; a = g.nodes[a].parent {
		if a == child {
			return fmt.Errorf("attach %q to %q: %w", c.name, p.name, ErrCycle)
		}
	}

	c.parent = parent
	p.children = append(p.children, child)
	g.propagate(child)
	return nil
}

// Detach removes id from its parent, making it a root. Its world transform
// becomes its local transform.
func (g *Graph) Detach(id NodeID) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	if n.parent == NoNode {
		return nil
	}
	p := &g.nodes[n.parent]
	p.children = slices.DeleteFunc(p.children, func(c NodeID) bool { return c == id })
	n.parent = NoNode
	g.propagate(id)
	return nil
}

// propagate rebuilds the stack of id and every descendant.
func (g *Graph) propagate(id NodeID) {
	pending := []NodeID{id}
	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		n := &g.nodes[cur]
		var base []math3d.Mat4
		if n.parent != NoNode {
			base = g.nodes[n.parent].stack
		}
		n.stack = append(n.stack[:0], base...)
		n.stack = append(n.stack, n.local())
		pending = append(pending, n.children...)
	}
}

// mutate applies fn to the node's locals and propagates the change.
func (g *Graph) mutate(id NodeID, fn func(n *node)) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	fn(n)
	g.propagate(id)
	return nil
}

// Translate adds delta to the node's local position.
func (g *Graph) Translate(id NodeID, delta math3d.Vec3) error {
	return g.mutate(id, func(n *node) { n.position = n.position.Add(delta) })
}

// Rotate applies delta after the node's current local rotation.
func (g *Graph) Rotate(id NodeID, delta math3d.Mat4) error {
	return g.mutate(id, func(n *node) { n.rotation = delta.Mul(n.rotation) })
}

// Scale multiplies the node's local scale component-wise by factor.
func (g *Graph) Scale(id NodeID, factor math3d.Vec3) error {
	return g.mutate(id, func(n *node) { n.scale = n.scale.Mul(factor) })
}

// SetPosition overwrites the local position.
func (g *Graph) SetPosition(id NodeID, pos math3d.Vec3) error {
	return g.mutate(id, func(n *node) { n.position = pos })
}

// SetRotation overwrites the local rotation.
func (g *Graph) SetRotation(id NodeID, rot math3d.Mat4) error {
	return g.mutate(id, func(n *node) { n.rotation = rot })
}

// SetScale overwrites the local scale.
func (g *Graph) SetScale(id NodeID, scale math3d.Vec3) error {
	return g.mutate(id, func(n *node) { n.scale = scale })
}

// SetMesh attaches a mesh drawn with the given material id. A nil mesh
// turns the node into a pure group.
func (g *Graph) SetMesh(id NodeID, mesh *models.Mesh, material int) error {
	return g.mutate(id, func(n *node) {
		n.mesh = mesh
		n.material = material
	})
}

// Mesh returns the node's mesh and material id.
func (g *Graph) Mesh(id NodeID) (*models.Mesh, int, error) {
	n, err := g.get(id)
	if err != nil {
		return nil, 0, err
	}
	return n.mesh, n.material, nil
}

// Local returns the node's local position, rotation and scale.
func (g *Graph) Local(id NodeID) (pos math3d.Vec3, rot math3d.Mat4, scale math3d.Vec3, err error) {
	n, err := g.get(id)
	if err != nil {
		return pos, rot, scale, err
	}
	return n.position, n.rotation, n.scale, nil
}

// LocalTransform returns Translate(position)·(Scale·Rotation).
func (g *Graph) LocalTransform(id NodeID) (math3d.Mat4, error) {
	n, err := g.get(id)
	if err != nil {
		return math3d.Mat4{}, err
	}
	return n.stack[len(n.stack)-1], nil
}

// World returns the model-to-world transform: the product of the node's
// stack, root first.
func (g *Graph) World(id NodeID) (math3d.Mat4, error) {
	n, err := g.get(id)
	if err != nil {
		return math3d.Mat4{}, err
	}
	world := math3d.Identity()
	for _, m := range n.stack {
		world = world.Mul(m)
	}
	return world, nil
}

// Stack returns a copy of the node's transform stack.
func (g *Graph) Stack(id NodeID) ([]math3d.Mat4, error) {
	n, err := g.get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.stack), nil
}

// Name returns the node's name.
func (g *Graph) Name(id NodeID) (string, error) {
	n, err := g.get(id)
	if err != nil {
		return "", err
	}
	return n.name, nil
}

// Parent returns the node's parent, or NoNode for a root.
func (g *Graph) Parent(id NodeID) (NodeID, error) {
	n, err := g.get(id)
	if err != nil {
		return NoNode, err
	}
	return n.parent, nil
}

// Children returns a copy of the node's children in attach order.
func (g *Graph) Children(id NodeID) ([]NodeID, error) {
	n, err := g.get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.children), nil
}

// Roots returns every node without a parent, in creation order.
func (g *Graph) Roots() []NodeID {
	var roots []NodeID
	for i := range g.nodes {
		if g.nodes[i].parent == NoNode {
			roots = append(roots, NodeID(i))
		}
	}
	return roots
}

// Find returns the first node with the given name.
func (g *Graph) Find(name string) (NodeID, bool) {
	for i := range g.nodes {
		if g.nodes[i].name == name {
			return NodeID(i), true
		}
	}
	return NoNode, false
}

// Walk visits every node depth-first, parents before children and siblings
// in attach order. Returning false from fn skips the node's subtree.
func (g *Graph) Walk(fn func(id NodeID, depth int) bool) {
	type entry struct {
		id    NodeID
		depth int
	}
	roots := g.Roots()
	pending := make([]entry, 0, len(g.nodes))
	for i := len(roots) - 1; i >= 0; i-- {
		pending = append(pending, entry{roots[i], 0})
	}
	for len(pending) > 0 {
		e := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if !fn(e.id, e.depth) {
			continue
		}
		children := g.nodes[e.id].children
		for i := len(children) - 1; i >= 0; i-- {
			pending = append(pending, entry{children[i], e.depth + 1})
		}
	}
}

package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/engine/picking"
)

// Hit is the nearest ray intersection with a mesh node.
type Hit struct {
	Node     *Node
	Distance float32
	Point    mgl32.Vec3
}

// Scene owns the node hierarchy of one loaded model.
type Scene struct {
	Root *Node

	removeListeners []func(*Node)
}

// New wraps root in a scene.
func New(root *Node) *Scene {
	if root == nil {
		root = NewNode("root")
	}
	return &Scene{Root: root}
}

// OnRemove registers fn to be called for every node that leaves the scene.
func (s *Scene) OnRemove(fn func(*Node)) {
	s.removeListeners = append(s.removeListeners, fn)
}

// Remove detaches n and its subtree, notifying removal listeners per node.
func (s *Scene) Remove(n *Node) bool {
	if n == nil || n == s.Root || n.Parent == nil {
		return false
	}
	if !n.Parent.RemoveChild(n) {
		return false
	}
	n.Traverse(func(gone *Node) {
		for _, fn := range s.removeListeners {
			fn(gone)
		}
	})
	return true
}

// Traverse visits every node.
func (s *Scene) Traverse(fn func(*Node)) {
	s.Root.Traverse(fn)
}

// Meshes returns every node that has primitives.
func (s *Scene) Meshes() []*Node {
	var out []*Node
	s.Traverse(func(n *Node) {
		if n.IsMesh() {
			out = append(out, n)
		}
	})
	return out
}

// FindByName returns the first node with the given name.
func (s *Scene) FindByName(name string) *Node {
	var found *Node
	s.Traverse(func(n *Node) {
		if found == nil && n.Name == name {
			found = n
		}
	})
	return found
}

// Bounds returns the world box enclosing all mesh geometry.
func (s *Scene) Bounds() picking.AABB {
	box := picking.EmptyAABB()
	s.Traverse(func(n *Node) {
		if n.IsMesh() {
			box = box.Union(n.WorldBounds())
		}
	})
	return box
}

// CenterAtOrigin shifts the root so the scene bounds are centered on the origin.
func (s *Scene) CenterAtOrigin() {
	box := s.Bounds()
	if box.IsEmpty() {
		return
	}
	s.Root.Position = s.Root.Position.Sub(box.Center())
}

// Raycast returns the nearest visible mesh hit along ray.
func (s *Scene) Raycast(ray picking.Ray) (Hit, bool) {
	best := Hit{Distance: float32(math.Inf(1))}
	found := false

	var visit func(n *Node)
	visit = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.IsMesh() {
			if d, ok := raycastNode(n, ray); ok && d < best.Distance {
				best = Hit{Node: n, Distance: d, Point: ray.At(d)}
				found = true
			}
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(s.Root)

	return best, found
}

func raycastNode(n *Node, ray picking.Ray) (float32, bool) {
	world := n.WorldMatrix()
	if _, ok := ray.IntersectAABB(n.WorldBounds()); !ok {
		return 0, false
	}

	local := ray.Transform(world.Inv())
	nearest := float32(math.Inf(1))
	hit := false
	for _, p := range n.Primitives {
		g := p.Geometry
		if g == nil || (p.Material != nil && !p.Material.Visible) {
			continue
		}
		for i := 0; i < g.TriangleCount(); i++ {
			a, b, c := g.Triangle(i)
			if d, ok := local.IntersectTriangle(a, b, c); ok && d < nearest {
				nearest = d
				hit = true
			}
		}
	}
	return nearest, hit
}

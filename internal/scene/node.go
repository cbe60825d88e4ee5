// Package scene holds the loaded model: a node hierarchy whose mesh nodes
// carry geometry and materials, plus helpers for bounds and ray queries.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/showroom/internal/engine/picking"
)

// Geometry is an indexed triangle list in node-local space.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
	Bounds    picking.AABB
}

// NewGeometry builds a geometry and computes its local bounds.
func NewGeometry(positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) *Geometry {
	g := &Geometry{Positions: positions, Normals: normals, UVs: uvs, Indices: indices}
	g.Bounds = picking.EmptyAABB()
	for _, p := range positions {
		g.Bounds = g.Bounds.Extend(p)
	}
	return g
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the corners of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c mgl32.Vec3) {
	if len(g.Indices) > 0 {
		return g.Positions[g.Indices[3*i]], g.Positions[g.Indices[3*i+1]], g.Positions[g.Indices[3*i+2]]
	}
	return g.Positions[3*i], g.Positions[3*i+1], g.Positions[3*i+2]
}

// Primitive pairs geometry with the material slot that shades it.
type Primitive struct {
	Geometry *Geometry
	Material *Material
}

// Node is one element of the hierarchy. A node with primitives is a mesh.
type Node struct {
	ID       uuid.UUID
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Parent   *Node
	Children []*Node

	Primitives    []*Primitive
	Visible       bool
	CastShadow    bool
	ReceiveShadow bool
}

// NewNode creates a node with an identity transform and a fresh identity key.
func NewNode(name string) *Node {
	return &Node{
		ID:       uuid.New(),
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
	}
}

// IsMesh reports whether the node has anything to draw.
func (n *Node) IsMesh() bool {
	return len(n.Primitives) > 0
}

// AddChild attaches c under n, detaching it from a previous parent.
func (n *Node) AddChild(c *Node) {
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	c.Parent = n
	n.Children = append(n.Children, c)
}

// RemoveChild detaches c from n. It reports whether c was a child.
func (n *Node) RemoveChild(c *Node) bool {
	for i, child := range n.Children {
		if child == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.Parent = nil
			return true
		}
	}
	return false
}

// Traverse visits n and all descendants depth-first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Materials returns the material of every primitive, in slot order.
func (n *Node) Materials() []*Material {
	out := make([]*Material, len(n.Primitives))
	for i, p := range n.Primitives {
		out[i] = p.Material
	}
	return out
}

// SetMaterials replaces slot materials in order. Extra entries are ignored.
func (n *Node) SetMaterials(mats []*Material) {
	for i, p := range n.Primitives {
		if i < len(mats) {
			p.Material = mats[i]
		}
	}
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := n.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix composes local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// SetWorldPosition moves the node so its origin lands on p in world space.
// Rotation and scale are untouched.
func (n *Node) SetWorldPosition(p mgl32.Vec3) {
	if n.Parent == nil {
		n.Position = p
		return
	}
	inv := n.Parent.WorldMatrix().Inv()
	n.Position = mgl32.TransformCoordinate(p, inv)
}

// WorldBounds returns the world box of the node's own geometry.
func (n *Node) WorldBounds() picking.AABB {
	local := picking.EmptyAABB()
	for _, p := range n.Primitives {
		if p.Geometry != nil {
			local = local.Union(p.Geometry.Bounds)
		}
	}
	return local.Transform(n.WorldMatrix())
}

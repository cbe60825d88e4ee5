package renderer

import (
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/scene"
)

// drawItem is one primitive ready to draw.
type drawItem struct {
	node  *scene.Node
	prim  *scene.Primitive
	world mgl32.Mat4
	depth float32 // squared distance from the eye to the primitive center
}

// buildQueue collects visible primitives. Opaque items keep scene order;
// translucent items are sorted back to front.
func buildQueue(s *scene.Scene, eye mgl32.Vec3) (opaque, translucent []drawItem) {
	if s == nil || s.Root == nil {
		return nil, nil
	}
	var walk func(n *scene.Node, parent mgl32.Mat4)
	walk = func(n *scene.Node, parent mgl32.Mat4) {
		if !n.Visible {
			return
		}
		world := parent.Mul4(n.LocalMatrix())
		for _, p := range n.Primitives {
			if p.Geometry == nil || p.Material == nil || !p.Material.Visible {
				continue
			}
			center := p.Geometry.Bounds.Transform(world).Center()
			item := drawItem{node: n, prim: p, world: world, depth: center.Sub(eye).LenSqr()}
			if p.Material.IsTranslucent() {
				translucent = append(translucent, item)
			} else {
				opaque = append(opaque, item)
			}
		}
		for _, c := range n.Children {
			walk(c, world)
		}
	}
	walk(s.Root, mgl32.Ident4())

	sort.SliceStable(translucent, func(i, j int) bool {
		return translucent[i].depth > translucent[j].depth
	})
	return opaque, translucent
}

// cullFor returns whether face culling is enabled for side and which face
// is discarded.
func cullFor(side scene.Side) (enabled bool, face uint32) {
	switch side {
	case scene.BackSide:
		return true, gl.FRONT
	case scene.DoubleSide:
		return false, gl.BACK
	default:
		return true, gl.BACK
	}
}

// normalMatrix returns the inverse transpose of the upper 3x3 of m.
func normalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	n := m.Mat3()
	if n.Det() == 0 {
		return mgl32.Ident3()
	}
	return n.Inv().Transpose()
}

// interleave packs position, normal and uv per vertex. Missing attributes
// are zero-filled.
func interleave(g *scene.Geometry) []float32 {
	out := make([]float32, 0, len(g.Positions)*vertexFloats)
	for i, p := range g.Positions {
		var n mgl32.Vec3
		if i < len(g.Normals) {
			n = g.Normals[i]
		}
		var uv mgl32.Vec2
		if i < len(g.UVs) {
			uv = g.UVs[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

const vertexFloats = 8

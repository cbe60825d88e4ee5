package interaction

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/showroom/internal/scene"
)

// Highlighter swaps a node's materials for tinted clones and back.
// Originals are kept in a side table keyed by node identity, captured the
// first time a node is highlighted.
type Highlighter struct {
	Emissive  mgl32.Vec3
	Intensity float32

	originals map[uuid.UUID][]*scene.Material
	lit       map[uuid.UUID]bool
}

// NewHighlighter returns a highlighter with a subtle grey glow.
func NewHighlighter() *Highlighter {
	const grey = float32(0x44) / 255
	return &Highlighter{
		Emissive:  mgl32.Vec3{grey, grey, grey},
		Intensity: 0.3,
		originals: make(map[uuid.UUID][]*scene.Material),
		lit:       make(map[uuid.UUID]bool),
	}
}

// Highlight tints n. It does nothing if n is already highlighted or is not a mesh.
func (h *Highlighter) Highlight(n *scene.Node) {
	if n == nil || !n.IsMesh() || h.lit[n.ID] {
		return
	}
	current := n.Materials()
	if _, ok := h.originals[n.ID]; !ok {
		h.originals[n.ID] = current
	}

	tinted := make([]*scene.Material, len(current))
	for i, m := range current {
		if m == nil {
			continue
		}
		c := m.Clone()
		c.Emissive = h.Emissive
		c.EmissiveIntensity = h.Intensity
		tinted[i] = c
	}
	n.SetMaterials(tinted)
	h.lit[n.ID] = true
}

// Unhighlight restores the captured original materials of n.
func (h *Highlighter) Unhighlight(n *scene.Node) {
	if n == nil {
		return
	}
	if orig, ok := h.originals[n.ID]; ok {
		n.SetMaterials(orig)
	}
	delete(h.lit, n.ID)
}

// IsHighlighted reports whether n currently shows the tint.
func (h *Highlighter) IsHighlighted(n *scene.Node) bool {
	return n != nil && h.lit[n.ID]
}

// Original returns the captured materials of n.
func (h *Highlighter) Original(n *scene.Node) ([]*scene.Material, bool) {
	m, ok := h.originals[n.ID]
	return m, ok
}

// Forget drops every entry for id. Call it when the node leaves the scene.
func (h *Highlighter) Forget(id uuid.UUID) {
	delete(h.originals, id)
	delete(h.lit, id)
}

// Len returns the number of side-table entries.
func (h *Highlighter) Len() int {
	return len(h.originals)
}

// RangeOriginals calls fn for every captured original material.
func (h *Highlighter) RangeOriginals(fn func(*scene.Material)) {
	for _, mats := range h.originals {
		for _, m := range mats {
			if m != nil {
				fn(m)
			}
		}
	}
}

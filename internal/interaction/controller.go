// Package interaction implements hover highlighting and drag-to-move for
// meshes once the intro has handed control to the user.
package interaction

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/engine/picking"
	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/scene"
)

// Cursor is the pointer affordance the host should display.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorGrabbing
)

// Camera provides picking rays and the view direction.
type Camera interface {
	Ray(x, y, width, height float32) picking.Ray
	Direction() mgl32.Vec3
}

// Controls is the manual orbit control that dragging suspends.
type Controls interface {
	SetEnabled(bool)
}

// Controller is the hover/drag state machine.
// It is driven from the frame loop and is not safe for concurrent use.
type Controller struct {
	camera   Camera
	controls Controls
	active   func() bool

	scene     *scene.Scene
	highlight *Highlighter

	hovered   *scene.Node
	selected  *scene.Node
	dragging  bool
	plane     picking.Plane
	offset    mgl32.Vec3
	suspended bool
	cursor    Cursor
}

// NewController creates a controller. active reports whether pointer
// interaction is currently allowed.
func NewController(camera Camera, controls Controls, active func() bool) *Controller {
	return &Controller{
		camera:    camera,
		controls:  controls,
		active:    active,
		highlight: NewHighlighter(),
	}
}

// Attach binds the loaded scene. Nodes removed from it are dropped from the
// highlight side table.
func (c *Controller) Attach(s *scene.Scene) {
	c.scene = s
	s.OnRemove(c.forget)
}

// Highlighter exposes the side table.
func (c *Controller) Highlighter() *Highlighter { return c.highlight }

// Hovered returns the node under the pointer, if any.
func (c *Controller) Hovered() *scene.Node { return c.hovered }

// Selected returns the last pressed node, if any.
func (c *Controller) Selected() *scene.Node { return c.selected }

// Dragging reports whether a drag gesture is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// DragPlane returns the plane fixed at drag start.
func (c *Controller) DragPlane() picking.Plane { return c.plane }

// Cursor returns the affordance to display.
func (c *Controller) Cursor() Cursor { return c.cursor }

// PointerMove handles a pointer move to pixel (x, y) of a width x height viewport.
func (c *Controller) PointerMove(x, y, width, height float32) {
	if c.scene == nil {
		return
	}

	if c.dragging && c.selected != nil {
		ray := c.camera.Ray(x, y, width, height)
		if p, ok := ray.IntersectPlane(c.plane); ok {
			c.selected.SetWorldPosition(p.Sub(c.offset))
		}
		return
	}

	if !c.active() {
		if c.hovered != nil {
			if c.hovered != c.selected {
				c.highlight.Unhighlight(c.hovered)
			}
			c.hovered = nil
			c.cursor = CursorDefault
		}
		return
	}

	var target *scene.Node
	if hit, ok := c.scene.Raycast(c.camera.Ray(x, y, width, height)); ok {
		target = hit.Node
	}

	if target != nil && target == c.hovered {
		c.cursor = CursorPointer
		return
	}
	if c.hovered != nil && c.hovered != c.selected {
		c.highlight.Unhighlight(c.hovered)
	}
	c.hovered = nil

	if target == nil {
		c.cursor = CursorDefault
		return
	}

	if target != c.selected && c.selected != nil {
		c.highlight.Unhighlight(c.selected)
		c.selected = nil
	}
	c.hovered = target
	c.highlight.Highlight(target)
	c.cursor = CursorPointer
}

// PointerDown handles a primary button press.
func (c *Controller) PointerDown(x, y, width, height float32) {
	if c.scene == nil || !c.active() {
		return
	}

	hit, ok := c.scene.Raycast(c.camera.Ray(x, y, width, height))
	if !ok {
		return
	}

	// A miss leaves the press to the orbit controls.
	c.controls.SetEnabled(false)
	c.suspended = true

	node := hit.Node
	if c.selected != nil && c.selected != node {
		c.highlight.Unhighlight(c.selected)
	}
	if c.hovered != nil && c.hovered != node {
		c.highlight.Unhighlight(c.hovered)
	}
	c.selected = node
	c.hovered = node
	c.dragging = true

	pos := node.WorldPosition()
	c.plane = picking.PlaneFromNormalAndPoint(c.camera.Direction(), pos)
	c.offset = hit.Point.Sub(pos)

	c.highlight.Highlight(node)
	c.cursor = CursorGrabbing
}

// PointerUp ends a drag and gives orbit control back.
// The dragged node stays highlighted as the selection marker.
func (c *Controller) PointerUp() {
	if c.dragging {
		c.dragging = false
		if c.selected != nil {
			p := c.selected.Position
			logger.Named("interaction").Info("mesh moved",
				zap.String("name", nodeName(c.selected)),
				zap.Float32("x", p[0]), zap.Float32("y", p[1]), zap.Float32("z", p[2]))
		}
	}
	if c.suspended {
		c.controls.SetEnabled(true)
		c.suspended = false
	}
	if c.hovered != nil {
		c.cursor = CursorPointer
	} else {
		c.cursor = CursorDefault
	}
}

// PointerLeave behaves like PointerUp.
func (c *Controller) PointerLeave() {
	c.PointerUp()
}

// ClearSelection removes the persistent selection marker.
func (c *Controller) ClearSelection() {
	if c.selected == nil || c.dragging {
		return
	}
	c.highlight.Unhighlight(c.selected)
	if c.hovered == c.selected {
		c.hovered = nil
		c.cursor = CursorDefault
	}
	c.selected = nil
}

func (c *Controller) forget(n *scene.Node) {
	c.highlight.Forget(n.ID)
	if c.hovered == n {
		c.hovered = nil
	}
	if c.selected == n {
		c.selected = nil
		c.dragging = false
	}
}

func nodeName(n *scene.Node) string {
	if n.Name == "" {
		return "unnamed"
	}
	return n.Name
}

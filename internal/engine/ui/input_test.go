package ui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	events []string
}

func (r *recorder) PointerMove(x, y, w, h float32) {
	r.events = append(r.events, fmt.Sprintf("move %.0f,%.0f", x, y))
}
func (r *recorder) PointerDown(x, y, w, h float32) {
	r.events = append(r.events, fmt.Sprintf("down %.0f,%.0f", x, y))
}
func (r *recorder) PointerUp()    { r.events = append(r.events, "up") }
func (r *recorder) PointerLeave() { r.events = append(r.events, "leave") }
func (r *recorder) HandleDrag(dx, dy float32) {
	r.events = append(r.events, fmt.Sprintf("orbit %.0f,%.0f", dx, dy))
}
func (r *recorder) HandleZoom(d float32) { r.events = append(r.events, fmt.Sprintf("zoom %.0f", d)) }
func (r *recorder) HandlePan(dx, dy, h float32) {
	r.events = append(r.events, fmt.Sprintf("pan %.0f,%.0f", dx, dy))
}

type frame struct {
	x, y        float32
	left, right bool
	wheel       float32
	captured    bool
}

func drive(frames ...frame) []string {
	var (
		in  InputState
		rt  router
		rec recorder
	)
	for _, f := range frames {
		in.MouseX, in.MouseY = f.x, f.y
		in.MouseLeftDown, in.MouseRightDown = f.left, f.right
		in.ScrollY = f.wheel
		in.Captured = f.captured
		in.Update()
		rt.route(&in, 800, 600, &rec, &rec)
	}
	return rec.events
}

func TestInputEdges(t *testing.T) {
	var in InputState
	in.MouseX, in.MouseY = 10, 10
	in.Update()
	assert.False(t, in.Moved(), "first frame has no delta")

	in.MouseX, in.MouseLeftDown = 15, true
	in.Update()
	assert.True(t, in.MouseLeftPressed)
	assert.Equal(t, float32(5), in.MouseDeltaX)

	in.Update()
	assert.False(t, in.MouseLeftPressed)
	assert.False(t, in.Moved())

	in.MouseLeftDown = false
	in.Update()
	assert.True(t, in.MouseLeftReleased)
}

func TestRouteClickDrag(t *testing.T) {
	events := drive(
		frame{x: 100, y: 100},
		frame{x: 100, y: 100, left: true},
		frame{x: 110, y: 105, left: true},
		frame{x: 110, y: 105},
	)
	assert.Equal(t, []string{
		"move 100,100",
		"down 100,100",
		"move 110,105",
		"orbit 10,5",
		"up",
	}, events)
}

func TestRouteCapturedByOverlay(t *testing.T) {
	events := drive(
		frame{x: 100, y: 100},
		frame{x: 700, y: 50, captured: true},
		frame{x: 700, y: 50, left: true, captured: true},
		frame{x: 650, y: 50, left: true, captured: true},
		frame{x: 650, y: 50, captured: true},
	)
	assert.Equal(t, []string{"move 100,100", "leave"}, events)
}

func TestRouteGestureSurvivesOverlay(t *testing.T) {
	events := drive(
		frame{x: 100, y: 100},
		frame{x: 100, y: 100, left: true},
		frame{x: 700, y: 50, left: true, captured: true},
		frame{x: 700, y: 50, captured: true},
	)
	assert.Equal(t, []string{
		"move 100,100",
		"down 100,100",
		"move 700,50",
		"orbit 600,-50",
		"up",
	}, events)
}

func TestRoutePanAndZoom(t *testing.T) {
	events := drive(
		frame{x: 100, y: 100},
		frame{x: 100, y: 100, right: true},
		frame{x: 90, y: 100, right: true},
		frame{x: 90, y: 100, wheel: 1},
	)
	assert.Equal(t, []string{
		"move 100,100",
		"move 90,100",
		"pan -10,0",
		"zoom 1",
	}, events)
}

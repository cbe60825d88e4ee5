package ui

// InputState holds the mouse state for one frame.
type InputState struct {
	MouseX      float32
	MouseY      float32
	MouseDeltaX float32
	MouseDeltaY float32

	// Mouse buttons (current frame)
	MouseLeftDown  bool
	MouseRightDown bool

	// Mouse buttons (pressed / released this frame)
	MouseLeftPressed   bool
	MouseLeftReleased  bool
	MouseRightPressed  bool
	MouseRightReleased bool

	ScrollY float32

	// Captured is set when the overlay wants the mouse.
	Captured bool

	prevMouseLeft  bool
	prevMouseRight bool
	prevMouseX     float32
	prevMouseY     float32
	primed         bool
}

// Update derives deltas and button edges from the raw values.
// Call it once per frame after setting them.
func (i *InputState) Update() {
	if i.primed {
		i.MouseDeltaX = i.MouseX - i.prevMouseX
		i.MouseDeltaY = i.MouseY - i.prevMouseY
	}
	i.primed = true

	i.MouseLeftPressed = i.MouseLeftDown && !i.prevMouseLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevMouseLeft
	i.MouseRightPressed = i.MouseRightDown && !i.prevMouseRight
	i.MouseRightReleased = !i.MouseRightDown && i.prevMouseRight

	i.prevMouseLeft = i.MouseLeftDown
	i.prevMouseRight = i.MouseRightDown
	i.prevMouseX = i.MouseX
	i.prevMouseY = i.MouseY
}

// Moved reports whether the pointer moved since the last frame.
func (i *InputState) Moved() bool {
	return i.MouseDeltaX != 0 || i.MouseDeltaY != 0
}

// PointerTarget receives viewport pointer events.
type PointerTarget interface {
	PointerMove(x, y, width, height float32)
	PointerDown(x, y, width, height float32)
	PointerUp()
	PointerLeave()
}

// OrbitTarget receives camera navigation input.
type OrbitTarget interface {
	HandleDrag(deltaX, deltaY float32)
	HandleZoom(delta float32)
	HandlePan(deltaX, deltaY, viewportHeight float32)
}

// router forwards viewport input. A gesture that starts over the viewport
// keeps receiving events until its button is released, even if the
// pointer crosses the overlay.
type router struct {
	owned  bool // a gesture began over the viewport
	inside bool // last move was delivered to the viewport
}

func (r *router) route(in *InputState, width, height float32, ptr PointerTarget, orbit OrbitTarget) {
	gesture := in.MouseLeftDown || in.MouseRightDown || in.MouseLeftReleased || in.MouseRightReleased
	if in.Captured && !(r.owned && gesture) {
		if r.inside {
			ptr.PointerLeave()
			r.inside = false
		}
		r.owned = false
		return
	}

	if in.Moved() || !r.inside {
		ptr.PointerMove(in.MouseX, in.MouseY, width, height)
		r.inside = true
	}

	if in.MouseLeftPressed {
		r.owned = true
		ptr.PointerDown(in.MouseX, in.MouseY, width, height)
	}
	if in.MouseRightPressed {
		r.owned = true
	}

	if r.owned && in.MouseLeftDown && !in.MouseLeftPressed && in.Moved() {
		orbit.HandleDrag(in.MouseDeltaX, in.MouseDeltaY)
	}
	if r.owned && in.MouseRightDown && !in.MouseRightPressed && in.Moved() {
		orbit.HandlePan(in.MouseDeltaX, in.MouseDeltaY, height)
	}

	if r.owned && in.MouseLeftReleased {
		ptr.PointerUp()
	}
	if !in.MouseLeftDown && !in.MouseRightDown {
		r.owned = false
	}

	if in.ScrollY != 0 {
		orbit.HandleZoom(in.ScrollY)
	}
}

package ui

import (
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/engine/debug"
	"github.com/Faultbox/showroom/internal/engine/framebuffer"
	"github.com/Faultbox/showroom/internal/engine/renderer"
	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/remote"
	"github.com/Faultbox/showroom/internal/viewer"
)

// CommandSource delivers queued remote commands on the frame loop.
type CommandSource interface {
	Drain(t remote.Target) int
}

// Host is the per-frame driver: it feeds input to the session, renders the
// scene offscreen and draws the overlay on top.
type Host struct {
	log      *zap.Logger
	session  *viewer.Session
	renderer *renderer.Renderer
	fb       *framebuffer.Framebuffer
	commands CommandSource
	shots    *debug.Screenshots

	input  InputState
	router router
	last   time.Time

	screenshotRequested bool
	status              string
	statusTime          time.Time
}

// NewHost wires a session to the renderer. commands and shots may be nil.
func NewHost(s *viewer.Session, r *renderer.Renderer, commands CommandSource, shots *debug.Screenshots) *Host {
	return &Host{
		log:      logger.Named("ui"),
		session:  s,
		renderer: r,
		commands: commands,
		shots:    shots,
	}
}

// Close releases the offscreen target.
func (h *Host) Close() {
	if h.fb != nil {
		h.fb.Destroy()
		h.fb = nil
	}
}

// Frame runs one iteration of the main loop. Pass it to Backend.Run.
func (h *Host) Frame() {
	now := time.Now()
	var dt time.Duration
	if !h.last.IsZero() {
		dt = now.Sub(h.last)
	}
	h.last = now

	if h.commands != nil {
		h.commands.Drain(h.session)
	}
	h.handleKeys()

	x, y, w, ht := Viewport()
	ReadInput(&h.input)
	h.input.MouseX -= x
	h.input.MouseY -= y
	h.router.route(&h.input, w, ht, h.session.Pointer, h.session.Controls)
	if !h.input.Captured {
		SetCursor(h.session.Pointer.Cursor())
	}

	h.session.Update(dt)

	if h.session.LoadError() == nil {
		if tex := h.renderScene(w, ht); tex != 0 {
			DrawSceneTexture(x, y, w, ht, tex)
		}
	}

	h.drawPanel(x, y, w)
	h.drawOverlay(x, y, w, ht)
	h.drawStatus(x, y, ht)
}

func (h *Host) handleKeys() {
	if imgui.IsAnyItemActive() {
		return
	}
	if IsKeyPressed(imgui.KeyEscape) {
		h.session.Pointer.ClearSelection()
	}
	// F12 = screenshot of the next rendered scene.
	if IsKeyPressed(imgui.KeyF12) && h.shots != nil {
		h.screenshotRequested = true
	}
}

// renderScene draws into the offscreen target sized to the viewport in
// framebuffer pixels and returns its color texture.
func (h *Host) renderScene(w, ht float32) uint32 {
	sx, sy := FramebufferScale()
	pw, ph := int32(w*sx), int32(ht*sy)
	if pw <= 0 || ph <= 0 {
		return 0
	}

	if h.fb == nil {
		fb, err := framebuffer.New(pw, ph)
		if err != nil {
			h.log.Error("offscreen target", zap.Error(err))
			return 0
		}
		h.fb = fb
		h.session.Resize(int(pw), int(ph))
	} else if cw, ch := h.fb.Size(); cw != pw || ch != ph {
		h.fb.Resize(pw, ph)
		h.session.Resize(int(pw), int(ph))
	}

	frame := renderer.Frame{
		Scene:       h.session.Scene(),
		Camera:      h.session.Camera,
		Lights:      &h.session.Lights,
		Environment: h.session.Environment(),
		Background:  h.session.Background(),
		Exposure:    h.session.Params().Exposure,
	}
	if sel := h.session.Pointer.Selected(); sel != nil {
		b := sel.WorldBounds()
		frame.Selection = &b
	}

	restore := h.fb.Bind()
	h.renderer.Render(frame)
	if h.screenshotRequested {
		h.screenshotRequested = false
		h.saveScreenshot()
	}
	restore()

	return h.fb.ColorTexture()
}

func (h *Host) saveScreenshot() {
	path, err := h.shots.Save(h.fb.Snapshot())
	if err != nil {
		h.log.Error("screenshot failed", zap.Error(err))
		h.setStatus("Screenshot failed: " + err.Error())
		return
	}
	h.log.Info("screenshot saved", zap.String("path", path))
	h.setStatus("Screenshot saved: " + path)
}

func (h *Host) setStatus(msg string) {
	h.status = msg
	h.statusTime = time.Now()
}

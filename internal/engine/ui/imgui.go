// Package ui hosts the viewer in an ImGui window: the rendered scene as the
// background, the settings panel and the loader overlay.
package ui

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/showroom/internal/interaction"
)

// fontPaths are tried in order; the ImGui default font is used if none exist.
var fontPaths = []string{
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
	"C:\\Windows\\Fonts\\segoeui.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
}

// Backend wraps the ImGui SDL backend.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
}

// NewBackend creates the window and initializes OpenGL.
func NewBackend(title string, width, height int, bg [3]float32) (*Backend, error) {
	b := &Backend{}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	b.backend.SetAfterCreateContextHook(loadFont)
	b.backend.SetBgColor(imgui.NewVec4(bg[0], bg[1], bg[2], 1.0))
	b.backend.CreateWindow(title, width, height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	return b, nil
}

func loadFont() {
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		fontCfg := imgui.NewFontConfig()
		defer fontCfg.Destroy()
		imgui.CurrentIO().Fonts().AddFontFromFileTTFV(path, 16.0, fontCfg, nil)
		return
	}
}

// Run starts the main render loop.
func (b *Backend) Run(renderFunc func()) {
	b.backend.Run(renderFunc)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// Viewport returns the main viewport work area.
func Viewport() (posX, posY, width, height float32) {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()
	return workPos.X, workPos.Y, workSize.X, workSize.Y
}

// FramebufferScale returns the ratio of framebuffer pixels to window units.
func FramebufferScale() (float32, float32) {
	s := imgui.CurrentIO().DisplayFramebufferScale()
	if s.X <= 0 || s.Y <= 0 {
		return 1, 1
	}
	return s.X, s.Y
}

// IsKeyPressed checks if a key was pressed this frame.
func IsKeyPressed(key imgui.Key) bool {
	return imgui.IsKeyChordPressed(imgui.KeyChord(key))
}

// ReadInput fills in from the ImGui IO state.
func ReadInput(in *InputState) {
	io := imgui.CurrentIO()
	mousePos := imgui.MousePos()

	in.MouseX = mousePos.X
	in.MouseY = mousePos.Y
	in.MouseLeftDown = imgui.IsMouseDown(imgui.MouseButtonLeft)
	in.MouseRightDown = imgui.IsMouseDown(imgui.MouseButtonRight) || imgui.IsMouseDown(imgui.MouseButtonMiddle)
	in.ScrollY = io.MouseWheel()
	in.Captured = io.WantCaptureMouse()
	in.Update()
}

// SetCursor shows the pointer shape requested by the interaction controller.
func SetCursor(c interaction.Cursor) {
	imgui.SetMouseCursor(mouseCursor(c))
}

func mouseCursor(c interaction.Cursor) imgui.MouseCursor {
	switch c {
	case interaction.CursorPointer:
		return imgui.MouseCursorHand
	case interaction.CursorGrabbing:
		return imgui.MouseCursorResizeAll
	default:
		return imgui.MouseCursorArrow
	}
}

// DrawSceneTexture draws the rendered scene behind every window. The image
// takes no input so the mouse stays with the viewport.
func DrawSceneTexture(x, y, w, h float32, textureID uint32) {
	if textureID == 0 {
		return
	}

	imgui.SetNextWindowPos(imgui.NewVec2(x, y))
	imgui.SetNextWindowSize(imgui.NewVec2(w, h))

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoScrollWithMouse | imgui.WindowFlagsNoBringToFrontOnFocus |
		imgui.WindowFlagsNoInputs | imgui.WindowFlagsNoBackground

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(0, 0))
	if imgui.BeginV("##SceneBackground", nil, flags) {
		texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
		imgui.ImageV(*texRef,
			imgui.NewVec2(w, h),
			imgui.NewVec2(0, 1), // UV flipped
			imgui.NewVec2(1, 0))
	}
	imgui.End()
	imgui.PopStyleVar()
}

// centerText renders centered text.
func centerText(text string) {
	textSize := imgui.CalcTextSize(text)
	windowWidth := imgui.ContentRegionAvail().X
	cursorX := (windowWidth - textSize.X) / 2
	if cursorX > 0 {
		imgui.SetCursorPosX(imgui.CursorPosX() + cursorX)
	}
	imgui.Text(text)
}

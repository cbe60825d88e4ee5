package ui

import (
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/viewer"
)

const (
	panelWidth   = float32(320)
	panelMargin  = float32(10)
	statusExpiry = 3 * time.Second
)

// drawPanel renders the settings window in the top-right corner.
func (h *Host) drawPanel(x, y, w float32) {
	imgui.SetNextWindowPos(imgui.NewVec2(x+w-panelWidth-panelMargin, y+panelMargin))
	imgui.SetNextWindowSize(imgui.NewVec2(panelWidth, 0))
	imgui.SetNextWindowBgAlpha(0.85)

	flags := imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove | imgui.WindowFlagsNoCollapse |
		imgui.WindowFlagsAlwaysAutoResize
	if imgui.BeginV("Settings", nil, flags) {
		h.renderSliders()

		imgui.Spacing()
		imgui.Separator()
		imgui.Spacing()

		if visible, enabled := h.session.PlayButton(); visible {
			imgui.BeginDisabledV(!enabled)
			if imgui.ButtonV("Play Animation", imgui.NewVec2(-1, 30)) {
				h.session.StartAnimation(false)
			}
			imgui.EndDisabled()
		}

		if imgui.ButtonV("Save settings", imgui.NewVec2(-1, 0)) {
			if err := h.session.SaveSettings(); err != nil {
				h.log.Error("saving settings", zap.Error(err))
				h.setStatus("Save failed: " + err.Error())
			} else {
				h.setStatus("Settings saved")
			}
		}

		imgui.Spacing()
		imgui.TextDisabled("State: " + h.session.Intro.State().String())
		if sel := h.session.Pointer.Selected(); sel != nil {
			imgui.TextDisabled("Selected: " + sel.Name)
		}
	}
	imgui.End()
}

func (h *Host) renderSliders() {
	params := h.session.Params()
	for _, p := range viewer.Sliders {
		info := p.Info()
		v := params.Get(p)
		imgui.Text(info.Label)
		imgui.SetNextItemWidth(-1)
		if imgui.SliderFloatV("##"+info.Label, &v, info.Min, info.Max, "%.2f", imgui.SliderFlagsNone) {
			h.session.SetParam(p, v)
		}
	}
}

// drawOverlay renders the loader while the scene is pending and the error
// text if it failed.
func (h *Host) drawOverlay(x, y, w, ht float32) {
	if err := h.session.LoadError(); err != nil {
		h.centeredWindow("##LoadError", x, y, w, ht, func() {
			imgui.TextColored(imgui.NewVec4(1, 0.3, 0.3, 1), "Failed to load 3D model")
			imgui.TextWrapped(err.Error())
		})
		return
	}

	text, visible := h.session.Loading()
	if !visible {
		return
	}
	h.centeredWindow("##Loader", x, y, w, ht, func() {
		centerText(text)
	})
}

func (h *Host) centeredWindow(id string, x, y, w, ht float32, body func()) {
	const width = float32(360)
	imgui.SetNextWindowPos(imgui.NewVec2(x+(w-width)/2, y+ht/2-30))
	imgui.SetNextWindowSize(imgui.NewVec2(width, 0))
	imgui.SetNextWindowBgAlpha(0.85)

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsNoCollapse | imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing
	if imgui.BeginV(id, nil, flags) {
		imgui.Spacing()
		body()
		imgui.Spacing()
	}
	imgui.End()
}

// drawStatus shows the last status message for a few seconds.
func (h *Host) drawStatus(x, y, ht float32) {
	if h.status == "" || time.Since(h.statusTime) > statusExpiry {
		return
	}
	imgui.SetNextWindowPos(imgui.NewVec2(x+panelMargin, y+ht-50))
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsNoInputs | imgui.WindowFlagsAlwaysAutoResize
	if imgui.BeginV("##Status", nil, flags) {
		imgui.TextColored(imgui.NewVec4(0.2, 1.0, 0.2, 1.0), h.status)
	}
	imgui.End()
}

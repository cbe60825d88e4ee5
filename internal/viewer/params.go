package viewer

// Param identifies one of the slider-driven render parameters.
type Param int

const (
	Exposure Param = iota
	KeyLight
	AmbientLight
	Reflection
)

// ParamInfo describes a slider.
type ParamInfo struct {
	Label string
	Min   float32
	Max   float32
}

// Sliders lists the parameters in panel order.
var Sliders = []Param{Exposure, KeyLight, AmbientLight, Reflection}

var paramInfo = map[Param]ParamInfo{
	Exposure:     {Label: "HDR Intensity", Min: 0, Max: 3},
	KeyLight:     {Label: "Sun Intensity", Min: 0, Max: 5},
	AmbientLight: {Label: "Ambient Intensity", Min: 0, Max: 2},
	Reflection:   {Label: "Reflection Intensity", Min: 0, Max: 3},
}

// Info returns the slider description of p.
func (p Param) Info() ParamInfo { return paramInfo[p] }

// Params holds the current slider values.
type Params struct {
	Exposure     float32
	KeyLight     float32
	AmbientLight float32
	Reflection   float32
}

// Get returns the value of p.
func (ps *Params) Get(p Param) float32 {
	switch p {
	case Exposure:
		return ps.Exposure
	case KeyLight:
		return ps.KeyLight
	case AmbientLight:
		return ps.AmbientLight
	case Reflection:
		return ps.Reflection
	}
	return 0
}

func (ps *Params) set(p Param, v float32) {
	info := p.Info()
	v = min(max(v, info.Min), info.Max)
	switch p {
	case Exposure:
		ps.Exposure = v
	case KeyLight:
		ps.KeyLight = v
	case AmbientLight:
		ps.AmbientLight = v
	case Reflection:
		ps.Reflection = v
	}
}

package assets

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/animation"
)

func (b *modelBuilder) buildClips() []*animation.Clip {
	var clips []*animation.Clip
	for ai, anim := range b.doc.Animations {
		var channels []*animation.Channel
		for ci, ch := range anim.Channels {
			c, err := b.convertChannel(anim, ch)
			if err != nil {
				b.log.Warn("animation channel skipped",
					zap.Int("animation", ai), zap.Int("channel", ci), zap.Error(err))
				continue
			}
			if c != nil {
				channels = append(channels, c)
			}
		}
		if len(channels) == 0 {
			continue
		}
		name := anim.Name
		if name == "" {
			name = fmt.Sprintf("clip_%d", ai)
		}
		clips = append(clips, animation.NewClip(name, channels))
	}
	return clips
}

func (b *modelBuilder) convertChannel(anim *gltf.Animation, ch *gltf.AnimationChannel) (*animation.Channel, error) {
	if ch.Target.Node == nil || *ch.Target.Node >= len(b.nodes) {
		return nil, nil
	}
	if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
		return nil, fmt.Errorf("sampler %d out of range", ch.Sampler)
	}

	var path animation.Path
	switch ch.Target.Path {
	case gltf.TRSTranslation:
		path = animation.Translation
	case gltf.TRSRotation:
		path = animation.Rotation
	case gltf.TRSScale:
		path = animation.Scale
	default:
		// Morph weights are not animated.
		return nil, nil
	}

	s := anim.Samplers[ch.Sampler]
	in, err := modeler.ReadAccessor(b.doc, b.doc.Accessors[s.Input], nil)
	if err != nil {
		return nil, fmt.Errorf("reading key times: %w", err)
	}
	times, ok := in.([]float32)
	if !ok {
		return nil, fmt.Errorf("key times have type %T: %w", in, ErrUnsupported)
	}

	out, err := modeler.ReadAccessor(b.doc, b.doc.Accessors[s.Output], nil)
	if err != nil {
		return nil, fmt.Errorf("reading key values: %w", err)
	}
	values, err := flattenValues(out)
	if err != nil {
		return nil, err
	}

	interp := animation.Linear
	switch s.Interpolation {
	case gltf.InterpolationStep:
		interp = animation.Step
	case gltf.InterpolationCubicSpline:
		interp = animation.CubicSpline
	}

	return &animation.Channel{
		Node:          b.nodes[*ch.Target.Node],
		Path:          path,
		Interpolation: interp,
		Times:         times,
		Values:        values,
	}, nil
}

// flattenValues converts accessor output to floats, expanding normalized
// integer quaternions as glTF defines them.
func flattenValues(v any) ([]float32, error) {
	switch vals := v.(type) {
	case [][3]float32:
		out := make([]float32, 0, len(vals)*3)
		for _, e := range vals {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]float32:
		out := make([]float32, 0, len(vals)*4)
		for _, e := range vals {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]int8:
		return normalized(vals, func(x int8) float32 { return max(float32(x)/127, -1) }), nil
	case [][4]uint8:
		return normalized(vals, func(x uint8) float32 { return float32(x) / 255 }), nil
	case [][4]int16:
		return normalized(vals, func(x int16) float32 { return max(float32(x)/32767, -1) }), nil
	case [][4]uint16:
		return normalized(vals, func(x uint16) float32 { return float32(x) / 65535 }), nil
	}
	return nil, fmt.Errorf("key values have type %T: %w", v, ErrUnsupported)
}

func normalized[T int8 | uint8 | int16 | uint16](vals [][4]T, conv func(T) float32) []float32 {
	out := make([]float32, 0, len(vals)*4)
	for _, e := range vals {
		for _, x := range e {
			out = append(out, conv(x))
		}
	}
	return out
}

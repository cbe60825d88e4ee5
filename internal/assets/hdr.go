package assets

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
)

// Environment is an equirectangular radiance map in linear RGB floats.
type Environment struct {
	Width  int
	Height int
	Pixels []float32 // RGB, top row first
}

type hdrImage interface {
	HDRAt(x, y int) hdrcolor.Color
}

// DecodeHDR decodes a Radiance RGBE file.
func DecodeHDR(data []byte) (*Environment, error) {
	img, err := rgbe.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding hdr: %w", err)
	}
	return environmentFromImage(img), nil
}

func environmentFromImage(img image.Image) *Environment {
	r := img.Bounds()
	env := &Environment{
		Width:  r.Dx(),
		Height: r.Dy(),
		Pixels: make([]float32, 0, r.Dx()*r.Dy()*3),
	}

	hdr, isHDR := img.(hdrImage)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if isHDR {
				cr, cg, cb, _ := hdr.HDRAt(x, y).HDRRGBA()
				env.Pixels = append(env.Pixels, float32(cr), float32(cg), float32(cb))
				continue
			}
			cr, cg, cb, _ := img.At(x, y).RGBA()
			env.Pixels = append(env.Pixels, float32(cr)/0xffff, float32(cg)/0xffff, float32(cb)/0xffff)
		}
	}
	return env
}

// At returns the radiance at pixel (x, y), wrapping horizontally and
// clamping vertically.
func (e *Environment) At(x, y int) [3]float32 {
	if e.Width == 0 || e.Height == 0 {
		return [3]float32{}
	}
	x %= e.Width
	if x < 0 {
		x += e.Width
	}
	y = min(max(y, 0), e.Height-1)
	i := (y*e.Width + x) * 3
	return [3]float32{e.Pixels[i], e.Pixels[i+1], e.Pixels[i+2]}
}

// Sample returns the radiance seen along the unit direction d, using the
// usual equirectangular mapping with +Y up.
func (e *Environment) Sample(d [3]float32) [3]float32 {
	u := 0.5 + math.Atan2(float64(d[2]), float64(d[0]))/(2*math.Pi)
	v := math.Acos(math.Max(-1, math.Min(1, float64(d[1])))) / math.Pi
	return e.At(int(u*float64(e.Width)), int(v*float64(e.Height)))
}

// Average returns the mean radiance, used as the diffuse ambient term.
func (e *Environment) Average() [3]float32 {
	n := len(e.Pixels) / 3
	if n == 0 {
		return [3]float32{}
	}
	var sum [3]float64
	for i := 0; i < n; i++ {
		sum[0] += float64(e.Pixels[i*3])
		sum[1] += float64(e.Pixels[i*3+1])
		sum[2] += float64(e.Pixels[i*3+2])
	}
	return [3]float32{float32(sum[0] / float64(n)), float32(sum[1] / float64(n)), float32(sum[2] / float64(n))}
}

package assets

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentFromLDRImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(3, 1, color.RGBA{B: 255, A: 255})

	env := environmentFromImage(img)
	require.Equal(t, 4, env.Width)
	require.Equal(t, 2, env.Height)
	assert.Equal(t, [3]float32{1, 0, 0}, env.At(0, 0))
	assert.Equal(t, [3]float32{0, 0, 1}, env.At(3, 1))

	// Wraps horizontally, clamps vertically.
	assert.Equal(t, env.At(0, 0), env.At(4, -3))
	assert.Equal(t, env.At(3, 1), env.At(-1, 9))
}

func TestEnvironmentAverage(t *testing.T) {
	env := &Environment{Width: 2, Height: 1, Pixels: []float32{2, 0, 0, 0, 4, 0}}
	assert.Equal(t, [3]float32{1, 2, 0}, env.Average())
	assert.Equal(t, [3]float32{}, (&Environment{}).Average())
}

func TestEnvironmentSampleUp(t *testing.T) {
	env := &Environment{Width: 1, Height: 2, Pixels: []float32{5, 5, 5, 1, 1, 1}}
	assert.Equal(t, [3]float32{5, 5, 5}, env.Sample([3]float32{0, 1, 0}))
	assert.Equal(t, [3]float32{1, 1, 1}, env.Sample([3]float32{0, -1, 0}))
}

func TestDecodeHDRRejectsGarbage(t *testing.T) {
	_, err := DecodeHDR([]byte("not radiance"))
	assert.Error(t, err)
}

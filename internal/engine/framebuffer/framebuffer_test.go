package framebuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlipRows(t *testing.T) {
	// 1x2 image, bottom row red, top row blue.
	raw := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img := FlipRows(raw, 1, 2)

	top := img.RGBAAt(0, 0)
	bottom := img.RGBAAt(0, 1)
	assert.Equal(t, uint8(255), top.B)
	assert.Equal(t, uint8(255), bottom.R)
}

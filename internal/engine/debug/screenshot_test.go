package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshotsSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshots(dir, "showroom")
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	path, err := s.Save(img)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "showroom_2026-03-04_05-06-07.000.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	r, _, _, _ := decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(200)<<8|200, r)
}

func TestFilenameWithoutDir(t *testing.T) {
	s := NewScreenshots("", "x")
	assert.Equal(t, ".", filepath.Dir(s.Filename()))
}

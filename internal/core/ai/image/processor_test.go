package image

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func TestDownscaleLargePNG(t *testing.T) {
	p := NewProcessor(1024, 80)

	out, mime, err := p.Downscale(encodePNG(t, 2048, 1024))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestDownscalePortrait(t *testing.T) {
	p := NewProcessor(100, 80)

	out, _, err := p.Downscale(encodeJPEG(t, 50, 400))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestDownscaleSmallJPEGUnchanged(t *testing.T) {
	p := NewProcessor(1024, 80)
	in := encodeJPEG(t, 64, 48)

	out, mime, err := p.Downscale(in)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, in, out)
}

func TestDownscaleRejectsNonImage(t *testing.T) {
	p := NewProcessor(1024, 80)

	_, _, err := p.Downscale([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, _, err = p.Downscale(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestScaledSize(t *testing.T) {
	w, h := scaledSize(3000, 1, 1024)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1, h)
}

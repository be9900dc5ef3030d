package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail_FitsBoundingBox(t *testing.T) {
	data, err := Thumbnail(bytes.NewReader(pngImage(t, 1200, 600)), "image/png", 300)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestThumbnail_SmallImageUnchanged(t *testing.T) {
	data, err := Thumbnail(bytes.NewReader(pngImage(t, 100, 50)), "image/png", 300)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
}

func TestThumbnail_Errors(t *testing.T) {
	_, err := Thumbnail(strings.NewReader("%PDF-1.4"), "application/pdf", 300)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Thumbnail(strings.NewReader("not an image"), "image/png", 300)
	assert.Error(t, err)
}

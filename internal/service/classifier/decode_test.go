package classifier

import (
	"bytes"
	"image"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestDecode_JPEGAndPNG(t *testing.T) {
	img, format, err := Decode(bytes.NewReader(encodePNG(t, 30, 20)), 0)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil))
	_, format, err = Decode(bytes.NewReader(buf.Bytes()), 0)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestDecode_RejectsOversizedDimensions(t *testing.T) {
	data := encodePNG(t, 100, 100)

	_, _, err := Decode(bytes.NewReader(data), 100*100-1)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, _, err = Decode(bytes.NewReader(data), 100*100)
	assert.NoError(t, err, "exactly at the limit is accepted")
}

func TestDecode_RejectsOtherFormats(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("definitely not an image")), 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	// gif decodes fine once registered, but is not an accepted format.
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 4, 4), palette.Plan9), nil))
	_, format, err := Decode(bytes.NewReader(buf.Bytes()), 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "gif", format)
}

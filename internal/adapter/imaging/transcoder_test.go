package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskapp/internal/core/domain"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x % 256), A: 255})
	}

	assert.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	assert.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()

	img, format, err := image.Decode(bytes.NewReader(data))
	assert.NoError(t, err)

	return img.Bounds().Dx(), img.Bounds().Dy(), format
}

func TestNormalize_PNGBecomesSquarePNG(t *testing.T) {
	transcoder := NewTranscoder()

	out, err := transcoder.Normalize(encodePNG(t, 400, 300))

	assert.NoError(t, err)

	width, height, format := decodeSize(t, out)

	assert.Equal(t, 250, width)
	assert.Equal(t, 250, height)
	assert.Equal(t, "png", format)
}

func TestNormalize_JPEGBecomesPNG(t *testing.T) {
	transcoder := NewTranscoder()

	out, err := transcoder.Normalize(encodeJPEG(t, 100, 600))

	assert.NoError(t, err)

	width, height, format := decodeSize(t, out)

	assert.Equal(t, 250, width)
	assert.Equal(t, 250, height)
	assert.Equal(t, "png", format)
}

func TestNormalize_UpscalesSmallImages(t *testing.T) {
	transcoder := NewTranscoder()

	out, err := transcoder.Normalize(encodePNG(t, 10, 10))

	assert.NoError(t, err)

	width, height, _ := decodeSize(t, out)

	assert.Equal(t, 250, width)
	assert.Equal(t, 250, height)
}

func TestNormalize_RejectsNonImage(t *testing.T) {
	transcoder := NewTranscoder()

	_, err := transcoder.Normalize([]byte("definitely not an image"))

	assert.True(t, domain.IsValidation(err))

	var validationErr *domain.ValidationError

	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Please upload image document", validationErr.Violations[0].Message)
}

func TestNormalize_RejectsRenamedTextFile(t *testing.T) {
	transcoder := NewTranscoder()

	// A GIF header: a real image type, just not an allowed one.
	_, err := transcoder.Normalize([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"))

	assert.True(t, domain.IsValidation(err))
}

func TestNormalize_RejectsOversizedUpload(t *testing.T) {
	transcoder := NewTranscoder()

	_, err := transcoder.Normalize(make([]byte, domain.AvatarMaxBytes+1))

	assert.True(t, domain.IsValidation(err))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", NewTranscoder().ContentType())
}

func TestCenterSquare(t *testing.T) {
	square := centerSquare(image.Rect(0, 0, 400, 300))

	assert.Equal(t, 300, square.Dx())
	assert.Equal(t, 300, square.Dy())
	assert.Equal(t, 50, square.Min.X)
	assert.Equal(t, 0, square.Min.Y)
}

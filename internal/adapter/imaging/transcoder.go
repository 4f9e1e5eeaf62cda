package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	"taskapp/internal/core/domain"
	"taskapp/internal/core/port"
)

const avatarSize = 250

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Transcoder normalizes uploaded avatars: any allow-listed source image
// becomes a 250x250 PNG, center-cropped to square before scaling.
type Transcoder struct{}

func NewTranscoder() port.AvatarTranscoder {
	return &Transcoder{}
}

func (t *Transcoder) ContentType() string {
	return "image/png"
}

func (t *Transcoder) Normalize(data []byte) ([]byte, error) {
	if len(data) > domain.AvatarMaxBytes {
		return nil, domain.NewValidationError(domain.FieldViolation{
			Field:   "avatar",
			Message: fmt.Sprintf("Avatar must be at most %d bytes", domain.AvatarMaxBytes),
		})
	}

	// Content sniffing, not the filename: an 11-byte text file renamed
	// to .png is still rejected.
	detected := mimetype.Detect(data)

	if !allowedTypes[detected.String()] {
		return nil, domain.NewValidationError(domain.FieldViolation{
			Field:   "avatar",
			Message: "Please upload image document",
		})
	}

	src, _, err := image.Decode(bytes.NewReader(data))

	if err != nil {
		return nil, domain.NewValidationError(domain.FieldViolation{
			Field:   "avatar",
			Message: "Please upload image document",
		})
	}

	dst := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer

	if err := png.Encode(&buf, dst); err != nil {
		return nil, &domain.DependencyError{Dependency: "avatar transcoder", Err: err}
	}

	return buf.Bytes(), nil
}

// centerSquare returns the largest centered square inside bounds, so the
// scale step never distorts the image.
func centerSquare(bounds image.Rectangle) image.Rectangle {
	width := bounds.Dx()
	height := bounds.Dy()

	side := width

	if height < side {
		side = height
	}

	x0 := bounds.Min.X + (width-side)/2
	y0 := bounds.Min.Y + (height-side)/2

	return image.Rect(x0, y0, x0+side, y0+side)
}

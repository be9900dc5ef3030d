package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
)

// DefaultThumbnailSize is the bounding box used when none is configured
const DefaultThumbnailSize uint = 300

// ErrUnsupportedFormat is returned for content types that are not JPEG or PNG
var ErrUnsupportedFormat = errors.New("unsupported image format")

// SupportsThumbnail reports whether a thumbnail can be generated for the content type
func SupportsThumbnail(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

// Thumbnail decodes a JPEG or PNG image and scales it to fit in a size x size box,
// keeping the aspect ratio. The result is encoded in the source format.
func Thumbnail(r io.Reader, contentType string, size uint) ([]byte, error) {
	if !SupportsThumbnail(contentType) {
		return nil, ErrUnsupportedFormat
	}
	if size == 0 {
		size = DefaultThumbnailSize
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := resize.Thumbnail(size, size, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, thumb)
	default:
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/webp"
)

var (
	// ErrImageTooLarge is returned when an upload exceeds the size cap.
	ErrImageTooLarge = errors.New("classifier: image too large")
	// ErrUnsupportedImage is returned for payloads that are not JPEG, PNG,
	// GIF or WebP images.
	ErrUnsupportedImage = errors.New("classifier: unsupported image")
)

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format      string
	ContentType string
	Width       int
	Height      int
	Size        int64
}

// HumanSize formats Size, e.g. "1.2 MiB".
func (i ImageInfo) HumanSize() string {
	return humanize.IBytes(uint64(i.Size))
}

// ValidateImage reads at most maxBytes from r and checks that the payload is
// a decodable image. It returns the bytes read so callers can forward them.
// A non-positive maxBytes disables the size cap.
func ValidateImage(r io.Reader, maxBytes int64) (ImageInfo, []byte, error) {
	if r == nil {
		return ImageInfo{}, nil, ErrMissingImage
	}

	reader := r
	if maxBytes > 0 {
		reader = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ImageInfo{}, nil, fmt.Errorf("classifier: read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return ImageInfo{}, nil, fmt.Errorf("%w: limit is %s", ErrImageTooLarge, humanize.IBytes(uint64(maxBytes)))
	}
	if len(data) == 0 {
		return ImageInfo{}, nil, fmt.Errorf("%w: empty payload", ErrUnsupportedImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, nil, fmt.Errorf("%w: empty dimensions", ErrUnsupportedImage)
	}

	return ImageInfo{
		Format:      format,
		ContentType: contentTypeFor(format, data),
		Width:       cfg.Width,
		Height:      cfg.Height,
		Size:        int64(len(data)),
	}, data, nil
}

func contentTypeFor(format string, data []byte) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return http.DetectContentType(data)
	}
}

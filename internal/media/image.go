package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 3840
	DefaultMaxBytes     = int64(5 * 1024 * 1024)
)

var (
	ErrEmptyImage       = errors.New("media: empty image data")
	ErrImageTooLarge    = errors.New("media: image exceeds size limit")
	ErrUnsupportedImage = errors.New("media: unsupported image format")
)

var formatContentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

type Limits struct {
	MaxBytes     int64
	MaxDimension int
}

// Image is an upload whose format was detected from its content rather than
// from client supplied headers.
type Image struct {
	Bytes       []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

func (i *Image) Reader() io.Reader { return bytes.NewReader(i.Bytes) }

func (i *Image) Size() int64 { return int64(len(i.Bytes)) }

// Inspect reads r fully (up to the byte limit) and decodes only the image
// header to learn format and dimensions.
func Inspect(r io.Reader, limits Limits) (*Image, error) {
	if r == nil {
		return nil, ErrEmptyImage
	}
	maxBytes := limits.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	maxDim := limits.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	contentType, ok := formatContentTypes[format]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if cfg.Width > maxDim || cfg.Height > maxDim {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrImageTooLarge, cfg.Width, cfg.Height, maxDim)
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	return &Image{
		Bytes:       data,
		ContentType: contentType,
		Extension:   ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

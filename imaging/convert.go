package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"mime"
	"strings"

	"github.com/raushankrgupta/product-page-generator/models"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedMedia is returned for payloads that are not images or cannot be converted
var ErrUnsupportedMedia = errors.New("unsupported media type")

// passthrough lists the formats the image model accepts as is
var passthrough = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Rasterizer renders an image the Go decoders cannot read into PNG
type Rasterizer interface {
	Rasterize(ctx context.Context, img models.InlineImage) (*models.InlineImage, error)
}

// Converter makes sure an image is in a format the image model accepts
type Converter struct {
	rasterizer Rasterizer
}

// NewConverter returns a converter; rasterizer may be nil
func NewConverter(rasterizer Rasterizer) *Converter {
	return &Converter{rasterizer: rasterizer}
}

// NormalizeMediaType lowercases the type and strips parameters
func NormalizeMediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return "image/jpeg"
	}
	return mt
}

// IsImage reports whether contentType names an image/* type
func IsImage(contentType string) bool {
	return strings.HasPrefix(NormalizeMediaType(contentType), "image/")
}

// Convert returns PNG, JPEG and WEBP unchanged and re-encodes everything else as PNG.
func (c *Converter) Convert(ctx context.Context, img models.InlineImage) (*models.InlineImage, error) {
	mt := NormalizeMediaType(img.MIMEType)
	if !strings.HasPrefix(mt, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, img.MIMEType)
	}
	if passthrough[mt] {
		return &models.InlineImage{MIMEType: mt, Data: img.Data}, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err == nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
		return &models.InlineImage{MIMEType: "image/png", Data: buf.Bytes()}, nil
	}

	if c.rasterizer == nil {
		return nil, fmt.Errorf("%w: cannot decode %s: %v", ErrUnsupportedMedia, mt, err)
	}
	out, rerr := c.rasterizer.Rasterize(ctx, models.InlineImage{MIMEType: mt, Data: img.Data})
	if rerr != nil {
		return nil, fmt.Errorf("failed to rasterize %s: %w", mt, rerr)
	}
	return out, nil
}

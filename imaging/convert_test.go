package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRasterizer struct {
	called bool
	err    error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, img models.InlineImage) (*models.InlineImage, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return &models.InlineImage{MIMEType: "image/png", Data: []byte("rasterized:" + img.MIMEType)}, nil
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNormalizeMediaType(t *testing.T) {
	assert.Equal(t, "image/jpeg", NormalizeMediaType("image/JPG"))
	assert.Equal(t, "image/png", NormalizeMediaType("image/png; charset=binary"))
	assert.True(t, IsImage("image/avif"))
	assert.False(t, IsImage("text/html"))
}

func TestConvertPassthrough(t *testing.T) {
	for _, mt := range []string{"image/png", "image/jpeg", "image/webp", "image/jpg"} {
		out, err := NewConverter(nil).Convert(context.Background(), models.InlineImage{MIMEType: mt, Data: []byte("x")})
		require.NoError(t, err, mt)
		assert.Equal(t, []byte("x"), out.Data)
		assert.Equal(t, NormalizeMediaType(mt), out.MIMEType)
	}
}

func TestConvertDecodableToPNG(t *testing.T) {
	out, err := NewConverter(nil).Convert(context.Background(), models.InlineImage{MIMEType: "image/gif", Data: gifBytes(t)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MIMEType)

	decoded, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Bounds().Dx())
}

func TestConvertFallsBackToRasterizer(t *testing.T) {
	svg := models.InlineImage{MIMEType: "image/svg+xml", Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)}

	_, err := NewConverter(nil).Convert(context.Background(), svg)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	r := &fakeRasterizer{}
	out, err := NewConverter(r).Convert(context.Background(), svg)
	require.NoError(t, err)
	assert.True(t, r.called)
	assert.Equal(t, "rasterized:image/svg+xml", string(out.Data))

	failing := &fakeRasterizer{err: errors.New("chrome not found")}
	_, err = NewConverter(failing).Convert(context.Background(), svg)
	assert.ErrorContains(t, err, "chrome not found")
}

func TestConvertRejectsNonImages(t *testing.T) {
	r := &fakeRasterizer{}
	_, err := NewConverter(r).Convert(context.Background(), models.InlineImage{MIMEType: "text/html", Data: []byte("<html>")})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
	assert.False(t, r.called)
}

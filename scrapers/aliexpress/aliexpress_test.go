package aliexpress

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "data-pl title wins",
			html: `<h1 class="SomeTitle">Other heading here</h1><h1 data-pl="product-title">  Wireless Mouse 2.4G  </h1>`,
			want: "Wireless Mouse 2.4G",
		},
		{
			name: "short title falls through to og:title",
			html: `<h1 data-pl="product-title">Mouse</h1><meta property="og:title" content="Ergonomic Wireless Mouse">`,
			want: "Ergonomic Wireless Mouse",
		},
		{
			name: "class contains Title",
			html: `<h1 class="pdp-Title--x">Silicone Phone Case</h1>`,
			want: "Silicone Phone Case",
		},
		{
			name: "plain h1 last",
			html: `<h1>Stainless Steel Bottle</h1>`,
			want: "Stainless Steel Bottle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewExtractor(AliExpress).Extract(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Title)
		})
	}
}

func TestExtractWithoutTitleFails(t *testing.T) {
	_, err := NewExtractor(AliExpress).Extract(`<h1>Hi</h1><img src="//ae01.alicdn.com/kf/a.jpg">`)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestExtractImages(t *testing.T) {
	html := `
<h1 data-pl="product-title">Wireless Mouse 2.4G</h1>
<img class="magnifier--image" src="//ae01.alicdn.com/kf/main_50x50.jpg">
<img class="gallery-item" data-src="https://ae01.alicdn.com/kf/second.webp" src="placeholder.gif">
<img class="gallery-item" src="https://cdn.example.com/not-trusted.jpg">
<img src="https://ae01.alicdn.com/kf/main.jpg">
<meta property="og:image" content="https://ae01.alicdn.com/kf/og_100x100.jpg_200x200.jpg">`

	src, err := NewExtractor(AliExpress).Extract(html)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://ae01.alicdn.com/kf/main.jpg",
		"https://ae01.alicdn.com/kf/second.jpg",
		"https://ae01.alicdn.com/kf/og.jpg",
	}, src.ImageURLs)
}

func TestExtractImagesCappedAtEight(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<h1>Stainless Steel Bottle</h1>`)
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, `<img src="https://ae01.alicdn.com/kf/%d.jpg">`, i)
	}

	src, err := NewExtractor(AliExpress).Extract(b.String())
	require.NoError(t, err)
	assert.Len(t, src.ImageURLs, 8)
	assert.Equal(t, "https://ae01.alicdn.com/kf/0.jpg", src.ImageURLs[0])
}

func TestExtractWithoutImages(t *testing.T) {
	src, err := NewExtractor(AliExpress).Extract(`<h1>Stainless Steel Bottle</h1>`)
	require.NoError(t, err)
	assert.Empty(t, src.ImageURLs)
	assert.NotNil(t, src.ImageURLs)
}

func TestUpgradeImageURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://ae01.alicdn.com/kf/x_50x50.jpg", "https://ae01.alicdn.com/kf/x.jpg"},
		{"https://ae01.alicdn.com/kf/x.jpg_200x200.jpg", "https://ae01.alicdn.com/kf/x.jpg"},
		{"https://ae01.alicdn.com/kf/x_100x100.jpg_50x50.jpg", "https://ae01.alicdn.com/kf/x.jpg"},
		{"https://ae01.alicdn.com/kf/x.webp", "https://ae01.alicdn.com/kf/x.jpg"},
		{"https://ae01.alicdn.com/kf/x.jpg", "https://ae01.alicdn.com/kf/x.jpg"},
	}
	for _, tt := range tests {
		got := UpgradeImageURL(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, UpgradeImageURL(got), "upgrade must be idempotent")
	}
}

func TestFallbackFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.aliexpress.com/item/wireless-mouse-ergonomic/1005006.html", "Wireless Mouse Ergonomic"},
		{"https://www.aliexpress.com/item/1005006123456.html", "Product 1005006123456"},
		{"https://www.aliexpress.com/item/987654?spm=a2g0o", "Product 987654"},
		{"https://www.aliexpress.com/store/", "Product unknown"},
		{"%%%not a url", "Product unknown"},
		{"https://www.aliexpress.com/a-b/1.html", "Product 1"},
	}
	for _, tt := range tests {
		src := FallbackFromURL(tt.url)
		assert.Equal(t, tt.want, src.Title, tt.url)
		assert.Empty(t, src.ImageURLs)
	}
}

func TestProfileFor(t *testing.T) {
	assert.Equal(t, "aliexpress", ProfileFor("https://www.aliexpress.us/item/1.html").Name)
	assert.Equal(t, "amazon", ProfileFor("https://www.amazon.in/dp/B0C").Name)
	assert.Equal(t, "aliexpress", ProfileFor("https://shop.example.com/p").Name)
}

func TestAmazonProfile(t *testing.T) {
	html := `<span id="productTitle"> Cotton Crew Neck T-Shirt </span>
<img id="landingImage" src="https://m.media-amazon.com/images/I/71abc._AC_SX679_.jpg">
<div id="altImages"><img src="https://m.media-amazon.com/images/I/61def._AC_US40_.jpg"></div>`

	src, err := NewExtractor(Amazon).Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "Cotton Crew Neck T-Shirt", src.Title)
	assert.Equal(t, []string{
		"https://m.media-amazon.com/images/I/71abc.jpg",
		"https://m.media-amazon.com/images/I/61def.jpg",
	}, src.ImageURLs)
}

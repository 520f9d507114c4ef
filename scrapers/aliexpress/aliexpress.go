package aliexpress

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raushankrgupta/product-page-generator/models"
)

// ErrTitleNotFound is returned when no title rule yields a usable title
var ErrTitleNotFound = errors.New("product title not found in page")

const (
	maxImages      = 8
	minTitleLength = 5
)

// Rule is one selector of an ordered heuristic list. Attr empty means element text.
type Rule struct {
	Selector string
	Attr     string
}

// Profile is the set of heuristics used to read one storefront's product pages
type Profile struct {
	Name        string
	Hosts       []string
	TitleRules  []Rule
	ImageRules  []string
	TrustedHost string
	// Upgrade rewrites thumbnail URLs to their full-size variant
	Upgrade func(string) string
}

var AliExpress = Profile{
	Name:  "aliexpress",
	Hosts: []string{"aliexpress."},
	TitleRules: []Rule{
		{Selector: `h1[data-pl="product-title"]`},
		{Selector: `h1.product-title-text`},
		{Selector: `h1[class*="Title"]`},
		{Selector: `meta[property="og:title"]`, Attr: "content"},
		{Selector: `h1`},
	},
	ImageRules: []string{
		`img[class*="magnifier"]`,
		`img[class*="ImageView"]`,
		`img[class*="gallery"]`,
		`img[data-src*="alicdn"]`,
		`img[src*="alicdn"]`,
		`meta[property="og:image"]`,
	},
	TrustedHost: "alicdn.com",
	Upgrade:     UpgradeImageURL,
}

var Amazon = Profile{
	Name:  "amazon",
	Hosts: []string{"amazon.", "amzn."},
	TitleRules: []Rule{
		{Selector: `#productTitle`},
		{Selector: `meta[property="og:title"]`, Attr: "content"},
		{Selector: `meta[name="title"]`, Attr: "content"},
	},
	ImageRules: []string{
		`#landingImage`,
		`#imgTagWrapperId img`,
		`#altImages img`,
		`meta[property="og:image"]`,
	},
	TrustedHost: "media-amazon.com",
	Upgrade:     upgradeAmazonImageURL,
}

var profiles = []Profile{AliExpress, Amazon}

// ProfileFor picks the profile matching the URL host, AliExpress otherwise
func ProfileFor(rawURL string) Profile {
	u, err := url.Parse(rawURL)
	if err != nil {
		return AliExpress
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range profiles {
		for _, h := range p.Hosts {
			if strings.Contains(host, h) {
				return p
			}
		}
	}
	return AliExpress
}

// Extractor reads a title and image candidates out of a product page
type Extractor struct {
	profile Profile
}

func NewExtractor(profile Profile) *Extractor {
	return &Extractor{profile: profile}
}

// Extract parses html with the extractor's profile
func (e *Extractor) Extract(html string) (*models.ScrapedSource, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	title := e.extractTitle(doc)
	if title == "" {
		return nil, ErrTitleNotFound
	}
	return &models.ScrapedSource{
		Title:     title,
		ImageURLs: e.extractImages(doc),
	}, nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	for _, rule := range e.profile.TitleRules {
		sel := doc.Find(rule.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		var text string
		if rule.Attr != "" {
			text, _ = sel.Attr(rule.Attr)
		} else {
			text = sel.Text()
		}
		text = strings.TrimSpace(text)
		if len([]rune(text)) > minTitleLength {
			return text
		}
	}
	return ""
}

func (e *Extractor) extractImages(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	images := []string{}

	for _, selector := range e.profile.ImageRules {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if len(images) >= maxImages {
				return
			}
			src := firstAttr(s, "data-src", "src", "content")
			if src == "" {
				return
			}
			if e.profile.Upgrade != nil {
				src = e.profile.Upgrade(src)
			}
			if !strings.Contains(src, e.profile.TrustedHost) {
				return
			}
			if strings.HasPrefix(src, "//") {
				src = "https:" + src
			}
			if seen[src] {
				return
			}
			seen[src] = true
			images = append(images, src)
		})
		if len(images) >= maxImages {
			break
		}
	}
	return images
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// thumbnailSuffix matches size suffixes such as "_50x50.jpg" and "x.jpg_200x200.jpg" chains
var thumbnailSuffix = regexp.MustCompile(`(?:(?:\.jpg)?_(?:50x50|100x100|200x200))+\.jpg`)

// UpgradeImageURL turns an AliExpress thumbnail URL into the full-size JPEG URL
func UpgradeImageURL(src string) string {
	src = strings.ReplaceAll(src, ".webp", ".jpg")
	return thumbnailSuffix.ReplaceAllString(src, ".jpg")
}

var amazonSizeModifier = regexp.MustCompile(`\._[A-Z0-9_,]+_\.`)

func upgradeAmazonImageURL(src string) string {
	return amazonSizeModifier.ReplaceAllString(src, ".")
}

var (
	productIDPattern = regexp.MustCompile(`/(\d+)\.html`)
	itemIDPattern    = regexp.MustCompile(`item/(\d+)`)
)

// FallbackFromURL derives a title from the URL alone. It never fails and returns no images.
func FallbackFromURL(rawURL string) models.ScrapedSource {
	if u, err := url.Parse(rawURL); err == nil {
		for _, segment := range strings.Split(u.Path, "/") {
			if strings.Contains(segment, "-") && !strings.Contains(segment, ".html") && len(segment) > minTitleLength {
				return models.ScrapedSource{Title: titleCase(segment), ImageURLs: []string{}}
			}
		}
	}
	return models.ScrapedSource{Title: "Product " + productID(rawURL), ImageURLs: []string{}}
}

func productID(rawURL string) string {
	if m := productIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if m := itemIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return "unknown"
}

func titleCase(segment string) string {
	words := strings.Split(segment, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}

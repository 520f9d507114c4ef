package models

import "time"

// ScrapedSource is the raw material a generation run starts from
type ScrapedSource struct {
	Title     string   `json:"title"`
	ImageURLs []string `json:"imageUrls"` // at most 8, deduplicated, first-seen order
}

// GeneratedCopy is the structured text the language model returns
type GeneratedCopy struct {
	Title            string   `json:"title" bson:"title"`
	ShortDescription string   `json:"short_description" bson:"short_description"`
	LongDescription  string   `json:"long_description" bson:"long_description"`
	Benefits         []string `json:"benefits" bson:"benefits"`
	Features         []string `json:"features" bson:"features"`
	Tags             []string `json:"tags" bson:"tags"`
	AltTexts         []string `json:"alt_texts" bson:"alt_texts"`
}

// Normalize replaces missing lists with empty ones so the copy always serializes the same shape.
func (c *GeneratedCopy) Normalize() {
	if c.Benefits == nil {
		c.Benefits = []string{}
	}
	if c.Features == nil {
		c.Features = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.AltTexts == nil {
		c.AltTexts = []string{}
	}
}

const (
	// OriginGenerated marks an image produced from a prompt only
	OriginGenerated = "generated"
	// OriginFailed marks a generation slot that produced nothing
	OriginFailed = "failed"
)

// ImageResult is one image slot of a product page
type ImageResult struct {
	OriginalURL string  `json:"originalUrl" bson:"original_url"`
	EnhancedURL *string `json:"enhancedUrl" bson:"enhanced_url"` // nil when the slot failed
}

// Succeeded reports whether the slot holds a usable image
func (r ImageResult) Succeeded() bool {
	return r.EnhancedURL != nil
}

// ProductRecord is the editable product page assembled by a generation run
type ProductRecord struct {
	ID            string `json:"id" bson:"_id"`
	GeneratedCopy `bson:",inline"`
	Images        []ImageResult  `json:"images" bson:"images"`
	Language      string         `json:"language" bson:"language"`
	Mode          GenerationMode `json:"mode" bson:"mode"`
	SourceURL     string         `json:"sourceUrl,omitempty" bson:"source_url,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updated_at"`
}

// Clone returns a deep copy so callers can mutate it without touching shared state
func (p *ProductRecord) Clone() *ProductRecord {
	out := *p
	out.Benefits = append([]string(nil), p.Benefits...)
	out.Features = append([]string(nil), p.Features...)
	out.Tags = append([]string(nil), p.Tags...)
	out.AltTexts = append([]string(nil), p.AltTexts...)
	out.Images = make([]ImageResult, len(p.Images))
	for i, img := range p.Images {
		out.Images[i].OriginalURL = img.OriginalURL
		if img.EnhancedURL != nil {
			ref := *img.EnhancedURL
			out.Images[i].EnhancedURL = &ref
		}
	}
	out.Normalize()
	return &out
}

// PublishedProduct is a dashboard entry for a record pushed to the store
type PublishedProduct struct {
	ID          string    `json:"id" bson:"_id"`
	RecordID    string    `json:"recordId" bson:"record_id"`
	Title       string    `json:"title" bson:"title"`
	Status      string    `json:"status" bson:"status"`
	RemoteID    uint64    `json:"remoteId" bson:"remote_id"`
	AdminURL    string    `json:"adminUrl" bson:"admin_url"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	PublishedAt time.Time `json:"publishedAt" bson:"published_at"`
}

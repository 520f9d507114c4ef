package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/google/uuid"
	"github.com/raushankrgupta/product-page-generator/models"
)

// ErrNotConfigured is returned when the store credentials are missing
var ErrNotConfigured = errors.New("Shopify settings are not configured. Please go to Settings.")

// SuccessMessage is shown to the user after a publish
const SuccessMessage = "Product pushed to Shopify as a draft!"

// SettingsLoader supplies the store credentials
type SettingsLoader interface {
	Load(ctx context.Context) (models.Settings, error)
}

// Result describes a product created in the store
type Result struct {
	ProductID uint64 `json:"productId"`
	AdminURL  string `json:"adminUrl"`
	Message   string `json:"message"`
}

// ShopifyPublisher creates draft products through the Shopify Admin API
type ShopifyPublisher struct {
	settings   SettingsLoader
	httpClient *http.Client
	apiVersion string
	ledger     Ledger
	notifier   Notifier
	logger     *slog.Logger
}

func NewShopifyPublisher(settings SettingsLoader, httpClient *http.Client, apiVersion string, logger *slog.Logger) *ShopifyPublisher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if apiVersion == "" {
		apiVersion = "2024-04"
	}
	return &ShopifyPublisher{
		settings:   settings,
		httpClient: httpClient,
		apiVersion: apiVersion,
		logger:     logger.With("component", "shopify"),
	}
}

// WithLedger records every successful publish in l
func (p *ShopifyPublisher) WithLedger(l Ledger) *ShopifyPublisher {
	p.ledger = l
	return p
}

// WithNotifier reports every successful publish to n
func (p *ShopifyPublisher) WithNotifier(n Notifier) *ShopifyPublisher {
	p.notifier = n
	return p
}

// Publish creates record as a draft product. It makes exactly one request and never retries.
func (p *ShopifyPublisher) Publish(ctx context.Context, record *models.ProductRecord) (*Result, error) {
	creds, err := p.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}
	shop := normalizeShop(creds.ShopURL)
	if !strings.Contains(shop, ".") {
		shop = goshopify.ShopFullName(shop)
	}

	httpClient := p.httpClient
	if !isShopifyHost(shop) {
		httpClient = withHost(p.httpClient, shop)
	}

	client, err := goshopify.NewClient(goshopify.App{}, shop, creds.APIToken,
		goshopify.WithVersion(p.apiVersion),
		goshopify.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Shopify client: %w", err)
	}

	created, err := client.Product.Create(ctx, BuildProduct(record))
	if err != nil {
		p.logger.Error("publish failed", "shop", shop, "id", record.ID, "error", err)
		return nil, err
	}

	res := &Result{
		ProductID: created.Id,
		AdminURL:  fmt.Sprintf("https://%s/admin/products/%d", shop, created.Id),
		Message:   SuccessMessage,
	}
	p.logger.Info("product published", "shop", shop, "id", record.ID, "remote_id", created.Id)
	p.afterPublish(ctx, record, res)
	return res, nil
}

func (p *ShopifyPublisher) afterPublish(ctx context.Context, record *models.ProductRecord, res *Result) {
	entry := models.PublishedProduct{
		ID:          uuid.NewString(),
		RecordID:    record.ID,
		Title:       record.Title,
		Status:      string(goshopify.ProductStatusDraft),
		RemoteID:    res.ProductID,
		AdminURL:    res.AdminURL,
		PublishedAt: time.Now(),
	}
	for _, img := range record.Images {
		if img.EnhancedURL != nil && !strings.HasPrefix(*img.EnhancedURL, "data:") {
			entry.ImageURL = *img.EnhancedURL
			break
		}
	}

	if p.ledger != nil {
		if err := p.ledger.Record(ctx, entry); err != nil {
			p.logger.Warn("could not record publish", "id", record.ID, "error", err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.Published(ctx, entry); err != nil {
			p.logger.Warn("could not send publish notification", "id", record.ID, "error", err)
		}
	}
}

// BuildProduct maps a record onto the Shopify product payload
func BuildProduct(record *models.ProductRecord) goshopify.Product {
	product := goshopify.Product{
		Title:    record.Title,
		BodyHTML: BodyHTML(record.GeneratedCopy),
		Tags:     strings.Join(record.Tags, ","),
		Status:   goshopify.ProductStatusDraft,
	}

	for i, img := range record.Images {
		if img.EnhancedURL == nil {
			continue
		}
		image := goshopify.Image{}
		if data, ok := dataURLPayload(*img.EnhancedURL); ok {
			image.Attachment = data
		} else {
			image.Src = *img.EnhancedURL
		}
		if i < len(record.AltTexts) {
			image.Alt = record.AltTexts[i]
		}
		product.Images = append(product.Images, image)
	}
	return product
}

// BodyHTML renders the description block of the product page
func BodyHTML(c models.GeneratedCopy) string {
	var b strings.Builder
	b.WriteString("<p>" + c.ShortDescription + "</p>")
	b.WriteString("<br/><strong>Description:</strong>")
	b.WriteString("<p>" + strings.ReplaceAll(c.LongDescription, "\n", "<br/>") + "</p>")
	b.WriteString("<br/><strong>Benefits:</strong>")
	writeList(&b, c.Benefits)
	b.WriteString("<br/><strong>Features:</strong>")
	writeList(&b, c.Features)
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>" + item + "</li>")
	}
	b.WriteString("</ul>")
}

func dataURLPayload(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "data:") {
		return "", false
	}
	_, data, ok := strings.Cut(ref, ";base64,")
	return data, ok
}

func isShopifyHost(host string) bool {
	return strings.Contains(host, "myshopify.com")
}

// hostTransport sends every request to host. go-shopify always targets <shop>.myshopify.com,
// which is wrong for stores saved under their own domain.
type hostTransport struct {
	host string
	base http.RoundTripper
}

func (t *hostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Host = t.host
	req.Host = t.host
	return t.base.RoundTrip(req)
}

func withHost(c *http.Client, host string) *http.Client {
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c
	clone.Transport = &hostTransport{host: host, base: base}
	return &clone
}

// normalizeShop reduces a stored shop URL such as "https://shop.myshopify.com/admin" to its host
func normalizeShop(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.Trim(strings.TrimPrefix(raw, "https://"), "/")
	}
	return u.Host
}

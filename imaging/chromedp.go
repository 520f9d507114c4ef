package imaging

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/raushankrgupta/product-page-generator/models"
)

// ChromeRasterizer draws images (SVG, AVIF, ICO...) in headless Chrome and screenshots them as PNG
type ChromeRasterizer struct {
	timeout time.Duration
}

func NewChromeRasterizer(timeout time.Duration) *ChromeRasterizer {
	return &ChromeRasterizer{timeout: timeout}
}

func (r *ChromeRasterizer) Rasterize(ctx context.Context, img models.InlineImage) (*models.InlineImage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	doc := fmt.Sprintf(`<html><body style="margin:0;background:transparent"><img id="src" src="%s"></body></html>`,
		html.EscapeString(img.DataURL()))

	var buf []byte
	err := chromedp.Run(taskCtx,
		// keep transparency like a canvas export would
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitVisible("#src", chromedp.ByQuery),
		chromedp.Screenshot("#src", &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp rasterize error: %w", err)
	}
	return &models.InlineImage{MIMEType: "image/png", Data: buf}, nil
}

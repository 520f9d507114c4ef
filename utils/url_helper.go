package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// shortLinkHosts are share-link domains that only redirect to a product page
var shortLinkHosts = []string{
	"a.aliexpress.com",
	"s.click.aliexpress.com",
	"amzn.to",
	"amzn.in",
	"amzn.eu",
}

// IsShortLink reports whether rawURL points at a known redirecting share host
func IsShortLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range shortLinkHosts {
		if host == h {
			return true
		}
	}
	return false
}

// ResolveShortenedURL follows redirects to find the final URL
func ResolveShortenedURL(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	resolve := func(method string) (string, error) {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", browserUserAgent)
		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%s %s: unexpected status %d", method, rawURL, resp.StatusCode)
		}
		return resp.Request.URL.String(), nil
	}

	// Some share hosts reject HEAD, try GET before giving up
	if final, err := resolve(http.MethodHead); err == nil {
		return final, nil
	}
	final, err := resolve(http.MethodGet)
	if err != nil {
		return rawURL, err
	}
	return final, nil
}

package base

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/utils"
	"golang.org/x/time/rate"
)

// ErrProxyTimeout is returned when the proxy does not answer within the hard timeout
var ErrProxyTimeout = errors.New("proxy request timed out")

// ProxyError is a non-2xx answer from the proxy endpoint
type ProxyError struct {
	Status  int
	Message string
}

func (e *ProxyError) Error() string {
	return e.Message
}

// blockMarkers identify anti-bot interstitials served instead of the product page
var blockMarkers = []string{"Robot Check", "Access Denied", "captcha-verify"}

// IsBlockedPage reports whether html looks like an anti-bot page (case-insensitive)
func IsBlockedPage(html string) bool {
	lower := strings.ToLower(html)
	for _, m := range blockMarkers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// ProxyOptions configures a ProxyClient
type ProxyOptions struct {
	Endpoint     string
	PageTimeout  time.Duration
	ImageTimeout time.Duration
	RateLimit    float64 // requests per second, 0 disables limiting
	Burst        int
	// TokenSource returns a bearer token for the proxy endpoint; nil sends none
	TokenSource func() (string, error)
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// ProxyClient fetches remote pages and binaries through the server-side proxy endpoint
type ProxyClient struct {
	endpoint     string
	pageTimeout  time.Duration
	imageTimeout time.Duration
	limiter      *rate.Limiter
	tokenSource  func() (string, error)
	client       *http.Client
	logger       *slog.Logger
}

// NewProxyClient creates a new ProxyClient instance
func NewProxyClient(opts ProxyOptions) *ProxyClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &ProxyClient{
		endpoint:     opts.Endpoint,
		pageTimeout:  opts.PageTimeout,
		imageTimeout: opts.ImageTimeout,
		limiter:      limiter,
		tokenSource:  opts.TokenSource,
		client:       client,
		logger:       logger.With("component", "proxy_client"),
	}
}

type proxyRequest struct {
	URL     string `json:"url"`
	Premium bool   `json:"premium,omitempty"`
	Binary  bool   `json:"binary,omitempty"`
}

type pageResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
}

// FetchPage returns the rendered HTML of url
func (p *ProxyClient) FetchPage(ctx context.Context, url string, premium bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.pageTimeout)
	defer cancel()

	resp, err := p.do(ctx, proxyRequest{URL: url, Premium: premium})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		if ctx.Err() != nil {
			return "", ErrProxyTimeout
		}
		return "", fmt.Errorf("failed to decode proxy response: %w", err)
	}
	p.logger.Debug("page fetched", "url", url, "premium", premium, "bytes", len(page.HTML))
	return page.HTML, nil
}

// FetchImage returns the raw bytes of the image at url and its reported media type
func (p *ProxyClient) FetchImage(ctx context.Context, url string) (*models.InlineImage, error) {
	ctx, cancel := context.WithTimeout(ctx, p.imageTimeout)
	defer cancel()

	resp, err := p.do(ctx, proxyRequest{URL: url, Binary: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrProxyTimeout
		}
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return &models.InlineImage{MIMEType: mimeType, Data: data}, nil
}

func (p *ProxyClient) do(ctx context.Context, body proxyRequest) (*http.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrProxyTimeout
		}
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.tokenSource != nil {
		token, err := p.tokenSource()
		if err != nil {
			return nil, fmt.Errorf("failed to get proxy token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrProxyTimeout
		}
		return nil, fmt.Errorf("proxy request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeProxyError(resp)
	}
	return resp, nil
}

func decodeProxyError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return &ProxyError{Status: resp.StatusCode, Message: body.Error}
	}
	return &ProxyError{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
}

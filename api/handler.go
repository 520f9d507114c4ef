package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raushankrgupta/product-page-generator/utils"
)

// ScrapeRequest is the body accepted by the scrape proxy
type ScrapeRequest struct {
	URL     string `json:"url"`
	Premium bool   `json:"premium,omitempty"`
	Binary  bool   `json:"binary,omitempty"`
}

// ScrapeProxy forwards page and image fetches to the scraping service so the API key never
// leaves the server.
type ScrapeProxy struct {
	apiKey        string
	upstream      string
	client        *http.Client
	pageTimeout   time.Duration
	binaryTimeout time.Duration
	logger        *slog.Logger
}

func NewScrapeProxy(apiKey, upstream string, logger *slog.Logger) *ScrapeProxy {
	if upstream == "" {
		upstream = "https://api.scraperapi.com/"
	}
	return &ScrapeProxy{
		apiKey:        apiKey,
		upstream:      upstream,
		client:        &http.Client{},
		pageTimeout:   90 * time.Second,
		binaryTimeout: 30 * time.Second,
		logger:        logger,
	}
}

// ScrapeHandler handles POST /api/scrape
func (p *ScrapeProxy) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(p.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Scrape API]")
	logSubject(&logMessageBuilder, r)

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorDetails(w, &logMessageBuilder, "Scraping process failed", err.Error(), http.StatusInternalServerError)
		return
	}

	if req.URL == "" {
		utils.RespondError(w, &logMessageBuilder, "Missing URL parameter", http.StatusBadRequest)
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" {
		utils.RespondError(w, &logMessageBuilder, "Invalid URL format", http.StatusBadRequest)
		return
	}

	if p.apiKey == "" {
		utils.RespondError(w, &logMessageBuilder, "ScraperAPI key is not configured on the server.", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Fetching %s (premium=%t, binary=%t)", req.URL, req.Premium, req.Binary))

	target, err := p.upstreamURL(req)
	if err != nil {
		utils.RespondErrorDetails(w, &logMessageBuilder, "Scraping process failed", err.Error(), http.StatusInternalServerError)
		return
	}

	timeout := p.pageTimeout
	if req.Binary {
		timeout = p.binaryTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	upstreamReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		utils.RespondErrorDetails(w, &logMessageBuilder, "Scraping process failed", err.Error(), http.StatusInternalServerError)
		return
	}

	resp, err := p.client.Do(upstreamReq)
	if err != nil {
		utils.RespondErrorDetails(w, &logMessageBuilder, "Scraping process failed", transportDetails(ctx, err), http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		utils.RespondErrorDetails(w, &logMessageBuilder, "Scraping process failed", transportDetails(ctx, err), http.StatusInternalServerError)
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		utils.RespondError(w, &logMessageBuilder, upstreamError(resp.StatusCode, body), resp.StatusCode)
		return
	}

	if req.Binary {
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Returned %d bytes of %s", len(body), contentType))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Returned %d bytes of html", len(body)))
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"html":    string(body),
	})
}

func (p *ScrapeProxy) upstreamURL(req ScrapeRequest) (string, error) {
	u, err := url.Parse(p.upstream)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api_key", p.apiKey)
	q.Set("url", req.URL)
	if !req.Binary {
		q.Set("render", "true")
		q.Set("country_code", "us")
		q.Set("device_type", "desktop")
		if req.Premium {
			q.Set("premium", "true")
			q.Set("wait", "3000")
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// upstreamError picks the most specific message out of a failed upstream response
func upstreamError(status int, body []byte) string {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Sprintf("ScraperAPI returned status %d", status)
	}
	if m, ok := decoded.(map[string]interface{}); ok {
		if msg, ok := m["error"].(string); ok && msg != "" {
			return msg
		}
	}
	compact, err := json.Marshal(decoded)
	if err != nil {
		return fmt.Sprintf("ScraperAPI returned status %d", status)
	}
	return string(compact)
}

func transportDetails(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return "Scraping request timed out."
	}
	return err.Error()
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/raushankrgupta/product-page-generator/ai"
	"github.com/raushankrgupta/product-page-generator/editor"
	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/publish"
	"github.com/raushankrgupta/product-page-generator/settings"
	"github.com/raushankrgupta/product-page-generator/utils"
)

// ProductGenerator runs one generation
type ProductGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest, status func(string)) (*models.ProductRecord, error)
}

// ProductSession holds the records being edited
type ProductSession interface {
	Put(record *models.ProductRecord)
	Get(id string) (*models.ProductRecord, error)
	Edit(id string, e editor.Edit) (*models.ProductRecord, error)
	Translate(ctx context.Context, id, language string) (*models.ProductRecord, error)
	Publish(ctx context.Context, id string) (*publish.Result, error)
}

type Handlers struct {
	generator ProductGenerator
	session   ProductSession
	settings  settings.Provider
	ledger    publish.Ledger
	logger    *slog.Logger
}

func NewHandlers(generator ProductGenerator, session ProductSession, settings settings.Provider, ledger publish.Ledger, logger *slog.Logger) *Handlers {
	return &Handlers{
		generator: generator,
		session:   session,
		settings:  settings,
		ledger:    ledger,
		logger:    logger,
	}
}

// GenerateResponse carries the new record and the progress messages of the run
type GenerateResponse struct {
	Product  *models.ProductRecord `json:"product"`
	Progress []string              `json:"progress"`
}

// GenerateProduct handles POST /api/products
func (h *Handlers) GenerateProduct(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Generate API]")
	logSubject(&logMessageBuilder, r)

	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Mode: %s", req.Mode))

	var (
		mu       sync.Mutex
		progress = []string{}
	)
	record, err := h.generator.Generate(r.Context(), req, func(m string) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, m)
	})
	if err != nil {
		h.respondServiceError(w, &logMessageBuilder, err)
		return
	}

	h.session.Put(record)
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Generated %s with %d images", record.ID, len(record.Images)))
	utils.RespondJSON(w, http.StatusCreated, GenerateResponse{Product: record, Progress: progress})
}

// GetProduct handles GET /api/products/{id}
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	record, err := h.session.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, nil, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}

// EditProduct handles PATCH /api/products/{id}
func (h *Handlers) EditProduct(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Edit API]")
	logSubject(&logMessageBuilder, r)

	var edit editor.Edit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	record, err := h.session.Edit(id, edit)
	if err != nil {
		h.respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Edited %s of %s", edit.Field, id))
	utils.RespondJSON(w, http.StatusOK, record)
}

// TranslateRequest selects the target language by code
type TranslateRequest struct {
	Language string `json:"language"`
}

// TranslateProduct handles POST /api/products/{id}/translate
func (h *Handlers) TranslateProduct(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Translate API]")
	logSubject(&logMessageBuilder, r)

	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Language) == "" {
		utils.RespondError(w, &logMessageBuilder, "Please select a language.", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	record, err := h.session.Translate(r.Context(), id, req.Language)
	if err != nil {
		h.respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Translated %s to %s", id, req.Language))
	utils.RespondJSON(w, http.StatusOK, record)
}

// PublishProduct handles POST /api/products/{id}/publish
func (h *Handlers) PublishProduct(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Publish API]")
	logSubject(&logMessageBuilder, r)

	id := chi.URLParam(r, "id")
	res, err := h.session.Publish(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, &logMessageBuilder, err)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Published %s as %d", id, res.ProductID))
	utils.RespondJSON(w, http.StatusOK, res)
}

// RecentProducts handles GET /api/products/recent
func (h *Handlers) RecentProducts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.RespondError(w, nil, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.ledger.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list published products", "error", err)
		utils.RespondError(w, nil, "Failed to list published products", http.StatusInternalServerError)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"products": entries})
}

// Languages handles GET /api/languages
func (h *Handlers) Languages(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"languages": models.Languages})
}

// respondServiceError maps domain errors onto HTTP statuses
func (h *Handlers) respondServiceError(w http.ResponseWriter, b *strings.Builder, err error) {
	status := statusFor(err)
	msg := err.Error()
	if errors.Is(err, models.ErrInvalidInput) {
		msg = strings.TrimPrefix(msg, models.ErrInvalidInput.Error()+": ")
	}
	if status >= 500 {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	utils.RespondError(w, b, msg, status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, editor.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, publish.ErrNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusBadGateway
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/utils"
)

// SettingsResponse shows the stored credentials with the token masked
type SettingsResponse struct {
	models.Settings
	Configured bool `json:"configured"`
}

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		utils.RespondError(w, nil, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	utils.RespondJSON(w, http.StatusOK, SettingsResponse{Settings: s.Masked(), Configured: s.Configured()})
}

// SaveSettings handles PUT /api/settings. A masked token sent back unchanged keeps the stored one.
func (h *Handlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(h.logger, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Settings API]")
	logSubject(&logMessageBuilder, r)

	var req models.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.ShopURL = strings.TrimSpace(req.ShopURL)
	req.APIToken = strings.TrimSpace(req.APIToken)

	if strings.HasPrefix(req.APIToken, "****") {
		current, err := h.settings.Load(r.Context())
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, "Failed to load settings", http.StatusInternalServerError)
			return
		}
		req.APIToken = current.APIToken
	}

	if err := h.settings.Save(r.Context(), req); err != nil {
		h.logger.Error("failed to save settings", "error", err)
		utils.RespondError(w, &logMessageBuilder, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, "Settings saved")
	utils.RespondJSON(w, http.StatusOK, SettingsResponse{Settings: req.Masked(), Configured: req.Configured()})
}

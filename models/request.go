package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidInput is returned when a request is rejected before any network work
var ErrInvalidInput = errors.New("invalid input")

// GenerationMode selects where a run gets its source material
type GenerationMode string

const (
	ModeURL    GenerationMode = "url"
	ModeTitle  GenerationMode = "title"
	ModeManual GenerationMode = "manual"
)

// GenerationRequest is the user input for one generation run
type GenerationRequest struct {
	Mode     GenerationMode `json:"mode"`
	URL      string         `json:"url,omitempty"`
	Title    string         `json:"title,omitempty"`
	Notes    string         `json:"notes,omitempty"`
	Language string         `json:"language,omitempty"`
}

// Validate checks the fields the selected mode needs.
func (r *GenerationRequest) Validate() error {
	switch r.Mode {
	case "", ModeURL:
		if strings.TrimSpace(r.URL) == "" {
			return fmt.Errorf("%w: Please enter a product URL.", ErrInvalidInput)
		}
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: Please enter a valid product URL.", ErrInvalidInput)
		}
	case ModeTitle, ModeManual:
		if strings.TrimSpace(r.Title) == "" {
			return fmt.Errorf("%w: Please enter a product title.", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, r.Mode)
	}
	return nil
}

// Language is one of the output languages offered to users
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists the supported output languages in display order
var Languages = []Language{
	{Code: "fr", Name: "Français"},
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Español"},
	{Code: "de", Name: "Deutsch"},
	{Code: "it", Name: "Italiano"},
}

// LanguageName maps a language code to its display name. Unknown values are returned unchanged.
func LanguageName(code string) string {
	for _, l := range Languages {
		if strings.EqualFold(l.Code, code) {
			return l.Name
		}
	}
	return code
}

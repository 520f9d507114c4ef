package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/utils"
)

// Copywriter produces and translates product copy with a text model
type Copywriter struct {
	model  TextModel
	retry  utils.RetryPolicy
	logger *slog.Logger
}

func NewCopywriter(model TextModel, retry utils.RetryPolicy, logger *slog.Logger) *Copywriter {
	logger = logger.With("component", "copywriter")
	retry.Logger = logger
	return &Copywriter{model: model, retry: retry, logger: logger}
}

// Generate returns the structured copy for prompt. Missing fields come back empty;
// a response that is not valid JSON is an error.
func (c *Copywriter) Generate(ctx context.Context, prompt string) (*models.GeneratedCopy, error) {
	req := TextRequest{
		SystemInstruction: copywriterInstruction,
		Prompt:            prompt,
		Schema:            copySchema(),
	}

	raw, err := utils.Retry(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.model.GenerateJSON(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	var out models.GeneratedCopy
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse generated copy: %w", err)
	}
	out.Normalize()
	c.logger.Info("copy generated", "title", out.Title, "tags", len(out.Tags))
	return &out, nil
}

// TranslatableFields are the parts of a record that translation rewrites
type TranslatableFields struct {
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
	Benefits         []string `json:"benefits"`
	Features         []string `json:"features"`
}

// Translation holds the translated fields; nil means the model left the field out
type Translation struct {
	Title            *string  `json:"title"`
	ShortDescription *string  `json:"short_description"`
	LongDescription  *string  `json:"long_description"`
	Benefits         []string `json:"benefits"`
	Features         []string `json:"features"`
}

// Apply copies the translated fields that are present onto c
func (t *Translation) Apply(c *models.GeneratedCopy) {
	if t.Title != nil {
		c.Title = *t.Title
	}
	if t.ShortDescription != nil {
		c.ShortDescription = *t.ShortDescription
	}
	if t.LongDescription != nil {
		c.LongDescription = *t.LongDescription
	}
	if t.Benefits != nil {
		c.Benefits = t.Benefits
	}
	if t.Features != nil {
		c.Features = t.Features
	}
}

// Translate asks for fields in language (a display name such as "Deutsch"). It makes a single attempt.
func (c *Copywriter) Translate(ctx context.Context, fields TranslatableFields, language string) (*Translation, error) {
	payload, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, err
	}

	raw, err := c.model.GenerateJSON(ctx, TextRequest{
		Prompt: translationPrompt(language, string(payload)),
		Schema: translationSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	var out Translation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse translation: %w", err)
	}
	c.logger.Info("copy translated", "language", language)
	return &out, nil
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/raushankrgupta/product-page-generator/models"
	"google.golang.org/api/option"
)

var (
	// ErrNotConfigured is returned when no API key was provided
	ErrNotConfigured = errors.New("GEMINI_API_KEY is not set")
	// ErrEmptyResponse is returned when the model produced no candidate content
	ErrEmptyResponse = errors.New("no content generated")
	// ErrNoImagePayload is returned when an image call answered without inline image data
	ErrNoImagePayload = errors.New("failed to extract image from response")
)

// TextRequest is one structured text generation call
type TextRequest struct {
	SystemInstruction string
	Prompt            string
	Schema            *genai.Schema
}

// TextModel returns the JSON text the model produced for req
type TextModel interface {
	GenerateJSON(ctx context.Context, req TextRequest) (string, error)
}

// ImageModel generates an image from a prompt, or edits source when it is not nil
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string, source *models.InlineImage) (*models.InlineImage, error)
}

// GeminiClient talks to the Gemini API for both text and image models
type GeminiClient struct {
	client     *genai.Client
	textModel  string
	imageModel string
	logger     *slog.Logger
}

// NewGeminiClient creates the API client. Close it when done.
func NewGeminiClient(ctx context.Context, apiKey, textModel, imageModel string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
		logger:     logger.With("component", "gemini"),
	}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// GenerateJSON runs the text model in JSON mode with the request's schema
func (g *GeminiClient) GenerateJSON(ctx context.Context, req TextRequest) (string, error) {
	model := g.client.GenerativeModel(g.textModel)
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = req.Schema

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	parts, err := firstCandidateParts(resp)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, part := range parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// GenerateImage runs the image model. The image is read from the first part of the first candidate.
func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string, source *models.InlineImage) (*models.InlineImage, error) {
	model := g.client.GenerativeModel(g.imageModel)

	var parts []genai.Part
	if source != nil {
		parts = append(parts, genai.Blob{MIMEType: source.MIMEType, Data: source.Data})
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	out, err := firstCandidateParts(resp)
	if err != nil {
		return nil, err
	}

	blob, ok := out[0].(genai.Blob)
	if !ok || len(blob.Data) == 0 {
		g.logger.Warn("image model answered without inline data", "part_type", fmt.Sprintf("%T", out[0]))
		return nil, ErrNoImagePayload
	}
	return &models.InlineImage{MIMEType: blob.MIMEType, Data: blob.Data}, nil
}

func firstCandidateParts(resp *genai.GenerateContentResponse) ([]genai.Part, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts, nil
}

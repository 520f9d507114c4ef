package ai

import (
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// copywriterInstruction keeps the copy factual and free of stock marketing phrases
const copywriterInstruction = `You are an expert in e-commerce copywriting and Google Merchant Center compliance. Write product descriptions that sound fully human, neutral, and practical. Your tone must be simple and natural, avoiding AI patterns, overused marketing expressions, or unrealistic claims. ABSOLUTELY FORBIDDEN EXPRESSIONS: "pièce unique", "haute qualité", "qualité supérieure", "fabriqué avec soin", "élégant", "raffiné", "tendance", "parfait pour", "idéal pour", "une touche de", "sublime votre look", "style intemporel", "finition impeccable", "haut de gamme", "exceptionnel", "ultime", "matériaux premium", "fabrication soignée", "confort optimal". GENERAL RULES: No exaggeration, no subjective judgments, no fake claims, no cliché copywriting, No AI-sounding intros ("Découvrez", "Plongez", etc.). TONE TO USE: Neutral, Concise, Practical, Factual, Human and realistic.`

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

func copySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":             {Type: genai.TypeString, Description: "SEO-optimized product title, 60-70 characters"},
			"short_description": {Type: genai.TypeString, Description: "1-2 short, factual sentences for product listing pages."},
			"long_description":  {Type: genai.TypeString, Description: "4-7 short, factual sentences separated by newlines."},
			"benefits":          stringList("3-5 factual benefits as bullet points."),
			"features":          stringList("3-5 technical features as bullet points."),
			"tags":              stringList("5-10 relevant e-commerce tags."),
			"alt_texts":         stringList("4 descriptive alt texts, one for each of the 4 product images."),
		},
	}
}

func translationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":             {Type: genai.TypeString},
			"short_description": {Type: genai.TypeString},
			"long_description":  {Type: genai.TypeString},
			"benefits":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"features":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
	}
}

// CopyPrompt asks for product copy from a title
func CopyPrompt(title, language string) string {
	return fmt.Sprintf("Based on the product title \"%s\", generate the product content in the language: %s.", title, language)
}

// ManualPrompt asks for product copy from a title and free-form details
func ManualPrompt(title, details, language string) string {
	return fmt.Sprintf("Based on the product title \"%s\" and these additional details: \"%s\", generate the product content in the language: %s.", title, details, language)
}

func translationPrompt(language, payload string) string {
	return fmt.Sprintf("Translate the following JSON object fields into %s. Keep the JSON structure and keys the same. Only translate the string values.\n\n%s", language, payload)
}

// Image prompts, selected by slot index
const (
	enhanceCleanPrompt     = "Subtly enhance this product photo for e-commerce. Clean the background to neutral light grey, improve lighting, remove text/watermarks. Do not alter the product."
	enhanceLifestylePrompt = "Take the product from this image and place it in a realistic lifestyle setting for e-commerce."
)

// GeneratePrompt is the from-scratch image prompt for slot index
func GeneratePrompt(title string, index int) string {
	if index < 2 {
		return fmt.Sprintf("Photorealistic product image of \"%s\" on clean neutral background, professional e-commerce photography", title)
	}
	return fmt.Sprintf("Lifestyle photo of \"%s\" being used in natural context, photorealistic", title)
}

// EnhancePrompt is the edit prompt for a scraped image in slot index
func EnhancePrompt(index int) string {
	if index < 2 {
		return enhanceCleanPrompt
	}
	return enhanceLifestylePrompt
}

// BackfillPrompt replaces an image slot that could not be enhanced
func BackfillPrompt(title string) string {
	return fmt.Sprintf("Photorealistic product image of \"%s\" on clean neutral background", title)
}

// Package extractor turns free-form conversation text into structured
// search criteria using Gemini structured output.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/platform/logger"
)

// Config configures the Gemini-backed extractor.
type Config struct {
	APIKey string
	// Model handles extraction and question generation.
	Model string
	// FlashModel handles the cheap binary domain check.
	FlashModel string
}

// Client wraps a Gemini client with the extraction, follow-up question
// and domain-check calls the conversation engine needs.
type Client struct {
	genai      *genai.Client
	model      string
	flashModel string
	log        *logger.Logger
}

// NewClient creates a Client against the Gemini API.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		genai:      gc,
		model:      cfg.Model,
		flashModel: cfg.FlashModel,
		log:        log,
	}, nil
}

var leadSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"location":       {Type: genai.TypeString, Description: "ciudad, distrito o zona"},
		"property_types": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"transaction":    {Type: genai.TypeString, Enum: []string{domain.TransactionRent, domain.TransactionBuy}},
		"budget":         {Type: genai.TypeInteger},
		"bedrooms":       {Type: genai.TypeInteger},
		"bathrooms":      {Type: genai.TypeInteger},
		"min_area":       {Type: genai.TypeInteger},
		"amenities":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"proximity":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"pet_friendly":   {Type: genai.TypeBoolean},
	},
}

// Extract reads every search criterion mentioned anywhere in the user
// transcript. Absent fields stay zero-valued so the caller can merge
// the result over previously collected criteria.
func (c *Client) Extract(ctx context.Context, userTranscript string) (domain.Lead, error) {
	prompt := fmt.Sprintf(leadPrompt, userTranscript)
	return c.generateLead(ctx, prompt)
}

// Spanish labels used inside the single-field prompt.
var fieldLabels = map[string]string{
	domain.FieldLocation:     "ubicación",
	domain.FieldPropertyType: "tipo de propiedad",
	domain.FieldTransaction:  "tipo de transacción (alquiler o compra)",
	domain.FieldBudget:       "presupuesto",
	domain.FieldBedrooms:     "número de dormitorios",
	domain.FieldBathrooms:    "número de baños",
	domain.FieldMinArea:      "metraje mínimo",
	domain.FieldAmenities:    "amenidades",
}

// ExtractField reads only the named criterion from a single message.
// Used by the update-criteria flow, where the reply is about exactly
// one field and the rest of the lead must not move.
func (c *Client) ExtractField(ctx context.Context, field, text string) (domain.Lead, error) {
	label, ok := fieldLabels[field]
	if !ok {
		return domain.Lead{}, fmt.Errorf("unknown criterion %q", field)
	}
	prompt := fmt.Sprintf(fieldPrompt, label, text)
	return c.generateLead(ctx, prompt)
}

func (c *Client) generateLead(ctx context.Context, prompt string) (domain.Lead, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		MaxOutputTokens:  512,
		ResponseMIMEType: "application/json",
		ResponseSchema:   leadSchema,
	})
	if err != nil {
		return domain.Lead{}, fmt.Errorf("lead extraction call: %w", err)
	}

	var lead domain.Lead
	if err := json.Unmarshal([]byte(resp.Text()), &lead); err != nil {
		return domain.Lead{}, fmt.Errorf("decode extracted lead: %w", err)
	}
	return lead, nil
}

// Question asks for the single most important criterion still missing,
// phrased as the next assistant turn in the running conversation.
func (c *Client) Question(ctx context.Context, missing []string, transcript string) (string, error) {
	labels := make([]string, 0, len(missing))
	for _, f := range missing {
		if label, ok := fieldLabels[f]; ok {
			labels = append(labels, strings.ToUpper(label))
		}
	}

	prompt := fmt.Sprintf(questionPrompt, strings.Join(labels, ", "), transcript)
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.7)),
		TopP:            genai.Ptr(float32(0.7)),
		MaxOutputTokens: 250,
	})
	if err != nil {
		return "", fmt.Errorf("question generation call: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("question generation returned empty response")
	}
	return text, nil
}

var domainSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"relevant": {Type: genai.TypeBoolean},
	},
	Required: []string{"relevant"},
}

// IsInDomain runs the binary relevance check on the flash model. It
// backs the validator's escalation path for input the keyword lists
// cannot decide.
func (c *Client) IsInDomain(ctx context.Context, text string) (bool, error) {
	prompt := fmt.Sprintf(domainPrompt, text)
	resp, err := c.genai.Models.GenerateContent(ctx, c.flashModel, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		MaxOutputTokens:  64,
		ResponseMIMEType: "application/json",
		ResponseSchema:   domainSchema,
	})
	if err != nil {
		return false, fmt.Errorf("domain check call: %w", err)
	}

	var verdict struct {
		Relevant bool `json:"relevant"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &verdict); err != nil {
		return false, fmt.Errorf("decode domain verdict: %w", err)
	}
	return verdict.Relevant, nil
}

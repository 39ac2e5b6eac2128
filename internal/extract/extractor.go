// Package extract integrates the external receipt-extraction
// collaborator. Its output is a best-effort structured guess and is
// treated as untrusted: every field is re-validated by the ingestion
// layer before it reaches the ledger.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var (
	// ErrUnavailable means the extraction capability is not configured.
	// Resolved once at startup; ingestion never depends on it.
	ErrUnavailable = errors.New("receipt extraction not configured")

	// ErrExtraction means the collaborator failed or returned content
	// that cannot be parsed. The caller must fall back to manual
	// validated input, never fabricate data.
	ErrExtraction = errors.New("receipt extraction failed")
)

// ReceiptData is the collaborator's structured guess. Numeric and date
// fields are kept in their raw form; nothing here is guaranteed valid.
type ReceiptData struct {
	Vendor      string      `json:"vendor"`
	Date        string      `json:"date"`
	TotalAmount json.Number `json:"total_amount"`
	Category    string      `json:"category"`
	Items       []Item      `json:"items"`
}

type Item struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// Extractor proposes transaction fields from a receipt image. The raw
// JSON payload is returned alongside the parsed guess so callers can
// store it for audit.
type Extractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptData, []byte, error)
}

// GeminiExtractor extracts receipt fields with the Gemini API.
type GeminiExtractor struct {
	client     *genai.Client
	model      string
	categories []string
}

// NewGeminiExtractor creates the extractor, or ErrUnavailable when no
// API key is configured.
func NewGeminiExtractor(ctx context.Context, apiKey, model string, categories []string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model, categories: categories}, nil
}

func (e *GeminiExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptData, []byte, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildReceiptPrompt(e.categories)},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generate content: %w", ErrExtraction, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, nil, fmt.Errorf("%w: empty response from model", ErrExtraction)
	}

	return decodeReceipt(rawText)
}

// buildReceiptPrompt instructs the model to return the receipt fields as
// strict JSON, constrained to the configured category labels.
func buildReceiptPrompt(categories []string) string {
	var b strings.Builder
	b.WriteString("Extract from this receipt and return ONLY valid JSON:\n")
	b.WriteString("{\n")
	b.WriteString("    \"vendor\": \"store name\",\n")
	b.WriteString("    \"date\": \"YYYY-MM-DD\",\n")
	b.WriteString("    \"total_amount\": 0.00,\n")
	b.WriteString("    \"category\": \"one of the categories below\",\n")
	b.WriteString("    \"items\": [{\"name\": \"item\", \"price\": 0.00}]\n")
	b.WriteString("}\n")
	b.WriteString("Categories: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n")
	b.WriteString("Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")
	return b.String()
}

// decodeReceipt parses model output into ReceiptData, stripping Markdown
// fences if the model ignored instructions. The cleaned JSON bytes are
// returned for audit storage.
func decodeReceipt(rawText string) (*ReceiptData, []byte, error) {
	clean := cleanModelJSON(rawText)

	var data ReceiptData
	if err := json.Unmarshal([]byte(clean), &data); err != nil {
		return nil, nil, fmt.Errorf("%w: parse model output: %w", ErrExtraction, err)
	}
	return &data, []byte(clean), nil
}

// cleanModelJSON strips code fences and any text around the outermost
// JSON object.
func cleanModelJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

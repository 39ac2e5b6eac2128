package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain json", `{"vendor":"A"}`, `{"vendor":"A"}`},
		{"json fence", "```json\n{\"vendor\":\"A\"}\n```", `{"vendor":"A"}`},
		{"bare fence", "```\n{\"vendor\":\"A\"}\n```", `{"vendor":"A"}`},
		{"surrounding prose", "Here you go:\n{\"vendor\":\"A\"}\nHope that helps!", `{"vendor":"A"}`},
		{"whitespace", "  \n{\"vendor\":\"A\"}  \n", `{"vendor":"A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanModelJSON(tt.input))
		})
	}
}

func TestDecodeReceipt(t *testing.T) {
	raw := "```json\n" + `{
		"vendor": "Coffee Shop",
		"date": "2024-06-15",
		"total_amount": 12.50,
		"category": "Executive Lunch",
		"items": [{"name": "latte", "price": 4.50}, {"name": "sandwich", "price": 8.00}]
	}` + "\n```"

	data, clean, err := decodeReceipt(raw)
	require.NoError(t, err)

	assert.Equal(t, "Coffee Shop", data.Vendor)
	assert.Equal(t, "2024-06-15", data.Date)
	assert.Equal(t, "12.50", data.TotalAmount.String())
	assert.Equal(t, "Executive Lunch", data.Category)
	require.Len(t, data.Items, 2)
	assert.Equal(t, "latte", data.Items[0].Name)

	// Audit payload is the cleaned JSON, no fences.
	assert.False(t, strings.Contains(string(clean), "```"))
}

func TestDecodeReceiptMalformed(t *testing.T) {
	_, _, err := decodeReceipt("the receipt is unreadable, sorry")
	require.ErrorIs(t, err, ErrExtraction)
}

func TestDecodeReceiptPartialFields(t *testing.T) {
	// Missing fields decode to zero values; validation happens downstream.
	data, _, err := decodeReceipt(`{"vendor": "Store"}`)
	require.NoError(t, err)
	assert.Equal(t, "Store", data.Vendor)
	assert.Empty(t, data.Date)
	assert.Empty(t, data.Category)
}

func TestNewGeminiExtractorRequiresKey(t *testing.T) {
	_, err := NewGeminiExtractor(context.Background(), "", "gemini-2.0-flash-exp", []string{"Shopping"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestBuildReceiptPrompt(t *testing.T) {
	prompt := buildReceiptPrompt([]string{"Shopping", "Utilities"})
	assert.Contains(t, prompt, "Shopping, Utilities")
	assert.Contains(t, prompt, "total_amount")
	assert.Contains(t, prompt, "YYYY-MM-DD")
}

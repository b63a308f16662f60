package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts generative-model providers for SoF structuring.
type Client interface {
	// Extract runs a single draft extraction over the document text and
	// returns the model's JSON output.
	Extract(ctx context.Context, input ExtractInput) (json.RawMessage, error)
	// Adjudicate cross-checks draft extractions against the source text and
	// returns a single consolidated JSON object.
	Adjudicate(ctx context.Context, input AdjudicateInput) (json.RawMessage, error)
}

// ExtractInput captures the inputs for one draft extraction pass.
type ExtractInput struct {
	DocumentText  string
	Temperature   float32
	PromptVersion string
}

// AdjudicateInput captures the inputs for the adjudication pass.
type AdjudicateInput struct {
	DocumentText  string
	Drafts        []json.RawMessage
	PromptVersion string
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// Extract returns ErrNotConfigured.
func (PlaceholderClient) Extract(ctx context.Context, input ExtractInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}

// Adjudicate returns ErrNotConfigured.
func (PlaceholderClient) Adjudicate(ctx context.Context, input AdjudicateInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}

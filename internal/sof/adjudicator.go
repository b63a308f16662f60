package sof

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sof-backend/internal/llm"
	"sof-backend/internal/shared/metrics"
)

const (
	draftTemperatureA float32 = 0.0
	draftTemperatureB float32 = 0.3
)

// ErrEmptyDocument indicates there was no usable text to structure.
var ErrEmptyDocument = errors.New("document text is empty")

// Adjudicator turns raw Statement of Facts text into a validated Report.
// It runs two independent draft extractions at different temperatures,
// then a final adjudication pass that consolidates the drafts against
// the source text. A draft failure aborts the run; there are no
// automatic retries.
type Adjudicator struct {
	client        llm.Client
	promptVersion string
}

// NewAdjudicator wires an Adjudicator over the given model client.
func NewAdjudicator(client llm.Client, promptVersion string) *Adjudicator {
	if strings.TrimSpace(promptVersion) == "" {
		promptVersion = "v1"
	}
	return &Adjudicator{client: client, promptVersion: promptVersion}
}

// Structure runs the full dual-pass pipeline and returns the validated
// report along with its canonical JSON encoding.
func (a *Adjudicator) Structure(ctx context.Context, documentText string) (*Report, json.RawMessage, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, nil, ErrEmptyDocument
	}

	metrics.IncStructuringStarted()

	draftA, err := a.client.Extract(ctx, llm.ExtractInput{
		DocumentText:  documentText,
		Temperature:   draftTemperatureA,
		PromptVersion: a.promptVersion,
	})
	if err != nil {
		metrics.IncStructuringFailed()
		return nil, nil, fmt.Errorf("draft extraction (pass 1): %w", err)
	}

	draftB, err := a.client.Extract(ctx, llm.ExtractInput{
		DocumentText:  documentText,
		Temperature:   draftTemperatureB,
		PromptVersion: a.promptVersion,
	})
	if err != nil {
		metrics.IncStructuringFailed()
		return nil, nil, fmt.Errorf("draft extraction (pass 2): %w", err)
	}

	final, err := a.client.Adjudicate(ctx, llm.AdjudicateInput{
		DocumentText:  documentText,
		Drafts:        []json.RawMessage{draftA, draftB},
		PromptVersion: a.promptVersion,
	})
	if err != nil {
		metrics.IncStructuringFailed()
		return nil, nil, fmt.Errorf("adjudication: %w", err)
	}

	report, err := ParseReport(final)
	if err != nil {
		metrics.IncAdjudicationRejected()
		return nil, nil, err
	}
	metrics.IncAdjudicationPassed()

	canonical, err := json.Marshal(report)
	if err != nil {
		return nil, nil, fmt.Errorf("encode report: %w", err)
	}
	return report, canonical, nil
}

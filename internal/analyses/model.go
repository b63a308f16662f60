package analyses

import (
	"encoding/json"
	"time"
)

// Analysis represents one structuring run over an uploaded document.
type Analysis struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"documentId"`
	Status          string          `json:"status"`
	Result          json.RawMessage `json:"result,omitempty"`
	ErrorCode       string          `json:"errorCode,omitempty"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	Provider        string          `json:"provider"`
	Model           string          `json:"model"`
	PromptVersion   string          `json:"promptVersion"`
	PipelineVersion string          `json:"pipelineVersion"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

package analyses

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotConfigured  = errors.New("pipeline not configured")
	ErrAlreadyRunning = errors.New("analysis already running for document")
)

const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeExtraction        = "EXTRACTION_ERROR"
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)

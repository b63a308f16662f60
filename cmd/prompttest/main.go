package main

// Run the structuring pipeline against a local SoF document without the
// HTTP server:
//   go run ./cmd/prompttest -doc path/to/sof.pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sof-backend/internal/extract"
	"sof-backend/internal/llm"
	"sof-backend/internal/llm/gemini"
	"sof-backend/internal/llm/openai"
	"sof-backend/internal/shared/config"
	"sof-backend/internal/sof"
)

func main() {
	cfg := config.Load()

	docPath := flag.String("doc", "", "Path to SoF document (pdf or docx)")
	promptVersion := flag.String("prompt-version", cfg.PromptVersion, "Prompt version")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*docPath) == "" {
		exitErr("doc path is required")
	}

	mimeType, err := mimeFromExt(*docPath)
	if err != nil {
		exitErr(err.Error())
	}

	docBytes, err := os.ReadFile(*docPath)
	if err != nil {
		exitErr(fmt.Sprintf("read document: %v", err))
	}
	fileName := filepath.Base(*docPath)

	text, err := extract.TextFromBytes(context.Background(), docBytes, mimeType, fileName)
	if err != nil {
		exitErr(fmt.Sprintf("extract document text: %v", err))
	}

	client, err := buildClient(*provider, *model)
	if err != nil {
		exitErr(err.Error())
	}

	adjudicator := sof.NewAdjudicator(client, *promptVersion)
	_, canonical, err := adjudicator.Structure(context.Background(), text)
	if err != nil {
		exitErr(fmt.Sprintf("structure: %v", err))
	}

	pretty, err := prettyJSON(canonical)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func buildClient(provider, model string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), model)
	case "", "gemini":
		return gemini.NewClient(os.Getenv("GOOGLE_API_KEY"), model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extract.MimePDF, nil
	case ".docx":
		return extract.MimeDOCX, nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

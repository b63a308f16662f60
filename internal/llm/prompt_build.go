package llm

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// BuildExtractPrompt renders the extraction prompt for one draft pass.
func BuildExtractPrompt(promptVersion, documentText string) string {
	template, ok := ExtractPromptTemplate(strings.TrimSpace(promptVersion))
	if !ok {
		log.Printf("unknown extract prompt version %q, defaulting to v1", promptVersion)
	}
	return fmt.Sprintf("%s\n\n--- DOCUMENT TEXT ---\n%s\n--- END DOCUMENT ---\n", template, documentText)
}

// BuildAdjudicatePrompt renders the adjudication prompt from the source text
// and the draft extractions. Exactly two drafts are expected; missing drafts
// render as empty objects.
func BuildAdjudicatePrompt(promptVersion, documentText string, drafts []json.RawMessage) string {
	template, ok := AdjudicatePromptTemplate(strings.TrimSpace(promptVersion))
	if !ok {
		log.Printf("unknown adjudicate prompt version %q, defaulting to v1", promptVersion)
	}

	draft1 := "{}"
	draft2 := "{}"
	if len(drafts) > 0 && len(drafts[0]) > 0 {
		draft1 = string(drafts[0])
	}
	if len(drafts) > 1 && len(drafts[1]) > 0 {
		draft2 = string(drafts[1])
	}

	replacer := strings.NewReplacer(
		"{{DOCUMENT_TEXT}}", documentText,
		"{{DRAFT_1}}", draft1,
		"{{DRAFT_2}}", draft2,
	)
	return replacer.Replace(template)
}

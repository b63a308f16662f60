package llm

import _ "embed"

var (
	//go:embed prompts/extract_v1.txt
	extractPromptV1 string
	//go:embed prompts/adjudicate_v1.txt
	adjudicatePromptV1 string
)

// ExtractPromptTemplate returns the extraction prompt text and whether the version was recognized.
func ExtractPromptTemplate(version string) (string, bool) {
	switch version {
	case "v1":
		return extractPromptV1, true
	default:
		return extractPromptV1, false
	}
}

// AdjudicatePromptTemplate returns the adjudication prompt text and whether the version was recognized.
func AdjudicatePromptTemplate(version string) (string, bool) {
	switch version {
	case "v1":
		return adjudicatePromptV1, true
	default:
		return adjudicatePromptV1, false
	}
}

// Package llm - extractor.go builds structured-extraction prompts.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON document the model must return.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "TrainingCandidates")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string // Description for the model
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		fmt.Fprintf(&sb, "  %q: %s%s", field.Name, typeHint, requiredHint)
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Use only information present in the input. Never invent a program, an organization, an address or a URL.\n")
	sb.WriteString("- Leave a field empty (\"\") when the input does not state it.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// TrainingCandidatesSchema returns the extraction schema for training programs found in
// search results. preamble is the task description, usually a formatted prompt template.
func TrainingCandidatesSchema(preamble string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "TrainingCandidates",
		Description: preamble,
		Fields: []SchemaField{
			{
				Name: "candidates",
				Type: `[{"title": "string", "organization": "string", "city": "string", "address": "string", ` +
					`"url1": "string", "url2": "string", "diploma_hint": "string"}]`,
				Description: "One entry per distinct program. url1 and url2 are two pages describing the program, " +
					"on two different websites. diploma_hint is the diploma wording (CAP, Bac Pro, BTSA, licence...).",
				Required: true,
			},
		},
	}
}

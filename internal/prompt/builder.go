// Package prompt renders the text sent to the generation providers.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/bio_generator.tmpl
var bioTemplateText string

var bioTemplate = template.Must(template.New("bio_generator").Parse(bioTemplateText))

// BuildBio renders the bio generator prompt. The workplace clause is omitted
// when Workplace is empty.
func BuildBio(data BioPromptData) (string, error) {
	if data.MaxWords <= 0 {
		return "", fmt.Errorf("bio prompt: max words must be positive, got %d", data.MaxWords)
	}

	var sb strings.Builder
	if err := bioTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render bio prompt: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

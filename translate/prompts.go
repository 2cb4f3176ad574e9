package translate

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Dedicated translation models (translategemma family) are trained on a fixed
// instruction shape and ignore system-style prompting; general chat models
// need the full rule list or they editorialize.
const gemmaPromptTemplate = `Translate the following text from {{ .SourceName }} to {{ .TargetName }}.
Output only the translation, keeping every <<<SEG_n>>> marker line exactly as given.

{{ .Text }}`

const chatPromptTemplate = `You are a professional document translator.
Translate the text below from {{ .SourceName }} to {{ .TargetName }}.

Rules:
- Output ONLY the translation, no commentary, no notes, no quotes around it.
- Keep every marker line of the form <<<SEG_n>>> exactly as it appears, on its own line, in the same order.
- Preserve line breaks, numbers, and punctuation structure.
- Do not translate URLs, email addresses, or code fragments.
{{- if .Glossary }}
- Use these term translations:
{{- range $src, $dst := .Glossary }}
  - "{{ $src }}" -> "{{ $dst }}"
{{- end }}
{{- end }}

Text:
{{ .Text }}`

var (
	gemmaTmpl = template.Must(template.New("gemma-translate").Funcs(sprig.FuncMap()).Parse(gemmaPromptTemplate))
	chatTmpl  = template.Must(template.New("chat-translate").Funcs(sprig.FuncMap()).Parse(chatPromptTemplate))
)

type promptData struct {
	SourceName string
	TargetName string
	Text       string
	Glossary   map[string]string
}

// buildPrompt renders the translation prompt for the given model family.
func buildPrompt(model, text, sourceLang, targetLang string, glossary map[string]string) (string, error) {
	data := promptData{
		SourceName: DisplayName(sourceLang),
		TargetName: DisplayName(targetLang),
		Text:       text,
		Glossary:   glossary,
	}
	tmpl := chatTmpl
	if strings.Contains(strings.ToLower(model), "translategemma") {
		tmpl = gemmaTmpl
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering translation prompt: %w", err)
	}
	return buf.String(), nil
}

var (
	thinkTagRe   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	labelPrefixRe = regexp.MustCompile(`(?i)^\s*(translation|translated text|output)\s*:\s*`)
)

// cleanResponse strips reasoning blocks and label prefixes that chat models
// prepend despite instructions.
func cleanResponse(s string) string {
	s = thinkTagRe.ReplaceAllString(s, "")
	s = labelPrefixRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

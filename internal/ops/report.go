package ops

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/persona"
	"github.com/hpungsan/panelist/internal/transcript"
)

// RenderMarkdown renders a transcript as Markdown: a heading, the topic, each
// exchange in order and any failed questions.
func RenderMarkdown(rec *transcript.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Interview: %s\n\n", persona.DisplayName(rec.PersonaType))
	fmt.Fprintf(&b, "**Research topic:** %s\n\n", rec.ResearchTopic)
	fmt.Fprintf(&b, "**Questions answered:** %d\n\n", len(rec.ConversationHistory))

	for i, e := range rec.ConversationHistory {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, escapeMarkdown(e.Question))
		for _, line := range strings.Split(e.Response, "\n") {
			fmt.Fprintf(&b, "> %s\n", escapeMarkdown(line))
		}
		b.WriteString("\n")
	}

	if len(rec.FailedQuestions) > 0 {
		b.WriteString("## Unanswered\n\n")
		for _, f := range rec.FailedQuestions {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(f.Question))
		}
	}
	return b.String()
}

// RenderReport converts a transcript to an HTML fragment via goldmark.
func RenderReport(rec *transcript.Record) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(RenderMarkdown(rec)), &buf); err != nil {
		return "", errors.NewInternal(err)
	}
	return buf.String(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderReportPage wraps RenderReport in a standalone HTML document.
func RenderReportPage(rec *transcript.Record) (string, error) {
	body, err := RenderReport(rec)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: fmt.Sprintf("%s: %s", persona.DisplayName(rec.PersonaType), rec.ResearchTopic),
		Body:  template.HTML(body),
	})
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;", "#", `\#`, "`", "\\`",
)

// leadingBlockMarker matches a line start goldmark would read as a list item
// or setext underline: "-", "+", "=", "1." or "1)".
var leadingBlockMarker = regexp.MustCompile(`^(\s{0,3}\d{0,9})([-+=]|[.)])`)

// escapeMarkdown escapes a single line of model or user text so it renders as
// literal paragraph text.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	m := leadingBlockMarker.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	prefix, marker := s[m[2]:m[3]], s[m[4]:m[5]]
	hasDigits := strings.TrimSpace(prefix) != ""
	if isOrdered := marker == "." || marker == ")"; isOrdered != hasDigits {
		return s
	}
	return prefix + `\` + s[m[4]:]
}

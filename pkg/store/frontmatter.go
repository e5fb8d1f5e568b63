package store

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhinspira/hrboard/pkg/editor"
)

const frontmatterDelimiter = "---"

// ExportHeader is the YAML frontmatter written at the top of an exported report.
type ExportHeader struct {
	Title      string    `yaml:"title"`
	Kind       string    `yaml:"kind"`
	Week       string    `yaml:"week,omitempty"`
	Month      string    `yaml:"month,omitempty"`
	Priorities []string  `yaml:"priorities,omitempty"`
	Exported   time.Time `yaml:"exported"`
}

// ExportWeek renders a week as markdown with frontmatter.
func ExportWeek(w Week, now time.Time) (string, error) {
	h := ExportHeader{
		Title:      "Relatório Semanal " + w.WeekRange,
		Kind:       "week",
		Week:       w.ID,
		Priorities: w.TopPriorities[:],
		Exported:   now.UTC(),
	}

	var b strings.Builder
	b.WriteString("# " + h.Title + "\n\n")
	b.WriteString("## Leads por Vaga\n")
	for slot, p := range w.TopPriorities {
		fmt.Fprintf(&b, "\n### #%d %s\n\n", slot+1, p)
		if len(w.PriorityPipelines[slot]) == 0 {
			b.WriteString("_Nenhum candidato_\n")
			continue
		}
		for _, c := range w.PriorityPipelines[slot] {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Name, c.Status.Label())
		}
	}
	for _, sec := range []Section{SectionThisWeek, SectionNextWeek} {
		fmt.Fprintf(&b, "\n## %s\n", sec.Title())
		writeReport(&b, *w.Report(sec))
	}

	return SerializeFrontmatter(h, b.String())
}

// ExportMonth renders a monthly report together with the semester goals.
func ExportMonth(month MonthKey, data StrategicData, now time.Time) (string, error) {
	if !month.Valid() {
		return "", fmt.Errorf("month %q: %w", month, ErrNotFound)
	}
	h := ExportHeader{
		Title:    "Relatório Mensal " + month.Label(),
		Kind:     "month",
		Month:    string(month),
		Exported: now.UTC(),
	}

	var b strings.Builder
	b.WriteString("# " + h.Title + "\n")
	for _, sem := range []Semester{Semester1, Semester2} {
		fmt.Fprintf(&b, "\n## Metas %s\n\n", sem.Title())
		for _, g := range *data.Goals(sem) {
			mark := " "
			if g.Achieved {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, g.Text)
		}
	}
	b.WriteString("\n## Relatório do Mês\n")
	writeReport(&b, data.MonthlyReports[month])

	return SerializeFrontmatter(h, b.String())
}

func writeReport(b *strings.Builder, r ReportSection) {
	for _, cat := range Categories {
		fmt.Fprintf(b, "\n### %s\n\n", cat.Title())
		body := strings.TrimSpace(editor.ToMarkdown(r.Get(cat)))
		if body == "" {
			body = "_Sem registros_"
		}
		b.WriteString(body + "\n")
	}
}

// SerializeFrontmatter joins a header and a markdown body.
func SerializeFrontmatter(h ExportHeader, body string) (string, error) {
	yamlBytes, err := yaml.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("serializing frontmatter YAML: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(string(yamlBytes), "\n"))
	b.WriteString("\n")
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// ParseFrontmatter splits an exported report into header and body.
func ParseFrontmatter(content string) (ExportHeader, string, error) {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return ExportHeader{}, content, nil
	}

	rest := content[len(frontmatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx == -1 {
		return ExportHeader{}, "", fmt.Errorf("unclosed frontmatter delimiter")
	}

	var h ExportHeader
	if err := yaml.Unmarshal([]byte(rest[:idx]), &h); err != nil {
		return ExportHeader{}, "", fmt.Errorf("parsing frontmatter YAML: %w", err)
	}
	body := strings.TrimLeft(rest[idx+len("\n"+frontmatterDelimiter):], "\n")
	return h, body, nil
}

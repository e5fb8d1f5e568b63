package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, h ExportHeader, body string)
	}{
		{
			name: "full frontmatter with body",
			input: `---
title: "Relatório Semanal 01 Dez - 07 Dez, 2025"
kind: week
week: w-current
priorities: [Gerente de Vendas (SMA), Analista Fiscal (PFU)]
exported: 2025-12-05T10:00:00Z
---

# Relatório

Corpo do relatório.
`,
			check: func(t *testing.T, h ExportHeader, body string) {
				assert.Equal(t, "week", h.Kind)
				assert.Equal(t, "w-current", h.Week)
				assert.Equal(t, []string{"Gerente de Vendas (SMA)", "Analista Fiscal (PFU)"}, h.Priorities)
				assert.Contains(t, body, "# Relatório")
				assert.Contains(t, body, "Corpo do relatório.")
			},
		},
		{
			name:  "no frontmatter",
			input: "Apenas texto.",
			check: func(t *testing.T, h ExportHeader, body string) {
				assert.Equal(t, "", h.Title)
				assert.Equal(t, "Apenas texto.", body)
			},
		},
		{
			name:    "unclosed frontmatter",
			input:   "---\ntitle: broken\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, body, err := ParseFrontmatter(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, h, body)
		})
	}
}

func TestExportWeek(t *testing.T) {
	now := time.Date(2025, 12, 5, 9, 30, 0, 0, time.UTC)
	w := Seed().Weeks[0]
	w.ReportThisWeek.DHO = `<b>Clima</b> em <a href="https://example.com" target="_blank" rel="noopener noreferrer">pesquisa</a>`

	content, err := ExportWeek(w, now)
	require.NoError(t, err)

	h, body, err := ParseFrontmatter(content)
	require.NoError(t, err)
	assert.Equal(t, "week", h.Kind)
	assert.Equal(t, "w-current", h.Week)
	assert.Equal(t, w.TopPriorities[:], h.Priorities)
	assert.True(t, now.Equal(h.Exported))

	assert.Contains(t, body, "### #1 Gerente de Vendas (SMA)")
	assert.Contains(t, body, "- Ana Souza (Entrevista Gestão)")
	assert.Contains(t, body, "## Esta Semana")
	assert.Contains(t, body, "## Próxima Semana")
	assert.Contains(t, body, "- Fechada vaga de Dev Senior (SCS)\n- Triagem de 50 CVs para Comercial")
	assert.Contains(t, body, "**Clima** em [pesquisa](https://example.com)")
}

func TestExportWeekEmptyPipeline(t *testing.T) {
	content, err := ExportWeek(Seed().Weeks[2], time.Now())
	require.NoError(t, err)
	assert.Contains(t, content, "_Nenhum candidato_")
	assert.Contains(t, content, "_Sem registros_")
}

func TestExportMonth(t *testing.T) {
	content, err := ExportMonth("nov", Seed().StrategicData, time.Now())
	require.NoError(t, err)

	h, body, err := ParseFrontmatter(content)
	require.NoError(t, err)
	assert.Equal(t, "month", h.Kind)
	assert.Equal(t, "nov", h.Month)
	assert.Contains(t, body, "# Relatório Mensal Nov")
	assert.Contains(t, body, "- [x] Implementar novo sistema de ATS")
	assert.Contains(t, body, "- [ ] Reduzir turnover em 10%")
	assert.Contains(t, body, "Fechamos 15 vagas")

	_, err = ExportMonth("xyz", Seed().StrategicData, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

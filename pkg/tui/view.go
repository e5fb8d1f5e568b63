package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rhinspira/hrboard/pkg/editor"
	"github.com/rhinspira/hrboard/pkg/store"
)

const minWidth = 60
const minHeight = 12

// View implements tea.Model.
func (m Model) View() string {
	w := m.width
	h := m.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}

	if m.showHelpModal {
		return placeOverlay(m.renderHelpModal(), w, h)
	}

	if m.showDeleteConfirm {
		return placeOverlay(m.renderDeleteModal(), w, h)
	}

	var b strings.Builder

	b.WriteString(m.renderHeader(w))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")

	headerLines := 3
	footerLines := 2

	searchActive := m.isSearching || m.searchQuery != ""
	if searchActive {
		headerLines++
		b.WriteString(m.renderSearchBar(w))
		b.WriteString("\n")
	}

	contentHeight := h - headerLines - footerLines

	leftWidth := m.rowsWidth()
	rightWidth := m.detailWidth()

	leftPanel := m.renderRowsPanel(leftWidth, contentHeight)
	rightPanel := m.renderDetailPanel(rightWidth, contentHeight)

	sepColor := ColorGrayDim
	if m.editing {
		sepColor = ColorPurple
	}
	sep := lipgloss.NewStyle().Foreground(sepColor).Render("│")
	for i := 0; i < contentHeight; i++ {
		b.WriteString(getLine(leftPanel, i, leftWidth))
		b.WriteString(sep)
		b.WriteString(getLine(rightPanel, i, rightWidth))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(w))

	return b.String()
}

func (m Model) rowsWidth() int {
	w := m.width
	if w < minWidth {
		w = minWidth
	}
	left := w * 2 / 5
	if left < 28 {
		left = 28
	}
	return left
}

func (m Model) detailWidth() int {
	w := m.width
	if w < minWidth {
		w = minWidth
	}
	right := w - m.rowsWidth() - 1 // 1 char for divider
	if right < 20 {
		right = 20
	}
	return right
}

func (m Model) renderHeader(width int) string {
	title := HeaderStyle.Render("Painel RH")

	status := ""
	if m.statusMsg != "" && time.Now().Before(m.statusTimeout) {
		status = "  " + lipgloss.NewStyle().Foreground(ColorCyan).Render(m.statusMsg)
	}

	indicator := m.saveIndicator()
	gap := width - lipgloss.Width(title) - lipgloss.Width(status) - lipgloss.Width(indicator)
	if gap < 1 {
		gap = 1
	}

	return title + status + strings.Repeat(" ", gap) + indicator
}

// saveIndicator shows the pending manual save, the last failure or the time
// of the last successful write.
func (m Model) saveIndicator() string {
	st := m.syncer.Status()
	switch {
	case m.saving || st.Pending:
		return SavingStyle.Render("Salvando...")
	case m.warning != nil:
		return WarningStyle.Render("⚠ não salvo")
	case !st.LastFlush.IsZero():
		return HeaderCountStyle.Render("(auto: " + st.LastFlush.Format("15:04") + ")")
	}
	return ""
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, v := range []struct {
		mode  viewMode
		label string
	}{{viewOperational, "Operacional"}, {viewStrategic, "Estratégico"}} {
		if v.mode == m.mode {
			tabs = append(tabs, ActiveTabStyle.Render(v.label))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(v.label))
		}
	}
	tabs = append(tabs, "  ")

	if m.mode == viewStrategic {
		for _, month := range store.Months {
			if month == m.month {
				tabs = append(tabs, ActiveTabStyle.Render(month.Label()))
			} else {
				tabs = append(tabs, InactiveTabStyle.Render(month.Label()))
			}
		}
		return strings.Join(tabs, "")
	}

	if w, err := m.board.Week(m.weekIdx); err == nil {
		tabs = append(tabs, FooterStyle.Render(w.WeekRange+" "))
	}
	if m.weekIdx == store.CurrentWeek {
		tabs = append(tabs, PriorityStyle.Render("atual "))
	} else {
		tabs = append(tabs, ReadOnlyStyle.Render(fmt.Sprintf("histórico %d/%d", m.weekIdx, m.board.WeekCount()-1)), " ")
	}
	for _, sec := range []store.Section{store.SectionThisWeek, store.SectionNextWeek} {
		if sec == m.section {
			tabs = append(tabs, ActiveTabStyle.Render(sec.Title()))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(sec.Title()))
		}
	}
	return strings.Join(tabs, "")
}

func (m Model) renderSearchBar(width int) string {
	prefix := SearchBarStyle.Render(" / ")
	query := SearchBarStyle.Render(m.searchQuery)
	cursor := ""
	if m.isSearching {
		cursor = SearchBarStyle.Render("█")
	}

	countStr := ""
	if m.searchQuery != "" {
		countStr = SearchCountStyle.Render(fmt.Sprintf(" %d resultados", len(m.searchHits)))
	}

	left := prefix + query + cursor
	padWidth := width - lipgloss.Width(left) - lipgloss.Width(countStr)
	if padWidth < 1 {
		padWidth = 1
	}

	return left + strings.Repeat(" ", padWidth) + countStr
}

func (m Model) renderRowsPanel(width, height int) string {
	var lines []string

	if len(m.rows) == 0 {
		lines = append(lines, FooterStyle.Render("Nada para mostrar."))
	}

	// Scrolling window
	startIdx := 0
	endIdx := len(m.rows)
	if len(m.rows) > height {
		startIdx = m.cursor - height/2
		if startIdx < 0 {
			startIdx = 0
		}
		endIdx = startIdx + height
		if endIdx > len(m.rows) {
			endIdx = len(m.rows)
			startIdx = endIdx - height
		}
	}

	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(row Row, isSelected bool, width int) string {
	if row.Kind == RowHeader && !isSelected {
		return renderSectionHeader(row.Label, width)
	}

	var line string
	switch row.Kind {
	case RowHeader:
		line = "── " + row.Label + " "
	case RowPriority:
		w, _ := m.board.Week(m.weekIdx)
		count := len(w.PriorityPipelines[row.Slot])
		line = PriorityStyle.Render(row.Label) + HeaderCountStyle.Render(fmt.Sprintf(" (%d)", count))
	case RowCandidate:
		line = DepthIndent + statusStyle(row.Candidate.Status).Render(IconStatus) + " " + row.Label +
			HeaderCountStyle.Render(" · "+row.Candidate.Status.Label())
	case RowReport, RowMonthly:
		icon := " "
		if m.editing && m.editKey == m.rowSurfaceKey(row) {
			icon = IconEditing
		}
		snippet := firstLine(editor.PlainText(row.Value))
		line = icon + " " + BoldStyle.Render(row.Label) + " " + HeaderCountStyle.Render(snippet)
	case RowGoal:
		if row.Goal.Achieved {
			line = DepthIndent + AchievedStyle.Render(IconAchieved+" "+row.Label)
		} else {
			line = DepthIndent + PendingStyle.Render(IconPending+" "+row.Label)
		}
	}

	line = truncate(line, width)
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	if isSelected {
		line = SelectedStyle.Render(line)
	}
	return line
}

func (m Model) rowSurfaceKey(row Row) string {
	if row.Kind == RowMonthly {
		return surfaceKey(viewStrategic, row.Category)
	}
	return surfaceKey(viewOperational, row.Category)
}

func renderSectionHeader(label string, width int) string {
	out := HeaderStyle.Render("── " + label + " ")
	if remaining := width - lipgloss.Width(out); remaining > 0 {
		out += lipgloss.NewStyle().Foreground(ColorGrayDim).Render(strings.Repeat("─", remaining))
	}
	return out
}

func statusStyle(s store.PipelineStatus) lipgloss.Style {
	switch s {
	case store.StatusInterviewRecruiter:
		return StatusRecruiterStyle
	case store.StatusInterviewManager:
		return StatusManagerStyle
	case store.StatusProposal:
		return StatusProposalStyle
	default:
		return StatusInteractionStyle
	}
}

func (m Model) renderDetailPanel(width, height int) string {
	inner := width - 2
	var lines []string

	switch {
	case m.isSearching || m.searchQuery != "":
		lines = m.renderSearchResults(inner)
	case m.editing:
		s := m.activeSurface()
		row, _ := m.selectedRow()
		lines = append(lines, ModalTitleStyle.Render(IconEditing+" "+row.Label), "")
		lines = append(lines, renderSurface(s, inner, true)...)
	default:
		lines = m.renderSelection(inner)
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for i := range lines {
		lines[i] = " " + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSearchResults(width int) []string {
	if len(m.searchHits) == 0 {
		if m.searchQuery == "" {
			return []string{FooterStyle.Render("Digite para buscar em relatórios, candidatos e metas")}
		}
		return []string{FooterStyle.Render("Nenhum resultado")}
	}
	var lines []string
	for i, hit := range m.searchHits {
		where := truncate(hit.Where, width)
		text := truncate("  "+hit.Text, width)
		if i == m.searchCursor {
			lines = append(lines, SelectedStyle.Render(where), highlightMatch(text, m.searchQuery, SearchCharSelectedStyle, SelectedStyle))
		} else {
			lines = append(lines, SearchCountStyle.Render(where), highlightMatch(text, m.searchQuery, SearchCharStyle, NormalStyle))
		}
	}
	return lines
}

func (m Model) renderSelection(width int) []string {
	row, ok := m.selectedRow()
	if !ok {
		return []string{FooterStyle.Render("Selecione uma linha")}
	}

	switch row.Kind {
	case RowReport, RowMonthly:
		s := m.surfaces[m.rowSurfaceKey(row)]
		lines := []string{ModalTitleStyle.Render(row.Label), ""}
		if m.showPreview && !s.Empty() {
			if md := m.renderMarkdown(editor.ToMarkdown(row.Value)); md != "" {
				return append(lines, strings.Split(md, "\n")...)
			}
		}
		return append(lines, renderSurface(s, width, false)...)

	case RowPriority:
		w, _ := m.board.Week(m.weekIdx)
		lines := []string{ModalTitleStyle.Render(row.Label), ""}
		for _, status := range store.Statuses() {
			var names []string
			for _, c := range w.PriorityPipelines[row.Slot] {
				if c.Status == status {
					names = append(names, c.Name)
				}
			}
			label := statusStyle(status).Render(IconStatus + " " + status.Label())
			lines = append(lines, label)
			if len(names) == 0 {
				lines = append(lines, HeaderCountStyle.Render("   —"))
			}
			for _, n := range names {
				lines = append(lines, "   "+truncate(n, width-3))
			}
		}
		return lines

	case RowCandidate:
		lines := []string{ModalTitleStyle.Render(row.Candidate.Name), ""}
		for _, status := range store.Statuses() {
			marker := "  "
			style := HeaderCountStyle
			if status == row.Candidate.Status {
				marker = "▶ "
				style = statusStyle(status)
			}
			lines = append(lines, marker+style.Render(status.Label()))
		}
		return append(lines, "", FooterStyle.Render("space avança o status"))

	case RowGoal:
		state := PendingStyle.Render(IconPending + " em andamento")
		if row.Goal.Achieved {
			state = AchievedStyle.Render(IconAchieved + " atingida")
		}
		return []string{ModalTitleStyle.Render(row.Semester.Title()), "", row.Goal.Text, "", state}

	case RowHeader:
		strategic := m.board.Strategic()
		goals := *strategic.Goals(row.Semester)
		achieved := 0
		for _, g := range goals {
			if g.Achieved {
				achieved++
			}
		}
		return []string{
			ModalTitleStyle.Render(row.Label), "",
			fmt.Sprintf("%d/%d metas atingidas", achieved, len(goals)), "",
			FooterStyle.Render("a adiciona uma meta"),
		}
	}
	return nil
}

// renderMarkdown renders md with the cached glamour renderer, returning ""
// when rendering is unavailable.
func (m Model) renderMarkdown(md string) string {
	if m.glamourRenderer == nil {
		return ""
	}
	out, err := m.glamourRenderer.Render(md)
	if err != nil {
		return ""
	}
	return strings.TrimRight(out, "\n ")
}

// renderSurface draws the surface's document wrapped to width. A focused
// surface shows its caret and selection.
func renderSurface(s *editor.Surface, width int, focused bool) []string {
	if width < 1 {
		width = 1
	}
	doc := s.Doc()
	caret := s.Caret()
	start, end, hasSel := s.Selection()

	if len(doc) == 0 {
		ph := PlaceholderStyle.Render(s.Options().Placeholder)
		if focused {
			return []string{CaretStyle.Render(" ") + ph}
		}
		return []string{ph}
	}

	var lines []string
	var line strings.Builder
	col := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		col = 0
	}

	for i, c := range doc {
		atCaret := focused && i == caret
		if c.IsBreak() {
			if atCaret {
				line.WriteString(CaretStyle.Render(" "))
			}
			flush()
			continue
		}
		if col >= width {
			flush()
		}

		r := c.Rune
		if r == '\u00a0' {
			r = ' '
		}
		style := NormalStyle
		if c.Href != "" {
			style = LinkStyle
		}
		if c.Bold {
			style = style.Bold(true)
		}
		if focused && hasSel && i >= start && i < end {
			style = style.Background(ColorSelectionBg)
		}
		if atCaret {
			style = style.Reverse(true)
		}
		line.WriteString(style.Render(string(r)))
		col++
	}
	if focused && caret == len(doc) {
		line.WriteString(CaretStyle.Render(" "))
	}
	flush()
	return lines
}

func (m Model) renderFooter(width int) string {
	switch {
	case m.linkStep == linkStepText:
		return InputPromptStyle.Render(editor.PromptLinkText+" ") + m.textInput.View()
	case m.linkStep == linkStepURL:
		return InputPromptStyle.Render(editor.PromptLinkURL+" ") + m.textInput.View()
	case m.inputKind == inputCandidate:
		return InputPromptStyle.Render("Novo candidato ") +
			statusStyle(m.inputStatus).Render("["+m.inputStatus.Label()+"]") + " " + m.textInput.View()
	case m.inputKind == inputGoal:
		return InputPromptStyle.Render("Nova meta ("+m.inputSemester.Title()+") > ") + m.textInput.View()
	case m.inputKind == inputPriority:
		return InputPromptStyle.Render(fmt.Sprintf("Prioridade #%d > ", m.inputSlot+1)) + m.textInput.View()
	}

	help := m.keys.ShortHelp()
	if m.editing {
		help = m.keys.EditHelp()
	} else if m.isSearching {
		help = "digite para buscar  ↑↓ resultado  enter ir  esc fechar"
	}
	return FooterStyle.Render(truncate(help, width))
}

func (m Model) renderHelpModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Atalhos"))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(ColorBlue).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	for _, binding := range m.keys.FullHelp() {
		b.WriteString(keyStyle.Render(binding[0]))
		b.WriteString(descStyle.Render(binding[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("Esc ou ? fecha"))

	return ModalStyle.Render(b.String())
}

func (m Model) renderDeleteModal() string {
	var b strings.Builder

	title := "Excluir candidato"
	if m.deleteRow.Kind == RowGoal {
		title = "Excluir meta"
	}
	b.WriteString(ModalTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Excluir '%s'?\n\n", m.deleteRow.Label))
	b.WriteString(lipgloss.NewStyle().Foreground(ColorGreen).Render("[y]") + " Sim  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorRed).Render("[n]") + " Não")

	return ModalStyle.Render(b.String())
}

// highlightMatch splits name into before/match/after and styles the match portion
// with charStyle, and the rest with rowStyle. The match is case-insensitive.
func highlightMatch(name, query string, charStyle, rowStyle lipgloss.Style) string {
	lower := strings.ToLower(name)
	idx := strings.Index(lower, strings.ToLower(query))
	if idx < 0 || len(lower) != len(name) {
		return rowStyle.Render(name)
	}
	before := name[:idx]
	match := name[idx : idx+len(query)]
	after := name[idx+len(query):]

	var result string
	if before != "" {
		result += rowStyle.Render(before)
	}
	result += charStyle.Render(match)
	if after != "" {
		result += rowStyle.Render(after)
	}
	return result
}

// Helper functions

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// truncate cuts s to width display cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func getLine(block string, idx int, width int) string {
	lines := strings.Split(block, "\n")
	if idx < len(lines) {
		line := lines[idx]
		lineWidth := lipgloss.Width(line)
		if lineWidth < width {
			return line + strings.Repeat(" ", width-lineWidth)
		}
		return line
	}
	return strings.Repeat(" ", width)
}

func placeOverlay(modal string, width, height int) string {
	modalLines := strings.Split(modal, "\n")

	topPadding := (height - len(modalLines)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	leftPadding := (width - lipgloss.Width(modalLines[0])) / 2
	if leftPadding < 0 {
		leftPadding = 0
	}

	var result strings.Builder
	for i := 0; i < topPadding; i++ {
		result.WriteString("\n")
	}

	for _, line := range modalLines {
		result.WriteString(strings.Repeat(" ", leftPadding))
		result.WriteString(line)
		result.WriteString("\n")
	}

	return result.String()
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/rhinspira/hrboard/pkg/editor"
	"github.com/rhinspira/hrboard/pkg/persist"
	"github.com/rhinspira/hrboard/pkg/store"
)

// FileChangedMsg is sent when the file watcher detects a foreign write.
type FileChangedMsg struct{}

// SaveDoneMsg is sent when a manual save finishes.
type SaveDoneMsg struct {
	Accepted bool
	Err      error
}

// ReloadDoneMsg is sent when the medium has been re-read.
type ReloadDoneMsg struct {
	Outcome persist.ReloadOutcome
	Manual  bool
}

// WarningMsg carries an absorbed storage failure.
type WarningMsg struct {
	Err error
}

// FlushedMsg is sent after every successful write, whatever triggered it.
type FlushedMsg struct{}

type viewMode int

const (
	viewOperational viewMode = iota
	viewStrategic
)

type inputKind int

const (
	inputNone inputKind = iota
	inputCandidate
	inputGoal
	inputPriority
)

type linkStep int

const (
	linkNone linkStep = iota
	linkStepText
	linkStepURL
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx    context.Context
	board  *store.Board
	syncer *persist.Synchronizer
	logger zerolog.Logger
	keys   KeyMap
	width  int
	height int

	mode    viewMode
	weekIdx int
	section store.Section
	month   store.MonthKey
	rows    []Row
	cursor  int

	// One surface per view and category; switching week, section or month
	// re-renders them with the new values.
	surfaces map[string]*editor.Surface
	editing  bool
	editKey  string

	// Link prompt
	linkStep  linkStep
	linkDraft *editor.LinkDraft
	linkText  string

	// Input mode (add candidate, add goal, rename priority)
	inputKind     inputKind
	inputSlot     int
	inputSemester store.Semester
	inputStatus   store.PipelineStatus
	textInput     textinput.Model

	// Modal state
	showHelpModal     bool
	showDeleteConfirm bool
	deleteRow         Row

	// Search state
	isSearching  bool
	searchQuery  string
	searchHits   []store.SearchHit
	searchCursor int

	showPreview bool
	saving      bool
	warning     error

	// Status message
	statusMsg     string
	statusTimeout time.Time

	// Cached glamour renderer (expensive to create)
	glamourRenderer *glamour.TermRenderer
	glamourWidth    int
}

// NewModel creates a dashboard model over board, saving through syncer.
func NewModel(ctx context.Context, board *store.Board, syncer *persist.Synchronizer, logger zerolog.Logger) Model {
	ti := textinput.New()
	ti.CharLimit = 120

	m := Model{
		ctx:         ctx,
		board:       board,
		syncer:      syncer,
		logger:      logger,
		keys:        DefaultKeyMap(),
		section:     store.SectionThisWeek,
		month:       store.DefaultMonth,
		surfaces:    make(map[string]*editor.Surface),
		textInput:   ti,
		showPreview: true,
	}
	for _, mode := range []viewMode{viewOperational, viewStrategic} {
		for _, cat := range store.Categories {
			m.surfaces[surfaceKey(mode, cat)] = editor.New()
		}
	}
	m.refresh()
	return m
}

func surfaceKey(mode viewMode, cat store.Category) string {
	if mode == viewStrategic {
		return "strategic/" + string(cat)
	}
	return "operational/" + string(cat)
}

func placeholder(cat store.Category) string {
	return "Registre " + strings.ToLower(cat.Title()) + "..."
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.getGlamourRenderer(m.detailWidth() - 2)
		return m, tea.ClearScreen

	case FileChangedMsg:
		return m, m.reloadCmd(false)

	case ReloadDoneMsg:
		switch msg.Outcome {
		case persist.ReloadApplied:
			m.refresh()
			m.setStatus("Recarregado do armazenamento")
		case persist.ReloadConflict:
			m.setStatus("Alteração externa ignorada: há edições não salvas")
		case persist.ReloadInvalid:
			m.setStatus("Alteração externa inválida ignorada")
		case persist.ReloadFailed:
			m.setStatus("Falha ao recarregar")
		case persist.ReloadUnchanged:
			if msg.Manual {
				m.setStatus("Nada novo no armazenamento")
			}
		}
		return m, nil

	case SaveDoneMsg:
		m.saving = false
		switch {
		case !msg.Accepted:
		case msg.Err != nil:
			m.warning = msg.Err
			m.setStatus("Falha ao salvar: " + msg.Err.Error())
		default:
			m.warning = nil
			m.setStatus("Salvo")
		}
		return m, nil

	case WarningMsg:
		m.warning = msg.Err
		return m, nil

	case FlushedMsg:
		m.warning = nil
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Update text input if a prompt is open
	if m.inputKind != inputNone || m.linkStep != linkNone {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.linkStep != linkNone {
		return m.handleLinkInput(msg)
	}

	if m.inputKind != inputNone {
		return m.handleInput(msg)
	}

	// Delete confirmation
	if m.showDeleteConfirm {
		switch msg.String() {
		case "y", "Y":
			m.deleteSelected()
			m.showDeleteConfirm = false
		case "n", "N", "esc":
			m.showDeleteConfirm = false
		}
		return m, nil
	}

	// Help modal
	if m.showHelpModal {
		switch msg.String() {
		case "esc", "enter", "?", "q":
			m.showHelpModal = false
		}
		return m, nil
	}

	if m.isSearching {
		return m.handleSearchInput(msg)
	}

	if m.editing {
		return m.handleEditMode(msg)
	}

	// Normal mode
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.cursor = stepSelectable(m.rows, m.cursor, -1)

	case key.Matches(msg, m.keys.Down):
		m.cursor = stepSelectable(m.rows, m.cursor, 1)

	case key.Matches(msg, m.keys.Tab):
		if m.mode == viewOperational {
			m.mode = viewStrategic
		} else {
			m.mode = viewOperational
		}
		m.cursor = 0
		m.refresh()

	case key.Matches(msg, m.keys.Section):
		if m.mode == viewOperational {
			if m.section == store.SectionThisWeek {
				m.section = store.SectionNextWeek
			} else {
				m.section = store.SectionThisWeek
			}
			m.refresh()
		}

	case key.Matches(msg, m.keys.Prev):
		if m.mode == viewStrategic {
			m.month = m.month.Shift(-1)
		} else if m.weekIdx < m.board.WeekCount()-1 {
			m.weekIdx++
		}
		m.refresh()

	case key.Matches(msg, m.keys.Next):
		if m.mode == viewStrategic {
			m.month = m.month.Shift(1)
		} else if m.weekIdx > 0 {
			m.weekIdx--
		}
		m.refresh()

	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()

	case key.Matches(msg, m.keys.Space):
		m.advanceSelected()

	case key.Matches(msg, m.keys.Add):
		return m.startAdd()

	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selectedRow(); ok && (row.Kind == RowCandidate || row.Kind == RowGoal) {
			if row.Kind == RowCandidate && m.readOnly() {
				m.setStatus(readOnlyStatus)
				break
			}
			m.deleteRow = row
			m.showDeleteConfirm = true
		}

	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()

	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd(true)

	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview

	case key.Matches(msg, m.keys.Search):
		m.isSearching = true
		m.searchQuery = ""
		m.searchHits = nil
		m.searchCursor = 0

	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = !m.showHelpModal
	}

	return m, nil
}

const readOnlyStatus = "Semana histórica: somente leitura"

func (m Model) readOnly() bool {
	return m.mode == viewOperational && m.weekIdx != store.CurrentWeek
}

func (m Model) selectedRow() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || !m.rows[m.cursor].Selectable() {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) activeSurface() *editor.Surface {
	return m.surfaces[m.editKey]
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	switch row.Kind {
	case RowReport:
		if m.readOnly() {
			m.setStatus(readOnlyStatus)
			return m, nil
		}
		m.editing = true
		m.editKey = surfaceKey(viewOperational, row.Category)
	case RowMonthly:
		m.editing = true
		m.editKey = surfaceKey(viewStrategic, row.Category)
	case RowPriority:
		if m.readOnly() {
			m.setStatus(readOnlyStatus)
			return m, nil
		}
		w, err := m.board.Week(m.weekIdx)
		if err != nil {
			m.setStatus("Erro: " + err.Error())
			return m, nil
		}
		m.openInput(inputPriority, "título da prioridade")
		m.inputSlot = row.Slot
		m.textInput.SetValue(w.TopPriorities[row.Slot])
		m.textInput.CursorEnd()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) openInput(kind inputKind, hint string) {
	m.inputKind = kind
	m.textInput.Reset()
	m.textInput.Placeholder = hint
	m.textInput.Focus()
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	switch {
	case row.Kind == RowPriority || row.Kind == RowCandidate:
		if m.readOnly() {
			m.setStatus(readOnlyStatus)
			return m, nil
		}
		m.openInput(inputCandidate, "nome do candidato")
		m.inputSlot = row.Slot
		m.inputStatus = store.StatusInteraction
		return m, textinput.Blink
	case row.Semester != 0:
		m.openInput(inputGoal, "nova meta")
		m.inputSemester = row.Semester
		return m, textinput.Blink
	default:
		m.setStatus("Selecione uma prioridade ou um semestre para adicionar")
	}
	return m, nil
}

func (m *Model) advanceSelected() {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	switch row.Kind {
	case RowCandidate:
		c, err := m.board.AdvanceCandidate(m.weekIdx, row.Slot, row.Candidate.ID)
		if err != nil {
			m.setStatus(describeErr(err))
			return
		}
		m.setStatus(c.Name + " → " + c.Status.Label())
	case RowGoal:
		g, err := m.board.ToggleGoal(row.Semester, row.Goal.ID)
		if err != nil {
			m.setStatus(describeErr(err))
			return
		}
		if g.Achieved {
			m.setStatus("Meta atingida: " + g.Text)
		} else {
			m.setStatus("Meta reaberta: " + g.Text)
		}
	default:
		return
	}
	m.refresh()
}

func (m *Model) deleteSelected() {
	row := m.deleteRow
	var err error
	switch row.Kind {
	case RowCandidate:
		err = m.board.RemoveCandidate(m.weekIdx, row.Slot, row.Candidate.ID)
	case RowGoal:
		err = m.board.DeleteGoal(row.Semester, row.Goal.ID)
	default:
		return
	}
	if err != nil {
		m.setStatus("Falha ao excluir: " + describeErr(err))
		return
	}
	m.setStatus("Excluído: " + row.Label)
	m.refresh()
}

func describeErr(err error) string {
	if errors.Is(err, store.ErrReadOnlyWeek) {
		return readOnlyStatus
	}
	return "Erro: " + err.Error()
}

// handleInput handles key messages while a single-line prompt is open.
func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil

	case tea.KeyTab:
		if m.inputKind == inputCandidate {
			m.inputStatus = m.inputStatus.Next()
		}
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.textInput.Value())
		kind := m.inputKind
		m.closeInput()
		if value == "" && kind != inputPriority {
			return m, nil
		}

		var err error
		switch kind {
		case inputCandidate:
			var c store.PipelineCandidate
			c, err = m.board.AddCandidate(m.weekIdx, m.inputSlot, value, m.inputStatus)
			if err == nil {
				m.setStatus("Adicionado: " + c.Name + " (" + c.Status.Label() + ")")
			}
		case inputGoal:
			_, err = m.board.AddGoal(m.inputSemester, value)
			if err == nil {
				m.setStatus("Meta adicionada")
			}
		case inputPriority:
			var w store.Week
			w, err = m.board.Week(m.weekIdx)
			if err == nil {
				priorities := w.TopPriorities
				priorities[m.inputSlot] = value
				err = m.board.UpdatePriorities(m.weekIdx, priorities)
			}
			if err == nil {
				m.setStatus(fmt.Sprintf("Prioridade #%d atualizada", m.inputSlot+1))
			}
		}
		if err != nil {
			m.setStatus(describeErr(err))
		}
		m.refresh()
		return m, nil

	default:
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
}

func (m *Model) closeInput() {
	m.inputKind = inputNone
	m.textInput.Blur()
}

// handleEditMode routes keys to the surface being edited.
func (m Model) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.activeSurface()
	if s == nil {
		m.editing = false
		return m, nil
	}

	var err error
	switch {
	case key.Matches(msg, m.keys.ExitEditor), msg.Type == tea.KeyCtrlC:
		m.editing = false
		m.refresh()
		return m, nil
	case msg.Type == tea.KeyCtrlS:
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.Bold):
		err = s.ToggleBold()
	case key.Matches(msg, m.keys.Link):
		return m.beginLink(s)
	case key.Matches(msg, m.keys.SelectAll):
		s.SelectAll()
	case msg.Type == tea.KeyEnter:
		err = s.Confirm()
	case msg.Type == tea.KeyBackspace:
		err = s.Backspace()
	case msg.Type == tea.KeyDelete:
		err = s.Delete()
	case msg.Type == tea.KeyLeft, msg.Type == tea.KeyShiftLeft:
		s.MoveLeft(msg.Type == tea.KeyShiftLeft)
	case msg.Type == tea.KeyRight, msg.Type == tea.KeyShiftRight:
		s.MoveRight(msg.Type == tea.KeyShiftRight)
	case msg.Type == tea.KeyUp, msg.Type == tea.KeyShiftUp:
		s.MoveUp(msg.Type == tea.KeyShiftUp)
	case msg.Type == tea.KeyDown, msg.Type == tea.KeyShiftDown:
		s.MoveDown(msg.Type == tea.KeyShiftDown)
	case msg.Type == tea.KeyHome, msg.Type == tea.KeyShiftHome:
		s.MoveLineStart(msg.Type == tea.KeyShiftHome)
	case msg.Type == tea.KeyEnd, msg.Type == tea.KeyShiftEnd:
		s.MoveLineEnd(msg.Type == tea.KeyShiftEnd)
	case msg.Type == tea.KeySpace:
		err = s.Type(" ")
	case msg.Type == tea.KeyRunes:
		if msg.Paste {
			err = s.Paste(string(msg.Runes))
		} else {
			err = s.Type(string(msg.Runes))
		}
	}
	if err != nil {
		m.setStatus("Erro: " + err.Error())
	}
	m.refresh()
	return m, nil
}

func (m Model) beginLink(s *editor.Surface) (tea.Model, tea.Cmd) {
	d, err := s.BeginLink()
	if err != nil {
		m.setStatus("Erro: " + err.Error())
		return m, nil
	}
	m.linkDraft = d
	m.textInput.Reset()
	m.textInput.Focus()
	if d.NeedsText() {
		m.linkStep = linkStepText
		m.linkText = ""
		m.textInput.Placeholder = "texto"
	} else {
		m.linkStep = linkStepURL
		m.linkText = d.Selected
		m.textInput.Placeholder = ""
		m.textInput.SetValue(editor.DefaultURLPrefix)
		m.textInput.CursorEnd()
	}
	return m, textinput.Blink
}

// handleLinkInput handles the two link prompts.
func (m Model) handleLinkInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endLink()
		m.setStatus("Link cancelado")
		return m, nil

	case tea.KeyEnter:
		value := m.textInput.Value()
		if m.linkStep == linkStepText {
			if value == "" {
				m.endLink()
				m.setStatus("Link cancelado")
				return m, nil
			}
			m.linkText = value
			m.linkStep = linkStepURL
			m.textInput.Reset()
			m.textInput.Placeholder = ""
			m.textInput.SetValue(editor.DefaultURLPrefix)
			m.textInput.CursorEnd()
			return m, textinput.Blink
		}

		ok, err := m.linkDraft.Apply(m.linkText, value)
		m.endLink()
		switch {
		case err != nil:
			m.setStatus("Link não inserido: " + err.Error())
		case !ok:
			m.setStatus("Link cancelado")
		default:
			m.setStatus("Link inserido")
		}
		m.refresh()
		return m, nil

	default:
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
}

func (m *Model) endLink() {
	m.linkStep = linkNone
	m.linkDraft = nil
	m.linkText = ""
	m.textInput.Blur()
}

// handleSearchInput handles key messages while typing in the search bar.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.isSearching = false
		m.searchQuery = ""
		m.searchHits = nil
		return m, nil

	case tea.KeyEnter:
		if m.searchCursor < len(m.searchHits) {
			m.jumpTo(m.searchHits[m.searchCursor])
		}
		m.isSearching = false
		return m, nil

	case tea.KeyUp:
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.searchCursor < len(m.searchHits)-1 {
			m.searchCursor++
		}
		return m, nil

	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			runes := []rune(m.searchQuery)
			m.searchQuery = string(runes[:len(runes)-1])
		}

	case tea.KeySpace:
		m.searchQuery += " "

	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)

	default:
		return m, nil
	}

	m.searchHits = m.board.Search(m.searchQuery)
	m.searchCursor = 0
	return m, nil
}

// jumpTo moves the view to the week, section or month of hit and puts the
// cursor on the first row containing the hit text.
func (m *Model) jumpTo(hit store.SearchHit) {
	if hit.WeekIndex >= 0 {
		m.mode = viewOperational
		m.weekIdx = hit.WeekIndex
		if hit.Section != "" {
			m.section = hit.Section
		}
	} else {
		m.mode = viewStrategic
		if hit.Month != "" {
			m.month = hit.Month
		}
	}
	m.refresh()

	needle := strings.ToLower(hit.Text)
	for i, row := range m.rows {
		if !row.Selectable() {
			continue
		}
		hay := strings.ToLower(row.Label + "\n" + editor.PlainText(row.Value))
		if strings.Contains(hay, needle) {
			m.cursor = i
			return
		}
	}
}

// refresh rebuilds the rows from the board and re-renders every surface
// with the value it is bound to. The surface being edited ignores values it
// emitted itself, so its caret is untouched.
func (m *Model) refresh() {
	if n := m.board.WeekCount(); m.weekIdx >= n {
		m.weekIdx = n - 1
	}
	if m.weekIdx < 0 {
		m.weekIdx = 0
	}

	week, err := m.board.Week(m.weekIdx)
	if err != nil {
		m.logger.Warn().Err(err).Int("week", m.weekIdx).Msg("week unavailable")
	}
	strategic := m.board.Strategic()

	switch m.mode {
	case viewStrategic:
		m.rows = BuildStrategicRows(strategic, m.month)
	default:
		if err == nil {
			m.rows = BuildOperationalRows(week, m.section)
		} else {
			m.rows = nil
		}
	}
	m.cursor = nearestSelectable(m.rows, m.cursor)

	board, logger := m.board, m.logger
	weekIdx, section, month := m.weekIdx, m.section, m.month
	report := week.Report(section)
	monthly := strategic.MonthlyReports[month]
	for _, cat := range store.Categories {
		cat := cat // per-iteration copy: the closures below retain it
		m.surfaces[surfaceKey(viewOperational, cat)].Render(report.Get(cat), func(v string) {
			if err := board.UpdateReport(weekIdx, section, cat, v); err != nil {
				logger.Warn().Err(err).Str("category", string(cat)).Msg("report update rejected")
			}
		}, editor.Options{Placeholder: placeholder(cat), ReadOnly: weekIdx != store.CurrentWeek})

		m.surfaces[surfaceKey(viewStrategic, cat)].Render(monthly.Get(cat), func(v string) {
			if err := board.UpdateMonthly(month, cat, v); err != nil {
				logger.Warn().Err(err).Str("category", string(cat)).Msg("monthly update rejected")
			}
		}, editor.Options{Placeholder: placeholder(cat)})
	}
}

func (m *Model) saveCmd() tea.Cmd {
	if m.saving {
		return nil
	}
	m.saving = true
	ctx, syncer := m.ctx, m.syncer
	return func() tea.Msg {
		accepted, err := syncer.ManualSave(ctx)
		return SaveDoneMsg{Accepted: accepted, Err: err}
	}
}

func (m Model) reloadCmd(manual bool) tea.Cmd {
	ctx, syncer := m.ctx, m.syncer
	return func() tea.Msg {
		return ReloadDoneMsg{Outcome: syncer.Reload(ctx), Manual: manual}
	}
}

// getGlamourRenderer returns a cached glamour renderer, creating one if needed
// or if the width has changed.
func (m *Model) getGlamourRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	if m.glamourRenderer != nil && m.glamourWidth == width {
		return m.glamourRenderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.glamourRenderer = r
	m.glamourWidth = width
	return r
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTimeout = time.Now().Add(3 * time.Second)
}

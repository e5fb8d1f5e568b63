package store

import (
	"fmt"
	"strings"
)

// PrioritySlots is the fixed number of priority headers (and pipelines) per week.
const PrioritySlots = 4

// Category identifies one of the four report columns.
type Category string

const (
	CategoryRecruitment Category = "recruitment"
	CategoryTurnover    Category = "turnover"
	CategoryDHO         Category = "dho"
	CategoryProjects    Category = "projects"
)

// Categories lists the report columns in display order.
var Categories = []Category{CategoryRecruitment, CategoryTurnover, CategoryDHO, CategoryProjects}

// Title returns the column heading shown on the board.
func (c Category) Title() string {
	switch c {
	case CategoryRecruitment:
		return "Recrutamento e Seleção"
	case CategoryTurnover:
		return "Contratação / Desligamento"
	case CategoryDHO:
		return "DHO"
	case CategoryProjects:
		return "Projetos / Processos"
	}
	return string(c)
}

// ParseCategory accepts either the JSON name or the upper-case form used by callers.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == strings.ToLower(s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Section selects one of the two report halves of a week.
type Section string

const (
	SectionThisWeek Section = "thisWeek"
	SectionNextWeek Section = "nextWeek"
)

// Title returns the tab label for the section.
func (s Section) Title() string {
	if s == SectionNextWeek {
		return "Próxima Semana"
	}
	return "Esta Semana"
}

// ReportSection holds one markup document per category.
type ReportSection struct {
	Recruitment string `json:"recruitment"`
	Turnover    string `json:"turnover"`
	DHO         string `json:"dho"`
	Projects    string `json:"projects"`
}

// Get returns the document stored under c.
func (r ReportSection) Get(c Category) string {
	switch c {
	case CategoryRecruitment:
		return r.Recruitment
	case CategoryTurnover:
		return r.Turnover
	case CategoryDHO:
		return r.DHO
	case CategoryProjects:
		return r.Projects
	}
	return ""
}

// Set replaces the document stored under c.
func (r *ReportSection) Set(c Category, value string) error {
	switch c {
	case CategoryRecruitment:
		r.Recruitment = value
	case CategoryTurnover:
		r.Turnover = value
	case CategoryDHO:
		r.DHO = value
	case CategoryProjects:
		r.Projects = value
	default:
		return fmt.Errorf("unknown category %q", c)
	}
	return nil
}

// PipelineStatus is the recruiting stage of a candidate.
type PipelineStatus string

const (
	StatusInteraction        PipelineStatus = "INTERACTION"
	StatusInterviewRecruiter PipelineStatus = "INTERVIEW_MARCO"
	StatusInterviewManager   PipelineStatus = "INTERVIEW_MANAGER"
	StatusProposal           PipelineStatus = "PROPOSAL"
)

var statusOrder = []PipelineStatus{
	StatusInteraction,
	StatusInterviewRecruiter,
	StatusInterviewManager,
	StatusProposal,
}

// Statuses returns the pipeline stages in cycle order.
func Statuses() []PipelineStatus {
	out := make([]PipelineStatus, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Next returns the following stage, wrapping from PROPOSAL back to INTERACTION.
// Unknown values restart the cycle.
func (s PipelineStatus) Next() PipelineStatus {
	for i, st := range statusOrder {
		if st == s {
			return statusOrder[(i+1)%len(statusOrder)]
		}
	}
	return statusOrder[0]
}

// Valid reports whether s is one of the four known stages.
func (s PipelineStatus) Valid() bool {
	for _, st := range statusOrder {
		if st == s {
			return true
		}
	}
	return false
}

// Label returns the badge text for the stage.
func (s PipelineStatus) Label() string {
	switch s {
	case StatusInteraction:
		return "Em interação"
	case StatusInterviewRecruiter:
		return "Entrevistado Marco"
	case StatusInterviewManager:
		return "Entrevista Gestão"
	case StatusProposal:
		return "Em proposta"
	}
	return string(s)
}

// PipelineCandidate is a person being recruited for a priority slot.
type PipelineCandidate struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Status PipelineStatus `json:"status"`
}

// Week is one weekly record. Index 0 of Snapshot.Weeks is the current week.
type Week struct {
	ID                string                             `json:"id"`
	WeekRange         string                             `json:"weekRange"`
	TopPriorities     [PrioritySlots]string              `json:"topPriorities"`
	PriorityPipelines [PrioritySlots][]PipelineCandidate `json:"priorityPipelines"`
	ReportThisWeek    ReportSection                      `json:"reportThisWeek"`
	ReportNextWeek    ReportSection                      `json:"reportNextWeek"`
}

// Report returns the section selected by sec.
func (w *Week) Report(sec Section) *ReportSection {
	if sec == SectionNextWeek {
		return &w.ReportNextWeek
	}
	return &w.ReportThisWeek
}

// Semester selects one of the two strategic goal lists.
type Semester int

const (
	Semester1 Semester = 1
	Semester2 Semester = 2
)

// Title returns the heading for the semester column.
func (s Semester) Title() string {
	return fmt.Sprintf("%dº Semestre", int(s))
}

// StrategicGoal is a checkable semester objective.
type StrategicGoal struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Achieved bool   `json:"achieved"`
}

// MonthKey is the lower-case Portuguese month abbreviation.
type MonthKey string

// Months lists the twelve month keys in calendar order.
var Months = []MonthKey{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// DefaultMonth is the month selected when the strategic view opens.
const DefaultMonth MonthKey = "dez"

// Label returns the capitalised abbreviation used on the month selector.
func (m MonthKey) Label() string {
	if m == "" {
		return ""
	}
	s := string(m)
	return string(s[0]-'a'+'A') + s[1:]
}

// Valid reports whether m is one of the twelve keys.
func (m MonthKey) Valid() bool {
	return monthIndex(m) >= 0
}

// Shift moves delta months, clamped to the calendar year.
func (m MonthKey) Shift(delta int) MonthKey {
	i := monthIndex(m)
	if i < 0 {
		return DefaultMonth
	}
	i += delta
	if i < 0 {
		i = 0
	}
	if i >= len(Months) {
		i = len(Months) - 1
	}
	return Months[i]
}

func monthIndex(m MonthKey) int {
	for i, k := range Months {
		if k == m {
			return i
		}
	}
	return -1
}

// StrategicData holds the semester goals and the monthly reports.
type StrategicData struct {
	Semester1Goals []StrategicGoal             `json:"semester1Goals"`
	Semester2Goals []StrategicGoal             `json:"semester2Goals"`
	MonthlyReports map[MonthKey]ReportSection `json:"monthlyReports"`
}

// Goals returns a pointer to the list for sem, or nil for an unknown semester.
func (d *StrategicData) Goals(sem Semester) *[]StrategicGoal {
	switch sem {
	case Semester1:
		return &d.Semester1Goals
	case Semester2:
		return &d.Semester2Goals
	}
	return nil
}

// Snapshot is the complete persisted application state.
type Snapshot struct {
	Weeks         []Week        `json:"weeks"`
	StrategicData StrategicData `json:"strategicData"`
}

// Clone returns a deep copy. Slices in the copy are never nil so that the
// encoded form always carries arrays.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Weeks: make([]Week, len(s.Weeks))}
	for i, w := range s.Weeks {
		cw := w
		for slot := range w.PriorityPipelines {
			cw.PriorityPipelines[slot] = append(make([]PipelineCandidate, 0, len(w.PriorityPipelines[slot])), w.PriorityPipelines[slot]...)
		}
		out.Weeks[i] = cw
	}
	out.StrategicData.Semester1Goals = append(make([]StrategicGoal, 0, len(s.StrategicData.Semester1Goals)), s.StrategicData.Semester1Goals...)
	out.StrategicData.Semester2Goals = append(make([]StrategicGoal, 0, len(s.StrategicData.Semester2Goals)), s.StrategicData.Semester2Goals...)
	out.StrategicData.MonthlyReports = make(map[MonthKey]ReportSection, len(Months))
	for _, m := range Months {
		out.StrategicData.MonthlyReports[m] = s.StrategicData.MonthlyReports[m]
	}
	return out
}

package tui

import (
	"fmt"

	"github.com/rhinspira/hrboard/pkg/store"
)

// RowKind identifies what a dashboard row points at.
type RowKind int

const (
	RowHeader RowKind = iota
	RowPriority
	RowCandidate
	RowReport
	RowGoal
	RowMonthly
)

// Row is one line of the flattened dashboard.
type Row struct {
	Kind  RowKind
	Label string

	Slot      int // priority slot for RowPriority and RowCandidate
	Candidate store.PipelineCandidate

	Category store.Category // RowReport and RowMonthly
	Value    string

	Semester store.Semester // RowGoal, and goal section headers
	Goal     store.StrategicGoal
}

// Selectable reports whether the cursor may rest on the row. Semester
// headers are selectable so goals can be added to an empty list.
func (r Row) Selectable() bool { return r.Kind != RowHeader || r.Semester != 0 }

// BuildOperationalRows lays out one week: the four priorities with their
// pipelines, then the four report categories of sec.
func BuildOperationalRows(w store.Week, sec store.Section) []Row {
	var rows []Row
	rows = append(rows, Row{Kind: RowHeader, Label: "Leads por Vaga"})
	for slot := 0; slot < store.PrioritySlots; slot++ {
		label := w.TopPriorities[slot]
		if label == "" {
			label = "(sem título)"
		}
		rows = append(rows, Row{Kind: RowPriority, Slot: slot, Label: fmt.Sprintf("#%d %s", slot+1, label)})
		for _, c := range w.PriorityPipelines[slot] {
			rows = append(rows, Row{Kind: RowCandidate, Slot: slot, Candidate: c, Label: c.Name})
		}
	}

	rows = append(rows, Row{Kind: RowHeader, Label: sec.Title()})
	report := w.Report(sec)
	for _, cat := range store.Categories {
		rows = append(rows, Row{Kind: RowReport, Category: cat, Label: cat.Title(), Value: report.Get(cat)})
	}
	return rows
}

// BuildStrategicRows lays out both semester goal lists followed by the
// report of month.
func BuildStrategicRows(data store.StrategicData, month store.MonthKey) []Row {
	var rows []Row
	for _, sem := range []store.Semester{store.Semester1, store.Semester2} {
		rows = append(rows, Row{Kind: RowHeader, Semester: sem, Label: "Metas " + sem.Title()})
		for _, g := range *data.Goals(sem) {
			rows = append(rows, Row{Kind: RowGoal, Semester: sem, Goal: g, Label: g.Text})
		}
	}

	rows = append(rows, Row{Kind: RowHeader, Label: "Relatório de " + month.Label()})
	report := data.MonthlyReports[month]
	for _, cat := range store.Categories {
		rows = append(rows, Row{Kind: RowMonthly, Category: cat, Label: cat.Title(), Value: report.Get(cat)})
	}
	return rows
}

// nearestSelectable returns the closest selectable index at or after idx,
// falling back to the closest before it. It returns 0 for an empty list.
func nearestSelectable(rows []Row, idx int) int {
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	if idx < 0 {
		idx = 0
	}
	for i := idx; i < len(rows); i++ {
		if rows[i].Selectable() {
			return i
		}
	}
	for i := idx - 1; i >= 0; i-- {
		if rows[i].Selectable() {
			return i
		}
	}
	return 0
}

// stepSelectable moves from idx by delta, skipping headers. It stays put
// when there is nothing selectable in that direction.
func stepSelectable(rows []Row, idx, delta int) int {
	for i := idx + delta; i >= 0 && i < len(rows); i += delta {
		if rows[i].Selectable() {
			return i
		}
	}
	return idx
}

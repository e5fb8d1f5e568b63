package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestBoard(t *testing.T) *Board {
	t.Helper()
	b := NewBoard(Seed())
	n := 0
	b.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return b
}

func TestStatusCycle(t *testing.T) {
	s := StatusInteraction
	seen := []PipelineStatus{s}
	for i := 0; i < 4; i++ {
		s = s.Next()
		seen = append(seen, s)
	}
	assert.Equal(t, []PipelineStatus{
		StatusInteraction,
		StatusInterviewRecruiter,
		StatusInterviewManager,
		StatusProposal,
		StatusInteraction,
	}, seen)
	assert.Equal(t, StatusInteraction, PipelineStatus("bogus").Next())
	assert.Equal(t, "Entrevistado Marco", StatusInterviewRecruiter.Label())
}

func TestMonthShift(t *testing.T) {
	assert.Equal(t, MonthKey("nov"), DefaultMonth.Shift(-1))
	assert.Equal(t, MonthKey("dez"), DefaultMonth.Shift(1))
	assert.Equal(t, MonthKey("jan"), MonthKey("fev").Shift(-5))
	assert.Equal(t, "Set", MonthKey("set").Label())
}

func TestSeedShape(t *testing.T) {
	s := Seed()
	require.Len(t, s.Weeks, 3)
	assert.Equal(t, "w-current", s.Weeks[0].ID)
	assert.Equal(t, "01 Dez - 07 Dez, 2025", s.Weeks[0].WeekRange)
	assert.Len(t, s.StrategicData.Semester1Goals, 3)
	assert.Len(t, s.StrategicData.Semester2Goals, 3)
	assert.Len(t, s.StrategicData.MonthlyReports, 12)
	assert.Contains(t, s.StrategicData.MonthlyReports["nov"].Recruitment, "15 vagas")
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := setupTestBoard(t)
	require.NoError(t, b.UpdateReport(CurrentWeek, SectionThisWeek, CategoryDHO, "<b>x</b>"))
	_, err := b.AddCandidate(CurrentWeek, 3, "Nova Pessoa", StatusProposal)
	require.NoError(t, err)

	snap := b.Snapshot()
	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)
}

func TestEncodeNeverWritesNullPipelines(t *testing.T) {
	s := Seed()
	s.Weeks[1].PriorityPipelines[3] = nil
	data, err := EncodeSnapshot(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestDecodeSnapshotRejects(t *testing.T) {
	valid, err := EncodeSnapshot(Seed())
	require.NoError(t, err)

	mutate := func(fn func(m map[string]any)) string {
		var m map[string]any
		require.NoError(t, json.Unmarshal(valid, &m))
		fn(m)
		out, err := json.Marshal(m)
		require.NoError(t, err)
		return string(out)
	}
	firstWeek := func(m map[string]any) map[string]any {
		return m["weeks"].([]any)[0].(map[string]any)
	}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", "{not json", ErrMalformed},
		{"empty object", "{}", ErrInvalidShape},
		{"missing strategic", mutate(func(m map[string]any) { delete(m, "strategicData") }), ErrInvalidShape},
		{"weeks wrong type", mutate(func(m map[string]any) { m["weeks"] = "nope" }), ErrInvalidShape},
		{"no weeks", mutate(func(m map[string]any) { m["weeks"] = []any{} }), ErrInvalidShape},
		{"three priorities", mutate(func(m map[string]any) {
			firstWeek(m)["topPriorities"] = []any{"a", "b", "c"}
		}), ErrInvalidShape},
		{"null pipeline", mutate(func(m map[string]any) {
			firstWeek(m)["priorityPipelines"].([]any)[1] = nil
		}), ErrInvalidShape},
		{"bad status", mutate(func(m map[string]any) {
			p := firstWeek(m)["priorityPipelines"].([]any)[0].([]any)
			p[0].(map[string]any)["status"] = "HIRED"
		}), ErrInvalidShape},
		{"missing report", mutate(func(m map[string]any) { delete(firstWeek(m), "reportNextWeek") }), ErrInvalidShape},
		{"candidate without id", mutate(func(m map[string]any) {
			p := firstWeek(m)["priorityPipelines"].([]any)[0].([]any)
			delete(p[0].(map[string]any), "id")
		}), ErrInvalidShape},
		{"goal without id", mutate(func(m map[string]any) {
			goals := m["strategicData"].(map[string]any)["semester1Goals"].([]any)
			goals[0].(map[string]any)["id"] = ""
		}), ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeFillsMissingMonths(t *testing.T) {
	data := `{"weeks":[{"id":"w","weekRange":"r","topPriorities":["a","b","c","d"],
		"priorityPipelines":[[],[],[],[]],"reportThisWeek":{},"reportNextWeek":{}}],
		"strategicData":{"semester1Goals":[],"semester2Goals":[],"monthlyReports":{"jan":{"dho":"x"}}}}`
	snap, err := DecodeSnapshot([]byte(data))
	require.NoError(t, err)
	assert.Len(t, snap.StrategicData.MonthlyReports, 12)
	assert.Equal(t, "x", snap.StrategicData.MonthlyReports["jan"].DHO)
}

func TestHistoryWeeksAreReadOnly(t *testing.T) {
	b := setupTestBoard(t)
	rev := b.Revision()

	assert.ErrorIs(t, b.UpdateReport(1, SectionThisWeek, CategoryDHO, "x"), ErrReadOnlyWeek)
	assert.ErrorIs(t, b.UpdatePriorities(2, [PrioritySlots]string{}), ErrReadOnlyWeek)
	_, err := b.AddCandidate(1, 0, "X", "")
	assert.ErrorIs(t, err, ErrReadOnlyWeek)
	assert.ErrorIs(t, b.UpdateReport(9, SectionThisWeek, CategoryDHO, "x"), ErrNotFound)
	assert.Equal(t, rev, b.Revision())
}

func TestCandidateLifecycle(t *testing.T) {
	b := setupTestBoard(t)

	c, err := b.AddCandidate(CurrentWeek, 2, "  Maria  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Maria", c.Name)
	assert.Equal(t, StatusInteraction, c.Status)

	c, err = b.AdvanceCandidate(CurrentWeek, 2, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInterviewRecruiter, c.Status)

	w, err := b.Week(CurrentWeek)
	require.NoError(t, err)
	assert.Len(t, w.PriorityPipelines[2], 3)

	require.NoError(t, b.RemoveCandidate(CurrentWeek, 2, c.ID))
	w, _ = b.Week(CurrentWeek)
	assert.Len(t, w.PriorityPipelines[2], 2)

	assert.ErrorIs(t, b.RemoveCandidate(CurrentWeek, 2, c.ID), ErrNotFound)
	_, err = b.AddCandidate(CurrentWeek, 4, "X", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.AddCandidate(CurrentWeek, 0, "   ", "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestGoalLifecycle(t *testing.T) {
	b := setupTestBoard(t)

	g, err := b.AddGoal(Semester2, "Nova meta")
	require.NoError(t, err)
	assert.Equal(t, "id-1", g.ID)

	g, err = b.ToggleGoal(Semester2, g.ID)
	require.NoError(t, err)
	assert.True(t, g.Achieved)

	require.NoError(t, b.DeleteGoal(Semester1, "g2"))
	sd := b.Strategic()
	assert.Len(t, sd.Semester1Goals, 2)
	assert.Len(t, sd.Semester2Goals, 4)

	_, err = b.ToggleGoal(Semester(3), "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMonthly(t *testing.T) {
	b := setupTestBoard(t)
	require.NoError(t, b.UpdateMonthly("dez", CategoryProjects, "<b>ok</b>"))
	assert.Equal(t, "<b>ok</b>", b.Strategic().MonthlyReports["dez"].Projects)
	assert.ErrorIs(t, b.UpdateMonthly("xyz", CategoryProjects, ""), ErrNotFound)
}

func TestSnapshotIsIsolated(t *testing.T) {
	b := setupTestBoard(t)
	snap := b.Snapshot()
	snap.Weeks[0].PriorityPipelines[0][0].Name = "changed"
	snap.StrategicData.MonthlyReports["jan"] = ReportSection{DHO: "changed"}

	w, _ := b.Week(0)
	assert.Equal(t, "Ana Souza", w.PriorityPipelines[0][0].Name)
	assert.Equal(t, "", b.Strategic().MonthlyReports["jan"].DHO)
}

func TestSearch(t *testing.T) {
	b := setupTestBoard(t)
	require.NoError(t, b.UpdateReport(CurrentWeek, SectionNextWeek, CategoryProjects, "linha<br><b>Roadmap</b> RH"))

	hits := b.Search("roadmap")
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].WeekIndex)
	assert.Equal(t, SectionNextWeek, hits[0].Section)
	assert.Equal(t, "Roadmap RH", hits[0].Text)

	hits = b.Search("carlos lima")
	assert.Len(t, hits, 2)

	hits = b.Search("universidade")
	require.Len(t, hits, 1)
	assert.Equal(t, -1, hits[0].WeekIndex)

	assert.Empty(t, b.Search("   "))
	for _, h := range b.Search("ponto eletrônico") {
		assert.True(t, strings.HasPrefix(h.Where, "Nov"))
		assert.Equal(t, MonthKey("nov"), h.Month)
	}
}

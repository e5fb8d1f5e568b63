package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rhinspira/hrboard/pkg/editor"
)

// CurrentWeek is the index of the only editable week.
const CurrentWeek = 0

var (
	ErrReadOnlyWeek = errors.New("week is read-only")
	ErrNotFound     = errors.New("not found")
	ErrEmptyText    = errors.New("text is empty")
)

// Board is the in-memory application state. All mutations go through it so
// that the synchronizer always reads a consistent snapshot.
type Board struct {
	mu    sync.RWMutex
	snap  Snapshot
	rev   uint64
	newID func() string
}

// NewBoard wraps a copy of s.
func NewBoard(s Snapshot) *Board {
	return &Board{snap: s.Clone(), newID: uuid.NewString}
}

// Snapshot returns a deep copy of the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap.Clone()
}

// Replace swaps in a whole new state, as done after a load or reload.
func (b *Board) Replace(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = s.Clone()
	b.rev++
}

// Revision increments on every mutation.
func (b *Board) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rev
}

// WeekCount returns the number of stored weeks.
func (b *Board) WeekCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.snap.Weeks)
}

// Week returns a copy of the week at idx.
func (b *Board) Week(idx int) (Week, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if idx < 0 || idx >= len(b.snap.Weeks) {
		return Week{}, fmt.Errorf("week %d: %w", idx, ErrNotFound)
	}
	return Snapshot{Weeks: b.snap.Weeks[idx : idx+1]}.Clone().Weeks[0], nil
}

// Strategic returns a copy of the strategic data.
func (b *Board) Strategic() StrategicData {
	return b.Snapshot().StrategicData
}

// mutateWeek runs fn against the week at idx under the write lock.
func (b *Board) mutateWeek(idx int, fn func(w *Week) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx < 0 || idx >= len(b.snap.Weeks) {
		return fmt.Errorf("week %d: %w", idx, ErrNotFound)
	}
	if idx != CurrentWeek {
		return fmt.Errorf("week %d: %w", idx, ErrReadOnlyWeek)
	}
	if err := fn(&b.snap.Weeks[idx]); err != nil {
		return err
	}
	b.rev++
	return nil
}

// UpdatePriorities replaces the four priority headers of the current week.
func (b *Board) UpdatePriorities(weekIdx int, priorities [PrioritySlots]string) error {
	return b.mutateWeek(weekIdx, func(w *Week) error {
		w.TopPriorities = priorities
		return nil
	})
}

// UpdateReport stores a report document for one category.
func (b *Board) UpdateReport(weekIdx int, sec Section, cat Category, value string) error {
	return b.mutateWeek(weekIdx, func(w *Week) error {
		return w.Report(sec).Set(cat, value)
	})
}

func checkSlot(slot int) error {
	if slot < 0 || slot >= PrioritySlots {
		return fmt.Errorf("slot %d: %w", slot, ErrNotFound)
	}
	return nil
}

// AddCandidate appends a candidate to a pipeline. An empty status means INTERACTION.
func (b *Board) AddCandidate(weekIdx, slot int, name string, status PipelineStatus) (PipelineCandidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PipelineCandidate{}, ErrEmptyText
	}
	if status == "" {
		status = StatusInteraction
	}
	if !status.Valid() {
		return PipelineCandidate{}, fmt.Errorf("unknown status %q", status)
	}
	if err := checkSlot(slot); err != nil {
		return PipelineCandidate{}, err
	}

	c := PipelineCandidate{ID: b.newID(), Name: name, Status: status}
	err := b.mutateWeek(weekIdx, func(w *Week) error {
		w.PriorityPipelines[slot] = append(w.PriorityPipelines[slot], c)
		return nil
	})
	return c, err
}

// AdvanceCandidate moves a candidate to the next pipeline stage.
func (b *Board) AdvanceCandidate(weekIdx, slot int, id string) (PipelineCandidate, error) {
	if err := checkSlot(slot); err != nil {
		return PipelineCandidate{}, err
	}
	var out PipelineCandidate
	err := b.mutateWeek(weekIdx, func(w *Week) error {
		for i := range w.PriorityPipelines[slot] {
			c := &w.PriorityPipelines[slot][i]
			if c.ID == id {
				c.Status = c.Status.Next()
				out = *c
				return nil
			}
		}
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	})
	return out, err
}

// RemoveCandidate deletes a candidate from a pipeline.
func (b *Board) RemoveCandidate(weekIdx, slot int, id string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	return b.mutateWeek(weekIdx, func(w *Week) error {
		list := w.PriorityPipelines[slot]
		for i, c := range list {
			if c.ID == id {
				w.PriorityPipelines[slot] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	})
}

func (b *Board) mutateGoals(sem Semester, fn func(goals *[]StrategicGoal) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	goals := b.snap.StrategicData.Goals(sem)
	if goals == nil {
		return fmt.Errorf("semester %d: %w", sem, ErrNotFound)
	}
	if err := fn(goals); err != nil {
		return err
	}
	b.rev++
	return nil
}

// AddGoal appends a goal to the semester list.
func (b *Board) AddGoal(sem Semester, text string) (StrategicGoal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return StrategicGoal{}, ErrEmptyText
	}
	g := StrategicGoal{ID: b.newID(), Text: text}
	err := b.mutateGoals(sem, func(goals *[]StrategicGoal) error {
		*goals = append(*goals, g)
		return nil
	})
	return g, err
}

// ToggleGoal flips the achieved flag.
func (b *Board) ToggleGoal(sem Semester, id string) (StrategicGoal, error) {
	var out StrategicGoal
	err := b.mutateGoals(sem, func(goals *[]StrategicGoal) error {
		for i := range *goals {
			if (*goals)[i].ID == id {
				(*goals)[i].Achieved = !(*goals)[i].Achieved
				out = (*goals)[i]
				return nil
			}
		}
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	})
	return out, err
}

// DeleteGoal removes a goal from the semester list.
func (b *Board) DeleteGoal(sem Semester, id string) error {
	return b.mutateGoals(sem, func(goals *[]StrategicGoal) error {
		for i, g := range *goals {
			if g.ID == id {
				*goals = append((*goals)[:i:i], (*goals)[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	})
}

// UpdateMonthly stores a monthly report document.
func (b *Board) UpdateMonthly(month MonthKey, cat Category, value string) error {
	if !month.Valid() {
		return fmt.Errorf("month %q: %w", month, ErrNotFound)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.snap.StrategicData.MonthlyReports[month]
	if err := r.Set(cat, value); err != nil {
		return err
	}
	b.snap.StrategicData.MonthlyReports[month] = r
	b.rev++
	return nil
}

// SearchHit locates a match inside the board.
type SearchHit struct {
	WeekIndex int      // -1 for strategic hits
	Section   Section  // report hits only
	Month     MonthKey // monthly report hits only
	Where     string
	Text      string
}

// Search finds case-insensitive matches in report text, candidate names,
// priority headers and goals.
func (b *Board) Search(query string) []SearchHit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	snap := b.Snapshot()
	var hits []SearchHit
	match := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	for wi, w := range snap.Weeks {
		for slot, p := range w.TopPriorities {
			if match(p) {
				hits = append(hits, SearchHit{WeekIndex: wi, Where: fmt.Sprintf("%s / prioridade #%d", w.WeekRange, slot+1), Text: p})
			}
			for _, c := range w.PriorityPipelines[slot] {
				if match(c.Name) {
					hits = append(hits, SearchHit{WeekIndex: wi, Where: fmt.Sprintf("%s / %s", w.WeekRange, p), Text: c.Name})
				}
			}
		}
		for _, sec := range []Section{SectionThisWeek, SectionNextWeek} {
			for _, cat := range Categories {
				for _, line := range strings.Split(editor.PlainText(w.Report(sec).Get(cat)), "\n") {
					if match(line) {
						hits = append(hits, SearchHit{WeekIndex: wi, Section: sec, Where: fmt.Sprintf("%s / %s / %s", w.WeekRange, sec.Title(), cat.Title()), Text: strings.TrimSpace(line)})
					}
				}
			}
		}
	}

	for _, sem := range []Semester{Semester1, Semester2} {
		for _, g := range *snap.StrategicData.Goals(sem) {
			if match(g.Text) {
				hits = append(hits, SearchHit{WeekIndex: -1, Where: sem.Title(), Text: g.Text})
			}
		}
	}
	for _, m := range Months {
		r := snap.StrategicData.MonthlyReports[m]
		for _, cat := range Categories {
			for _, line := range strings.Split(editor.PlainText(r.Get(cat)), "\n") {
				if match(line) {
					hits = append(hits, SearchHit{WeekIndex: -1, Month: m, Where: fmt.Sprintf("%s / %s", m.Label(), cat.Title()), Text: strings.TrimSpace(line)})
				}
			}
		}
	}
	return hits
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when a stored payload is not valid JSON.
	ErrMalformed = errors.New("malformed snapshot")
	// ErrInvalidShape is returned when a payload parses but lacks required structure.
	ErrInvalidShape = errors.New("invalid snapshot shape")
)

// EncodeSnapshot renders the snapshot as the stored JSON document.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s.Clone())
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

type rawWeek struct {
	ID                *string               `json:"id"`
	WeekRange         *string               `json:"weekRange"`
	TopPriorities     []string              `json:"topPriorities"`
	PriorityPipelines [][]PipelineCandidate `json:"priorityPipelines"`
	ReportThisWeek    *ReportSection        `json:"reportThisWeek"`
	ReportNextWeek    *ReportSection        `json:"reportNextWeek"`
}

type rawStrategic struct {
	Semester1Goals *[]StrategicGoal           `json:"semester1Goals"`
	Semester2Goals *[]StrategicGoal           `json:"semester2Goals"`
	MonthlyReports map[MonthKey]ReportSection `json:"monthlyReports"`
}

type rawSnapshot struct {
	Weeks         *[]rawWeek    `json:"weeks"`
	StrategicData *rawStrategic `json:"strategicData"`
}

// DecodeSnapshot parses a stored document. Syntax errors wrap ErrMalformed;
// anything that parses but would not render wraps ErrInvalidShape.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if !json.Valid(data) {
		return Snapshot{}, ErrMalformed
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if raw.Weeks == nil || raw.StrategicData == nil {
		return Snapshot{}, fmt.Errorf("%w: missing weeks or strategicData", ErrInvalidShape)
	}
	if len(*raw.Weeks) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no weeks", ErrInvalidShape)
	}

	snap := Snapshot{Weeks: make([]Week, 0, len(*raw.Weeks))}
	for i, rw := range *raw.Weeks {
		w, err := rw.week()
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: week %d: %v", ErrInvalidShape, i, err)
		}
		snap.Weeks = append(snap.Weeks, w)
	}

	sd := raw.StrategicData
	if sd.Semester1Goals == nil || sd.Semester2Goals == nil {
		return Snapshot{}, fmt.Errorf("%w: missing semester goals", ErrInvalidShape)
	}
	if sd.MonthlyReports == nil {
		return Snapshot{}, fmt.Errorf("%w: missing monthlyReports", ErrInvalidShape)
	}
	snap.StrategicData = StrategicData{
		Semester1Goals: *sd.Semester1Goals,
		Semester2Goals: *sd.Semester2Goals,
		MonthlyReports: sd.MonthlyReports,
	}
	for _, g := range append(append([]StrategicGoal{}, snap.StrategicData.Semester1Goals...), snap.StrategicData.Semester2Goals...) {
		if g.ID == "" {
			return Snapshot{}, fmt.Errorf("%w: goal without id", ErrInvalidShape)
		}
	}

	// Months absent from older payloads come back empty.
	return snap.Clone(), nil
}

func (rw rawWeek) week() (Week, error) {
	if rw.ID == nil || rw.WeekRange == nil {
		return Week{}, errors.New("missing id or weekRange")
	}
	if len(rw.TopPriorities) != PrioritySlots {
		return Week{}, fmt.Errorf("want %d priorities, got %d", PrioritySlots, len(rw.TopPriorities))
	}
	if len(rw.PriorityPipelines) != PrioritySlots {
		return Week{}, fmt.Errorf("want %d pipelines, got %d", PrioritySlots, len(rw.PriorityPipelines))
	}
	if rw.ReportThisWeek == nil || rw.ReportNextWeek == nil {
		return Week{}, errors.New("missing report section")
	}

	w := Week{
		ID:             *rw.ID,
		WeekRange:      *rw.WeekRange,
		ReportThisWeek: *rw.ReportThisWeek,
		ReportNextWeek: *rw.ReportNextWeek,
	}
	copy(w.TopPriorities[:], rw.TopPriorities)
	for slot, pipeline := range rw.PriorityPipelines {
		if pipeline == nil {
			return Week{}, fmt.Errorf("pipeline %d is null", slot)
		}
		for _, c := range pipeline {
			if c.ID == "" {
				return Week{}, fmt.Errorf("candidate %q without id", c.Name)
			}
			if !c.Status.Valid() {
				return Week{}, fmt.Errorf("candidate %q has unknown status %q", c.Name, c.Status)
			}
		}
		w.PriorityPipelines[slot] = pipeline
	}
	return w, nil
}

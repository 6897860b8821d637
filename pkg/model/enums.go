package model

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// TaskStatuses lists the kanban columns in board order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Next returns the adjacent status in direction d, clamped at the ends.
func (s TaskStatus) Next(d Direction) TaskStatus {
	idx := -1
	for i, st := range TaskStatuses {
		if st == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	switch d {
	case Forward:
		if idx < len(TaskStatuses)-1 {
			idx++
		}
	case Backward:
		if idx > 0 {
			idx--
		}
	}
	return TaskStatuses[idx]
}

func (s *TaskStatus) UnmarshalText(b []byte) error {
	v := TaskStatus(b)
	if !v.IsValid() {
		return fmt.Errorf("unknown task status %q", string(b))
	}
	*s = v
	return nil
}

type LeadStatus string

const (
	LeadCold   LeadStatus = "Cold"
	LeadWarm   LeadStatus = "Warm"
	LeadClosed LeadStatus = "Closed"
)

var LeadStatuses = []LeadStatus{LeadCold, LeadWarm, LeadClosed}

func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadCold, LeadWarm, LeadClosed:
		return true
	default:
		return false
	}
}

func (s *LeadStatus) UnmarshalText(b []byte) error {
	v := LeadStatus(b)
	if !v.IsValid() {
		return fmt.Errorf("unknown lead status %q", string(b))
	}
	*s = v
	return nil
}

type ScheduleKind string

const (
	KindRoutine  ScheduleKind = "routine"
	KindAcademic ScheduleKind = "academic"
	KindSkill    ScheduleKind = "skill"
	KindIncome   ScheduleKind = "income"
	KindPlanning ScheduleKind = "planning"
	KindRest     ScheduleKind = "rest"
)

func (k ScheduleKind) IsValid() bool {
	switch k {
	case KindRoutine, KindAcademic, KindSkill, KindIncome, KindPlanning, KindRest:
		return true
	default:
		return false
	}
}

func (k *ScheduleKind) UnmarshalText(b []byte) error {
	v := ScheduleKind(b)
	if !v.IsValid() {
		return fmt.Errorf("unknown schedule type %q", string(b))
	}
	*k = v
	return nil
}

// Weekday uses the Indonesian day names that key the schedule.
type Weekday string

const (
	Minggu Weekday = "Minggu"
	Senin  Weekday = "Senin"
	Selasa Weekday = "Selasa"
	Rabu   Weekday = "Rabu"
	Kamis  Weekday = "Kamis"
	Jumat  Weekday = "Jumat"
	Sabtu  Weekday = "Sabtu"
)

// Weekdays is indexed by time.Weekday (Sunday first).
var Weekdays = [7]Weekday{Minggu, Senin, Selasa, Rabu, Kamis, Jumat, Sabtu}

// WeekOrder is the display order of the schedule, Monday first.
var WeekOrder = []Weekday{Senin, Selasa, Rabu, Kamis, Jumat, Sabtu, Minggu}

func WeekdayOf(d time.Weekday) Weekday {
	return Weekdays[d]
}

// Index returns the time.Weekday of w, or -1 for an unknown name.
func (w Weekday) Index() int {
	for i, d := range Weekdays {
		if d == w {
			return i
		}
	}
	return -1
}

func (w Weekday) IsValid() bool {
	return w.Index() >= 0
}

func (w *Weekday) UnmarshalText(b []byte) error {
	v := Weekday(b)
	if !v.IsValid() {
		return fmt.Errorf("unknown weekday %q", string(b))
	}
	*w = v
	return nil
}

// ListKind selects which checklist of a subject an operation targets.
type ListKind string

const (
	ListWeekly   ListKind = "weekly"
	ListStrategy ListKind = "strategy"
)

func (k ListKind) IsValid() bool {
	return k == ListWeekly || k == ListStrategy
}

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

func (d Direction) IsValid() bool {
	return d == Forward || d == Backward
}

// ParseDirection accepts the board shorthands next/prev as well.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "next", "f":
		return Forward, nil
	case "backward", "back", "prev", "b":
		return Backward, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

package model

import "time"

// CurrentSchemaVersion is written by the default dataset builder. Blobs
// without a version are treated as version 1.
const CurrentSchemaVersion = 1

// RootState is the whole persisted dashboard document.
type RootState struct {
	SchemaVersion int                        `json:"schemaVersion,omitempty"`
	CurrentWeek   int                        `json:"currentWeek"`
	LastUpdated   time.Time                  `json:"lastUpdated"`
	User          *UserProfile               `json:"user"`
	WeeklyHistory []HistoryEntry             `json:"weeklyHistory"`
	Academics     []Subject                  `json:"academics"`
	Schedule      map[Weekday][]ScheduleItem `json:"schedule"`
	Projects      []Project                  `json:"projects"`
	Income        Income                     `json:"income"`
	Health        Health                     `json:"health"`
	CyberRoadmap  CyberRoadmap               `json:"cyberRoadmap"`
}

type UserProfile struct {
	Name       string  `json:"name" yaml:"name"`
	Semester   int     `json:"semester" yaml:"semester"`
	TargetGPA  float64 `json:"targetIPK" yaml:"targetIPK"`
	University string  `json:"university" yaml:"university"`
	Theme      string  `json:"theme" yaml:"theme"`
}

// HistoryEntry archives one finished week.
type HistoryEntry struct {
	Week  int       `json:"week"`
	Date  string    `json:"date"`
	Score int       `json:"score"`
	Stats WeekStats `json:"stats"`
}

type WeekStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Subject is one course of the semester.
type Subject struct {
	ID              string             `json:"id" yaml:"id"`
	Name            string             `json:"name" yaml:"name"`
	Credits         int                `json:"sks" yaml:"sks"`
	Target          float64            `json:"target" yaml:"target"`
	TargetGrade     string             `json:"targetGrade" yaml:"targetGrade"`
	CurrentScore    float64            `json:"currentScore" yaml:"currentScore"`
	Weight          map[string]float64 `json:"weight" yaml:"weight"`
	Strategies      []ChecklistItem    `json:"strategies" yaml:"strategies"`
	WeeklyChecklist []ChecklistItem    `json:"weeklyChecklist" yaml:"weeklyChecklist"`
	Risks           string             `json:"risks" yaml:"risks"`
}

// WeightTotal sums the grading components. The UI expects 100 but the
// value is never enforced.
func (s Subject) WeightTotal() float64 {
	var total float64
	for _, w := range s.Weight {
		total += w
	}
	return total
}

// ChecklistCounts reports completed and total weekly checklist items.
func (s Subject) ChecklistCounts() (completed, total int) {
	for _, item := range s.WeeklyChecklist {
		total++
		if item.Done {
			completed++
		}
	}
	return completed, total
}

type ChecklistItem struct {
	ID   ID     `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

type ScheduleItem struct {
	Time     string       `json:"time" yaml:"time"`
	Activity string       `json:"activity" yaml:"activity"`
	Type     ScheduleKind `json:"type" yaml:"type"`
}

type Project struct {
	ID       string     `json:"id" yaml:"id"`
	Title    string     `json:"title" yaml:"title"`
	Category string     `json:"category" yaml:"category"`
	Status   TaskStatus `json:"status" yaml:"status"`
	Tasks    []Task     `json:"tasks" yaml:"tasks"`
}

type Task struct {
	ID     string     `json:"id" yaml:"id"`
	Title  string     `json:"title" yaml:"title"`
	Status TaskStatus `json:"status" yaml:"status"`
}

type Income struct {
	TotalRevenue  int64    `json:"totalRevenue" yaml:"totalRevenue"`
	TargetRevenue int64    `json:"targetRevenue" yaml:"targetRevenue"`
	Leads         []Lead   `json:"leads" yaml:"leads"`
	Scripts       []Script `json:"scripts" yaml:"scripts"`
}

// Revenue sums the value of closed leads.
func (in Income) Revenue() int64 {
	var total int64
	for _, l := range in.Leads {
		if l.Status == LeadClosed {
			total += l.Value
		}
	}
	return total
}

type Lead struct {
	ID     ID         `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Owner  string     `json:"owner" yaml:"owner"`
	Status LeadStatus `json:"status" yaml:"status"`
	Value  int64      `json:"value" yaml:"value"`
	Notes  string     `json:"notes" yaml:"notes"`
}

// Script is an outreach message template.
type Script struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

type Health struct {
	Logs      []LogEntry          `json:"logs" yaml:"logs"`
	Checklist map[string][]string `json:"checklist" yaml:"checklist"`
}

// LogEntry is one daily wellbeing record. Mood and stress are on a 0-10 scale.
type LogEntry struct {
	Date   string  `json:"date"`
	Sleep  float64 `json:"sleep" validate:"gte=0,lte=24"`
	Mood   int     `json:"mood" validate:"gte=0,lte=10"`
	Stress int     `json:"stress" validate:"gte=0,lte=10"`
}

type CyberRoadmap struct {
	Skills   []Skill         `json:"skills" yaml:"skills"`
	Tools    []Tool          `json:"tools" yaml:"tools"`
	Progress RoadmapProgress `json:"progress" yaml:"progress"`
}

type Skill struct {
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
}

type Tool struct {
	Name    string `json:"name" yaml:"name"`
	Checked bool   `json:"checked" yaml:"checked"`
}

type RoadmapProgress struct {
	TryHackMeRooms int `json:"tryHackMeRooms" yaml:"tryHackMeRooms"`
	Writeups       int `json:"writeups" yaml:"writeups"`
}

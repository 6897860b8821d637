package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mklimuk/semester-pilot/pkg/model"
)

// Semester Pilot theme (CLI + TUI).

const (
	IconWave     = "👋"
	IconBook     = "📚"
	IconCalendar = "📅"
	IconBox      = "📦"
	IconMoney    = "💰"
	IconHeart    = "❤️"
	IconShield   = "🛡️"
	IconDone     = "✅"
	IconTrophy   = "🏆"
	IconInfo     = "ℹ️"
	IconWarn     = "⚠️"
	IconError    = "🧨"
	IconScroll   = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelActive = Panel.BorderForeground(cAccent)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// StatusText colours a task status.
func StatusText(status model.TaskStatus) string {
	switch status {
	case model.StatusDone:
		return Good.Render(string(status))
	case model.StatusInProgress:
		return H2.Render(string(status))
	case model.StatusTodo:
		return Warn.Render(string(status))
	default:
		return Muted.Render(string(status))
	}
}

// LeadText colours a lead status.
func LeadText(status model.LeadStatus) string {
	switch status {
	case model.LeadClosed:
		return Good.Render(string(status))
	case model.LeadWarm:
		return Gold.Render(string(status))
	default:
		return Muted.Render(string(status))
	}
}

// Check renders a checkbox.
func Check(done bool) string {
	if done {
		return Good.Render("[x]")
	}
	return Muted.Render("[ ]")
}

// Burnout colours a burnout score by risk.
func Burnout(score float64, high bool) string {
	text := fmt.Sprintf("%.1f/10", score)
	switch {
	case high:
		return Bad.Render(text + " HIGH RISK")
	case score > 4:
		return Warn.Render(text)
	default:
		return Good.Render(text)
	}
}

// ProgressBar draws a fixed-width bar for a 0-100 percentage.
func ProgressBar(percent int, width int) string {
	if width <= 3 {
		width = 3
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

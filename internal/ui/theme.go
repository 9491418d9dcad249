package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PetProgress theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconPet     = "🐾"
	IconEgg     = "🥚"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconClock   = "⏰"
	IconMoon    = "🌙"
	IconLoop    = "🔁"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconDown    = "📉"
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
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeEvolved = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("EVOLVED")
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

// Clock renders an HH:MM time-of-day.
func Clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// CheckMark renders the completion column of a task row.
func CheckMark(completed bool) string {
	if completed {
		return Good.Render("[x]")
	}
	return Muted.Render("[ ]")
}

// XPBar renders stage progress as a fixed-width bar. threshold 0 (terminal
// stage) renders a full bar.
func XPBar(xp, threshold, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := width
	if threshold > 0 {
		filled = xp * width / threshold
		if filled > width {
			filled = width
		}
		if filled < 0 {
			filled = 0
		}
	}
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}

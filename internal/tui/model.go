package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"petprogress/internal/engine"
	"petprogress/internal/ui"
)

// RunBoard runs the interactive board until the user quits. The program
// takes over the alternate screen and shuts down when ctx is canceled.
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer) error {
	p := tea.NewProgram(newBoardModel(ctx, svc),
		tea.WithOutput(out),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	dayKey string
	status *engine.Status
	tasks  []engine.DayTask

	selected int
	lastLog  string
	loading  bool
	err      error
}

type loadedMsg struct {
	dayKey string
	status *engine.Status
	tasks  []engine.DayTask
	err    error
}

type checkedMsg struct {
	res *engine.CheckInResult
	err error
}

type snoozedMsg struct {
	res *engine.SnoozeResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		if _, err := m.svc.Tick(m.ctx, now); err != nil {
			return loadedMsg{err: err}
		}
		dayKey, tasks, err := m.svc.Today(m.ctx, now)
		if err != nil {
			return loadedMsg{err: err}
		}
		status, err := m.svc.Status(m.ctx, now)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{dayKey: dayKey, status: status, tasks: tasks}
	}
}

func (m boardModel) checkCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CheckIn(m.ctx, id, time.Now())
		return checkedMsg{res: res, err: err}
	}
}

func (m boardModel) snoozeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Snooze(m.ctx, id, 10, time.Now())
		return snoozedMsg{res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.dayKey = msg.dayKey
		m.status = msg.status
		m.tasks = msg.tasks
		if m.selected >= len(m.tasks) {
			m.selected = len(m.tasks) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case checkedMsg:
		if msg.err != nil {
			m.lastLog = "Check-in failed: " + msg.err.Error()
			return m, nil
		}
		switch {
		case !msg.res.Found:
			m.lastLog = "Task is gone; refreshing."
		case msg.res.Celebrate:
			m.lastLog = fmt.Sprintf("%s %s! Now a %s.", ui.BadgeEvolved, msg.res.Title, msg.res.Stage.Name)
		case msg.res.OnTime:
			m.lastLog = fmt.Sprintf("Done on time: %s (+%d XP)", msg.res.Title, msg.res.XPDelta)
		default:
			m.lastLog = fmt.Sprintf("Done late: %s (+%d XP)", msg.res.Title, msg.res.XPDelta)
		}
		return m, m.loadCmd()
	case snoozedMsg:
		if msg.err != nil {
			m.lastLog = "Snooze failed: " + msg.err.Error()
			return m, nil
		}
		if msg.res.Found {
			m.lastLog = fmt.Sprintf("Snoozed %s until %s.", msg.res.Title, msg.res.Until.Format("15:04"))
		} else {
			m.lastLog = "Nothing to snooze; refreshing."
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		case "enter", " ":
			if m.selected >= 0 && m.selected < len(m.tasks) {
				return m, m.checkCmd(m.tasks[m.selected].ID)
			}
			return m, nil
		case "s":
			if m.selected >= 0 && m.selected < len(m.tasks) {
				return m, m.snoozeCmd(m.tasks[m.selected].ID)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.loading {
		return ui.Muted.Render("Loading…")
	}
	if m.err != nil {
		return ui.Bad.Render(ui.IconError + " " + m.err.Error())
	}

	var b strings.Builder
	b.WriteString(m.petPanel())
	b.WriteString("\n")
	b.WriteString(m.taskPanel())
	b.WriteString("\n")
	b.WriteString(ui.Muted.Render(m.lastLog))
	b.WriteString("\n")
	b.WriteString(ui.Muted.Render("enter: check in · s: snooze 10m · r: refresh · q: quit"))
	return b.String()
}

func (m boardModel) petPanel() string {
	if m.status == nil {
		return ""
	}
	pet := m.status.Pet
	line := fmt.Sprintf("%s %s  %s",
		ui.IconPet,
		ui.Title.Render(m.status.Stage.Name),
		ui.XPBar(pet.StageXP, m.status.Threshold, 20),
	)
	if m.status.Threshold > 0 {
		line += ui.Muted.Render(fmt.Sprintf(" %d/%d XP", pet.StageXP, m.status.Threshold))
	} else {
		line += ui.Muted.Render(" final stage")
	}
	return ui.Panel.Render(line)
}

func (m boardModel) taskPanel() string {
	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconClock+" Today · "+m.dayKey) + "\n")
	if len(m.tasks) == 0 {
		b.WriteString(ui.Muted.Render("No tasks today.") + "\n")
		return ui.Panel.Render(strings.TrimRight(b.String(), "\n"))
	}
	for i, t := range m.tasks {
		row := fmt.Sprintf("%s %s  %s", ui.CheckMark(t.Completed), ui.Clock(t.Hour, t.Minute), t.Title)
		if t.Origin.Kind == engine.OriginSeries {
			row += " " + ui.Muted.Render(ui.IconLoop)
		}
		if i == m.selected {
			row = ui.SelectedRow.Render(row)
		}
		b.WriteString(row + "\n")
	}
	return ui.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

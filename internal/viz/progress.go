package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgressMsg reports how many systems have finished so far.
type ProgressMsg int

// DoneMsg ends the progress view.
type DoneMsg struct{}

type tickMsg time.Time

// ProgressModel is a Bubble Tea view for long runs: a spinner, a bar and a
// completion count, driven by ProgressMsg values sent from the run's
// progress callback.
type ProgressModel struct {
	Total int

	done  int
	frame int
	start time.Time
}

func NewProgress(total int) ProgressModel {
	return ProgressModel{Total: total, start: time.Now()}
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case ProgressMsg:
		m.done = int(msg)
		if m.Total > 0 && m.done >= m.Total {
			return m, tea.Quit
		}
	case DoneMsg:
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m ProgressModel) View() string {
	pct := 0.0
	if m.Total > 0 {
		pct = float64(m.done) / float64(m.Total)
	}
	elapsed := time.Since(m.start).Round(time.Second)
	return fmt.Sprintf("%s %s %s\n%s\n",
		Spinner(m.frame),
		ProgressBar(pct, 40),
		valueStyle.Render(fmt.Sprintf("%d/%d systems", m.done, m.Total)),
		subtleStyle.Render(fmt.Sprintf("elapsed %s  press q to abort", elapsed)),
	)
}

// Done returns how many systems the model has seen finish.
func (m ProgressModel) Done() int { return m.done }

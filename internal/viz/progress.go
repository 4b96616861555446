package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type (
	// ProgressMsg reports frames rasterized so far.
	ProgressMsg struct{ Done, Total int }
	// DoneMsg ends the view with the outcome of the work.
	DoneMsg struct{ Err error }

	tickMsg time.Time
)

// ProgressModel is a Bubble Tea model showing a spinner and a bar while a
// figure is encoded.
type ProgressModel struct {
	Title string
	Done  int
	Total int
	Err   error

	frame    int
	finished bool
}

func NewProgressModel(title string, total int) ProgressModel {
	return ProgressModel{Title: title, Total: total}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/12, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.Done = msg.Done
		if msg.Total > 0 {
			m.Total = msg.Total
		}
		return m, nil
	case DoneMsg:
		m.Err = msg.Err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Err = fmt.Errorf("interrupted")
			m.finished = true
			return m, tea.Quit
		}
	case tickMsg:
		if m.finished {
			return m, nil
		}
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m ProgressModel) View() string {
	pct := 0.0
	if m.Total > 0 {
		pct = float64(m.Done) / float64(m.Total)
	}

	status := AnimatedSpinner(m.frame)
	if m.finished {
		if m.Err != nil {
			status = Failure.Render("✗")
		} else {
			status = Success.Render("✓")
		}
	}

	return fmt.Sprintf("%s %s %s %s\n",
		status,
		Title.Render(m.Title),
		ProgressBar(pct, 30),
		Subtle.Render(fmt.Sprintf("%d/%d frames", m.Done, m.Total)),
	)
}

// RunWithProgress runs work while a progress view is shown on the terminal.
// work receives a callback to report frames; its error is returned.
func RunWithProgress(title string, total int, work func(progress func(done, total int)) error) error {
	p := tea.NewProgram(NewProgressModel(title, total))

	go func() {
		err := work(func(done, total int) {
			p.Send(ProgressMsg{Done: done, Total: total})
		})
		p.Send(DoneMsg{Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	return final.(ProgressModel).Err
}

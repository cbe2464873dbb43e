package viz

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/trajopt/internal/ilqr"
)

const (
	graphWidth  = 70
	graphHeight = 12
)

// IterMsg carries one accepted iteration from the solver goroutine.
type IterMsg ilqr.IterStat

// DoneMsg signals the end of the solve.
type DoneMsg struct {
	Reason    string
	Converged bool
	Err       error
}

// SolveModel is a live view of a running solve: the cost curve grows one
// point per accepted iteration.
type SolveModel struct {
	name  string
	iters chan ilqr.IterStat
	done  chan DoneMsg

	history  []float64
	last     ilqr.IterStat
	finished bool
	final    DoneMsg
}

// NewSolveModel wires the view to a solver whose OnIteration callback
// feeds iters and whose completion feeds done.
func NewSolveModel(name string, iters chan ilqr.IterStat, done chan DoneMsg) *SolveModel {
	return &SolveModel{
		name:  name,
		iters: iters,
		done:  done,
	}
}

func (m *SolveModel) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case it, ok := <-m.iters:
			if ok {
				return IterMsg(it)
			}
			return <-m.done
		case d := <-m.done:
			return d
		}
	}
}

func (m *SolveModel) Init() tea.Cmd {
	return m.wait()
}

func (m *SolveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case IterMsg:
		m.last = ilqr.IterStat(msg)
		m.history = append(m.history, m.last.Cost)
		return m, m.wait()
	case DoneMsg:
		m.finished = true
		m.final = msg
		return m, nil
	}
	return m, nil
}

func (m *SolveModel) View() string {
	s := HeaderStyle.Render(fmt.Sprintf("solving %s", m.name)) + "\n"

	if len(m.history) > 0 {
		s += GraphStyle.Render(CostCurve(m.history, graphWidth, graphHeight)) + "\n"
	}

	s += Row("iteration", fmt.Sprintf("%d", m.last.Iter)) + "\n"
	s += Row("cost", fmt.Sprintf("%.6f", m.last.Cost)) + "\n"
	s += Row("dJ", fmt.Sprintf("%.3e", m.last.DJ)) + "\n"
	s += Row("gradient", fmt.Sprintf("%.3e", m.last.Gradient)) + "\n"
	s += Row("alpha", fmt.Sprintf("%.4f", m.last.Alpha)) + "\n"
	s += Row("rho", fmt.Sprintf("%.3e", m.last.Rho)) + "\n"

	if m.finished {
		if m.final.Err != nil {
			s += "\n" + BadStyle.Render("failed: "+m.final.Err.Error()) + "\n"
		} else if m.final.Converged {
			s += "\n" + GoodStyle.Render("converged: "+m.final.Reason) + "\n"
		} else {
			s += "\n" + BadStyle.Render("terminated: "+m.final.Reason) + "\n"
		}
		s += HelpStyle.Render("q: quit")
	} else {
		s += HelpStyle.Render("solving... q: quit")
	}
	return s
}

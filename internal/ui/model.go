package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/assafkip/spanforge/internal/report"
	"github.com/assafkip/spanforge/pkg/governance"
)

type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
)

type Tab int

const (
	TabRuns Tab = iota
	TabCandidates
	TabProposals
)

var tabNames = []string{"RUNS", "CANDIDATES", "PROPOSALS"}

type Model struct {
	// data
	runs       []report.RunSummary
	candidates []governance.Candidate
	proposals  []governance.Proposal

	// state
	state    ViewState
	tab      Tab
	quitting bool
	width    int
	height   int

	// navigation
	cursor  int // main list cursor
	details viewport.Model
}

func NewModel(runs []report.RunSummary, candidates []governance.Candidate, proposals []governance.Proposal) Model {
	return Model{
		runs:       runs,
		candidates: candidates,
		proposals:  proposals,
		state:      ViewStateList,
		details:    viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// tabLen is the item count behind the active tab.
func (m Model) tabLen() int {
	switch m.tab {
	case TabCandidates:
		return len(m.candidates)
	case TabProposals:
		return len(m.proposals)
	default:
		return len(m.runs)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab", "right", "l":
			m.tab = (m.tab + 1) % Tab(len(tabNames))
			m.cursor = 0
			m.state = ViewStateList

		case "shift+tab", "left", "h":
			m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
			m.cursor = 0
			m.state = ViewStateList

		case "up", "k":
			if m.state == ViewStateDetail {
				var cmd tea.Cmd
				m.details, cmd = m.details.Update(msg)
				return m, cmd
			}
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.state == ViewStateDetail {
				var cmd tea.Cmd
				m.details, cmd = m.details.Update(msg)
				return m, cmd
			}
			if m.cursor < m.tabLen()-1 {
				m.cursor++
			}

		case "enter", " ":
			if m.state == ViewStateDetail {
				m.state = ViewStateList
			} else if m.tabLen() > 0 {
				m.state = ViewStateDetail
				m.details.SetContent(m.detailContent())
				m.details.GotoTop()
			}

		case "esc", "b":
			m.state = ViewStateList
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.details.Width = msg.Width - 8
		m.details.Height = msg.Height - 10
		if m.details.Width < 20 {
			m.details.Width = 20
		}
		if m.details.Height < 5 {
			m.details.Height = 5
		}
	}
	return m, nil
}

// Run blocks until the operator quits the review screen.
func Run(m Model) error {
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}

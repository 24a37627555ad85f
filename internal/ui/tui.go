package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := strings.Builder{}
	s.WriteString(m.viewHUD())
	s.WriteString("\n")
	s.WriteString(m.viewTabs())
	s.WriteString("\n\n")

	if m.state == ViewStateDetail {
		s.WriteString(m.viewDetails())
	} else {
		s.WriteString(m.viewList())
	}

	s.WriteString("\n\n")
	if m.state == ViewStateDetail {
		s.WriteString(helpStyle("j/k: scroll • enter/esc: close • tab: switch • q: quit"))
	} else {
		s.WriteString(helpStyle("j/k: move • enter: details • tab: switch • q: quit"))
	}
	return s.String()
}

func (m Model) viewTabs() string {
	counts := []int{len(m.runs), len(m.candidates), len(m.proposals)}

	var rendered []string
	for i, name := range tabNames {
		label := name
		if counts[i] > 0 {
			label = fmt.Sprintf("%s (%d)", name, counts[i])
		}
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render("[ "+label+" ]"))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Center, rendered...)
}

func helpStyle(s string) string {
	return lipgloss.NewStyle().Foreground(colorTextSub).Render(s)
}

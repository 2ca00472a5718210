// Package render prints a resolved plan for humans.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/specialistvlad/gpuforge/internal/plan"
)

var (
	pipelineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	stepStyle     = lipgloss.NewStyle().Width(11).Foreground(lipgloss.Color("8"))
	dirStyle      = lipgloss.NewStyle().Faint(true)
)

// Plan writes steps grouped by pipeline, one line per step.
func Plan(w io.Writer, steps []plan.Step) error {
	var b strings.Builder
	current := ""
	index := 0

	for _, s := range steps {
		if s.Pipeline != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = s.Pipeline
			index++
			b.WriteString(pipelineStyle.Render(fmt.Sprintf("%d. %s", index, s.Pipeline)))
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(stepStyle.Render(s.Name))
		b.WriteString(describe(s))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describe(s plan.Step) string {
	switch s.Kind {
	case plan.KindRemove:
		return "rm -rf " + s.Path
	case plan.KindVerifyRevision:
		return fmt.Sprintf("%s == %s  %s", strings.Join(s.Argv, " "), s.Revision, dirStyle.Render("("+s.Dir+")"))
	default:
		return strings.Join(s.Argv, " ") + "  " + dirStyle.Render("("+s.Dir+")")
	}
}

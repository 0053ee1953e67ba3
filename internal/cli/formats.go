package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotpipe/pkg/backend"
)

// formatsCommand lists the engines, formats, renderers and formatters that
// requests are validated against.
func (c *CLI) formatsCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "formats",
		Aliases: []string{"capabilities"},
		Short:   "List supported engines, formats, renderers and formatters",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sets := capabilitySets()
			w := cmd.OutOrStdout()
			if plain {
				for _, s := range sets {
					fmt.Fprintf(w, "%s: %s\n", s.name, strings.Join(s.values, " "))
				}
				return nil
			}
			fmt.Fprintln(w, renderCapabilities(sets))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print one unstyled line per kind")
	return cmd
}

type capabilitySet struct {
	name   string
	values []string
}

func capabilitySets() []capabilitySet {
	return []capabilitySet{
		{"engines", backend.Sorted(backend.Engines)},
		{"formats", backend.Sorted(backend.Formats)},
		{"renderers", backend.Sorted(backend.Renderers)},
		{"formatters", backend.Sorted(backend.Formatters)},
	}
}

// renderCapabilities lays the sets out as a table, wrapping long value
// lists.
func renderCapabilities(sets []capabilitySet) string {
	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		rows = append(rows, []string{s.name, StyleNumber.Render(fmt.Sprint(len(s.values))), wrapWords(s.values, 60)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Count", "Values").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col == 0 {
				return StyleHighlight.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}

// wrapWords joins words with spaces, breaking lines at width.
func wrapWords(words []string, width int) string {
	var (
		b    strings.Builder
		line int
	)
	for i, w := range words {
		if i > 0 {
			if line+1+len(w) > width {
				b.WriteByte('\n')
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(w)
		line += len(w)
	}
	return b.String()
}

// Package termview renders derived sections for a terminal.
package termview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dukerupert/grocerylist/internal/listview"
	"github.com/dukerupert/grocerylist/internal/model"
)

type Renderer struct {
	// ShowIDs prefixes each row with the item id, for use with the
	// toggle and delete commands.
	ShowIDs bool

	notes lipgloss.Style
	done  lipgloss.Style
	count lipgloss.Style
	empty lipgloss.Style
}

func New(showIDs bool) *Renderer {
	return &Renderer{
		ShowIDs: showIDs,
		notes:   lipgloss.NewStyle().Faint(true),
		done:    lipgloss.NewStyle().Strikethrough(true).Italic(true).Faint(true),
		count:   lipgloss.NewStyle().Faint(true),
		empty:   lipgloss.NewStyle().Italic(true).Faint(true),
	}
}

func (r *Renderer) header(c model.Category, n int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(c.Color())).
		Render(c.Label())
	return title + " " + r.count.Render(fmt.Sprintf("(%d)", n))
}

func (r *Renderer) row(it model.Item) string {
	mark := "[ ]"
	title := it.Title
	if it.Completed {
		mark = "[x]"
		title = r.done.Render(title)
	}

	var b strings.Builder
	b.WriteString("  ")
	if r.ShowIDs {
		fmt.Fprintf(&b, "%4d ", it.ID)
	}
	b.WriteString(mark)
	b.WriteString(" ")
	b.WriteString(title)
	if it.HasNotes() {
		indent := "      "
		if r.ShowIDs {
			indent += "     "
		}
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(r.notes.Render(firstLines(strings.TrimSpace(it.Notes), 2)))
	}
	return b.String()
}

// Render writes the sections, or an empty-state line when there is nothing
// on the list at all.
func (r *Renderer) Render(w io.Writer, sections []listview.Section, sum listview.Summary) error {
	if sum.Empty {
		_, err := fmt.Fprintln(w, r.empty.Render("Empty list. Add whatever you want to buy!"))
		return err
	}
	for i, sec := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, r.header(sec.Category, sec.Count())); err != nil {
			return err
		}
		for _, it := range sec.Items {
			if _, err := fmt.Fprintln(w, r.row(it)); err != nil {
				return err
			}
		}
	}
	if hidden := sum.Total - sum.Visible; hidden > 0 {
		_, err := fmt.Fprintln(w, "\n"+r.count.Render(fmt.Sprintf("%d completed item(s) hidden", hidden)))
		return err
	}
	return nil
}

// firstLines keeps at most n lines of s.
func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = append(lines[:n], "…")
	}
	return strings.Join(lines, " ")
}

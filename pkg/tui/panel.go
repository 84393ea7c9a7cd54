package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// maxConnections caps the connection list in the panel
const maxConnections = 12

// detailPanel renders the selected entity. Markdown content goes through
// glamour; the rendered text is cached per entity.
type detailPanel struct {
	width    int
	renderer *glamour.TermRenderer
	theme    render.Theme

	cachedID      int64
	cachedContent string
	cachedOut     string
}

func newDetailPanel(width int) *detailPanel {
	// A fixed style avoids querying the terminal for its background
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	return &detailPanel{
		width:    width,
		renderer: r,
		theme:    render.DefaultTheme(),
	}
}

// Render draws the panel body for st; spin is the current spinner frame
func (p *detailPanel) Render(st detail.State, spin string) string {
	if !st.HasSelection {
		return mutedStyle.Render("Click a node to see its details.")
	}
	if st.Loading && st.Detail == nil {
		return fmt.Sprintf("%s Loading entity %d…", spin, st.SelectedID)
	}
	if st.Err != nil {
		msg := st.Err.Error()
		if errors.Is(st.Err, detail.ErrNotFound) {
			msg = fmt.Sprintf("Entity %d was not found.", st.SelectedID)
		}
		return errorStyle.Render(msg)
	}
	if st.Detail == nil {
		return ""
	}
	return p.renderDetail(st.Detail)
}

func (p *detailPanel) kindStyle(kind string) lipgloss.Style {
	ks := p.theme.Style(visualization.ParseKind(kind))
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ks.Fill))
}

func (p *detailPanel) renderDetail(d *detail.EntityDetail) string {
	var s strings.Builder

	s.WriteString(panelTitleStyle.Render(render.Truncate(d.Title, p.width)))
	s.WriteString("\n")
	s.WriteString(p.kindStyle(d.Kind).Render(d.Kind))
	s.WriteString(mutedStyle.Render(fmt.Sprintf(" · #%d", d.ID)))
	s.WriteString("\n")

	if d.URL != "" {
		s.WriteString(mutedStyle.Render(render.Truncate(d.URL, p.width)))
		s.WriteString("\n")
	}
	if d.Source != "" {
		s.WriteString(mutedStyle.Render("from " + render.Truncate(d.Source, p.width-5)))
		s.WriteString("\n")
	}
	if len(d.Tags) > 0 {
		tags := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			tags[i] = tagStyle.Render(t)
		}
		s.WriteString(lipgloss.NewStyle().Width(p.width).Render(strings.Join(tags, " ")))
		s.WriteString("\n")
	}

	if d.Content != "" {
		s.WriteString(p.content(d))
		s.WriteString("\n")
	}

	s.WriteString(panelTitleStyle.Render(fmt.Sprintf("Connections (%d)", len(d.Connections))))
	s.WriteString("\n")
	for i, c := range d.Connections {
		if i == maxConnections {
			s.WriteString(mutedStyle.Render(fmt.Sprintf("… and %d more", len(d.Connections)-maxConnections)))
			s.WriteString("\n")
			break
		}
		s.WriteString(p.kindStyle(c.Kind).Render("• "))
		s.WriteString(render.Truncate(c.Label, p.width-2))
		s.WriteString("\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

// content renders markdown, falling back to the raw text when glamour fails
func (p *detailPanel) content(d *detail.EntityDetail) string {
	if d.ID == p.cachedID && d.Content == p.cachedContent && p.cachedOut != "" {
		return p.cachedOut
	}

	out := d.Content
	if p.renderer != nil {
		if rendered, err := p.renderer.Render(d.Content); err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	p.cachedID, p.cachedContent, p.cachedOut = d.ID, d.Content, out
	return out
}

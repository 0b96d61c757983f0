package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/tui/viewmodel"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.theme.RoundedBox.Width(max(m.width-2, 20)).Render(m.search.View()),
	}

	if m.state.SelectedRecipe != nil {
		sections = append(sections, m.theme.RoundedBox.Render(m.details.View()))
	} else {
		sections = append(sections, m.renderList())
	}

	sections = append(sections, m.renderStatus())

	if m.config.ShowHelp {
		sections = append(sections, m.help.View(m.keymap))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("🍲 recipebook")

	var subtitle string
	switch {
	case m.state.SelectedCategory != "":
		subtitle = "category: " + m.state.SelectedCategory
	case m.state.SearchQuery != "":
		subtitle = fmt.Sprintf("results for %q", m.state.SearchQuery)
	case m.state.Mode == viewmodel.ModeStored:
		subtitle = "saved recipes"
	}
	if subtitle == "" {
		return title
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", m.theme.Subtitle.Render(subtitle))
}

func (m Model) renderList() string {
	if m.state.IsEmpty() {
		hint := "Type to search, or pick a category:"
		for i, c := range m.config.Categories {
			hint += fmt.Sprintf("  %d %s", i+1, c)
		}
		if m.state.IsLoading {
			hint = ""
		}
		return m.theme.Faint.Render(hint)
	}
	return m.list.View()
}

func (m Model) renderStatus() string {
	var parts []string

	if m.state.IsLoading || m.state.DetailsLoading {
		parts = append(parts, m.spinner.View())
	}

	status := m.state.StatusLine()
	if m.state.FromCache {
		parts = append(parts, m.theme.StatusWarning.Render(status))
	} else {
		parts = append(parts, m.theme.StatusInfo.Render(status))
	}

	if m.state.HasError() {
		parts = append(parts, m.theme.StatusError.Render("✗ "+m.state.Error))
	}

	return strings.Join(parts, " ")
}

// renderRecipe formats the details pane.
func (m Model) renderRecipe(r model.Recipe) string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render(viewmodel.SanitizeForDisplay(r.Title)))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("by %s · added %s",
		r.Publisher, viewmodel.FormatUnixDate(r.LongDateAdded, r.DateAdded))))
	b.WriteString("\n")
	b.WriteString(m.theme.Rating.Render(viewmodel.FormatRating(r.Rating)))
	b.WriteString("\n\n")

	if r.Description != "" && r.Description != "N/A" {
		b.WriteString(r.Description)
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.Bold.Render("Ingredients"))
	b.WriteString("\n")
	if len(r.Ingredients) == 0 {
		b.WriteString(m.theme.Faint.Render("  none listed"))
		b.WriteString("\n")
	}
	for _, ingredient := range r.Ingredients {
		b.WriteString("  • ")
		b.WriteString(viewmodel.SanitizeForDisplay(ingredient))
		b.WriteString("\n")
	}

	if r.HasInstructions() {
		b.WriteString("\n")
		b.WriteString(m.theme.Bold.Render("Instructions"))
		b.WriteString("\n")
		b.WriteString(*r.CookingInstructions)
		b.WriteString("\n")
	}

	if r.SourceURL != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Faint.Render(r.SourceURL))
	}

	return b.String()
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/Veraticus/recipebook/internal/tui/viewmodel"
)

// WriteRecipeTable prints recipes as an aligned table.
func WriteRecipeTable(w io.Writer, recipes []model.Recipe) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("ID"),
		TableHeaderStyle.Render("Title"),
		TableHeaderStyle.Render("Publisher"),
		TableHeaderStyle.Render("Rating")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 6),
		strings.Repeat("─", 40),
		strings.Repeat("─", 16),
		strings.Repeat("─", 5)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, r := range recipes {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.ID,
			viewmodel.TruncateString(viewmodel.SanitizeForDisplay(r.Title), 40),
			viewmodel.TruncateString(viewmodel.SanitizeForDisplay(r.Publisher), 16),
			viewmodel.FormatRating(r.Rating)); err != nil {
			return fmt.Errorf("failed to write recipe row: %w", err)
		}
	}

	return tw.Flush()
}

// FormatRecipe renders one recipe for the get command.
func FormatRecipe(r model.Recipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", SubtitleStyle.Render(fmt.Sprintf("by %s · added %s · %s",
		r.Publisher, viewmodel.FormatUnixDate(r.LongDateAdded, r.DateAdded), viewmodel.FormatRating(r.Rating))))

	if r.Description != "" && r.Description != "N/A" {
		fmt.Fprintf(&b, "\n%s\n", r.Description)
	}

	fmt.Fprintf(&b, "\n%s\n", BoldStyle.Render("Ingredients"))
	if len(r.Ingredients) == 0 {
		fmt.Fprintf(&b, "  %s\n", SubtleStyle.Render("none listed"))
	}
	for _, ingredient := range r.Ingredients {
		fmt.Fprintf(&b, "  • %s\n", viewmodel.SanitizeForDisplay(ingredient))
	}

	if r.HasInstructions() {
		fmt.Fprintf(&b, "\n%s\n%s\n", BoldStyle.Render("Instructions"), strings.TrimSpace(*r.CookingInstructions))
	}

	if r.SourceURL != "" {
		fmt.Fprintf(&b, "\n%s", SubtleStyle.Render(r.SourceURL))
	}

	return RenderBox(fmt.Sprintf("%s %s (#%s)", RecipeIcon, r.Title, r.ID), b.String())
}

package cli

import (
	"bytes"
	"testing"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecipeTable(t *testing.T) {
	var out bytes.Buffer
	recipes := []model.Recipe{
		{ID: "583", Title: "Pizza Potato Skins", Publisher: "mitch", Rating: 100},
		{ID: "9", Title: "Lemon\nBars", Publisher: "ana", Rating: 40},
	}

	require.NoError(t, WriteRecipeTable(&out, recipes))

	text := out.String()
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Pizza Potato Skins")
	assert.Contains(t, text, "Lemon Bars")
	assert.Contains(t, text, "★★★★★")
}

func TestFormatRecipe(t *testing.T) {
	instructions := "  Bake for 20 minutes.  "
	r := model.Recipe{
		ID:                  "583",
		Title:               "Pizza Potato Skins",
		Publisher:           "mitch",
		Description:         "N/A",
		CookingInstructions: &instructions,
		Ingredients:         []string{"4 potatoes", "1 cup cheese"},
		DateAdded:           "November 11 2020",
		SourceURL:           "https://example.com/583",
	}

	text := FormatRecipe(r)

	assert.Contains(t, text, "Pizza Potato Skins (#583)")
	assert.Contains(t, text, "• 4 potatoes")
	assert.Contains(t, text, "Bake for 20 minutes.")
	assert.Contains(t, text, "November 11 2020")
	assert.NotContains(t, text, "N/A")
}

func TestFormatRecipe_WithoutIngredients(t *testing.T) {
	text := FormatRecipe(model.Recipe{ID: "1", Title: "Water"})

	assert.Contains(t, text, "none listed")
	assert.NotContains(t, text, "Instructions")
}

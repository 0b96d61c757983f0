package viewmodel

import (
	"testing"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestListMode_String(t *testing.T) {
	tests := []struct {
		want string
		mode ListMode
	}{
		{mode: ModeIdle, want: "Idle"},
		{mode: ModeSearch, want: "Search"},
		{mode: ModeStored, want: "Stored"},
		{mode: ListMode(99), want: "Unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		want string
		max  int
	}{
		{in: "Pho", max: 10, want: "Pho"},
		{in: "Ramen", max: 5, want: "Ramen"},
		{in: "Pizza Potato Skins", max: 10, want: "Pizza P..."},
		{in: "Gazpacho", max: 3, want: "Gaz"},
		{in: "crème brûlée tart", max: 12, want: "crème brû..."},
		{in: "Gazpacho", max: 0, want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateString(tt.in, tt.max), "TruncateString(%q, %d)", tt.in, tt.max)
	}
}

func TestSanitizeForDisplay(t *testing.T) {
	assert.Equal(t, "Chicken Pasta Bake", SanitizeForDisplay("Chicken\n  Pasta\r\nBake"))
	assert.Equal(t, "", SanitizeForDisplay("   "))
}

func TestFormatRating(t *testing.T) {
	tests := []struct {
		want   string
		rating int
	}{
		{rating: 0, want: "☆☆☆☆☆"},
		{rating: 50, want: "★★★☆☆"},
		{rating: 89, want: "★★★★☆"},
		{rating: 100, want: "★★★★★"},
		{rating: 250, want: "★★★★★"},
		{rating: -5, want: "☆☆☆☆☆"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRating(tt.rating), "rating %d", tt.rating)
	}
}

func TestFormatUnixDate(t *testing.T) {
	assert.Equal(t, "2020-11-25", FormatUnixDate(1606348709, "n/a"))
	assert.Equal(t, "November 11 2020", FormatUnixDate(0, "November 11 2020"))
}

func TestUIState_StatusLine(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		state UIState
	}{
		{name: "idle", state: InitialState(), want: "Type to search"},
		{name: "first load", state: UIState{IsLoading: true, Mode: ModeSearch}, want: "Loading..."},
		{
			name:  "next page",
			state: UIState{IsLoading: true, Mode: ModeSearch, CurrentPage: 2, Recipes: make([]model.Recipe, 30)},
			want:  "30 recipes, loading page 2...",
		},
		{
			name:  "offline",
			state: UIState{Mode: ModeSearch, FromCache: true, Recipes: make([]model.Recipe, 2)},
			want:  "2 cached recipes (offline)",
		},
		{
			name:  "more pages",
			state: UIState{Mode: ModeSearch, HasMorePages: true, CurrentPage: 1, Recipes: make([]model.Recipe, 30)},
			want:  "30 recipes, page 1, more available",
		},
		{
			name:  "last page",
			state: UIState{Mode: ModeSearch, CurrentPage: 3, Recipes: make([]model.Recipe, 65)},
			want:  "65 recipes, page 3",
		},
		{
			name:  "stored",
			state: UIState{Mode: ModeStored, Recipes: make([]model.Recipe, 4)},
			want:  "4 saved recipes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.StatusLine())
		})
	}
}

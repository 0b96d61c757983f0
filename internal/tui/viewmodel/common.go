package viewmodel

import "github.com/Veraticus/recipebook/internal/model"

// ListMode identifies what is feeding the recipe list.
type ListMode int

const (
	// ModeIdle means nothing has been requested yet, or the screen was cleared.
	ModeIdle ListMode = iota
	// ModeSearch means the list holds remote search pages for a query or category.
	ModeSearch
	// ModeStored means the list mirrors the local store.
	ModeStored
)

// UIState is an immutable snapshot of the recipe list screen.
// Recipes is shared between snapshots and must not be modified in place.
type UIState struct {
	SelectedRecipe   *model.Recipe
	Error            string
	SearchQuery      string
	SelectedCategory string
	Recipes          []model.Recipe
	CurrentPage      int
	Mode             ListMode
	IsLoading        bool
	HasMorePages     bool
	FromCache        bool
	DetailsLoading   bool
}

// InitialState returns the state of a fresh or cleared screen.
func InitialState() UIState {
	return UIState{
		Recipes:      []model.Recipe{},
		CurrentPage:  1,
		HasMorePages: true,
	}
}

// HasError returns true if the last action failed.
func (s UIState) HasError() bool {
	return s.Error != ""
}

// IsEmpty returns true if there are no recipes to show.
func (s UIState) IsEmpty() bool {
	return len(s.Recipes) == 0
}

// HasFilter returns true if a query or category drives the list.
func (s UIState) HasFilter() bool {
	return s.SearchQuery != "" || s.SelectedCategory != ""
}

// KeyBinding represents a keyboard shortcut.
type KeyBinding struct {
	Key         string
	Description string
	IsActive    bool
}

// ActiveKeyBindings returns the shortcuts that apply to this state.
func (s UIState) ActiveKeyBindings() []KeyBinding {
	bindings := []KeyBinding{
		{Key: "enter", Description: "details", IsActive: !s.IsEmpty()},
		{Key: "ctrl+n", Description: "next page", IsActive: s.HasMorePages && !s.IsLoading},
		{Key: "ctrl+r", Description: "refresh", IsActive: s.Mode != ModeIdle || s.HasFilter()},
		{Key: "ctrl+o", Description: "saved recipes", IsActive: s.Mode != ModeStored},
		{Key: "esc", Description: "clear", IsActive: true},
	}

	var active []KeyBinding
	for _, kb := range bindings {
		if kb.IsActive {
			active = append(active, kb)
		}
	}
	return active
}

package tui

import "github.com/Veraticus/recipebook/internal/tui/themes"

// DefaultCategories are the quick filters bound to keys 1-9.
var DefaultCategories = []string{
	"Chicken",
	"Beef",
	"Soup",
	"Dessert",
	"Vegetarian",
	"French",
	"Salad",
	"Fish",
	"Pasta",
}

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	Categories []string
	Width      int
	Height     int
	ShowHelp   bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:      themes.Default,
		Categories: DefaultCategories,
		Width:      80,
		Height:     24,
		ShowHelp:   true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithCategories replaces the quick filters. Only the first nine are reachable.
func WithCategories(categories []string) Option {
	return func(c *Config) {
		if len(categories) > 9 {
			categories = categories[:9]
		}
		c.Categories = categories
	}
}

// WithHelp toggles the help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}

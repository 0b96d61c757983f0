package viewmodel

import (
	"fmt"
	"strings"
	"time"
)

// String returns a string representation of the list mode.
func (m ListMode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeSearch:
		return "Search"
	case ModeStored:
		return "Stored"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// TruncateString truncates a string to the specified number of runes with ellipsis.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SanitizeForDisplay removes potentially problematic characters for terminal display.
func SanitizeForDisplay(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// FormatRating renders a 0-100 rating as a 5 star bar.
func FormatRating(rating int) string {
	if rating < 0 {
		rating = 0
	} else if rating > 100 {
		rating = 100
	}
	filled := (rating + 10) / 20
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}

// FormatUnixDate formats a unix timestamp, or returns fallback when it is unset.
func FormatUnixDate(seconds int64, fallback string) string {
	if seconds <= 0 {
		return fallback
	}
	return time.Unix(seconds, 0).UTC().Format("2006-01-02")
}

// StatusLine summarizes the list for the footer.
func (s UIState) StatusLine() string {
	switch {
	case s.IsLoading && s.IsEmpty():
		return "Loading..."
	case s.IsLoading:
		return fmt.Sprintf("%d recipes, loading page %d...", len(s.Recipes), s.CurrentPage)
	case s.Mode == ModeStored:
		return fmt.Sprintf("%d saved recipes", len(s.Recipes))
	case s.FromCache:
		return fmt.Sprintf("%d cached recipes (offline)", len(s.Recipes))
	case s.Mode == ModeSearch && s.HasMorePages:
		return fmt.Sprintf("%d recipes, page %d, more available", len(s.Recipes), s.CurrentPage)
	case s.Mode == ModeSearch:
		return fmt.Sprintf("%d recipes, page %d", len(s.Recipes), s.CurrentPage)
	default:
		return "Type to search"
	}
}

package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/Veraticus/recipebook/internal/model"
)

// Recipe service response types.
type searchResponse struct {
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []recipeDTO `json:"results"`
	Count    int         `json:"count"`
}

type recipeDTO struct {
	CookingInstructions *string  `json:"cooking_instructions"`
	PK                  flexID   `json:"pk"`
	ID                  flexID   `json:"id"`
	Title               string   `json:"title"`
	Publisher           string   `json:"publisher"`
	FeaturedImage       string   `json:"featured_image"`
	SourceURL           string   `json:"source_url"`
	Description         string   `json:"description"`
	DateAdded           string   `json:"date_added"`
	DateUpdated         string   `json:"date_updated"`
	Ingredients         []string `json:"ingredients"`
	LongDateAdded       int64    `json:"long_date_added"`
	LongDateUpdated     int64    `json:"long_date_updated"`
	Rating              int      `json:"rating"`
}

func (d recipeDTO) toModel() (model.Recipe, error) {
	id := strings.TrimSpace(string(d.PK))
	if id == "" {
		id = strings.TrimSpace(string(d.ID))
	}
	if id == "" {
		return model.Recipe{}, fmt.Errorf("%w: recipe without id", common.ErrMalformedPayload)
	}

	ingredients := d.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	return model.Recipe{
		ID:                  id,
		Title:               d.Title,
		Publisher:           d.Publisher,
		FeaturedImage:       d.FeaturedImage,
		Rating:              d.Rating,
		SourceURL:           d.SourceURL,
		Description:         d.Description,
		CookingInstructions: d.CookingInstructions,
		Ingredients:         ingredients,
		DateAdded:           d.DateAdded,
		DateUpdated:         d.DateUpdated,
		LongDateAdded:       d.LongDateAdded,
		LongDateUpdated:     d.LongDateUpdated,
	}, nil
}

// flexID accepts an identifier encoded as either a JSON number or a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("recipe id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

package domain

import (
	"fmt"
	"slices"
)

type Venue struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	PriceRange     string   `json:"price_range"`
	MenuHighlights string   `json:"menu_highlights"`
}

// Location is the administrative area a host picks to seed venues from.
type Location struct {
	Province string `json:"prov"`
	City     string `json:"city"`
	District string `json:"district"`
}

func (l Location) IsZero() bool {
	return l.Province == "" && l.City == "" && l.District == ""
}

var defaultVenues = []Venue{
	{ID: "r1", Name: "Kampoeng Pasir", PriceRange: "Rp 50rb - 100rb", MenuHighlights: "Seafood, Ikan Bakar"},
	{ID: "r2", Name: "Ocean's Resto", PriceRange: "Rp 100rb - 200rb", MenuHighlights: "Kepiting Soka, Cumi"},
	{ID: "r3", Name: "Dandito", PriceRange: "Rp 75rb - 150rb", MenuHighlights: "Kepiting Saus, Udang"},
	{ID: "r4", Name: "Torani", PriceRange: "Rp 30rb - 80rb", MenuHighlights: "Bandeng, Aneka Sambal"},
	{ID: "r5", Name: "Blue Sky Bakpao", PriceRange: "Rp 20rb - 50rb", MenuHighlights: "Mantau, Sapi Lada Hitam"},
}

// DefaultVenues returns a fresh copy of the built-in fallback list.
func DefaultVenues() []Venue {
	return slices.Clone(defaultVenues)
}

// ValidateVenues checks that every venue has a unique non-empty id.
func ValidateVenues(venues []Venue) error {
	seen := make(map[string]struct{}, len(venues))
	for _, v := range venues {
		if v.ID == "" {
			return fmt.Errorf("%w: venue without id", ErrValidation)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("%w: duplicate venue id %q", ErrValidation, v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

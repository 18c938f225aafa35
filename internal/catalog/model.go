// Package catalog is the spa's service menu: durations, prices, categories.
package catalog

import (
	"strings"
	"time"
)

// Service is a bookable spa treatment. Everything except Active is immutable
// after creation; bookings snapshot duration and price at admit time so later
// menu edits never touch history.
type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration"`
	Price           float64   `json:"price"`
	Category        string    `json:"category"`
	Active          bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks service invariants before insertion.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidService
	}
	if s.DurationMinutes <= 0 {
		return ErrInvalidService
	}
	if s.Price < 0 {
		return ErrInvalidService
	}
	return nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Category string
}

// CategoryGroup is a category with its active services, used by the grouped
// listing endpoint.
type CategoryGroup struct {
	Category string    `json:"category"`
	Services []Service `json:"services"`
}

// NormalizeName is the lookup key for service resolution.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

package services

import (
	"strings"

	"earnhub/internal/domain"
)

// All is the selector value that leaves a criterion unconstrained.
const All = "all"

// Criteria drives the Browse filter. Empty selectors behave like "all".
type Criteria struct {
	Query          string
	Category       string
	Recommendation string
}

func (c Criteria) Normalize() Criteria {
	c.Query = strings.TrimSpace(c.Query)
	if c.Category == "" {
		c.Category = All
	}
	if c.Recommendation == "" {
		c.Recommendation = All
	}
	return c
}

// ActiveFilters counts the selectors that narrow the list.
func (c Criteria) ActiveFilters() int {
	c = c.Normalize()
	n := 0
	if c.Category != All {
		n++
	}
	if c.Recommendation != All {
		n++
	}
	return n
}

// Filter returns the subsequence of list matching every criterion.
// Input order is kept and list is never modified.
func Filter(list []domain.Opportunity, c Criteria) []domain.Opportunity {
	c = c.Normalize()
	q := strings.ToLower(c.Query)
	out := make([]domain.Opportunity, 0, len(list))
	for _, o := range list {
		if q != "" &&
			!strings.Contains(strings.ToLower(o.Title), q) &&
			!strings.Contains(strings.ToLower(o.Description), q) {
			continue
		}
		if c.Category != All && string(o.Category) != c.Category {
			continue
		}
		if c.Recommendation != All && string(o.Recommendation) != c.Recommendation {
			continue
		}
		out = append(out, o)
	}
	return out
}

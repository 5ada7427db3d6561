// Package engine filters and sorts financial records in memory.
//
// Both operations are pure: they never modify their input and always return
// a new slice, even when nothing was removed or reordered.
package engine

import (
	"cmp"
	"slices"

	"github.com/bighogz/fintable/internal/models"
)

// Matches reports whether r satisfies every bound set in c.
// Dates compare as strings, so bounds and record dates must share a
// sortable form such as YYYY or YYYY-MM-DD.
func Matches(r models.Record, c models.FilterCriteria) bool {
	if c.StartDate != "" && r.Date < c.StartDate {
		return false
	}
	if c.EndDate != "" && r.Date > c.EndDate {
		return false
	}
	if c.MinRevenue != nil && r.Revenue < *c.MinRevenue {
		return false
	}
	if c.MaxRevenue != nil && r.Revenue > *c.MaxRevenue {
		return false
	}
	if c.MinNetIncome != nil && r.NetIncome < *c.MinNetIncome {
		return false
	}
	if c.MaxNetIncome != nil && r.NetIncome > *c.MaxNetIncome {
		return false
	}
	return true
}

// ApplyFilters returns the records matching c, in input order.
func ApplyFilters(records []models.Record, c models.FilterCriteria) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// Compare orders a and b by key, ascending. It returns 0 for an empty key.
func Compare(a, b models.Record, key models.Field) int {
	switch key {
	case "":
		return 0
	case models.FieldDate:
		return cmp.Compare(a.Date, b.Date)
	}
	return cmp.Compare(a.Number(key), b.Number(key))
}

// ApplySort returns records ordered by key. The sort is stable: records with
// equal keys keep their input order in both directions. An empty key returns
// an unsorted copy.
func ApplySort(records []models.Record, key models.Field, dir models.Direction) []models.Record {
	out := slices.Clone(records)
	if out == nil {
		out = []models.Record{}
	}
	if key == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b models.Record) int {
		if dir == models.Descending {
			return Compare(b, a, key)
		}
		return Compare(a, b, key)
	})
	return out
}

// Sort applies s to records.
func Sort(records []models.Record, s models.SortSpec) []models.Record {
	return ApplySort(records, s.Key, s.Direction)
}

// Package view derives what is displayed from the full record set and the
// user's filter and sort choices.
//
// Every input produces a new State, and the displayed rows are always
// recomputed from the full set: filters never stack on a previously
// filtered result.
package view

import (
	"math"
	"strconv"
	"strings"

	"github.com/bighogz/fintable/internal/engine"
	"github.com/bighogz/fintable/internal/models"
)

// State is the user's current choice of filters and sort.
type State struct {
	Criteria models.FilterCriteria `json:"criteria"`
	Sort     models.SortSpec       `json:"sort"`
}

// Derive returns the displayed set: full filtered by criteria, then sorted.
func Derive(full []models.Record, st State) []models.Record {
	return engine.Sort(engine.ApplyFilters(full, st.Criteria), st.Sort)
}

// WithFilter returns st with the named filter replaced by the text input raw.
// Unknown names leave st unchanged.
func (st State) WithFilter(name, raw string) State {
	c := st.Criteria
	raw = strings.TrimSpace(raw)
	switch name {
	case models.FilterStartDate:
		c.StartDate = raw
	case models.FilterEndDate:
		c.EndDate = raw
	case models.FilterMinRevenue:
		c.MinRevenue = parseBound(raw)
	case models.FilterMaxRevenue:
		c.MaxRevenue = parseBound(raw)
	case models.FilterMinNetIncome:
		c.MinNetIncome = parseBound(raw)
	case models.FilterMaxNetIncome:
		c.MaxNetIncome = parseBound(raw)
	default:
		return st
	}
	st.Criteria = c
	return st
}

// ToggleSort returns st after a click on the key column header.
func (st State) ToggleSort(key models.Field) State {
	st.Sort = st.Sort.Toggle(key)
	return st
}

// ParseCriteria builds criteria from raw form inputs keyed by filter name.
// Numeric inputs that do not parse leave their bound unset.
func ParseCriteria(inputs map[string]string) models.FilterCriteria {
	var st State
	for _, name := range models.FilterNames {
		if v, ok := inputs[name]; ok {
			st = st.WithFilter(name, v)
		}
	}
	return st.Criteria
}

// Inputs is the inverse of ParseCriteria, used to refill a form.
func Inputs(c models.FilterCriteria) map[string]string {
	return map[string]string{
		models.FilterStartDate:    c.StartDate,
		models.FilterEndDate:      c.EndDate,
		models.FilterMinRevenue:   formatBound(c.MinRevenue),
		models.FilterMaxRevenue:   formatBound(c.MaxRevenue),
		models.FilterMinNetIncome: formatBound(c.MinNetIncome),
		models.FilterMaxNetIncome: formatBound(c.MaxNetIncome),
	}
}

func parseBound(raw string) *float64 {
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

package models

import (
	"errors"
	"fmt"
	"strings"
)

// Record is one reporting period of financial data.
type Record struct {
	Date            string  `json:"date"`
	Revenue         float64 `json:"revenue"`
	NetIncome       float64 `json:"netIncome"`
	GrossProfit     float64 `json:"grossProfit"`
	EPS             float64 `json:"eps"`
	OperatingIncome float64 `json:"operatingIncome"`
}

// Field names a sortable column. The zero value means "not sorted".
type Field string

const (
	FieldDate            Field = "date"
	FieldRevenue         Field = "revenue"
	FieldNetIncome       Field = "netIncome"
	FieldGrossProfit     Field = "grossProfit"
	FieldEPS             Field = "eps"
	FieldOperatingIncome Field = "operatingIncome"
)

// Fields lists the columns in display order.
var Fields = []Field{
	FieldDate,
	FieldRevenue,
	FieldNetIncome,
	FieldGrossProfit,
	FieldEPS,
	FieldOperatingIncome,
}

var ErrUnknownField = errors.New("unknown field")

// ParseField accepts the JSON field name, case-insensitively. Empty input yields the zero Field.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, f := range Fields {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Label is the column header shown to users.
func (f Field) Label() string {
	switch f {
	case FieldDate:
		return "Date"
	case FieldRevenue:
		return "Revenue"
	case FieldNetIncome:
		return "Net Income"
	case FieldGrossProfit:
		return "Gross Profit"
	case FieldEPS:
		return "EPS"
	case FieldOperatingIncome:
		return "Operating Income"
	}
	return string(f)
}

// IsMoney reports whether the column holds a currency amount.
func (f Field) IsMoney() bool {
	switch f {
	case FieldRevenue, FieldNetIncome, FieldGrossProfit, FieldOperatingIncome:
		return true
	}
	return false
}

// Number returns the numeric value of a non-date column.
func (r Record) Number(f Field) float64 {
	switch f {
	case FieldRevenue:
		return r.Revenue
	case FieldNetIncome:
		return r.NetIncome
	case FieldGrossProfit:
		return r.GrossProfit
	case FieldEPS:
		return r.EPS
	case FieldOperatingIncome:
		return r.OperatingIncome
	}
	return 0
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

var ErrUnknownDirection = errors.New("unknown sort direction")

// ParseDirection accepts asc/ascending and desc/descending. Empty input is ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// SortSpec is the single active sort key and its direction.
type SortSpec struct {
	Key       Field     `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Toggle returns the sort after a header click on key: the same key flips
// direction, a different key starts ascending.
func (s SortSpec) Toggle(key Field) SortSpec {
	if s.Key == key && s.Direction != Descending {
		return SortSpec{Key: key, Direction: Descending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// FilterCriteria holds inclusive range bounds. Empty strings and nil pointers are unset.
type FilterCriteria struct {
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	MinRevenue   *float64 `json:"minRevenue,omitempty"`
	MaxRevenue   *float64 `json:"maxRevenue,omitempty"`
	MinNetIncome *float64 `json:"minNetIncome,omitempty"`
	MaxNetIncome *float64 `json:"maxNetIncome,omitempty"`
}

// IsEmpty reports whether no bound is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.StartDate == "" && c.EndDate == "" &&
		c.MinRevenue == nil && c.MaxRevenue == nil &&
		c.MinNetIncome == nil && c.MaxNetIncome == nil
}

// Filter input names, matching the query parameters sent to the backend.
const (
	FilterStartDate    = "startDate"
	FilterEndDate      = "endDate"
	FilterMinRevenue   = "minRevenue"
	FilterMaxRevenue   = "maxRevenue"
	FilterMinNetIncome = "minNetIncome"
	FilterMaxNetIncome = "maxNetIncome"
)

// FilterNames lists the filter inputs in form order.
var FilterNames = []string{
	FilterStartDate,
	FilterEndDate,
	FilterMinRevenue,
	FilterMaxRevenue,
	FilterMinNetIncome,
	FilterMaxNetIncome,
}

// Float returns a pointer to v, for building criteria literals.
func Float(v float64) *float64 { return &v }

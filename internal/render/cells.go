// Package render turns a displayed record set into tables: HTML for the web
// page, Markdown for terminals, CSV for export.
package render

import (
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bighogz/fintable/internal/models"
)

// Currency formats v as US dollars, e.g. $394,328,000,000.00.
func Currency(v float64) string {
	cur := money.GetCurrency(money.USD)
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), money.USD).Display()
}

// Cell is the display text of one field of r. Money columns are formatted as
// currency, EPS and dates are shown as they are.
func Cell(r models.Record, f models.Field) string {
	switch {
	case f == models.FieldDate:
		return r.Date
	case f.IsMoney():
		return Currency(r.Number(f))
	}
	return strconv.FormatFloat(r.Number(f), 'f', -1, 64)
}

// Raw is the machine-readable text of one field of r.
func Raw(r models.Record, f models.Field) string {
	if f == models.FieldDate {
		return r.Date
	}
	return strconv.FormatFloat(r.Number(f), 'f', -1, 64)
}

// Indicator is the sort arrow shown next to a column header.
func Indicator(s models.SortSpec, f models.Field) string {
	if s.Key != f {
		return "▲▼"
	}
	if s.Direction == models.Descending {
		return "▼"
	}
	return "▲"
}

// Header lists the column labels in display order.
func Header() []string {
	out := make([]string, len(models.Fields))
	for i, f := range models.Fields {
		out[i] = f.Label()
	}
	return out
}

// Rows formats every record with Cell.
func Rows(records []models.Record) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(models.Fields))
		for j, f := range models.Fields {
			row[j] = Cell(r, f)
		}
		out[i] = row
	}
	return out
}

package view

import (
	"net/url"

	"github.com/gorilla/schema"

	"github.com/bighogz/fintable/internal/models"
)

// Form is the query-string shape of a State, shared by the HTML page and the
// JSON API.
type Form struct {
	StartDate    string `schema:"startDate,omitempty"`
	EndDate      string `schema:"endDate,omitempty"`
	MinRevenue   string `schema:"minRevenue,omitempty"`
	MaxRevenue   string `schema:"maxRevenue,omitempty"`
	MinNetIncome string `schema:"minNetIncome,omitempty"`
	MaxNetIncome string `schema:"maxNetIncome,omitempty"`
	SortBy       string `schema:"sortBy,omitempty"`
	Direction    string `schema:"direction,omitempty"`
}

var (
	decoder = newDecoder()
	encoder = schema.NewEncoder()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// DecodeState reads a State from query parameters. Filter values go through
// the same lenient parsing as form input; an unknown sortBy or direction is an
// error.
func DecodeState(q url.Values) (State, error) {
	var f Form
	if err := decoder.Decode(&f, q); err != nil {
		return State{}, err
	}
	return f.State()
}

func (f Form) State() (State, error) {
	st := State{Criteria: ParseCriteria(map[string]string{
		models.FilterStartDate:    f.StartDate,
		models.FilterEndDate:      f.EndDate,
		models.FilterMinRevenue:   f.MinRevenue,
		models.FilterMaxRevenue:   f.MaxRevenue,
		models.FilterMinNetIncome: f.MinNetIncome,
		models.FilterMaxNetIncome: f.MaxNetIncome,
	})}
	key, err := models.ParseField(f.SortBy)
	if err != nil {
		return State{}, err
	}
	if key == "" {
		return st, nil
	}
	dir, err := models.ParseDirection(f.Direction)
	if err != nil {
		return State{}, err
	}
	st.Sort = models.SortSpec{Key: key, Direction: dir}
	return st, nil
}

// Query encodes st as query parameters, omitting unset values.
func Query(st State) url.Values {
	in := Inputs(st.Criteria)
	f := Form{
		StartDate:    in[models.FilterStartDate],
		EndDate:      in[models.FilterEndDate],
		MinRevenue:   in[models.FilterMinRevenue],
		MaxRevenue:   in[models.FilterMaxRevenue],
		MinNetIncome: in[models.FilterMinNetIncome],
		MaxNetIncome: in[models.FilterMaxNetIncome],
	}
	if st.Sort.Key != "" {
		f.SortBy = string(st.Sort.Key)
		f.Direction = string(st.Sort.Direction)
	}
	q := url.Values{}
	if err := encoder.Encode(f, q); err != nil {
		// Form only has string fields, which always encode.
		panic(err)
	}
	return q
}

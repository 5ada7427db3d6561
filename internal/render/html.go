package render

import (
	"embed"
	"html/template"
	"io"
	"io/fs"

	"github.com/bighogz/fintable/internal/models"
	"github.com/bighogz/fintable/internal/view"
)

//go:embed assets
var assets embed.FS

var pageTmpl = template.Must(template.ParseFS(assets, "assets/table.html"))

// Static holds the files served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

type filterInput struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Value       string
}

type headerLink struct {
	Label     string
	Indicator string
	Href      string
}

type htmlPage struct {
	Page      view.Page
	Filters   []filterInput
	Headers   []headerLink
	Rows      [][]string
	SortBy    string
	Direction string
}

var filterInputs = []filterInput{
	{Name: models.FilterStartDate, Label: "Start Year", Type: "text", Placeholder: "e.g., 2020"},
	{Name: models.FilterEndDate, Label: "End Year", Type: "text", Placeholder: "e.g., 2024"},
	{Name: models.FilterMinRevenue, Label: "Min Revenue", Type: "number", Placeholder: "Min"},
	{Name: models.FilterMaxRevenue, Label: "Max Revenue", Type: "number", Placeholder: "Max"},
	{Name: models.FilterMinNetIncome, Label: "Min Net Income", Type: "number", Placeholder: "Min"},
	{Name: models.FilterMaxNetIncome, Label: "Max Net Income", Type: "number", Placeholder: "Max"},
}

// SortHref is the link behind a column header: the current filters with the
// sort toggled on f.
func SortHref(st view.State, f models.Field) string {
	return "/?" + view.Query(st.ToggleSort(f)).Encode()
}

// HTML writes the full page for p.
func HTML(w io.Writer, p view.Page) error {
	data := htmlPage{
		Page: p,
		Rows: Rows(p.Rows),
	}
	inputs := view.Inputs(p.State.Criteria)
	for _, in := range filterInputs {
		in.Value = inputs[in.Name]
		data.Filters = append(data.Filters, in)
	}
	for _, f := range models.Fields {
		data.Headers = append(data.Headers, headerLink{
			Label:     f.Label(),
			Indicator: Indicator(p.State.Sort, f),
			Href:      SortHref(p.State, f),
		})
	}
	if p.State.Sort.Key != "" {
		data.SortBy = string(p.State.Sort.Key)
		data.Direction = string(p.State.Sort.Direction)
	}
	return pageTmpl.Execute(w, data)
}

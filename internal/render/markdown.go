package render

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	"github.com/bighogz/fintable/internal/models"
	"github.com/bighogz/fintable/internal/view"
)

// Markdown renders the page as a Markdown document with one table.
func Markdown(p view.Page) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Financial Data")
	if p.Failed() {
		doc.PlainText(md.Bold("Load failed: ") + p.Error)
	}
	doc.PlainText(fmt.Sprintf("Showing %d of %d records.", len(p.Rows), p.Total))

	header := Header()
	for i, f := range models.Fields {
		if f == p.State.Sort.Key {
			header[i] += " " + Indicator(p.State.Sort, f)
		}
	}
	doc.Table(md.TableSet{
		Header: header,
		Rows:   Rows(p.Rows),
	})
	return doc.String()
}

// Terminal renders Markdown text for display in a terminal.
func Terminal(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

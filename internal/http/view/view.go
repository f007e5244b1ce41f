// Package view holds the HTML templates and the page models they render.
package view

import (
	"embed"
	"html/template"
	"net/url"

	"riskreward.app/web/internal/grid"
	"riskreward.app/web/internal/model"
	"riskreward.app/web/internal/service"
)

const (
	BoardsTemplate = "boards.html"
	BoardTemplate  = "board.html"
)

//go:embed templates/*.html
var templates embed.FS

// Load parses the embedded templates for gin's SetHTMLTemplate.
func Load() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"pathEscape": url.PathEscape,
		"cardView":   newCardView,
	}).ParseFS(templates, "templates/*.html")
}

type BoardsPage struct {
	Boards []model.Board
}

// CellView is one grid cell with the cards classified into it.
type CellView struct {
	Cell    grid.Cell
	Entries []grid.Entry
}

// CardView is what the card partial needs to render one card and its
// classify form.
type CardView struct {
	BoardID string
	Entry   grid.Entry
	Levels  []grid.Level
}

func newCardView(boardID string, entry grid.Entry, levels []grid.Level) CardView {
	return CardView{BoardID: boardID, Entry: entry, Levels: levels}
}

type BoardPage struct {
	Board        model.Board
	Cells        [len(grid.Layout)]CellView
	Unclassified []grid.Entry
	Labels       string
	Levels       []grid.Level
}

func NewBoardPage(v *service.BoardView) BoardPage {
	page := BoardPage{
		Board:        v.Board,
		Unclassified: v.Buckets.Unclassified(),
		Labels:       v.Filter.String(),
		Levels:       grid.Levels(),
	}
	for i, cell := range grid.Layout {
		page.Cells[i] = CellView{Cell: cell, Entries: v.Buckets[i+1]}
	}
	return page
}

// Rows groups the cells by impact, high impact first.
func (p BoardPage) Rows() [][]CellView {
	width := len(grid.Levels())
	rows := make([][]CellView, 0, len(p.Cells)/width)
	for i := 0; i < len(p.Cells); i += width {
		rows = append(rows, p.Cells[i:i+width])
	}
	return rows
}

// Package table describes list pages: columns, rows and the search/ordering/pagination applied to them.
package table

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/confadmin/core"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type (
	Column struct {
		Key        string
		Label      string
		Sortable   bool
		Searchable bool
	}

	// Cell is a rendered value plus the raw value used for sorting.
	Cell struct {
		Text  string
		Value interface{}
		Link  string
		Image string
	}

	Action struct {
		Label   string
		URL     string
		Method  string // GET | POST
		Confirm string
		Danger  bool
	}

	Row struct {
		ID      string
		Cells   map[string]Cell
		Actions []Action
	}

	Table struct {
		Title   string
		Columns []Column
		Rows    []Row
	}

	// Params are bound from ?search=&ordering=&page=&per_page=
	Params struct {
		Search   string `query:"search"`
		Ordering string `query:"ordering"`
		Page     int    `query:"page"`
		PerPage  int    `query:"per_page"`

		// Filters are page specific query params kept across links.
		Filters url.Values `query:"-"`
	}

	Page struct {
		Table
		Params

		Total    int
		NumPages int
		HasPrev  bool
		HasNext  bool
	}
)

// ParamsFromQuery reads Params from url query values; invalid numbers are ignored.
func ParamsFromQuery(q url.Values) Params {
	p := Params{Search: q.Get("search"), Ordering: q.Get("ordering")}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	p.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	return p
}

func (p *Params) Clean() {
	p.Search = core.CleanString(p.Search, true)
	p.Ordering = strings.TrimSpace(p.Ordering)
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	} else if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}
}

// Query encodes p, with page replaced by `page`.
func (p Params) Query(page int) string {
	v := make(url.Values, len(p.Filters)+4)
	for k, vals := range p.Filters {
		for _, val := range vals {
			if val != "" {
				v.Add(k, val)
			}
		}
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	if p.PerPage != DefaultPerPage && p.PerPage != 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// SortQuery returns the query ordering the page by column `key`, toggling direction if already ordered by it.
func (p Params) SortQuery(key string) string {
	next := p
	if p.Ordering == key {
		next.Ordering = "-" + key
	} else {
		next.Ordering = key
	}
	return next.Query(1)
}

func (t Table) column(key string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// Filter returns the rows matching params' search (case-insensitive, over searchable columns),
// stable-sorted by params' ordering. Unknown or unsortable ordering fields are ignored.
func (t Table) Filter(params Params) []Row {
	params.Clean()

	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if t.matches(row, params.Search) {
			rows = append(rows, row)
		}
	}

	var orderings []core.Ordering
	for _, ord := range core.ParseOrdering(params.Ordering) {
		if col, ok := t.column(ord.Field); ok && col.Sortable {
			orderings = append(orderings, ord)
		}
	}
	if len(orderings) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, ord := range orderings {
				c := compare(rows[i].Cells[ord.Field], rows[j].Cells[ord.Field])
				if c == 0 {
					continue
				}
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
			return false
		})
	}
	return rows
}

// Apply filters, orders and paginates t. The page number is clamped to [1, NumPages].
func (t Table) Apply(params Params) Page {
	params.Clean()
	rows := t.Filter(params)

	total := len(rows)
	numPages := (total + params.PerPage - 1) / params.PerPage
	if numPages == 0 {
		numPages = 1
	}
	if params.Page > numPages {
		params.Page = numPages
	}

	start := (params.Page - 1) * params.PerPage
	end := start + params.PerPage
	if end > total {
		end = total
	}

	pg := Page{
		Table:    Table{Title: t.Title, Columns: t.Columns, Rows: rows[start:end]},
		Params:   params,
		Total:    total,
		NumPages: numPages,
		HasPrev:  params.Page > 1,
		HasNext:  params.Page < numPages,
	}
	return pg
}

func (pg Page) PrevQuery() string { return pg.Params.Query(pg.Page - 1) }
func (pg Page) NextQuery() string { return pg.Params.Query(pg.Page + 1) }

// Range returns the 1-based indexes of the first and last rows shown.
func (pg Page) Range() (int, int) {
	if pg.Total == 0 {
		return 0, 0
	}
	first := (pg.Page-1)*pg.PerPage + 1
	return first, first + len(pg.Rows) - 1
}

// From is the 1-based position of the first row of the page.
func (pg Page) From() int {
	first, _ := pg.Range()
	return first
}

// To is the 1-based position of the last row of the page.
func (pg Page) To() int {
	_, last := pg.Range()
	return last
}

func (t Table) matches(row Row, search string) bool {
	if search == "" {
		return true
	}
	for _, col := range t.Columns {
		if !col.Searchable {
			continue
		}
		if strings.Contains(strings.ToLower(row.Cells[col.Key].Text), search) {
			return true
		}
	}
	return false
}

// compare orders cells by raw value when both are of the same known type, by text otherwise.
func compare(a, b Cell) int {
	switch av := a.Value.(type) {
	case int:
		if bv, ok := b.Value.(int); ok {
			return cmpOrdered(av, bv)
		}
	case float64:
		if bv, ok := b.Value.(float64); ok {
			return cmpOrdered(av, bv)
		}
	case bool:
		if bv, ok := b.Value.(bool); ok {
			return cmpOrdered(boolInt(av), boolInt(bv))
		}
	case time.Time:
		if bv, ok := b.Value.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Text is a text cell.
func Text(s string) Cell { return Cell{Text: s, Value: s} }

// Int is a numeric cell.
func Int(n int) Cell { return Cell{Text: strconv.Itoa(n), Value: n} }

// Money is a price cell.
func Money(amount float64, currency string) Cell {
	return Cell{Text: strings.TrimSpace(fmt.Sprintf("%.2f %s", amount, currency)), Value: amount}
}

// Bool is a yes/no cell.
func Bool(b bool) Cell {
	text := "No"
	if b {
		text = "Yes"
	}
	return Cell{Text: text, Value: b}
}

// Date is a date cell.
func Date(t time.Time) Cell { return Cell{Text: core.FormatDate(t), Value: t} }

// DateTime is a date & time cell.
func DateTime(t time.Time) Cell { return Cell{Text: core.FormatDateTime(t), Value: t} }

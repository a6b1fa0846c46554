// internal/portfolio/project.go
package portfolio

import "github.com/rovshanmuradov/tokenfolio/internal/domain"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// Page is one slice of the watchlist rows.
type Page struct {
	Rows       []domain.Row
	Page       int
	TotalPages int
	TotalRows  int
}

// Rows joins every token with its snapshot in watchlist order. A missing
// snapshot yields zero price, zero change and an empty sparkline.
func Rows(tokens []domain.Token, snapshots map[string]domain.PriceSnapshot) []domain.Row {
	rows := make([]domain.Row, 0, len(tokens))
	for _, t := range tokens {
		snap, ok := snapshots[t.ID]
		spark := []float64{}
		if ok && snap.Sparkline7d != nil {
			spark = snap.Sparkline7d
		}
		rows = append(rows, domain.Row{
			Token:        t,
			CurrentPrice: snap.CurrentPrice,
			Change24hPct: snap.Change24hPct,
			Value:        snap.CurrentPrice * t.Holdings,
			Sparkline7d:  spark,
			IsPositive:   snap.Change24hPct >= 0,
		})
	}
	return rows
}

// TotalPages returns ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Project returns the rows of page (1-based). Out-of-range pages are
// clamped into [1, TotalPages].
func Project(tokens []domain.Token, snapshots map[string]domain.PriceSnapshot, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(tokens), pageSize)
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(tokens) {
		end = len(tokens)
	}
	if start > end {
		start = end
	}

	return Page{
		Rows:       Rows(tokens[start:end], snapshots),
		Page:       page,
		TotalPages: total,
		TotalRows:  len(tokens),
	}
}

// Pager remembers the current page and resets it to 1 whenever the number
// of tokens changes.
type Pager struct {
	page      int
	pageSize  int
	lastCount int
}

// NewPager creates a pager on page 1.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{page: 1, pageSize: pageSize, lastCount: -1}
}

// Project projects tokens onto the current page.
func (p *Pager) Project(tokens []domain.Token, snapshots map[string]domain.PriceSnapshot) Page {
	p.observe(len(tokens))
	pg := Project(tokens, snapshots, p.page, p.pageSize)
	p.page = pg.Page
	return pg
}

// Next moves forward one page if there is one.
func (p *Pager) Next(count int) {
	p.observe(count)
	if p.page < TotalPages(count, p.pageSize) {
		p.page++
	}
}

// Prev moves back one page if there is one.
func (p *Pager) Prev(count int) {
	p.observe(count)
	if p.page > 1 {
		p.page--
	}
}

// Page returns the current page number.
func (p *Pager) Page() int {
	return p.page
}

// PageSize returns the rows per page.
func (p *Pager) PageSize() int {
	return p.pageSize
}

func (p *Pager) observe(count int) {
	if count != p.lastCount {
		p.lastCount = count
		p.page = 1
	}
}

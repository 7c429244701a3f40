package app

// PageItem is one entry of a pagination bar. Gap items render as an ellipsis.
type PageItem struct {
	Number int
	Active bool
	Gap    bool
}

type Pagination struct {
	Current    int
	TotalPages int
	Prev, Next int // 0 when there is no such page
	Items      []PageItem
}

// windowRadius is how many neighbours of the current page are always shown.
const windowRadius = 2

// PageWindow computes the pagination bar for total records at perPage per
// page. The first and last pages are always listed, as are the pages within
// two of the current one; everything else collapses into a single gap.
func PageWindow(total, page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = 1
	}
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		return Pagination{}
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	p := Pagination{Current: page, TotalPages: pages}
	if page > 1 {
		p.Prev = page - 1
	}
	if page < pages {
		p.Next = page + 1
	}

	last := 0
	for n := 1; n <= pages; n++ {
		if n != 1 && n != pages && (n < page-windowRadius || n > page+windowRadius) {
			continue
		}
		if last != 0 && n-last > 1 {
			p.Items = append(p.Items, PageItem{Gap: true})
		}
		p.Items = append(p.Items, PageItem{Number: n, Active: n == page})
		last = n
	}
	return p
}

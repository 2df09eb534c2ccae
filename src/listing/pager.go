package listing

import (
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/utils"
)

// Pager is everything a list needs to draw its pagination bar and row
// numbers.
type Pager struct {
	Current int
	Last    int
	Total   int
	PerPage int

	Pages   []int
	HasPrev bool
	HasNext bool
	Prev    int
	Next    int
}

func NewPager[T any](page models.Page[T], perPage int) Pager {
	last := utils.IntMax(page.LastPage, 1)
	current := utils.IntClamp(1, page.CurrentPage, last)

	pages := make([]int, last)
	for i := range pages {
		pages[i] = i + 1
	}

	return Pager{
		Current: current,
		Last:    last,
		Total:   page.Total,
		PerPage: perPage,
		Pages:   pages,
		HasPrev: current > 1,
		HasNext: current < last,
		Prev:    utils.IntMax(current-1, 1),
		Next:    utils.IntMin(current+1, last),
	}
}

// RowNumber is the 1-based position of row i across all pages.
func (p Pager) RowNumber(i int) int {
	return (p.Current-1)*p.PerPage + i + 1
}

package models

// Page is one page of a paginated backend listing (Laravel paginator shape).
type Page[T any] struct {
	Items       []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	Total       int `json:"total"`
}

func (p *Page[T]) Empty() bool {
	return len(p.Items) == 0
}

// Identified is implemented by every listed record so lists can drop an item
// locally after a delete.
type Identified interface {
	ItemID() int
}

package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// Page sizes offered in the list toolbars. ShowAll is large enough that the
// backend returns everything on one page.
const ShowAll = 9999

var PerPageOptions = []int{10, 20, 50, 100, ShowAll}

const DefaultPerPage = 10

type Filter struct {
	Keyword string
	TypeID  int // zero means every type
	Page    int
	PerPage int
}

func DefaultFilter() Filter {
	return Filter{Page: 1, PerPage: DefaultPerPage}
}

// Params are the query parameters the backend list endpoints take. type_id
// and q are left out entirely when unset.
func (f Filter) Params() url.Values {
	params := url.Values{
		"page":     {strconv.Itoa(f.Page)},
		"per_page": {strconv.Itoa(f.PerPage)},
	}
	if f.TypeID > 0 {
		params.Set("type_id", strconv.Itoa(f.TypeID))
	}
	if f.Keyword != "" {
		params.Set("q", f.Keyword)
	}
	return params
}

// Any change other than the page number starts over at page 1, so a
// narrower result never leaves us past its last page.

func (f Filter) WithKeyword(keyword string) Filter {
	f.Keyword = keyword
	f.Page = 1
	return f
}

func (f Filter) WithType(typeID int) Filter {
	f.TypeID = typeID
	f.Page = 1
	return f
}

func (f Filter) WithPerPage(perPage int) Filter {
	f.PerPage = perPage
	f.Page = 1
	return f
}

func (f Filter) WithPage(page int) Filter {
	if page < 1 {
		page = 1
	}
	f.Page = page
	return f
}

func ValidPerPage(perPage int) bool {
	for _, option := range PerPageOptions {
		if option == perPage {
			return true
		}
	}
	return false
}

// FilterFromQuery applies the parameters present in query on top of prev.
// Absent parameters keep their previous value so filters survive navigating
// away and back.
func FilterFromQuery(prev Filter, query url.Values) Filter {
	f := prev

	if _, ok := query["q"]; ok {
		if keyword := strings.TrimSpace(query.Get("q")); keyword != f.Keyword {
			f = f.WithKeyword(keyword)
		}
	}
	if _, ok := query["type_id"]; ok {
		typeID, err := strconv.Atoi(query.Get("type_id"))
		if err != nil || typeID < 0 {
			typeID = 0
		}
		if typeID != f.TypeID {
			f = f.WithType(typeID)
		}
	}
	if _, ok := query["per_page"]; ok {
		perPage, err := strconv.Atoi(query.Get("per_page"))
		if err != nil || !ValidPerPage(perPage) {
			perPage = DefaultPerPage
		}
		if perPage != f.PerPage {
			f = f.WithPerPage(perPage)
		}
	}

	// A page number only counts when nothing else changed.
	if f == prev {
		if pageParam := query.Get("page"); pageParam != "" {
			if page, err := strconv.Atoi(pageParam); err == nil {
				f = f.WithPage(page)
			}
		}
	}

	if f.PerPage == 0 {
		f.PerPage = DefaultPerPage
	}
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// Query is the inverse of FilterFromQuery, used to build pagination links.
func (f Filter) Query() url.Values {
	query := url.Values{
		"page":     {strconv.Itoa(f.Page)},
		"per_page": {strconv.Itoa(f.PerPage)},
		"q":        {f.Keyword},
	}
	if f.TypeID > 0 {
		query.Set("type_id", strconv.Itoa(f.TypeID))
	} else {
		query.Set("type_id", "")
	}
	return query
}

package session

import (
	"kohchanghospital.go.th/admin/src/listing"
	"kohchanghospital.go.th/admin/src/models"
)

// View returns the session's list view called name, creating it with fetch
// on first use. Filters therefore persist while the user moves between
// pages. All callers for one name must use the same T.
func View[T models.Identified](s *Session, name string, fetch listing.Fetcher[T]) *listing.View[T] {
	return s.view(name, func() any {
		return listing.NewView(fetch, listing.DefaultFilter())
	}).(*listing.View[T])
}

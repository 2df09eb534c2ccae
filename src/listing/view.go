package listing

import (
	"context"
	"sync"

	"kohchanghospital.go.th/admin/src/models"
)

type Fetcher[T any] func(ctx context.Context, f Filter) (models.Page[T], error)

type State[T any] struct {
	Filter  Filter
	Page    models.Page[T]
	Loading bool
	// Loaded is false until the first fetch has finished.
	Loaded bool
	Err    error
	Seq    uint64
}

func (s *State[T]) Pager() Pager {
	return NewPager(s.Page, s.Filter.PerPage)
}

/*
A View is one paginated, filtered list whose contents come from the backend.
Every Load replaces the page wholesale.

Loads may overlap (a user clicking through pages faster than the backend
answers). Each Load takes the next sequence number and cancels the fetch
before it; a result is applied only if its sequence number is still the
latest issued, so an old response can never overwrite a newer one.
*/
type View[T models.Identified] struct {
	fetch Fetcher[T]

	mu      sync.Mutex
	filter  Filter
	page    models.Page[T]
	loading bool
	loaded  bool
	err     error
	seq     uint64
	cancel  context.CancelFunc

	// Set by Remove. The next render may use the page as is.
	current bool
}

func NewView[T models.Identified](fetch Fetcher[T], initial Filter) *View[T] {
	return &View[T]{
		fetch:  fetch,
		filter: initial,
	}
}

// Load fetches the page for f and returns the resulting state. If a newer
// Load started in the meantime, the result is dropped and the returned state
// reflects the newer load instead.
func (v *View[T]) Load(ctx context.Context, f Filter) State[T] {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	if v.cancel != nil {
		v.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.filter = f
	v.loading = true
	v.mu.Unlock()

	page, err := v.fetch(fetchCtx, f)

	v.mu.Lock()
	defer v.mu.Unlock()
	cancel()
	if seq != v.seq {
		return v.stateLocked()
	}

	v.cancel = nil
	v.current = false
	v.loading = false
	v.loaded = true
	v.err = err
	// A failed fetch still replaces the page; rows from the previous filter
	// must not show under the new one.
	v.page = page
	if err != nil {
		v.page = models.Page[T]{}
	}
	return v.stateLocked()
}

// Reload fetches again with the current filter.
func (v *View[T]) Reload(ctx context.Context) State[T] {
	return v.Load(ctx, v.Filter())
}

func (v *View[T]) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *View[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

// Find looks for an item on the currently loaded page.
func (v *View[T]) Find(id int) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, item := range v.page.Items {
		if item.ItemID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Remove drops an item from the loaded page without asking the backend,
// after the backend has confirmed a delete.
func (v *View[T]) Remove(id int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, item := range v.page.Items {
		if item.ItemID() == id {
			items := make([]T, 0, len(v.page.Items)-1)
			items = append(items, v.page.Items[:i]...)
			v.page.Items = append(items, v.page.Items[i+1:]...)
			if v.page.Total > 0 {
				v.page.Total--
			}
			v.current = true
			return true
		}
	}
	return false
}

// Current hands back the locally edited page once, after a Remove, as long as
// the filter has not changed. Otherwise the caller should Load.
func (v *View[T]) Current(f Filter) (State[T], bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.current || !v.loaded || v.loading || v.filter != f {
		return State[T]{}, false
	}
	v.current = false
	return v.stateLocked(), true
}

func (v *View[T]) stateLocked() State[T] {
	page := v.page
	page.Items = append([]T(nil), v.page.Items...)
	return State[T]{
		Filter:  v.filter,
		Page:    page,
		Loading: v.loading,
		Loaded:  v.loaded,
		Err:     v.err,
		Seq:     v.seq,
	}
}

package listing

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"kohchanghospital.go.th/admin/src/models"
)

func TestParams(t *testing.T) {
	items := []struct {
		name   string
		filter Filter
		params url.Values
	}{
		{"defaults", DefaultFilter(), url.Values{"page": {"1"}, "per_page": {"10"}}},
		{"type", Filter{TypeID: 3, Page: 2, PerPage: 20}, url.Values{"page": {"2"}, "per_page": {"20"}, "type_id": {"3"}}},
		{"keyword", Filter{Keyword: "วัคซีน", Page: 1, PerPage: 10}, url.Values{"page": {"1"}, "per_page": {"10"}, "q": {"วัคซีน"}}},
		{"everything", Filter{Keyword: "x", TypeID: 1, Page: 4, PerPage: ShowAll}, url.Values{"page": {"4"}, "per_page": {"9999"}, "type_id": {"1"}, "q": {"x"}}},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			assert.Equal(t, item.params, item.filter.Params())
		})
	}
}

func TestFilterChangesResetPage(t *testing.T) {
	f := Filter{Page: 5, PerPage: 10}
	assert.Equal(t, 1, f.WithKeyword("a").Page)
	assert.Equal(t, 1, f.WithType(2).Page)
	assert.Equal(t, 1, f.WithPerPage(50).Page)
	assert.Equal(t, 3, f.WithPage(3).Page)
	assert.Equal(t, 1, f.WithPage(-3).Page)
}

func TestFilterFromQuery(t *testing.T) {
	prev := Filter{Keyword: "old", TypeID: 2, Page: 4, PerPage: 20}

	items := []struct {
		name   string
		query  string
		filter Filter
	}{
		{"nothing keeps everything", "", prev},
		{"page only", "page=6", Filter{Keyword: "old", TypeID: 2, Page: 6, PerPage: 20}},
		{"same values, new page", "q=old&type_id=2&per_page=20&page=2", Filter{Keyword: "old", TypeID: 2, Page: 2, PerPage: 20}},
		{"per page change resets", "per_page=50&page=4", Filter{Keyword: "old", TypeID: 2, Page: 1, PerPage: 50}},
		{"keyword change resets", "q=new&page=4", Filter{Keyword: "new", TypeID: 2, Page: 1, PerPage: 20}},
		{"clearing type resets", "type_id=&page=4", Filter{Keyword: "old", Page: 1, PerPage: 20}},
		{"unknown per page", "per_page=7", Filter{Keyword: "old", TypeID: 2, Page: 1, PerPage: 10}},
		{"garbage page", "page=pizza", prev},
		{"negative page", "page=-1", Filter{Keyword: "old", TypeID: 2, Page: 1, PerPage: 20}},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			query, err := url.ParseQuery(item.query)
			require.Nil(t, err)
			assert.Equal(t, item.filter, FilterFromQuery(prev, query))
		})
	}

	t.Run("round trip", func(t *testing.T) {
		assert.Equal(t, prev, FilterFromQuery(prev, prev.Query()))
		assert.Equal(t, prev.WithPage(1), FilterFromQuery(DefaultFilter(), prev.Query()))
	})
}

func TestPager(t *testing.T) {
	pager := NewPager(models.Page[models.News]{CurrentPage: 2, LastPage: 3, Total: 25}, 10)
	assert.Equal(t, []int{1, 2, 3}, pager.Pages)
	assert.True(t, pager.HasPrev)
	assert.True(t, pager.HasNext)
	assert.Equal(t, 11, pager.RowNumber(0))
	assert.Equal(t, 15, pager.RowNumber(4))

	first := NewPager(models.Page[models.News]{CurrentPage: 1, LastPage: 1}, 10)
	assert.False(t, first.HasPrev)
	assert.False(t, first.HasNext)
	assert.Equal(t, []int{1}, first.Pages)

	empty := NewPager(models.Page[models.News]{}, 10)
	assert.Equal(t, 1, empty.Current)
	assert.Equal(t, 1, empty.Last)
}

func newsPage(filter Filter, titles ...string) models.Page[models.News] {
	page := models.Page[models.News]{CurrentPage: filter.Page, LastPage: 1, Total: len(titles)}
	for i, title := range titles {
		page.Items = append(page.Items, models.News{ID: i + 1, Title: title})
	}
	return page
}

func TestViewLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	var seen []Filter
	view := NewView(func(ctx context.Context, f Filter) (models.Page[models.News], error) {
		seen = append(seen, f)
		if f.Keyword == "broken" {
			return models.Page[models.News]{}, errors.New("backend down")
		}
		return newsPage(f, "a", "b", "c"), nil
	}, DefaultFilter())

	state := view.State()
	assert.False(t, state.Loaded)

	state = view.Load(context.Background(), DefaultFilter())
	assert.True(t, state.Loaded)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Err)
	assert.Len(t, state.Page.Items, 3)

	state = view.Load(context.Background(), DefaultFilter().WithKeyword("broken"))
	assert.NotNil(t, state.Err)
	assert.Empty(t, state.Page.Items, "rows from the last good load are dropped")
	assert.Equal(t, 0, state.Page.Total)
	assert.Equal(t, "broken", state.Filter.Keyword)
	_, ok := view.Find(1)
	assert.False(t, ok)

	view.Reload(context.Background())
	assert.Equal(t, "broken", seen[len(seen)-1].Keyword)
}

func TestViewRemove(t *testing.T) {
	view := NewView(func(ctx context.Context, f Filter) (models.Page[models.News], error) {
		return newsPage(f, "a", "b", "c"), nil
	}, DefaultFilter())
	view.Load(context.Background(), DefaultFilter())

	assert.True(t, view.Remove(2))
	assert.False(t, view.Remove(2))

	state := view.State()
	require.Len(t, state.Page.Items, 2)
	assert.Equal(t, "a", state.Page.Items[0].Title)
	assert.Equal(t, "c", state.Page.Items[1].Title)
	assert.Equal(t, 2, state.Page.Total)

	item, ok := view.Find(3)
	assert.True(t, ok)
	assert.Equal(t, "c", item.Title)
	_, ok = view.Find(2)
	assert.False(t, ok)
}

func TestViewCurrentAfterRemove(t *testing.T) {
	fetches := 0
	view := NewView(func(ctx context.Context, f Filter) (models.Page[models.News], error) {
		fetches++
		return newsPage(f, "a", "b"), nil
	}, DefaultFilter())

	_, ok := view.Current(DefaultFilter())
	assert.False(t, ok, "nothing loaded yet")

	view.Load(context.Background(), DefaultFilter())
	_, ok = view.Current(DefaultFilter())
	assert.False(t, ok, "a plain load is not reused")

	view.Remove(1)
	_, ok = view.Current(DefaultFilter().WithKeyword("x"))
	assert.False(t, ok, "a different filter needs a fetch")

	state, ok := view.Current(DefaultFilter())
	require.True(t, ok)
	require.Len(t, state.Page.Items, 1)
	assert.Equal(t, "b", state.Page.Items[0].Title)

	_, ok = view.Current(DefaultFilter())
	assert.False(t, ok, "only reused once")
	assert.Equal(t, 1, fetches)
}

func TestViewDiscardsStaleResults(t *testing.T) {
	defer goleak.VerifyNone(t)

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	var slowCanceled bool

	view := NewView(func(ctx context.Context, f Filter) (models.Page[models.News], error) {
		if f.Page == 1 {
			close(slowStarted)
			<-releaseSlow
			slowCanceled = ctx.Err() != nil
			// Answers anyway, as a backend that ignores cancellation would.
			return newsPage(f, "stale"), nil
		}
		return newsPage(f, "fresh"), nil
	}, DefaultFilter())

	var wg sync.WaitGroup
	var slowState State[models.News]
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowState = view.Load(context.Background(), DefaultFilter())
	}()

	<-slowStarted
	fresh := view.Load(context.Background(), DefaultFilter().WithPage(2))
	close(releaseSlow)
	wg.Wait()

	assert.True(t, slowCanceled, "the superseded fetch is canceled")
	assert.Equal(t, "fresh", fresh.Page.Items[0].Title)
	assert.Equal(t, "fresh", slowState.Page.Items[0].Title)
	assert.Equal(t, "fresh", view.State().Page.Items[0].Title)
	assert.Equal(t, 2, view.State().Filter.Page)
}

func TestViewConcurrentLoads(t *testing.T) {
	defer goleak.VerifyNone(t)

	view := NewView(func(ctx context.Context, f Filter) (models.Page[models.News], error) {
		select {
		case <-ctx.Done():
			return models.Page[models.News]{}, ctx.Err()
		case <-time.After(time.Duration(10-f.Page) * time.Millisecond):
		}
		return newsPage(f, "page"), nil
	}, DefaultFilter())

	var wg sync.WaitGroup
	for page := 1; page <= 8; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			view.Load(context.Background(), DefaultFilter().WithPage(page))
		}(page)
	}
	wg.Wait()

	state := view.State()
	assert.False(t, state.Loading)
	assert.Equal(t, uint64(8), state.Seq)
	assert.Equal(t, state.Filter.Page, state.Page.CurrentPage, "the applied page matches the latest filter")
}

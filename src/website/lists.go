package website

import (
	"context"
	"net/http"
	"time"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/forms"
	"kohchanghospital.go.th/admin/src/listing"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/session"
	"kohchanghospital.go.th/admin/src/templates"
)

const (
	msgLoadFailed   = "โหลดข้อมูลไม่สำเร็จ"
	msgDeleteFailed = "ลบไม่สำเร็จ"
	msgDeleted      = "ลบเรียบร้อย"
	msgItemNotFound = "ไม่พบข้อมูล"
)

// Names of the per-session list views.
const (
	viewNews          = "news"
	viewAnnouncements = "announcements"
	viewKnowledges    = "knowledges"
)

func newsView(sess *session.Session) *listing.View[models.News] {
	return session.View(sess, viewNews, func(ctx context.Context, f listing.Filter) (models.Page[models.News], error) {
		// The news endpoint is not paginated; everything is one page.
		news, err := sess.Backend.ListNews(ctx)
		if err != nil {
			return models.Page[models.News]{}, err
		}
		return models.Page[models.News]{
			Items:       news,
			CurrentPage: 1,
			LastPage:    1,
			Total:       len(news),
		}, nil
	})
}

func announcementsView(sess *session.Session) *listing.View[models.Announcement] {
	return session.View(sess, viewAnnouncements, func(ctx context.Context, f listing.Filter) (models.Page[models.Announcement], error) {
		return sess.Backend.ListAnnouncements(ctx, f.Params())
	})
}

func knowledgesView(sess *session.Session) *listing.View[models.Knowledge] {
	return session.View(sess, viewKnowledges, func(ctx context.Context, f listing.Filter) (models.Page[models.Knowledge], error) {
		return sess.Backend.ListKnowledges(ctx, f.Params())
	})
}

// loadList settles the filter for this request from the view's previous one
// and the query string, then fetches. A page that a delete just edited
// locally is shown without asking the backend again.
func loadList[T models.Identified](c *RequestContext, view *listing.View[T], useQuery bool) listing.State[T] {
	filter := view.Filter()
	if useQuery {
		filter = listing.FilterFromQuery(filter, c.Req.URL.Query())
	}
	if state, ok := view.Current(filter); ok {
		return state
	}

	state := view.Load(c, filter)
	if state.Err != nil {
		c.Session.InvalidateIfUnauthorized(state.Err)
		c.Logger.Warn().Err(state.Err).Msg("failed to load list")
	}
	return state
}

func filterQuery(f listing.Filter) []adminurl.Q {
	return adminurl.QueryFromValues(f.Query())
}

func makePagination[T any](state listing.State[T], listUrl func(query []adminurl.Q) string) templates.Pagination {
	return templates.MakePagination(state.Pager(), func(page int) string {
		return listUrl(filterQuery(state.Filter.WithPage(page)))
	})
}

// refreshAfterSuccess makes the page go to dest once the success message has
// been up for a moment. Modals close this way; standalone forms come back
// empty.
func refreshAfterSuccess(bd *templates.BaseData, dest string) {
	bd.RefreshUrl = dest
	bd.RefreshAfter = int(forms.SuccessDelay / time.Second)
}

// deleteResponse finishes a delete: back to the list with a notice either way.
func deleteResponse(c *RequestContext, err error, listUrl string) ResponseData {
	res := c.Redirect(listUrl, http.StatusSeeOther)
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Warn().Err(err).Msg("delete failed")
		res.AddFutureNotice("failure", msgDeleteFailed)
		return res
	}
	res.AddFutureNotice("success", msgDeleted)
	return res
}

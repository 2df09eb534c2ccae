package website

import (
	"net/http"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/session"
)

func NewWebsiteRoutes(store *session.Store) http.Handler {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			trackRequestPerf,
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
		},
	}

	routes.GET(adminurl.RegexPublic, Public)
	routes.GET(adminurl.RegexThemeCSS, ThemeCSS)

	site := routes.WithMiddleware(
		storeNoticesInCookieMiddleware,
		loadSession(store),
	)

	anonymous := site.WithMiddleware(redirectIfLoggedIn)
	anonymous.GET(adminurl.RegexLoginPage, LoginPage)
	anonymous.POST(adminurl.RegexLogin, csrfMiddleware(Login))

	site.POST(adminurl.RegexLogout, csrfMiddleware(Logout))

	authed := site.WithMiddleware(needsAuth)
	authed.GET(adminurl.RegexDashboard, Dashboard)

	authed.GET(adminurl.RegexNewsList, NewsList)
	authed.GET(adminurl.RegexNewsUpload, NewsUploadPage)
	authed.POST(adminurl.RegexNewsUpload, csrfMiddleware(NewsUploadSubmit))
	authed.POST(adminurl.RegexNewsDelete, csrfMiddleware(NewsDelete))

	authed.GET(adminurl.RegexAnnouncementList, AnnouncementList)
	authed.GET(adminurl.RegexAnnouncementUpload, AnnouncementUploadPage)
	authed.POST(adminurl.RegexAnnouncementUpload, csrfMiddleware(AnnouncementUploadSubmit))
	authed.POST(adminurl.RegexAnnouncementEdit, csrfMiddleware(AnnouncementEditSubmit))
	authed.POST(adminurl.RegexAnnouncementDelete, csrfMiddleware(AnnouncementDelete))

	authed.GET(adminurl.RegexKnowledgeList, KnowledgeList)
	authed.POST(adminurl.RegexKnowledgeCreate, csrfMiddleware(KnowledgeCreateSubmit))
	authed.POST(adminurl.RegexKnowledgeEdit, csrfMiddleware(KnowledgeEditSubmit))
	authed.POST(adminurl.RegexKnowledgeDelete, csrfMiddleware(KnowledgeDelete))

	history := contentEditor{Page: models.ContentPageHistory, Heading: "ประวัติโรงพยาบาล", Url: adminurl.BuildHistory()}
	authed.GET(adminurl.RegexHistory, history.Show)
	authed.POST(adminurl.RegexHistory, csrfMiddleware(history.Save))

	vision := contentEditor{Page: models.ContentPageVision, Heading: "วิสัยทัศน์และพันธกิจ", Url: adminurl.BuildVision()}
	authed.GET(adminurl.RegexVision, vision.Show)
	authed.POST(adminurl.RegexVision, csrfMiddleware(vision.Save))

	// Everything else, including the sidebar entries that have no page yet,
	// goes to the front door: the login page, which sends logged-in users on
	// to the dashboard.
	site.AnyMethod(adminurl.RegexCatchAll, func(c *RequestContext) ResponseData {
		return c.Redirect(adminurl.BuildLoginPage(), http.StatusSeeOther)
	})

	return router
}

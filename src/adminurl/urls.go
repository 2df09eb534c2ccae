package adminurl

import (
	"regexp"
	"strconv"

	"kohchanghospital.go.th/admin/src/oops"
)

var RegexLoginPage = regexp.MustCompile("^/$")

func BuildLoginPage() string {
	return Url("/", nil)
}

var RegexLogin = regexp.MustCompile("^/login$")

func BuildLogin() string {
	return Url("/login", nil)
}

var RegexLogout = regexp.MustCompile("^/logout$")

func BuildLogout() string {
	return Url("/logout", nil)
}

var RegexDashboard = regexp.MustCompile("^/dashboard$")

func BuildDashboard() string {
	return Url("/dashboard", nil)
}

/*
* News
 */

var RegexNewsList = regexp.MustCompile("^/news$")

func BuildNewsList() string {
	return Url("/news", nil)
}

var RegexNewsUpload = regexp.MustCompile("^/news/upload$")

func BuildNewsUpload() string {
	return Url("/news/upload", nil)
}

var RegexNewsDelete = regexp.MustCompile(`^/news/(?P<id>\d+)/delete$`)

func BuildNewsDelete(id int) string {
	return Url("/news/"+itemID(id)+"/delete", nil)
}

/*
* Announcements
 */

var RegexAnnouncementList = regexp.MustCompile("^/announcements$")

func BuildAnnouncementList(query []Q) string {
	return Url("/announcements", query)
}

// BuildAnnouncementEditModal opens the edit modal over the list, keeping the
// list's own parameters.
func BuildAnnouncementEditModal(id int, query []Q) string {
	return Url("/announcements", append(withoutModal(query), Q{"edit", itemID(id)}))
}

var RegexAnnouncementUpload = regexp.MustCompile("^/announcements/upload$")

func BuildAnnouncementUpload() string {
	return Url("/announcements/upload", nil)
}

var RegexAnnouncementEdit = regexp.MustCompile(`^/announcements/(?P<id>\d+)/edit$`)

func BuildAnnouncementEdit(id int) string {
	return Url("/announcements/"+itemID(id)+"/edit", nil)
}

var RegexAnnouncementDelete = regexp.MustCompile(`^/announcements/(?P<id>\d+)/delete$`)

func BuildAnnouncementDelete(id int) string {
	return Url("/announcements/"+itemID(id)+"/delete", nil)
}

/*
* Knowledge
 */

var RegexKnowledgeList = regexp.MustCompile("^/knowledges$")

func BuildKnowledgeList(query []Q) string {
	return Url("/knowledges", query)
}

func BuildKnowledgeCreateModal(query []Q) string {
	return Url("/knowledges", append(withoutModal(query), Q{"modal", "create"}))
}

func BuildKnowledgeEditModal(id int, query []Q) string {
	return Url("/knowledges", append(withoutModal(query), Q{"edit", itemID(id)}))
}

var RegexKnowledgeCreate = regexp.MustCompile("^/knowledges/create$")

func BuildKnowledgeCreate() string {
	return Url("/knowledges/create", nil)
}

var RegexKnowledgeEdit = regexp.MustCompile(`^/knowledges/(?P<id>\d+)/edit$`)

func BuildKnowledgeEdit(id int) string {
	return Url("/knowledges/"+itemID(id)+"/edit", nil)
}

var RegexKnowledgeDelete = regexp.MustCompile(`^/knowledges/(?P<id>\d+)/delete$`)

func BuildKnowledgeDelete(id int) string {
	return Url("/knowledges/"+itemID(id)+"/delete", nil)
}

/*
* Static page contents
 */

var RegexHistory = regexp.MustCompile("^/history$")

func BuildHistory() string {
	return Url("/history", nil)
}

var RegexVision = regexp.MustCompile("^/vision$")

func BuildVision() string {
	return Url("/vision", nil)
}

/*
* Sidebar destinations the backend has no API for yet
 */

func BuildCalendar() string {
	return Url("/calendar", nil)
}

func BuildCars() string {
	return Url("/cars", nil)
}

func BuildSettings() string {
	return Url("/settings", nil)
}

/*
* Assets
 */

var RegexPublic = regexp.MustCompile("^" + StaticPath + "/.+$")

func BuildPublic(filepath string) string {
	return StaticUrl(filepath, nil)
}

var RegexThemeCSS = regexp.MustCompile("^/theme.css$")

func BuildThemeCSS() string {
	return Url("/theme.css", nil)
}

var RegexCatchAll = regexp.MustCompile("^")

func itemID(id int) string {
	if id < 1 {
		panic(oops.New(nil, "Invalid id (%d), must be >= 1", id))
	}
	return strconv.Itoa(id)
}

func withoutModal(query []Q) []Q {
	var result []Q
	for _, q := range query {
		if q.Name != "edit" && q.Name != "modal" {
			result = append(result, q)
		}
	}
	return result
}

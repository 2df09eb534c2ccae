package website

import (
	"net/url"
	"strings"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/templates"
	"kohchanghospital.go.th/admin/src/utils"
)

const defaultSiteName = "โรงพยาบาลเกาะช้าง"

type sidebarEntry struct {
	Name string
	Url  string
	Icon string
}

var sidebarEntries = []sidebarEntry{
	{"Dashboard", adminurl.BuildDashboard(), "dashboard"},
	{"ปฏิทินกิจกรรม", adminurl.BuildCalendar(), "calendar"},
	{"ข่าวสาร", adminurl.BuildNewsList(), "news"},
	{"ประกาศ", adminurl.BuildAnnouncementList(nil), "announcement"},
	{"สาระความรู้", adminurl.BuildKnowledgeList(nil), "knowledge"},
	{"แผนการใช้รถ", adminurl.BuildCars(), "car"},
	{"ประวัติ", adminurl.BuildHistory(), "history"},
	{"วิสัยทัศน์", adminurl.BuildVision(), "vision"},
	{"ตั้งค่า", adminurl.BuildSettings(), "settings"},
}

// Breadcrumb labels by path segment. Anything missing shows the segment
// itself.
var routeNames = map[string]string{
	"dashboard":     "Dashboard",
	"news":          "ข่าวสาร",
	"upload":        "อัปโหลด",
	"announcements": "ประกาศ",
	"knowledges":    "สาระความรู้",
	"history":       "ประวัติ",
	"vision":        "วิสัยทัศน์",
	"calendar":      "ปฏิทินกิจกรรม",
	"cars":          "แผนการใช้รถ",
	"settings":      "ตั้งค่า",
}

func getBaseData(c *RequestContext, title string) templates.BaseData {
	return getBaseDataForPath(c, title, c.Req.URL.Path)
}

// getBaseDataForPath lays the page out as if it were at path. Form posts
// that render the list they came from use it.
func getBaseDataForPath(c *RequestContext, title string, path string) templates.BaseData {
	var templateSession *templates.Session
	if c.Session != nil {
		templateSession = &templates.Session{CSRFToken: c.Session.CSRFToken}
	}

	return templates.BaseData{
		Title:       title,
		SiteName:    utils.OrDefault(config.Config.Theme.SiteName, defaultSiteName),
		Breadcrumbs: breadcrumbsForPath(path),
		Notices:     getNoticesFromCookie(c),

		CurrentUrl:  c.FullUrl(),
		LoginUrl:    adminurl.BuildLoginPage(),
		LogoutUrl:   adminurl.BuildLogout(),
		ThemeCSSUrl: adminurl.BuildThemeCSS(),

		User:    templates.UserToTemplate(c.CurrentUser),
		Session: templateSession,
		Sidebar: sidebarForPath(path),
	}
}

// sidebarForPath marks the entry whose url is the longest prefix of path.
func sidebarForPath(path string) []templates.SidebarItem {
	active := -1
	longest := 0
	for i, entry := range sidebarEntries {
		if pathHasPrefix(path, entry.Url) && len(entry.Url) > longest {
			active = i
			longest = len(entry.Url)
		}
	}

	items := make([]templates.SidebarItem, len(sidebarEntries))
	for i, entry := range sidebarEntries {
		items[i] = templates.SidebarItem{
			Name:   entry.Name,
			Url:    entry.Url,
			Icon:   entry.Icon,
			Active: i == active,
		}
	}
	return items
}

// pathHasPrefix matches whole segments only, so /news does not claim
// /newsletter.
func pathHasPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || strings.HasSuffix(prefix, "/")
}

func breadcrumbsForPath(path string) []templates.Breadcrumb {
	crumbs := []templates.Breadcrumb{{Name: "Home", Url: adminurl.BuildDashboard()}}

	current := ""
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		current += "/" + segment

		name, ok := routeNames[segment]
		if !ok {
			name = segment
			if unescaped, err := url.PathUnescape(segment); err == nil {
				name = unescaped
			}
		}
		crumbs = append(crumbs, templates.Breadcrumb{Name: name, Url: current})
	}
	return crumbs
}

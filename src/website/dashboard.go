package website

import (
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/templates"
)

type DashboardData struct {
	templates.BaseData
	Cards []templates.DashboardCard
}

// Asking for one row is enough to learn the total.
var totalOnly = url.Values{"page": {"1"}, "per_page": {"1"}}

func Dashboard(c *RequestContext) ResponseData {
	cards := []templates.DashboardCard{
		{Name: "ข่าวสาร", Url: adminurl.BuildNewsList(), Icon: "news"},
		{Name: "ประกาศ", Url: adminurl.BuildAnnouncementList(nil), Icon: "announcement"},
		{Name: "สาระความรู้", Url: adminurl.BuildKnowledgeList(nil), Icon: "knowledge"},
	}
	counts := []func() (int, error){
		func() (int, error) {
			news, err := c.Session.Backend.ListNews(c)
			return len(news), err
		},
		func() (int, error) {
			page, err := c.Session.Backend.ListAnnouncements(c, totalOnly)
			return page.Total, err
		},
		func() (int, error) {
			page, err := c.Session.Backend.ListKnowledges(c, totalOnly)
			return page.Total, err
		},
	}

	// Each card fails on its own.
	var g errgroup.Group
	for i := range cards {
		i := i
		g.Go(func() error {
			total, err := counts[i]()
			if err != nil {
				c.Session.InvalidateIfUnauthorized(err)
				c.Logger.Warn().Err(err).Str("card", cards[i].Name).Msg("failed to load dashboard total")
				cards[i].Total = "-"
				return nil
			}
			cards[i].Total = strconv.Itoa(total)
			return nil
		})
	}
	g.Wait()

	var res ResponseData
	res.MustWriteTemplate("dashboard.html", DashboardData{
		BaseData: getBaseData(c, "Dashboard"),
		Cards:    cards,
	}, c.Perf)
	return res
}

package website

import (
	"net/http"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/oops"
	"kohchanghospital.go.th/admin/src/templates"
	"kohchanghospital.go.th/admin/src/utils"
)

const defaultPrimaryColor = "1f7a5c"

func ThemeCSS(c *RequestContext) ResponseData {
	templateData := struct {
		PrimaryColor string
	}{
		PrimaryColor: utils.OrDefault(config.Config.Theme.PrimaryColor, defaultPrimaryColor),
	}

	var res ResponseData
	res.Header().Add("Content-Type", "text/css")
	err := res.WriteTemplate("theme.css", templateData, c.Perf)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to generate theme CSS"))
	}

	return res
}

func Public(c *RequestContext) ResponseData {
	var res ResponseData
	fileServer := http.StripPrefix(adminurl.StaticPath, http.FileServer(http.FS(templates.PublicFS())))
	fileServer.ServeHTTP(&res, c.Req)
	if res.StatusCode == http.StatusNotFound {
		return FourOhFour(c)
	}
	return res
}

package website

import (
	"net/http"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/forms"
	"kohchanghospital.go.th/admin/src/templates"
)

const msgNewsLoadFailed = "โหลดข่าวสารไม่สำเร็จ"

type NewsListData struct {
	templates.BaseData
	Rows      []templates.News
	LoadError string
	UploadUrl string
}

func NewsList(c *RequestContext) ResponseData {
	state := loadList(c, newsView(c.Session), false)

	data := NewsListData{
		BaseData:  getBaseData(c, "ข่าวสาร"),
		UploadUrl: adminurl.BuildNewsUpload(),
	}
	if state.Err != nil {
		data.LoadError = msgNewsLoadFailed
	}

	pager := state.Pager()
	for i, item := range state.Page.Items {
		row := templates.NewsToTemplate(item, pager.RowNumber(i), c.Session.Backend.StorageUrl(item.FilePath))
		row.DeleteUrl = adminurl.BuildNewsDelete(item.ID)
		data.Rows = append(data.Rows, row)
	}

	var res ResponseData
	res.MustWriteTemplate("news_list.html", data, c.Perf)
	return res
}

// Deleting news drops the row from the session's copy of the list instead
// of loading it again.
func NewsDelete(c *RequestContext) ResponseData {
	id, ok := c.PathID("id")
	if !ok {
		return FourOhFour(c)
	}

	err := c.Session.Backend.DeleteNews(c, id)
	if err == nil {
		newsView(c.Session).Remove(id)
	}
	return deleteResponse(c, err, adminurl.BuildNewsList())
}

type UploadPageData struct {
	templates.BaseData
	Form        templates.UploadForm
	BackUrl     string
	MaxFileSize int
}

func newsUploadForm() templates.UploadForm {
	return templates.UploadForm{
		Heading:   "อัปโหลดข่าวสาร",
		SubmitUrl: adminurl.BuildNewsUpload(),
	}
}

func NewsUploadPage(c *RequestContext) ResponseData {
	var res ResponseData
	res.MustWriteTemplate("news_upload.html", UploadPageData{
		BaseData:    getBaseData(c, "อัปโหลดข่าวสาร"),
		Form:        newsUploadForm(),
		BackUrl:     adminurl.BuildNewsList(),
		MaxFileSize: forms.MaxFileSize,
	}, c.Perf)
	return res
}

func NewsUploadSubmit(c *RequestContext) ResponseData {
	upload, err := forms.ParseUploadRequest(c.Req)
	if err != nil && !forms.IsValidationError(err) {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}

	form := newsUploadForm()
	if err == nil {
		err = upload.Submit(func(title string, _ int, file *backend.File) error {
			return c.Session.Backend.CreateNews(c, backend.NewsUpload{Title: title, File: file})
		})
	}

	data := UploadPageData{
		BaseData:    getBaseData(c, "อัปโหลดข่าวสาร"),
		BackUrl:     adminurl.BuildNewsList(),
		MaxFileSize: forms.MaxFileSize,
	}
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Info().Err(err).Msg("news upload rejected")
		form.Title = upload.Title
		form.Error = upload.FailureMessage(err, false)
	} else {
		form.Success = upload.SuccessMessage()
		refreshAfterSuccess(&data.BaseData, adminurl.BuildNewsUpload())
	}
	data.Form = form

	var res ResponseData
	res.MustWriteTemplate("news_upload.html", data, c.Perf)
	return res
}

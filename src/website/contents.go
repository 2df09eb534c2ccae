package website

import (
	"net/http"

	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/forms"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/templates"
	"kohchanghospital.go.th/admin/src/utils"
)

const (
	msgContentSaved      = "บันทึกเรียบร้อย"
	msgContentSaveFailed = "เกิดข้อผิดพลาดในการบันทึก"
)

type contentEditor struct {
	Page    models.ContentPage
	Heading string
	Url     string
}

type ContentEditorData struct {
	templates.BaseData
	Heading   string
	SubmitUrl string
	Blocks    []templates.ContentBlock
	LoadError string
}

func contentLang() string {
	return utils.OrDefault(config.Config.Backend.Lang, "th")
}

func (e contentEditor) render(c *RequestContext, data ContentEditorData) ResponseData {
	data.Heading = e.Heading
	data.SubmitUrl = e.Url

	var res ResponseData
	res.MustWriteTemplate("content_editor.html", data, c.Perf)
	return res
}

func (e contentEditor) load(c *RequestContext) ([]models.ContentBlock, error) {
	blocks, err := c.Session.Backend.GetContents(c, e.Page, contentLang())
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Warn().Err(err).Str("page", string(e.Page)).Msg("failed to load page contents")
	}
	return blocks, err
}

func (e contentEditor) Show(c *RequestContext) ResponseData {
	data := ContentEditorData{BaseData: getBaseData(c, e.Heading)}

	blocks, err := e.load(c)
	if err != nil {
		data.LoadError = backend.UserMessage(err, msgLoadFailed)
	}
	data.Blocks = templates.ContentBlocksToTemplate(blocks, forms.ContentFieldName)
	return e.render(c, data)
}

// Save sends every block back in one request, edited or not. The blocks are
// loaded again first so titles and ids come from the backend, not the form.
func (e contentEditor) Save(c *RequestContext) ResponseData {
	data := ContentEditorData{BaseData: getBaseData(c, e.Heading)}

	blocks, err := e.load(c)
	if err != nil {
		data.BaseData.AddImmediateNotice("failure", msgContentSaveFailed)
		data.LoadError = backend.UserMessage(err, msgLoadFailed)
		return e.render(c, data)
	}

	edited := forms.ApplyContentForm(blocks, c.Req.PostForm)
	err = c.Session.Backend.SaveContents(c, e.Page, backend.SaveContentsRequest{
		Lang:     contentLang(),
		Contents: edited,
	})
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Warn().Err(err).Str("page", string(e.Page)).Msg("failed to save page contents")
		data.BaseData.AddImmediateNotice("failure", msgContentSaveFailed)
		// Keep what the user typed so they can try again.
		data.Blocks = templates.ContentBlocksToTemplate(edited, forms.ContentFieldName)
		return e.render(c, data)
	}

	res := c.Redirect(e.Url, http.StatusSeeOther)
	res.AddFutureNotice("success", msgContentSaved)
	return res
}

package website

import (
	"net/http"
	"strconv"

	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/forms"
	"kohchanghospital.go.th/admin/src/listing"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/templates"
)

type KnowledgeListData struct {
	templates.BaseData
	Rows        []templates.Knowledge
	LoadError   string
	Keyword     string
	Types       []templates.AnnouncementType // always nil, read by the shared toolbar
	PerPage     []templates.PerPageOption
	Pagination  templates.Pagination
	FilterUrl   string
	CreateUrl   string
	Modal       *templates.UploadForm
	MaxFileSize int
}

func renderKnowledgeList(c *RequestContext, state listing.State[models.Knowledge], modal *templates.UploadForm, bd templates.BaseData) ResponseData {
	query := filterQuery(state.Filter)
	data := KnowledgeListData{
		BaseData:    bd,
		Keyword:     state.Filter.Keyword,
		PerPage:     templates.PerPageOptions(state.Filter.PerPage),
		Pagination:  makePagination(state, adminurl.BuildKnowledgeList),
		FilterUrl:   adminurl.BuildKnowledgeList(nil),
		CreateUrl:   adminurl.BuildKnowledgeCreateModal(query),
		Modal:       modal,
		MaxFileSize: forms.MaxFileSize,
	}
	if state.Err != nil {
		data.LoadError = msgLoadFailed
	}

	pager := state.Pager()
	for i, item := range state.Page.Items {
		row := templates.KnowledgeToTemplate(item, pager.RowNumber(i), c.Session.Backend.StorageUrl(item.FilePath))
		row.EditUrl = adminurl.BuildKnowledgeEditModal(item.ID, query)
		row.DeleteUrl = adminurl.BuildKnowledgeDelete(item.ID)
		data.Rows = append(data.Rows, row)
	}

	var res ResponseData
	res.MustWriteTemplate("knowledge_list.html", data, c.Perf)
	return res
}

func knowledgeCreateForm(filter listing.Filter) templates.UploadForm {
	return templates.UploadForm{
		Heading:   "เพิ่มสาระความรู้",
		SubmitUrl: adminurl.BuildKnowledgeCreate(),
		CancelUrl: adminurl.BuildKnowledgeList(filterQuery(filter)),
	}
}

func knowledgeEditForm(id int, filter listing.Filter) templates.UploadForm {
	return templates.UploadForm{
		Heading:   "แก้ไขสาระความรู้",
		SubmitUrl: adminurl.BuildKnowledgeEdit(id),
		CancelUrl: adminurl.BuildKnowledgeList(filterQuery(filter)),
		Editing:   true,
	}
}

func KnowledgeList(c *RequestContext) ResponseData {
	view := knowledgesView(c.Session)
	state := loadList(c, view, true)
	bd := getBaseData(c, "สาระความรู้")

	var modal *templates.UploadForm
	query := c.Req.URL.Query()
	if query.Get("modal") == "create" {
		form := knowledgeCreateForm(state.Filter)
		modal = &form
	} else if editParam := query.Get("edit"); editParam != "" {
		// There is no endpoint for a single article, so only rows on the
		// current page can be edited.
		id, _ := strconv.Atoi(editParam)
		if item, ok := view.Find(id); ok {
			form := knowledgeEditForm(item.ID, state.Filter)
			form.Title = item.Title
			form.CurrentFile = c.Session.Backend.StorageUrl(item.FilePath)
			modal = &form
		} else {
			bd.AddImmediateNotice("failure", msgItemNotFound)
		}
	}

	return renderKnowledgeList(c, state, modal, bd)
}

// submitKnowledge is shared by the create and edit modals. The list under
// the modal is loaded after the save so it already shows the change.
func submitKnowledge(c *RequestContext, form templates.UploadForm, editing bool, send func(title string, file *backend.File) error) ResponseData {
	upload, err := forms.ParseUploadRequest(c.Req)
	if err != nil && !forms.IsValidationError(err) {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	upload.Editing = editing
	if err == nil {
		err = upload.Submit(func(title string, _ int, file *backend.File) error {
			return send(title, file)
		})
	}

	view := knowledgesView(c.Session)
	state := loadList(c, view, false)
	bd := getBaseDataForPath(c, "สาระความรู้", adminurl.BuildKnowledgeList(nil))

	form.Title = upload.Title
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Info().Err(err).Msg("knowledge save rejected")
		form.Error = upload.FailureMessage(err, true)
	} else {
		form.Success = upload.SuccessMessage()
		refreshAfterSuccess(&bd, adminurl.BuildKnowledgeList(filterQuery(state.Filter)))
	}

	return renderKnowledgeList(c, state, &form, bd)
}

func KnowledgeCreateSubmit(c *RequestContext) ResponseData {
	form := knowledgeCreateForm(knowledgesView(c.Session).Filter())
	return submitKnowledge(c, form, false, func(title string, file *backend.File) error {
		return c.Session.Backend.CreateKnowledge(c, backend.KnowledgeUpload{Title: title, File: file})
	})
}

func KnowledgeEditSubmit(c *RequestContext) ResponseData {
	id, ok := c.PathID("id")
	if !ok {
		return FourOhFour(c)
	}

	view := knowledgesView(c.Session)
	form := knowledgeEditForm(id, view.Filter())
	if item, ok := view.Find(id); ok {
		form.CurrentFile = c.Session.Backend.StorageUrl(item.FilePath)
	}
	return submitKnowledge(c, form, true, func(title string, file *backend.File) error {
		return c.Session.Backend.UpdateKnowledge(c, id, backend.KnowledgeUpload{Title: title, File: file})
	})
}

func KnowledgeDelete(c *RequestContext) ResponseData {
	id, ok := c.PathID("id")
	if !ok {
		return FourOhFour(c)
	}

	err := c.Session.Backend.DeleteKnowledge(c, id)
	return deleteResponse(c, err, adminurl.BuildKnowledgeList(filterQuery(knowledgesView(c.Session).Filter())))
}

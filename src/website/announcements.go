package website

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"
	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/forms"
	"kohchanghospital.go.th/admin/src/listing"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/templates"
)

const msgTypesLoadFailed = "โหลดประเภทประกาศไม่สำเร็จ"

type AnnouncementListData struct {
	templates.BaseData
	Rows        []templates.Announcement
	LoadError   string
	Keyword     string
	Types       []templates.AnnouncementType
	PerPage     []templates.PerPageOption
	Pagination  templates.Pagination
	FilterUrl   string
	UploadUrl   string
	Modal       *templates.UploadForm
	MaxFileSize int
}

type announcementPage struct {
	State    listing.State[models.Announcement]
	Types    []models.AnnouncementType
	TypesErr error
}

// loadAnnouncementPage fetches the list and the type lookup together.
func loadAnnouncementPage(c *RequestContext) announcementPage {
	var page announcementPage
	var g errgroup.Group
	g.Go(func() error {
		page.State = loadList(c, announcementsView(c.Session), true)
		return nil
	})
	g.Go(func() error {
		page.Types, page.TypesErr = c.Session.Backend.ListAnnouncementTypes(c)
		if page.TypesErr != nil {
			c.Session.InvalidateIfUnauthorized(page.TypesErr)
			c.Logger.Warn().Err(page.TypesErr).Msg("failed to load announcement types")
		}
		return nil
	})
	g.Wait()
	return page
}

func renderAnnouncementList(c *RequestContext, page announcementPage, modal *templates.UploadForm, bd templates.BaseData) ResponseData {
	state := page.State
	data := AnnouncementListData{
		BaseData:    bd,
		Keyword:     state.Filter.Keyword,
		Types:       templates.AnnouncementTypesToTemplate(page.Types, state.Filter.TypeID),
		PerPage:     templates.PerPageOptions(state.Filter.PerPage),
		Pagination:  makePagination(state, adminurl.BuildAnnouncementList),
		FilterUrl:   adminurl.BuildAnnouncementList(nil),
		UploadUrl:   adminurl.BuildAnnouncementUpload(),
		Modal:       modal,
		MaxFileSize: forms.MaxFileSize,
	}
	if state.Err != nil {
		data.LoadError = msgLoadFailed
	}

	pager := state.Pager()
	query := filterQuery(state.Filter)
	for i, item := range state.Page.Items {
		row := templates.AnnouncementToTemplate(item, pager.RowNumber(i), c.Session.Backend.StorageUrl(item.FilePath))
		row.EditUrl = adminurl.BuildAnnouncementEditModal(item.ID, query)
		row.DeleteUrl = adminurl.BuildAnnouncementDelete(item.ID)
		data.Rows = append(data.Rows, row)
	}

	var res ResponseData
	res.MustWriteTemplate("announcement_list.html", data, c.Perf)
	return res
}

func announcementEditForm(id int, filter listing.Filter) templates.UploadForm {
	return templates.UploadForm{
		Heading:   "แก้ไขประกาศ",
		SubmitUrl: adminurl.BuildAnnouncementEdit(id),
		CancelUrl: adminurl.BuildAnnouncementList(filterQuery(filter)),
		ShowTypes: true,
		Editing:   true,
	}
}

// findAnnouncement looks on the loaded page first, since that is where the
// edit link came from, and asks the backend otherwise.
func findAnnouncement(c *RequestContext, id int) (models.Announcement, bool) {
	if item, ok := announcementsView(c.Session).Find(id); ok {
		return item, true
	}
	item, err := c.Session.Backend.GetAnnouncement(c, id)
	if err != nil {
		if !backend.IsNotFound(err) {
			c.Session.InvalidateIfUnauthorized(err)
			c.Logger.Warn().Err(err).Int("id", id).Msg("failed to load announcement")
		}
		return models.Announcement{}, false
	}
	return *item, true
}

func AnnouncementList(c *RequestContext) ResponseData {
	page := loadAnnouncementPage(c)
	bd := getBaseData(c, "ประกาศ")

	var modal *templates.UploadForm
	if editParam := c.Req.URL.Query().Get("edit"); editParam != "" {
		var item models.Announcement
		found := false
		if id, err := strconv.Atoi(editParam); err == nil && id > 0 {
			item, found = findAnnouncement(c, id)
		}
		if found {
			form := announcementEditForm(item.ID, page.State.Filter)
			form.Title = item.Title
			form.Types = templates.AnnouncementTypesToTemplate(page.Types, item.TypeID)
			form.CurrentFile = c.Session.Backend.StorageUrl(item.FilePath)
			if page.TypesErr != nil {
				form.Error = msgTypesLoadFailed
			}
			modal = &form
		} else {
			bd.AddImmediateNotice("failure", msgItemNotFound)
		}
	}

	return renderAnnouncementList(c, page, modal, bd)
}

func AnnouncementEditSubmit(c *RequestContext) ResponseData {
	id, ok := c.PathID("id")
	if !ok {
		return FourOhFour(c)
	}

	upload, err := forms.ParseUploadRequest(c.Req)
	if err != nil && !forms.IsValidationError(err) {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	upload.RequireType = true
	upload.Editing = true
	if err == nil {
		err = upload.Submit(func(title string, typeID int, file *backend.File) error {
			return c.Session.Backend.UpdateAnnouncement(c, id, backend.AnnouncementUpload{
				Title:  title,
				TypeID: typeID,
				File:   file,
			})
		})
	}

	page := loadAnnouncementPage(c)
	bd := getBaseDataForPath(c, "ประกาศ", adminurl.BuildAnnouncementList(nil))

	form := announcementEditForm(id, page.State.Filter)
	form.Title = upload.Title
	form.Types = templates.AnnouncementTypesToTemplate(page.Types, upload.TypeID)
	if item, ok := announcementsView(c.Session).Find(id); ok {
		form.CurrentFile = c.Session.Backend.StorageUrl(item.FilePath)
	}
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Info().Err(err).Int("id", id).Msg("announcement update rejected")
		form.Error = upload.FailureMessage(err, true)
	} else {
		form.Success = upload.SuccessMessage()
		refreshAfterSuccess(&bd, form.CancelUrl)
	}

	return renderAnnouncementList(c, page, &form, bd)
}

func AnnouncementDelete(c *RequestContext) ResponseData {
	id, ok := c.PathID("id")
	if !ok {
		return FourOhFour(c)
	}

	err := c.Session.Backend.DeleteAnnouncement(c, id)
	// The list reloads from the backend on the redirect.
	return deleteResponse(c, err, adminurl.BuildAnnouncementList(filterQuery(announcementsView(c.Session).Filter())))
}

func announcementUploadForm(types []models.AnnouncementType, selected int) templates.UploadForm {
	return templates.UploadForm{
		Heading:   "อัปโหลดประกาศ",
		SubmitUrl: adminurl.BuildAnnouncementUpload(),
		ShowTypes: true,
		Types:     templates.AnnouncementTypesToTemplate(types, selected),
	}
}

func loadAnnouncementTypes(c *RequestContext, form *templates.UploadForm, selected int) {
	types, err := c.Session.Backend.ListAnnouncementTypes(c)
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Warn().Err(err).Msg("failed to load announcement types")
		form.Error = msgTypesLoadFailed
	}
	form.Types = templates.AnnouncementTypesToTemplate(types, selected)
}

func AnnouncementUploadPage(c *RequestContext) ResponseData {
	form := announcementUploadForm(nil, 0)
	loadAnnouncementTypes(c, &form, 0)

	var res ResponseData
	res.MustWriteTemplate("announcement_upload.html", UploadPageData{
		BaseData:    getBaseData(c, "อัปโหลดประกาศ"),
		Form:        form,
		BackUrl:     adminurl.BuildAnnouncementList(nil),
		MaxFileSize: forms.MaxFileSize,
	}, c.Perf)
	return res
}

func AnnouncementUploadSubmit(c *RequestContext) ResponseData {
	upload, err := forms.ParseUploadRequest(c.Req)
	if err != nil && !forms.IsValidationError(err) {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	upload.RequireType = true
	if err == nil {
		err = upload.Submit(func(title string, typeID int, file *backend.File) error {
			return c.Session.Backend.CreateAnnouncement(c, backend.AnnouncementUpload{
				Title:  title,
				TypeID: typeID,
				File:   file,
			})
		})
	}

	data := UploadPageData{
		BaseData:    getBaseData(c, "อัปโหลดประกาศ"),
		BackUrl:     adminurl.BuildAnnouncementList(nil),
		MaxFileSize: forms.MaxFileSize,
	}
	form := announcementUploadForm(nil, 0)
	if err != nil {
		c.Session.InvalidateIfUnauthorized(err)
		c.Logger.Info().Err(err).Msg("announcement upload rejected")
		if c.Session.LoggedIn() {
			loadAnnouncementTypes(c, &form, upload.TypeID)
		}
		form.Title = upload.Title
		form.Error = upload.FailureMessage(err, false)
	} else {
		form.Success = upload.SuccessMessage()
		refreshAfterSuccess(&data.BaseData, adminurl.BuildAnnouncementUpload())
	}
	data.Form = form

	var res ResponseData
	res.MustWriteTemplate("announcement_upload.html", data, c.Perf)
	return res
}

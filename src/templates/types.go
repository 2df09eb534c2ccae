package templates

import (
	"kohchanghospital.go.th/admin/src/models"
)

type BaseData struct {
	Title       string
	SiteName    string
	Breadcrumbs []Breadcrumb
	Notices     []Notice

	CurrentUrl  string
	LoginUrl    string
	LogoutUrl   string
	ThemeCSSUrl string

	User    *User
	Session *Session
	Sidebar []SidebarItem

	// Set on pages that close a modal or clear a form after a short delay.
	RefreshUrl   string
	RefreshAfter int // seconds
}

func (bd *BaseData) AddImmediateNotice(class, content string) {
	bd.Notices = append(bd.Notices, Notice{
		Class:   class,
		Content: content,
	})
}

// Notice content is plain text. Everything shown in a notice comes from us
// or from a backend error message, and neither should carry markup.
type Notice struct {
	Content string
	Class   string
}

type Session struct {
	CSRFToken string
}

type User struct {
	ID      int
	Name    string
	Email   string
	Initial string
}

type Breadcrumb struct {
	Name, Url string
}

type SidebarItem struct {
	Name   string
	Url    string
	Icon   string
	Active bool
}

type Pagination struct {
	Current int
	Last    int
	Total   int

	PreviousUrl string
	NextUrl     string
	Pages       []PageLink
}

type PageLink struct {
	Number  int
	Url     string
	Current bool
}

type PerPageOption struct {
	Value    int
	Label    string
	Selected bool
}

type AnnouncementType struct {
	ID       int
	Name     string
	Selected bool
}

type DashboardCard struct {
	Name  string
	Total string
	Url   string
	Icon  string
}

type News struct {
	ID        int
	Number    int
	Title     string
	FileUrl   string
	CreatedAt models.Timestamp
	DeleteUrl string
}

type Announcement struct {
	ID        int
	Number    int
	Title     string
	TypeName  string
	FileUrl   string
	CreatedAt models.Timestamp
	EditUrl   string
	DeleteUrl string
}

type Knowledge struct {
	ID        int
	Number    int
	Title     string
	FileUrl   string
	CreatedAt models.Timestamp
	EditUrl   string
	DeleteUrl string
}

// UploadForm backs every document form: standalone uploads and the create
// and edit modals.
type UploadForm struct {
	Heading   string
	SubmitUrl string
	CancelUrl string // only set for modals

	Title       string
	Types       []AnnouncementType
	ShowTypes   bool
	Editing     bool
	CurrentFile string

	Error   string
	Success string
}

type ContentBlock struct {
	ContentID int
	Title     string
	FieldName string
	Body      string
}

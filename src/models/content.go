package models

type ContentBlock struct {
	ContentID int    `json:"content_id" yaml:"content_id"`
	Title     string `json:"title" yaml:"title"`
	Body      string `json:"body" yaml:"body"`
}

// ContentPage identifies a static page whose blocks are edited together.
type ContentPage string

const (
	ContentPageHistory ContentPage = "history"
	ContentPageVision  ContentPage = "about"
)

var ContentPages = []ContentPage{ContentPageHistory, ContentPageVision}

func (p ContentPage) Valid() bool {
	for _, known := range ContentPages {
		if p == known {
			return true
		}
	}
	return false
}

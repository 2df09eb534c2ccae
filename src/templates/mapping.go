package templates

import (
	"strconv"

	"kohchanghospital.go.th/admin/src/listing"
	"kohchanghospital.go.th/admin/src/models"
)

func UserToTemplate(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:      u.ID,
		Name:    u.DisplayName(),
		Email:   u.Email,
		Initial: u.Initial(),
	}
}

func NewsToTemplate(n models.News, number int, fileUrl string) News {
	return News{
		ID:        n.ID,
		Number:    number,
		Title:     n.Title,
		FileUrl:   fileUrl,
		CreatedAt: n.CreatedAt,
	}
}

func AnnouncementToTemplate(a models.Announcement, number int, fileUrl string) Announcement {
	return Announcement{
		ID:        a.ID,
		Number:    number,
		Title:     a.Title,
		TypeName:  a.Type.Name,
		FileUrl:   fileUrl,
		CreatedAt: a.CreatedAt,
	}
}

func KnowledgeToTemplate(k models.Knowledge, number int, fileUrl string) Knowledge {
	return Knowledge{
		ID:        k.ID,
		Number:    number,
		Title:     k.Title,
		FileUrl:   fileUrl,
		CreatedAt: k.CreatedAt,
	}
}

func AnnouncementTypesToTemplate(types []models.AnnouncementType, selected int) []AnnouncementType {
	result := make([]AnnouncementType, len(types))
	for i, t := range types {
		result[i] = AnnouncementType{
			ID:       t.ID,
			Name:     t.Name,
			Selected: t.ID == selected,
		}
	}
	return result
}

func PerPageOptions(selected int) []PerPageOption {
	result := make([]PerPageOption, len(listing.PerPageOptions))
	for i, value := range listing.PerPageOptions {
		label := strconv.Itoa(value)
		if value == listing.ShowAll {
			label = "ทั้งหมด"
		}
		result[i] = PerPageOption{
			Value:    value,
			Label:    label,
			Selected: value == selected,
		}
	}
	return result
}

// MakePagination draws one link per page plus prev and next. pageUrl builds
// the list url for a given page number.
func MakePagination(p listing.Pager, pageUrl func(page int) string) Pagination {
	result := Pagination{
		Current: p.Current,
		Last:    p.Last,
		Total:   p.Total,
	}
	if p.HasPrev {
		result.PreviousUrl = pageUrl(p.Prev)
	}
	if p.HasNext {
		result.NextUrl = pageUrl(p.Next)
	}
	for _, page := range p.Pages {
		result.Pages = append(result.Pages, PageLink{
			Number:  page,
			Url:     pageUrl(page),
			Current: page == p.Current,
		})
	}
	return result
}

func ContentBlocksToTemplate(blocks []models.ContentBlock, fieldName func(id int) string) []ContentBlock {
	result := make([]ContentBlock, len(blocks))
	for i, b := range blocks {
		result[i] = ContentBlock{
			ContentID: b.ContentID,
			Title:     b.Title,
			FieldName: fieldName(b.ContentID),
			Body:      b.Body,
		}
	}
	return result
}

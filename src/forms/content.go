package forms

import (
	"net/url"
	"strconv"

	"github.com/microcosm-cc/bluemonday"
	"kohchanghospital.go.th/admin/src/models"
)

var richTextPolicy = bluemonday.UGCPolicy()

// SanitizeRichText strips anything from editor output that the public site
// should never render, such as scripts and event handlers.
func SanitizeRichText(body string) string {
	return richTextPolicy.Sanitize(body)
}

func ContentFieldName(contentID int) string {
	return "body_" + strconv.Itoa(contentID)
}

// ApplyContentForm copies submitted bodies onto the blocks loaded from the
// backend. Every block is returned, edited or not, since the backend expects
// the whole page in one save.
func ApplyContentForm(blocks []models.ContentBlock, form url.Values) []models.ContentBlock {
	res := make([]models.ContentBlock, len(blocks))
	for i, block := range blocks {
		if values, ok := form[ContentFieldName(block.ContentID)]; ok && len(values) > 0 {
			block.Body = SanitizeRichText(values[0])
		}
		res[i] = block
	}
	return res
}

func parseID(s string) int {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

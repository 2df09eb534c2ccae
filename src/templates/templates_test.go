package templates

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kohchanghospital.go.th/admin/src/listing"
	"kohchanghospital.go.th/admin/src/models"
)

func TestTemplatesParse(t *testing.T) {
	templates, errs := getTemplatesFromFS(embeddedTemplateFs)
	for name, err := range errs {
		t.Errorf("%s: %v", name, err)
	}
	for _, name := range []string{"login.html", "dashboard.html", "news_list.html", "announcement_list.html", "knowledge_list.html", "content_editor.html", "theme.css"} {
		assert.Contains(t, templates, name)
	}
	assert.NotContains(t, templates, "base.html", "layouts are not pages")
}

func TestThemeCSS(t *testing.T) {
	var buf bytes.Buffer
	err := GetTemplate("theme.css").Execute(&buf, struct{ PrimaryColor string }{"1f7a5c"})
	require.Nil(t, err)
	assert.Contains(t, strings.ToLower(buf.String()), "1f7a5c")

	err = GetTemplate("theme.css").Execute(&bytes.Buffer{}, struct{ PrimaryColor string }{"abc"})
	assert.NotNil(t, err)
}

func TestCSRFToken(t *testing.T) {
	csrftoken := AdminTemplateFuncs["csrftoken"].(func(*Session) template.HTML)
	assert.Equal(t, template.HTML(""), csrftoken(nil))
	assert.Equal(t,
		template.HTML(`<input type="hidden" name="csrf_token" value="a&lt;b">`),
		csrftoken(&Session{CSRFToken: "a<b"}),
	)
}

func TestFileSize(t *testing.T) {
	filesize := AdminTemplateFuncs["filesize"].(func(int) string)
	assert.Equal(t, "512 bytes", filesize(512))
	assert.Equal(t, "10.00MB", filesize(10*1024*1024))
}

func TestMakePagination(t *testing.T) {
	pager := listing.NewPager(models.Page[models.News]{CurrentPage: 1, LastPage: 3, Total: 25}, 10)
	p := MakePagination(pager, func(page int) string {
		return "/news?page=" + strconv.Itoa(page)
	})

	assert.Equal(t, "", p.PreviousUrl)
	assert.Equal(t, "/news?page=2", p.NextUrl)
	require.Len(t, p.Pages, 3)
	assert.True(t, p.Pages[0].Current)
	assert.Equal(t, 25, p.Total)
}

func TestUserToTemplate(t *testing.T) {
	assert.Nil(t, UserToTemplate(nil))
	user := UserToTemplate(&models.User{ID: 1, Name: "สมชาย", Email: "somchai@kohchanghospital.go.th"})
	assert.Equal(t, "สมชาย", user.Name)
	assert.NotEmpty(t, user.Initial)
}

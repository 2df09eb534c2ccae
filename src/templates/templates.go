package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/sprig"
	"github.com/teacat/noire"
	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/logging"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/oops"
	"kohchanghospital.go.th/admin/src/utils"
)

const CSRFFieldName = "csrf_token"

//go:embed src
var embeddedTemplateFs embed.FS
var embeddedTemplates map[string]*template.Template

//go:embed public
var embeddedPublicFs embed.FS

func getTemplatesFromFS(templateFS fs.FS) (map[string]*template.Template, map[string]error) {
	templates := make(map[string]*template.Template)
	errs := make(map[string]error)

	files := utils.Must1(fs.ReadDir(templateFS, "src"))
	for _, f := range files {
		if hasSuffix(f.Name(), ".html") {
			t := template.New(f.Name())
			t = t.Funcs(sprig.FuncMap())
			t = t.Funcs(AdminTemplateFuncs)
			t, err := t.ParseFS(templateFS,
				"src/layouts/*",
				"src/include/*",
				"src/"+f.Name(),
			)
			if err != nil {
				errs[f.Name()] = err
				continue
			}

			templates[f.Name()] = t
		} else if hasSuffix(f.Name(), ".css", ".js") {
			t := template.New(f.Name())
			t = t.Funcs(sprig.FuncMap())
			t = t.Funcs(AdminTemplateFuncs)
			t, err := t.ParseFS(templateFS, "src/"+f.Name())
			if err != nil {
				errs[f.Name()] = err
				continue
			}

			templates[f.Name()] = t
		}
	}

	return templates, errs
}

func Init() {
	var errs map[string]error
	type errEntry struct {
		name string
		err  error
	}

	embeddedTemplates, errs = getTemplatesFromFS(embeddedTemplateFs)
	if len(errs) > 0 {
		var errsList []errEntry
		for filename, err := range errs {
			errsList = append(errsList, errEntry{filename, err})
		}
		sort.Slice(errsList, func(i, j int) bool {
			return strings.Compare(errsList[i].name, errsList[j].name) < 0
		})
		for _, err := range errsList {
			logging.Error().Str("filename", err.name).Err(err.err).Msg("Failed to parse template")
		}
		panic("Failed to parse templates; see above")
	}
}

func GetTemplate(name string) *template.Template {
	var templates map[string]*template.Template
	if config.Config.Dev.LiveTemplates {
		var errs map[string]error
		templates, errs = getTemplatesFromFS(os.DirFS("src/templates"))
		if errs[name] != nil {
			panic(oops.New(errs[name], "Error in template %s", name))
		}
	} else {
		if embeddedTemplates == nil {
			Init()
		}
		templates = embeddedTemplates
	}

	template, hasTemplate := templates[name]
	if !hasTemplate {
		panic(oops.New(nil, "Template not found: %s", name))
	}
	return template
}

// PublicFS holds the static files served under /public.
func PublicFS() fs.FS {
	if config.Config.Dev.LiveTemplates {
		return os.DirFS("src/templates/public")
	}
	return utils.Must1(fs.Sub(embeddedPublicFs, "public"))
}

func hasSuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

var AdminTemplateFuncs = template.FuncMap{
	"add": func(a int, b ...int) int {
		for _, num := range b {
			a += num
		}
		return a
	},
	"thaidate": func(t models.Timestamp) string {
		return t.ThaiDate()
	},
	"brighten": func(amount float64, color noire.Color) noire.Color {
		return color.Tint(amount)
	},
	"color2css": func(color noire.Color) template.CSS {
		return template.CSS(color.HTML())
	},
	"csrftoken": func(s *Session) template.HTML {
		if s == nil {
			return ""
		}
		return template.HTML(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, CSRFFieldName, template.HTMLEscapeString(s.CSRFToken)))
	},
	"darken": func(amount float64, color noire.Color) noire.Color {
		return color.Shade(amount)
	},
	"hex2color": func(hex string) (noire.Color, error) {
		if len(hex) < 6 {
			return noire.Color{}, fmt.Errorf("hex color was invalid: %v", hex)
		}
		return noire.NewHex(hex), nil
	},
	"static": func(filepath string) string {
		return adminurl.BuildPublic(filepath)
	},
	"noescape": func(str string) template.HTML {
		return template.HTML(str)
	},
	"filesize": func(numBytes int) string {
		scales := []string{
			" bytes",
			"KB",
			"MB",
			"GB",
		}
		num := float64(numBytes)
		scale := 0
		for num > 1024 && scale < len(scales)-1 {
			num /= 1024
			scale += 1
		}
		precision := 0
		if scale > 0 {
			precision = 2
		}
		return fmt.Sprintf("%.*f%s", precision, num, scales[scale])
	},
	"lastidx": func(idx int, l int) bool {
		return idx == l-1
	},
}

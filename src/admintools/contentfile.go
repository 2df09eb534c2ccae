package admintools

import (
	"fmt"

	"gopkg.in/yaml.v3"
	"kohchanghospital.go.th/admin/src/forms"
	"kohchanghospital.go.th/admin/src/models"
)

// contentFile is the backup format for one static page. Bodies are kept as
// YAML block scalars so exports diff well.
type contentFile struct {
	Page    string         `yaml:"page"`
	Lang    string         `yaml:"lang"`
	Entries []contentEntry `yaml:"blocks"`
}

type contentEntry struct {
	ContentID int    `yaml:"content_id"`
	Title     string `yaml:"title"`
	Body      string `yaml:"body"`
}

func encodeContentFile(page models.ContentPage, lang string, blocks []models.ContentBlock) ([]byte, error) {
	file := contentFile{Page: string(page), Lang: lang}
	for _, block := range blocks {
		file.Entries = append(file.Entries, contentEntry{
			ContentID: block.ContentID,
			Title:     block.Title,
			Body:      block.Body,
		})
	}
	return yaml.Marshal(file)
}

func decodeContentFile(contents []byte) (contentFile, error) {
	var file contentFile
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return contentFile{}, fmt.Errorf("not a contents export: %w", err)
	}
	if !models.ContentPage(file.Page).Valid() {
		return contentFile{}, fmt.Errorf("unknown page %q", file.Page)
	}
	if file.Lang == "" {
		return contentFile{}, fmt.Errorf("export has no lang")
	}
	for i, entry := range file.Entries {
		if entry.ContentID <= 0 {
			return contentFile{}, fmt.Errorf("block %d has no content_id", i+1)
		}
	}
	return file, nil
}

// Blocks are sanitized the same way the editor sanitizes them, since a
// hand-edited export is no more trusted than a browser.
func (f contentFile) Blocks() []models.ContentBlock {
	blocks := make([]models.ContentBlock, len(f.Entries))
	for i, entry := range f.Entries {
		blocks[i] = models.ContentBlock{
			ContentID: entry.ContentID,
			Title:     entry.Title,
			Body:      forms.SanitizeRichText(entry.Body),
		}
	}
	return blocks
}

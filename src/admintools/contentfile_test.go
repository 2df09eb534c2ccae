package admintools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kohchanghospital.go.th/admin/src/models"
)

func TestContentFile(t *testing.T) {
	blocks := []models.ContentBlock{
		{ContentID: 1, Title: "ความเป็นมา", Body: "<p>โรงพยาบาลเกาะช้าง</p>\n<p>ก่อตั้งปี 2520</p>"},
		{ContentID: 2, Title: "ทำเนียบผู้อำนวยการ", Body: ""},
	}

	out, err := encodeContentFile(models.ContentPageHistory, "th", blocks)
	require.Nil(t, err)
	assert.Contains(t, string(out), "page: history")
	assert.Contains(t, string(out), "content_id: 1")

	file, err := decodeContentFile(out)
	require.Nil(t, err)
	assert.Equal(t, "th", file.Lang)
	assert.Equal(t, blocks, file.Blocks())
}

func TestDecodeContentFile(t *testing.T) {
	t.Run("unknown page", func(t *testing.T) {
		_, err := decodeContentFile([]byte("page: menu\nlang: th\n"))
		assert.NotNil(t, err)
	})
	t.Run("missing lang", func(t *testing.T) {
		_, err := decodeContentFile([]byte("page: about\n"))
		assert.NotNil(t, err)
	})
	t.Run("missing id", func(t *testing.T) {
		_, err := decodeContentFile([]byte("page: about\nlang: th\nblocks:\n  - title: x\n"))
		assert.NotNil(t, err)
	})
	t.Run("not yaml", func(t *testing.T) {
		_, err := decodeContentFile([]byte("{{{"))
		assert.NotNil(t, err)
	})
	t.Run("bodies are sanitized", func(t *testing.T) {
		file, err := decodeContentFile([]byte("page: about\nlang: th\nblocks:\n  - content_id: 3\n    body: \"<p onclick='x()'>hi</p>\"\n"))
		require.Nil(t, err)
		assert.Equal(t, "<p>hi</p>", file.Blocks()[0].Body)
	})
}

package adminurl

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrl(t *testing.T) {
	t.Run("no query", func(t *testing.T) {
		assert.Equal(t, "/test/foo", Url("/test/foo", nil))
	})
	t.Run("yes query", func(t *testing.T) {
		result := Url("/test/foo", []Q{{"bar", "baz"}, {"zig??", "zig & zag!!"}})
		assert.Equal(t, "/test/foo?bar=baz&zig%3F%3F=zig+%26+zag%21%21", result)
	})
}

func TestAuthPages(t *testing.T) {
	AssertRegexMatch(t, BuildLoginPage(), RegexLoginPage, nil)
	AssertRegexMatch(t, BuildLogin(), RegexLogin, nil)
	AssertRegexMatch(t, BuildLogout(), RegexLogout, nil)
	AssertRegexMatch(t, BuildDashboard(), RegexDashboard, nil)
}

func TestNews(t *testing.T) {
	AssertRegexMatch(t, BuildNewsList(), RegexNewsList, nil)
	AssertRegexMatch(t, BuildNewsUpload(), RegexNewsUpload, nil)
	AssertRegexMatch(t, BuildNewsDelete(12), RegexNewsDelete, map[string]string{"id": "12"})
	AssertRegexNoMatch(t, BuildNewsUpload(), RegexNewsDelete)
	assert.Panics(t, func() { BuildNewsDelete(0) })
}

func TestAnnouncements(t *testing.T) {
	AssertRegexMatch(t, BuildAnnouncementList(nil), RegexAnnouncementList, nil)
	AssertRegexMatch(t, BuildAnnouncementUpload(), RegexAnnouncementUpload, nil)
	AssertRegexMatch(t, BuildAnnouncementEdit(3), RegexAnnouncementEdit, map[string]string{"id": "3"})
	AssertRegexMatch(t, BuildAnnouncementDelete(3), RegexAnnouncementDelete, map[string]string{"id": "3"})
	AssertRegexNoMatch(t, BuildAnnouncementUpload(), RegexAnnouncementList)

	modal := BuildAnnouncementEditModal(7, []Q{{"page", "2"}, {"edit", "1"}})
	AssertRegexMatch(t, modal, RegexAnnouncementList, nil)
	parsed, err := url.Parse(modal)
	assert.Nil(t, err)
	assert.Equal(t, "7", parsed.Query().Get("edit"))
	assert.Equal(t, "2", parsed.Query().Get("page"))
}

func TestKnowledge(t *testing.T) {
	AssertRegexMatch(t, BuildKnowledgeList(nil), RegexKnowledgeList, nil)
	AssertRegexMatch(t, BuildKnowledgeCreate(), RegexKnowledgeCreate, nil)
	AssertRegexMatch(t, BuildKnowledgeEdit(5), RegexKnowledgeEdit, map[string]string{"id": "5"})
	AssertRegexMatch(t, BuildKnowledgeDelete(5), RegexKnowledgeDelete, map[string]string{"id": "5"})

	parsed, err := url.Parse(BuildKnowledgeCreateModal([]Q{{"edit", "4"}}))
	assert.Nil(t, err)
	assert.Equal(t, "create", parsed.Query().Get("modal"))
	assert.Equal(t, "", parsed.Query().Get("edit"))
}

func TestContentPages(t *testing.T) {
	AssertRegexMatch(t, BuildHistory(), RegexHistory, nil)
	AssertRegexMatch(t, BuildVision(), RegexVision, nil)
}

func TestAssets(t *testing.T) {
	AssertRegexMatch(t, BuildPublic("admin.js"), RegexPublic, nil)
	AssertRegexMatch(t, BuildThemeCSS(), RegexThemeCSS, nil)
	AssertRegexNoMatch(t, StaticPath+"/", RegexPublic)
}

func AssertRegexMatch(t *testing.T, fullUrl string, regex *regexp.Regexp, paramsToVerify map[string]string) {
	parsed, err := url.Parse(fullUrl)
	ok := assert.Nilf(t, err, "Full url could not be parsed: %s", fullUrl)
	if !ok {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	assert.NotNilf(t, match, "Url did not match regex: [%s] vs [%s]", requestPath, regex.String())

	if paramsToVerify != nil {
		subexpNames := regex.SubexpNames()
		for i, matchedValue := range match {
			paramName := subexpNames[i]
			expectedValue, ok := paramsToVerify[paramName]
			if ok {
				assert.Equalf(t, expectedValue, matchedValue, "Param mismatch for [%s]", paramName)
				delete(paramsToVerify, paramName)
			}
		}
		assert.Emptyf(t, paramsToVerify, "Expected params were not matched")
	}
}

func AssertRegexNoMatch(t *testing.T, fullUrl string, regex *regexp.Regexp) {
	parsed, err := url.Parse(fullUrl)
	ok := assert.Nilf(t, err, "Url could not be parsed: %s", fullUrl)
	if !ok {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	assert.Nilf(t, match, "Url matched regex: [%s] vs [%s]", requestPath, regex.String())
}

package backend

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/oops"
)

// File is an attachment to forward to the backend. The caller owns Content
// and closes it after the request is built.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// PayloadError means a request struct was incomplete and nothing was sent.
type PayloadError struct {
	Payload string
	Field   string
}

func (e *PayloadError) Error() string {
	return e.Payload + ": missing " + e.Field
}

type NewsUpload struct {
	Title string
	File  *File
}

func (u *NewsUpload) Validate() error {
	if strings.TrimSpace(u.Title) == "" {
		return &PayloadError{"news upload", "title"}
	}
	if u.File == nil {
		return &PayloadError{"news upload", "file"}
	}
	return nil
}

type AnnouncementUpload struct {
	Title  string
	TypeID int
	// Optional when updating; the backend keeps the current file.
	File *File
}

func (u *AnnouncementUpload) Validate(updating bool) error {
	if strings.TrimSpace(u.Title) == "" {
		return &PayloadError{"announcement upload", "title"}
	}
	if u.TypeID <= 0 {
		return &PayloadError{"announcement upload", "type_id"}
	}
	if u.File == nil && !updating {
		return &PayloadError{"announcement upload", "file"}
	}
	return nil
}

type KnowledgeUpload struct {
	Title string
	File  *File
}

func (u *KnowledgeUpload) Validate(updating bool) error {
	if strings.TrimSpace(u.Title) == "" {
		return &PayloadError{"knowledge upload", "title"}
	}
	if u.File == nil && !updating {
		return &PayloadError{"knowledge upload", "file"}
	}
	return nil
}

type SaveContentsRequest struct {
	Lang     string                `json:"lang"`
	Contents []models.ContentBlock `json:"contents"`
}

func (r *SaveContentsRequest) Validate() error {
	if r.Lang == "" {
		return &PayloadError{"save contents", "lang"}
	}
	for _, block := range r.Contents {
		if block.ContentID <= 0 {
			return &PayloadError{"save contents", "content_id"}
		}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type formField struct {
	Name  string
	Value string
}

// encodeMultipart builds a multipart body for the given fields and optional
// file. Returns the body and its content type.
func encodeMultipart(fields []formField, file *File) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, field := range fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", oops.New(err, "failed to write form field %s", field.Name)
		}
	}

	if file != nil {
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(file.Name)+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", oops.New(err, "failed to create file part")
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", oops.New(err, "failed to copy %s into request", file.Name)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", oops.New(err, "failed to finish multipart body")
	}
	return &body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

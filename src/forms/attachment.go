package forms

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"kohchanghospital.go.th/admin/src/oops"
)

// Attachment is a file picked in a form. Size and ContentType are what the
// browser reported.
type Attachment struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func AttachmentFromHeader(fh *multipart.FileHeader) *Attachment {
	return &Attachment{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// MaxRequestSize bounds the multipart bodies we are willing to parse. It is
// above MaxFileSize so oversized files still reach validation and get a
// proper message.
const MaxRequestSize = MaxFileSize + 2*1024*1024

// ParseUploadRequest reads an upload form. A missing file is not an error;
// the returned File is nil and Validate decides.
func ParseUploadRequest(r *http.Request) (Upload, error) {
	if err := r.ParseMultipartForm(MaxRequestSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			if err := r.ParseForm(); err != nil {
				return Upload{}, oops.New(err, "failed to parse upload form")
			}
		} else {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return Upload{}, &ValidationError{"file", MsgFileTooLarge}
			}
			return Upload{}, oops.New(err, "failed to parse upload form")
		}
	}

	upload := Upload{
		Title:  r.PostForm.Get("title"),
		TypeID: parseID(r.PostForm.Get("type_id")),
	}
	if r.MultipartForm != nil {
		if headers := r.MultipartForm.File["file"]; len(headers) > 0 && headers[0].Filename != "" {
			upload.File = AttachmentFromHeader(headers[0])
		}
	}
	return upload, nil
}

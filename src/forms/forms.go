package forms

import (
	"errors"
	"strings"
	"time"

	"kohchanghospital.go.th/admin/src/backend"
)

const (
	MaxFileSize      = 10 * 1024 * 1024
	AcceptedMIMEType = "application/pdf"

	// How long a modal form shows its success message before the list
	// reloads and the modal closes.
	SuccessDelay = 1 * time.Second
)

const (
	MsgIncomplete      = "กรุณากรอกข้อมูลให้ครบ"
	MsgTypeRequired    = "กรุณาเลือกประเภทประกาศ"
	MsgFileRequired    = "กรุณาเลือกไฟล์ PDF"
	MsgFileTooLarge    = "ไฟล์ต้องมีขนาดไม่เกิน 10MB"
	MsgFileNotPDF      = "รองรับเฉพาะไฟล์ PDF เท่านั้น"
	MsgUploadFailed    = "อัปโหลดไม่สำเร็จ"
	MsgSaveFailed      = "บันทึกไม่สำเร็จ"
	MsgUploadSucceeded = "อัปโหลดสำเร็จ 🎉"
	MsgUpdateSucceeded = "อัปเดตสำเร็จ 🎉"
)

// ValidationError is a problem with user input that was caught before
// anything was sent to the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Upload is the submitted state of any of the PDF upload forms.
type Upload struct {
	Title  string
	TypeID int
	File   *Attachment

	// Announcements need a type; news and knowledge do not.
	RequireType bool
	// Edits may omit the file to keep the stored one.
	Editing bool
}

// Validate checks the form in the order the user sees the fields.
func (u *Upload) Validate() error {
	if strings.TrimSpace(u.Title) == "" {
		return &ValidationError{"title", MsgIncomplete}
	}
	if u.RequireType && u.TypeID <= 0 {
		return &ValidationError{"type_id", MsgTypeRequired}
	}
	if u.File == nil {
		if u.Editing {
			return nil
		}
		return &ValidationError{"file", MsgFileRequired}
	}
	if u.File.Size > MaxFileSize {
		return &ValidationError{"file", MsgFileTooLarge}
	}
	if u.File.ContentType != AcceptedMIMEType {
		return &ValidationError{"file", MsgFileNotPDF}
	}
	return nil
}

// SuccessMessage is what the form shows after the backend accepted it.
func (u *Upload) SuccessMessage() string {
	if u.Editing {
		return MsgUpdateSucceeded
	}
	return MsgUploadSucceeded
}

// FailureMessage is what the form shows when the backend rejected it.
func (u *Upload) FailureMessage(err error, modal bool) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	if modal {
		return backend.UserMessage(err, MsgSaveFailed)
	}
	return backend.UserMessage(err, MsgUploadFailed)
}

// Submit validates the form and, only if it passes, hands the open file to
// send. The file is closed once send returns.
func (u *Upload) Submit(send func(title string, typeID int, file *backend.File) error) error {
	if err := u.Validate(); err != nil {
		return err
	}

	var file *backend.File
	if u.File != nil {
		content, err := u.File.Open()
		if err != nil {
			return err
		}
		defer content.Close()
		file = &backend.File{
			Name:        u.File.Name,
			ContentType: u.File.ContentType,
			Content:     content,
		}
	}
	return send(strings.TrimSpace(u.Title), u.TypeID, file)
}

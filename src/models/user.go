package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Initial is the single character shown in the top bar avatar.
func (u *User) Initial() string {
	if u == nil {
		return "U"
	}
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return "U"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

func (u *User) DisplayName() string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return "ผู้ใช้"
	}
	return u.Name
}
